package registry

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/KhaledAOsman/empower-task/domain/fault"
	"github.com/KhaledAOsman/empower-task/domain/profile"
)

var (
	// ErrProfileNotFound is returned when no profile matches the lookup.
	ErrProfileNotFound = fault.NotFound("profile not found")
	// ErrUsernameTaken is returned when a username is already registered.
	ErrUsernameTaken = fault.Conflict("username already taken")
)

// ProfileRepository handles profile persistence using GORM.
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a ProfileRepository over the shared handle.
func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create inserts a new profile.
func (r *ProfileRepository) Create(p *profile.Profile) error {
	if err := r.db.Create(p).Error; err != nil {
		if isDuplicate(err) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// FindByID retrieves a profile by its ID.
func (r *ProfileRepository) FindByID(id string) (*profile.Profile, error) {
	var p profile.Profile
	if err := r.db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	return &p, nil
}

// FindByUsername retrieves a profile by its unique username.
func (r *ProfileRepository) FindByUsername(username string) (*profile.Profile, error) {
	var p profile.Profile
	if err := r.db.First(&p, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	return &p, nil
}

// UsernameExists checks whether a username is already registered.
func (r *ProfileRepository) UsernameExists(username string) (bool, error) {
	var count int64
	if err := r.db.Model(&profile.Profile{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return count > 0, nil
}

// FindEmployees retrieves every employee profile ordered by full name.
func (r *ProfileRepository) FindEmployees() ([]profile.Profile, error) {
	var profiles []profile.Profile
	if err := r.db.Where("role = ?", profile.RoleEmployee).Order("full_name ASC").Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return profiles, nil
}

// Update persists changes to an existing profile.
func (r *ProfileRepository) Update(p *profile.Profile) error {
	result := r.db.Model(&profile.Profile{}).Where("id = ?", p.ID).Updates(map[string]any{
		"full_name":  p.FullName,
		"title":      p.Title,
		"position":   p.Position,
		"details":    p.Details,
		"role":       p.Role,
		"active":     p.Active,
		"updated_at": p.UpdatedAt,
	})
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// Count returns the total number of profiles of any role.
func (r *ProfileRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&profile.Profile{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count profiles: %w", err)
	}
	return count, nil
}

// isDuplicate detects unique-constraint violations. The SQLite driver
// reports them as plain errors unless GORM error translation is enabled,
// so both forms are checked.
func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}
