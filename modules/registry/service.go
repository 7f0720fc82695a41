package registry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KhaledAOsman/empower-task/domain/fault"
	"github.com/KhaledAOsman/empower-task/domain/policy"
	"github.com/KhaledAOsman/empower-task/domain/profile"
)

var (
	// ErrInvalidCredentials is returned for any bad username/password pair.
	// One message for both cases so usernames cannot be probed.
	ErrInvalidCredentials = fault.Authentication("invalid username or password")
	// ErrAccountInactive is returned when a deactivated profile tries to
	// obtain tokens.
	ErrAccountInactive = fault.Authentication("account is inactive")
	// ErrUnresolvedToken is returned when an access token does not resolve
	// to a profile.
	ErrUnresolvedToken = fault.Authentication("invalid or expired token")
)

// Service implements the identity and role resolver: credential checks,
// token issuance, and profile administration.
type Service struct {
	repo   *ProfileRepository
	hasher *PasswordHasher
	jwt    *JWTManager
	now    func() time.Time
}

// NewService creates a registry Service.
func NewService(repo *ProfileRepository, hasher *PasswordHasher, jwt *JWTManager) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		jwt:    jwt,
		now:    time.Now,
	}
}

// Login authenticates a credential pair and returns a token pair. Inactive
// profiles cannot mint tokens.
func (s *Service) Login(_ context.Context, username, password string) (*TokenPair, error) {
	p, err := s.repo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}

	if !s.hasher.Verify(password, p.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !p.Active {
		return nil, ErrAccountInactive
	}

	return s.generateTokenPair(p)
}

// Refresh validates a refresh token and returns a new token pair. The
// profile must still exist and be active.
func (s *Service) Refresh(_ context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrUnresolvedToken
	}

	p, err := s.repo.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, ErrUnresolvedToken
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	if !p.Active {
		return nil, ErrAccountInactive
	}

	return s.generateTokenPair(p)
}

// Resolve maps an access token to the current profile record, loaded fresh
// on every call. Inactive profiles are returned as-is; the policy engine
// denies their operations with the inactive-actor reason.
func (s *Service) Resolve(_ context.Context, accessToken string) (*profile.Profile, error) {
	claims, err := s.jwt.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, ErrUnresolvedToken
	}

	p, err := s.repo.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, ErrUnresolvedToken
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	return p, nil
}

// CreateEmployee onboards a new employee profile. Manager-only.
func (s *Service) CreateEmployee(_ context.Context, actor policy.Actor, input CreateEmployeeInput) (*profile.Profile, error) {
	if d := policy.Authorize(actor, policy.OpCreateProfile, policy.Target{}); !d.Allowed {
		return nil, fault.Authorization(string(d.Reason))
	}

	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, fault.Validation("username must not be empty")
	}
	if strings.TrimSpace(input.FullName) == "" {
		return nil, fault.Validation("full name must not be empty")
	}
	if len(input.Password) < 8 {
		return nil, fault.Validation("password must be at least 8 characters")
	}
	if len(input.Password) > 72 {
		return nil, fault.Validation("password must be at most 72 characters")
	}

	exists, err := s.repo.UsernameExists(username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	p := &profile.Profile{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: passwordHash,
		FullName:     strings.TrimSpace(input.FullName),
		Role:         profile.RoleEmployee,
		Title:        input.Title,
		Position:     input.Position,
		Details:      input.Details,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProfile applies a manager's partial edit to a profile: metadata,
// role, or the active flag.
func (s *Service) UpdateProfile(_ context.Context, actor policy.Actor, profileID string, patch ProfilePatch) (*profile.Profile, error) {
	if d := policy.Authorize(actor, policy.OpUpdateProfile, policy.Target{OwnerID: profileID}); !d.Allowed {
		return nil, fault.Authorization(string(d.Reason))
	}

	p, err := s.repo.FindByID(profileID)
	if err != nil {
		return nil, err
	}

	if patch.FullName != nil {
		if strings.TrimSpace(*patch.FullName) == "" {
			return nil, fault.Validation("full name must not be empty")
		}
		p.FullName = strings.TrimSpace(*patch.FullName)
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Position != nil {
		p.Position = *patch.Position
	}
	if patch.Details != nil {
		p.Details = *patch.Details
	}
	if patch.Role != nil {
		if !patch.Role.Valid() {
			return nil, fault.Newf(fault.CodeValidation, "unknown role %q", *patch.Role)
		}
		p.Role = *patch.Role
	}
	if patch.Active != nil {
		p.Active = *patch.Active
	}
	p.UpdatedAt = s.now()

	if err := s.repo.Update(p); err != nil {
		return nil, err
	}
	return p, nil
}

// ListEmployees returns every employee profile. Manager-only.
func (s *Service) ListEmployees(_ context.Context, actor policy.Actor) ([]profile.Profile, error) {
	if d := policy.Authorize(actor, policy.OpListEmployees, policy.Target{}); !d.Allowed {
		return nil, fault.Authorization(string(d.Reason))
	}
	return s.repo.FindEmployees()
}

// GetProfile retrieves a profile by ID. Internal module-to-module lookup;
// callers enforce their own policy.
func (s *Service) GetProfile(_ context.Context, id string) (*profile.Profile, error) {
	return s.repo.FindByID(id)
}

// Bootstrap seeds the first manager profile when the profiles table is
// empty, so a fresh deployment has an account that can onboard everyone
// else. A no-op on any later start.
func (s *Service) Bootstrap(_ context.Context, cfg BootstrapConfig) error {
	count, err := s.repo.Count()
	if err != nil {
		return fmt.Errorf("failed to count profiles: %w", err)
	}
	if count > 0 {
		return nil
	}

	passwordHash, err := s.hasher.Hash(cfg.Password)
	if err != nil {
		return fmt.Errorf("failed to hash bootstrap password: %w", err)
	}

	now := s.now()
	p := &profile.Profile{
		ID:           uuid.New().String(),
		Username:     cfg.Username,
		PasswordHash: passwordHash,
		FullName:     cfg.FullName,
		Role:         profile.RoleManager,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(p); err != nil {
		return fmt.Errorf("failed to seed bootstrap manager: %w", err)
	}

	log.Printf("[registry] Seeded bootstrap manager %q, change its password after first login", cfg.Username)
	return nil
}

// generateTokenPair mints both tokens for a profile.
func (s *Service) generateTokenPair(p *profile.Profile) (*TokenPair, error) {
	accessToken, err := s.jwt.GenerateAccessToken(p)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwt.GenerateRefreshToken(p)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.jwt.AccessTokenDuration(),
		TokenType:    "Bearer",
	}, nil
}
