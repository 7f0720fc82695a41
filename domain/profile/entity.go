package profile

import (
	"time"
)

// Role determines what a profile may do. There are exactly two roles:
// managers run the organization, employees work their own tasks.
type Role string

const (
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleManager || r == RoleEmployee
}

// Profile represents an identity record in the system.
// Profiles are created by managers (employee onboarding) or by the
// bootstrap seed, and are never deleted in normal operation.
type Profile struct {
	ID           string    `gorm:"primaryKey;type:text" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null;type:text" json:"username"`
	PasswordHash string    `gorm:"not null;type:text" json:"-"`
	FullName     string    `gorm:"not null;type:text" json:"full_name"`
	Role         Role      `gorm:"not null;type:text" json:"role"`
	Title        string    `gorm:"type:text" json:"title,omitempty"`
	Position     string    `gorm:"type:text" json:"position,omitempty"`
	Details      string    `gorm:"type:text" json:"details,omitempty"`
	Active       bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the table name for the Profile entity.
func (Profile) TableName() string {
	return "profiles"
}
