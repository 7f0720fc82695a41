package registry

import (
	"time"

	"github.com/KhaledAOsman/empower-task/domain/policy"
	"github.com/KhaledAOsman/empower-task/domain/profile"
)

// LoginRequest carries a credential pair.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest carries a refresh token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenPairResponse carries a freshly minted access/refresh token pair.
type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// ResolveRequest carries an access token to resolve into a profile.
type ResolveRequest struct {
	Token string `json:"token"`
}

// CreateEmployeeRequest carries the fields for onboarding an employee.
type CreateEmployeeRequest struct {
	Actor    policy.Actor `json:"actor"`
	Username string       `json:"username"`
	Password string       `json:"password"`
	FullName string       `json:"full_name"`
	Title    string       `json:"title,omitempty"`
	Position string       `json:"position,omitempty"`
	Details  string       `json:"details,omitempty"`
}

// UpdateProfileRequest carries a manager's partial profile edit. Nil fields
// are left untouched.
type UpdateProfileRequest struct {
	Actor     policy.Actor `json:"actor"`
	ProfileID string       `json:"profile_id"`
	FullName  *string      `json:"full_name,omitempty"`
	Title     *string      `json:"title,omitempty"`
	Position  *string      `json:"position,omitempty"`
	Details   *string      `json:"details,omitempty"`
	Role      *string      `json:"role,omitempty"`
	Active    *bool        `json:"active,omitempty"`
}

// ListEmployeesRequest asks for every employee profile.
type ListEmployeesRequest struct {
	Actor policy.Actor `json:"actor"`
}

// ListEmployeesResponse carries the employee roster.
type ListEmployeesResponse struct {
	Employees []ProfileView `json:"employees"`
	Total     int           `json:"total"`
}

// GetProfileRequest is the internal profile lookup other modules use.
type GetProfileRequest struct {
	ProfileID string `json:"profile_id"`
}

// ProfileView is the wire representation of a profile. The password hash
// never leaves the module.
type ProfileView struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	Title     string    `json:"title,omitempty"`
	Position  string    `json:"position,omitempty"`
	Details   string    `json:"details,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// toProfileView converts a profile entity to its wire representation.
func toProfileView(p *profile.Profile) ProfileView {
	return ProfileView{
		ID:        p.ID,
		Username:  p.Username,
		FullName:  p.FullName,
		Role:      string(p.Role),
		Title:     p.Title,
		Position:  p.Position,
		Details:   p.Details,
		Active:    p.Active,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// toProfile rebuilds a profile entity from its wire representation. Used by
// adapters on the consuming side of a container call.
func toProfile(v ProfileView) *profile.Profile {
	return &profile.Profile{
		ID:        v.ID,
		Username:  v.Username,
		FullName:  v.FullName,
		Role:      profile.Role(v.Role),
		Title:     v.Title,
		Position:  v.Position,
		Details:   v.Details,
		Active:    v.Active,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

// TokenPair bundles the two JWTs issued at login or refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	TokenType    string
}

// toTokenPairResponse converts a token pair to its wire representation.
func toTokenPairResponse(pair *TokenPair) TokenPairResponse {
	return TokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
		TokenType:    pair.TokenType,
	}
}

// CreateEmployeeInput carries validated-at-the-service onboarding fields.
type CreateEmployeeInput struct {
	Username string
	Password string
	FullName string
	Title    string
	Position string
	Details  string
}

// ProfilePatch carries a partial profile edit. Nil fields are not applied.
type ProfilePatch struct {
	FullName *string
	Title    *string
	Position *string
	Details  *string
	Role     *profile.Role
	Active   *bool
}
