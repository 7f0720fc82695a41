package registry

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/KhaledAOsman/empower-task/domain/fault"
	"github.com/KhaledAOsman/empower-task/domain/policy"
	"github.com/KhaledAOsman/empower-task/domain/profile"
)

// newTestService builds a Service over an in-memory store. Bcrypt runs at
// minimum cost to keep the suite fast.
func newTestService(t *testing.T) *Service {
	t.Helper()

	repo := NewProfileRepository(setupTestDB(t))
	return NewService(repo, &PasswordHasher{cost: bcrypt.MinCost}, NewJWTManager(DefaultJWTConfig()))
}

func managerActor() policy.Actor {
	return policy.Actor{ID: "mgr-1", Role: profile.RoleManager, Active: true}
}

func employeeActor(id string) policy.Actor {
	return policy.Actor{ID: id, Role: profile.RoleEmployee, Active: true}
}

func createTestEmployee(t *testing.T, svc *Service, username, password string) *profile.Profile {
	t.Helper()

	p, err := svc.CreateEmployee(context.Background(), managerActor(), CreateEmployeeInput{
		Username: username,
		Password: password,
		FullName: "Test Employee",
	})
	if err != nil {
		t.Fatalf("CreateEmployee() error = %v", err)
	}
	return p
}

func TestService_Bootstrap(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	cfg := DefaultBootstrapConfig()

	if err := svc.Bootstrap(ctx, cfg); err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}

	seeded, err := svc.repo.FindByUsername(cfg.Username)
	if err != nil {
		t.Fatalf("expected seeded manager, got %v", err)
	}
	if seeded.Role != profile.RoleManager {
		t.Errorf("expected role %q, got %q", profile.RoleManager, seeded.Role)
	}
	if !seeded.Active {
		t.Error("expected seeded manager to be active")
	}
	if !svc.hasher.Verify(cfg.Password, seeded.PasswordHash) {
		t.Error("seeded manager password does not verify")
	}

	// A second start must not seed again
	if err := svc.Bootstrap(ctx, cfg); err != nil {
		t.Fatalf("Bootstrap() second run error = %v", err)
	}
	count, err := svc.repo.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 profile after repeated bootstrap, got %d", count)
	}
}

func TestService_BootstrapSkipsNonEmptyDatabase(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	createTestEmployee(t, svc, "jdoe", "password123")

	if err := svc.Bootstrap(ctx, DefaultBootstrapConfig()); err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}

	_, err := svc.repo.FindByUsername(DefaultBootstrapConfig().Username)
	if !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("expected no bootstrap manager in non-empty database, got %v", err)
	}
}

func TestService_Login(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	created := createTestEmployee(t, svc, "jdoe", "password123")

	t.Run("success", func(t *testing.T) {
		pair, err := svc.Login(ctx, "jdoe", "password123")
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if pair.AccessToken == "" || pair.RefreshToken == "" {
			t.Error("expected both tokens to be set")
		}
		if pair.TokenType != "Bearer" {
			t.Errorf("expected token type Bearer, got %q", pair.TokenType)
		}
		if pair.ExpiresIn != svc.jwt.AccessTokenDuration() {
			t.Errorf("ExpiresIn = %d, want %d", pair.ExpiresIn, svc.jwt.AccessTokenDuration())
		}

		claims, err := svc.jwt.ValidateAccessToken(pair.AccessToken)
		if err != nil {
			t.Fatalf("ValidateAccessToken() error = %v", err)
		}
		if claims.UserID != created.ID {
			t.Errorf("claims.UserID = %q, want %q", claims.UserID, created.ID)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "jdoe", "wrongpassword")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown username", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody", "password123")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
		if fault.CodeOf(err) != fault.CodeAuthentication {
			t.Errorf("expected authentication fault, got %v", fault.CodeOf(err))
		}
	})

	t.Run("inactive account", func(t *testing.T) {
		inactive := false
		if _, err := svc.UpdateProfile(ctx, managerActor(), created.ID, ProfilePatch{Active: &inactive}); err != nil {
			t.Fatalf("UpdateProfile() error = %v", err)
		}

		_, err := svc.Login(ctx, "jdoe", "password123")
		if !errors.Is(err, ErrAccountInactive) {
			t.Errorf("expected ErrAccountInactive, got %v", err)
		}
	})
}

func TestService_Refresh(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	created := createTestEmployee(t, svc, "jdoe", "password123")

	pair, err := svc.Login(ctx, "jdoe", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	t.Run("success", func(t *testing.T) {
		fresh, err := svc.Refresh(ctx, pair.RefreshToken)
		if err != nil {
			t.Fatalf("Refresh() error = %v", err)
		}
		claims, err := svc.jwt.ValidateAccessToken(fresh.AccessToken)
		if err != nil {
			t.Fatalf("ValidateAccessToken() error = %v", err)
		}
		if claims.UserID != created.ID {
			t.Errorf("claims.UserID = %q, want %q", claims.UserID, created.ID)
		}
	})

	t.Run("access token rejected", func(t *testing.T) {
		_, err := svc.Refresh(ctx, pair.AccessToken)
		if !errors.Is(err, ErrUnresolvedToken) {
			t.Errorf("expected ErrUnresolvedToken, got %v", err)
		}
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		_, err := svc.Refresh(ctx, "not.a.token")
		if !errors.Is(err, ErrUnresolvedToken) {
			t.Errorf("expected ErrUnresolvedToken, got %v", err)
		}
	})

	t.Run("deactivated account rejected", func(t *testing.T) {
		inactive := false
		if _, err := svc.UpdateProfile(ctx, managerActor(), created.ID, ProfilePatch{Active: &inactive}); err != nil {
			t.Fatalf("UpdateProfile() error = %v", err)
		}

		_, err := svc.Refresh(ctx, pair.RefreshToken)
		if !errors.Is(err, ErrAccountInactive) {
			t.Errorf("expected ErrAccountInactive, got %v", err)
		}
	})
}

func TestService_Resolve(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	created := createTestEmployee(t, svc, "jdoe", "password123")

	pair, err := svc.Login(ctx, "jdoe", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	t.Run("valid token", func(t *testing.T) {
		p, err := svc.Resolve(ctx, pair.AccessToken)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if p.ID != created.ID {
			t.Errorf("resolved ID = %q, want %q", p.ID, created.ID)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.Resolve(ctx, "garbage")
		if !errors.Is(err, ErrUnresolvedToken) {
			t.Errorf("expected ErrUnresolvedToken, got %v", err)
		}
	})

	t.Run("refresh token rejected", func(t *testing.T) {
		_, err := svc.Resolve(ctx, pair.RefreshToken)
		if !errors.Is(err, ErrUnresolvedToken) {
			t.Errorf("expected ErrUnresolvedToken, got %v", err)
		}
	})

	t.Run("deactivation is visible immediately", func(t *testing.T) {
		inactive := false
		if _, err := svc.UpdateProfile(ctx, managerActor(), created.ID, ProfilePatch{Active: &inactive}); err != nil {
			t.Fatalf("UpdateProfile() error = %v", err)
		}

		// The token still resolves; authorization happens per operation
		// against the fresh active flag.
		p, err := svc.Resolve(ctx, pair.AccessToken)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if p.Active {
			t.Error("expected resolved profile to carry the fresh inactive state")
		}
	})
}

func TestService_CreateEmployee(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	t.Run("manager creates employee", func(t *testing.T) {
		p, err := svc.CreateEmployee(ctx, managerActor(), CreateEmployeeInput{
			Username: "  jdoe  ",
			Password: "password123",
			FullName: "Jane Doe",
			Title:    "Engineer",
			Position: "Backend",
			Details:  "Remote",
		})
		if err != nil {
			t.Fatalf("CreateEmployee() error = %v", err)
		}

		if p.ID == "" {
			t.Error("expected generated ID")
		}
		if p.Username != "jdoe" {
			t.Errorf("expected trimmed username %q, got %q", "jdoe", p.Username)
		}
		if p.Role != profile.RoleEmployee {
			t.Errorf("expected role %q, got %q", profile.RoleEmployee, p.Role)
		}
		if !p.Active {
			t.Error("expected new employee to be active")
		}
		if !svc.hasher.Verify("password123", p.PasswordHash) {
			t.Error("stored password hash does not verify")
		}
	})

	t.Run("employee actor denied", func(t *testing.T) {
		_, err := svc.CreateEmployee(ctx, employeeActor("emp-1"), CreateEmployeeInput{
			Username: "other",
			Password: "password123",
			FullName: "Other",
		})
		if fault.CodeOf(err) != fault.CodeAuthorization {
			t.Errorf("expected authorization fault, got %v", err)
		}
	})

	t.Run("inactive manager denied", func(t *testing.T) {
		actor := managerActor()
		actor.Active = false

		_, err := svc.CreateEmployee(ctx, actor, CreateEmployeeInput{
			Username: "other",
			Password: "password123",
			FullName: "Other",
		})
		if fault.CodeOf(err) != fault.CodeAuthorization {
			t.Errorf("expected authorization fault, got %v", err)
		}
		if fault.MessageOf(err) != string(policy.ReasonInactiveActor) {
			t.Errorf("expected inactive-actor reason, got %q", fault.MessageOf(err))
		}
	})

	t.Run("validation failures", func(t *testing.T) {
		tests := []struct {
			name  string
			input CreateEmployeeInput
		}{
			{
				name:  "empty username",
				input: CreateEmployeeInput{Username: "   ", Password: "password123", FullName: "X"},
			},
			{
				name:  "empty full name",
				input: CreateEmployeeInput{Username: "x", Password: "password123", FullName: " "},
			},
			{
				name:  "short password",
				input: CreateEmployeeInput{Username: "x", Password: "short", FullName: "X"},
			},
			{
				name:  "oversized password",
				input: CreateEmployeeInput{Username: "x", Password: string(make([]byte, 80)), FullName: "X"},
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := svc.CreateEmployee(ctx, managerActor(), tt.input)
				if fault.CodeOf(err) != fault.CodeValidation {
					t.Errorf("expected validation fault, got %v", err)
				}
			})
		}
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := svc.CreateEmployee(ctx, managerActor(), CreateEmployeeInput{
			Username: "jdoe",
			Password: "password123",
			FullName: "Second Jane",
		})
		if !errors.Is(err, ErrUsernameTaken) {
			t.Errorf("expected ErrUsernameTaken, got %v", err)
		}
		if fault.CodeOf(err) != fault.CodeConflict {
			t.Errorf("expected conflict fault, got %v", fault.CodeOf(err))
		}
	})
}

func TestService_UpdateProfile(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	created := createTestEmployee(t, svc, "jdoe", "password123")

	t.Run("partial patch", func(t *testing.T) {
		title := "Staff Engineer"
		updated, err := svc.UpdateProfile(ctx, managerActor(), created.ID, ProfilePatch{Title: &title})
		if err != nil {
			t.Fatalf("UpdateProfile() error = %v", err)
		}
		if updated.Title != title {
			t.Errorf("expected title %q, got %q", title, updated.Title)
		}
		// Untouched fields survive
		if updated.FullName != created.FullName {
			t.Errorf("expected full name %q, got %q", created.FullName, updated.FullName)
		}
		if updated.Role != profile.RoleEmployee {
			t.Errorf("expected role unchanged, got %q", updated.Role)
		}
	})

	t.Run("role promotion", func(t *testing.T) {
		role := profile.RoleManager
		updated, err := svc.UpdateProfile(ctx, managerActor(), created.ID, ProfilePatch{Role: &role})
		if err != nil {
			t.Fatalf("UpdateProfile() error = %v", err)
		}
		if updated.Role != profile.RoleManager {
			t.Errorf("expected role %q, got %q", profile.RoleManager, updated.Role)
		}
	})

	t.Run("invalid role", func(t *testing.T) {
		role := profile.Role("executive")
		_, err := svc.UpdateProfile(ctx, managerActor(), created.ID, ProfilePatch{Role: &role})
		if fault.CodeOf(err) != fault.CodeValidation {
			t.Errorf("expected validation fault, got %v", err)
		}
	})

	t.Run("blank full name", func(t *testing.T) {
		blank := "  "
		_, err := svc.UpdateProfile(ctx, managerActor(), created.ID, ProfilePatch{FullName: &blank})
		if fault.CodeOf(err) != fault.CodeValidation {
			t.Errorf("expected validation fault, got %v", err)
		}
	})

	t.Run("missing profile", func(t *testing.T) {
		title := "Ghost"
		_, err := svc.UpdateProfile(ctx, managerActor(), "missing", ProfilePatch{Title: &title})
		if !errors.Is(err, ErrProfileNotFound) {
			t.Errorf("expected ErrProfileNotFound, got %v", err)
		}
	})

	t.Run("employee actor denied", func(t *testing.T) {
		title := "Self Promotion"
		_, err := svc.UpdateProfile(ctx, employeeActor(created.ID), created.ID, ProfilePatch{Title: &title})
		if fault.CodeOf(err) != fault.CodeAuthorization {
			t.Errorf("expected authorization fault, got %v", err)
		}
	})
}

func TestService_ListEmployees(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	createTestEmployee(t, svc, "zara", "password123")
	createTestEmployee(t, svc, "adam", "password123")

	t.Run("manager sees roster", func(t *testing.T) {
		employees, err := svc.ListEmployees(ctx, managerActor())
		if err != nil {
			t.Fatalf("ListEmployees() error = %v", err)
		}
		if len(employees) != 2 {
			t.Errorf("expected 2 employees, got %d", len(employees))
		}
	})

	t.Run("employee denied", func(t *testing.T) {
		_, err := svc.ListEmployees(ctx, employeeActor("emp-1"))
		if fault.CodeOf(err) != fault.CodeAuthorization {
			t.Errorf("expected authorization fault, got %v", err)
		}
	})
}
