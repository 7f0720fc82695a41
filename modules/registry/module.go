package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/KhaledAOsman/empower-task/domain/profile"
	"github.com/KhaledAOsman/empower-task/store"
)

// ModuleName is the name the registry module registers under.
const ModuleName = "registry"

// BootstrapConfig describes the manager profile seeded into an empty
// database on first start.
type BootstrapConfig struct {
	Username string
	Password string
	FullName string
}

// DefaultBootstrapConfig returns development bootstrap credentials.
func DefaultBootstrapConfig() BootstrapConfig {
	return BootstrapConfig{
		Username: "admin",
		Password: "admin12345",
		FullName: "System Manager",
	}
}

// Config holds the registry module configuration.
type Config struct {
	JWT       JWTConfig
	Bootstrap BootstrapConfig
}

// DefaultConfig returns a development configuration.
func DefaultConfig() Config {
	return Config{
		JWT:       DefaultJWTConfig(),
		Bootstrap: DefaultBootstrapConfig(),
	}
}

// RegistryModule owns profiles: authentication, token issuance, and the
// employee directory. Every other module resolves actors through it.
type RegistryModule struct {
	store   *store.Store
	cfg     Config
	service *Service
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*RegistryModule)(nil)
	_ mono.ServiceProviderModule = (*RegistryModule)(nil)
	_ mono.HealthCheckableModule = (*RegistryModule)(nil)
)

// NewModule creates the registry module on top of a shared store.
func NewModule(st *store.Store, cfg Config) *RegistryModule {
	repo := NewProfileRepository(st.DB())
	service := NewService(repo, NewPasswordHasher(), NewJWTManager(cfg.JWT))

	return &RegistryModule{
		store:   st,
		cfg:     cfg,
		service: service,
	}
}

// Name returns the module name.
func (m *RegistryModule) Name() string {
	return ModuleName
}

// Start seeds the bootstrap manager when the profile table is empty.
func (m *RegistryModule) Start(ctx context.Context) error {
	if err := m.service.Bootstrap(ctx, m.cfg.Bootstrap); err != nil {
		return fmt.Errorf("bootstrap failed: %w", err)
	}
	log.Println("[registry] Module started")
	return nil
}

// Stop stops the module.
func (m *RegistryModule) Stop(ctx context.Context) error {
	log.Println("[registry] Module stopped")
	return nil
}

// RegisterServices exposes the registry operations to other modules.
func (m *RegistryModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(container, "login", json.Unmarshal, json.Marshal, m.handleLogin); err != nil {
		return fmt.Errorf("failed to register login service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(container, "refresh", json.Unmarshal, json.Marshal, m.handleRefresh); err != nil {
		return fmt.Errorf("failed to register refresh service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(container, "resolve", json.Unmarshal, json.Marshal, m.handleResolve); err != nil {
		return fmt.Errorf("failed to register resolve service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(container, "create-employee", json.Unmarshal, json.Marshal, m.handleCreateEmployee); err != nil {
		return fmt.Errorf("failed to register create-employee service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(container, "update-profile", json.Unmarshal, json.Marshal, m.handleUpdateProfile); err != nil {
		return fmt.Errorf("failed to register update-profile service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(container, "list-employees", json.Unmarshal, json.Marshal, m.handleListEmployees); err != nil {
		return fmt.Errorf("failed to register list-employees service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(container, "get-profile", json.Unmarshal, json.Marshal, m.handleGetProfile); err != nil {
		return fmt.Errorf("failed to register get-profile service: %w", err)
	}

	log.Println("[registry] Services registered")
	return nil
}

// Health reports database reachability and the profile count.
func (m *RegistryModule) Health(ctx context.Context) mono.HealthStatus {
	if err := m.store.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database unreachable: %v", err),
		}
	}

	count, err := m.service.repo.Count()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("profile count failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "registry module is healthy",
		Details: map[string]any{
			"profiles": count,
		},
	}
}

func (m *RegistryModule) handleLogin(ctx context.Context, req LoginRequest, _ *mono.Msg) (TokenPairResponse, error) {
	pair, err := m.service.Login(ctx, req.Username, req.Password)
	if err != nil {
		return TokenPairResponse{}, err
	}
	return toTokenPairResponse(pair), nil
}

func (m *RegistryModule) handleRefresh(ctx context.Context, req RefreshRequest, _ *mono.Msg) (TokenPairResponse, error) {
	pair, err := m.service.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return TokenPairResponse{}, err
	}
	return toTokenPairResponse(pair), nil
}

func (m *RegistryModule) handleResolve(ctx context.Context, req ResolveRequest, _ *mono.Msg) (ProfileView, error) {
	p, err := m.service.Resolve(ctx, req.Token)
	if err != nil {
		return ProfileView{}, err
	}
	return toProfileView(p), nil
}

func (m *RegistryModule) handleCreateEmployee(ctx context.Context, req CreateEmployeeRequest, _ *mono.Msg) (ProfileView, error) {
	p, err := m.service.CreateEmployee(ctx, req.Actor, CreateEmployeeInput{
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
		Title:    req.Title,
		Position: req.Position,
		Details:  req.Details,
	})
	if err != nil {
		return ProfileView{}, err
	}
	return toProfileView(p), nil
}

func (m *RegistryModule) handleUpdateProfile(ctx context.Context, req UpdateProfileRequest, _ *mono.Msg) (ProfileView, error) {
	patch := ProfilePatch{
		FullName: req.FullName,
		Title:    req.Title,
		Position: req.Position,
		Details:  req.Details,
		Active:   req.Active,
	}
	if req.Role != nil {
		role := profile.Role(*req.Role)
		patch.Role = &role
	}

	p, err := m.service.UpdateProfile(ctx, req.Actor, req.ProfileID, patch)
	if err != nil {
		return ProfileView{}, err
	}
	return toProfileView(p), nil
}

func (m *RegistryModule) handleListEmployees(ctx context.Context, req ListEmployeesRequest, _ *mono.Msg) (ListEmployeesResponse, error) {
	employees, err := m.service.ListEmployees(ctx, req.Actor)
	if err != nil {
		return ListEmployeesResponse{}, err
	}

	views := make([]ProfileView, 0, len(employees))
	for i := range employees {
		views = append(views, toProfileView(&employees[i]))
	}
	return ListEmployeesResponse{Employees: views, Total: len(views)}, nil
}

func (m *RegistryModule) handleGetProfile(ctx context.Context, req GetProfileRequest, _ *mono.Msg) (ProfileView, error) {
	p, err := m.service.GetProfile(ctx, req.ProfileID)
	if err != nil {
		return ProfileView{}, err
	}
	return toProfileView(p), nil
}
