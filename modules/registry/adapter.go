package registry

import (
	"context"
	"encoding/json"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/KhaledAOsman/empower-task/domain/profile"
)

// RegistryPort is what other modules need from the registry: resolving an
// access token to the current profile and looking profiles up by ID.
// Consumers depend on this interface so tests can stub it.
type RegistryPort interface {
	Resolve(ctx context.Context, token string) (*profile.Profile, error)
	GetProfile(ctx context.Context, id string) (*profile.Profile, error)
}

// RegistryAdapter implements RegistryPort over the registry module's
// service container.
type RegistryAdapter struct {
	container mono.ServiceContainer
}

var _ RegistryPort = (*RegistryAdapter)(nil)

// NewRegistryAdapter wraps a registry service container.
func NewRegistryAdapter(container mono.ServiceContainer) *RegistryAdapter {
	return &RegistryAdapter{container: container}
}

// Resolve maps an access token to a freshly loaded profile.
func (a *RegistryAdapter) Resolve(ctx context.Context, token string) (*profile.Profile, error) {
	req := ResolveRequest{Token: token}
	var view ProfileView
	if err := helper.CallRequestReplyService(ctx, a.container, "resolve", json.Marshal, json.Unmarshal, &req, &view); err != nil {
		return nil, err
	}
	return toProfile(view), nil
}

// GetProfile looks a profile up by ID.
func (a *RegistryAdapter) GetProfile(ctx context.Context, id string) (*profile.Profile, error) {
	req := GetProfileRequest{ProfileID: id}
	var view ProfileView
	if err := helper.CallRequestReplyService(ctx, a.container, "get-profile", json.Marshal, json.Unmarshal, &req, &view); err != nil {
		return nil, err
	}
	return toProfile(view), nil
}
