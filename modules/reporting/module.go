package reporting

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/KhaledAOsman/empower-task/events"
	"github.com/KhaledAOsman/empower-task/modules/cache"
	"github.com/KhaledAOsman/empower-task/modules/registry"
	"github.com/KhaledAOsman/empower-task/modules/tasks"
)

// ModuleName is the name the reporting module registers under.
const ModuleName = "reporting"

// ReportingModule serves per-employee performance summaries. It reaches
// the tasks and registry modules through their ports and consumes task
// lifecycle events to invalidate cached summaries.
type ReportingModule struct {
	service *Service
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*ReportingModule)(nil)
	_ mono.ServiceProviderModule = (*ReportingModule)(nil)
	_ mono.DependentModule       = (*ReportingModule)(nil)
	_ mono.EventConsumerModule   = (*ReportingModule)(nil)
	_ mono.HealthCheckableModule = (*ReportingModule)(nil)
)

// NewModule creates the reporting module. Ports are wired in through
// SetDependencyServiceContainer, the cache through SetCache.
func NewModule() *ReportingModule {
	return &ReportingModule{service: NewService(nil, nil)}
}

// Name returns the module name.
func (m *ReportingModule) Name() string {
	return ModuleName
}

// Dependencies declares the modules this one needs before starting.
func (m *ReportingModule) Dependencies() []string {
	return []string{tasks.ModuleName, registry.ModuleName}
}

// SetDependencyServiceContainer receives the dependency service containers.
func (m *ReportingModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case tasks.ModuleName:
		m.service.tasks = tasks.NewTasksAdapter(container)
	case registry.ModuleName:
		m.service.registry = registry.NewRegistryAdapter(container)
	}
}

// SetCache wires the metrics cache. Called from main when Redis is
// configured; without it the module computes on every request.
func (m *ReportingModule) SetCache(c *cache.Cache) {
	if c == nil {
		return
	}
	m.service.SetCache(c)
}

// Start verifies the dependencies arrived.
func (m *ReportingModule) Start(_ context.Context) error {
	if m.service.tasks == nil || m.service.registry == nil {
		return fmt.Errorf("tasks and registry dependencies not set")
	}
	if m.service.cache == nil {
		log.Println("[reporting] Cache not configured, metrics computed on every request")
	}
	log.Println("[reporting] Module started (depends on: tasks, registry)")
	return nil
}

// Stop stops the module.
func (m *ReportingModule) Stop(_ context.Context) error {
	log.Println("[reporting] Module stopped")
	return nil
}

// RegisterServices exposes the reporting operations to other modules.
func (m *ReportingModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(container, "employee-metrics", json.Unmarshal, json.Marshal, m.handleEmployeeMetrics); err != nil {
		return fmt.Errorf("failed to register employee-metrics service: %w", err)
	}

	log.Println("[reporting] Services registered")
	return nil
}

// RegisterEventConsumers subscribes to the task events that change an
// employee's figures.
func (m *ReportingModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskStatusChangedV1, m.handleTaskStatusChanged, m); err != nil {
		return fmt.Errorf("failed to register TaskStatusChanged consumer: %w", err)
	}

	log.Printf("[reporting] Registered event consumers: TaskCreated, TaskStatusChanged")
	return nil
}

// Health reports dependency wiring and whether the cache is active.
func (m *ReportingModule) Health(_ context.Context) mono.HealthStatus {
	if m.service.tasks == nil || m.service.registry == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "dependencies not wired",
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "reporting module is healthy",
		Details: map[string]any{
			"cache_enabled": m.service.cache != nil,
		},
	}
}

func (m *ReportingModule) handleEmployeeMetrics(ctx context.Context, req EmployeeMetricsRequest, _ *mono.Msg) (EmployeeMetricsResponse, error) {
	resp, err := m.service.EmployeeMetrics(ctx, req.Actor, req.EmployeeID)
	if err != nil {
		return EmployeeMetricsResponse{}, err
	}
	return *resp, nil
}

func (m *ReportingModule) handleTaskCreated(ctx context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	m.service.InvalidateEmployee(ctx, event.AssigneeID)
	return nil
}

func (m *ReportingModule) handleTaskStatusChanged(ctx context.Context, event events.TaskStatusChangedEvent, _ *mono.Msg) error {
	m.service.InvalidateEmployee(ctx, event.AssigneeID)
	return nil
}
