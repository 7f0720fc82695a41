package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/KhaledAOsman/empower-task/domain/task"
	"github.com/KhaledAOsman/empower-task/events"
	"github.com/KhaledAOsman/empower-task/modules/registry"
	"github.com/KhaledAOsman/empower-task/store"
)

// ModuleName is the name the tasks module registers under.
const ModuleName = "tasks"

// TasksModule owns tasks and their audit trail. It depends on the registry
// to resolve assignees and emits task lifecycle events.
type TasksModule struct {
	store    *store.Store
	repo     *TaskRepository
	service  *Service
	eventBus mono.EventBus
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*TasksModule)(nil)
	_ mono.ServiceProviderModule = (*TasksModule)(nil)
	_ mono.DependentModule       = (*TasksModule)(nil)
	_ mono.EventEmitterModule    = (*TasksModule)(nil)
	_ mono.HealthCheckableModule = (*TasksModule)(nil)
)

// NewModule creates the tasks module on top of a shared store.
func NewModule(st *store.Store) *TasksModule {
	repo := NewTaskRepository(st.DB())
	return &TasksModule{
		store:   st,
		repo:    repo,
		service: NewService(repo, nil),
	}
}

// Name returns the module name.
func (m *TasksModule) Name() string {
	return ModuleName
}

// Dependencies declares the modules this one needs before starting.
func (m *TasksModule) Dependencies() []string {
	return []string{registry.ModuleName}
}

// SetDependencyServiceContainer receives the registry's service container.
func (m *TasksModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == registry.ModuleName {
		m.service.registry = registry.NewRegistryAdapter(container)
	}
}

// SetEventBus receives the application event bus.
func (m *TasksModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module publishes.
func (m *TasksModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskStatusChangedV1.ToBase(),
	}
}

// Start verifies the registry dependency arrived.
func (m *TasksModule) Start(_ context.Context) error {
	if m.service.registry == nil {
		return fmt.Errorf("registry dependency not set")
	}
	if m.eventBus == nil {
		log.Println("[tasks] Warning: eventBus not set, events will not be published")
	}
	log.Println("[tasks] Module started (depends on: registry)")
	return nil
}

// Stop stops the module.
func (m *TasksModule) Stop(_ context.Context) error {
	log.Println("[tasks] Module stopped")
	return nil
}

// RegisterServices exposes the task operations to other modules.
func (m *TasksModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(container, "create", json.Unmarshal, json.Marshal, m.handleCreate); err != nil {
		return fmt.Errorf("failed to register create service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(container, "get", json.Unmarshal, json.Marshal, m.handleGet); err != nil {
		return fmt.Errorf("failed to register get service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(container, "update", json.Unmarshal, json.Marshal, m.handleUpdate); err != nil {
		return fmt.Errorf("failed to register update service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(container, "update-status", json.Unmarshal, json.Marshal, m.handleUpdateStatus); err != nil {
		return fmt.Errorf("failed to register update-status service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(container, "list", json.Unmarshal, json.Marshal, m.handleList); err != nil {
		return fmt.Errorf("failed to register list service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(container, "history", json.Unmarshal, json.Marshal, m.handleHistory); err != nil {
		return fmt.Errorf("failed to register history service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(container, "for-assignee", json.Unmarshal, json.Marshal, m.handleForAssignee); err != nil {
		return fmt.Errorf("failed to register for-assignee service: %w", err)
	}

	log.Println("[tasks] Services registered")
	return nil
}

// Health reports database reachability and the task count.
func (m *TasksModule) Health(ctx context.Context) mono.HealthStatus {
	if err := m.store.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database unreachable: %v", err),
		}
	}

	count, err := m.repo.Count()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("task count failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "tasks module is healthy",
		Details: map[string]any{
			"tasks": count,
		},
	}
}

func (m *TasksModule) handleCreate(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskView, error) {
	t, err := m.service.Create(ctx, req.Actor, CreateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		AssigneeID:   req.AssigneeID,
		StartDate:    req.StartDate,
		DeadlineDate: req.DeadlineDate,
	})
	if err != nil {
		return TaskView{}, err
	}

	m.publishTaskCreated(t)
	return toTaskView(t), nil
}

func (m *TasksModule) handleGet(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (TaskView, error) {
	t, err := m.service.Get(ctx, req.Actor, req.TaskID)
	if err != nil {
		return TaskView{}, err
	}
	return toTaskView(t), nil
}

func (m *TasksModule) handleUpdate(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskView, error) {
	t, err := m.service.Update(ctx, req.Actor, req.TaskID, TaskPatch{
		Title:        req.Title,
		Description:  req.Description,
		AssigneeID:   req.AssigneeID,
		StartDate:    req.StartDate,
		DeadlineDate: req.DeadlineDate,
	})
	if err != nil {
		return TaskView{}, err
	}
	return toTaskView(t), nil
}

func (m *TasksModule) handleUpdateStatus(ctx context.Context, req UpdateStatusRequest, _ *mono.Msg) (TaskView, error) {
	t, entry, err := m.service.UpdateStatus(ctx, req.Actor, req.TaskID, req.Status)
	if err != nil {
		return TaskView{}, err
	}

	if entry != nil {
		m.publishStatusChanged(t, entry)
	}
	return toTaskView(t), nil
}

func (m *TasksModule) handleList(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	list, err := m.service.List(ctx, req.Actor, req.AssigneeID)
	if err != nil {
		return ListTasksResponse{}, err
	}

	views := make([]TaskView, 0, len(list))
	for i := range list {
		views = append(views, toTaskView(&list[i]))
	}
	return ListTasksResponse{Tasks: views, Total: len(views)}, nil
}

func (m *TasksModule) handleHistory(ctx context.Context, req HistoryRequest, _ *mono.Msg) (HistoryResponse, error) {
	entries, err := m.service.History(ctx, req.Actor, req.TaskID)
	if err != nil {
		return HistoryResponse{}, err
	}

	views := make([]HistoryEntryView, 0, len(entries))
	for i := range entries {
		views = append(views, toHistoryEntryView(&entries[i]))
	}
	return HistoryResponse{Entries: views, Total: len(views)}, nil
}

func (m *TasksModule) handleForAssignee(ctx context.Context, req ForAssigneeRequest, _ *mono.Msg) (ForAssigneeResponse, error) {
	list, err := m.service.ForAssignee(ctx, req.AssigneeID)
	if err != nil {
		return ForAssigneeResponse{}, err
	}
	return ForAssigneeResponse{Tasks: list, Total: len(list)}, nil
}

func (m *TasksModule) publishTaskCreated(t *task.Task) {
	if m.eventBus == nil {
		return
	}

	event := events.TaskCreatedEvent{
		TaskID:       t.ID,
		Title:        t.Title,
		AssigneeID:   t.AssigneeID,
		AssignerID:   t.AssignerID,
		DeadlineDate: t.DeadlineDate,
		CreatedAt:    t.CreatedAt,
	}
	if err := events.TaskCreatedV1.Publish(m.eventBus, event, nil); err != nil {
		log.Printf("[tasks] Warning: failed to publish TaskCreated event for task %s: %v", t.ID, err)
	}
}

func (m *TasksModule) publishStatusChanged(t *task.Task, entry *task.HistoryEntry) {
	if m.eventBus == nil {
		return
	}

	var old *string
	if entry.OldStatus != nil {
		s := string(*entry.OldStatus)
		old = &s
	}
	event := events.TaskStatusChangedEvent{
		TaskID:      t.ID,
		AssigneeID:  t.AssigneeID,
		OldStatus:   old,
		NewStatus:   string(entry.NewStatus),
		ChangedBy:   entry.ChangedByID,
		ChangedAt:   entry.ChangedAt,
		CompletedAt: t.CompletedAt,
	}
	if err := events.TaskStatusChangedV1.Publish(m.eventBus, event, nil); err != nil {
		log.Printf("[tasks] Warning: failed to publish TaskStatusChanged event for task %s: %v", t.ID, err)
	}
}
