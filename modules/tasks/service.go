package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KhaledAOsman/empower-task/domain/fault"
	"github.com/KhaledAOsman/empower-task/domain/policy"
	"github.com/KhaledAOsman/empower-task/domain/profile"
	"github.com/KhaledAOsman/empower-task/domain/task"
	"github.com/KhaledAOsman/empower-task/modules/registry"
)

// Service implements task assignment, the status state machine, and the
// audit trail reads.
type Service struct {
	repo     *TaskRepository
	registry registry.RegistryPort
	now      func() time.Time
}

// NewService creates a tasks Service. The registry port may arrive later,
// through dependency injection, but must be set before the first call.
func NewService(repo *TaskRepository, registryPort registry.RegistryPort) *Service {
	return &Service{
		repo:     repo,
		registry: registryPort,
		now:      time.Now,
	}
}

// Create assigns a new task to an employee. Manager-only.
func (s *Service) Create(ctx context.Context, actor policy.Actor, input CreateTaskInput) (*task.Task, error) {
	if d := policy.Authorize(actor, policy.OpCreateTask, policy.Target{}); !d.Allowed {
		return nil, fault.Authorization(string(d.Reason))
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fault.Validation("title must not be empty")
	}
	if input.AssigneeID == "" {
		return nil, fault.Validation("assignee_id must not be empty")
	}

	startDate, err := parseDateField("start_date", input.StartDate)
	if err != nil {
		return nil, err
	}
	deadlineDate, err := parseDateField("deadline_date", input.DeadlineDate)
	if err != nil {
		return nil, err
	}
	if deadlineDate.Before(startDate) {
		return nil, fault.Validation("deadline_date must not precede start_date")
	}

	if err := s.checkAssignee(ctx, input.AssigneeID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	t := &task.Task{
		ID:           uuid.New().String(),
		Title:        title,
		Description:  input.Description,
		AssigneeID:   input.AssigneeID,
		AssignerID:   actor.ID,
		Status:       task.StatusNotStarted,
		StartDate:    startDate,
		DeadlineDate: deadlineDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(t); err != nil {
		return nil, err
	}
	return t, nil
}

// Get retrieves one task. Managers read any task, employees only their own.
func (s *Service) Get(_ context.Context, actor policy.Actor, taskID string) (*task.Task, error) {
	t, err := s.repo.FindByID(taskID)
	if err != nil {
		return nil, err
	}
	if d := policy.Authorize(actor, policy.OpReadTask, policy.Target{OwnerID: t.AssigneeID}); !d.Allowed {
		return nil, fault.Authorization(string(d.Reason))
	}
	return t, nil
}

// Update applies a manager's edit of task fields. Status is not editable
// here; transitions go through UpdateStatus so each one is audited.
func (s *Service) Update(ctx context.Context, actor policy.Actor, taskID string, patch TaskPatch) (*task.Task, error) {
	if d := policy.Authorize(actor, policy.OpUpdateTask, policy.Target{}); !d.Allowed {
		return nil, fault.Authorization(string(d.Reason))
	}

	t, err := s.repo.FindByID(taskID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, fault.Validation("title must not be empty")
		}
		t.Title = title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.AssigneeID != nil {
		if err := s.checkAssignee(ctx, *patch.AssigneeID); err != nil {
			return nil, err
		}
		t.AssigneeID = *patch.AssigneeID
	}
	if patch.StartDate != nil {
		startDate, err := parseDateField("start_date", *patch.StartDate)
		if err != nil {
			return nil, err
		}
		t.StartDate = startDate
	}
	if patch.DeadlineDate != nil {
		deadlineDate, err := parseDateField("deadline_date", *patch.DeadlineDate)
		if err != nil {
			return nil, err
		}
		t.DeadlineDate = deadlineDate
	}
	t.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(t); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateStatus moves a task through the state machine. The returned entry is
// nil for a same-status no-op.
func (s *Service) UpdateStatus(_ context.Context, actor policy.Actor, taskID, status string) (*task.Task, *task.HistoryEntry, error) {
	next := task.Status(status)
	if !next.Valid() {
		return nil, nil, fault.Newf(fault.CodeValidation, "unknown status %q", status)
	}

	t, err := s.repo.FindByID(taskID)
	if err != nil {
		return nil, nil, err
	}
	if d := policy.Authorize(actor, policy.OpUpdateTaskStatus, policy.Target{OwnerID: t.AssigneeID}); !d.Allowed {
		return nil, nil, fault.Authorization(string(d.Reason))
	}

	return s.repo.UpdateStatus(taskID, next, actor.ID, s.now().UTC())
}

// List returns tasks ordered by deadline. Managers see everything and may
// filter by assignee; employees always see exactly their own tasks.
func (s *Service) List(_ context.Context, actor policy.Actor, assigneeID string) ([]task.Task, error) {
	if d := policy.Authorize(actor, policy.OpListTasks, policy.Target{}); !d.Allowed {
		return nil, fault.Authorization(string(d.Reason))
	}

	if actor.Role == profile.RoleEmployee {
		return s.repo.FindByAssignee(actor.ID)
	}
	if assigneeID != "" {
		return s.repo.FindByAssignee(assigneeID)
	}
	return s.repo.FindAll()
}

// History returns a task's audit trail in chronological order.
func (s *Service) History(_ context.Context, actor policy.Actor, taskID string) ([]task.HistoryEntry, error) {
	t, err := s.repo.FindByID(taskID)
	if err != nil {
		return nil, err
	}
	if d := policy.Authorize(actor, policy.OpReadHistory, policy.Target{OwnerID: t.AssigneeID}); !d.Allowed {
		return nil, fault.Authorization(string(d.Reason))
	}
	return s.repo.History(taskID)
}

// ForAssignee returns one employee's tasks without a policy check. Internal
// use only; reporting authorizes the read before calling.
func (s *Service) ForAssignee(_ context.Context, assigneeID string) ([]task.Task, error) {
	return s.repo.FindByAssignee(assigneeID)
}

// checkAssignee verifies the assignee resolves to an active employee.
func (s *Service) checkAssignee(ctx context.Context, assigneeID string) error {
	p, err := s.registry.GetProfile(ctx, assigneeID)
	if err != nil {
		if fault.CodeOf(err) == fault.CodeNotFound {
			return fault.Newf(fault.CodeValidation, "assignee %s does not exist", assigneeID)
		}
		return fmt.Errorf("failed to resolve assignee: %w", err)
	}
	if p.Role != profile.RoleEmployee {
		return fault.Validation("assignee must be an employee")
	}
	if !p.Active {
		return fault.Validation("assignee is inactive")
	}
	return nil
}

// parseDateField parses a YYYY-MM-DD field into a UTC date.
func parseDateField(name, value string) (time.Time, error) {
	d, err := task.ParseDate(value)
	if err != nil {
		return time.Time{}, fault.Newf(fault.CodeValidation, "invalid %s %q, want YYYY-MM-DD", name, value)
	}
	return d, nil
}
