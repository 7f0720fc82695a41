package tasks

import (
	"time"

	"github.com/KhaledAOsman/empower-task/domain/policy"
	"github.com/KhaledAOsman/empower-task/domain/task"
)

// CreateTaskRequest carries a manager's task assignment. Dates use the
// YYYY-MM-DD form.
type CreateTaskRequest struct {
	Actor        policy.Actor `json:"actor"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	AssigneeID   string       `json:"assignee_id"`
	StartDate    string       `json:"start_date"`
	DeadlineDate string       `json:"deadline_date"`
}

// GetTaskRequest fetches one task by ID.
type GetTaskRequest struct {
	Actor  policy.Actor `json:"actor"`
	TaskID string       `json:"task_id"`
}

// UpdateTaskRequest carries a manager's partial edit of task fields. Status
// is deliberately absent: status moves only through the status operation so
// every transition is audited.
type UpdateTaskRequest struct {
	Actor        policy.Actor `json:"actor"`
	TaskID       string       `json:"task_id"`
	Title        *string      `json:"title,omitempty"`
	Description  *string      `json:"description,omitempty"`
	AssigneeID   *string      `json:"assignee_id,omitempty"`
	StartDate    *string      `json:"start_date,omitempty"`
	DeadlineDate *string      `json:"deadline_date,omitempty"`
}

// UpdateStatusRequest moves a task to a new status.
type UpdateStatusRequest struct {
	Actor  policy.Actor `json:"actor"`
	TaskID string       `json:"task_id"`
	Status string       `json:"status"`
}

// ListTasksRequest lists tasks, optionally filtered by assignee.
type ListTasksRequest struct {
	Actor      policy.Actor `json:"actor"`
	AssigneeID string       `json:"assignee_id,omitempty"`
}

// ListTasksResponse carries tasks ordered by deadline.
type ListTasksResponse struct {
	Tasks []TaskView `json:"tasks"`
	Total int        `json:"total"`
}

// HistoryRequest fetches the audit trail of one task.
type HistoryRequest struct {
	Actor  policy.Actor `json:"actor"`
	TaskID string       `json:"task_id"`
}

// HistoryResponse carries audit entries in chronological order.
type HistoryResponse struct {
	Entries []HistoryEntryView `json:"entries"`
	Total   int                `json:"total"`
}

// ForAssigneeRequest is the internal lookup reporting uses. It carries no
// actor; the caller has already authorized the read.
type ForAssigneeRequest struct {
	AssigneeID string `json:"assignee_id"`
}

// ForAssigneeResponse carries full task entities so the caller can compute
// over real timestamps.
type ForAssigneeResponse struct {
	Tasks []task.Task `json:"tasks"`
	Total int         `json:"total"`
}

// TaskView is the wire representation of a task. Start and deadline render
// as calendar dates.
type TaskView struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	AssigneeID   string     `json:"assignee_id"`
	AssignerID   string     `json:"assigner_id"`
	Status       string     `json:"status"`
	StartDate    string     `json:"start_date"`
	DeadlineDate string     `json:"deadline_date"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// HistoryEntryView is the wire representation of one audit entry. OldStatus
// is null for a task's first recorded transition.
type HistoryEntryView struct {
	ID          uint      `json:"id"`
	TaskID      string    `json:"task_id"`
	OldStatus   *string   `json:"old_status"`
	NewStatus   string    `json:"new_status"`
	ChangedByID string    `json:"changed_by_id"`
	ChangedAt   time.Time `json:"changed_at"`
}

// toTaskView converts a task entity to its wire representation.
func toTaskView(t *task.Task) TaskView {
	return TaskView{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		AssigneeID:   t.AssigneeID,
		AssignerID:   t.AssignerID,
		Status:       string(t.Status),
		StartDate:    t.StartDate.Format(task.DateLayout),
		DeadlineDate: t.DeadlineDate.Format(task.DateLayout),
		CompletedAt:  t.CompletedAt,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// toHistoryEntryView converts an audit entry to its wire representation.
func toHistoryEntryView(e *task.HistoryEntry) HistoryEntryView {
	var old *string
	if e.OldStatus != nil {
		s := string(*e.OldStatus)
		old = &s
	}
	return HistoryEntryView{
		ID:          e.ID,
		TaskID:      e.TaskID,
		OldStatus:   old,
		NewStatus:   string(e.NewStatus),
		ChangedByID: e.ChangedByID,
		ChangedAt:   e.ChangedAt,
	}
}

// CreateTaskInput carries the service-level fields for a new task. Dates
// stay as strings until the service validates them.
type CreateTaskInput struct {
	Title        string
	Description  string
	AssigneeID   string
	StartDate    string
	DeadlineDate string
}

// TaskPatch carries a partial task edit. Nil fields are not applied.
type TaskPatch struct {
	Title        *string
	Description  *string
	AssigneeID   *string
	StartDate    *string
	DeadlineDate *string
}
