// Package events holds the typed event definitions published by the tasks
// module and consumed by reporting for cache invalidation.
package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// TaskCreatedEvent is emitted after a task row is persisted.
type TaskCreatedEvent struct {
	TaskID       string    `json:"task_id"`
	Title        string    `json:"title"`
	AssigneeID   string    `json:"assignee_id"`
	AssignerID   string    `json:"assigner_id"`
	DeadlineDate time.Time `json:"deadline_date"`
	CreatedAt    time.Time `json:"created_at"`
}

// TaskCreatedV1 is the typed event definition for task creation.
// Subject: events.task.v1.task-created
var TaskCreatedV1 = helper.EventDefinition[TaskCreatedEvent](
	"task", "TaskCreated", "v1",
)

// TaskStatusChangedEvent is emitted after a status transition commits,
// together with its audit entry. Same-status updates emit nothing.
type TaskStatusChangedEvent struct {
	TaskID      string     `json:"task_id"`
	AssigneeID  string     `json:"assignee_id"`
	OldStatus   *string    `json:"old_status"`
	NewStatus   string     `json:"new_status"`
	ChangedBy   string     `json:"changed_by"`
	ChangedAt   time.Time  `json:"changed_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// TaskStatusChangedV1 is the typed event definition for status transitions.
// Subject: events.task.v1.task-status-changed
var TaskStatusChangedV1 = helper.EventDefinition[TaskStatusChangedEvent](
	"task", "TaskStatusChanged", "v1",
)
