package task

import (
	"time"

	"github.com/KhaledAOsman/empower-task/domain/profile"
)

// Status represents the lifecycle state of a task. Any status may move to
// any other status; the state machine's contract is its side effects
// (completion timestamping, audit logging), not reachability.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusFinished   Status = "finished"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusFinished:
		return true
	}
	return false
}

// Task is a unit of work assigned by a manager to an employee.
// Invariant: CompletedAt is non-nil if and only if Status is finished.
type Task struct {
	ID           string          `gorm:"primaryKey;type:text" json:"id"`
	Title        string          `gorm:"not null;type:text" json:"title"`
	Description  string          `gorm:"type:text" json:"description,omitempty"`
	AssigneeID   string          `gorm:"index;not null;type:text" json:"assignee_id"`
	AssignerID   string          `gorm:"index;not null;type:text" json:"assigner_id"`
	Status       Status          `gorm:"not null;type:text" json:"status"`
	StartDate    time.Time       `gorm:"not null" json:"start_date"`
	DeadlineDate time.Time       `gorm:"not null" json:"deadline_date"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Assignee     profile.Profile `gorm:"foreignKey:AssigneeID;constraint:OnDelete:CASCADE" json:"-"`
	Assigner     profile.Profile `gorm:"foreignKey:AssignerID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for the Task entity.
func (Task) TableName() string {
	return "tasks"
}

// HistoryEntry is an immutable audit record of one actual status change.
// OldStatus is nil for a task's first recorded transition. Entries are
// append-only and ordered by ChangedAt with ID as the tiebreak.
type HistoryEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TaskID      string    `gorm:"index;not null;type:text" json:"task_id"`
	OldStatus   *Status   `gorm:"type:text" json:"old_status"`
	NewStatus   Status    `gorm:"not null;type:text" json:"new_status"`
	ChangedByID string    `gorm:"index;not null;type:text" json:"changed_by_id"`
	ChangedAt   time.Time `gorm:"not null" json:"changed_at"`
	Task        Task      `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for the HistoryEntry entity.
func (HistoryEntry) TableName() string {
	return "task_history"
}
