package tasks

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/KhaledAOsman/empower-task/domain/fault"
	"github.com/KhaledAOsman/empower-task/domain/task"
)

var (
	// ErrTaskNotFound is returned when no task matches the lookup.
	ErrTaskNotFound = fault.NotFound("task not found")
	// ErrStatusRolledBack is returned when a status transition could not be
	// committed. Nothing was written; the same call can be retried.
	ErrStatusRolledBack = fault.Conflict("status change was rolled back")
)

// TaskRepository handles task and audit persistence using GORM.
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a TaskRepository over the shared handle.
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a new task.
func (r *TaskRepository) Create(t *task.Task) error {
	if err := r.db.Create(t).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// FindByID retrieves a task by its ID.
func (r *TaskRepository) FindByID(id string) (*task.Task, error) {
	var t task.Task
	if err := r.db.First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &t, nil
}

// FindAll retrieves every task, most urgent deadline first.
func (r *TaskRepository) FindAll() ([]task.Task, error) {
	var list []task.Task
	if err := r.db.Order("deadline_date ASC, id ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return list, nil
}

// FindByAssignee retrieves one employee's tasks, most urgent deadline first.
func (r *TaskRepository) FindByAssignee(assigneeID string) ([]task.Task, error) {
	var list []task.Task
	if err := r.db.Where("assignee_id = ?", assigneeID).
		Order("deadline_date ASC, id ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks for assignee: %w", err)
	}
	return list, nil
}

// Update persists a general field edit. Status and completion are never
// touched here; they move only through UpdateStatus.
func (r *TaskRepository) Update(t *task.Task) error {
	result := r.db.Model(&task.Task{}).Where("id = ?", t.ID).Updates(map[string]any{
		"title":         t.Title,
		"description":   t.Description,
		"assignee_id":   t.AssigneeID,
		"start_date":    t.StartDate,
		"deadline_date": t.DeadlineDate,
		"updated_at":    t.UpdatedAt,
	})
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// UpdateStatus moves a task to newStatus inside one transaction: the task
// row, its completion timestamp, and the audit entry commit together or not
// at all. A same-status update is a no-op and returns a nil entry. Moving
// into finished stamps CompletedAt with at; moving out clears it. The first
// audit entry of a task carries a nil old status.
func (r *TaskRepository) UpdateStatus(taskID string, newStatus task.Status, changedBy string, at time.Time) (*task.Task, *task.HistoryEntry, error) {
	var (
		updated *task.Task
		entry   *task.HistoryEntry
	)

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var current task.Task
		if err := tx.First(&current, "id = ?", taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("failed to find task: %w", err)
		}

		if current.Status == newStatus {
			updated = &current
			return nil
		}

		var completedAt *time.Time
		if newStatus == task.StatusFinished {
			completedAt = &at
		}

		if err := tx.Model(&task.Task{}).Where("id = ?", taskID).Updates(map[string]any{
			"status":       newStatus,
			"completed_at": completedAt,
			"updated_at":   at,
		}).Error; err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}

		var priorEntries int64
		if err := tx.Model(&task.HistoryEntry{}).Where("task_id = ?", taskID).Count(&priorEntries).Error; err != nil {
			return fmt.Errorf("failed to count history: %w", err)
		}

		oldStatus := current.Status
		e := &task.HistoryEntry{
			TaskID:      taskID,
			OldStatus:   &oldStatus,
			NewStatus:   newStatus,
			ChangedByID: changedBy,
			ChangedAt:   at,
		}
		if priorEntries == 0 {
			e.OldStatus = nil
		}
		if err := tx.Create(e).Error; err != nil {
			return fmt.Errorf("failed to record history: %w", err)
		}

		current.Status = newStatus
		current.CompletedAt = completedAt
		current.UpdatedAt = at
		updated = &current
		entry = e
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return nil, nil, err
		}
		log.Printf("[tasks] Status change for %s rolled back: %v", taskID, err)
		return nil, nil, ErrStatusRolledBack
	}

	return updated, entry, nil
}

// History retrieves a task's audit entries in chronological order.
func (r *TaskRepository) History(taskID string) ([]task.HistoryEntry, error) {
	var entries []task.HistoryEntry
	if err := r.db.Where("task_id = ?", taskID).
		Order("changed_at ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return entries, nil
}

// CountByAssignee returns how many tasks point at one assignee.
func (r *TaskRepository) CountByAssignee(assigneeID string) (int64, error) {
	var count int64
	if err := r.db.Model(&task.Task{}).Where("assignee_id = ?", assigneeID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

// Count returns the total number of tasks.
func (r *TaskRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&task.Task{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}
