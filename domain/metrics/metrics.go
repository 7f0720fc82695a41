// Package metrics computes completion and on-time performance figures over a
// task set. Every function is pure: the reference instant is an argument, and
// identical inputs always produce identical outputs.
package metrics

import (
	"math"
	"time"

	"github.com/KhaledAOsman/empower-task/domain/task"
)

// Summary aggregates the per-employee figures the reporting surface exposes.
type Summary struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	Overdue        int `json:"overdue"`
	CompletionRate int `json:"completion_rate"`
	OnTimeRate     int `json:"on_time_rate"`
}

// CompletionRate returns the percentage of tasks in finished status, rounded
// half-up. An empty set yields 0.
func CompletionRate(tasks []task.Task) int {
	if len(tasks) == 0 {
		return 0
	}
	finished := 0
	for _, t := range tasks {
		if t.Status == task.StatusFinished {
			finished++
		}
	}
	return roundPercent(finished, len(tasks))
}

// OnTimeRate returns the percentage of finished tasks completed on or before
// their deadline date, rounded half-up, over the finished tasks that carry a
// completion timestamp. Yields 0 when no finished task has a timestamp.
// Comparison is calendar-date granular: finishing any time on the deadline
// day is on time.
func OnTimeRate(tasks []task.Task) int {
	completed := 0
	onTime := 0
	for _, t := range tasks {
		if t.Status != task.StatusFinished || t.CompletedAt == nil {
			continue
		}
		completed++
		if !task.DateOnly(*t.CompletedAt).After(task.DateOnly(t.DeadlineDate)) {
			onTime++
		}
	}
	if completed == 0 {
		return 0
	}
	return roundPercent(onTime, completed)
}

// IsOverdue reports whether t is unfinished and its deadline date lies
// strictly before now's UTC calendar date.
func IsOverdue(t task.Task, now time.Time) bool {
	if t.Status == task.StatusFinished {
		return false
	}
	return task.DateOnly(t.DeadlineDate).Before(task.DateOnly(now))
}

// Compute builds the full summary for a task set at the given instant.
func Compute(tasks []task.Task, now time.Time) Summary {
	overdue := 0
	completed := 0
	for _, t := range tasks {
		if t.Status == task.StatusFinished {
			completed++
		}
		if IsOverdue(t, now) {
			overdue++
		}
	}
	return Summary{
		Total:          len(tasks),
		Completed:      completed,
		Overdue:        overdue,
		CompletionRate: CompletionRate(tasks),
		OnTimeRate:     OnTimeRate(tasks),
	}
}

// roundPercent rounds 100*num/den half-up to the nearest integer.
func roundPercent(num, den int) int {
	return int(math.Round(100 * float64(num) / float64(den)))
}
