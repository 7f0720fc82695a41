package reporting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KhaledAOsman/empower-task/domain/profile"
	"github.com/KhaledAOsman/empower-task/domain/task"
	"github.com/KhaledAOsman/empower-task/modules/registry"
	"github.com/KhaledAOsman/empower-task/modules/tasks"
	"github.com/KhaledAOsman/empower-task/store"
)

// repoTasksPort backs the reporting service with a real task repository,
// so the figures below run over rows SQLite actually stored.
type repoTasksPort struct {
	repo *tasks.TaskRepository
}

func (p repoTasksPort) ForAssignee(_ context.Context, assigneeID string) ([]task.Task, error) {
	return p.repo.FindByAssignee(assigneeID)
}

func seedFlowProfile(t *testing.T, repo *registry.ProfileRepository, id, username string, role profile.Role) *profile.Profile {
	t.Helper()

	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	p := &profile.Profile{
		ID:           id,
		Username:     username,
		PasswordHash: "x",
		FullName:     "Flow " + username,
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, repo.Create(p))
	return p
}

// TestEmployeeMetrics_FullFlow walks one task through its lifecycle on a
// real database and checks the figures after each step: an early finish
// counts as on time, reopening and finishing late flips the on-time rate
// while the completion rate stays put.
func TestEmployeeMetrics_FullFlow(t *testing.T) {
	ctx := context.Background()

	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	profileRepo := registry.NewProfileRepository(s.DB())
	manager := seedFlowProfile(t, profileRepo, "mgr-1", "boss", profile.RoleManager)
	employee := seedFlowProfile(t, profileRepo, "emp-1", "amira", profile.RoleEmployee)

	taskRepo := tasks.NewTaskRepository(s.DB())
	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	tk := &task.Task{
		ID:           "task-1",
		Title:        "Quarterly report",
		AssigneeID:   employee.ID,
		AssignerID:   manager.ID,
		Status:       task.StatusNotStarted,
		StartDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		DeadlineDate: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	require.NoError(t, taskRepo.Create(tk))

	svc := NewService(repoTasksPort{repo: taskRepo}, &stubRegistry{profiles: map[string]*profile.Profile{
		manager.ID:  manager,
		employee.ID: employee,
	}})
	svc.now = func() time.Time { return testClock }

	// Nothing finished yet.
	resp, err := svc.EmployeeMetrics(ctx, managerActor(), employee.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, 0, resp.Completed)
	assert.Equal(t, 0, resp.CompletionRate)
	assert.Equal(t, 0, resp.OnTimeRate)

	// The assignee picks the task up.
	_, entry, err := taskRepo.UpdateStatus(tk.ID, task.StatusInProgress, employee.ID, time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Nil(t, entry.OldStatus)

	// Finished five days before the deadline: on time.
	updated, entry, err := taskRepo.UpdateStatus(tk.ID, task.StatusFinished, employee.ID, time.Date(2024, 1, 5, 15, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, entry)
	require.NotNil(t, updated.CompletedAt)
	assert.Equal(t, time.Date(2024, 1, 5, 15, 0, 0, 0, time.UTC), updated.CompletedAt.UTC())

	resp, err = svc.EmployeeMetrics(ctx, managerActor(), employee.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Completed)
	assert.Equal(t, 100, resp.CompletionRate)
	assert.Equal(t, 100, resp.OnTimeRate)
	assert.Equal(t, 0, resp.Overdue)

	// Reopened and finished again after the deadline: late.
	_, _, err = taskRepo.UpdateStatus(tk.ID, task.StatusInProgress, manager.ID, time.Date(2024, 1, 12, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, _, err = taskRepo.UpdateStatus(tk.ID, task.StatusFinished, employee.ID, time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	resp, err = svc.EmployeeMetrics(ctx, managerActor(), employee.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, resp.CompletionRate)
	assert.Equal(t, 0, resp.OnTimeRate)

	// Four transitions, each audited in order.
	entries, err := taskRepo.History(tk.ID)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Nil(t, entries[0].OldStatus)
	for i, want := range []task.Status{task.StatusInProgress, task.StatusFinished, task.StatusInProgress, task.StatusFinished} {
		assert.Equal(t, want, entries[i].NewStatus)
	}
}
