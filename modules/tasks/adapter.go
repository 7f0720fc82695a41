package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/KhaledAOsman/empower-task/domain/task"
)

// TasksPort is what reporting needs from the tasks module: the raw task
// rows of one assignee. Consumers depend on this interface so tests can
// stub it.
type TasksPort interface {
	ForAssignee(ctx context.Context, assigneeID string) ([]task.Task, error)
}

// TasksAdapter implements TasksPort over the tasks module's service
// container.
type TasksAdapter struct {
	container mono.ServiceContainer
}

var _ TasksPort = (*TasksAdapter)(nil)

// NewTasksAdapter wraps a tasks service container.
func NewTasksAdapter(container mono.ServiceContainer) *TasksAdapter {
	return &TasksAdapter{container: container}
}

// ForAssignee returns one employee's tasks with their real timestamps.
func (a *TasksAdapter) ForAssignee(ctx context.Context, assigneeID string) ([]task.Task, error) {
	req := ForAssigneeRequest{AssigneeID: assigneeID}
	var resp ForAssigneeResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "for-assignee", json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return nil, fmt.Errorf("for-assignee service call failed: %w", err)
	}
	return resp.Tasks, nil
}
