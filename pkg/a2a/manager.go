package a2a

import (
	"context"
	"fmt"

	"trpc.group/trpc-go/trpc-a2a-go/protocol"
	"trpc.group/trpc-go/trpc-a2a-go/taskmanager"

	"github.com/cargoflow-dev/cargoflow/pkg/core"
)

// TaskManager wraps the in-memory task manager and rejects cancellation:
// the runtime cannot interrupt a run in progress, so tasks/cancel is
// reported as unsupported instead of silently acknowledged.
type TaskManager struct {
	*taskmanager.MemoryTaskManager
}

var _ taskmanager.TaskManager = (*TaskManager)(nil)

// NewTaskManager creates the task manager around the message processor.
func NewTaskManager(processor taskmanager.MessageProcessor) (*TaskManager, error) {
	base, err := taskmanager.NewMemoryTaskManager(processor)
	if err != nil {
		return nil, fmt.Errorf("failed to create task manager: %w", err)
	}
	return &TaskManager{MemoryTaskManager: base}, nil
}

// OnCancelTask implements taskmanager.TaskManager.
func (m *TaskManager) OnCancelTask(ctx context.Context, params protocol.TaskIDParams) (*protocol.Task, error) {
	return nil, fmt.Errorf("%w: cancel is not supported for task %s", core.ErrUnsupportedOperation, params.ID)
}
