// Package a2a implements the protocol side of the bridge: the message
// processor plugged into the task manager, the task updater it hands to the
// executor, and the server wiring.
package a2a

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"trpc.group/trpc-go/trpc-a2a-go/protocol"
	"trpc.group/trpc-go/trpc-a2a-go/taskmanager"

	"github.com/cargoflow-dev/cargoflow/pkg/core"
)

// taskUpdater implements core.TaskUpdater on top of the task manager's
// TaskHandler, so every transition reaches subscribers and task storage.
type taskUpdater struct {
	handle taskmanager.TaskHandler
	taskID string
	logger logr.Logger

	// lastArtifact keeps the final output parts for the non-streaming
	// response message.
	lastArtifact []protocol.Part
	failReason   string
}

var _ core.TaskUpdater = (*taskUpdater)(nil)

func newTaskUpdater(handle taskmanager.TaskHandler, taskID string, logger logr.Logger) *taskUpdater {
	return &taskUpdater{
		handle: handle,
		taskID: taskID,
		logger: logger,
	}
}

func (u *taskUpdater) Submit(ctx context.Context, msg *protocol.Message) error {
	return u.handle.UpdateTaskState(&u.taskID, protocol.TaskStateSubmitted, msg)
}

func (u *taskUpdater) StartWork(ctx context.Context) error {
	return u.handle.UpdateTaskState(&u.taskID, protocol.TaskStateWorking, nil)
}

func (u *taskUpdater) UpdateStatus(ctx context.Context, state protocol.TaskState, msg *protocol.Message) error {
	return u.handle.UpdateTaskState(&u.taskID, state, msg)
}

func (u *taskUpdater) AddArtifact(ctx context.Context, parts []protocol.Part) error {
	u.lastArtifact = parts
	artifact := protocol.Artifact{
		ArtifactID: uuid.New().String(),
		Parts:      parts,
	}
	return u.handle.AddArtifact(&u.taskID, artifact, true, false)
}

func (u *taskUpdater) Complete(ctx context.Context) error {
	return u.handle.UpdateTaskState(&u.taskID, protocol.TaskStateCompleted, nil)
}

func (u *taskUpdater) Fail(ctx context.Context, reason string) error {
	u.failReason = reason
	msg := core.NewAgentMessage([]protocol.Part{protocol.NewTextPart(reason)})
	return u.handle.UpdateTaskState(&u.taskID, protocol.TaskStateFailed, msg)
}

// resultMessage builds the unary response for non-streaming requests: the
// final artifact parts on success, the failure reason otherwise.
func (u *taskUpdater) resultMessage() *protocol.Message {
	if u.failReason != "" {
		return core.NewAgentMessage([]protocol.Part{protocol.NewTextPart(u.failReason)})
	}
	return core.NewAgentMessage(u.lastArtifact)
}
