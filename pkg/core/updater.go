package core

import (
	"context"

	"github.com/google/uuid"
	"trpc.group/trpc-go/trpc-a2a-go/protocol"
)

// TaskUpdater publishes task lifecycle transitions. The executor drives it;
// the protocol layer implements it on top of the task manager so that every
// transition reaches subscribers and the task store.
type TaskUpdater interface {
	// Submit marks the task as received. Called once, only for new tasks,
	// before any other transition.
	Submit(ctx context.Context, msg *protocol.Message) error

	// StartWork marks the task as actively executing.
	StartWork(ctx context.Context) error

	// UpdateStatus publishes an intermediate, non-final status update.
	UpdateStatus(ctx context.Context, state protocol.TaskState, msg *protocol.Message) error

	// AddArtifact attaches the final output parts to the task.
	AddArtifact(ctx context.Context, parts []protocol.Part) error

	// Complete marks the task as finished successfully. Terminal.
	Complete(ctx context.Context) error

	// Fail marks the task as failed with a human-readable reason. Terminal.
	Fail(ctx context.Context, reason string) error
}

// NewAgentMessage builds an agent-role message around the given parts.
func NewAgentMessage(parts []protocol.Part) *protocol.Message {
	return &protocol.Message{
		MessageID: uuid.New().String(),
		Role:      protocol.MessageRoleAgent,
		Parts:     parts,
	}
}
