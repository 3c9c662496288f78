package a2a

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"trpc.group/trpc-go/trpc-a2a-go/protocol"
	"trpc.group/trpc-go/trpc-a2a-go/taskmanager"

	"github.com/cargoflow-dev/cargoflow/pkg/core"
	"github.com/cargoflow-dev/cargoflow/pkg/taskstore"
)

// noFinalResponseMessage is published when the runtime stream ends without a
// final response. The executor reports that condition as an error; failing
// the task is this layer's policy.
const noFinalResponseMessage = "The agent finished execution unexpectedly without a final response."

// persistTimeout bounds saving the terminal task snapshot.
const persistTimeout = 30 * time.Second

// MessageProcessor plugs the executor into the task manager. Each incoming
// message becomes one executor run; task transitions flow back through the
// TaskHandler to subscribers and the task store.
type MessageProcessor struct {
	executor  *core.AgentExecutor
	taskStore taskstore.Store
	logger    logr.Logger
}

var _ taskmanager.MessageProcessor = (*MessageProcessor)(nil)

// NewMessageProcessor creates a processor. taskStore may be nil when task
// persistence is not configured.
func NewMessageProcessor(executor *core.AgentExecutor, taskStore taskstore.Store, logger logr.Logger) *MessageProcessor {
	return &MessageProcessor{
		executor:  executor,
		taskStore: taskStore,
		logger:    logger,
	}
}

// ProcessMessage implements taskmanager.MessageProcessor.
func (p *MessageProcessor) ProcessMessage(
	ctx context.Context,
	message protocol.Message,
	options taskmanager.ProcessOptions,
	handle taskmanager.TaskHandler,
) (*taskmanager.MessageProcessingResult, error) {
	if len(message.Parts) == 0 {
		return nil, fmt.Errorf("%w: message has no parts", core.ErrMalformedRequest)
	}

	// A message without a task id opens a new task; with one it continues
	// the existing task.
	isNewTask := message.TaskID == nil

	taskID, err := handle.BuildTask(message.TaskID, message.ContextID)
	if err != nil {
		return nil, fmt.Errorf("failed to build task: %w", err)
	}
	contextID := handle.GetContextID()

	if p.logger.GetSink() != nil {
		p.logger.Info("Processing message", "taskID", taskID, "contextID", contextID, "streaming", options.Streaming, "newTask", isNewTask)
	}

	updater := newTaskUpdater(handle, taskID, p.logger)
	req := &protocol.SendMessageParams{Message: message}

	if !options.Streaming {
		defer func() {
			if err := handle.CleanTask(&taskID); err != nil && p.logger.GetSink() != nil {
				p.logger.Error(err, "Failed to clean task", "taskID", taskID)
			}
		}()
		p.execute(ctx, req, updater, handle, taskID, contextID, isNewTask)
		return &taskmanager.MessageProcessingResult{
			Result: updater.resultMessage(),
		}, nil
	}

	subscriber, err := handle.SubscribeTask(&taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to task: %w", err)
	}

	go func() {
		defer func() {
			if err := handle.CleanTask(&taskID); err != nil && p.logger.GetSink() != nil {
				p.logger.Error(err, "Failed to clean task", "taskID", taskID)
			}
		}()
		// Detached: a client disconnect must not abort the run; the
		// executor applies its own timeout.
		p.execute(context.WithoutCancel(ctx), req, updater, handle, taskID, contextID, isNewTask)
	}()

	return &taskmanager.MessageProcessingResult{
		StreamingEvents: subscriber,
	}, nil
}

// execute runs the executor, applies the no-final-response policy, and
// persists the terminal task snapshot.
func (p *MessageProcessor) execute(ctx context.Context, req *protocol.SendMessageParams, updater *taskUpdater, handle taskmanager.TaskHandler, taskID, contextID string, isNewTask bool) {
	err := p.executor.Execute(ctx, req, updater, taskID, contextID, isNewTask)
	if err != nil {
		if errors.Is(err, core.ErrNoFinalResponse) {
			if failErr := updater.Fail(ctx, noFinalResponseMessage); failErr != nil && p.logger.GetSink() != nil {
				p.logger.Error(failErr, "Failed to publish failed state", "taskID", taskID)
			}
		}
		if p.logger.GetSink() != nil {
			p.logger.Error(err, "Task execution failed", "taskID", taskID, "contextID", contextID)
		}
	}

	p.persistTask(ctx, handle, taskID)
}

// persistTask saves the task's terminal snapshot when a store is configured.
func (p *MessageProcessor) persistTask(ctx context.Context, handle taskmanager.TaskHandler, taskID string) {
	if p.taskStore == nil {
		return
	}

	task, err := handle.GetTask(&taskID)
	if err != nil || task == nil {
		if err != nil && p.logger.GetSink() != nil {
			p.logger.Error(err, "Failed to load task for persistence", "taskID", taskID)
		}
		return
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	if err := p.taskStore.Save(saveCtx, task.Task()); err != nil && p.logger.GetSink() != nil {
		p.logger.Error(err, "Failed to persist task", "taskID", taskID)
	}
}
