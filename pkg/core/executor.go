package core

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"trpc.group/trpc-go/trpc-a2a-go/protocol"

	"github.com/cargoflow-dev/cargoflow/pkg/telemetry"
)

// AgentExecutorConfig holds configuration for the executor.
type AgentExecutorConfig struct {
	ExecutionTimeout time.Duration
}

// AgentExecutor bridges one A2A task to one agent run. It validates the
// request, resolves the session, feeds the converted message to the runner,
// and drives the TaskUpdater from the runtime event stream.
type AgentExecutor struct {
	Runner         Runner
	Config         AgentExecutorConfig
	SessionService SessionService
	AppName        string
	Logger         logr.Logger
}

// NewAgentExecutor creates a new AgentExecutor. For no-op logging, pass
// logr.Discard().
func NewAgentExecutor(runner Runner, sessionService SessionService, config AgentExecutorConfig, appName string, logger logr.Logger) *AgentExecutor {
	if config.ExecutionTimeout == 0 {
		config.ExecutionTimeout = DefaultExecutionTimeout
	}
	return &AgentExecutor{
		Runner:         runner,
		Config:         config,
		SessionService: sessionService,
		AppName:        appName,
		Logger:         logger,
	}
}

// ValidateRequest checks the request shape the executor requires. It is
// exported so the protocol layer can reject malformed requests before a task
// is built.
func ValidateRequest(req *protocol.SendMessageParams, taskID, contextID string) error {
	if req == nil {
		return fmt.Errorf("%w: request is nil", ErrMalformedRequest)
	}
	if taskID == "" {
		return fmt.Errorf("%w: task id is empty", ErrMalformedRequest)
	}
	if contextID == "" {
		return fmt.Errorf("%w: context id is empty", ErrMalformedRequest)
	}
	if len(req.Message.Parts) == 0 {
		return fmt.Errorf("%w: message has no parts", ErrMalformedRequest)
	}
	return nil
}

// Execute runs the agent for one request and publishes task transitions to
// the updater. isNewTask selects whether a submitted transition is published
// before work starts. Validation failures return before any updater call.
func (e *AgentExecutor) Execute(ctx context.Context, req *protocol.SendMessageParams, updater TaskUpdater, taskID, contextID string, isNewTask bool) error {
	if err := ValidateRequest(req, taskID, contextID); err != nil {
		return err
	}

	userID, sessionID := ExtractUserAndSessionID(contextID)

	spanAttributes := map[string]string{
		"cargoflow.user_id":      userID,
		"gen_ai.task.id":         taskID,
		"gen_ai.conversation.id": sessionID,
	}
	if e.AppName != "" {
		spanAttributes["cargoflow.app_name"] = e.AppName
	}
	ctx = telemetry.SetSpanAttributes(ctx, spanAttributes)

	if isNewTask {
		if err := updater.Submit(ctx, &req.Message); err != nil {
			return fmt.Errorf("failed to submit task: %w", err)
		}
	}
	if err := updater.StartWork(ctx); err != nil {
		return fmt.Errorf("failed to start work: %w", err)
	}

	content, err := A2AMessageToGenAIContent(&req.Message)
	if err != nil {
		if failErr := updater.Fail(ctx, err.Error()); failErr != nil && e.Logger.GetSink() != nil {
			e.Logger.Error(failErr, "Failed to publish failed state", "taskID", taskID)
		}
		return fmt.Errorf("failed to convert message: %w", err)
	}

	if _, err := ResolveSession(ctx, e.SessionService, e.AppName, userID, sessionID, &req.Message); err != nil {
		if failErr := updater.Fail(ctx, err.Error()); failErr != nil && e.Logger.GetSink() != nil {
			e.Logger.Error(failErr, "Failed to publish failed state", "taskID", taskID)
		}
		return fmt.Errorf("failed to prepare session: %w", err)
	}

	// Detach from the request context so a client disconnect does not abort
	// the run mid-flight; ExecutionTimeout is the only bound.
	execCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.Config.ExecutionTimeout)
	defer cancel()

	events, err := e.Runner.Run(execCtx, userID, sessionID, content)
	if err != nil {
		if failErr := updater.Fail(execCtx, err.Error()); failErr != nil && e.Logger.GetSink() != nil {
			e.Logger.Error(failErr, "Failed to publish failed state", "taskID", taskID)
		}
		return fmt.Errorf("failed to start runner: %w", err)
	}

	err = e.processEvents(execCtx, events, updater, taskID)

	// Release whatever the runner still has buffered so its goroutine can
	// finish and close the channel.
	go func() {
		for range events {
		}
	}()

	return err
}

// processEvents drives the updater from the runtime event stream. It stops
// reading as soon as the final response is handled; a stream that ends
// without one yields ErrNoFinalResponse without publishing a failure.
func (e *AgentExecutor) processEvents(ctx context.Context, events <-chan RuntimeEvent, updater TaskUpdater, taskID string) error {
	for event := range events {
		if ctx.Err() != nil {
			if e.Logger.GetSink() != nil {
				e.Logger.Info("Context cancelled during event processing", "taskID", taskID, "error", ctx.Err())
			}
			return ctx.Err()
		}

		switch event.Kind {
		case EventError:
			reason := "agent run failed"
			if event.Err != nil {
				reason = event.Err.Error()
			}
			if err := updater.Fail(ctx, reason); err != nil {
				return fmt.Errorf("failed to publish failed state: %w", err)
			}
			if event.Err != nil {
				return event.Err
			}
			return fmt.Errorf("runner reported an error without detail")

		case EventFinalResponse:
			parts, err := GenAIPartsToA2AParts(event.Parts)
			if err != nil {
				if failErr := updater.Fail(ctx, err.Error()); failErr != nil && e.Logger.GetSink() != nil {
					e.Logger.Error(failErr, "Failed to publish failed state", "taskID", taskID)
				}
				return fmt.Errorf("failed to convert final response: %w", err)
			}
			if err := updater.AddArtifact(ctx, parts); err != nil {
				return fmt.Errorf("failed to add artifact: %w", err)
			}
			if err := updater.Complete(ctx); err != nil {
				return fmt.Errorf("failed to complete task: %w", err)
			}
			return nil

		case EventFunctionCall:
			if e.Logger.GetSink() != nil {
				e.Logger.V(1).Info("Runtime requested tool calls, skipping status update", "taskID", taskID)
			}

		default:
			parts, err := GenAIPartsToA2AParts(event.Parts)
			if err != nil {
				if failErr := updater.Fail(ctx, err.Error()); failErr != nil && e.Logger.GetSink() != nil {
					e.Logger.Error(failErr, "Failed to publish failed state", "taskID", taskID)
				}
				return fmt.Errorf("failed to convert intermediate response: %w", err)
			}
			if err := updater.UpdateStatus(ctx, protocol.TaskStateWorking, NewAgentMessage(parts)); err != nil {
				return fmt.Errorf("failed to update status: %w", err)
			}
		}
	}

	return ErrNoFinalResponse
}

// Cancel rejects task cancellation. The runtime offers no way to interrupt a
// run in progress, so cancellation is reported as unsupported rather than
// acknowledged and ignored.
func (e *AgentExecutor) Cancel(ctx context.Context, taskID string) error {
	return fmt.Errorf("%w: cancel is not supported for task %s", ErrUnsupportedOperation, taskID)
}
