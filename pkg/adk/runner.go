// Package adk connects the executor to the Google ADK agent runtime.
package adk

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/runner"
	adksession "google.golang.org/adk/session"

	"github.com/cargoflow-dev/cargoflow/pkg/core"
	"google.golang.org/genai"
)

// RunnerWrapper adapts a Google ADK runner to the executor's Runner
// interface, classifying each ADK event into a runtime event.
//
// The agent loop lives inside adk-go: each step builds the LLM request from
// the session's events, calls the model, resolves any function calls through
// the registered toolsets, and yields the resulting events. The wrapper only
// observes that stream; session persistence happens inside the ADK through
// the configured session service.
type RunnerWrapper struct {
	runner    *runner.Runner
	streaming bool
	logger    logr.Logger
}

var _ core.Runner = (*RunnerWrapper)(nil)

// NewRunnerWrapper wraps an ADK runner. streaming selects SSE streaming mode
// for model responses.
func NewRunnerWrapper(adkRunner *runner.Runner, streaming bool, logger logr.Logger) *RunnerWrapper {
	return &RunnerWrapper{
		runner:    adkRunner,
		streaming: streaming,
		logger:    logger,
	}
}

// Run starts one agent run and streams classified events back on the
// returned channel. The channel is closed when the ADK iterator finishes.
func (w *RunnerWrapper) Run(ctx context.Context, userID, sessionID string, content *genai.Content) (<-chan core.RuntimeEvent, error) {
	ch := make(chan core.RuntimeEvent, core.EventChannelBufferSize)

	runConfig := agent.RunConfig{}
	if w.streaming {
		runConfig.StreamingMode = agent.StreamingModeSSE
	}

	go func() {
		defer close(ch)

		if w.logger.GetSink() != nil {
			w.logger.Info("Starting agent run", "userID", userID, "sessionID", sessionID)
		}

		eventSeq := w.runner.Run(ctx, userID, sessionID, content, runConfig)

		eventCount := 0
		startTime := time.Now()
		for adkEvent, err := range eventSeq {
			eventCount++

			if err != nil {
				if w.logger.GetSink() != nil {
					w.logger.Error(err, "Agent runtime error", "eventNumber", eventCount)
				}
				if !send(ctx, ch, core.RuntimeEvent{Kind: core.EventError, Err: err}) {
					return
				}
				continue
			}
			if adkEvent == nil {
				continue
			}

			if ctx.Err() != nil {
				if w.logger.GetSink() != nil {
					w.logger.Info("Run context cancelled", "eventNumber", eventCount, "error", ctx.Err())
				}
				send(ctx, ch, core.RuntimeEvent{Kind: core.EventError, Err: ctx.Err()})
				return
			}

			event := classifyEvent(adkEvent)
			if w.logger.GetSink() != nil {
				w.logger.V(1).Info("Agent event",
					"eventNumber", eventCount,
					"kind", event.Kind.String(),
					"author", adkEvent.Author,
					"partial", adkEvent.Partial,
					"parts", len(event.Parts))
				logToolCalls(w.logger, adkEvent)
			}

			if !send(ctx, ch, event) {
				return
			}
		}

		if w.logger.GetSink() != nil {
			w.logger.Info("Agent run finished", "totalEvents", eventCount, "elapsed", time.Since(startTime))
		}
	}()

	return ch, nil
}

// classifyEvent maps an ADK event to the executor's event kinds: final
// response, function call request, or intermediate content.
func classifyEvent(adkEvent *adksession.Event) core.RuntimeEvent {
	var parts []*genai.Part
	if adkEvent.LLMResponse.Content != nil {
		parts = adkEvent.LLMResponse.Content.Parts
	}

	if adkEvent.IsFinalResponse() {
		return core.RuntimeEvent{Kind: core.EventFinalResponse, Parts: parts}
	}
	for _, part := range parts {
		if part != nil && part.FunctionCall != nil {
			return core.RuntimeEvent{Kind: core.EventFunctionCall, Parts: parts}
		}
	}
	return core.RuntimeEvent{Kind: core.EventContent, Parts: parts}
}

// send delivers an event unless the context ends first.
func send(ctx context.Context, ch chan<- core.RuntimeEvent, event core.RuntimeEvent) bool {
	select {
	case ch <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

func logToolCalls(logger logr.Logger, adkEvent *adksession.Event) {
	if adkEvent.LLMResponse.Content == nil {
		return
	}
	for _, part := range adkEvent.LLMResponse.Content.Parts {
		if part == nil {
			continue
		}
		if part.FunctionCall != nil {
			logger.Info("Tool call requested", "tool", part.FunctionCall.Name, "callID", part.FunctionCall.ID)
		}
		if part.FunctionResponse != nil {
			logger.Info("Tool call resolved", "tool", part.FunctionResponse.Name, "callID", part.FunctionResponse.ID)
		}
	}
}
