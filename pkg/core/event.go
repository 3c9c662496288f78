package core

import (
	"context"

	"google.golang.org/genai"
)

// EventKind classifies a runtime event for the executor loop.
type EventKind int

const (
	// EventContent is an intermediate model response carrying content parts.
	EventContent EventKind = iota
	// EventFunctionCall is a model response requesting one or more tool
	// invocations. The runtime resolves these itself; the executor only
	// observes them.
	EventFunctionCall
	// EventFinalResponse is the terminal response of a run.
	EventFinalResponse
	// EventError reports a runtime failure. Parts is empty and Err is set.
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventContent:
		return "content"
	case EventFunctionCall:
		return "function_call"
	case EventFinalResponse:
		return "final_response"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// RuntimeEvent is one observation from the agent runtime.
type RuntimeEvent struct {
	Kind  EventKind
	Parts []*genai.Part
	Err   error
}

// Runner runs the agent for one user message and streams runtime events back.
// The returned channel is closed when the run finishes, successfully or not.
type Runner interface {
	Run(ctx context.Context, userID, sessionID string, content *genai.Content) (<-chan RuntimeEvent, error)
}
