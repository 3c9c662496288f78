package core

import "time"

const (
	// DefaultExecutionTimeout bounds a single task execution, including any
	// tool calls the runtime makes along the way.
	DefaultExecutionTimeout = 30 * time.Minute

	// EventChannelBufferSize is the buffer of the runtime event channel
	// between the runner goroutine and the executor loop.
	EventChannelBufferSize = 10

	// userIDPrefix derives a user id from an A2A context id when the
	// protocol layer does not supply one.
	userIDPrefix = "A2A_USER_"

	// sessionNameMaxLength truncates the first text part when it is used as
	// the display name of a newly created session.
	sessionNameMaxLength = 20

	// StateKeySessionName is the session state key holding the display name.
	StateKeySessionName = "session_name"

	// DefaultMimeType is assumed for file content without an explicit type.
	DefaultMimeType = "application/octet-stream"
)
