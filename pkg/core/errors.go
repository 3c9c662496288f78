package core

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the executor and its collaborators. Callers
// match them with errors.Is / errors.As and decide how to surface them over
// the protocol layer.
var (
	// ErrMalformedRequest indicates the incoming request failed validation
	// before any task state was published.
	ErrMalformedRequest = errors.New("malformed request")

	// ErrUnsupportedOperation indicates the requested protocol operation is
	// not supported by this agent (e.g. task cancellation).
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrMissingInlineData indicates a file part declared inline content but
	// carried no bytes.
	ErrMissingInlineData = errors.New("file part has no inline data")

	// ErrUnresolvedFileReference indicates a file part referenced a file by
	// URI but the URI was empty.
	ErrUnresolvedFileReference = errors.New("file part has no uri")

	// ErrNoFinalResponse indicates the runtime event stream ended without a
	// final response event. The executor does not fail the task itself;
	// the protocol layer decides what to publish.
	ErrNoFinalResponse = errors.New("event stream ended without a final response")

	// ErrSessionExists is returned by SessionService.CreateSession when a
	// session with the same key already exists.
	ErrSessionExists = errors.New("session already exists")
)

// UnsupportedPartTypeError indicates a message part of a kind the converter
// cannot translate.
type UnsupportedPartTypeError struct {
	Type string
}

func (e *UnsupportedPartTypeError) Error() string {
	return fmt.Sprintf("unsupported part type: %s", e.Type)
}

// SessionResolutionError indicates a session could neither be fetched nor
// created for the given key.
type SessionResolutionError struct {
	AppName   string
	UserID    string
	SessionID string
	Err       error
}

func (e *SessionResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to resolve session %s for user %s: %v", e.SessionID, e.UserID, e.Err)
	}
	return fmt.Sprintf("failed to resolve session %s for user %s", e.SessionID, e.UserID)
}

func (e *SessionResolutionError) Unwrap() error { return e.Err }
