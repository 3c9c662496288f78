package core

import (
	"context"
	"errors"
	"fmt"

	"trpc.group/trpc-go/trpc-a2a-go/protocol"
)

// Session represents an agent session.
type Session struct {
	ID      string                 `json:"id"`
	UserID  string                 `json:"user_id"`
	AppName string                 `json:"app_name"`
	State   map[string]interface{} `json:"state"`
	Events  []interface{}          `json:"events"`
}

// SessionService is an interface for session management.
//
// CreateSession must be atomic with respect to concurrent calls for the same
// (appName, userID, sessionID) key: exactly one caller wins and the rest get
// ErrSessionExists. GetSession returns (nil, nil) when the session does not
// exist.
type SessionService interface {
	CreateSession(ctx context.Context, appName, userID string, state map[string]interface{}, sessionID string) (*Session, error)
	GetSession(ctx context.Context, appName, userID, sessionID string) (*Session, error)
	DeleteSession(ctx context.Context, appName, userID, sessionID string) error
	AppendEvent(ctx context.Context, session *Session, event interface{}) error
}

// ResolveSession returns the session for the given key, creating it when it
// does not exist yet. Losing a concurrent create race is not an error: the
// winner's session is fetched and returned, so concurrent requests for the
// same context converge on a single session. A nil service yields a detached
// in-process session.
func ResolveSession(ctx context.Context, svc SessionService, appName, userID, sessionID string, msg *protocol.Message) (*Session, error) {
	if svc == nil {
		return &Session{
			ID:      sessionID,
			UserID:  userID,
			AppName: appName,
			State:   make(map[string]interface{}),
		}, nil
	}

	session, err := svc.GetSession(ctx, appName, userID, sessionID)
	if err != nil {
		return nil, &SessionResolutionError{AppName: appName, UserID: userID, SessionID: sessionID, Err: fmt.Errorf("get: %w", err)}
	}
	if session != nil {
		return session, nil
	}

	state := make(map[string]interface{})
	if name := extractSessionName(msg); name != "" {
		state[StateKeySessionName] = name
	}

	session, err = svc.CreateSession(ctx, appName, userID, state, sessionID)
	if errors.Is(err, ErrSessionExists) {
		session, err = svc.GetSession(ctx, appName, userID, sessionID)
		if err != nil {
			return nil, &SessionResolutionError{AppName: appName, UserID: userID, SessionID: sessionID, Err: fmt.Errorf("get after create race: %w", err)}
		}
		if session == nil {
			return nil, &SessionResolutionError{AppName: appName, UserID: userID, SessionID: sessionID, Err: ErrSessionExists}
		}
		return session, nil
	}
	if err != nil {
		return nil, &SessionResolutionError{AppName: appName, UserID: userID, SessionID: sessionID, Err: fmt.Errorf("create: %w", err)}
	}
	if session == nil {
		return nil, &SessionResolutionError{AppName: appName, UserID: userID, SessionID: sessionID}
	}
	return session, nil
}

// extractSessionName derives a display name for a new session from the first
// text part of the opening message, truncated for list views.
func extractSessionName(message *protocol.Message) string {
	if message == nil || len(message.Parts) == 0 {
		return ""
	}
	for _, part := range message.Parts {
		if textPart, ok := part.(*protocol.TextPart); ok && textPart.Text != "" {
			text := textPart.Text
			if len(text) > sessionNameMaxLength {
				return text[:sessionNameMaxLength] + "..."
			}
			return text
		}
	}
	return ""
}

// ExtractUserAndSessionID derives the runtime identifiers from an A2A
// context id. The session id is the context id; the user id is a stable
// prefix of it until the protocol layer exposes an authenticated user.
func ExtractUserAndSessionID(contextID string) (userID, sessionID string) {
	return userIDPrefix + contextID, contextID
}
