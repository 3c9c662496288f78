package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/cargoflow-dev/cargoflow/pkg/core"
)

type sessionKey struct {
	appName   string
	userID    string
	sessionID string
}

// InMemoryService keeps sessions in process memory. Creation is an
// insert-if-absent under one lock acquisition, so concurrent creates for the
// same key resolve to exactly one stored session and the losers observe
// core.ErrSessionExists.
type InMemoryService struct {
	mu       sync.Mutex
	sessions map[sessionKey]*core.Session
}

var _ core.SessionService = (*InMemoryService)(nil)

// NewInMemoryService creates an empty in-memory session service.
func NewInMemoryService() *InMemoryService {
	return &InMemoryService{
		sessions: make(map[sessionKey]*core.Session),
	}
}

func (s *InMemoryService) CreateSession(ctx context.Context, appName, userID string, state map[string]interface{}, sessionID string) (*core.Session, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}
	if state == nil {
		state = make(map[string]interface{})
	}

	key := sessionKey{appName: appName, userID: userID, sessionID: sessionID}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[key]; ok {
		return nil, core.ErrSessionExists
	}
	session := &core.Session{
		ID:      sessionID,
		UserID:  userID,
		AppName: appName,
		State:   state,
	}
	s.sessions[key] = session
	return session, nil
}

func (s *InMemoryService) GetSession(ctx context.Context, appName, userID, sessionID string) (*core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionKey{appName: appName, userID: userID, sessionID: sessionID}]
	if !ok {
		return nil, nil
	}
	return session, nil
}

func (s *InMemoryService) DeleteSession(ctx context.Context, appName, userID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionKey{appName: appName, userID: userID, sessionID: sessionID})
	return nil
}

func (s *InMemoryService) AppendEvent(ctx context.Context, session *core.Session, event interface{}) error {
	if session == nil {
		return fmt.Errorf("session is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.sessions[sessionKey{appName: session.AppName, userID: session.UserID, sessionID: session.ID}]
	if !ok {
		return fmt.Errorf("session %s not found", session.ID)
	}
	stored.Events = append(stored.Events, event)
	return nil
}
