package adk

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/go-logr/logr"
	adksession "google.golang.org/adk/session"

	"github.com/cargoflow-dev/cargoflow/pkg/core"
)

// appendTimeout bounds event persistence so a slow backend cannot stall the
// agent loop, and a client disconnect cannot cancel it.
const appendTimeout = 30 * time.Second

// SessionServiceAdapter exposes a core.SessionService as the ADK's
// session.Service so the runner reads and writes conversation history
// through our backend.
type SessionServiceAdapter struct {
	service core.SessionService
	logger  logr.Logger
}

var _ adksession.Service = (*SessionServiceAdapter)(nil)

// NewSessionServiceAdapter creates a new adapter.
func NewSessionServiceAdapter(service core.SessionService, logger logr.Logger) *SessionServiceAdapter {
	return &SessionServiceAdapter{
		service: service,
		logger:  logger,
	}
}

// Create implements session.Service.
func (a *SessionServiceAdapter) Create(ctx context.Context, req *adksession.CreateRequest) (*adksession.CreateResponse, error) {
	if a.service == nil {
		return nil, fmt.Errorf("session service is nil")
	}

	state := req.State
	if state == nil {
		state = make(map[string]interface{})
	}

	session, err := a.service.CreateSession(ctx, req.AppName, req.UserID, state, req.SessionID)
	if err != nil {
		return nil, err
	}

	return &adksession.CreateResponse{
		Session: newSessionWrapper(session),
	}, nil
}

// Get implements session.Service. A backend miss yields a nil session, which
// the ADK treats as not found.
func (a *SessionServiceAdapter) Get(ctx context.Context, req *adksession.GetRequest) (*adksession.GetResponse, error) {
	if a.service == nil {
		return nil, fmt.Errorf("session service is nil")
	}

	session, err := a.service.GetSession(ctx, req.AppName, req.UserID, req.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return &adksession.GetResponse{Session: nil}, nil
	}

	return &adksession.GetResponse{
		Session: newSessionWrapper(session),
	}, nil
}

// List implements session.Service. The backend has no list endpoint per
// (app, user); the runner never needs one.
func (a *SessionServiceAdapter) List(ctx context.Context, req *adksession.ListRequest) (*adksession.ListResponse, error) {
	return &adksession.ListResponse{
		Sessions: []adksession.Session{},
	}, nil
}

// Delete implements session.Service.
func (a *SessionServiceAdapter) Delete(ctx context.Context, req *adksession.DeleteRequest) error {
	if a.service == nil {
		return fmt.Errorf("session service is nil")
	}
	return a.service.DeleteSession(ctx, req.AppName, req.UserID, req.SessionID)
}

// AppendEvent implements session.Service. The event is appended to the
// wrapped session first so the next runner step sees it, then persisted on a
// detached context.
func (a *SessionServiceAdapter) AppendEvent(ctx context.Context, session adksession.Session, event *adksession.Event) error {
	if a.service == nil {
		return fmt.Errorf("session service is nil")
	}
	if event == nil {
		return nil
	}

	backing := &core.Session{
		ID:      session.ID(),
		UserID:  session.UserID(),
		AppName: session.AppName(),
	}
	if wrapper, ok := session.(*sessionWrapper); ok {
		wrapper.session.Events = append(wrapper.session.Events, event)
		backing = wrapper.session
	}

	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), appendTimeout)
	defer cancel()
	if err := a.service.AppendEvent(persistCtx, backing, event); err != nil {
		if a.logger.GetSink() != nil {
			a.logger.Error(err, "Failed to persist session event", "sessionID", backing.ID)
		}
		return err
	}
	return nil
}

// sessionWrapper exposes a core.Session through the ADK's Session interface.
// Its Events view reads the live slice, so events appended mid-run are
// visible to the next runner step.
type sessionWrapper struct {
	session *core.Session
	state   *stateWrapper
}

func newSessionWrapper(session *core.Session) *sessionWrapper {
	return &sessionWrapper{
		session: session,
		state:   &stateWrapper{state: session.State},
	}
}

func (s *sessionWrapper) ID() string      { return s.session.ID }
func (s *sessionWrapper) AppName() string { return s.session.AppName }
func (s *sessionWrapper) UserID() string  { return s.session.UserID }

func (s *sessionWrapper) State() adksession.State { return s.state }

func (s *sessionWrapper) Events() adksession.Events {
	return &eventsWrapper{session: s.session}
}

func (s *sessionWrapper) LastUpdateTime() time.Time {
	return time.Now()
}

// eventsWrapper presents the session's runtime events. Entries that are not
// runtime events (nothing stores such entries today) are skipped.
type eventsWrapper struct {
	session *core.Session
}

func (e *eventsWrapper) All() iter.Seq[*adksession.Event] {
	return func(yield func(*adksession.Event) bool) {
		for _, item := range e.session.Events {
			if adkEvent, ok := item.(*adksession.Event); ok && adkEvent != nil {
				if !yield(adkEvent) {
					return
				}
			}
		}
	}
}

func (e *eventsWrapper) Len() int {
	return len(e.session.Events)
}

func (e *eventsWrapper) At(i int) *adksession.Event {
	if i < 0 || i >= len(e.session.Events) {
		return nil
	}
	if adkEvent, ok := e.session.Events[i].(*adksession.Event); ok {
		return adkEvent
	}
	return nil
}

// stateWrapper presents session state through the ADK's State interface.
type stateWrapper struct {
	state map[string]interface{}
}

func (s *stateWrapper) Get(key string) (interface{}, error) {
	if s.state == nil {
		return nil, adksession.ErrStateKeyNotExist
	}
	value, ok := s.state[key]
	if !ok {
		return nil, adksession.ErrStateKeyNotExist
	}
	return value, nil
}

func (s *stateWrapper) Set(key string, value interface{}) error {
	if s.state == nil {
		s.state = make(map[string]interface{})
	}
	s.state[key] = value
	return nil
}

func (s *stateWrapper) All() iter.Seq2[string, interface{}] {
	return func(yield func(string, interface{}) bool) {
		for k, v := range s.state {
			if !yield(k, v) {
				return
			}
		}
	}
}
