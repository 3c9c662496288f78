package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	adksession "google.golang.org/adk/session"

	"github.com/cargoflow-dev/cargoflow/pkg/core"
)

const (
	headerContentType = "Content-Type"
	headerXUserID     = "X-User-ID"
	contentTypeJSON   = "application/json"
)

// RemoteService persists sessions in the CargoFlow backend over HTTP.
//
// Endpoints: POST /api/sessions, GET/DELETE /api/sessions/{id},
// POST /api/sessions/{id}/events. A GET miss is (nil, nil); a POST conflict
// maps to core.ErrSessionExists so ResolveSession can re-fetch the winner.
type RemoteService struct {
	BaseURL string
	Client  *http.Client
	Logger  logr.Logger
}

var _ core.SessionService = (*RemoteService)(nil)

// NewRemoteService creates a session service backed by the given base URL.
// For no-op logging, pass logr.Discard().
func NewRemoteService(baseURL string, client *http.Client, logger logr.Logger) *RemoteService {
	return &RemoteService{
		BaseURL: baseURL,
		Client:  client,
		Logger:  logger,
	}
}

func (s *RemoteService) CreateSession(ctx context.Context, appName, userID string, state map[string]interface{}, sessionID string) (*core.Session, error) {
	if s.Logger.GetSink() != nil {
		s.Logger.V(1).Info("Creating session", "appName", appName, "userID", userID, "sessionID", sessionID)
	}

	reqData := map[string]interface{}{
		"user_id":   userID,
		"agent_ref": appName,
	}
	if sessionID != "" {
		reqData["id"] = sessionID
	}
	if state != nil {
		if name, ok := state[core.StateKeySessionName].(string); ok {
			reqData["name"] = name
		}
	}

	body, err := json.Marshal(reqData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, "POST", s.BaseURL+"/api/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(headerContentType, contentTypeJSON)
	req.Header.Set(headerXUserID, userID)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return nil, core.ErrSessionExists
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var errorBody bytes.Buffer
		_, _ = errorBody.ReadFrom(resp.Body)
		if errorBody.Len() > 0 {
			return nil, fmt.Errorf("failed to create session: status %d - %s", resp.StatusCode, errorBody.String())
		}
		return nil, fmt.Errorf("failed to create session: status %d", resp.StatusCode)
	}

	var result struct {
		Data struct {
			ID     string `json:"id"`
			UserID string `json:"user_id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	if s.Logger.GetSink() != nil {
		s.Logger.V(1).Info("Session created", "sessionID", result.Data.ID, "userID", result.Data.UserID)
	}

	return &core.Session{
		ID:      result.Data.ID,
		UserID:  result.Data.UserID,
		AppName: appName,
		State:   state,
	}, nil
}

func (s *RemoteService) GetSession(ctx context.Context, appName, userID, sessionID string) (*core.Session, error) {
	url := fmt.Sprintf("%s/api/sessions/%s?user_id=%s&limit=-1", s.BaseURL, sessionID, userID)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(headerXUserID, userID)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		if s.Logger.GetSink() != nil {
			s.Logger.Info("Session not found", "sessionID", sessionID, "userID", userID)
		}
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get session: status %d", resp.StatusCode)
	}

	var result struct {
		Data struct {
			Session struct {
				ID     string `json:"id"`
				UserID string `json:"user_id"`
			} `json:"session"`
			Events []struct {
				Data json.RawMessage `json:"data"`
			} `json:"events"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	// Stored events are runtime event JSON; parse them back so the runtime
	// sees full conversation history.
	events := make([]interface{}, 0, len(result.Data.Events))
	for _, eventData := range result.Data.Events {
		var adkEvent adksession.Event
		if err := json.Unmarshal(eventData.Data, &adkEvent); err != nil {
			if s.Logger.GetSink() != nil {
				s.Logger.V(1).Info("Failed to parse stored event, skipping", "error", err)
			}
			continue
		}
		events = append(events, &adkEvent)
	}

	if s.Logger.GetSink() != nil {
		s.Logger.V(1).Info("Session retrieved", "sessionID", result.Data.Session.ID, "eventsCount", len(events))
	}

	return &core.Session{
		ID:      result.Data.Session.ID,
		UserID:  result.Data.Session.UserID,
		AppName: appName,
		State:   make(map[string]interface{}),
		Events:  events,
	}, nil
}

func (s *RemoteService) DeleteSession(ctx context.Context, appName, userID, sessionID string) error {
	url := fmt.Sprintf("%s/api/sessions/%s?user_id=%s", s.BaseURL, sessionID, userID)
	req, err := http.NewRequestWithContext(ctx, "DELETE", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(headerXUserID, userID)

	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("failed to delete session: status %d", resp.StatusCode)
	}
	return nil
}

func (s *RemoteService) AppendEvent(ctx context.Context, session *core.Session, event interface{}) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	reqData := map[string]interface{}{
		"id":   eventID(eventData),
		"data": string(eventData),
	}

	body, err := json.Marshal(reqData)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	url := fmt.Sprintf("%s/api/sessions/%s/events?user_id=%s", s.BaseURL, session.ID, session.UserID)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(headerContentType, contentTypeJSON)
	req.Header.Set(headerXUserID, session.UserID)

	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to append event: status %d, response: %s", resp.StatusCode, string(bodyBytes))
	}
	return nil
}

// eventID returns the event's own id when its JSON form carries one,
// otherwise a fresh uuid.
func eventID(eventData []byte) string {
	var m map[string]interface{}
	if err := json.Unmarshal(eventData, &m); err == nil {
		if id, ok := m["id"].(string); ok && id != "" {
			return id
		}
	}
	return uuid.New().String()
}
