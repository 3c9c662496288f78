// Package taskstore persists terminal task snapshots so completed and failed
// tasks survive agent restarts and can be queried later.
package taskstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"trpc.group/trpc-go/trpc-a2a-go/protocol"
)

// Store persists task snapshots keyed by task id.
type Store interface {
	Save(ctx context.Context, task *protocol.Task) error
	Get(ctx context.Context, taskID string) (*protocol.Task, error)
	Delete(ctx context.Context, taskID string) error
}

// InMemoryStore keeps task snapshots in process memory.
type InMemoryStore struct {
	mu    sync.RWMutex
	tasks map[string]*protocol.Task
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty in-memory task store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{tasks: make(map[string]*protocol.Task)}
}

func (s *InMemoryStore) Save(ctx context.Context, task *protocol.Task) error {
	if task == nil || task.ID == "" {
		return fmt.Errorf("task with id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = task
	return nil
}

func (s *InMemoryStore) Get(ctx context.Context, taskID string) (*protocol.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tasks[taskID], nil
}

func (s *InMemoryStore) Delete(ctx context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, taskID)
	return nil
}

// RemoteStore persists tasks in the CargoFlow backend via its REST API.
type RemoteStore struct {
	BaseURL string
	Client  *http.Client
}

var _ Store = (*RemoteStore)(nil)

// NewRemoteStore creates a task store backed by the given base URL.
func NewRemoteStore(baseURL string, client *http.Client) *RemoteStore {
	return &RemoteStore{BaseURL: baseURL, Client: client}
}

// taskResponse wraps backend API responses.
type taskResponse struct {
	Error   bool           `json:"error"`
	Data    *protocol.Task `json:"data,omitempty"`
	Message string         `json:"message,omitempty"`
}

func (s *RemoteStore) Save(ctx context.Context, task *protocol.Task) error {
	taskJSON, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.BaseURL+"/api/tasks", bytes.NewReader(taskJSON))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("failed to save task: status %d", resp.StatusCode)
	}
	return nil
}

func (s *RemoteStore) Get(ctx context.Context, taskID string) (*protocol.Task, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", s.BaseURL+"/api/tasks/"+taskID, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get task: status %d", resp.StatusCode)
	}

	var wrapped taskResponse
	if err := json.NewDecoder(resp.Body).Decode(&wrapped); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return wrapped.Data, nil
}

func (s *RemoteStore) Delete(ctx context.Context, taskID string) error {
	req, err := http.NewRequestWithContext(ctx, "DELETE", s.BaseURL+"/api/tasks/"+taskID, nil)
	if err != nil {
		return err
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("failed to delete task: status %d", resp.StatusCode)
	}
	return nil
}
