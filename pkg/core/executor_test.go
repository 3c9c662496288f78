package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-logr/logr"
	"google.golang.org/genai"
	"trpc.group/trpc-go/trpc-a2a-go/protocol"
)

// fakeRunner replays a fixed event stream.
type fakeRunner struct {
	events []RuntimeEvent
	err    error

	gotUserID    string
	gotSessionID string
	gotContent   *genai.Content
}

func (r *fakeRunner) Run(ctx context.Context, userID, sessionID string, content *genai.Content) (<-chan RuntimeEvent, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.gotUserID = userID
	r.gotSessionID = sessionID
	r.gotContent = content

	ch := make(chan RuntimeEvent, len(r.events))
	for _, event := range r.events {
		ch <- event
	}
	close(ch)
	return ch, nil
}

// recordingUpdater records every transition in order.
type recordingUpdater struct {
	calls      []string
	states     []protocol.TaskState
	artifacts  [][]protocol.Part
	failReason string
	failErr    error
}

func (u *recordingUpdater) Submit(ctx context.Context, msg *protocol.Message) error {
	u.calls = append(u.calls, "submit")
	return nil
}

func (u *recordingUpdater) StartWork(ctx context.Context) error {
	u.calls = append(u.calls, "start_work")
	return nil
}

func (u *recordingUpdater) UpdateStatus(ctx context.Context, state protocol.TaskState, msg *protocol.Message) error {
	u.calls = append(u.calls, "update_status")
	u.states = append(u.states, state)
	return nil
}

func (u *recordingUpdater) AddArtifact(ctx context.Context, parts []protocol.Part) error {
	u.calls = append(u.calls, "add_artifact")
	u.artifacts = append(u.artifacts, parts)
	return nil
}

func (u *recordingUpdater) Complete(ctx context.Context) error {
	u.calls = append(u.calls, "complete")
	return nil
}

func (u *recordingUpdater) Fail(ctx context.Context, reason string) error {
	u.calls = append(u.calls, "fail")
	u.failReason = reason
	return u.failErr
}

func textEvent(kind EventKind, text string) RuntimeEvent {
	return RuntimeEvent{Kind: kind, Parts: []*genai.Part{genai.NewPartFromText(text)}}
}

func newRequest(text string) *protocol.SendMessageParams {
	msg := protocol.NewMessage(protocol.MessageRoleUser, []protocol.Part{protocol.NewTextPart(text)})
	return &protocol.SendMessageParams{Message: msg}
}

func newExecutor(runner Runner) *AgentExecutor {
	return NewAgentExecutor(runner, nil, AgentExecutorConfig{}, "cargoflow", logr.Discard())
}

func TestExecuteHappyPath(t *testing.T) {
	runner := &fakeRunner{events: []RuntimeEvent{
		textEvent(EventContent, "Checking shipment ABC123..."),
		textEvent(EventFinalResponse, "Shipment ABC123 is delayed by 3 hours."),
	}}
	updater := &recordingUpdater{}
	executor := newExecutor(runner)

	err := executor.Execute(context.Background(), newRequest("where is ABC123?"), updater, "task-1", "ctx-1", true)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	want := []string{"submit", "start_work", "update_status", "add_artifact", "complete"}
	if len(updater.calls) != len(want) {
		t.Fatalf("expected calls %v, got %v", want, updater.calls)
	}
	for i, call := range want {
		if updater.calls[i] != call {
			t.Fatalf("expected calls %v, got %v", want, updater.calls)
		}
	}
	if updater.states[0] != protocol.TaskStateWorking {
		t.Errorf("expected working state for intermediate update, got %s", updater.states[0])
	}
	if len(updater.artifacts) != 1 || len(updater.artifacts[0]) != 1 {
		t.Fatalf("expected one artifact with one part, got %+v", updater.artifacts)
	}

	if runner.gotUserID != userIDPrefix+"ctx-1" {
		t.Errorf("unexpected user id: %s", runner.gotUserID)
	}
	if runner.gotSessionID != "ctx-1" {
		t.Errorf("unexpected session id: %s", runner.gotSessionID)
	}
}

func TestExecuteExistingTaskSkipsSubmit(t *testing.T) {
	runner := &fakeRunner{events: []RuntimeEvent{
		textEvent(EventFinalResponse, "done"),
	}}
	updater := &recordingUpdater{}
	executor := newExecutor(runner)

	if err := executor.Execute(context.Background(), newRequest("continue"), updater, "task-1", "ctx-1", false); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if updater.calls[0] != "start_work" {
		t.Errorf("expected start_work first for existing task, got %v", updater.calls)
	}
	for _, call := range updater.calls {
		if call == "submit" {
			t.Error("submit published for existing task")
		}
	}
}

func TestExecuteMalformedRequest(t *testing.T) {
	tests := []struct {
		name      string
		req       *protocol.SendMessageParams
		taskID    string
		contextID string
	}{
		{"nil request", nil, "task-1", "ctx-1"},
		{"empty task id", newRequest("hi"), "", "ctx-1"},
		{"empty context id", newRequest("hi"), "task-1", ""},
		{"no parts", &protocol.SendMessageParams{Message: protocol.NewMessage(protocol.MessageRoleUser, nil)}, "task-1", "ctx-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updater := &recordingUpdater{}
			executor := newExecutor(&fakeRunner{})

			err := executor.Execute(context.Background(), tt.req, updater, tt.taskID, tt.contextID, true)
			if !errors.Is(err, ErrMalformedRequest) {
				t.Fatalf("expected ErrMalformedRequest, got %v", err)
			}
			if len(updater.calls) != 0 {
				t.Errorf("expected no updater calls for malformed request, got %v", updater.calls)
			}
		})
	}
}

func TestExecuteNoFinalResponse(t *testing.T) {
	runner := &fakeRunner{events: []RuntimeEvent{
		textEvent(EventContent, "thinking"),
		{Kind: EventFunctionCall},
	}}
	updater := &recordingUpdater{}
	executor := newExecutor(runner)

	err := executor.Execute(context.Background(), newRequest("hello"), updater, "task-1", "ctx-1", true)
	if !errors.Is(err, ErrNoFinalResponse) {
		t.Fatalf("expected ErrNoFinalResponse, got %v", err)
	}

	// Failing the task on a missing final response is the protocol layer's
	// call, not the executor's.
	for _, call := range updater.calls {
		if call == "fail" || call == "complete" {
			t.Errorf("unexpected terminal call %s: %v", call, updater.calls)
		}
	}
}

func TestExecuteFunctionCallsSkipStatusUpdates(t *testing.T) {
	runner := &fakeRunner{events: []RuntimeEvent{
		{Kind: EventFunctionCall},
		{Kind: EventFunctionCall},
		textEvent(EventFinalResponse, "done"),
	}}
	updater := &recordingUpdater{}
	executor := newExecutor(runner)

	if err := executor.Execute(context.Background(), newRequest("hello"), updater, "task-1", "ctx-1", true); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	for _, call := range updater.calls {
		if call == "update_status" {
			t.Errorf("function call events must not publish status updates: %v", updater.calls)
		}
	}
}

func TestExecuteStopsReadingAfterFinal(t *testing.T) {
	runner := &fakeRunner{events: []RuntimeEvent{
		textEvent(EventFinalResponse, "done"),
		textEvent(EventContent, "straggler"),
	}}
	updater := &recordingUpdater{}
	executor := newExecutor(runner)

	if err := executor.Execute(context.Background(), newRequest("hello"), updater, "task-1", "ctx-1", true); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	last := updater.calls[len(updater.calls)-1]
	if last != "complete" {
		t.Errorf("expected complete to be the last call, got %v", updater.calls)
	}
}

func TestExecuteErrorEvent(t *testing.T) {
	runErr := fmt.Errorf("model quota exceeded")
	runner := &fakeRunner{events: []RuntimeEvent{
		{Kind: EventError, Err: runErr},
	}}
	updater := &recordingUpdater{}
	executor := newExecutor(runner)

	err := executor.Execute(context.Background(), newRequest("hello"), updater, "task-1", "ctx-1", true)
	if !errors.Is(err, runErr) {
		t.Fatalf("expected runner error, got %v", err)
	}
	if updater.failReason != "model quota exceeded" {
		t.Errorf("unexpected fail reason: %q", updater.failReason)
	}
}

func TestExecuteRunnerStartFailure(t *testing.T) {
	startErr := fmt.Errorf("runner unavailable")
	updater := &recordingUpdater{}
	executor := newExecutor(&fakeRunner{err: startErr})

	err := executor.Execute(context.Background(), newRequest("hello"), updater, "task-1", "ctx-1", true)
	if !errors.Is(err, startErr) {
		t.Fatalf("expected start error, got %v", err)
	}
	if updater.failReason != "runner unavailable" {
		t.Errorf("unexpected fail reason: %q", updater.failReason)
	}
}

func TestExecuteConversionFailureFailsTask(t *testing.T) {
	runner := &fakeRunner{events: []RuntimeEvent{
		{Kind: EventContent, Parts: []*genai.Part{{FileData: &genai.FileData{}}}},
		textEvent(EventFinalResponse, "done"),
	}}
	updater := &recordingUpdater{}
	executor := newExecutor(runner)

	err := executor.Execute(context.Background(), newRequest("hello"), updater, "task-1", "ctx-1", true)
	if !errors.Is(err, ErrUnresolvedFileReference) {
		t.Fatalf("expected conversion error, got %v", err)
	}
	last := updater.calls[len(updater.calls)-1]
	if last != "fail" {
		t.Errorf("expected fail after conversion error, got %v", updater.calls)
	}
}

func TestExecuteUnconvertibleMessageFailsTask(t *testing.T) {
	msg := protocol.NewMessage(protocol.MessageRoleUser, []protocol.Part{
		&protocol.FilePart{Kind: "file", File: &protocol.FileWithURI{}},
	})
	updater := &recordingUpdater{}
	executor := newExecutor(&fakeRunner{})

	err := executor.Execute(context.Background(), &protocol.SendMessageParams{Message: msg}, updater, "task-1", "ctx-1", true)
	if !errors.Is(err, ErrUnresolvedFileReference) {
		t.Fatalf("expected conversion error, got %v", err)
	}
	last := updater.calls[len(updater.calls)-1]
	if last != "fail" {
		t.Errorf("expected fail after message conversion error, got %v", updater.calls)
	}
}

func TestCancelUnsupported(t *testing.T) {
	executor := newExecutor(&fakeRunner{})
	err := executor.Cancel(context.Background(), "task-1")
	if !errors.Is(err, ErrUnsupportedOperation) {
		t.Fatalf("expected ErrUnsupportedOperation, got %v", err)
	}
}
