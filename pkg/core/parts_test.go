package core

import (
	"encoding/base64"
	"errors"
	"testing"

	"google.golang.org/genai"
	"trpc.group/trpc-go/trpc-a2a-go/protocol"
)

func strPtr(s string) *string { return &s }

func TestA2APartToGenAIPartText(t *testing.T) {
	part, err := A2APartToGenAIPart(protocol.NewTextPart("hello"))
	if err != nil {
		t.Fatalf("A2APartToGenAIPart returned error: %v", err)
	}
	if part.Text != "hello" {
		t.Errorf("expected text hello, got %q", part.Text)
	}
}

func TestA2APartToGenAIPartFileURI(t *testing.T) {
	part, err := A2APartToGenAIPart(&protocol.FilePart{
		Kind: "file",
		File: &protocol.FileWithURI{URI: "gs://bucket/report.pdf", MimeType: strPtr("application/pdf")},
	})
	if err != nil {
		t.Fatalf("A2APartToGenAIPart returned error: %v", err)
	}
	if part.FileData == nil || part.FileData.FileURI != "gs://bucket/report.pdf" {
		t.Fatalf("expected file data part, got %+v", part)
	}
	if part.FileData.MIMEType != "application/pdf" {
		t.Errorf("unexpected mime type: %s", part.FileData.MIMEType)
	}
}

func TestA2APartToGenAIPartFileBytes(t *testing.T) {
	raw := []byte("shipment manifest")
	part, err := A2APartToGenAIPart(&protocol.FilePart{
		Kind: "file",
		File: &protocol.FileWithBytes{Bytes: base64.StdEncoding.EncodeToString(raw)},
	})
	if err != nil {
		t.Fatalf("A2APartToGenAIPart returned error: %v", err)
	}
	if part.InlineData == nil || string(part.InlineData.Data) != "shipment manifest" {
		t.Fatalf("expected inline data part, got %+v", part)
	}
	if part.InlineData.MIMEType != DefaultMimeType {
		t.Errorf("expected default mime type, got %s", part.InlineData.MIMEType)
	}
}

func TestA2APartToGenAIPartErrors(t *testing.T) {
	_, err := A2APartToGenAIPart(&protocol.FilePart{Kind: "file", File: &protocol.FileWithURI{}})
	if !errors.Is(err, ErrUnresolvedFileReference) {
		t.Errorf("expected ErrUnresolvedFileReference, got %v", err)
	}

	_, err = A2APartToGenAIPart(&protocol.FilePart{Kind: "file", File: &protocol.FileWithBytes{}})
	if !errors.Is(err, ErrMissingInlineData) {
		t.Errorf("expected ErrMissingInlineData, got %v", err)
	}

	_, err = A2APartToGenAIPart(&protocol.DataPart{Kind: "data"})
	var unsupported *UnsupportedPartTypeError
	if !errors.As(err, &unsupported) {
		t.Errorf("expected UnsupportedPartTypeError, got %v", err)
	}
}

func TestGenAIPartsToA2APartsFiltersEmpty(t *testing.T) {
	parts := []*genai.Part{
		genai.NewPartFromText("first"),
		nil,
		{FunctionCall: &genai.FunctionCall{Name: "shipment_check_status"}},
		{},
		genai.NewPartFromText("second"),
	}

	converted, err := GenAIPartsToA2AParts(parts)
	if err != nil {
		t.Fatalf("GenAIPartsToA2AParts returned error: %v", err)
	}
	if len(converted) != 2 {
		t.Fatalf("expected 2 parts after filtering, got %d", len(converted))
	}
	first, ok := converted[0].(*protocol.TextPart)
	if !ok || first.Text != "first" {
		t.Errorf("unexpected first part: %+v", converted[0])
	}
	second, ok := converted[1].(*protocol.TextPart)
	if !ok || second.Text != "second" {
		t.Errorf("unexpected second part: %+v", converted[1])
	}
}

func TestGenAIPartsToA2APartsAbortsOnError(t *testing.T) {
	parts := []*genai.Part{
		genai.NewPartFromText("ok"),
		{FileData: &genai.FileData{FileURI: ""}},
	}

	// An empty FileData is content-bearing but unconvertible; the batch
	// fails rather than dropping it.
	_, err := GenAIPartsToA2AParts(parts)
	if !errors.Is(err, ErrUnresolvedFileReference) {
		t.Fatalf("expected ErrUnresolvedFileReference, got %v", err)
	}
}

func TestGenAIPartToA2APartRoundTrip(t *testing.T) {
	data := []byte{0x1f, 0x8b, 0x08}
	part, err := GenAIPartToA2APart(genai.NewPartFromBytes(data, "application/gzip"))
	if err != nil {
		t.Fatalf("GenAIPartToA2APart returned error: %v", err)
	}
	filePart, ok := part.(*protocol.FilePart)
	if !ok {
		t.Fatalf("expected file part, got %T", part)
	}
	withBytes, ok := filePart.File.(*protocol.FileWithBytes)
	if !ok {
		t.Fatalf("expected inline file, got %T", filePart.File)
	}
	if withBytes.Bytes != base64.StdEncoding.EncodeToString(data) {
		t.Errorf("unexpected encoded bytes: %s", withBytes.Bytes)
	}
	if withBytes.MimeType == nil || *withBytes.MimeType != "application/gzip" {
		t.Errorf("unexpected mime type: %v", withBytes.MimeType)
	}
}

func TestA2AMessageToGenAIContent(t *testing.T) {
	msg := protocol.NewMessage(protocol.MessageRoleUser, []protocol.Part{
		protocol.NewTextPart("where is ABC123?"),
	})

	content, err := A2AMessageToGenAIContent(&msg)
	if err != nil {
		t.Fatalf("A2AMessageToGenAIContent returned error: %v", err)
	}
	if content.Role != "user" {
		t.Errorf("expected user role, got %s", content.Role)
	}
	if len(content.Parts) != 1 || content.Parts[0].Text != "where is ABC123?" {
		t.Errorf("unexpected parts: %+v", content.Parts)
	}
}

func TestA2AMessageToGenAIContentAgentRole(t *testing.T) {
	msg := protocol.NewMessage(protocol.MessageRoleAgent, []protocol.Part{
		protocol.NewTextPart("checking"),
	})

	content, err := A2AMessageToGenAIContent(&msg)
	if err != nil {
		t.Fatalf("A2AMessageToGenAIContent returned error: %v", err)
	}
	if content.Role != "model" {
		t.Errorf("expected model role, got %s", content.Role)
	}
}

func TestA2AMessageToGenAIContentFailsWholeMessage(t *testing.T) {
	msg := protocol.NewMessage(protocol.MessageRoleUser, []protocol.Part{
		protocol.NewTextPart("attached manifest"),
		&protocol.FilePart{Kind: "file", File: &protocol.FileWithBytes{}},
	})

	_, err := A2AMessageToGenAIContent(&msg)
	if !errors.Is(err, ErrMissingInlineData) {
		t.Fatalf("expected ErrMissingInlineData, got %v", err)
	}
}

func TestA2AMessageToGenAIContentNil(t *testing.T) {
	_, err := A2AMessageToGenAIContent(nil)
	if !errors.Is(err, ErrMalformedRequest) {
		t.Fatalf("expected ErrMalformedRequest, got %v", err)
	}
}
