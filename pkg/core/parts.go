package core

import (
	"encoding/base64"
	"fmt"

	"google.golang.org/genai"
	"trpc.group/trpc-go/trpc-a2a-go/protocol"
)

// A2APartToGenAIPart converts a single A2A message part to a runtime part.
// Text parts map to text, file-by-reference parts to file data, and inline
// file parts to inline data. Anything else is rejected with
// *UnsupportedPartTypeError.
func A2APartToGenAIPart(part protocol.Part) (*genai.Part, error) {
	switch p := part.(type) {
	case *protocol.TextPart:
		return genai.NewPartFromText(p.Text), nil
	case protocol.TextPart:
		return genai.NewPartFromText(p.Text), nil
	case *protocol.FilePart:
		return filePartToGenAIPart(p)
	case protocol.FilePart:
		return filePartToGenAIPart(&p)
	default:
		return nil, &UnsupportedPartTypeError{Type: fmt.Sprintf("%T", part)}
	}
}

func filePartToGenAIPart(p *protocol.FilePart) (*genai.Part, error) {
	switch f := p.File.(type) {
	case *protocol.FileWithURI:
		if f.URI == "" {
			return nil, ErrUnresolvedFileReference
		}
		return genai.NewPartFromURI(f.URI, mimeTypeOrDefault(f.MimeType)), nil
	case *protocol.FileWithBytes:
		if f.Bytes == "" {
			return nil, ErrMissingInlineData
		}
		data, err := base64.StdEncoding.DecodeString(f.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to decode file bytes: %w", err)
		}
		return genai.NewPartFromBytes(data, mimeTypeOrDefault(f.MimeType)), nil
	default:
		return nil, &UnsupportedPartTypeError{Type: fmt.Sprintf("file part with %T", p.File)}
	}
}

// GenAIPartToA2APart converts a single runtime part back to an A2A part.
// The caller is expected to have filtered out parts with no convertible
// content (see GenAIPartsToA2AParts).
func GenAIPartToA2APart(part *genai.Part) (protocol.Part, error) {
	if part == nil {
		return nil, &UnsupportedPartTypeError{Type: "nil part"}
	}
	if part.Text != "" {
		return protocol.NewTextPart(part.Text), nil
	}
	if part.FileData != nil {
		if part.FileData.FileURI == "" {
			return nil, ErrUnresolvedFileReference
		}
		mimeType := part.FileData.MIMEType
		if mimeType == "" {
			mimeType = DefaultMimeType
		}
		return &protocol.FilePart{
			Kind: "file",
			File: &protocol.FileWithURI{
				URI:      part.FileData.FileURI,
				MimeType: &mimeType,
			},
		}, nil
	}
	if part.InlineData != nil {
		if len(part.InlineData.Data) == 0 {
			return nil, ErrMissingInlineData
		}
		mimeType := part.InlineData.MIMEType
		if mimeType == "" {
			mimeType = DefaultMimeType
		}
		return &protocol.FilePart{
			Kind: "file",
			File: &protocol.FileWithBytes{
				Bytes:    base64.StdEncoding.EncodeToString(part.InlineData.Data),
				MimeType: &mimeType,
			},
		}, nil
	}
	return nil, &UnsupportedPartTypeError{Type: "genai part without content"}
}

// GenAIPartsToA2AParts converts runtime parts to A2A parts, silently dropping
// parts that carry no text, file reference, or inline data (function calls,
// thoughts, empty chunks). Order of the surviving parts is preserved. The
// first conversion error aborts the whole batch.
func GenAIPartsToA2AParts(parts []*genai.Part) ([]protocol.Part, error) {
	out := make([]protocol.Part, 0, len(parts))
	for _, part := range parts {
		if part == nil {
			continue
		}
		if part.Text == "" && part.FileData == nil && part.InlineData == nil {
			continue
		}
		converted, err := GenAIPartToA2APart(part)
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}

// A2AMessageToGenAIContent converts an incoming A2A message to runtime
// content with the "user" role. Any unconvertible part fails the whole
// message; no partial content is produced.
func A2AMessageToGenAIContent(msg *protocol.Message) (*genai.Content, error) {
	if msg == nil {
		return nil, fmt.Errorf("%w: message is nil", ErrMalformedRequest)
	}
	parts := make([]*genai.Part, 0, len(msg.Parts))
	for i, part := range msg.Parts {
		converted, err := A2APartToGenAIPart(part)
		if err != nil {
			return nil, fmt.Errorf("part %d: %w", i, err)
		}
		parts = append(parts, converted)
	}
	role := "user"
	if msg.Role == protocol.MessageRoleAgent {
		role = "model"
	}
	return &genai.Content{Role: role, Parts: parts}, nil
}

func mimeTypeOrDefault(mimeType *string) string {
	if mimeType == nil || *mimeType == "" {
		return DefaultMimeType
	}
	return *mimeType
}
