package logistics

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestGenerateCustomerMessageProfessionalDelay(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	update, err := generateCustomerMessageAt(MessageRequest{
		TicketID:     "ABC123",
		CustomerName: "John Doe",
		MessageType:  "initial_delay",
		Tone:         "professional",
		Reason:       "Heavy traffic congestion on I-95 North",
		OriginalETA:  "2026-03-12T12:00:00Z",
		NewETA:       "2026-03-12T15:00:00Z",
		DelayHours:   3.0,
	}, now)
	if err != nil {
		t.Fatalf("generateCustomerMessageAt returned error: %v", err)
	}

	if update.Subject != "Shipment #ABC123 - Initial Delay" {
		t.Errorf("unexpected subject: %s", update.Subject)
	}
	if !strings.Contains(update.Message, "Dear John Doe,") {
		t.Errorf("message missing greeting:\n%s", update.Message)
	}
	if !strings.Contains(update.Message, "Reason: Heavy traffic congestion on I-95 North") {
		t.Errorf("message missing reason:\n%s", update.Message)
	}
	if !strings.Contains(update.Message, "New estimated delivery time: March 12, 2026 at 03:00 PM") {
		t.Errorf("message missing formatted new eta:\n%s", update.Message)
	}
	if !strings.Contains(update.Message, "Delay duration: 3 hours") {
		t.Errorf("message missing delay duration:\n%s", update.Message)
	}
	if update.DelaySeverity != "medium" {
		t.Errorf("expected medium severity for 3 hours, got %s", update.DelaySeverity)
	}
	if update.FollowUpNeeded {
		t.Error("expected no follow-up for 3 hour delay")
	}
	if !strings.HasPrefix(update.UpdateID, "UPD-") || len(update.UpdateID) != 12 {
		t.Errorf("unexpected update id: %s", update.UpdateID)
	}
}

func TestGenerateCustomerMessageCompensation(t *testing.T) {
	base := MessageRequest{
		TicketID:     "ABC123",
		CustomerName: "John Doe",
		MessageType:  "initial_delay",
		Tone:         "apologetic",
		Reason:       "vehicle breakdown",
		DelayHours:   5.0,
	}

	withOffer := base
	withOffer.OfferCompensation = true
	update, err := GenerateCustomerMessage(withOffer)
	if err != nil {
		t.Fatalf("GenerateCustomerMessage returned error: %v", err)
	}
	if !strings.Contains(update.Message, "15% discount") {
		t.Errorf("expected compensation offer in message:\n%s", update.Message)
	}
	if update.DelaySeverity != "high" {
		t.Errorf("expected high severity for 5 hours, got %s", update.DelaySeverity)
	}

	update, err = GenerateCustomerMessage(base)
	if err != nil {
		t.Fatalf("GenerateCustomerMessage returned error: %v", err)
	}
	if strings.Contains(update.Message, "15% discount") {
		t.Error("compensation offered without opt-in")
	}

	// The offer also requires a delay above four hours.
	shortDelay := withOffer
	shortDelay.DelayHours = 2.0
	update, err = GenerateCustomerMessage(shortDelay)
	if err != nil {
		t.Fatalf("GenerateCustomerMessage returned error: %v", err)
	}
	if strings.Contains(update.Message, "15% discount") {
		t.Error("compensation offered for short delay")
	}
}

func TestGenerateCustomerMessageFallbacks(t *testing.T) {
	update, err := GenerateCustomerMessage(MessageRequest{
		TicketID:     "XYZ789",
		CustomerName: "Jane Smith",
		MessageType:  "unknown_type",
		Tone:         "URGENT",
		Reason:       "rain",
	})
	if err != nil {
		t.Fatalf("GenerateCustomerMessage returned error: %v", err)
	}

	// Unknown type falls back to a status update; urgent has no status
	// template so the professional one is used.
	if !strings.Contains(update.Message, "Status update for shipment #XYZ789") {
		t.Errorf("expected status update fallback:\n%s", update.Message)
	}
	if !strings.Contains(update.Message, "En route from Origin to Destination") {
		t.Errorf("expected default route placeholders:\n%s", update.Message)
	}
	if !strings.Contains(update.Message, "Expected arrival: To be determined") {
		t.Errorf("expected eta fallback:\n%s", update.Message)
	}
	if update.Tone != "urgent" {
		t.Errorf("expected normalized tone, got %s", update.Tone)
	}
}

func TestGenerateCustomerMessageUnknownTone(t *testing.T) {
	_, err := GenerateCustomerMessage(MessageRequest{
		TicketID:     "ABC123",
		CustomerName: "John Doe",
		MessageType:  "initial_delay",
		Tone:         "sarcastic",
		Reason:       "traffic",
	})
	var toneErr *InvalidToneError
	if !errors.As(err, &toneErr) {
		t.Fatalf("expected InvalidToneError, got %v", err)
	}
}

func TestGenerateCustomerMessageFollowUp(t *testing.T) {
	update, err := GenerateCustomerMessage(MessageRequest{
		TicketID:     "ABC123",
		CustomerName: "John Doe",
		MessageType:  "initial_delay",
		Tone:         "professional",
		Reason:       "customs hold",
		DelayHours:   8.5,
	})
	if err != nil {
		t.Fatalf("GenerateCustomerMessage returned error: %v", err)
	}
	if !update.FollowUpNeeded {
		t.Error("expected follow-up for 8.5 hour delay")
	}
	if update.DelaySeverity != "high" {
		t.Errorf("expected high severity, got %s", update.DelaySeverity)
	}
}
