package logistics

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UpdateTone selects the voice of a customer message.
type UpdateTone string

const (
	ToneFormal       UpdateTone = "formal"
	ToneProfessional UpdateTone = "professional"
	ToneApologetic   UpdateTone = "apologetic"
	ToneReassuring   UpdateTone = "reassuring"
	ToneUrgent       UpdateTone = "urgent"
)

var knownTones = map[UpdateTone]bool{
	ToneFormal:       true,
	ToneProfessional: true,
	ToneApologetic:   true,
	ToneReassuring:   true,
	ToneUrgent:       true,
}

var messageTemplates = map[string]map[UpdateTone]string{
	"initial_delay": {
		ToneProfessional: `Dear {customer_name},

We are writing to inform you about a delay affecting your shipment #{ticket_id}.

Reason: {reason}
Original delivery time: {original_eta}
New estimated delivery time: {new_eta}
Delay duration: {delay_hours} hours

We are actively monitoring your shipment and will provide updates as the situation develops.

Best regards,
Logistics Team`,

		ToneApologetic: `Dear {customer_name},

We sincerely apologize for the inconvenience, but your shipment #{ticket_id} has encountered a delay.

What happened: {reason}
Original delivery: {original_eta}
New delivery estimate: {new_eta}
Total delay: {delay_hours} hours

We understand this disruption may affect your plans, and we're working diligently to minimize the delay. {compensation_text}

With our sincere apologies,
Logistics Team`,

		ToneUrgent: `URGENT: Shipment #{ticket_id} Delay Notice

{customer_name}, immediate attention required.

Critical delay detected: {reason}
Expected delay: {delay_hours} hours
New ETA: {new_eta}

Action may be required on your end. Our team is standing by to assist.

Contact us immediately if this delay critically impacts your operations.`,
	},

	"status_update": {
		ToneProfessional: `Dear {customer_name},

Status update for shipment #{ticket_id}:

Current status: {status}
Location: En route from {origin} to {destination}
Expected arrival: {eta}

{additional_info}

Thank you for your patience.`,

		ToneReassuring: `Hello {customer_name},

Good news about your shipment #{ticket_id}!

Despite the earlier {reason}, your package is making good progress:
- Current status: {status}
- Expected delivery: {eta}

Everything is under control, and we're confident your shipment will arrive as scheduled. We'll notify you of any changes.

Best regards,
Your Logistics Team`,
	},
}

const compensationOffer = "\n\nAs an apology for this significant delay, we'd like to offer you a 15% discount on your next shipment."

// etaDisplayLayout renders ETAs for customer-facing text.
const etaDisplayLayout = "January 02, 2006 at 03:04 PM"

// MessageRequest describes the customer update to draft.
type MessageRequest struct {
	TicketID          string
	CustomerName      string
	MessageType       string
	Tone              string
	Reason            string
	OriginalETA       string
	NewETA            string
	DelayHours        float64
	OfferCompensation bool
	Origin            string
	Destination       string
	Notes             string
}

// UpdateMetadata carries the raw inputs alongside the rendered message.
type UpdateMetadata struct {
	OriginalETA string  `json:"original_eta"`
	NewETA      string  `json:"new_eta"`
	DelayHours  float64 `json:"delay_hours"`
	Reason      string  `json:"reason"`
}

// CustomerUpdate is a drafted customer communication.
type CustomerUpdate struct {
	UpdateID             string         `json:"update_id"`
	TicketID             string         `json:"ticket_id"`
	Timestamp            string         `json:"timestamp"`
	MessageType          string         `json:"message_type"`
	Tone                 string         `json:"tone"`
	Subject              string         `json:"subject"`
	Message              string         `json:"message"`
	IncludesCompensation bool           `json:"includes_compensation"`
	DelaySeverity        string         `json:"delay_severity"`
	FollowUpNeeded       bool           `json:"follow_up_needed"`
	Metadata             UpdateMetadata `json:"metadata"`
}

// GenerateCustomerMessage renders a customer update in the requested tone.
// Unknown message types fall back to a status update; unknown tones are an
// error.
func GenerateCustomerMessage(req MessageRequest) (*CustomerUpdate, error) {
	return generateCustomerMessageAt(req, time.Now())
}

func generateCustomerMessageAt(req MessageRequest, now time.Time) (*CustomerUpdate, error) {
	tone := UpdateTone(strings.ToLower(req.Tone))
	if !knownTones[tone] {
		return nil, &InvalidToneError{Tone: req.Tone}
	}

	templates, ok := messageTemplates[req.MessageType]
	if !ok {
		templates = messageTemplates["status_update"]
	}
	template, ok := templates[tone]
	if !ok {
		template = templates[ToneProfessional]
	}

	compensationText := ""
	if req.OfferCompensation && req.DelayHours > 4 {
		compensationText = compensationOffer
	}

	originalETA, err := formatETA(req.OriginalETA, "Not specified")
	if err != nil {
		return nil, err
	}
	newETA, err := formatETA(req.NewETA, "To be determined")
	if err != nil {
		return nil, err
	}

	status := "In Transit"
	if req.DelayHours > 0 {
		status = "In Transit - Delayed"
	}

	origin := req.Origin
	if origin == "" {
		origin = "Origin"
	}
	destination := req.Destination
	if destination == "" {
		destination = "Destination"
	}

	message := strings.NewReplacer(
		"{customer_name}", req.CustomerName,
		"{ticket_id}", req.TicketID,
		"{reason}", req.Reason,
		"{original_eta}", originalETA,
		"{new_eta}", newETA,
		"{eta}", newETA,
		"{delay_hours}", formatDelayHours(req.DelayHours),
		"{compensation_text}", compensationText,
		"{status}", status,
		"{origin}", origin,
		"{destination}", destination,
		"{additional_info}", req.Notes,
	).Replace(template)

	id := uuid.New()

	return &CustomerUpdate{
		UpdateID:             fmt.Sprintf("UPD-%X", id[:4]),
		TicketID:             req.TicketID,
		Timestamp:            now.Format(time.RFC3339),
		MessageType:          req.MessageType,
		Tone:                 string(tone),
		Subject:              fmt.Sprintf("Shipment #%s - %s", req.TicketID, displayName(req.MessageType)),
		Message:              strings.TrimSpace(message),
		IncludesCompensation: req.OfferCompensation,
		DelaySeverity:        delaySeverity(req.DelayHours),
		FollowUpNeeded:       req.DelayHours > 6,
		Metadata: UpdateMetadata{
			OriginalETA: req.OriginalETA,
			NewETA:      req.NewETA,
			DelayHours:  req.DelayHours,
			Reason:      req.Reason,
		},
	}, nil
}

func formatETA(value, fallback string) (string, error) {
	if value == "" {
		return fallback, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return "", fmt.Errorf("invalid eta %q: %w", value, err)
	}
	return t.Format(etaDisplayLayout), nil
}

func formatDelayHours(hours float64) string {
	return fmt.Sprintf("%g", round1(hours))
}

func delaySeverity(hours float64) string {
	switch {
	case hours > 4:
		return "high"
	case hours > 2:
		return "medium"
	default:
		return "low"
	}
}
