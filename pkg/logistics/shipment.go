// Package logistics implements the shipment tracking domain: status lookup,
// anomaly details, ETA recalculation, and customer update drafting. Data is
// served from an in-memory fleet that stands in for the carrier systems.
package logistics

import (
	"regexp"
	"strings"
	"time"
)

// ShipmentStatus is the lifecycle state of a shipment.
type ShipmentStatus string

const (
	StatusInTransit ShipmentStatus = "in_transit"
	StatusDelayed   ShipmentStatus = "delayed"
	StatusDelivered ShipmentStatus = "delivered"
	StatusCancelled ShipmentStatus = "cancelled"
	StatusOnHold    ShipmentStatus = "on_hold"
)

var ticketIDPattern = regexp.MustCompile(`^[A-Z]{3}\d{3}$`)

// Shipment is a tracked consignment.
type Shipment struct {
	TicketID      string
	Origin        string
	Destination   string
	CustomerName  string
	CustomerEmail string
	OriginalETA   time.Time
	CurrentETA    time.Time
	Status        ShipmentStatus
	Priority      string
	Value         float64
	Description   string
}

// mockShipment holds fleet seed data. ETAs are offsets from lookup time so
// the fixtures never go stale.
type mockShipment struct {
	origin         string
	destination    string
	customerName   string
	customerEmail  string
	originalOffset time.Duration
	currentOffset  time.Duration
	status         ShipmentStatus
	priority       string
	value          float64
	description    string
}

var mockShipments = map[string]mockShipment{
	"ABC123": {
		origin:         "Miami, FL",
		destination:    "New York, NY",
		customerName:   "John Doe",
		customerEmail:  "john.doe@example.com",
		originalOffset: 48 * time.Hour,
		currentOffset:  51 * time.Hour,
		status:         StatusDelayed,
		priority:       "express",
		value:          1250.00,
		description:    "Electronic equipment",
	},
	"XYZ789": {
		origin:         "Los Angeles, CA",
		destination:    "Chicago, IL",
		customerName:   "Jane Smith",
		customerEmail:  "jane.smith@example.com",
		originalOffset: 72 * time.Hour,
		currentOffset:  72 * time.Hour,
		status:         StatusInTransit,
		priority:       "standard",
		value:          450.00,
		description:    "Clothing items",
	},
}

// StatusReport is the result of a shipment status lookup.
type StatusReport struct {
	TicketID     string  `json:"ticket_id"`
	Status       string  `json:"status"`
	Origin       string  `json:"origin"`
	Destination  string  `json:"destination"`
	CustomerName string  `json:"customer_name"`
	OriginalETA  string  `json:"original_eta"`
	CurrentETA   string  `json:"current_eta"`
	DelayHours   float64 `json:"delay_hours"`
	Priority     string  `json:"priority"`
	Description  string  `json:"description"`
}

// CheckStatus looks up a shipment by ticket id. Ticket ids are
// case-insensitive.
func CheckStatus(ticketID string) (*StatusReport, error) {
	return checkStatusAt(ticketID, time.Now())
}

func checkStatusAt(ticketID string, now time.Time) (*StatusReport, error) {
	normalized := strings.ToUpper(ticketID)
	if !ticketIDPattern.MatchString(normalized) {
		return nil, &InvalidTicketIDError{TicketID: ticketID}
	}

	data, ok := mockShipments[normalized]
	if !ok {
		return nil, &ShipmentNotFoundError{TicketID: normalized}
	}

	originalETA := now.Add(data.originalOffset)
	currentETA := now.Add(data.currentOffset)
	delayHours := currentETA.Sub(originalETA).Hours()

	return &StatusReport{
		TicketID:     normalized,
		Status:       string(data.status),
		Origin:       data.origin,
		Destination:  data.destination,
		CustomerName: data.customerName,
		OriginalETA:  originalETA.Format(time.RFC3339),
		CurrentETA:   currentETA.Format(time.RFC3339),
		DelayHours:   delayHours,
		Priority:     data.priority,
		Description:  data.description,
	}, nil
}
