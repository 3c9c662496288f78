package logistics

import "fmt"

// ShipmentNotFoundError is returned when no shipment exists for a ticket id.
type ShipmentNotFoundError struct {
	TicketID string
}

func (e *ShipmentNotFoundError) Error() string {
	return fmt.Sprintf("Shipment not found: %s", e.TicketID)
}

// InvalidTicketIDError is returned when a ticket id does not match the
// expected three-letters-three-digits format.
type InvalidTicketIDError struct {
	TicketID string
}

func (e *InvalidTicketIDError) Error() string {
	return fmt.Sprintf("Invalid ticket ID format: %s. Expected format: ABC123", e.TicketID)
}

// InvalidToneError is returned when a customer update requests a tone the
// system does not know.
type InvalidToneError struct {
	Tone string
}

func (e *InvalidToneError) Error() string {
	return fmt.Sprintf("Unknown message tone: %s", e.Tone)
}
