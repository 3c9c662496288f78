package logistics

import (
	"math"
	"strings"
	"time"
)

// AnomalyType classifies what disrupted a shipment.
type AnomalyType string

const (
	AnomalyTrafficJam       AnomalyType = "traffic_jam"
	AnomalyWeather          AnomalyType = "weather"
	AnomalyVehicleBreakdown AnomalyType = "vehicle_breakdown"
	AnomalyAccident         AnomalyType = "accident"
	AnomalyRouteDeviation   AnomalyType = "route_deviation"
	AnomalyDriverIssue      AnomalyType = "driver_issue"
	AnomalyCustomsDelay     AnomalyType = "customs_delay"
	AnomalyOther            AnomalyType = "other"
)

// mockAnomaly holds anomaly seed data keyed by ticket id. Timestamps are
// offsets from lookup time.
type mockAnomaly struct {
	anomalyID          string
	anomalyType        AnomalyType
	ageOffset          time.Duration
	description        string
	severity           string
	expectedDelayHours float64
	newRoute           string
	supportNeeded      bool
	resolutionNotes    string
}

var mockAnomalies = map[string]mockAnomaly{
	"ABC123": {
		anomalyID:          "ANO-001",
		anomalyType:        AnomalyTrafficJam,
		ageOffset:          2 * time.Hour,
		description:        "Heavy traffic congestion on I-95 North due to multi-vehicle accident",
		severity:           "medium",
		expectedDelayHours: 3.0,
		newRoute:           "Rerouted via US-1 to avoid congestion",
		supportNeeded:      false,
		resolutionNotes:    "Driver has taken alternate route, monitoring progress",
	},
	"DEF456": {
		anomalyID:          "ANO-002",
		anomalyType:        AnomalyWeather,
		ageOffset:          1 * time.Hour,
		description:        "Severe thunderstorm warning in delivery area",
		severity:           "high",
		expectedDelayHours: 5.0,
		newRoute:           "",
		supportNeeded:      false,
		resolutionNotes:    "Delivery postponed until weather clears for safety",
	},
}

// AnomalyReport describes an active disruption affecting a shipment.
type AnomalyReport struct {
	AnomalyID          string  `json:"anomaly_id"`
	TicketID           string  `json:"ticket_id"`
	Type               string  `json:"type"`
	TypeDisplay        string  `json:"type_display"`
	Timestamp          string  `json:"timestamp"`
	HoursSinceAnomaly  float64 `json:"hours_since_anomaly"`
	Description        string  `json:"description"`
	Severity           string  `json:"severity"`
	ExpectedDelayHours float64 `json:"expected_delay_hours"`
	NewRoute           *string `json:"new_route"`
	SupportNeeded      bool    `json:"support_needed"`
	ResolutionNotes    string  `json:"resolution_notes"`
}

// LookupAnomaly returns anomaly details for a shipment, or nil when no
// anomaly is on record. A missing anomaly is not an error.
func LookupAnomaly(ticketID string) *AnomalyReport {
	return lookupAnomalyAt(ticketID, time.Now())
}

func lookupAnomalyAt(ticketID string, now time.Time) *AnomalyReport {
	normalized := strings.ToUpper(ticketID)
	data, ok := mockAnomalies[normalized]
	if !ok {
		return nil
	}

	timestamp := now.Add(-data.ageOffset)
	hoursSince := now.Sub(timestamp).Hours()

	var newRoute *string
	if data.newRoute != "" {
		route := data.newRoute
		newRoute = &route
	}

	return &AnomalyReport{
		AnomalyID:          data.anomalyID,
		TicketID:           normalized,
		Type:               string(data.anomalyType),
		TypeDisplay:        displayName(string(data.anomalyType)),
		Timestamp:          timestamp.Format(time.RFC3339),
		HoursSinceAnomaly:  round1(hoursSince),
		Description:        data.description,
		Severity:           data.severity,
		ExpectedDelayHours: data.expectedDelayHours,
		NewRoute:           newRoute,
		SupportNeeded:      data.supportNeeded,
		ResolutionNotes:    data.resolutionNotes,
	}
}

// displayName turns a snake_case identifier into a title-cased label.
func displayName(s string) string {
	words := strings.Split(s, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
