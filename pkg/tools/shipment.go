// Package tools exposes the logistics domain over MCP so the dispatcher
// agent can call it as a toolset.
package tools

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/cargoflow-dev/cargoflow/pkg/logistics"
)

func handleCheckStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ticketID := mcp.ParseString(request, "ticket_id", "")
	if ticketID == "" {
		return mcp.NewToolResultError("ticket_id is required"), nil
	}

	report, err := logistics.CheckStatus(ticketID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(report)
}

func handleGetAnomalyDetails(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ticketID := mcp.ParseString(request, "ticket_id", "")
	if ticketID == "" {
		return mcp.NewToolResultError("ticket_id is required"), nil
	}

	report := logistics.LookupAnomaly(ticketID)
	if report == nil {
		return mcp.NewToolResultText("No anomalies on record for shipment " + ticketID), nil
	}

	return jsonResult(report)
}

func handleCalculateETA(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ticketID := mcp.ParseString(request, "ticket_id", "")
	originalETA := mcp.ParseString(request, "original_eta", "")
	if ticketID == "" || originalETA == "" {
		return mcp.NewToolResultError("ticket_id and original_eta are required"), nil
	}
	anomalyType := logistics.AnomalyType(mcp.ParseString(request, "anomaly_type", "other"))
	severity := mcp.ParseString(request, "severity", "medium")

	estimate, err := logistics.CalculateETA(ticketID, originalETA, anomalyType, severity)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(estimate)
}

func handleGenerateCustomerMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ticketID := mcp.ParseString(request, "ticket_id", "")
	customerName := mcp.ParseString(request, "customer_name", "")
	if ticketID == "" || customerName == "" {
		return mcp.NewToolResultError("ticket_id and customer_name are required"), nil
	}

	delayHours, err := strconv.ParseFloat(mcp.ParseString(request, "delay_hours", "0"), 64)
	if err != nil {
		return mcp.NewToolResultError("delay_hours must be a number: " + err.Error()), nil
	}

	update, err := logistics.GenerateCustomerMessage(logistics.MessageRequest{
		TicketID:          ticketID,
		CustomerName:      customerName,
		MessageType:       mcp.ParseString(request, "message_type", "status_update"),
		Tone:              mcp.ParseString(request, "tone", "professional"),
		Reason:            mcp.ParseString(request, "reason", ""),
		OriginalETA:       mcp.ParseString(request, "original_eta", ""),
		NewETA:            mcp.ParseString(request, "new_eta", ""),
		DelayHours:        delayHours,
		OfferCompensation: mcp.ParseString(request, "offer_compensation", "false") == "true",
		Origin:            mcp.ParseString(request, "origin", ""),
		Destination:       mcp.ParseString(request, "destination", ""),
		Notes:             mcp.ParseString(request, "notes", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(update)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("failed to encode result: " + err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// RegisterShipmentTools registers the shipment tracking tools.
func RegisterShipmentTools(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("shipment_check_status",
		mcp.WithDescription("Check the current status, route, and ETA of a shipment by ticket ID"),
		mcp.WithString("ticket_id", mcp.Description("Shipment ticket ID, e.g. ABC123"), mcp.Required()),
	), handleCheckStatus)

	s.AddTool(mcp.NewTool("shipment_get_anomaly_details",
		mcp.WithDescription("Get details about any anomaly currently affecting a shipment"),
		mcp.WithString("ticket_id", mcp.Description("Shipment ticket ID, e.g. ABC123"), mcp.Required()),
	), handleGetAnomalyDetails)

	s.AddTool(mcp.NewTool("shipment_calculate_eta",
		mcp.WithDescription("Recalculate a shipment ETA from an anomaly type, severity, and current route conditions"),
		mcp.WithString("ticket_id", mcp.Description("Shipment ticket ID"), mcp.Required()),
		mcp.WithString("original_eta", mcp.Description("Original ETA in RFC3339 format"), mcp.Required()),
		mcp.WithString("anomaly_type", mcp.Description("Anomaly type: traffic_jam, weather, vehicle_breakdown, accident, route_deviation, driver_issue, customs_delay, other")),
		mcp.WithString("severity", mcp.Description("Severity level: low, medium, high, critical (default: medium)")),
	), handleCalculateETA)

	s.AddTool(mcp.NewTool("shipment_generate_customer_message",
		mcp.WithDescription("Draft a customer-facing update about a shipment in the requested tone"),
		mcp.WithString("ticket_id", mcp.Description("Shipment ticket ID"), mcp.Required()),
		mcp.WithString("customer_name", mcp.Description("Customer's name"), mcp.Required()),
		mcp.WithString("message_type", mcp.Description("Message type: initial_delay or status_update (default: status_update)")),
		mcp.WithString("tone", mcp.Description("Tone: professional, apologetic, urgent, reassuring, formal (default: professional)")),
		mcp.WithString("reason", mcp.Description("Reason for the update or delay")),
		mcp.WithString("original_eta", mcp.Description("Original ETA in RFC3339 format")),
		mcp.WithString("new_eta", mcp.Description("New ETA in RFC3339 format")),
		mcp.WithString("delay_hours", mcp.Description("Delay duration in hours")),
		mcp.WithString("offer_compensation", mcp.Description("Whether to offer compensation: true or false")),
		mcp.WithString("origin", mcp.Description("Shipment origin for status updates")),
		mcp.WithString("destination", mcp.Description("Shipment destination for status updates")),
		mcp.WithString("notes", mcp.Description("Additional notes to include")),
	), handleGenerateCustomerMessage)
}
