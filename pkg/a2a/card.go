package a2a

import (
	"trpc.group/trpc-go/trpc-a2a-go/server"
)

// DefaultAgentCard is the shipment dispatcher card used when no
// agent-card.json is mounted.
func DefaultAgentCard(url string) server.AgentCard {
	return server.AgentCard{
		Name:        "cargoflow-dispatcher",
		Description: "Logistics dispatcher agent that tracks shipments, analyzes delivery delays, and drafts customer updates.",
		URL:         url,
		Capabilities: server.AgentCapabilities{
			Streaming:              ptrTo(true),
			StateTransitionHistory: ptrTo(true),
		},
		DefaultInputModes:  []string{"text"},
		DefaultOutputModes: []string{"text"},
		Skills: []server.AgentSkill{
			{
				ID:          "track_shipment",
				Name:        "Track shipment",
				Description: ptrTo("Look up the current status, route, and ETA of a shipment by ticket id."),
				Tags:        []string{"logistics", "tracking"},
				Examples:    []string{"Where is shipment ABC123?"},
			},
			{
				ID:          "analyze_delay",
				Name:        "Analyze delay",
				Description: ptrTo("Explain an active delay, including the anomaly behind it and the recalculated ETA."),
				Tags:        []string{"logistics", "delays"},
				Examples:    []string{"Why is ABC123 delayed and when will it arrive?"},
			},
			{
				ID:          "draft_customer_update",
				Name:        "Draft customer update",
				Description: ptrTo("Write a customer-facing update about a shipment in the requested tone."),
				Tags:        []string{"logistics", "communication"},
				Examples:    []string{"Draft an apologetic delay notice for ABC123."},
			},
		},
	}
}

func ptrTo[T any](v T) *T { return &v }
