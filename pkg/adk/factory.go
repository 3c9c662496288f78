package adk

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"google.golang.org/adk/runner"
	adksession "google.golang.org/adk/session"
	"google.golang.org/adk/tool"

	"github.com/cargoflow-dev/cargoflow/pkg/config"
	"github.com/cargoflow-dev/cargoflow/pkg/core"
)

// CreateRunner builds the ADK runner for the dispatcher agent. appName must
// match the executor's AppName so session lookups hit the same sessions.
// When sessionService is nil the ADK's own in-memory service is used.
func CreateRunner(ctx context.Context, agentConfig *config.AgentConfig, sessionService core.SessionService, toolsets []tool.Toolset, appName string) (*runner.Runner, error) {
	log := logr.FromContextOrDiscard(ctx)

	adkAgent, err := CreateAgent(ctx, agentConfig, toolsets)
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	var adkSessionService adksession.Service
	if sessionService != nil {
		adkSessionService = NewSessionServiceAdapter(sessionService, log)
	} else {
		adkSessionService = adksession.InMemoryService()
	}

	if appName == "" {
		appName = "cargoflow"
	}

	adkRunner, err := runner.New(runner.Config{
		AppName:        appName,
		Agent:          adkAgent,
		SessionService: adkSessionService,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create runner: %w", err)
	}

	return adkRunner, nil
}
