package adk

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	adkmodel "google.golang.org/adk/model"
	adkgemini "google.golang.org/adk/model/gemini"
	"google.golang.org/adk/tool"
	"google.golang.org/genai"

	"github.com/cargoflow-dev/cargoflow/pkg/config"
)

const defaultGeminiModel = "gemini-2.0-flash"

// CreateAgent creates the dispatcher LLM agent from configuration. Toolsets
// are passed in directly (created by mcp.CreateToolsets).
func CreateAgent(ctx context.Context, agentConfig *config.AgentConfig, toolsets []tool.Toolset) (agent.Agent, error) {
	log := logr.FromContextOrDiscard(ctx)

	if agentConfig == nil {
		return nil, fmt.Errorf("agent config is required")
	}

	llmModel, err := createLLM(ctx, agentConfig.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM: %w", err)
	}

	llmAgentConfig := llmagent.Config{
		Name:            "dispatcher",
		Description:     agentConfig.Description,
		Instruction:     agentConfig.Instruction,
		Model:           llmModel,
		IncludeContents: llmagent.IncludeContentsDefault,
		Toolsets:        toolsets,
		BeforeToolCallbacks: []llmagent.BeforeToolCallback{
			makeBeforeToolCallback(log),
		},
		AfterToolCallbacks: []llmagent.AfterToolCallback{
			makeAfterToolCallback(log),
		},
		OnToolErrorCallbacks: []llmagent.OnToolErrorCallback{
			makeOnToolErrorCallback(log),
		},
	}

	log.Info("Creating dispatcher agent",
		"model", agentConfig.Model.Type,
		"hasInstruction", llmAgentConfig.Instruction != "",
		"toolsetsCount", len(llmAgentConfig.Toolsets))

	llmAgent, err := llmagent.New(llmAgentConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM agent: %w", err)
	}

	return llmAgent, nil
}

// createLLM builds the model backend. The dispatcher runs on Gemini, either
// through the API-key backend or Vertex AI.
func createLLM(ctx context.Context, m config.ModelConfig) (adkmodel.LLM, error) {
	modelName := m.Model
	if modelName == "" {
		modelName = defaultGeminiModel
	}

	switch m.Type {
	case "gemini", "":
		apiKey := os.Getenv("GOOGLE_API_KEY")
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("gemini model requires GOOGLE_API_KEY or GEMINI_API_KEY environment variable")
		}
		return adkgemini.NewModel(ctx, modelName, &genai.ClientConfig{APIKey: apiKey})

	case "gemini_vertex_ai":
		project := os.Getenv("GOOGLE_CLOUD_PROJECT")
		location := os.Getenv("GOOGLE_CLOUD_LOCATION")
		if location == "" {
			location = os.Getenv("GOOGLE_CLOUD_REGION")
		}
		if project == "" || location == "" {
			return nil, fmt.Errorf("gemini_vertex_ai requires GOOGLE_CLOUD_PROJECT and GOOGLE_CLOUD_LOCATION (or GOOGLE_CLOUD_REGION) environment variables")
		}
		return adkgemini.NewModel(ctx, modelName, &genai.ClientConfig{
			Backend:  genai.BackendVertexAI,
			Project:  project,
			Location: location,
		})

	default:
		return nil, fmt.Errorf("unsupported model type: %s", m.Type)
	}
}

// makeBeforeToolCallback returns a BeforeToolCallback that logs tool
// invocations.
func makeBeforeToolCallback(logger logr.Logger) llmagent.BeforeToolCallback {
	return func(ctx tool.Context, t tool.Tool, args map[string]any) (map[string]any, error) {
		logger.Info("Tool execution started",
			"tool", t.Name(),
			"functionCallID", ctx.FunctionCallID(),
			"sessionID", ctx.SessionID(),
			"args", truncateArgs(args),
		)
		return nil, nil
	}
}

// makeAfterToolCallback returns an AfterToolCallback that logs tool
// completion.
func makeAfterToolCallback(logger logr.Logger) llmagent.AfterToolCallback {
	return func(ctx tool.Context, t tool.Tool, args, result map[string]any, err error) (map[string]any, error) {
		if err != nil {
			logger.Error(err, "Tool execution completed with error",
				"tool", t.Name(),
				"functionCallID", ctx.FunctionCallID(),
				"sessionID", ctx.SessionID(),
			)
		} else {
			logger.Info("Tool execution completed",
				"tool", t.Name(),
				"functionCallID", ctx.FunctionCallID(),
				"sessionID", ctx.SessionID(),
			)
		}
		return nil, nil
	}
}

// makeOnToolErrorCallback returns an OnToolErrorCallback that logs tool
// errors.
func makeOnToolErrorCallback(logger logr.Logger) llmagent.OnToolErrorCallback {
	return func(ctx tool.Context, t tool.Tool, args map[string]any, err error) (map[string]any, error) {
		logger.Error(err, "Tool execution failed",
			"tool", t.Name(),
			"functionCallID", ctx.FunctionCallID(),
			"sessionID", ctx.SessionID(),
			"args", truncateArgs(args),
		)
		return nil, nil
	}
}

// truncateArgs returns a JSON string of args truncated for safe logging.
func truncateArgs(args map[string]any) string {
	const maxLen = 1000
	if args == nil {
		return "{}"
	}
	b, err := json.Marshal(args)
	if err != nil {
		return fmt.Sprintf("<marshal error: %v>", err)
	}
	s := string(b)
	if len(s) > maxLen {
		return s[:maxLen] + "... (truncated)"
	}
	return s
}
