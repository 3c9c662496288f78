package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	a2asrv "trpc.group/trpc-go/trpc-a2a-go/server"

	"github.com/cargoflow-dev/cargoflow/pkg/a2a"
	"github.com/cargoflow-dev/cargoflow/pkg/a2a/server"
	"github.com/cargoflow-dev/cargoflow/pkg/adk"
	"github.com/cargoflow-dev/cargoflow/pkg/auth"
	"github.com/cargoflow-dev/cargoflow/pkg/config"
	"github.com/cargoflow-dev/cargoflow/pkg/core"
	"github.com/cargoflow-dev/cargoflow/pkg/mcp"
	"github.com/cargoflow-dev/cargoflow/pkg/session"
	"github.com/cargoflow-dev/cargoflow/pkg/taskstore"
)

// defaultAgentConfig is used when no config directory is mounted: a Gemini
// dispatcher with no external toolsets.
func defaultAgentConfig() *config.AgentConfig {
	return &config.AgentConfig{
		Model: config.ModelConfig{
			Type:  "gemini",
			Model: "gemini-2.0-flash",
		},
		Description: "Logistics dispatcher agent for shipment tracking and delay response.",
		Instruction: "You are a logistics dispatcher. Track shipments, explain delivery delays, " +
			"recalculate ETAs when anomalies occur, and draft customer updates in the requested tone. " +
			"Use the shipment tools for every lookup instead of guessing.",
	}
}

func buildAppName(agentCard *a2asrv.AgentCard, logger logr.Logger) string {
	name := os.Getenv("CARGOFLOW_NAME")
	namespace := os.Getenv("CARGOFLOW_NAMESPACE")

	if namespace != "" && name != "" {
		appName := strings.ReplaceAll(namespace, "-", "_") + "__NS__" + strings.ReplaceAll(name, "-", "_")
		logger.Info("Built app_name from environment variables", "app_name", appName)
		return appName
	}

	if agentCard != nil && agentCard.Name != "" {
		return agentCard.Name
	}

	return "cargoflow"
}

func setupLogger(logLevel string) (logr.Logger, *zap.Logger) {
	var zapLevel zapcore.Level
	switch strings.ToLower(logLevel) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	zapConfig.EncoderConfig.TimeKey = "timestamp"
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zapLogger, err := zapConfig.Build()
	if err != nil {
		devConfig := zap.NewDevelopmentConfig()
		devConfig.Level = zap.NewAtomicLevelAt(zapLevel)
		zapLogger, _ = devConfig.Build()
	}
	logger := zapr.NewLogger(zapLogger)
	logger.Info("Logger initialized", "level", logLevel)
	return logger, zapLogger
}

func main() {
	logLevel := flag.String("log-level", "info", "Set the logging level (debug, info, warn, error)")
	host := flag.String("host", "", "Set the host address to bind to (default: empty, binds to all interfaces)")
	portFlag := flag.String("port", "", "Set the port to listen on (overrides PORT environment variable)")
	filepathFlag := flag.String("filepath", "", "Set the config directory path (overrides CONFIG_DIR environment variable)")
	flag.Parse()

	logger, zapLogger := setupLogger(*logLevel)
	defer func() {
		_ = zapLogger.Sync()
	}()

	port := *portFlag
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = "8080"
	}

	configDir := *filepathFlag
	if configDir == "" {
		configDir = os.Getenv("CONFIG_DIR")
	}
	if configDir == "" {
		configDir = "/config"
	}

	// CARGOFLOW_URL controls remote session and task persistence. When
	// empty, the agent falls back to in-memory sessions with no task
	// persistence.
	cargoflowURL := os.Getenv("CARGOFLOW_URL")

	agentConfig, agentCard, err := config.LoadAgentConfigs(configDir)
	if err != nil {
		logger.Info("No agent config mounted, using built-in defaults", "configDir", configDir, "reason", err.Error())
		agentConfig = defaultAgentConfig()
		card := a2a.DefaultAgentCard(publicURL(*host, port))
		agentCard = &card
	} else {
		logger.Info("Loaded agent config", "configDir", configDir,
			"model", agentConfig.Model.Type,
			"stream", agentConfig.GetStream(),
			"httpTools", len(agentConfig.HttpTools),
			"sseTools", len(agentConfig.SseTools))
	}

	appName := buildAppName(agentCard, logger)

	var sessionService core.SessionService
	var taskStore taskstore.Store
	if cargoflowURL != "" {
		tokenService := auth.NewTokenService(appName)
		if err := tokenService.Start(context.Background()); err != nil {
			logger.Error(err, "Failed to start token service")
		}
		defer tokenService.Stop()

		httpClient := auth.NewHTTPClientWithToken(tokenService)
		sessionService = session.NewRemoteService(cargoflowURL, httpClient, logger)
		taskStore = taskstore.NewRemoteStore(cargoflowURL, httpClient)
		logger.Info("Using remote session service and task store", "url", cargoflowURL)
	} else {
		sessionService = session.NewInMemoryService()
		logger.Info("No CARGOFLOW_URL set, using in-memory sessions and no task persistence")
	}

	ctx := logr.NewContext(context.Background(), logger)
	toolsets := mcp.CreateToolsets(ctx, agentConfig.HttpTools, agentConfig.SseTools)

	adkRunner, err := adk.CreateRunner(ctx, agentConfig, sessionService, toolsets, appName)
	if err != nil {
		logger.Error(err, "Failed to create agent runner")
		os.Exit(1)
	}

	runnerWrapper := adk.NewRunnerWrapper(adkRunner, agentConfig.GetStream(), logger)

	executor := core.NewAgentExecutor(runnerWrapper, sessionService, core.AgentExecutorConfig{
		ExecutionTimeout: core.DefaultExecutionTimeout,
	}, appName, logger)

	processor := a2a.NewMessageProcessor(executor, taskStore, logger)
	manager, err := a2a.NewTaskManager(processor)
	if err != nil {
		logger.Error(err, "Failed to create task manager")
		os.Exit(1)
	}

	a2aServer, err := server.NewA2AServer(*agentCard, manager, logger, server.Config{
		Host:            *host,
		Port:            port,
		ShutdownTimeout: 5 * time.Second,
	})
	if err != nil {
		logger.Error(err, "Failed to create A2A server")
		os.Exit(1)
	}

	if err := a2aServer.Run(); err != nil {
		logger.Error(err, "Server error")
		os.Exit(1)
	}
}

func publicURL(host, port string) string {
	if host == "" {
		host = "localhost"
	}
	return "http://" + host + ":" + port + "/"
}
