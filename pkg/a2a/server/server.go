// Package server hosts the A2A endpoint with health probes and graceful
// shutdown.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	a2asrv "trpc.group/trpc-go/trpc-a2a-go/server"
	"trpc.group/trpc-go/trpc-a2a-go/taskmanager"
)

// Config holds configuration for the HTTP server.
type Config struct {
	Host            string
	Port            string
	ShutdownTimeout time.Duration
}

// A2AServer wraps the A2A protocol handler with health endpoints and
// graceful shutdown.
type A2AServer struct {
	httpServer *http.Server
	logger     logr.Logger
	config     Config
}

// NewA2AServer creates the server: agent card and JSON-RPC endpoints from
// the protocol library, health endpoints alongside.
func NewA2AServer(agentCard a2asrv.AgentCard, manager taskmanager.TaskManager, logger logr.Logger, config Config) (*A2AServer, error) {
	srv, err := a2asrv.NewA2AServer(agentCard, manager)
	if err != nil {
		return nil, fmt.Errorf("failed to create A2A server: %w", err)
	}

	mux := http.NewServeMux()
	RegisterHealthEndpoints(mux)
	mux.Handle("/", srv.Handler())

	addr := ":" + config.Port
	if config.Host != "" {
		addr = config.Host + ":" + config.Port
	}

	return &A2AServer{
		httpServer: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
		logger: logger,
		config: config,
	}, nil
}

// Start initializes and starts the HTTP server.
func (s *A2AServer) Start() error {
	s.logger.Info("Starting CargoFlow A2A server", "addr", s.httpServer.Addr)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error(err, "Server failed")
			os.Exit(1)
		}
	}()

	return nil
}

// WaitForShutdown blocks until a shutdown signal is received, then
// gracefully shuts down.
func (s *A2AServer) WaitForShutdown() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	s.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	return nil
}

// Run starts the server and waits for shutdown.
func (s *A2AServer) Run() error {
	if err := s.Start(); err != nil {
		return err
	}
	return s.WaitForShutdown()
}
