package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cargoflow-dev/cargoflow/pkg/tools"
)

var (
	port  int
	stdio bool

	// These variables should be set during build time using -ldflags
	Name    = "cargoflow-tools"
	Version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "tool-server",
	Short: "CargoFlow shipment tool server",
	Run:   run,
}

func init() {
	rootCmd.Flags().IntVarP(&port, "port", "p", 8084, "Port to run the server on")
	rootCmd.Flags().BoolVar(&stdio, "stdio", false, "Use stdio for communication instead of HTTP")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) {
	zapLogger, err := zap.NewProduction()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()
	logger := zapr.NewLogger(zapLogger)

	logger.Info("Starting "+Name, "version", Version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mcpServer := server.NewMCPServer(Name, Version)
	tools.RegisterShipmentTools(mcpServer)

	var wg sync.WaitGroup

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	var sseServer *server.SSEServer

	wg.Add(1)
	if stdio {
		go func() {
			defer wg.Done()
			runStdioServer(ctx, mcpServer, logger)
		}()
	} else {
		sseServer = server.NewSSEServer(mcpServer)
		go func() {
			defer wg.Done()
			addr := fmt.Sprintf(":%d", port)
			logger.Info("Running CargoFlow tool server", "addr", addr)
			if err := sseServer.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error(err, "Failed to start SSE server")
			}
		}()
	}

	go func() {
		<-signalChan
		logger.Info("Received termination signal, shutting down server...")
		cancel()

		if !stdio && sseServer != nil {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := sseServer.Shutdown(shutdownCtx); err != nil {
				logger.Error(err, "Failed to shutdown server gracefully")
			}
		}
	}()

	wg.Wait()
	logger.Info("Server shutdown complete")
}

func runStdioServer(ctx context.Context, mcpServer *server.MCPServer, logger logr.Logger) {
	logger.Info("Running CargoFlow tool server on stdio")
	stdioServer := server.NewStdioServer(mcpServer)
	if err := stdioServer.Listen(ctx, os.Stdin, os.Stdout); err != nil {
		logger.Info("Stdio server stopped", "error", err)
	}
}
