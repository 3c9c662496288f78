// Package mcp builds agent toolsets from configured MCP servers.
package mcp

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-logr/logr"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/mcptoolset"

	"github.com/cargoflow-dev/cargoflow/pkg/config"
)

const (
	// defaultTimeout bounds a single MCP operation, long enough for slow
	// logistics lookups.
	defaultTimeout = 30 * time.Minute
)

// CreateToolsets creates toolsets from all configured HTTP and SSE MCP
// servers, returning the accumulated toolsets. Errors on individual servers
// are logged and skipped so one broken tool server does not take the agent
// down.
func CreateToolsets(ctx context.Context, httpTools []config.HttpMcpServerConfig, sseTools []config.SseMcpServerConfig) []tool.Toolset {
	log := logr.FromContextOrDiscard(ctx)
	var toolsets []tool.Toolset

	log.Info("Processing HTTP MCP tools", "httpToolsCount", len(httpTools))
	for i, httpTool := range httpTools {
		ts, err := initializeToolSet(ctx, httpTool.Params.Url, httpTool.Params.Headers, "http", httpTool.Tools,
			httpTool.Params.Timeout, httpTool.Params.SseReadTimeout,
			httpTool.Params.TlsDisableVerify, httpTool.Params.TlsCaCertPath, httpTool.Params.TlsDisableSystemCas)
		if err != nil {
			log.Error(err, "Failed to fetch tools from HTTP MCP server", "url", httpTool.Params.Url)
			continue
		}
		log.Info("Added HTTP MCP toolset", "index", i+1, "url", httpTool.Params.Url, "tools", httpTool.Tools)
		toolsets = append(toolsets, ts)
	}

	log.Info("Processing SSE MCP tools", "sseToolsCount", len(sseTools))
	for i, sseTool := range sseTools {
		ts, err := initializeToolSet(ctx, sseTool.Params.Url, sseTool.Params.Headers, "sse", sseTool.Tools,
			sseTool.Params.Timeout, sseTool.Params.SseReadTimeout,
			sseTool.Params.TlsDisableVerify, sseTool.Params.TlsCaCertPath, sseTool.Params.TlsDisableSystemCas)
		if err != nil {
			log.Error(err, "Failed to fetch tools from SSE MCP server", "url", sseTool.Params.Url)
			continue
		}
		log.Info("Added SSE MCP toolset", "index", i+1, "url", sseTool.Params.Url, "tools", sseTool.Tools)
		toolsets = append(toolsets, ts)
	}

	return toolsets
}

// createTransport creates an MCP transport for the server type using the
// official MCP SDK.
func createTransport(
	ctx context.Context,
	url string,
	headers map[string]string,
	serverType string,
	timeout *float64,
	sseReadTimeout *float64,
	tlsDisableVerify *bool,
	tlsCaCertPath *string,
	tlsDisableSystemCas *bool,
) (mcpsdk.Transport, error) {
	log := logr.FromContextOrDiscard(ctx)

	operationTimeout := defaultTimeout
	if timeout != nil && *timeout > 0 {
		operationTimeout = time.Duration(*timeout) * time.Second
		if operationTimeout < 1*time.Second {
			operationTimeout = 1 * time.Second
		}
	}

	httpTimeout := operationTimeout
	if serverType == "sse" && sseReadTimeout != nil && *sseReadTimeout > 0 {
		configuredSseTimeout := time.Duration(*sseReadTimeout) * time.Second
		if configuredSseTimeout > operationTimeout {
			httpTimeout = configuredSseTimeout
		}
		if httpTimeout < 1*time.Second {
			httpTimeout = 1 * time.Second
		}
	}

	baseTransport := &http.Transport{}

	if tlsDisableVerify != nil && *tlsDisableVerify {
		log.Info("WARNING: TLS certificate verification disabled for MCP server", "url", url)
		baseTransport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	} else if tlsCaCertPath != nil && *tlsCaCertPath != "" {
		caCert, err := os.ReadFile(*tlsCaCertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate from %s: %w", *tlsCaCertPath, err)
		}
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA certificate from %s", *tlsCaCertPath)
		}

		tlsConfig := &tls.Config{RootCAs: caCertPool}
		if tlsDisableSystemCas == nil || !*tlsDisableSystemCas {
			if systemCAs, err := x509.SystemCertPool(); err == nil {
				systemCAs.AppendCertsFromPEM(caCert)
				tlsConfig.RootCAs = systemCAs
			}
		}
		baseTransport.TLSClientConfig = tlsConfig
	}

	var httpTransport http.RoundTripper = baseTransport
	if len(headers) > 0 {
		httpTransport = &headerRoundTripper{
			base:    baseTransport,
			headers: headers,
		}
	}

	httpClient := &http.Client{
		Timeout:   httpTimeout,
		Transport: httpTransport,
	}

	if serverType == "sse" {
		return &mcpsdk.SSEClientTransport{
			Endpoint:   url,
			HTTPClient: httpClient,
		}, nil
	}
	return &mcpsdk.StreamableClientTransport{
		Endpoint:   url,
		HTTPClient: httpClient,
	}, nil
}

// headerRoundTripper wraps an http.RoundTripper to add custom headers to all
// requests.
type headerRoundTripper struct {
	base    http.RoundTripper
	headers map[string]string
}

func (rt *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for key, value := range rt.headers {
		req.Header.Set(key, value)
	}
	return rt.base.RoundTrip(req)
}

// initializeToolSet creates an adk toolset over the MCP server, filtered to
// the named tools when the list is non-empty.
func initializeToolSet(
	ctx context.Context,
	url string,
	headers map[string]string,
	serverType string,
	tools []string,
	timeout *float64,
	sseReadTimeout *float64,
	tlsDisableVerify *bool,
	tlsCaCertPath *string,
	tlsDisableSystemCas *bool,
) (tool.Toolset, error) {
	mcpTransport, err := createTransport(ctx, url, headers, serverType, timeout, sseReadTimeout, tlsDisableVerify, tlsCaCertPath, tlsDisableSystemCas)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport for %s: %w", url, err)
	}

	var toolPredicate tool.Predicate
	if len(tools) > 0 {
		toolPredicate = tool.StringPredicate(tools)
	}

	toolset, err := mcptoolset.New(mcptoolset.Config{
		Transport:  mcpTransport,
		ToolFilter: toolPredicate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP toolset for %s: %w", url, err)
	}

	return toolset, nil
}
