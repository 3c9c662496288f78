// Package auth attaches the platform service-account token to outbound
// requests against the CargoFlow control plane.
package auth

import (
	"context"
	"net/http"
	"os"
	"sync"
	"time"
)

const defaultTokenPath = "/var/run/secrets/tokens/cargoflow-token"

const refreshInterval = 60 * time.Second

// TokenService reads a projected service-account token from a file and
// reloads it periodically, so rotated tokens are picked up without a restart.
type TokenService struct {
	token     string
	mu        sync.RWMutex
	agentName string
	tokenPath string
	stopChan  chan struct{}
	stopOnce  sync.Once
}

// NewTokenService creates a token service for the given agent name. The
// token path can be overridden with CARGOFLOW_TOKEN_PATH.
func NewTokenService(agentName string) *TokenService {
	tokenPath := os.Getenv("CARGOFLOW_TOKEN_PATH")
	if tokenPath == "" {
		tokenPath = defaultTokenPath
	}
	return &TokenService{
		agentName: agentName,
		tokenPath: tokenPath,
		stopChan:  make(chan struct{}),
	}
}

// Start reads the initial token and starts the refresh loop. A missing token
// file is not an error: requests simply go out without an Authorization
// header until the file appears.
func (s *TokenService) Start(ctx context.Context) error {
	if token, err := s.readToken(); err == nil {
		s.mu.Lock()
		s.token = token
		s.mu.Unlock()
	}

	go s.refreshLoop(ctx)

	return nil
}

// Stop stops the refresh loop. Safe to call multiple times.
func (s *TokenService) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

// GetToken returns the current token.
func (s *TokenService) GetToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// AddHeaders adds authorization and agent identity headers to a request.
func (s *TokenService) AddHeaders(req *http.Request) {
	req.Header.Set("X-Agent-Name", s.agentName)
	if token := s.GetToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (s *TokenService) readToken() (string, error) {
	data, err := os.ReadFile(s.tokenPath)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *TokenService) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			if token, err := s.readToken(); err == nil {
				s.mu.Lock()
				if token != s.token {
					s.token = token
				}
				s.mu.Unlock()
			}
		}
	}
}

// tokenRoundTripper adds token headers to every request.
type tokenRoundTripper struct {
	base         http.RoundTripper
	tokenService *TokenService
}

func (rt *tokenRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.tokenService.AddHeaders(req)
	return rt.base.RoundTrip(req)
}

// NewHTTPClientWithToken creates an HTTP client that authenticates every
// request with the token service.
func NewHTTPClientWithToken(tokenService *TokenService) *http.Client {
	return &http.Client{
		Transport: &tokenRoundTripper{
			base:         http.DefaultTransport,
			tokenService: tokenService,
		},
		Timeout: 30 * time.Second,
	}
}
