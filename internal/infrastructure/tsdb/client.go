package tsdb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-sensorbridge/internal/infrastructure/config"
)

// Default timeouts for VictoriaMetrics operations.
const (
	defaultConnectTimeout = 10 * time.Second
	defaultHealthTimeout  = 5 * time.Second

	// httpClientTimeout backstops callers that pass a context without a deadline.
	httpClientTimeout = 30 * time.Second
)

// Client writes points to VictoriaMetrics over HTTP.
//
// All methods are safe for concurrent use.
type Client struct {
	url        string
	httpClient *http.Client

	connected bool
	mu        sync.RWMutex
}

// Connect creates a client and verifies GET /health answers 200.
func Connect(ctx context.Context, cfg config.VictoriaMetricsConfig) (*Client, error) {
	c := &Client{
		url:        strings.TrimRight(cfg.URL, "/"),
		httpClient: &http.Client{Timeout: httpClientTimeout},
		connected:  true,
	}

	healthCtx, cancel := context.WithTimeout(ctx, defaultConnectTimeout)
	defer cancel()

	if err := c.ping(healthCtx); err != nil {
		return nil, fmt.Errorf("%w: health check failed: %w", ErrConnectionFailed, err)
	}

	return c, nil
}

// Close marks the client closed; later writes return ErrNotConnected.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
	c.httpClient.CloseIdleConnections()
	return nil
}

// HealthCheck verifies VictoriaMetrics is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	checkCtx, cancel := context.WithTimeout(ctx, defaultHealthTimeout)
	defer cancel()

	return c.ping(checkCtx)
}

// IsConnected reports whether Close has not yet been called.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

func (c *Client) ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"/health", nil)
	if err != nil {
		return fmt.Errorf("tsdb health check: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tsdb health check: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // Drain for connection reuse

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tsdb health check: status %d", resp.StatusCode)
	}
	return nil
}
