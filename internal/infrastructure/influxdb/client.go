package influxdb

import (
	"context"
	"fmt"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/nerrad567/gray-logic-sensorbridge/internal/infrastructure/config"
)

// Default timeouts for InfluxDB operations.
const (
	defaultConnectTimeout = 10 * time.Second
	defaultPingTimeout    = 5 * time.Second
)

// Client wraps the InfluxDB v2 client.
//
// All methods are safe for concurrent use; the slow and fast flushers share
// one Client.
type Client struct {
	client influxdb2.Client
	cfg    config.InfluxDBConfig

	// writers caches one blocking write API per org/bucket pair.
	writers map[writerKey]api.WriteAPIBlocking

	connected bool
	mu        sync.RWMutex
}

type writerKey struct {
	org    string
	bucket string
}

// Connect creates a client with token authentication and pings the server.
func Connect(ctx context.Context, cfg config.InfluxDBConfig) (*Client, error) {
	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, influxdb2.DefaultOptions())

	pingCtx, cancel := context.WithTimeout(ctx, defaultConnectTimeout)
	defer cancel()

	healthy, err := client.Ping(pingCtx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	return &Client{
		client:    client,
		cfg:       cfg,
		writers:   make(map[writerKey]api.WriteAPIBlocking),
		connected: true,
	}, nil
}

// Close releases the underlying HTTP client. Safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil || !c.connected {
		return nil
	}
	c.connected = false
	c.client.Close()
	return nil
}

// HealthCheck pings the server.
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	checkCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	healthy, err := c.client.Ping(checkCtx)
	if err != nil {
		return fmt.Errorf("influxdb health check failed: %w", err)
	}
	if !healthy {
		return fmt.Errorf("influxdb health check failed: server not healthy")
	}
	return nil
}

// IsConnected reports whether Close has not yet been called.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// writer returns the blocking write API for org/bucket, creating it once.
func (c *Client) writer(org, bucket string) (api.WriteAPIBlocking, error) {
	key := writerKey{org: org, bucket: bucket}

	c.mu.RLock()
	w, ok := c.writers[key]
	connected := c.connected
	c.mu.RUnlock()

	if !connected {
		return nil, ErrNotConnected
	}
	if ok {
		return w, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if w, ok = c.writers[key]; !ok {
		w = c.client.WriteAPIBlocking(org, bucket)
		c.writers[key] = w
	}
	return w, nil
}
