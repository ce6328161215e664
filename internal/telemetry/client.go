// Package telemetry sends anonymous usage events to PostHog. Without an
// API key every call is a no-op.
package telemetry

import (
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/posthog/posthog-go"
)

// Client tracks events. Track never blocks.
type Client interface {
	Track(event string, properties map[string]any)
	Close() error
}

// Properties is a type alias for event properties.
type Properties = map[string]any

// enqueuer is the subset of the PostHog client we use.
type enqueuer interface {
	io.Closer
	Enqueue(msg posthog.Message) error
}

// PostHogClient wraps the PostHog SDK.
type PostHogClient struct {
	client     enqueuer
	distinctID string
	version    string

	mu     sync.RWMutex
	closed bool
}

// ClientConfig holds what New needs.
type ClientConfig struct {
	APIKey     string
	Endpoint   string // optional, for self-hosted PostHog
	Version    string
	DistinctID string // anonymous install id
}

// New returns a PostHog-backed client, or a NoopClient when APIKey is empty.
func New(cfg ClientConfig) (Client, error) {
	if cfg.APIKey == "" {
		return NewNoopClient(), nil
	}

	phConfig := posthog.Config{
		BatchSize: 10,
		Interval:  2 * time.Second,
		// Transport warnings must not leak into CLI output.
		Logger: quietPostHogLogger{},
	}
	if cfg.Endpoint != "" {
		phConfig.Endpoint = cfg.Endpoint
	}

	client, err := posthog.NewWithConfig(cfg.APIKey, phConfig)
	if err != nil {
		return nil, err
	}
	return newPostHogClientWithEnqueuer(client, cfg.DistinctID, cfg.Version), nil
}

func newPostHogClientWithEnqueuer(enq enqueuer, distinctID, version string) *PostHogClient {
	return &PostHogClient{client: enq, distinctID: distinctID, version: version}
}

func (c *PostHogClient) Track(event string, properties map[string]any) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return
	}

	props := posthog.NewProperties()
	for k, v := range properties {
		props.Set(k, v)
	}
	props.Set("os", runtime.GOOS)
	props.Set("arch", runtime.GOARCH)
	props.Set("app_version", c.version)
	props.Set("$process_person_profile", false)

	_ = c.client.Enqueue(posthog.Capture{
		DistinctId: c.distinctID,
		Event:      event,
		Properties: props,
	})
}

// Close flushes pending events. Later Track calls are dropped.
func (c *PostHogClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.client.Close()
}

// NoopClient does nothing.
type NoopClient struct{}

func (NoopClient) Track(string, map[string]any) {}
func (NoopClient) Close() error                 { return nil }

func NewNoopClient() NoopClient { return NoopClient{} }

type quietPostHogLogger struct{}

func (quietPostHogLogger) Debugf(string, ...interface{}) {}
func (quietPostHogLogger) Logf(string, ...interface{})   {}
func (quietPostHogLogger) Warnf(string, ...interface{})  {}
func (quietPostHogLogger) Errorf(string, ...interface{}) {}
