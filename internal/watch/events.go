package watch

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/prusikmapping/GeositeFramework/internal/config"
	"github.com/prusikmapping/GeositeFramework/internal/logfields"
)

// Event describes one assembly run in watch mode.
type Event struct {
	JobID       string    `json:"jobId"`
	Site        string    `json:"site"`
	Outcome     string    `json:"outcome"`
	DurationMS  float64   `json:"durationMs,omitempty"`
	PluginCount int       `json:"pluginCount,omitempty"`
	ReportID    string    `json:"reportId,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Publisher sends assembly events to NATS. A nil Publisher drops events,
// which keeps event publishing optional for callers.
type Publisher struct {
	conn    *nats.Conn
	subject string
}

// NewPublisher connects to the configured NATS server. Returns nil with no
// error when no NATS URL is configured.
func NewPublisher(cfg config.EventsConfig) (*Publisher, error) {
	if cfg.NATSURL == "" {
		return nil, nil
	}

	conn, err := nats.Connect(cfg.NATSURL, nats.Name("geosite-watch"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	subject := cfg.Subject
	if subject == "" {
		subject = "geosite.assembly"
	}

	slog.Info("assembly event publishing enabled",
		logfields.URL(cfg.NATSURL),
		slog.String("subject", subject))
	return &Publisher{conn: conn, subject: subject}, nil
}

// Publish sends one event. Safe on a nil receiver.
func (p *Publisher) Publish(ev Event) error {
	if p == nil {
		return nil
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Close drains the connection. Safe on a nil receiver.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		slog.Warn("failed to drain NATS connection", logfields.Error(err))
	}
}
