// Package events publishes domain events to NATS JetStream.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Event is the envelope written to every subject the publisher serves.
type Event struct {
	EventID    string          `json:"event_id"`
	EventName  string          `json:"event_name"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// StreamConfig describes the stream EnsureStream creates or updates.
type StreamConfig struct {
	Name     string
	Subjects []string
	MaxAge   time.Duration
}

// EnsureStream creates the stream if it does not exist and otherwise
// brings its subjects and retention in line with cfg.
func EnsureStream(js nats.JetStreamContext, cfg StreamConfig, log *zap.Logger) error {
	sc := &nats.StreamConfig{
		Name:      cfg.Name,
		Subjects:  cfg.Subjects,
		Storage:   nats.FileStorage,
		Retention: nats.LimitsPolicy,
		MaxAge:    cfg.MaxAge,
	}
	_, err := js.AddStream(sc)
	if err == nil {
		log.Info("events: stream created", zap.String("stream", cfg.Name))
		return nil
	}
	if !errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
		return fmt.Errorf("add stream %s: %w", cfg.Name, err)
	}
	if _, err := js.UpdateStream(sc); err != nil {
		log.Warn("events: stream update failed (may already be up to date)", zap.String("stream", cfg.Name), zap.Error(err))
	}
	return nil
}

// Publisher publishes events to JetStream.
// A nil pointer or a Publisher without a JetStream context drops events.
type Publisher struct {
	js  nats.JetStreamContext
	log *zap.Logger
}

func New(js nats.JetStreamContext, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{js: js, log: log}
}

// Enabled reports whether Publish reaches a broker.
func (p *Publisher) Enabled() bool {
	return p != nil && p.js != nil
}

// Publish wraps payload in an Event and publishes it synchronously.
// The event id doubles as the JetStream Nats-Msg-Id so the server drops
// duplicates inside its dedupe window.
func (p *Publisher) Publish(subject, eventName string, payload any) (Event, error) {
	ev := Event{
		EventID:    uuid.NewString(),
		EventName:  eventName,
		OccurredAt: time.Now().UTC(),
	}
	if !p.Enabled() {
		return ev, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return ev, fmt.Errorf("marshal %s payload: %w", eventName, err)
	}
	ev.Payload = raw
	data, err := json.Marshal(ev)
	if err != nil {
		return ev, fmt.Errorf("marshal %s envelope: %w", eventName, err)
	}
	if _, err := p.js.Publish(subject, data, nats.MsgId(ev.EventID)); err != nil {
		return ev, fmt.Errorf("publish %s: %w", subject, err)
	}
	p.log.Debug("events: published", zap.String("subject", subject), zap.String("event_id", ev.EventID))
	return ev, nil
}

// Decode parses an Event envelope and unmarshals its payload into dst.
func Decode(data []byte, dst any) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return ev, fmt.Errorf("decode envelope: %w", err)
	}
	if ev.EventID == "" {
		return ev, errors.New("decode envelope: missing event_id")
	}
	if dst != nil && len(ev.Payload) > 0 {
		if err := json.Unmarshal(ev.Payload, dst); err != nil {
			return ev, fmt.Errorf("decode payload: %w", err)
		}
	}
	return ev, nil
}
