// Package notify dispatches notification side effects either straight to
// the store or through JetStream for the notification consumer.
package notify

import (
	"context"
	"time"

	"github.com/example/wisora/internal/platform/events"
	"github.com/example/wisora/services/qa/internal/domain"
)

const (
	Stream    = "QA_EVENTS"
	Subject   = "qa.notifications.created"
	EventName = "notification.created"
)

// StreamConfig is the JetStream stream notifications travel on.
var StreamConfig = events.StreamConfig{
	Name:     Stream,
	Subjects: []string{"qa.>"},
	MaxAge:   7 * 24 * time.Hour,
}

type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}

// Payload is the body of a notification.created event.
type Payload struct {
	Notification domain.Notification `json:"notification"`
}

// Writer is the store side Direct persists through.
type Writer interface {
	CreateNotification(ctx context.Context, n domain.Notification) (domain.Notification, error)
}

// Direct writes notifications synchronously.
type Direct struct {
	w Writer
}

func NewDirect(w Writer) *Direct {
	return &Direct{w: w}
}

func (d *Direct) Notify(ctx context.Context, n domain.Notification) error {
	_, err := d.w.CreateNotification(ctx, n)
	return err
}

// Publisher hands notifications to JetStream. The id and timestamp are
// fixed before publishing so a redelivered event persists the same row.
type Publisher struct {
	pub *events.Publisher
}

func NewPublisher(pub *events.Publisher) *Publisher {
	return &Publisher{pub: pub}
}

func (p *Publisher) Notify(_ context.Context, n domain.Notification) error {
	if n.ID == "" {
		n.ID = domain.NewID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	_, err := p.pub.Publish(Subject, EventName, Payload{Notification: n})
	return err
}
