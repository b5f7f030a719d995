// Package worker runs background consumers for the qa service.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/example/wisora/internal/platform/events"
	"github.com/example/wisora/services/qa/internal/domain"
	"github.com/example/wisora/services/qa/internal/idempotency"
	"github.com/example/wisora/services/qa/internal/notify"
)

const durableName = "qa_notifications"

// errPoison marks messages that can never be processed.
var errPoison = errors.New("poison message")

type NotificationWriter interface {
	CreateNotification(ctx context.Context, n domain.Notification) (domain.Notification, error)
}

// NotificationConsumer persists notification.created events.
type NotificationConsumer struct {
	store     NotificationWriter
	seen      idempotency.Store
	log       *zap.Logger
	batchSize int
	maxWait   time.Duration
	sub       *nats.Subscription
}

type ConsumerOptions struct {
	BatchSize int
	MaxWait   time.Duration
}

func NewNotificationConsumer(store NotificationWriter, seen idempotency.Store, log *zap.Logger, opts ConsumerOptions) *NotificationConsumer {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = 2 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &NotificationConsumer{
		store:     store,
		seen:      seen,
		log:       log,
		batchSize: opts.BatchSize,
		maxWait:   opts.MaxWait,
	}
}

// Subscribe binds a durable pull consumer on the notifications subject.
func (c *NotificationConsumer) Subscribe(js nats.JetStreamContext) error {
	sub, err := js.PullSubscribe(notify.Subject, durableName, nats.BindStream(notify.Stream))
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", notify.Subject, err)
	}
	c.sub = sub
	return nil
}

// Run processes messages until ctx is cancelled.
func (c *NotificationConsumer) Run(ctx context.Context) {
	if c.sub == nil {
		c.log.Error("notifications consumer: not subscribed")
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msgs, err := c.sub.Fetch(c.batchSize, nats.MaxWait(c.maxWait))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			c.log.Error("notifications consumer: fetch", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		for _, msg := range msgs {
			c.settle(msg, c.Handle(ctx, msg.Data))
		}
	}
}

func (c *NotificationConsumer) settle(msg *nats.Msg, err error) {
	var ackErr error
	switch {
	case err == nil:
		ackErr = msg.Ack()
	case errors.Is(err, errPoison):
		c.log.Warn("notifications consumer: dropping message", zap.Error(err))
		ackErr = msg.Term()
	default:
		c.log.Warn("notifications consumer: redelivering", zap.Error(err))
		ackErr = msg.Nak()
	}
	if ackErr != nil {
		c.log.Warn("notifications consumer: ack", zap.Error(ackErr))
	}
}

// Handle persists one event. A nil return means the message is settled.
func (c *NotificationConsumer) Handle(ctx context.Context, data []byte) error {
	var p notify.Payload
	ev, err := events.Decode(data, &p)
	if err != nil {
		return fmt.Errorf("%w: %v", errPoison, err)
	}
	if p.Notification.RecipientID == "" || p.Notification.ID == "" {
		return fmt.Errorf("%w: event %s has no notification", errPoison, ev.EventID)
	}

	dup, err := c.seen.Check(ctx, ev.EventID)
	if err != nil {
		return fmt.Errorf("idempotency check: %w", err)
	}
	if dup {
		c.log.Debug("notifications consumer: duplicate event", zap.String("event_id", ev.EventID))
		return nil
	}

	if _, err := c.store.CreateNotification(ctx, p.Notification); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil
		}
		if rerr := c.seen.Release(ctx, ev.EventID); rerr != nil {
			c.log.Warn("notifications consumer: release", zap.String("event_id", ev.EventID), zap.Error(rerr))
		}
		return fmt.Errorf("persist notification %s: %w", p.Notification.ID, err)
	}
	return nil
}
