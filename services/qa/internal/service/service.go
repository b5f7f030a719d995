// Package service implements the qa use cases on top of the store. The
// acting user is always an explicit parameter; nothing here reads identity
// from the request context.
package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/example/wisora/services/qa/internal/cascade"
	"github.com/example/wisora/services/qa/internal/domain"
	"github.com/example/wisora/services/qa/internal/notify"
	"github.com/example/wisora/services/qa/internal/store"
	"github.com/example/wisora/services/qa/internal/thread"
)

const (
	defaultPageSize   = 20
	maxPageSize       = 100
	searchLimit       = 50
	notificationLimit = 50
	publicGroupsLimit = 20
)

type Options struct {
	ThreadMaxDepth int
}

type Service struct {
	store    store.Store
	threads  *thread.Assembler
	deleter  *cascade.Deleter
	notifier notify.Notifier
	log      *zap.Logger
}

func New(st store.Store, n notify.Notifier, log *zap.Logger, opts Options) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if n == nil {
		n = notify.NewDirect(st)
	}
	return &Service{
		store:    st,
		threads:  thread.New(st, opts.ThreadMaxDepth),
		deleter:  cascade.New(st, log),
		notifier: n,
		log:      log,
	}
}

// Ping reports whether the backing store answers.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// dispatch fires a notification. Failures are logged and never fail the
// write that triggered them.
func (s *Service) dispatch(ctx context.Context, n domain.Notification) {
	if n.RecipientID == "" || n.RecipientID == n.SenderID {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.log.Warn("notification dispatch failed",
			zap.String("type", string(n.Type)),
			zap.String("recipient_id", n.RecipientID),
			zap.Error(err),
		)
	}
}

func requireText(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", domain.Invalid(field, field+" is required")
	}
	return v, nil
}
