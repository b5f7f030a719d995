package service

import (
	"context"

	"github.com/example/wisora/services/qa/internal/domain"
)

func (s *Service) Notifications(ctx context.Context, actorID string) ([]domain.Notification, error) {
	return s.store.ListNotifications(ctx, actorID, notificationLimit)
}

func (s *Service) MarkNotificationRead(ctx context.Context, actorID, id string) error {
	n, err := s.store.GetNotification(ctx, id)
	if err != nil {
		return err
	}
	if n.RecipientID != actorID {
		return domain.ErrUnauthorized
	}
	return s.store.MarkRead(ctx, id)
}

func (s *Service) MarkAllNotificationsRead(ctx context.Context, actorID string) (int, error) {
	return s.store.MarkAllRead(ctx, actorID)
}
