package service

import (
	"context"

	"github.com/example/wisora/services/qa/internal/domain"
)

func (s *Service) CreateTopic(ctx context.Context, name string) (domain.Topic, error) {
	name, err := requireText("name", name)
	if err != nil {
		return domain.Topic{}, err
	}
	return s.store.CreateTopic(ctx, name)
}

func (s *Service) ListTopics(ctx context.Context) ([]domain.Topic, error) {
	return s.store.ListTopics(ctx)
}
