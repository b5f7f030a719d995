package service

import (
	"context"

	"github.com/example/wisora/services/qa/internal/domain"
)

func (s *Service) CreateAnswer(ctx context.Context, actorID, questionID, text string) (domain.Answer, error) {
	text, err := requireText("text", text)
	if err != nil {
		return domain.Answer{}, err
	}
	q, err := s.store.GetQuestion(ctx, questionID)
	if err != nil {
		return domain.Answer{}, err
	}
	if err := s.checkQuestionVisible(ctx, actorID, q); err != nil {
		return domain.Answer{}, err
	}

	a, err := s.store.CreateAnswer(ctx, domain.Answer{Text: text, QuestionID: q.ID, AuthorID: actorID})
	if err != nil {
		return domain.Answer{}, err
	}
	s.dispatch(ctx, domain.Notification{
		RecipientID: q.AuthorID,
		SenderID:    actorID,
		Type:        domain.NotifyAnswer,
		QuestionID:  &q.ID,
	})
	return a, nil
}

func (s *Service) QuestionAnswers(ctx context.Context, viewerID, questionID string) ([]domain.Answer, error) {
	q, err := s.store.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if err := s.checkQuestionVisible(ctx, viewerID, q); err != nil {
		return nil, err
	}
	return s.store.ListAnswersByQuestion(ctx, questionID)
}

func (s *Service) UserAnswers(ctx context.Context, userID string) ([]domain.Answer, error) {
	return s.store.ListAnswersByAuthor(ctx, userID)
}

func (s *Service) UpdateAnswer(ctx context.Context, actorID, id, text string) (domain.Answer, error) {
	text, err := requireText("text", text)
	if err != nil {
		return domain.Answer{}, err
	}
	a, err := s.store.GetAnswer(ctx, id)
	if err != nil {
		return domain.Answer{}, err
	}
	if a.AuthorID != actorID {
		return domain.Answer{}, domain.ErrUnauthorized
	}
	return s.store.UpdateAnswerText(ctx, id, text)
}

func (s *Service) DeleteAnswer(ctx context.Context, actorID, id string) error {
	return s.deleter.DeleteAnswer(ctx, id, actorID)
}
