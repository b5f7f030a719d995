package service

import (
	"context"

	"github.com/example/wisora/services/qa/internal/domain"
)

// maxParentWalk bounds the climb from a comment to its answer.
const maxParentWalk = 1024

func (s *Service) CreateComment(ctx context.Context, actorID string, parentType domain.ParentType, parentID, text string) (domain.Comment, error) {
	if !parentType.Valid() {
		return domain.Comment{}, domain.Invalid("parent_type", "parent_type must be Answer or Comment")
	}
	text, err := requireText("text", text)
	if err != nil {
		return domain.Comment{}, err
	}

	var parentAuthor string
	switch parentType {
	case domain.ParentAnswer:
		a, err := s.store.GetAnswer(ctx, parentID)
		if err != nil {
			return domain.Comment{}, err
		}
		parentAuthor = a.AuthorID
	case domain.ParentComment:
		c, err := s.store.GetComment(ctx, parentID)
		if err != nil {
			return domain.Comment{}, err
		}
		parentAuthor = c.AuthorID
	}
	qid, hasQuestion := s.questionOf(ctx, parentType, parentID)
	if hasQuestion {
		if err := s.checkQuestionIDVisible(ctx, actorID, qid); err != nil {
			return domain.Comment{}, err
		}
	}

	c, err := s.store.CreateComment(ctx, domain.Comment{
		Text:       text,
		ParentID:   parentID,
		ParentType: parentType,
		AuthorID:   actorID,
	})
	if err != nil {
		return domain.Comment{}, err
	}

	n := domain.Notification{RecipientID: parentAuthor, SenderID: actorID, Type: domain.NotifyComment}
	if hasQuestion {
		n.QuestionID = &qid
	}
	s.dispatch(ctx, n)
	return c, nil
}

// questionOf climbs parent links until it reaches an answer.
func (s *Service) questionOf(ctx context.Context, parentType domain.ParentType, parentID string) (string, bool) {
	for i := 0; i < maxParentWalk; i++ {
		if parentType == domain.ParentAnswer {
			a, err := s.store.GetAnswer(ctx, parentID)
			if err != nil {
				return "", false
			}
			return a.QuestionID, true
		}
		c, err := s.store.GetComment(ctx, parentID)
		if err != nil {
			return "", false
		}
		parentType, parentID = c.ParentType, c.ParentID
	}
	return "", false
}

// Thread returns the reply tree below an answer or a comment.
func (s *Service) Thread(ctx context.Context, parentID string) ([]domain.ThreadNode, error) {
	return s.threads.Assemble(ctx, parentID)
}

func (s *Service) UpdateComment(ctx context.Context, actorID, id, text string) (domain.Comment, error) {
	text, err := requireText("text", text)
	if err != nil {
		return domain.Comment{}, err
	}
	c, err := s.store.GetComment(ctx, id)
	if err != nil {
		return domain.Comment{}, err
	}
	if c.AuthorID != actorID {
		return domain.Comment{}, domain.ErrUnauthorized
	}
	return s.store.UpdateCommentText(ctx, id, text)
}

func (s *Service) DeleteComment(ctx context.Context, actorID, id string) error {
	return s.deleter.DeleteComment(ctx, id, actorID)
}
