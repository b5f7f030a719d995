// Package cascade deletes questions, answers and comments together with
// every record that references them.
//
// A cascade is a sequence of delete-by-filter steps, not a transaction.
// Steps run leaves first and the root goes last, so a cascade interrupted
// by a store failure leaves the root and all surviving records reachable
// and simply re-running it finishes the job.
package cascade

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/wisora/services/qa/internal/domain"
)

// Store is the subset of the backing store a cascade touches.
type Store interface {
	GetQuestion(ctx context.Context, id string) (domain.Question, error)
	GetAnswer(ctx context.Context, id string) (domain.Answer, error)
	GetComment(ctx context.Context, id string) (domain.Comment, error)

	AnswerIDsByQuestion(ctx context.Context, questionID string) ([]string, error)
	ListChildren(ctx context.Context, parentType domain.ParentType, parentIDs []string) ([]domain.Comment, error)

	DeleteReactionsForTargets(ctx context.Context, tt domain.TargetType, targetIDs []string) error
	DeleteComments(ctx context.Context, ids []string) error
	DeleteAnswers(ctx context.Context, ids []string) error
	DeleteNotificationsByQuestion(ctx context.Context, questionID string) error
	DeleteQuestion(ctx context.Context, id string) error
}

type Deleter struct {
	store Store
	log   *zap.Logger
}

func New(s Store, log *zap.Logger) *Deleter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Deleter{store: s, log: log}
}

// DeleteQuestion removes the question, its answers, every comment under
// those answers at any depth, reactions on all of them, and notifications
// attributed to the question.
func (d *Deleter) DeleteQuestion(ctx context.Context, id, actorID string) error {
	q, err := d.store.GetQuestion(ctx, id)
	if err != nil {
		return err
	}
	if q.AuthorID != actorID {
		return domain.ErrUnauthorized
	}

	answerIDs, err := d.store.AnswerIDsByQuestion(ctx, id)
	if err != nil {
		return fmt.Errorf("list answers of question %s: %w", id, err)
	}
	n, err := d.deleteSubtrees(ctx, domain.ParentAnswer, answerIDs)
	if err != nil {
		return err
	}
	if err := d.store.DeleteReactionsForTargets(ctx, domain.TargetAnswer, answerIDs); err != nil {
		return fmt.Errorf("delete answer reactions: %w", err)
	}
	if err := d.store.DeleteAnswers(ctx, answerIDs); err != nil {
		return fmt.Errorf("delete answers: %w", err)
	}
	if err := d.store.DeleteReactionsForTargets(ctx, domain.TargetQuestion, []string{id}); err != nil {
		return fmt.Errorf("delete question reactions: %w", err)
	}
	if err := d.store.DeleteNotificationsByQuestion(ctx, id); err != nil {
		return fmt.Errorf("delete question notifications: %w", err)
	}
	if err := d.store.DeleteQuestion(ctx, id); err != nil {
		return fmt.Errorf("delete question: %w", err)
	}

	d.log.Info("question deleted",
		zap.String("question_id", id),
		zap.Int("answers", len(answerIDs)),
		zap.Int("comments", n),
	)
	return nil
}

// DeleteAnswer removes the answer, its comment tree and their reactions.
func (d *Deleter) DeleteAnswer(ctx context.Context, id, actorID string) error {
	a, err := d.store.GetAnswer(ctx, id)
	if err != nil {
		return err
	}
	if a.AuthorID != actorID {
		return domain.ErrUnauthorized
	}

	n, err := d.deleteSubtrees(ctx, domain.ParentAnswer, []string{id})
	if err != nil {
		return err
	}
	if err := d.store.DeleteReactionsForTargets(ctx, domain.TargetAnswer, []string{id}); err != nil {
		return fmt.Errorf("delete answer reactions: %w", err)
	}
	if err := d.store.DeleteAnswers(ctx, []string{id}); err != nil {
		return fmt.Errorf("delete answer: %w", err)
	}

	d.log.Info("answer deleted", zap.String("answer_id", id), zap.Int("comments", n))
	return nil
}

// DeleteComment removes the comment, every reply beneath it and their reactions.
// Owning an ancestor or a descendant grants nothing.
func (d *Deleter) DeleteComment(ctx context.Context, id, actorID string) error {
	c, err := d.store.GetComment(ctx, id)
	if err != nil {
		return err
	}
	if c.AuthorID != actorID {
		return domain.ErrUnauthorized
	}

	n, err := d.deleteSubtrees(ctx, domain.ParentComment, []string{id})
	if err != nil {
		return err
	}
	if err := d.store.DeleteReactionsForTargets(ctx, domain.TargetComment, []string{id}); err != nil {
		return fmt.Errorf("delete comment reactions: %w", err)
	}
	if err := d.store.DeleteComments(ctx, []string{id}); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	d.log.Info("comment deleted", zap.String("comment_id", id), zap.Int("replies", n))
	return nil
}

// deleteSubtrees removes every comment below parentIDs, deepest level
// first, and reports how many were removed.
func (d *Deleter) deleteSubtrees(ctx context.Context, parentType domain.ParentType, parentIDs []string) (int, error) {
	levels, err := d.collect(ctx, parentType, parentIDs)
	if err != nil {
		return 0, err
	}
	total := 0
	for i := len(levels) - 1; i >= 0; i-- {
		ids := levels[i]
		if err := d.store.DeleteReactionsForTargets(ctx, domain.TargetComment, ids); err != nil {
			return total, fmt.Errorf("delete comment reactions at depth %d: %w", i+1, err)
		}
		if err := d.store.DeleteComments(ctx, ids); err != nil {
			return total, fmt.Errorf("delete comments at depth %d: %w", i+1, err)
		}
		total += len(ids)
	}
	return total, nil
}

// collect walks the tree breadth first with one batched query per level.
func (d *Deleter) collect(ctx context.Context, parentType domain.ParentType, parentIDs []string) ([][]string, error) {
	var levels [][]string
	seen := make(map[string]struct{})
	frontier := parentIDs
	pt := parentType
	for len(frontier) > 0 {
		children, err := d.store.ListChildren(ctx, pt, frontier)
		if err != nil {
			return nil, fmt.Errorf("list replies at depth %d: %w", len(levels)+1, err)
		}
		next := make([]string, 0, len(children))
		for _, c := range children {
			if _, ok := seen[c.ID]; ok {
				continue
			}
			seen[c.ID] = struct{}{}
			next = append(next, c.ID)
		}
		if len(next) == 0 {
			break
		}
		levels = append(levels, next)
		frontier = next
		pt = domain.ParentComment
	}
	return levels, nil
}
