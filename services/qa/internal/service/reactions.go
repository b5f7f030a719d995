package service

import (
	"context"

	"github.com/example/wisora/services/qa/internal/domain"
)

type ReactionState struct {
	Active bool
	Count  int
}

// ToggleReaction removes the user's reaction on the target if present and
// adds it otherwise. Count is the total after the change. Uniqueness is
// left to the store, so a lost insert race surfaces as domain.ErrConflict.
func (s *Service) ToggleReaction(ctx context.Context, userID, targetID string, tt domain.TargetType) (ReactionState, error) {
	if !tt.Valid() {
		return ReactionState{}, domain.Invalid("target_type", "target_type must be Question, Answer or Comment")
	}
	if err := s.targetExists(ctx, targetID, tt); err != nil {
		return ReactionState{}, err
	}

	has, err := s.store.HasReaction(ctx, userID, targetID, tt)
	if err != nil {
		return ReactionState{}, err
	}
	active := !has
	if has {
		if _, err := s.store.DeleteReaction(ctx, userID, targetID, tt); err != nil {
			return ReactionState{}, err
		}
	} else {
		if _, err := s.store.InsertReaction(ctx, domain.Reaction{UserID: userID, TargetID: targetID, TargetType: tt}); err != nil {
			return ReactionState{}, err
		}
	}

	n, err := s.store.CountReactions(ctx, targetID, tt)
	if err != nil {
		return ReactionState{}, err
	}
	return ReactionState{Active: active, Count: n}, nil
}

// ReactionStatus reports the count on a target and whether viewerID (which
// may be empty) reacted to it.
func (s *Service) ReactionStatus(ctx context.Context, viewerID, targetID string, tt domain.TargetType) (ReactionState, error) {
	if !tt.Valid() {
		return ReactionState{}, domain.Invalid("target_type", "target_type must be Question, Answer or Comment")
	}
	n, err := s.store.CountReactions(ctx, targetID, tt)
	if err != nil {
		return ReactionState{}, err
	}
	st := ReactionState{Count: n}
	if viewerID != "" {
		if st.Active, err = s.store.HasReaction(ctx, viewerID, targetID, tt); err != nil {
			return ReactionState{}, err
		}
	}
	return st, nil
}

func (s *Service) targetExists(ctx context.Context, id string, tt domain.TargetType) error {
	var err error
	switch tt {
	case domain.TargetQuestion:
		_, err = s.store.GetQuestion(ctx, id)
	case domain.TargetAnswer:
		_, err = s.store.GetAnswer(ctx, id)
	case domain.TargetComment:
		_, err = s.store.GetComment(ctx, id)
	}
	return err
}
