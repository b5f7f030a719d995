package service

import (
	"context"
	"errors"
	"strings"

	"github.com/example/wisora/services/qa/internal/domain"
)

type Profile struct {
	User           domain.User
	Followers      []string
	Following      []string
	QuestionsCount int
	AnswersCount   int
}

type ProfileUpdate struct {
	Username *string
	Bio      *string
}

func (s *Service) GetProfile(ctx context.Context, id string) (Profile, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	p := Profile{User: u}
	if p.Followers, err = s.store.Followers(ctx, id); err != nil {
		return Profile{}, err
	}
	if p.Following, err = s.store.Following(ctx, id); err != nil {
		return Profile{}, err
	}
	if p.QuestionsCount, err = s.store.CountQuestionsByAuthor(ctx, id); err != nil {
		return Profile{}, err
	}
	if p.AnswersCount, err = s.store.CountAnswersByAuthor(ctx, id); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// UpdateProfile upserts the actor's own profile.
func (s *Service) UpdateProfile(ctx context.Context, actorID, id string, in ProfileUpdate) (domain.User, error) {
	if actorID != id {
		return domain.User{}, domain.ErrUnauthorized
	}
	u, err := s.store.GetUser(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		u, err = domain.User{ID: id}, nil
	}
	if err != nil {
		return domain.User{}, err
	}
	if in.Username != nil {
		u.Username = strings.TrimSpace(*in.Username)
	}
	if in.Bio != nil {
		u.Bio = strings.TrimSpace(*in.Bio)
	}
	return s.store.UpsertUser(ctx, u)
}

// ToggleFollow follows targetID, or unfollows when already following, and
// reports the resulting state.
func (s *Service) ToggleFollow(ctx context.Context, actorID, targetID string) (bool, error) {
	if actorID == targetID {
		return false, domain.Invalid("target_id", "you cannot follow yourself")
	}
	if _, err := s.store.GetUser(ctx, targetID); err != nil {
		return false, err
	}
	removed, err := s.store.Unfollow(ctx, actorID, targetID)
	if err != nil {
		return false, err
	}
	if removed {
		return false, nil
	}
	if err := s.store.Follow(ctx, actorID, targetID); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return true, nil
		}
		return false, err
	}
	s.dispatch(ctx, domain.Notification{RecipientID: targetID, SenderID: actorID, Type: domain.NotifyFollow})
	return true, nil
}
