package service

import (
	"context"
	"errors"
	"strings"

	"github.com/example/wisora/services/qa/internal/domain"
)

type NewGroup struct {
	Name           string
	Description    string
	ProfilePicture string
	CoverImage     string
	// IsPrivate defaults to true when nil.
	IsPrivate *bool
}

type GroupDetail struct {
	Group     domain.Group
	Questions []QuestionDetail
}

func (s *Service) CreateGroup(ctx context.Context, actorID string, in NewGroup) (domain.Group, error) {
	name, err := requireText("name", in.Name)
	if err != nil {
		return domain.Group{}, err
	}
	private := true
	if in.IsPrivate != nil {
		private = *in.IsPrivate
	}
	return s.store.CreateGroup(ctx, domain.Group{
		Name:           name,
		Description:    strings.TrimSpace(in.Description),
		ProfilePicture: strings.TrimSpace(in.ProfilePicture),
		CoverImage:     strings.TrimSpace(in.CoverImage),
		IsPrivate:      private,
		OwnerID:        actorID,
	})
}

func (s *Service) MyGroups(ctx context.Context, actorID string) ([]domain.Group, error) {
	return s.store.ListGroupsForMember(ctx, actorID)
}

// PublicGroups lists public groups the actor has not joined yet.
func (s *Service) PublicGroups(ctx context.Context, actorID string) ([]domain.Group, error) {
	return s.store.ListPublicGroupsExcluding(ctx, actorID, publicGroupsLimit)
}

func (s *Service) GetGroup(ctx context.Context, actorID, id string) (GroupDetail, error) {
	g, err := s.store.GetGroup(ctx, id)
	if err != nil {
		return GroupDetail{}, err
	}
	if g.IsPrivate && !g.HasMember(actorID) {
		return GroupDetail{}, domain.ErrUnauthorized
	}
	qs, err := s.store.ListQuestionsByGroup(ctx, id)
	if err != nil {
		return GroupDetail{}, err
	}
	details, err := s.withAnswerCounts(ctx, qs)
	if err != nil {
		return GroupDetail{}, err
	}
	return GroupDetail{Group: g, Questions: details}, nil
}

func (s *Service) JoinGroup(ctx context.Context, actorID, id string) (domain.Group, error) {
	g, err := s.store.GetGroup(ctx, id)
	if err != nil {
		return domain.Group{}, err
	}
	if g.IsPrivate {
		return domain.Group{}, domain.ErrUnauthorized
	}
	if err := s.addMember(ctx, id, actorID); err != nil {
		return domain.Group{}, err
	}
	return s.store.GetGroup(ctx, id)
}

// AddMember lets the group owner add an existing user.
func (s *Service) AddMember(ctx context.Context, actorID, groupID, userID string) (domain.Group, error) {
	g, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return domain.Group{}, err
	}
	if g.OwnerID != actorID {
		return domain.Group{}, domain.ErrUnauthorized
	}
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return domain.Group{}, err
	}
	if err := s.addMember(ctx, groupID, userID); err != nil {
		return domain.Group{}, err
	}
	return s.store.GetGroup(ctx, groupID)
}

func (s *Service) addMember(ctx context.Context, groupID, userID string) error {
	err := s.store.AddMember(ctx, groupID, userID)
	if errors.Is(err, domain.ErrConflict) {
		return domain.Invalid("user_id", "user is already a member")
	}
	return err
}

// RemoveMember lets the owner remove anyone but themself, and members leave.
func (s *Service) RemoveMember(ctx context.Context, actorID, groupID, userID string) (domain.Group, error) {
	g, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return domain.Group{}, err
	}
	if actorID != g.OwnerID && actorID != userID {
		return domain.Group{}, domain.ErrUnauthorized
	}
	if userID == g.OwnerID {
		return domain.Group{}, domain.Invalid("user_id", "the owner cannot leave the group")
	}
	if err := s.store.RemoveMember(ctx, groupID, userID); err != nil {
		return domain.Group{}, err
	}
	return s.store.GetGroup(ctx, groupID)
}
