// Package store persists Q&A entities. Every collection has an in-memory
// backend for development and tests and a Postgres backend for production.
// Delete methods are delete-by-filter: an empty match is not an error.
package store

import (
	"context"

	"github.com/example/wisora/services/qa/internal/domain"
)

type QuestionStore interface {
	CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error)
	GetQuestion(ctx context.Context, id string) (domain.Question, error)
	// ListPublicQuestions returns group-less questions newest first and the total count.
	ListPublicQuestions(ctx context.Context, offset, limit int) ([]domain.Question, int, error)
	ListQuestionsByAuthor(ctx context.Context, authorID string) ([]domain.Question, error)
	ListQuestionsByGroup(ctx context.Context, groupID string) ([]domain.Question, error)
	// SearchQuestions matches public questions on title/body; topicID narrows when set.
	SearchQuestions(ctx context.Context, text, topicID string, limit int) ([]domain.Question, error)
	CountQuestionsByAuthor(ctx context.Context, authorID string) (int, error)
	DeleteQuestion(ctx context.Context, id string) error
}

type AnswerStore interface {
	CreateAnswer(ctx context.Context, a domain.Answer) (domain.Answer, error)
	GetAnswer(ctx context.Context, id string) (domain.Answer, error)
	ListAnswersByQuestion(ctx context.Context, questionID string) ([]domain.Answer, error)
	ListAnswersByAuthor(ctx context.Context, authorID string) ([]domain.Answer, error)
	AnswerIDsByQuestion(ctx context.Context, questionID string) ([]string, error)
	CountAnswersByQuestion(ctx context.Context, questionIDs []string) (map[string]int, error)
	CountAnswersByAuthor(ctx context.Context, authorID string) (int, error)
	UpdateAnswerText(ctx context.Context, id, text string) (domain.Answer, error)
	DeleteAnswers(ctx context.Context, ids []string) error
}

type CommentStore interface {
	CreateComment(ctx context.Context, c domain.Comment) (domain.Comment, error)
	GetComment(ctx context.Context, id string) (domain.Comment, error)
	// ListByParent returns the direct children of parentID of either parent
	// type, ascending by (created_at, id).
	ListByParent(ctx context.Context, parentID string) ([]domain.Comment, error)
	// ListChildren is the batched form: every comment whose parent is one of
	// parentIDs with the given parent type, ascending by (created_at, id).
	ListChildren(ctx context.Context, parentType domain.ParentType, parentIDs []string) ([]domain.Comment, error)
	UpdateCommentText(ctx context.Context, id, text string) (domain.Comment, error)
	DeleteComments(ctx context.Context, ids []string) error
}

type ReactionStore interface {
	// InsertReaction fails with domain.ErrConflict when the
	// (user, target, target type) triple already exists.
	InsertReaction(ctx context.Context, r domain.Reaction) (domain.Reaction, error)
	DeleteReaction(ctx context.Context, userID, targetID string, tt domain.TargetType) (bool, error)
	HasReaction(ctx context.Context, userID, targetID string, tt domain.TargetType) (bool, error)
	CountReactions(ctx context.Context, targetID string, tt domain.TargetType) (int, error)
	DeleteReactionsForTargets(ctx context.Context, tt domain.TargetType, targetIDs []string) error
}

type NotificationStore interface {
	// CreateNotification keeps a preset ID; a duplicate ID is domain.ErrConflict.
	CreateNotification(ctx context.Context, n domain.Notification) (domain.Notification, error)
	GetNotification(ctx context.Context, id string) (domain.Notification, error)
	ListNotifications(ctx context.Context, recipientID string, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, recipientID string) (int, error)
	DeleteNotificationsByQuestion(ctx context.Context, questionID string) error
}

type GroupStore interface {
	CreateGroup(ctx context.Context, g domain.Group) (domain.Group, error)
	GetGroup(ctx context.Context, id string) (domain.Group, error)
	ListGroupsForMember(ctx context.Context, userID string) ([]domain.Group, error)
	ListPublicGroupsExcluding(ctx context.Context, userID string, limit int) ([]domain.Group, error)
	// AddMember fails with domain.ErrConflict when userID already belongs.
	AddMember(ctx context.Context, groupID, userID string) error
	// RemoveMember fails with domain.ErrNotFound when userID is not a member.
	RemoveMember(ctx context.Context, groupID, userID string) error
}

type UserStore interface {
	UpsertUser(ctx context.Context, u domain.User) (domain.User, error)
	GetUser(ctx context.Context, id string) (domain.User, error)
	// Follow fails with domain.ErrConflict when the edge exists.
	Follow(ctx context.Context, followerID, followeeID string) error
	Unfollow(ctx context.Context, followerID, followeeID string) (bool, error)
	IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)
	Followers(ctx context.Context, userID string) ([]string, error)
	Following(ctx context.Context, userID string) ([]string, error)
}

type TopicStore interface {
	// CreateTopic fails with domain.ErrConflict on a case-insensitive duplicate.
	CreateTopic(ctx context.Context, name string) (domain.Topic, error)
	FindTopicByName(ctx context.Context, name string) (domain.Topic, error)
	ListTopics(ctx context.Context) ([]domain.Topic, error)
}

// Store is every collection behind one backend.
type Store interface {
	QuestionStore
	AnswerStore
	CommentStore
	ReactionStore
	NotificationStore
	GroupStore
	UserStore
	TopicStore
	Ping(ctx context.Context) error
}
