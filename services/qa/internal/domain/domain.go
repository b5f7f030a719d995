// Package domain holds the Q&A entities shared by every layer.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type ParentType string

const (
	ParentAnswer  ParentType = "Answer"
	ParentComment ParentType = "Comment"
)

func (p ParentType) Valid() bool {
	return p == ParentAnswer || p == ParentComment
}

type TargetType string

const (
	TargetQuestion TargetType = "Question"
	TargetAnswer   TargetType = "Answer"
	TargetComment  TargetType = "Comment"
)

func (t TargetType) Valid() bool {
	switch t {
	case TargetQuestion, TargetAnswer, TargetComment:
		return true
	}
	return false
}

type NotificationType string

const (
	NotifyFollow   NotificationType = "follow"
	NotifyAnswer   NotificationType = "answer"
	NotifyQuestion NotificationType = "question"
	NotifyComment  NotificationType = "comment"
)

type Question struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Images    []string  `json:"images"`
	TopicIDs  []string  `json:"topic_ids"`
	AuthorID  string    `json:"author_id"`
	GroupID   *string   `json:"group_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Public reports whether the question is visible outside any group.
func (q Question) Public() bool {
	return q.GroupID == nil || *q.GroupID == ""
}

type Answer struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	QuestionID string     `json:"question_id"`
	AuthorID   string     `json:"author_id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

type Comment struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	ParentID   string     `json:"parent_id"`
	ParentType ParentType `json:"parent_type"`
	AuthorID   string     `json:"author_id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

type Reaction struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	TargetID   string     `json:"target_id"`
	TargetType TargetType `json:"target_type"`
	CreatedAt  time.Time  `json:"created_at"`
}

type Notification struct {
	ID          string           `json:"id"`
	RecipientID string           `json:"recipient_id"`
	SenderID    string           `json:"sender_id"`
	Type        NotificationType `json:"type"`
	QuestionID  *string          `json:"question_id,omitempty"`
	Read        bool             `json:"read"`
	CreatedAt   time.Time        `json:"created_at"`
}

type Group struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	CoverImage     string    `json:"cover_image,omitempty"`
	IsPrivate      bool      `json:"is_private"`
	OwnerID        string    `json:"owner_id"`
	Members        []string  `json:"members"`
	CreatedAt      time.Time `json:"created_at"`
}

func (g Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Bio       string    `json:"bio"`
	CreatedAt time.Time `json:"created_at"`
}

type Topic struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ThreadNode is one comment with its materialized replies.
type ThreadNode struct {
	Comment Comment      `json:"comment"`
	Replies []ThreadNode `json:"replies"`
}

// NewID returns a time-ordered UUIDv7 string.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// CommentBefore orders comments by ascending (CreatedAt, ID).
func CommentBefore(a, b Comment) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
