package handlers

import (
	"time"

	"github.com/example/wisora/services/qa/internal/domain"
	"github.com/example/wisora/services/qa/internal/render"
	"github.com/example/wisora/services/qa/internal/service"
)

type questionView struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	BodyHTML    string    `json:"body_html"`
	Images      []string  `json:"images"`
	Topics      []string  `json:"topics"`
	AuthorID    string    `json:"author_id"`
	GroupID     *string   `json:"group_id,omitempty"`
	AnswerCount int       `json:"answer_count"`
	CreatedAt   time.Time `json:"created_at"`
}

func newQuestionView(q domain.Question, answerCount int) questionView {
	images, topics := q.Images, q.TopicIDs
	if images == nil {
		images = []string{}
	}
	if topics == nil {
		topics = []string{}
	}
	return questionView{
		ID:          q.ID,
		Title:       q.Title,
		Body:        q.Body,
		BodyHTML:    render.Markdown(q.Body),
		Images:      images,
		Topics:      topics,
		AuthorID:    q.AuthorID,
		GroupID:     q.GroupID,
		AnswerCount: answerCount,
		CreatedAt:   q.CreatedAt,
	}
}

func questionViews(ds []service.QuestionDetail) []questionView {
	out := make([]questionView, 0, len(ds))
	for _, d := range ds {
		out = append(out, newQuestionView(d.Question, d.AnswerCount))
	}
	return out
}

type questionPageView struct {
	Questions  []questionView `json:"questions"`
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
	Total      int            `json:"total"`
}

type threadView struct {
	Comments []domain.ThreadNode `json:"comments"`
}

type reactionView struct {
	Liked bool `json:"liked"`
	Count int  `json:"count"`
}

type groupDetailView struct {
	Group     domain.Group   `json:"group"`
	Questions []questionView `json:"questions"`
}

type profileView struct {
	domain.User
	Followers      []string `json:"followers"`
	Following      []string `json:"following"`
	QuestionsCount int      `json:"questions_count"`
	AnswersCount   int      `json:"answers_count"`
}

type followView struct {
	Following bool `json:"following"`
}

type markAllView struct {
	Updated int `json:"updated"`
}
