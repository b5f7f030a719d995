package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/example/wisora/services/qa/internal/domain"
)

type NewQuestion struct {
	Title   string
	Body    string
	Images  []string
	Topics  []string
	GroupID string
}

type QuestionDetail struct {
	Question    domain.Question
	AnswerCount int
}

type QuestionPage struct {
	Questions  []QuestionDetail
	Page       int
	TotalPages int
	Total      int
}

func (s *Service) CreateQuestion(ctx context.Context, actorID string, in NewQuestion) (domain.Question, error) {
	title, err := requireText("title", in.Title)
	if err != nil {
		return domain.Question{}, err
	}
	body, err := requireText("body", in.Body)
	if err != nil {
		return domain.Question{}, err
	}

	q := domain.Question{
		Title:    title,
		Body:     body,
		Images:   nonEmpty(in.Images),
		AuthorID: actorID,
	}
	if gid := strings.TrimSpace(in.GroupID); gid != "" {
		g, err := s.store.GetGroup(ctx, gid)
		if err != nil {
			return domain.Question{}, err
		}
		if !g.HasMember(actorID) {
			return domain.Question{}, domain.ErrUnauthorized
		}
		q.GroupID = &gid
	}
	if q.TopicIDs, err = s.resolveTopics(ctx, in.Topics); err != nil {
		return domain.Question{}, err
	}

	created, err := s.store.CreateQuestion(ctx, q)
	if err != nil {
		return domain.Question{}, err
	}

	if created.Public() {
		followers, err := s.store.Followers(ctx, actorID)
		if err != nil {
			s.log.Warn("list followers for question notification failed", zap.Error(err))
		}
		for _, f := range followers {
			s.dispatch(ctx, domain.Notification{
				RecipientID: f,
				SenderID:    actorID,
				Type:        domain.NotifyQuestion,
				QuestionID:  &created.ID,
			})
		}
	}
	return created, nil
}

// resolveTopics finds or creates each named topic, ignoring case and duplicates.
func (s *Service) resolveTopics(ctx context.Context, names []string) ([]string, error) {
	ids := []string{}
	seen := map[string]struct{}{}
	for _, name := range names {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if name == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		t, err := s.store.FindTopicByName(ctx, name)
		if errors.Is(err, domain.ErrNotFound) {
			t, err = s.CreateTopic(ctx, name)
			if errors.Is(err, domain.ErrConflict) {
				t, err = s.store.FindTopicByName(ctx, name)
			}
		}
		if err != nil {
			return nil, err
		}
		ids = append(ids, t.ID)
	}
	return ids, nil
}

func (s *Service) ListQuestions(ctx context.Context, page, limit int) (QuestionPage, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	// (page-1)*limit must not overflow
	if page > math.MaxInt/limit {
		page = math.MaxInt / limit
	}
	qs, total, err := s.store.ListPublicQuestions(ctx, (page-1)*limit, limit)
	if err != nil {
		return QuestionPage{}, err
	}
	details, err := s.withAnswerCounts(ctx, qs)
	if err != nil {
		return QuestionPage{}, err
	}
	return QuestionPage{
		Questions:  details,
		Page:       page,
		TotalPages: (total + limit - 1) / limit,
		Total:      total,
	}, nil
}

// SearchQuestions matches text against title and body. A tag that names
// no topic yields no results.
func (s *Service) SearchQuestions(ctx context.Context, text, tag string) ([]QuestionDetail, error) {
	var topicID string
	if tag = strings.TrimSpace(tag); tag != "" {
		t, err := s.store.FindTopicByName(ctx, tag)
		if errors.Is(err, domain.ErrNotFound) {
			return []QuestionDetail{}, nil
		}
		if err != nil {
			return nil, err
		}
		topicID = t.ID
	}
	qs, err := s.store.SearchQuestions(ctx, strings.TrimSpace(text), topicID, searchLimit)
	if err != nil {
		return nil, err
	}
	return s.withAnswerCounts(ctx, qs)
}

func (s *Service) UserQuestions(ctx context.Context, userID string) ([]QuestionDetail, error) {
	qs, err := s.store.ListQuestionsByAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withAnswerCounts(ctx, qs)
}

// GetQuestion hides questions of private groups from non-members and
// anonymous viewers (empty viewerID).
func (s *Service) GetQuestion(ctx context.Context, viewerID, id string) (QuestionDetail, error) {
	q, err := s.store.GetQuestion(ctx, id)
	if err != nil {
		return QuestionDetail{}, err
	}
	if err := s.checkQuestionVisible(ctx, viewerID, q); err != nil {
		return QuestionDetail{}, err
	}
	details, err := s.withAnswerCounts(ctx, []domain.Question{q})
	if err != nil {
		return QuestionDetail{}, err
	}
	return details[0], nil
}

func (s *Service) checkQuestionVisible(ctx context.Context, viewerID string, q domain.Question) error {
	if q.Public() {
		return nil
	}
	g, err := s.store.GetGroup(ctx, *q.GroupID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if g.IsPrivate && (viewerID == "" || !g.HasMember(viewerID)) {
		return domain.ErrUnauthorized
	}
	return nil
}

// checkQuestionIDVisible is checkQuestionVisible for content hanging off a
// question. A question that no longer exists gates nothing.
func (s *Service) checkQuestionIDVisible(ctx context.Context, viewerID, questionID string) error {
	q, err := s.store.GetQuestion(ctx, questionID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.checkQuestionVisible(ctx, viewerID, q)
}

func (s *Service) DeleteQuestion(ctx context.Context, actorID, id string) error {
	return s.deleter.DeleteQuestion(ctx, id, actorID)
}

func (s *Service) withAnswerCounts(ctx context.Context, qs []domain.Question) ([]QuestionDetail, error) {
	ids := make([]string, len(qs))
	for i, q := range qs {
		ids[i] = q.ID
	}
	counts, err := s.store.CountAnswersByQuestion(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]QuestionDetail, len(qs))
	for i, q := range qs {
		out[i] = QuestionDetail{Question: q, AnswerCount: counts[q.ID]}
	}
	return out, nil
}

func nonEmpty(xs []string) []string {
	out := []string{}
	for _, x := range xs {
		if x = strings.TrimSpace(x); x != "" {
			out = append(out, x)
		}
	}
	return out
}
