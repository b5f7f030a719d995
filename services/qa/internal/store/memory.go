package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/wisora/services/qa/internal/domain"
)

// InMemory is a development-only Store. Each collection has its own lock,
// so single-record operations are atomic but multi-step operations are not.
type InMemory struct {
	qmu       sync.RWMutex
	questions map[string]domain.Question

	amu     sync.RWMutex
	answers map[string]domain.Answer

	cmu      sync.RWMutex
	comments map[string]domain.Comment

	rmu       sync.RWMutex
	reactions map[reactionKey]domain.Reaction

	nmu           sync.RWMutex
	notifications map[string]domain.Notification

	gmu    sync.RWMutex
	groups map[string]domain.Group

	umu     sync.RWMutex
	users   map[string]domain.User
	follows map[string]map[string]time.Time // follower -> followee -> since

	tmu    sync.RWMutex
	topics map[string]domain.Topic // lower(name) -> topic

	now func() time.Time
}

type reactionKey struct {
	userID     string
	targetID   string
	targetType domain.TargetType
}

func NewInMemory() *InMemory {
	return &InMemory{
		questions:     make(map[string]domain.Question),
		answers:       make(map[string]domain.Answer),
		comments:      make(map[string]domain.Comment),
		reactions:     make(map[reactionKey]domain.Reaction),
		notifications: make(map[string]domain.Notification),
		groups:        make(map[string]domain.Group),
		users:         make(map[string]domain.User),
		follows:       make(map[string]map[string]time.Time),
		topics:        make(map[string]domain.Topic),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *InMemory) Ping(context.Context) error { return nil }

// stamp fills id and created_at unless the caller preset them.
func (s *InMemory) stamp(id *string, createdAt *time.Time) {
	if *id == "" {
		*id = domain.NewID()
	}
	if createdAt.IsZero() {
		*createdAt = s.now()
	}
}

func idSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func sortComments(cs []domain.Comment) {
	sort.Slice(cs, func(i, j int) bool { return domain.CommentBefore(cs[i], cs[j]) })
}

func newestQuestionsFirst(qs []domain.Question) {
	sort.Slice(qs, func(i, j int) bool {
		if !qs[i].CreatedAt.Equal(qs[j].CreatedAt) {
			return qs[i].CreatedAt.After(qs[j].CreatedAt)
		}
		return qs[i].ID > qs[j].ID
	})
}

func newestAnswersFirst(as []domain.Answer) {
	sort.Slice(as, func(i, j int) bool {
		if !as[i].CreatedAt.Equal(as[j].CreatedAt) {
			return as[i].CreatedAt.After(as[j].CreatedAt)
		}
		return as[i].ID > as[j].ID
	})
}

func cloneQuestion(q domain.Question) domain.Question {
	q.Images = append([]string(nil), q.Images...)
	q.TopicIDs = append([]string(nil), q.TopicIDs...)
	if q.GroupID != nil {
		g := *q.GroupID
		q.GroupID = &g
	}
	return q
}

func cloneGroup(g domain.Group) domain.Group {
	g.Members = append([]string(nil), g.Members...)
	return g
}

// --- questions ---

func (s *InMemory) CreateQuestion(_ context.Context, q domain.Question) (domain.Question, error) {
	s.qmu.Lock()
	defer s.qmu.Unlock()
	s.stamp(&q.ID, &q.CreatedAt)
	if _, ok := s.questions[q.ID]; ok {
		return domain.Question{}, domain.ErrConflict
	}
	s.questions[q.ID] = cloneQuestion(q)
	return cloneQuestion(q), nil
}

func (s *InMemory) GetQuestion(_ context.Context, id string) (domain.Question, error) {
	s.qmu.RLock()
	defer s.qmu.RUnlock()
	q, ok := s.questions[id]
	if !ok {
		return domain.Question{}, domain.ErrNotFound
	}
	return cloneQuestion(q), nil
}

func (s *InMemory) filterQuestions(keep func(domain.Question) bool) []domain.Question {
	s.qmu.RLock()
	defer s.qmu.RUnlock()
	out := []domain.Question{}
	for _, q := range s.questions {
		if keep(q) {
			out = append(out, cloneQuestion(q))
		}
	}
	newestQuestionsFirst(out)
	return out
}

func (s *InMemory) ListPublicQuestions(_ context.Context, offset, limit int) ([]domain.Question, int, error) {
	all := s.filterQuestions(domain.Question.Public)
	total := len(all)
	if offset < 0 || offset >= total {
		return []domain.Question{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (s *InMemory) ListQuestionsByAuthor(_ context.Context, authorID string) ([]domain.Question, error) {
	return s.filterQuestions(func(q domain.Question) bool {
		return q.AuthorID == authorID && q.Public()
	}), nil
}

func (s *InMemory) ListQuestionsByGroup(_ context.Context, groupID string) ([]domain.Question, error) {
	return s.filterQuestions(func(q domain.Question) bool {
		return q.GroupID != nil && *q.GroupID == groupID
	}), nil
}

func (s *InMemory) SearchQuestions(_ context.Context, text, topicID string, limit int) ([]domain.Question, error) {
	words := strings.Fields(strings.ToLower(text))
	out := s.filterQuestions(func(q domain.Question) bool {
		if !q.Public() {
			return false
		}
		if topicID != "" && !contains(q.TopicIDs, topicID) {
			return false
		}
		hay := strings.ToLower(q.Title + " " + q.Body)
		for _, w := range words {
			if !strings.Contains(hay, w) {
				return false
			}
		}
		return true
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemory) CountQuestionsByAuthor(_ context.Context, authorID string) (int, error) {
	s.qmu.RLock()
	defer s.qmu.RUnlock()
	n := 0
	for _, q := range s.questions {
		if q.AuthorID == authorID {
			n++
		}
	}
	return n, nil
}

func (s *InMemory) DeleteQuestion(_ context.Context, id string) error {
	s.qmu.Lock()
	defer s.qmu.Unlock()
	delete(s.questions, id)
	return nil
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

// --- answers ---

func (s *InMemory) CreateAnswer(_ context.Context, a domain.Answer) (domain.Answer, error) {
	s.amu.Lock()
	defer s.amu.Unlock()
	s.stamp(&a.ID, &a.CreatedAt)
	if _, ok := s.answers[a.ID]; ok {
		return domain.Answer{}, domain.ErrConflict
	}
	s.answers[a.ID] = a
	return a, nil
}

func (s *InMemory) GetAnswer(_ context.Context, id string) (domain.Answer, error) {
	s.amu.RLock()
	defer s.amu.RUnlock()
	a, ok := s.answers[id]
	if !ok {
		return domain.Answer{}, domain.ErrNotFound
	}
	return a, nil
}

func (s *InMemory) filterAnswers(keep func(domain.Answer) bool) []domain.Answer {
	s.amu.RLock()
	defer s.amu.RUnlock()
	out := []domain.Answer{}
	for _, a := range s.answers {
		if keep(a) {
			out = append(out, a)
		}
	}
	newestAnswersFirst(out)
	return out
}

func (s *InMemory) ListAnswersByQuestion(_ context.Context, questionID string) ([]domain.Answer, error) {
	return s.filterAnswers(func(a domain.Answer) bool { return a.QuestionID == questionID }), nil
}

func (s *InMemory) ListAnswersByAuthor(_ context.Context, authorID string) ([]domain.Answer, error) {
	return s.filterAnswers(func(a domain.Answer) bool { return a.AuthorID == authorID }), nil
}

func (s *InMemory) AnswerIDsByQuestion(_ context.Context, questionID string) ([]string, error) {
	s.amu.RLock()
	defer s.amu.RUnlock()
	ids := []string{}
	for _, a := range s.answers {
		if a.QuestionID == questionID {
			ids = append(ids, a.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *InMemory) CountAnswersByQuestion(_ context.Context, questionIDs []string) (map[string]int, error) {
	want := idSet(questionIDs)
	s.amu.RLock()
	defer s.amu.RUnlock()
	out := make(map[string]int, len(questionIDs))
	for _, a := range s.answers {
		if _, ok := want[a.QuestionID]; ok {
			out[a.QuestionID]++
		}
	}
	return out, nil
}

func (s *InMemory) CountAnswersByAuthor(_ context.Context, authorID string) (int, error) {
	return len(s.filterAnswers(func(a domain.Answer) bool { return a.AuthorID == authorID })), nil
}

func (s *InMemory) UpdateAnswerText(_ context.Context, id, text string) (domain.Answer, error) {
	s.amu.Lock()
	defer s.amu.Unlock()
	a, ok := s.answers[id]
	if !ok {
		return domain.Answer{}, domain.ErrNotFound
	}
	now := s.now()
	a.Text = text
	a.UpdatedAt = &now
	s.answers[id] = a
	return a, nil
}

func (s *InMemory) DeleteAnswers(_ context.Context, ids []string) error {
	s.amu.Lock()
	defer s.amu.Unlock()
	for _, id := range ids {
		delete(s.answers, id)
	}
	return nil
}

// --- comments ---

func (s *InMemory) CreateComment(_ context.Context, c domain.Comment) (domain.Comment, error) {
	s.cmu.Lock()
	defer s.cmu.Unlock()
	s.stamp(&c.ID, &c.CreatedAt)
	if _, ok := s.comments[c.ID]; ok {
		return domain.Comment{}, domain.ErrConflict
	}
	s.comments[c.ID] = c
	return c, nil
}

func (s *InMemory) GetComment(_ context.Context, id string) (domain.Comment, error) {
	s.cmu.RLock()
	defer s.cmu.RUnlock()
	c, ok := s.comments[id]
	if !ok {
		return domain.Comment{}, domain.ErrNotFound
	}
	return c, nil
}

func (s *InMemory) ListByParent(_ context.Context, parentID string) ([]domain.Comment, error) {
	s.cmu.RLock()
	defer s.cmu.RUnlock()
	out := []domain.Comment{}
	for _, c := range s.comments {
		if c.ParentID == parentID {
			out = append(out, c)
		}
	}
	sortComments(out)
	return out, nil
}

func (s *InMemory) ListChildren(_ context.Context, parentType domain.ParentType, parentIDs []string) ([]domain.Comment, error) {
	if len(parentIDs) == 0 {
		return []domain.Comment{}, nil
	}
	want := idSet(parentIDs)
	s.cmu.RLock()
	defer s.cmu.RUnlock()
	out := []domain.Comment{}
	for _, c := range s.comments {
		if _, ok := want[c.ParentID]; ok && c.ParentType == parentType {
			out = append(out, c)
		}
	}
	sortComments(out)
	return out, nil
}

func (s *InMemory) UpdateCommentText(_ context.Context, id, text string) (domain.Comment, error) {
	s.cmu.Lock()
	defer s.cmu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return domain.Comment{}, domain.ErrNotFound
	}
	now := s.now()
	c.Text = text
	c.UpdatedAt = &now
	s.comments[id] = c
	return c, nil
}

func (s *InMemory) DeleteComments(_ context.Context, ids []string) error {
	s.cmu.Lock()
	defer s.cmu.Unlock()
	for _, id := range ids {
		delete(s.comments, id)
	}
	return nil
}

// --- reactions ---

func (s *InMemory) InsertReaction(_ context.Context, r domain.Reaction) (domain.Reaction, error) {
	s.rmu.Lock()
	defer s.rmu.Unlock()
	k := reactionKey{r.UserID, r.TargetID, r.TargetType}
	if _, ok := s.reactions[k]; ok {
		return domain.Reaction{}, domain.ErrConflict
	}
	s.stamp(&r.ID, &r.CreatedAt)
	s.reactions[k] = r
	return r, nil
}

func (s *InMemory) DeleteReaction(_ context.Context, userID, targetID string, tt domain.TargetType) (bool, error) {
	s.rmu.Lock()
	defer s.rmu.Unlock()
	k := reactionKey{userID, targetID, tt}
	if _, ok := s.reactions[k]; !ok {
		return false, nil
	}
	delete(s.reactions, k)
	return true, nil
}

func (s *InMemory) HasReaction(_ context.Context, userID, targetID string, tt domain.TargetType) (bool, error) {
	s.rmu.RLock()
	defer s.rmu.RUnlock()
	_, ok := s.reactions[reactionKey{userID, targetID, tt}]
	return ok, nil
}

func (s *InMemory) CountReactions(_ context.Context, targetID string, tt domain.TargetType) (int, error) {
	s.rmu.RLock()
	defer s.rmu.RUnlock()
	n := 0
	for k := range s.reactions {
		if k.targetID == targetID && k.targetType == tt {
			n++
		}
	}
	return n, nil
}

func (s *InMemory) DeleteReactionsForTargets(_ context.Context, tt domain.TargetType, targetIDs []string) error {
	if len(targetIDs) == 0 {
		return nil
	}
	want := idSet(targetIDs)
	s.rmu.Lock()
	defer s.rmu.Unlock()
	for k := range s.reactions {
		if _, ok := want[k.targetID]; ok && k.targetType == tt {
			delete(s.reactions, k)
		}
	}
	return nil
}

// --- notifications ---

func (s *InMemory) CreateNotification(_ context.Context, n domain.Notification) (domain.Notification, error) {
	s.nmu.Lock()
	defer s.nmu.Unlock()
	s.stamp(&n.ID, &n.CreatedAt)
	if _, ok := s.notifications[n.ID]; ok {
		return domain.Notification{}, domain.ErrConflict
	}
	s.notifications[n.ID] = n
	return n, nil
}

func (s *InMemory) GetNotification(_ context.Context, id string) (domain.Notification, error) {
	s.nmu.RLock()
	defer s.nmu.RUnlock()
	n, ok := s.notifications[id]
	if !ok {
		return domain.Notification{}, domain.ErrNotFound
	}
	return n, nil
}

func (s *InMemory) ListNotifications(_ context.Context, recipientID string, limit int) ([]domain.Notification, error) {
	s.nmu.RLock()
	defer s.nmu.RUnlock()
	out := []domain.Notification{}
	for _, n := range s.notifications {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemory) MarkRead(_ context.Context, id string) error {
	s.nmu.Lock()
	defer s.nmu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return domain.ErrNotFound
	}
	n.Read = true
	s.notifications[id] = n
	return nil
}

func (s *InMemory) MarkAllRead(_ context.Context, recipientID string) (int, error) {
	s.nmu.Lock()
	defer s.nmu.Unlock()
	changed := 0
	for id, n := range s.notifications {
		if n.RecipientID == recipientID && !n.Read {
			n.Read = true
			s.notifications[id] = n
			changed++
		}
	}
	return changed, nil
}

func (s *InMemory) DeleteNotificationsByQuestion(_ context.Context, questionID string) error {
	s.nmu.Lock()
	defer s.nmu.Unlock()
	for id, n := range s.notifications {
		if n.QuestionID != nil && *n.QuestionID == questionID {
			delete(s.notifications, id)
		}
	}
	return nil
}

// --- groups ---

func (s *InMemory) CreateGroup(_ context.Context, g domain.Group) (domain.Group, error) {
	s.gmu.Lock()
	defer s.gmu.Unlock()
	s.stamp(&g.ID, &g.CreatedAt)
	if !g.HasMember(g.OwnerID) {
		g.Members = append([]string{g.OwnerID}, g.Members...)
	}
	s.groups[g.ID] = cloneGroup(g)
	return cloneGroup(g), nil
}

func (s *InMemory) GetGroup(_ context.Context, id string) (domain.Group, error) {
	s.gmu.RLock()
	defer s.gmu.RUnlock()
	g, ok := s.groups[id]
	if !ok {
		return domain.Group{}, domain.ErrNotFound
	}
	return cloneGroup(g), nil
}

func (s *InMemory) filterGroups(keep func(domain.Group) bool) []domain.Group {
	s.gmu.RLock()
	defer s.gmu.RUnlock()
	out := []domain.Group{}
	for _, g := range s.groups {
		if keep(g) {
			out = append(out, cloneGroup(g))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (s *InMemory) ListGroupsForMember(_ context.Context, userID string) ([]domain.Group, error) {
	return s.filterGroups(func(g domain.Group) bool { return g.HasMember(userID) }), nil
}

func (s *InMemory) ListPublicGroupsExcluding(_ context.Context, userID string, limit int) ([]domain.Group, error) {
	out := s.filterGroups(func(g domain.Group) bool { return !g.IsPrivate && !g.HasMember(userID) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemory) AddMember(_ context.Context, groupID, userID string) error {
	s.gmu.Lock()
	defer s.gmu.Unlock()
	g, ok := s.groups[groupID]
	if !ok {
		return domain.ErrNotFound
	}
	if g.HasMember(userID) {
		return domain.ErrConflict
	}
	g.Members = append(g.Members, userID)
	s.groups[groupID] = g
	return nil
}

func (s *InMemory) RemoveMember(_ context.Context, groupID, userID string) error {
	s.gmu.Lock()
	defer s.gmu.Unlock()
	g, ok := s.groups[groupID]
	if !ok {
		return domain.ErrNotFound
	}
	kept := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		if m != userID {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(g.Members) {
		return domain.ErrNotFound
	}
	g.Members = kept
	s.groups[groupID] = g
	return nil
}

// --- users ---

func (s *InMemory) UpsertUser(_ context.Context, u domain.User) (domain.User, error) {
	s.umu.Lock()
	defer s.umu.Unlock()
	if u.Username != "" {
		for id, other := range s.users {
			if id != u.ID && strings.EqualFold(other.Username, u.Username) {
				return domain.User{}, domain.ErrConflict
			}
		}
	}
	if prev, ok := s.users[u.ID]; ok {
		u.CreatedAt = prev.CreatedAt
	} else if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *InMemory) GetUser(_ context.Context, id string) (domain.User, error) {
	s.umu.RLock()
	defer s.umu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (s *InMemory) Follow(_ context.Context, followerID, followeeID string) error {
	s.umu.Lock()
	defer s.umu.Unlock()
	edges := s.follows[followerID]
	if edges == nil {
		edges = make(map[string]time.Time)
		s.follows[followerID] = edges
	}
	if _, ok := edges[followeeID]; ok {
		return domain.ErrConflict
	}
	edges[followeeID] = s.now()
	return nil
}

func (s *InMemory) Unfollow(_ context.Context, followerID, followeeID string) (bool, error) {
	s.umu.Lock()
	defer s.umu.Unlock()
	if _, ok := s.follows[followerID][followeeID]; !ok {
		return false, nil
	}
	delete(s.follows[followerID], followeeID)
	return true, nil
}

func (s *InMemory) IsFollowing(_ context.Context, followerID, followeeID string) (bool, error) {
	s.umu.RLock()
	defer s.umu.RUnlock()
	_, ok := s.follows[followerID][followeeID]
	return ok, nil
}

func (s *InMemory) Followers(_ context.Context, userID string) ([]string, error) {
	s.umu.RLock()
	defer s.umu.RUnlock()
	out := []string{}
	for follower, edges := range s.follows {
		if _, ok := edges[userID]; ok {
			out = append(out, follower)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *InMemory) Following(_ context.Context, userID string) ([]string, error) {
	s.umu.RLock()
	defer s.umu.RUnlock()
	out := []string{}
	for followee := range s.follows[userID] {
		out = append(out, followee)
	}
	sort.Strings(out)
	return out, nil
}

// --- topics ---

func (s *InMemory) CreateTopic(_ context.Context, name string) (domain.Topic, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	s.tmu.Lock()
	defer s.tmu.Unlock()
	if _, ok := s.topics[key]; ok {
		return domain.Topic{}, domain.ErrConflict
	}
	t := domain.Topic{ID: domain.NewID(), Name: strings.TrimSpace(name), CreatedAt: s.now()}
	s.topics[key] = t
	return t, nil
}

func (s *InMemory) FindTopicByName(_ context.Context, name string) (domain.Topic, error) {
	s.tmu.RLock()
	defer s.tmu.RUnlock()
	t, ok := s.topics[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return domain.Topic{}, domain.ErrNotFound
	}
	return t, nil
}

func (s *InMemory) ListTopics(_ context.Context) ([]domain.Topic, error) {
	s.tmu.RLock()
	defer s.tmu.RUnlock()
	out := make([]domain.Topic, 0, len(s.topics))
	for _, t := range s.topics {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
