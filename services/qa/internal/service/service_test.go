package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/example/wisora/services/qa/internal/domain"
	"github.com/example/wisora/services/qa/internal/store"
)

type recorder struct {
	mu   sync.Mutex
	sent []domain.Notification
	err  error
}

func (r *recorder) Notify(_ context.Context, n domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return r.err
}

func (r *recorder) ofType(t domain.NotificationType) []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Notification
	for _, n := range r.sent {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

func newTestService(t *testing.T) (*Service, *store.InMemory, *recorder) {
	t.Helper()
	st := store.NewInMemory()
	rec := &recorder{}
	return New(st, rec, nil, Options{}), st, rec
}

func mustUser(t *testing.T, st *store.InMemory, id, name string) {
	t.Helper()
	if _, err := st.UpsertUser(context.Background(), domain.User{ID: id, Username: name}); err != nil {
		t.Fatalf("upsert user: %v", err)
	}
}

func mustQuestion(t *testing.T, svc *Service, author string) domain.Question {
	t.Helper()
	q, err := svc.CreateQuestion(context.Background(), author, NewQuestion{Title: "How?", Body: "Body"})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}
	return q
}

func TestCreateQuestion_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.CreateQuestion(context.Background(), "u1", NewQuestion{Title: "   ", Body: "b"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Fields["title"] == "" {
		t.Fatalf("expected title field error, got %#v", err)
	}
}

func TestCreateQuestion_ResolvesTopicsAndNotifiesFollowers(t *testing.T) {
	svc, st, rec := newTestService(t)
	ctx := context.Background()
	if err := st.Follow(ctx, "fan", "author"); err != nil {
		t.Fatal(err)
	}
	existing, _ := st.CreateTopic(ctx, "Go")

	q, err := svc.CreateQuestion(ctx, "author", NewQuestion{
		Title:  " Channels ",
		Body:   "How do they work?",
		Topics: []string{"go", "GO", " concurrency ", ""},
	})
	if err != nil {
		t.Fatal(err)
	}
	if q.Title != "Channels" {
		t.Fatalf("title not trimmed: %q", q.Title)
	}
	if len(q.TopicIDs) != 2 || q.TopicIDs[0] != existing.ID {
		t.Fatalf("unexpected topics %v", q.TopicIDs)
	}
	sent := rec.ofType(domain.NotifyQuestion)
	if len(sent) != 1 || sent[0].RecipientID != "fan" || sent[0].QuestionID == nil || *sent[0].QuestionID != q.ID {
		t.Fatalf("unexpected notifications %#v", sent)
	}
}

func TestCreateQuestion_GroupRequiresMembership(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	g, err := svc.CreateGroup(ctx, "owner", NewGroup{Name: "club"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateQuestion(ctx, "stranger", NewQuestion{Title: "t", Body: "b", GroupID: g.ID}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	q, err := svc.CreateQuestion(ctx, "owner", NewQuestion{Title: "t", Body: "b", GroupID: g.ID})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetQuestion(ctx, "", q.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("anonymous viewer: expected unauthorized, got %v", err)
	}
	if _, err := svc.GetQuestion(ctx, "stranger", q.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("non-member: expected unauthorized, got %v", err)
	}
	if _, err := svc.GetQuestion(ctx, "owner", q.ID); err != nil {
		t.Fatalf("member: %v", err)
	}
}

func TestListQuestions_Paging(t *testing.T) {
	svc, _, _ := newTestService(t)
	for i := 0; i < 5; i++ {
		mustQuestion(t, svc, "u1")
	}
	page, err := svc.ListQuestions(context.Background(), 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 5 || page.TotalPages != 3 || page.Page != 2 || len(page.Questions) != 2 {
		t.Fatalf("unexpected page %+v", page)
	}

	page, err = svc.ListQuestions(context.Background(), 0, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if page.Page != 1 || page.TotalPages != 1 || len(page.Questions) != 5 {
		t.Fatalf("unexpected clamped page %+v", page)
	}
}

func TestListQuestions_HugePageIsEmpty(t *testing.T) {
	svc, _, _ := newTestService(t)
	mustQuestion(t, svc, "u1")
	for _, p := range []struct{ page, limit int }{
		{math.MaxInt / 50, 100},
		{math.MaxInt, 0},
		{math.MaxInt, maxPageSize},
	} {
		page, err := svc.ListQuestions(context.Background(), p.page, p.limit)
		if err != nil {
			t.Fatalf("page %d limit %d: %v", p.page, p.limit, err)
		}
		if len(page.Questions) != 0 || page.Total != 1 {
			t.Fatalf("page %d limit %d: unexpected page %+v", p.page, p.limit, page)
		}
	}
}

func TestSearchQuestions_UnknownTag(t *testing.T) {
	svc, _, _ := newTestService(t)
	mustQuestion(t, svc, "u1")
	got, err := svc.SearchQuestions(context.Background(), "", "nope")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestGetQuestion_AnswerCount(t *testing.T) {
	svc, _, rec := newTestService(t)
	ctx := context.Background()
	q := mustQuestion(t, svc, "asker")
	if _, err := svc.CreateAnswer(ctx, "helper", q.ID, "answer"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateAnswer(ctx, "asker", q.ID, "self answer"); err != nil {
		t.Fatal(err)
	}
	d, err := svc.GetQuestion(ctx, "", q.ID)
	if err != nil {
		t.Fatal(err)
	}
	if d.AnswerCount != 2 {
		t.Fatalf("answer count %d", d.AnswerCount)
	}
	if n := rec.ofType(domain.NotifyAnswer); len(n) != 1 || n[0].RecipientID != "asker" {
		t.Fatalf("expected a single answer notification to asker, got %#v", n)
	}
}

func TestUpdateAnswer_OnlyAuthor(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	q := mustQuestion(t, svc, "asker")
	a, _ := svc.CreateAnswer(ctx, "helper", q.ID, "first")
	if _, err := svc.UpdateAnswer(ctx, "asker", a.ID, "hijack"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	got, err := svc.UpdateAnswer(ctx, "helper", a.ID, " second ")
	if err != nil {
		t.Fatal(err)
	}
	if got.Text != "second" || got.UpdatedAt == nil {
		t.Fatalf("unexpected answer %+v", got)
	}
}

func TestCreateComment_NotifiesParentAuthorWithQuestion(t *testing.T) {
	svc, _, rec := newTestService(t)
	ctx := context.Background()
	q := mustQuestion(t, svc, "asker")
	a, _ := svc.CreateAnswer(ctx, "helper", q.ID, "answer")
	c1, err := svc.CreateComment(ctx, "asker", domain.ParentAnswer, a.ID, "thanks")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateComment(ctx, "helper", domain.ParentComment, c1.ID, "np"); err != nil {
		t.Fatal(err)
	}

	sent := rec.ofType(domain.NotifyComment)
	if len(sent) != 2 {
		t.Fatalf("expected 2 comment notifications, got %d", len(sent))
	}
	if sent[0].RecipientID != "helper" || sent[1].RecipientID != "asker" {
		t.Fatalf("unexpected recipients %#v", sent)
	}
	for _, n := range sent {
		if n.QuestionID == nil || *n.QuestionID != q.ID {
			t.Fatalf("question id not resolved: %#v", n)
		}
	}
}

func TestPrivateGroupAnswersAndComments(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	g, err := svc.CreateGroup(ctx, "owner", NewGroup{Name: "club"})
	if err != nil {
		t.Fatal(err)
	}
	q, err := svc.CreateQuestion(ctx, "owner", NewQuestion{Title: "t", Body: "b", GroupID: g.ID})
	if err != nil {
		t.Fatal(err)
	}
	a, err := svc.CreateAnswer(ctx, "owner", q.ID, "answer")
	if err != nil {
		t.Fatal(err)
	}
	c, err := svc.CreateComment(ctx, "owner", domain.ParentAnswer, a.ID, "note")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.QuestionAnswers(ctx, "", q.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("anonymous answers: expected unauthorized, got %v", err)
	}
	if _, err := svc.QuestionAnswers(ctx, "stranger", q.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("non-member answers: expected unauthorized, got %v", err)
	}
	if _, err := svc.CreateComment(ctx, "stranger", domain.ParentAnswer, a.ID, "hi"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("comment on answer: expected unauthorized, got %v", err)
	}
	if _, err := svc.CreateComment(ctx, "stranger", domain.ParentComment, c.ID, "hi"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("reply to comment: expected unauthorized, got %v", err)
	}

	as, err := svc.QuestionAnswers(ctx, "owner", q.ID)
	if err != nil || len(as) != 1 {
		t.Fatalf("member answers: %v %v", as, err)
	}
	if _, err := svc.CreateComment(ctx, "owner", domain.ParentComment, c.ID, "reply"); err != nil {
		t.Fatalf("member reply: %v", err)
	}
}

func TestCreateComment_MissingParent(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.CreateComment(context.Background(), "u1", domain.ParentComment, "nope", "hi")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	_, err = svc.CreateComment(context.Background(), "u1", domain.ParentType("Question"), "x", "hi")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestThreadAndCascade(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	q := mustQuestion(t, svc, "asker")
	a, _ := svc.CreateAnswer(ctx, "helper", q.ID, "answer")
	c1, _ := svc.CreateComment(ctx, "asker", domain.ParentAnswer, a.ID, "c1")
	r1, _ := svc.CreateComment(ctx, "helper", domain.ParentComment, c1.ID, "r1")

	tree, err := svc.Thread(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(tree) != 1 || len(tree[0].Replies) != 1 || tree[0].Replies[0].Comment.ID != r1.ID {
		t.Fatalf("unexpected thread %#v", tree)
	}

	if err := svc.DeleteAnswer(ctx, "asker", a.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err := svc.DeleteQuestion(ctx, "asker", q.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := st.GetComment(ctx, r1.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("reply survived cascade: %v", err)
	}
	if err := svc.DeleteQuestion(ctx, "asker", q.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete: expected not found, got %v", err)
	}
}

func TestToggleReaction(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	q := mustQuestion(t, svc, "asker")

	st, err := svc.ToggleReaction(ctx, "u1", q.ID, domain.TargetQuestion)
	if err != nil || !st.Active || st.Count != 1 {
		t.Fatalf("first toggle: %+v %v", st, err)
	}
	if _, err := svc.ToggleReaction(ctx, "u2", q.ID, domain.TargetQuestion); err != nil {
		t.Fatal(err)
	}
	st, err = svc.ToggleReaction(ctx, "u1", q.ID, domain.TargetQuestion)
	if err != nil || st.Active || st.Count != 1 {
		t.Fatalf("second toggle: %+v %v", st, err)
	}

	status, err := svc.ReactionStatus(ctx, "u2", q.ID, domain.TargetQuestion)
	if err != nil || !status.Active || status.Count != 1 {
		t.Fatalf("status: %+v %v", status, err)
	}
	status, err = svc.ReactionStatus(ctx, "", q.ID, domain.TargetQuestion)
	if err != nil || status.Active {
		t.Fatalf("anonymous status: %+v %v", status, err)
	}

	if _, err := svc.ToggleReaction(ctx, "u1", "missing", domain.TargetAnswer); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.ToggleReaction(ctx, "u1", q.ID, domain.TargetType("Group")); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNotifications_RecipientOnly(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	n, err := st.CreateNotification(ctx, domain.Notification{RecipientID: "r", SenderID: "s", Type: domain.NotifyFollow})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.MarkNotificationRead(ctx, "s", n.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err := svc.MarkNotificationRead(ctx, "r", n.ID); err != nil {
		t.Fatal(err)
	}
	list, _ := svc.Notifications(ctx, "r")
	if len(list) != 1 || !list[0].Read {
		t.Fatalf("unexpected list %#v", list)
	}
	if _, err := st.CreateNotification(ctx, domain.Notification{RecipientID: "r", SenderID: "s", Type: domain.NotifyFollow}); err != nil {
		t.Fatal(err)
	}
	updated, err := svc.MarkAllNotificationsRead(ctx, "r")
	if err != nil || updated != 1 {
		t.Fatalf("mark all: %d %v", updated, err)
	}
}

func TestGroups_Membership(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	public := false
	g, err := svc.CreateGroup(ctx, "owner", NewGroup{Name: "open", IsPrivate: &public})
	if err != nil {
		t.Fatal(err)
	}
	priv, _ := svc.CreateGroup(ctx, "owner", NewGroup{Name: "closed"})
	if !priv.IsPrivate {
		t.Fatal("groups should default to private")
	}

	listed, _ := svc.PublicGroups(ctx, "joiner")
	if len(listed) != 1 || listed[0].ID != g.ID {
		t.Fatalf("unexpected public groups %#v", listed)
	}
	if _, err := svc.JoinGroup(ctx, "joiner", priv.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("join private: expected unauthorized, got %v", err)
	}
	if _, err := svc.JoinGroup(ctx, "joiner", g.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.JoinGroup(ctx, "joiner", g.ID); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("rejoin: expected validation error, got %v", err)
	}

	if _, err := svc.AddMember(ctx, "joiner", priv.ID, "someone"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("non-owner add: expected unauthorized, got %v", err)
	}
	if _, err := svc.AddMember(ctx, "owner", priv.ID, "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown user: expected not found, got %v", err)
	}
	mustUser(t, st, "friend", "friend")
	updated, err := svc.AddMember(ctx, "owner", priv.ID, "friend")
	if err != nil || !updated.HasMember("friend") {
		t.Fatalf("add member: %+v %v", updated, err)
	}
	if _, err := svc.GetGroup(ctx, "friend", priv.ID); err != nil {
		t.Fatalf("member view: %v", err)
	}
	if _, err := svc.GetGroup(ctx, "joiner", priv.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("outsider view: expected unauthorized, got %v", err)
	}

	if _, err := svc.RemoveMember(ctx, "owner", priv.ID, "owner"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("owner leave: expected validation error, got %v", err)
	}
	if _, err := svc.RemoveMember(ctx, "joiner", priv.ID, "friend"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("third party remove: expected unauthorized, got %v", err)
	}
	if _, err := svc.RemoveMember(ctx, "friend", priv.ID, "friend"); err != nil {
		t.Fatalf("self leave: %v", err)
	}
	if _, err := svc.RemoveMember(ctx, "owner", priv.ID, "friend"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("remove non-member: expected not found, got %v", err)
	}
}

func TestUsers_ProfileAndFollow(t *testing.T) {
	svc, st, rec := newTestService(t)
	ctx := context.Background()
	name := "alice"
	if _, err := svc.UpdateProfile(ctx, "bob", "alice", ProfileUpdate{Username: &name}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, err := svc.UpdateProfile(ctx, "alice", "alice", ProfileUpdate{Username: &name}); err != nil {
		t.Fatal(err)
	}
	mustUser(t, st, "bob", "bob")
	taken := "ALICE"
	if _, err := svc.UpdateProfile(ctx, "bob", "bob", ProfileUpdate{Username: &taken}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	if _, err := svc.ToggleFollow(ctx, "bob", "bob"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("self follow: expected validation error, got %v", err)
	}
	if _, err := svc.ToggleFollow(ctx, "bob", "nobody"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	following, err := svc.ToggleFollow(ctx, "bob", "alice")
	if err != nil || !following {
		t.Fatalf("follow: %v %v", following, err)
	}
	if n := rec.ofType(domain.NotifyFollow); len(n) != 1 || n[0].RecipientID != "alice" {
		t.Fatalf("unexpected follow notifications %#v", n)
	}

	mustQuestion(t, svc, "alice")
	p, err := svc.GetProfile(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Followers) != 1 || p.Followers[0] != "bob" || p.QuestionsCount != 1 {
		t.Fatalf("unexpected profile %+v", p)
	}

	following, err = svc.ToggleFollow(ctx, "bob", "alice")
	if err != nil || following {
		t.Fatalf("unfollow: %v %v", following, err)
	}
}

func TestDispatchFailureDoesNotFailWrite(t *testing.T) {
	st := store.NewInMemory()
	rec := &recorder{err: errors.New("broker down")}
	svc := New(st, rec, nil, Options{})
	ctx := context.Background()
	q := mustQuestion(t, svc, "asker")
	if _, err := svc.CreateAnswer(ctx, "helper", q.ID, "answer"); err != nil {
		t.Fatalf("answer should succeed despite notifier failure: %v", err)
	}
	if len(rec.ofType(domain.NotifyAnswer)) != 1 {
		t.Fatal("notifier was not called")
	}
}

func TestTopics(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.CreateTopic(ctx, " "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.CreateTopic(ctx, "Go"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateTopic(ctx, "go"); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	ts, _ := svc.ListTopics(ctx)
	if len(ts) != 1 {
		t.Fatalf("unexpected topics %#v", ts)
	}
}
