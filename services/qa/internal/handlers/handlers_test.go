package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/example/wisora/internal/platform/api"
	"github.com/example/wisora/internal/platform/auth"
	"github.com/example/wisora/internal/platform/validate"
	"github.com/example/wisora/services/qa/internal/domain"
	"github.com/example/wisora/services/qa/internal/service"
	"github.com/example/wisora/services/qa/internal/store"
)

// setupReq builds a request with chi URL params and optional user_id in context.
func setupReq(method, url string, body string, params map[string]string, userID string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, url, bytes.NewBufferString(body))
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if userID != "" {
		ctx = auth.WithUserID(ctx, userID)
	}
	return req.WithContext(ctx)
}

func newDeps(t *testing.T) (Deps, *store.InMemory) {
	t.Helper()
	st := store.NewInMemory()
	return Deps{Svc: service.New(st, nil, nil, service.Options{}), Validator: validate.New()}, st
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) api.APIError {
	t.Helper()
	var resp api.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp.Error
}

func createQuestion(t *testing.T, d Deps, userID, body string) questionView {
	t.Helper()
	rr := serve(CreateQuestion(d), setupReq(http.MethodPost, "/v1/questions", body, nil, userID))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var v questionView
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestCreateQuestion(t *testing.T) {
	d, _ := newDeps(t)
	v := createQuestion(t, d, "user-a", `{"title":"Why Go?","body":"**because**","topics":["go"]}`)
	if v.AuthorID != "user-a" {
		t.Fatalf("expected author user-a, got %q", v.AuthorID)
	}
	if !strings.Contains(v.BodyHTML, "<strong>because</strong>") {
		t.Fatalf("expected rendered body, got %q", v.BodyHTML)
	}
	if len(v.Topics) != 1 {
		t.Fatalf("expected one topic, got %v", v.Topics)
	}
}

func TestCreateQuestion_Unauthorized(t *testing.T) {
	d, _ := newDeps(t)
	rr := serve(CreateQuestion(d), setupReq(http.MethodPost, "/v1/questions", `{"title":"t","body":"b"}`, nil, ""))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestCreateQuestion_ValidationFailed(t *testing.T) {
	d, _ := newDeps(t)
	rr := serve(CreateQuestion(d), setupReq(http.MethodPost, "/v1/questions", `{"title":"  ","body":"b"}`, nil, "user-a"))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	e := decodeError(t, rr)
	if e.Code != "VALIDATION_FAILED" {
		t.Fatalf("expected VALIDATION_FAILED, got %q", e.Code)
	}
	if e.Details["fields"] == nil {
		t.Fatalf("expected field details, got %#v", e.Details)
	}
}

func TestCreateQuestion_InvalidJSON(t *testing.T) {
	d, _ := newDeps(t)
	rr := serve(CreateQuestion(d), setupReq(http.MethodPost, "/v1/questions", `{`, nil, "user-a"))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if e := decodeError(t, rr); e.Code != "INVALID_JSON" {
		t.Fatalf("expected INVALID_JSON, got %q", e.Code)
	}
}

func TestGetQuestion_NotFound(t *testing.T) {
	d, _ := newDeps(t)
	rr := serve(GetQuestion(d), setupReq(http.MethodGet, "/v1/questions/nope", "", map[string]string{"id": "nope"}, ""))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestGetQuestion_PrivateGroup(t *testing.T) {
	d, _ := newDeps(t)
	g, err := d.Svc.CreateGroup(context.Background(), "owner", service.NewGroup{Name: "club"})
	if err != nil {
		t.Fatal(err)
	}
	q := createQuestion(t, d, "owner", `{"title":"t","body":"b","group_id":"`+g.ID+`"}`)

	for _, viewer := range []string{"", "stranger"} {
		rr := serve(GetQuestion(d), setupReq(http.MethodGet, "/v1/questions/"+q.ID, "", map[string]string{"id": q.ID}, viewer))
		if rr.Code != http.StatusForbidden {
			t.Fatalf("viewer %q: expected 403, got %d", viewer, rr.Code)
		}
	}
	rr := serve(GetQuestion(d), setupReq(http.MethodGet, "/v1/questions/"+q.ID, "", map[string]string{"id": q.ID}, "owner"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestQuestionAnswers_PrivateGroup(t *testing.T) {
	d, _ := newDeps(t)
	g, err := d.Svc.CreateGroup(context.Background(), "owner", service.NewGroup{Name: "club"})
	if err != nil {
		t.Fatal(err)
	}
	q := createQuestion(t, d, "owner", `{"title":"t","body":"b","group_id":"`+g.ID+`"}`)
	params := map[string]string{"question_id": q.ID}

	rr := serve(QuestionAnswers(d), setupReq(http.MethodGet, "/v1/answers/question/"+q.ID, "", params, "stranger"))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	rr = serve(QuestionAnswers(d), setupReq(http.MethodGet, "/v1/answers/question/"+q.ID, "", params, "owner"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestListQuestions(t *testing.T) {
	d, _ := newDeps(t)
	for i := 0; i < 3; i++ {
		createQuestion(t, d, "user-a", `{"title":"t","body":"b"}`)
	}
	rr := serve(ListQuestions(d), setupReq(http.MethodGet, "/v1/questions?page=1&limit=2", "", nil, ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var page questionPageView
	if err := json.NewDecoder(rr.Body).Decode(&page); err != nil {
		t.Fatal(err)
	}
	if page.Total != 3 || page.TotalPages != 2 || len(page.Questions) != 2 {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestDeleteQuestion_Forbidden(t *testing.T) {
	d, _ := newDeps(t)
	q := createQuestion(t, d, "user-a", `{"title":"t","body":"b"}`)
	rr := serve(DeleteQuestion(d), setupReq(http.MethodDelete, "/v1/questions/"+q.ID, "", map[string]string{"id": q.ID}, "user-b"))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	rr = serve(DeleteQuestion(d), setupReq(http.MethodDelete, "/v1/questions/"+q.ID, "", map[string]string{"id": q.ID}, "user-a"))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	rr = serve(DeleteQuestion(d), setupReq(http.MethodDelete, "/v1/questions/"+q.ID, "", map[string]string{"id": q.ID}, "user-a"))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rr.Code)
	}
}

func TestAnswerAndThread(t *testing.T) {
	d, st := newDeps(t)
	q := createQuestion(t, d, "asker", `{"title":"t","body":"b"}`)

	rr := serve(CreateAnswer(d), setupReq(http.MethodPost, "/", `{"text":"answer"}`, map[string]string{"id": q.ID}, "helper"))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var a domain.Answer
	if err := json.NewDecoder(rr.Body).Decode(&a); err != nil {
		t.Fatal(err)
	}

	h := CreateComment(d, domain.ParentAnswer, "answer_id")
	rr = serve(h, setupReq(http.MethodPost, "/", `{"text":"thanks"}`, map[string]string{"answer_id": a.ID}, "asker"))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = serve(GetThread(d), setupReq(http.MethodGet, "/", "", map[string]string{"id": a.ID}, ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var tv threadView
	if err := json.NewDecoder(rr.Body).Decode(&tv); err != nil {
		t.Fatal(err)
	}
	if len(tv.Comments) != 1 || tv.Comments[0].Comment.Text != "thanks" {
		t.Fatalf("unexpected thread %#v", tv)
	}

	ns, _ := st.ListNotifications(context.Background(), "helper", 10)
	if len(ns) != 1 || ns[0].Type != domain.NotifyComment {
		t.Fatalf("expected a comment notification for helper, got %#v", ns)
	}
}

func TestCreateComment_MissingParent(t *testing.T) {
	d, _ := newDeps(t)
	h := CreateComment(d, domain.ParentComment, "comment_id")
	rr := serve(h, setupReq(http.MethodPost, "/", `{"text":"hi"}`, map[string]string{"comment_id": "ghost"}, "user-a"))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestToggleReaction(t *testing.T) {
	d, _ := newDeps(t)
	q := createQuestion(t, d, "asker", `{"title":"t","body":"b"}`)
	body := `{"target_id":"` + q.ID + `","target_type":"Question"}`

	rr := serve(ToggleReaction(d), setupReq(http.MethodPost, "/v1/likes/toggle", body, nil, "fan"))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	rr = serve(ToggleReaction(d), setupReq(http.MethodPost, "/v1/likes/toggle", body, nil, "fan"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var v reactionView
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatal(err)
	}
	if v.Liked || v.Count != 0 {
		t.Fatalf("unexpected reaction state %+v", v)
	}

	rr = serve(ToggleReaction(d), setupReq(http.MethodPost, "/v1/likes/toggle", `{"target_id":"x","target_type":"Group"}`, nil, "fan"))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestReactionStatus_Anonymous(t *testing.T) {
	d, _ := newDeps(t)
	q := createQuestion(t, d, "asker", `{"title":"t","body":"b"}`)
	if _, err := d.Svc.ToggleReaction(context.Background(), "fan", q.ID, domain.TargetQuestion); err != nil {
		t.Fatal(err)
	}
	rr := serve(ReactionStatus(d), setupReq(http.MethodGet, "/v1/likes/"+q.ID+"?target_type=Question", "", map[string]string{"target_id": q.ID}, ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var v reactionView
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatal(err)
	}
	if v.Liked || v.Count != 1 {
		t.Fatalf("unexpected reaction state %+v", v)
	}
}

func TestJoinGroup_AlreadyMember(t *testing.T) {
	d, _ := newDeps(t)
	rr := serve(CreateGroup(d), setupReq(http.MethodPost, "/v1/groups", `{"name":"open","is_private":false}`, nil, "owner"))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var g domain.Group
	if err := json.NewDecoder(rr.Body).Decode(&g); err != nil {
		t.Fatal(err)
	}
	rr = serve(JoinGroup(d), setupReq(http.MethodPost, "/", "", map[string]string{"id": g.ID}, "owner"))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	rr = serve(JoinGroup(d), setupReq(http.MethodPost, "/", "", map[string]string{"id": g.ID}, "newbie"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestCreateTopic_Conflict(t *testing.T) {
	d, _ := newDeps(t)
	rr := serve(CreateTopic(d), setupReq(http.MethodPost, "/v1/topics", `{"name":"Go"}`, nil, "user-a"))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	rr = serve(CreateTopic(d), setupReq(http.MethodPost, "/v1/topics", `{"name":"go"}`, nil, "user-a"))
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestProfileAndFollow(t *testing.T) {
	d, _ := newDeps(t)
	rr := serve(UpdateProfile(d), setupReq(http.MethodPut, "/", `{"username":"alice"}`, map[string]string{"id": "alice"}, "bob"))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	rr = serve(UpdateProfile(d), setupReq(http.MethodPut, "/", `{"username":"alice","bio":"hi"}`, map[string]string{"id": "alice"}, "alice"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = serve(ToggleFollow(d), setupReq(http.MethodPost, "/", "", map[string]string{"target_id": "alice"}, "bob"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	rr = serve(ToggleFollow(d), setupReq(http.MethodPost, "/", "", map[string]string{"target_id": "bob"}, "bob"))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for self follow, got %d", rr.Code)
	}

	rr = serve(GetProfile(d), setupReq(http.MethodGet, "/", "", map[string]string{"id": "alice"}, ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var p profileView
	if err := json.NewDecoder(rr.Body).Decode(&p); err != nil {
		t.Fatal(err)
	}
	if p.Username != "alice" || len(p.Followers) != 1 || p.Followers[0] != "bob" {
		t.Fatalf("unexpected profile %+v", p)
	}

	rr = serve(ListNotifications(d), setupReq(http.MethodGet, "/", "", nil, "alice"))
	var ns []domain.Notification
	if err := json.NewDecoder(rr.Body).Decode(&ns); err != nil {
		t.Fatal(err)
	}
	if len(ns) != 1 || ns[0].Type != domain.NotifyFollow {
		t.Fatalf("unexpected notifications %#v", ns)
	}
	rr = serve(MarkNotificationRead(d), setupReq(http.MethodPatch, "/", "", map[string]string{"id": ns[0].ID}, "bob"))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func signToken(t *testing.T, secret []byte, sub string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	s, err := tok.SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestRegister_Routes(t *testing.T) {
	d, _ := newDeps(t)
	secret := []byte("test-secret")
	r := chi.NewRouter()
	Register(r, d, auth.JWTVerifier{Secret: secret}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/questions", strings.NewReader(`{"title":"t","body":"b"}`))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/questions", strings.NewReader(`{"title":"t","body":"b"}`))
	req.Header.Set("Authorization", "Bearer "+signToken(t, secret, "user-a"))
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 with token, got %d: %s", rr.Code, rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/questions/search?text=t", nil)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected search route, got %d", rr.Code)
	}
	var found []questionView
	if err := json.NewDecoder(rr.Body).Decode(&found); err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 {
		t.Fatalf("expected one search hit, got %d", len(found))
	}
}
