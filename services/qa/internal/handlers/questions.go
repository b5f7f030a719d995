package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/example/wisora/internal/platform/api"
	"github.com/example/wisora/internal/platform/auth"
	"github.com/example/wisora/services/qa/internal/service"
)

type createQuestionRequest struct {
	Title   string   `json:"title" validate:"notblank,max=300"`
	Body    string   `json:"body" validate:"notblank,max=20000"`
	Images  []string `json:"images" validate:"max=10,dive,url"`
	Topics  []string `json:"topics" validate:"max=10,dive,max=50"`
	GroupID *string  `json:"group_id,omitempty"`
}

// CreateQuestion handles POST /v1/questions
func CreateQuestion(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := actor(w, r)
		if !ok {
			return
		}
		var req createQuestionRequest
		if !d.decode(w, r, &req) {
			return
		}
		in := service.NewQuestion{Title: req.Title, Body: req.Body, Images: req.Images, Topics: req.Topics}
		if req.GroupID != nil {
			in.GroupID = *req.GroupID
		}
		q, err := d.Svc.CreateQuestion(r.Context(), userID, in)
		if err != nil {
			d.fail(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusCreated, newQuestionView(q, 0))
	}
}

// ListQuestions handles GET /v1/questions?page=&limit=
func ListQuestions(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := queryInt(r, "page")
		limit := queryInt(r, "limit")
		res, err := d.Svc.ListQuestions(r.Context(), page, limit)
		if err != nil {
			d.fail(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, questionPageView{
			Questions:  questionViews(res.Questions),
			Page:       res.Page,
			TotalPages: res.TotalPages,
			Total:      res.Total,
		})
	}
}

// SearchQuestions handles GET /v1/questions/search?text=&tag=
func SearchQuestions(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		res, err := d.Svc.SearchQuestions(r.Context(), q.Get("text"), q.Get("tag"))
		if err != nil {
			d.fail(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, questionViews(res))
	}
}

// UserQuestions handles GET /v1/questions/user/{user_id}
func UserQuestions(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := pathParam(w, r, "user_id")
		if !ok {
			return
		}
		res, err := d.Svc.UserQuestions(r.Context(), userID)
		if err != nil {
			d.fail(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, questionViews(res))
	}
}

// GetQuestion handles GET /v1/questions/{id}
func GetQuestion(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathParam(w, r, "id")
		if !ok {
			return
		}
		viewer, _ := auth.UserIDFromContext(r.Context())
		res, err := d.Svc.GetQuestion(r.Context(), viewer, id)
		if err != nil {
			d.fail(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, newQuestionView(res.Question, res.AnswerCount))
	}
}

// DeleteQuestion handles DELETE /v1/questions/{id}
func DeleteQuestion(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := actor(w, r)
		if !ok {
			return
		}
		id, ok := pathParam(w, r, "id")
		if !ok {
			return
		}
		if err := d.Svc.DeleteQuestion(r.Context(), userID, id); err != nil {
			d.fail(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// queryInt returns 0 for a missing or malformed value.
func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get(key)))
	if err != nil {
		return 0
	}
	return n
}
