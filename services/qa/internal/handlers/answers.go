package handlers

import (
	"net/http"

	"github.com/example/wisora/internal/platform/api"
	"github.com/example/wisora/internal/platform/auth"
)

type textRequest struct {
	Text string `json:"text" validate:"notblank,max=10000"`
}

// CreateAnswer handles POST /v1/answers/{id}, where id is the question.
func CreateAnswer(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := actor(w, r)
		if !ok {
			return
		}
		questionID, ok := pathParam(w, r, "id")
		if !ok {
			return
		}
		var req textRequest
		if !d.decode(w, r, &req) {
			return
		}
		a, err := d.Svc.CreateAnswer(r.Context(), userID, questionID, req.Text)
		if err != nil {
			d.fail(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusCreated, a)
	}
}

// QuestionAnswers handles GET /v1/answers/question/{question_id}
func QuestionAnswers(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questionID, ok := pathParam(w, r, "question_id")
		if !ok {
			return
		}
		viewer, _ := auth.UserIDFromContext(r.Context())
		as, err := d.Svc.QuestionAnswers(r.Context(), viewer, questionID)
		if err != nil {
			d.fail(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, as)
	}
}

// UserAnswers handles GET /v1/answers/user/{user_id}
func UserAnswers(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := pathParam(w, r, "user_id")
		if !ok {
			return
		}
		as, err := d.Svc.UserAnswers(r.Context(), userID)
		if err != nil {
			d.fail(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, as)
	}
}

// UpdateAnswer handles PUT /v1/answers/{id}
func UpdateAnswer(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := actor(w, r)
		if !ok {
			return
		}
		id, ok := pathParam(w, r, "id")
		if !ok {
			return
		}
		var req textRequest
		if !d.decode(w, r, &req) {
			return
		}
		a, err := d.Svc.UpdateAnswer(r.Context(), userID, id, req.Text)
		if err != nil {
			d.fail(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, a)
	}
}

// DeleteAnswer handles DELETE /v1/answers/{id}
func DeleteAnswer(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := actor(w, r)
		if !ok {
			return
		}
		id, ok := pathParam(w, r, "id")
		if !ok {
			return
		}
		if err := d.Svc.DeleteAnswer(r.Context(), userID, id); err != nil {
			d.fail(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
