package handlers

import (
	"net/http"

	"github.com/example/wisora/internal/platform/api"
	"github.com/example/wisora/services/qa/internal/domain"
)

// CreateComment handles POST /v1/comments/answer/{answer_id} and
// POST /v1/comments/comment/{comment_id}.
func CreateComment(d Deps, parentType domain.ParentType, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := actor(w, r)
		if !ok {
			return
		}
		parentID, ok := pathParam(w, r, param)
		if !ok {
			return
		}
		var req textRequest
		if !d.decode(w, r, &req) {
			return
		}
		c, err := d.Svc.CreateComment(r.Context(), userID, parentType, parentID, req.Text)
		if err != nil {
			d.fail(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusCreated, c)
	}
}

// GetThread handles GET /v1/comments/{id}, where id is an answer or a comment.
func GetThread(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parentID, ok := pathParam(w, r, "id")
		if !ok {
			return
		}
		nodes, err := d.Svc.Thread(r.Context(), parentID)
		if err != nil {
			d.fail(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, threadView{Comments: nodes})
	}
}

// UpdateComment handles PUT /v1/comments/{id}
func UpdateComment(d Deps) http.HandlerFunc {
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
		c, err := d.Svc.UpdateComment(r.Context(), userID, id, req.Text)
		if err != nil {
			d.fail(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, c)
	}
}

// DeleteComment handles DELETE /v1/comments/{id}
func DeleteComment(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := actor(w, r)
		if !ok {
			return
		}
		id, ok := pathParam(w, r, "id")
		if !ok {
			return
		}
		if err := d.Svc.DeleteComment(r.Context(), userID, id); err != nil {
			d.fail(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
