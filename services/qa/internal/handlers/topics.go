package handlers

import (
	"net/http"

	"github.com/example/wisora/internal/platform/api"
)

type createTopicRequest struct {
	Name string `json:"name" validate:"notblank,max=50"`
}

// CreateTopic handles POST /v1/topics
func CreateTopic(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := actor(w, r); !ok {
			return
		}
		var req createTopicRequest
		if !d.decode(w, r, &req) {
			return
		}
		t, err := d.Svc.CreateTopic(r.Context(), req.Name)
		if err != nil {
			d.fail(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusCreated, t)
	}
}

// ListTopics handles GET /v1/topics
func ListTopics(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ts, err := d.Svc.ListTopics(r.Context())
		if err != nil {
			d.fail(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, ts)
	}
}
