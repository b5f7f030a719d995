package handlers

import (
	"net/http"

	"github.com/example/wisora/internal/platform/api"
	"github.com/example/wisora/internal/platform/auth"
	"github.com/example/wisora/services/qa/internal/domain"
)

type toggleLikeRequest struct {
	TargetID   string `json:"target_id" validate:"notblank"`
	TargetType string `json:"target_type" validate:"oneof=Question Answer Comment"`
}

// ToggleReaction handles POST /v1/likes/toggle. 201 when the like was
// added, 200 when it was removed.
func ToggleReaction(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := actor(w, r)
		if !ok {
			return
		}
		var req toggleLikeRequest
		if !d.decode(w, r, &req) {
			return
		}
		st, err := d.Svc.ToggleReaction(r.Context(), userID, req.TargetID, domain.TargetType(req.TargetType))
		if err != nil {
			d.fail(w, r, err)
			return
		}
		status := http.StatusOK
		if st.Active {
			status = http.StatusCreated
		}
		api.WriteJSON(w, status, reactionView{Liked: st.Active, Count: st.Count})
	}
}

// ReactionStatus handles GET /v1/likes/{target_id}?target_type=
func ReactionStatus(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		targetID, ok := pathParam(w, r, "target_id")
		if !ok {
			return
		}
		viewer, _ := auth.UserIDFromContext(r.Context())
		tt := domain.TargetType(r.URL.Query().Get("target_type"))
		st, err := d.Svc.ReactionStatus(r.Context(), viewer, targetID, tt)
		if err != nil {
			d.fail(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, reactionView{Liked: st.Active, Count: st.Count})
	}
}
