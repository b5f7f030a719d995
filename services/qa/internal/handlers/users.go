package handlers

import (
	"net/http"

	"github.com/example/wisora/internal/platform/api"
	"github.com/example/wisora/services/qa/internal/service"
)

type updateProfileRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=3,max=30"`
	Bio      *string `json:"bio,omitempty" validate:"omitempty,max=500"`
}

// GetProfile handles GET /v1/users/{id}
func GetProfile(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathParam(w, r, "id")
		if !ok {
			return
		}
		p, err := d.Svc.GetProfile(r.Context(), id)
		if err != nil {
			d.fail(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, profileView{
			User:           p.User,
			Followers:      p.Followers,
			Following:      p.Following,
			QuestionsCount: p.QuestionsCount,
			AnswersCount:   p.AnswersCount,
		})
	}
}

// UpdateProfile handles PUT /v1/users/{id}
func UpdateProfile(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := actor(w, r)
		if !ok {
			return
		}
		id, ok := pathParam(w, r, "id")
		if !ok {
			return
		}
		var req updateProfileRequest
		if !d.decode(w, r, &req) {
			return
		}
		u, err := d.Svc.UpdateProfile(r.Context(), userID, id, service.ProfileUpdate{Username: req.Username, Bio: req.Bio})
		if err != nil {
			d.fail(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, u)
	}
}

// ToggleFollow handles POST /v1/users/follow/{target_id}
func ToggleFollow(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := actor(w, r)
		if !ok {
			return
		}
		targetID, ok := pathParam(w, r, "target_id")
		if !ok {
			return
		}
		following, err := d.Svc.ToggleFollow(r.Context(), userID, targetID)
		if err != nil {
			d.fail(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, followView{Following: following})
	}
}
