package handlers

import (
	"net/http"

	"github.com/example/wisora/internal/platform/api"
	"github.com/example/wisora/services/qa/internal/service"
)

type createGroupRequest struct {
	Name           string `json:"name" validate:"notblank,max=100"`
	Description    string `json:"description" validate:"max=1000"`
	ProfilePicture string `json:"profile_picture" validate:"omitempty,url"`
	CoverImage     string `json:"cover_image" validate:"omitempty,url"`
	IsPrivate      *bool  `json:"is_private,omitempty"`
}

// CreateGroup handles POST /v1/groups
func CreateGroup(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := actor(w, r)
		if !ok {
			return
		}
		var req createGroupRequest
		if !d.decode(w, r, &req) {
			return
		}
		g, err := d.Svc.CreateGroup(r.Context(), userID, service.NewGroup{
			Name:           req.Name,
			Description:    req.Description,
			ProfilePicture: req.ProfilePicture,
			CoverImage:     req.CoverImage,
			IsPrivate:      req.IsPrivate,
		})
		if err != nil {
			d.fail(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusCreated, g)
	}
}

// MyGroups handles GET /v1/groups/me
func MyGroups(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := actor(w, r)
		if !ok {
			return
		}
		gs, err := d.Svc.MyGroups(r.Context(), userID)
		if err != nil {
			d.fail(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, gs)
	}
}

// PublicGroups handles GET /v1/groups/public
func PublicGroups(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := actor(w, r)
		if !ok {
			return
		}
		gs, err := d.Svc.PublicGroups(r.Context(), userID)
		if err != nil {
			d.fail(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, gs)
	}
}

// GetGroup handles GET /v1/groups/{id}
func GetGroup(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := actor(w, r)
		if !ok {
			return
		}
		id, ok := pathParam(w, r, "id")
		if !ok {
			return
		}
		res, err := d.Svc.GetGroup(r.Context(), userID, id)
		if err != nil {
			d.fail(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, groupDetailView{Group: res.Group, Questions: questionViews(res.Questions)})
	}
}

// JoinGroup handles POST /v1/groups/{id}/join
func JoinGroup(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := actor(w, r)
		if !ok {
			return
		}
		id, ok := pathParam(w, r, "id")
		if !ok {
			return
		}
		g, err := d.Svc.JoinGroup(r.Context(), userID, id)
		if err != nil {
			d.fail(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, g)
	}
}

// AddGroupMember handles POST /v1/groups/{id}/members/{user_id}
func AddGroupMember(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := actor(w, r)
		if !ok {
			return
		}
		groupID, ok := pathParam(w, r, "id")
		if !ok {
			return
		}
		memberID, ok := pathParam(w, r, "user_id")
		if !ok {
			return
		}
		g, err := d.Svc.AddMember(r.Context(), userID, groupID, memberID)
		if err != nil {
			d.fail(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, g)
	}
}

// RemoveGroupMember handles DELETE /v1/groups/{id}/members/{user_id}
func RemoveGroupMember(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := actor(w, r)
		if !ok {
			return
		}
		groupID, ok := pathParam(w, r, "id")
		if !ok {
			return
		}
		memberID, ok := pathParam(w, r, "user_id")
		if !ok {
			return
		}
		g, err := d.Svc.RemoveMember(r.Context(), userID, groupID, memberID)
		if err != nil {
			d.fail(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, g)
	}
}
