package handlers

import (
	"net/http"

	"github.com/example/wisora/internal/platform/api"
)

// ListNotifications handles GET /v1/notifications
func ListNotifications(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := actor(w, r)
		if !ok {
			return
		}
		ns, err := d.Svc.Notifications(r.Context(), userID)
		if err != nil {
			d.fail(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, ns)
	}
}

// MarkNotificationRead handles PATCH /v1/notifications/read/{id}
func MarkNotificationRead(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := actor(w, r)
		if !ok {
			return
		}
		id, ok := pathParam(w, r, "id")
		if !ok {
			return
		}
		if err := d.Svc.MarkNotificationRead(r.Context(), userID, id); err != nil {
			d.fail(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// MarkAllNotificationsRead handles PATCH /v1/notifications/read-all
func MarkAllNotificationsRead(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := actor(w, r)
		if !ok {
			return
		}
		n, err := d.Svc.MarkAllNotificationsRead(r.Context(), userID)
		if err != nil {
			d.fail(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, markAllView{Updated: n})
	}
}
