// Package handlers exposes the qa service over HTTP under /v1.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/wisora/internal/platform/api"
	"github.com/example/wisora/internal/platform/auth"
	"github.com/example/wisora/internal/platform/httpserver"
	"github.com/example/wisora/internal/platform/ratelimit"
	"github.com/example/wisora/internal/platform/validate"
	"github.com/example/wisora/services/qa/internal/domain"
	"github.com/example/wisora/services/qa/internal/service"
)

const maxBodyBytes = 1 << 20

// Deps is what every handler closes over.
type Deps struct {
	Svc       *service.Service
	Validator *validate.Validator
	Log       *zap.Logger
}

func (d Deps) logger() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}

// Register mounts the /v1 routes. Writes require a user and go through the
// limiter when one is given.
func Register(r chi.Router, d Deps, verifier auth.JWTVerifier, limiter *ratelimit.Limiter) {
	if d.Validator == nil {
		d.Validator = validate.New()
	}
	requireUser := auth.RequireUser(verifier)
	optionalUser := auth.OptionalUser(verifier)

	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(optionalUser)

			r.Get("/questions", ListQuestions(d))
			r.Get("/questions/search", SearchQuestions(d))
			r.Get("/questions/user/{user_id}", UserQuestions(d))
			r.Get("/questions/{id}", GetQuestion(d))

			r.Get("/answers/question/{question_id}", QuestionAnswers(d))
			r.Get("/answers/user/{user_id}", UserAnswers(d))

			r.Get("/comments/{id}", GetThread(d))

			r.Get("/likes/{target_id}", ReactionStatus(d))

			r.Get("/users/{id}", GetProfile(d))
			r.Get("/topics", ListTopics(d))
		})

		r.Group(func(r chi.Router) {
			r.Use(requireUser)

			r.Get("/notifications", ListNotifications(d))
			r.Get("/groups/me", MyGroups(d))
			r.Get("/groups/public", PublicGroups(d))
			r.Get("/groups/{id}", GetGroup(d))

			r.Group(func(r chi.Router) {
				if limiter != nil {
					r.Use(limiter.Middleware)
				}

				r.Post("/questions", CreateQuestion(d))
				r.Delete("/questions/{id}", DeleteQuestion(d))

				r.Post("/answers/{id}", CreateAnswer(d))
				r.Put("/answers/{id}", UpdateAnswer(d))
				r.Delete("/answers/{id}", DeleteAnswer(d))

				r.Post("/comments/answer/{answer_id}", CreateComment(d, domain.ParentAnswer, "answer_id"))
				r.Post("/comments/comment/{comment_id}", CreateComment(d, domain.ParentComment, "comment_id"))
				r.Put("/comments/{id}", UpdateComment(d))
				r.Delete("/comments/{id}", DeleteComment(d))

				r.Post("/likes/toggle", ToggleReaction(d))

				r.Patch("/notifications/read-all", MarkAllNotificationsRead(d))
				r.Patch("/notifications/read/{id}", MarkNotificationRead(d))

				r.Post("/groups", CreateGroup(d))
				r.Post("/groups/{id}/join", JoinGroup(d))
				r.Post("/groups/{id}/members/{user_id}", AddGroupMember(d))
				r.Delete("/groups/{id}/members/{user_id}", RemoveGroupMember(d))

				r.Put("/users/{id}", UpdateProfile(d))
				r.Post("/users/follow/{target_id}", ToggleFollow(d))

				r.Post("/topics", CreateTopic(d))
			})
		})
	})
}

func requestID(r *http.Request) string {
	return httpserver.RequestIDFromContext(r.Context())
}

// actor returns the authenticated user or writes a 401.
func actor(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		api.Unauthorized(w, "UNAUTHORIZED", "authentication required", requestID(r))
		return "", false
	}
	return userID, true
}

func pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v := strings.TrimSpace(chi.URLParam(r, name))
	if v == "" {
		api.BadRequest(w, "MISSING_ID", name+" is required", requestID(r), nil)
		return "", false
	}
	return v, true
}

// decode reads a JSON body into dst and validates it.
func (d Deps) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		api.BadRequest(w, "INVALID_JSON", "invalid JSON", requestID(r), nil)
		return false
	}
	if err := d.Validator.Struct(dst); err != nil {
		var fields validate.Errors
		if errors.As(err, &fields) {
			api.ValidationFailed(w, requestID(r), fields)
			return false
		}
		d.logger().Error("validate request", zap.Error(err))
		api.Internal(w, requestID(r))
		return false
	}
	return true
}

// fail maps a service error onto the HTTP error envelope.
func (d Deps) fail(w http.ResponseWriter, r *http.Request, err error) {
	rid := requestID(r)
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		api.ValidationFailed(w, rid, fieldErrors(ve))
	case errors.Is(err, domain.ErrValidation):
		api.ValidationFailed(w, rid, validate.Errors{})
	case errors.Is(err, domain.ErrNotFound):
		api.NotFound(w, "NOT_FOUND", "resource not found", rid)
	case errors.Is(err, domain.ErrUnauthorized):
		api.Forbidden(w, "FORBIDDEN", "not allowed", rid)
	case errors.Is(err, domain.ErrConflict):
		api.Conflict(w, "CONFLICT", "resource already exists", rid, nil)
	default:
		d.logger().Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", rid),
			zap.Error(err),
		)
		api.Internal(w, rid)
	}
}

func fieldErrors(ve *domain.ValidationError) validate.Errors {
	out := make(validate.Errors, 0, len(ve.Fields))
	for f, msg := range ve.Fields {
		out = append(out, validate.FieldError{Field: f, Message: msg})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}
