// Package audit records admin actions as structured audit events.
package audit

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-storefront/internal/common"
	"github.com/noah-isme/backend-storefront/internal/obs"
)

// Recorder emits one "audit" log event per audited request, after the handler ran.
// A nil Logger falls back to the request-scoped logger.
type Recorder struct {
	Logger *zerolog.Logger
}

// Action describes what a route does to which resource.
type Action struct {
	Name            string
	ResourceType    string
	ResourceIDParam string
}

// Middleware records a once the wrapped handler has written its response.
func (rec Recorder) Middleware(a Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sr := obs.NewStatusRecorder(w)
			next.ServeHTTP(sr, r)

			status := sr.Status()
			outcome := Outcome(status)
			obs.Observe(obs.AdminActionTotal, a.Name, outcome)

			logger := rec.Logger
			if logger == nil {
				logger = zerolog.Ctx(r.Context())
			}
			actor, _ := common.UserID(r.Context())
			ev := logger.Info().
				Str("event", "audit").
				Str("action", a.Name).
				Str("resource_type", a.ResourceType).
				Str("actor_id", actor).
				Int("status", status).
				Str("outcome", outcome).
				Str("ip", common.ClientIP(r))
			if a.ResourceIDParam != "" {
				ev = ev.Str("resource_id", chi.URLParam(r, a.ResourceIDParam))
			}
			if reqID := middleware.GetReqID(r.Context()); reqID != "" {
				ev = ev.Str("request_id", reqID)
			}
			ev.Msg("admin action")
		})
	}
}

// Outcome buckets an HTTP status into success, rejected or failed.
func Outcome(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "failed"
	case status >= http.StatusBadRequest:
		return "rejected"
	default:
		return "success"
	}
}
