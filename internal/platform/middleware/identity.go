package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"pulse/pkg/requestcontext"
)

// UserResolver reports whether a user id exists. The identity service
// implements it; the interface lives here so the middleware does not depend on
// the identity package.
type UserResolver interface {
	Exists(ctx context.Context, userID string) (bool, error)
}

// RequireUser is the identity boundary for API routes. Authentication proper
// (sessions, login) is outside this system; callers identify themselves with
// the X-User-ID header and this interceptor verifies the id resolves to a real
// user before injecting it into the request context.
func RequireUser(users UserResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			userID := r.Header.Get("X-User-ID")
			if userID == "" {
				unauthorized(w, "missing X-User-ID header")
				return
			}

			ok, err := users.Exists(ctx, userID)
			if err != nil {
				logger.ErrorContext(ctx, "failed to resolve user",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"internal","message":"internal error"}`))
				return
			}
			if !ok {
				unauthorized(w, "unknown user")
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithUserID(ctx, userID)))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","message":"` + message + `"}`))
}
