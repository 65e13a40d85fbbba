package middleware

import (
	"net/http"

	"github.com/fitsphere/fitsphere/internal/auth"
	"github.com/fitsphere/fitsphere/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/codes"
)

// CallerContext reads the gateway-supplied identity headers and stores the
// caller in the request context. Requests without an identity are rejected,
// except OPTIONS preflights.
func CallerContext() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.caller")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, PUT, DELETE, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			// health probes carry no identity
			if r.URL.Path == "/ping" {
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			userID := r.Header.Get(auth.UserIDHeader)
			if userID == "" {
				span.SetStatus(codes.Error, "no-caller")
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			role := r.Header.Get(auth.RoleHeader)
			if role == "" {
				role = auth.RoleUser
			}

			ctx = auth.ContextWithCaller(ctx, auth.Caller{
				UserID: userID,
				Role:   role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly guards the maintenance-job control surface.
func AdminOnly() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, err := auth.CallerFromContext(r.Context())
			if err != nil || !caller.IsAdmin() {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
