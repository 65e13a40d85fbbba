package middleware

import (
	"io"
	"net/http"
)

// drainLimit caps how much of an unread request body gets discarded after
// the handler ran; anything bigger is not worth keeping the connection for.
const drainLimit = 1 << 20

// DrainAndCloseRequest finishes off the request body once the handler is
// done: leftover bytes are discarded and the body closed, so the keep-alive
// connection can be reused.
func DrainAndCloseRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			if r.Body == nil {
				return
			}
			_, _ = io.CopyN(io.Discard, r.Body, drainLimit)
			_ = r.Body.Close()
		})
	}
}
