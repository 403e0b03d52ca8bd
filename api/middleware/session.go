package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const sessionIDHeader = "X-Session-Id"

// CartSession resolves the cart session identifier. Clients send it back on
// every request; when missing one is minted and echoed in the response so the
// storefront can persist it.
func CartSession() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := strings.TrimSpace(r.Header.Get(sessionIDHeader))
			if sessionID == "" {
				sessionID = uuid.NewString()
			}

			w.Header().Set(sessionIDHeader, sessionID)

			ctx := WithSessionID(r.Context(), sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
