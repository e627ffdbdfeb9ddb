package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/tilekeeper/internal/api/apierr"
	"github.com/mcoot/tilekeeper/internal/model"
)

// KeyChecker verifies a table key against the game it claims to unlock
type KeyChecker interface {
	Authorize(ctx context.Context, id model.GameID, key string) error
}

// TableKey creates middleware requiring the game's table key as a bearer
// token. The route must carry an {id} variable.
func TableKey(checker KeyChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := extractToken(r)
			if key == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			if err := checker.Authorize(r.Context(), model.GameID(mux.Vars(r)["id"]), key); err != nil {
				apierr.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractToken extracts the table key from the Authorization header
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}
