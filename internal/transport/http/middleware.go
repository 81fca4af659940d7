package http

import (
	"net/http"
	"strings"

	"company-quiz-service/internal/auth"
)

// JWTMiddleware resolves the caller from a bearer token and stores the
// user id in the request context. With allowQuery the token may also be
// passed as ?access_token=.
func JWTMiddleware(a *auth.Service, allowQuery bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
				token = strings.TrimPrefix(h, "Bearer ")
			} else if allowQuery {
				token = r.URL.Query().Get("access_token")
			}
			if token == "" {
				writeJSON(w, http.StatusUnauthorized, errorBody{Detail: "missing bearer"})
				return
			}
			userID, err := a.Parse(token)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorBody{Detail: "bad token"})
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	}
}

func callerID(r *http.Request) int64 {
	id, _ := auth.UserIDFromContext(r.Context())
	return id
}
