package auth

import (
	"net/http"
	"strings"

	"vntrips/pkg/logger"
)

// Middleware resolves the Authorization header into a Caller on the request
// context. Requests without a token proceed as guests; route handlers decide
// whether a guest may perform the operation.
func Middleware(secret string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), Guest())))
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), Guest())))
				return
			}

			caller, err := Verify(secret, token)
			if err != nil {
				log.Warn("Rejected bearer token",
					"path", r.URL.Path,
					"error", err,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"message":"Invalid or expired token","code":"UNAUTHORIZED"}`))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
		})
	}
}
