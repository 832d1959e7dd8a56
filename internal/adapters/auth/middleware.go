package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/okian/leadsplit/internal/domain/model"
)

const bearerPrefix = "Bearer "

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func deny(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Code: code, Message: msg})
}

// Authenticate rejects requests without a valid bearer token and stores the
// claims in the request context.
func Authenticate(iss *Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, bearerPrefix) {
				deny(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}
			claims, err := iss.Parse(strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)))
			if err != nil {
				deny(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// AdminOnly lets through only requests authenticated with the admin role.
// It must run after Authenticate.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := FromContext(r.Context())
		if !ok {
			deny(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		if claims.Role != model.RoleAdmin {
			deny(w, http.StatusForbidden, "forbidden", "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
