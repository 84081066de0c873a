package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/LondonVandervort/PrivacyDating/internal/server/auth"
)

type contextKey string

const (
	principalKey contextKey = "principal"
	adminKey     contextKey = "admin"
)

// PrincipalFromContext returns the authenticated caller, "" when absent.
func PrincipalFromContext(ctx context.Context) string {
	p, _ := ctx.Value(principalKey).(string)
	return p
}

// IsAdmin reports whether the caller's token carries the admin claim.
func IsAdmin(ctx context.Context) bool {
	a, _ := ctx.Value(adminKey).(bool)
	return a
}

// authenticate resolves the Bearer token into a principal and stores it in
// the request context. Requests without a valid token get 401.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenStr == "" {
			h.error(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := auth.ParseToken(tokenStr, h.secret)
		if err != nil {
			h.error(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), principalKey, claims.Principal)
		ctx = context.WithValue(ctx, adminKey, claims.Admin)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin gates moderation and internal routes.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAdmin(r.Context()) {
			h.error(w, http.StatusForbidden, "admin token required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
