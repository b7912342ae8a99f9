package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/campuspulse/moodmeter-service/internal/authz"
	"github.com/campuspulse/moodmeter-service/internal/http/response"
	"github.com/campuspulse/moodmeter-service/internal/repository"
	"github.com/campuspulse/moodmeter-service/internal/security"
)

type contextKey string

const ClaimsContextKey contextKey = "claims"

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

// AuthMiddleware requires a valid access token. Dashboards and dispatch sit
// behind it; check-in and redemption do not.
func AuthMiddleware(jwtMgr *security.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing access token", nil)
				return
			}
			claims, err := jwtMgr.ParseAccessToken(raw)
			if err != nil {
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid access token", nil)
				return
			}
			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthMiddleware attaches claims when a valid token is present and
// lets the request through anonymously otherwise. The check-in endpoint uses
// it so a signed-in student's identity can travel with the session.
func OptionalAuthMiddleware(jwtMgr *security.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw != "" {
				if claims, err := jwtMgr.ParseAccessToken(raw); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), ClaimsContextKey, claims))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole gates a route on the authenticated role being one of roles.
func RequireRole(roles ...authz.Role) func(http.Handler) http.Handler {
	allowed := make(map[authz.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok || !allowed[authz.Role(claims.Role)] {
				response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "insufficient role", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func ClaimsFromContext(ctx context.Context) (*security.Claims, bool) {
	c, ok := ctx.Value(ClaimsContextKey).(*security.Claims)
	return c, ok
}

// IdentityFromContext shapes the repository-level caller identity out of the
// request claims, defaulting to anonymous.
func IdentityFromContext(ctx context.Context) repository.Identity {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return repository.Anonymous()
	}
	role := authz.Role(claims.Role)
	if !authz.ValidRole(role) {
		return repository.Anonymous()
	}
	return repository.Identity{Email: claims.Subject, Role: role}
}
