package middleware

import (
	"net/http"

	"github.com/campuspulse/moodmeter-service/internal/authz"
	"github.com/campuspulse/moodmeter-service/internal/http/response"
	"github.com/campuspulse/moodmeter-service/internal/security"
)

// CronKeyOrAdmin guards the dispatch trigger: either the scheduler's shared
// key (constant-time compared) or an authenticated admin gets through.
func CronKeyOrAdmin(cronKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if security.ConstantTimeEquals(r.Header.Get("X-Cron-Key"), cronKey) {
				next.ServeHTTP(w, r)
				return
			}
			claims, ok := ClaimsFromContext(r.Context())
			if ok && authz.Role(claims.Role) == authz.RoleAdmin {
				next.ServeHTTP(w, r)
				return
			}
			response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "cron key or admin role required", nil)
		})
	}
}
