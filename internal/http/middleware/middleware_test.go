package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/campuspulse/moodmeter-service/internal/authz"
	"github.com/campuspulse/moodmeter-service/internal/security"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func get(h http.Handler, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestSecurityHeaders(t *testing.T) {
	rr := get(SecurityHeaders(okHandler()), nil)
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("missing nosniff header")
	}
	if rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatal("missing frame options header")
	}
}

func TestRateLimiterDeniesOverLimit(t *testing.T) {
	h := NewRateLimiter(2, time.Minute).Middleware()(okHandler())

	for i := 0; i < 2; i++ {
		if rr := get(h, nil); rr.Code != http.StatusOK {
			t.Fatalf("request %d = %d", i, rr.Code)
		}
	}
	rr := get(h, nil)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("code = %d, want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After")
	}
}

func TestRateLimiterKeysByClientIP(t *testing.T) {
	h := NewRateLimiter(1, time.Minute).Middleware()(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "10.0.0.1:1111"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("first client = %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "10.0.0.2:1111"
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("second client = %d, must not share the window", rr.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	jwtMgr := security.NewJWTManager("iss", "aud", "abcdefghijklmnopqrstuvwxyz123456")
	var seen *security.Claims
	h := AuthMiddleware(jwtMgr)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	if rr := get(h, nil); rr.Code != http.StatusUnauthorized {
		t.Fatalf("no token = %d, want 401", rr.Code)
	}
	if rr := get(h, map[string]string{"Authorization": "Bearer garbage"}); rr.Code != http.StatusUnauthorized {
		t.Fatalf("bad token = %d, want 401", rr.Code)
	}

	token, err := jwtMgr.SignAccessToken("ana@example.edu", "mentor", "m-1", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if rr := get(h, map[string]string{"Authorization": "Bearer " + token}); rr.Code != http.StatusOK {
		t.Fatalf("valid token = %d", rr.Code)
	}
	if seen == nil || seen.Role != "mentor" || seen.MentorID != "m-1" {
		t.Fatalf("claims = %+v", seen)
	}
}

func TestOptionalAuthPassesAnonymous(t *testing.T) {
	jwtMgr := security.NewJWTManager("iss", "aud", "abcdefghijklmnopqrstuvwxyz123456")
	h := OptionalAuthMiddleware(jwtMgr)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := IdentityFromContext(r.Context())
		if id.Role != authz.RoleAnonymous {
			t.Fatalf("role = %s, want anonymous", id.Role)
		}
		w.WriteHeader(http.StatusOK)
	}))

	if rr := get(h, nil); rr.Code != http.StatusOK {
		t.Fatalf("bare request = %d", rr.Code)
	}
	// An invalid token degrades to anonymous instead of failing.
	if rr := get(h, map[string]string{"Authorization": "Bearer junk"}); rr.Code != http.StatusOK {
		t.Fatalf("junk token = %d", rr.Code)
	}
}

func TestRequireRole(t *testing.T) {
	jwtMgr := security.NewJWTManager("iss", "aud", "abcdefghijklmnopqrstuvwxyz123456")
	h := AuthMiddleware(jwtMgr)(RequireRole(authz.RoleAdmin)(okHandler()))

	mentor, err := jwtMgr.SignAccessToken("ana@example.edu", "mentor", "m-1", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if rr := get(h, map[string]string{"Authorization": "Bearer " + mentor}); rr.Code != http.StatusForbidden {
		t.Fatalf("mentor on admin route = %d, want 403", rr.Code)
	}
}

func TestCronKeyOrAdmin(t *testing.T) {
	h := CronKeyOrAdmin("secret-key")(okHandler())

	if rr := get(h, nil); rr.Code != http.StatusForbidden {
		t.Fatalf("no key = %d, want 403", rr.Code)
	}
	if rr := get(h, map[string]string{"X-Cron-Key": "wrong"}); rr.Code != http.StatusForbidden {
		t.Fatalf("wrong key = %d, want 403", rr.Code)
	}
	if rr := get(h, map[string]string{"X-Cron-Key": "secret-key"}); rr.Code != http.StatusOK {
		t.Fatalf("right key = %d", rr.Code)
	}
}
