package response

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func TestMetaIgnoresCallerSuppliedRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalogs/reasons", nil)
	req.Header.Set("X-Request-Id", "attacker-chosen")
	ctx := context.WithValue(req.Context(), chimiddleware.RequestIDKey, "srv-123")
	rec := httptest.NewRecorder()

	JSON(rec, req.WithContext(ctx), http.StatusOK, map[string]string{"ok": "yes"})

	var body envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success {
		t.Fatal("expected success envelope")
	}
	if body.Meta.RequestID != "srv-123" {
		t.Fatalf("request_id = %q, want srv-123", body.Meta.RequestID)
	}
}

func TestMetaFallsBackWhenNoMiddlewareRan(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("X-Request-Id", "attacker-chosen")
	rec := httptest.NewRecorder()

	Error(rec, req, http.StatusNotFound, "TOKEN_NOT_FOUND_OR_EXPIRED", "token not found or expired", nil)

	var body envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success {
		t.Fatal("expected error envelope")
	}
	if body.Error == nil || body.Error.Code != "TOKEN_NOT_FOUND_OR_EXPIRED" {
		t.Fatalf("error = %+v, want TOKEN_NOT_FOUND_OR_EXPIRED", body.Error)
	}
	if body.Meta.RequestID != "req-unknown" {
		t.Fatalf("request_id = %q, want req-unknown", body.Meta.RequestID)
	}
}
