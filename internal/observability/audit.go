package observability

import (
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Audit emits one structured audit event for a state-changing request.
// Callers pass only pseudonymous attributes (session ids, hashed
// identifiers, counts); raw matriculas and emails never reach the log. The
// request id comes from chi's context, not from headers a caller controls.
func Audit(r *http.Request, event string, attrs ...any) {
	base := []any{
		"event", event,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", chimiddleware.GetReqID(r.Context()),
	}
	base = append(base, attrs...)
	slog.InfoContext(r.Context(), "audit", base...)
}
