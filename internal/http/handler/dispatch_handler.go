package handler

import (
	"net/http"
	"time"

	"github.com/campuspulse/moodmeter-service/internal/authz"
	"github.com/campuspulse/moodmeter-service/internal/http/middleware"
	"github.com/campuspulse/moodmeter-service/internal/http/response"
	"github.com/campuspulse/moodmeter-service/internal/observability"
	"github.com/campuspulse/moodmeter-service/internal/repository"
	"github.com/campuspulse/moodmeter-service/internal/service"
)

type DispatchHandler struct {
	dispatcher *service.DispatchService
}

func NewDispatchHandler(dispatcher *service.DispatchService) *DispatchHandler {
	return &DispatchHandler{dispatcher: dispatcher}
}

// Run triggers one dispatch pass. The route sits behind the cron-key-or-admin
// guard; a scheduler call carries no claims, so it runs under a synthetic
// admin identity.
func (h *DispatchHandler) Run(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromContext(r.Context())
	if id.Role != authz.RoleAdmin {
		id = repository.Identity{Email: "scheduler", Role: authz.RoleAdmin}
	}
	report, err := h.dispatcher.Run(r.Context(), id, time.Now().UTC())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.Audit(r, "dispatch.run",
		"attempted", report.Attempted,
		"sent", report.Sent,
		"failed", report.Failed,
	)
	response.JSON(w, r, http.StatusOK, report)
}
