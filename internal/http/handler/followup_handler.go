package handler

import (
	"net/http"

	"github.com/campuspulse/moodmeter-service/internal/http/middleware"
	"github.com/campuspulse/moodmeter-service/internal/http/response"
	"github.com/campuspulse/moodmeter-service/internal/observability"
	"github.com/campuspulse/moodmeter-service/internal/service"
)

type FollowupHandler struct {
	followups *service.FollowupService
}

func NewFollowupHandler(followups *service.FollowupService) *FollowupHandler {
	return &FollowupHandler{followups: followups}
}

// Redeem consumes a follow-up token together with the "after" mood report.
// Anonymous by design: the token itself is the credential.
func (h *FollowupHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	var in service.RedeemInput
	if !decodeJSON(w, r, &in) {
		return
	}
	res, err := h.followups.Redeem(r.Context(), middleware.IdentityFromContext(r.Context()), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.Audit(r, "followup.redeemed", "session_id", res.SessionID)
	response.JSON(w, r, http.StatusOK, res)
}
