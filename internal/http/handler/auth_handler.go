package handler

import (
	"net/http"
	"time"

	"github.com/campuspulse/moodmeter-service/internal/http/response"
	"github.com/campuspulse/moodmeter-service/internal/observability"
	"github.com/campuspulse/moodmeter-service/internal/security"
	"github.com/campuspulse/moodmeter-service/internal/service"
)

// AuthHandler exchanges an upstream-verified identity for an access token.
// Authentication lives at the SSO gateway in front of this service; the
// gateway forwards the verified address in X-Auth-Email, and this endpoint
// only classifies it into a role.
type AuthHandler struct {
	roles  *service.RoleService
	jwtMgr *security.JWTManager
	ttl    time.Duration
}

func NewAuthHandler(roles *service.RoleService, jwtMgr *security.JWTManager, ttl time.Duration) *AuthHandler {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &AuthHandler{roles: roles, jwtMgr: jwtMgr, ttl: ttl}
}

type exchangeResponse struct {
	AccessToken string  `json:"access_token"`
	Role        string  `json:"role"`
	MentorID    *string `json:"mentor_id,omitempty"`
	ExpiresIn   int     `json:"expires_in"`
}

func (h *AuthHandler) Exchange(w http.ResponseWriter, r *http.Request) {
	email := r.Header.Get("X-Auth-Email")
	if email == "" {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing verified identity", nil)
		return
	}
	res, err := h.roles.Resolve(r.Context(), email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	// Students resolve to the anonymous role; their token still identifies
	// the subject for the matricula link flow. Dashboard routes gate on role
	// separately.
	mentorID := ""
	if res.MentorID != nil {
		mentorID = *res.MentorID
	}
	token, err := h.jwtMgr.SignAccessToken(email, string(res.Role), mentorID, h.ttl)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.Audit(r, "auth.exchanged", "role", string(res.Role))
	response.JSON(w, r, http.StatusOK, exchangeResponse{
		AccessToken: token,
		Role:        string(res.Role),
		MentorID:    res.MentorID,
		ExpiresIn:   int(h.ttl.Seconds()),
	})
}
