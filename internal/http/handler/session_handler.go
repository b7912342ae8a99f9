package handler

import (
	"net/http"

	"github.com/campuspulse/moodmeter-service/internal/http/middleware"
	"github.com/campuspulse/moodmeter-service/internal/http/response"
	"github.com/campuspulse/moodmeter-service/internal/observability"
	"github.com/campuspulse/moodmeter-service/internal/service"
)

type SessionHandler struct {
	sessions *service.SessionService
}

func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Create is the check-in endpoint. It works anonymously; when a valid access
// token rode along, the SSO subject is attached so the session can be
// attributed through the user link.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.CreateSessionInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		subject := claims.Subject
		in.UserID = &subject
		if in.Email == nil {
			in.Email = &subject
		}
	}
	res, err := h.sessions.Create(r.Context(), middleware.IdentityFromContext(r.Context()), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.Audit(r, "session.created", "session_id", res.SessionID, "token_minted", res.Token != nil)
	response.JSON(w, r, http.StatusCreated, res)
}

type classifyRequest struct {
	Valence int `json:"valence"`
	Energy  int `json:"energy"`
}

type classifyResponse struct {
	Quadrant string `json:"quadrant"`
	Label    string `json:"label"`
}

// Classify backs the interactive mood meter: a point on the plane comes in,
// a quadrant and a suggested label go out. No writes.
func (h *SessionHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var in classifyRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	quadrant, label, err := h.sessions.Classify(in.Valence, in.Energy)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, classifyResponse{Quadrant: quadrant, Label: label})
}
