package handler

import (
	"net/http"

	"github.com/campuspulse/moodmeter-service/internal/http/middleware"
	"github.com/campuspulse/moodmeter-service/internal/http/response"
	"github.com/campuspulse/moodmeter-service/internal/observability"
	"github.com/campuspulse/moodmeter-service/internal/service"
)

type LinkHandler struct {
	links *service.LinkService
}

func NewLinkHandler(links *service.LinkService) *LinkHandler {
	return &LinkHandler{links: links}
}

type linkRequest struct {
	Matricula string `json:"matricula"`
}

// Link binds the authenticated subject to a matricula. Requires auth; the
// subject comes from the token, never the payload.
func (h *LinkHandler) Link(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing access token", nil)
		return
	}
	var in linkRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	id := middleware.IdentityFromContext(r.Context())
	if err := h.links.Link(r.Context(), id, claims.Subject, in.Matricula); err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.Audit(r, "link.created")
	response.JSON(w, r, http.StatusCreated, map[string]bool{"linked": true})
}

func (h *LinkHandler) Status(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing access token", nil)
		return
	}
	linked, err := h.links.Linked(r.Context(), middleware.IdentityFromContext(r.Context()), claims.Subject)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]bool{"linked": linked})
}
