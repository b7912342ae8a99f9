package handler

import (
	"net/http"

	"github.com/campuspulse/moodmeter-service/internal/http/middleware"
	"github.com/campuspulse/moodmeter-service/internal/http/response"
	"github.com/campuspulse/moodmeter-service/internal/repository"
)

// CatalogHandler serves the lookup tables the check-in form and the
// dashboard filters render from.
type CatalogHandler struct {
	catalogs repository.CatalogRepository
}

func NewCatalogHandler(catalogs repository.CatalogRepository) *CatalogHandler {
	return &CatalogHandler{catalogs: catalogs}
}

func (h *CatalogHandler) Communities(w http.ResponseWriter, r *http.Request) {
	out, err := h.catalogs.Communities(r.Context(), middleware.IdentityFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, out)
}

func (h *CatalogHandler) Mentors(w http.ResponseWriter, r *http.Request) {
	out, err := h.catalogs.Mentors(r.Context(), middleware.IdentityFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, out)
}

func (h *CatalogHandler) Reasons(w http.ResponseWriter, r *http.Request) {
	out, err := h.catalogs.Reasons(r.Context(), middleware.IdentityFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, out)
}
