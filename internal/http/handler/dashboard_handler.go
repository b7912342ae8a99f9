package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/campuspulse/moodmeter-service/internal/authz"
	"github.com/campuspulse/moodmeter-service/internal/http/middleware"
	"github.com/campuspulse/moodmeter-service/internal/http/response"
	"github.com/campuspulse/moodmeter-service/internal/repository"
	"github.com/campuspulse/moodmeter-service/internal/service"
)

type DashboardHandler struct {
	kpis *service.KPIService
}

func NewDashboardHandler(kpis *service.KPIService) *DashboardHandler {
	return &DashboardHandler{kpis: kpis}
}

// Dashboard serves the KPI payload. Admins may filter by any mentor; a
// mentor is always pinned to their own sessions regardless of the query.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	claims, _ := middleware.ClaimsFromContext(r.Context())
	if claims != nil && authz.Role(claims.Role) == authz.RoleMentor {
		if claims.MentorID == "" {
			response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "mentor claim missing mentor id", nil)
			return
		}
		mentorID := claims.MentorID
		filter.MentorID = &mentorID
	}

	dash, err := h.kpis.Dashboard(r.Context(), middleware.IdentityFromContext(r.Context()), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, dash)
}

func parseFilter(r *http.Request) (repository.Filter, error) {
	var f repository.Filter
	q := r.URL.Query()
	if raw := q.Get("community_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return f, errInvalidParam("community_id")
		}
		v := uint(id)
		f.CommunityID = &v
	}
	if raw := q.Get("mentor_id"); raw != "" {
		v := raw
		f.MentorID = &v
	}
	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return f, errInvalidParam("from")
		}
		f.StartDate = &t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return f, errInvalidParam("to")
		}
		// Exclusive upper bound one day past the named date.
		end := t.AddDate(0, 0, 1)
		f.EndDate = &end
	}
	return f, nil
}

type paramError string

func (e paramError) Error() string { return "invalid query parameter: " + string(e) }

func errInvalidParam(name string) error { return paramError(name) }
