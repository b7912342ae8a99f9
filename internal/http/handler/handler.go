// Package handler maps the HTTP surface onto the service layer and the
// shared error taxonomy.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/campuspulse/moodmeter-service/internal/authz"
	"github.com/campuspulse/moodmeter-service/internal/http/response"
	"github.com/campuspulse/moodmeter-service/internal/repository"
	"github.com/campuspulse/moodmeter-service/internal/service"
)

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "malformed request body", nil)
		return false
	}
	return true
}

// writeServiceError translates sentinel errors into their wire codes. Every
// branch of the taxonomy gets its own code so clients can render specific
// messages.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if ve, ok := service.AsValidationError(err); ok {
		response.Error(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "invalid input", ve.Violations)
		return
	}
	switch {
	case errors.Is(err, repository.ErrTokenNotFoundOrExpired):
		response.Error(w, r, http.StatusNotFound, "TOKEN_NOT_FOUND_OR_EXPIRED", "token not found or expired", nil)
	case errors.Is(err, repository.ErrTokenAlreadyUsed):
		response.Error(w, r, http.StatusConflict, "TOKEN_ALREADY_USED", "token already used", nil)
	case errors.Is(err, repository.ErrNoConsent):
		response.Error(w, r, http.StatusForbidden, "NO_CONSENT", "no consent on record", nil)
	case errors.Is(err, repository.ErrUserAlreadyLinked):
		response.Error(w, r, http.StatusConflict, "USER_ALREADY_LINKED", "user already has a linked matricula", nil)
	case errors.Is(err, repository.ErrMatriculaTaken):
		response.Error(w, r, http.StatusConflict, "MATRICULA_TAKEN", "matricula already linked to another user", nil)
	case errors.Is(err, repository.ErrSessionNotFound):
		response.Error(w, r, http.StatusNotFound, "SESSION_NOT_FOUND", "session not found", nil)
	case errors.Is(err, authz.ErrForbidden):
		response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "operation not permitted", nil)
	default:
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}
