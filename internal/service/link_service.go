package service

import (
	"context"
	"errors"
	"strings"

	"github.com/campuspulse/moodmeter-service/internal/config"
	"github.com/campuspulse/moodmeter-service/internal/repository"
	"github.com/campuspulse/moodmeter-service/internal/security"

	"gorm.io/gorm"
)

// LinkService binds an SSO user to a matricula hash so later check-ins can
// be attributed without ever storing the raw matricula.
type LinkService struct {
	cfg   *config.Config
	links repository.UserLinkRepository
}

func NewLinkService(cfg *config.Config, links repository.UserLinkRepository) *LinkService {
	return &LinkService{cfg: cfg, links: links}
}

func (s *LinkService) Link(ctx context.Context, id repository.Identity, userID, matricula string) error {
	var violations []FieldViolation
	if strings.TrimSpace(userID) == "" {
		violations = append(violations, FieldViolation{Field: "user_id", Constraint: "required"})
	}
	if !matriculaPattern.MatchString(matricula) {
		violations = append(violations, FieldViolation{Field: "matricula", Constraint: "must match A followed by 8 or 9 digits"})
	}
	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	hash := security.HashIdentifier(strings.ToUpper(matricula), s.cfg.HashSalt)
	return s.links.Link(ctx, id, userID, hash)
}

func (s *LinkService) Linked(ctx context.Context, id repository.Identity, userID string) (bool, error) {
	_, err := s.links.FindByUser(ctx, id, userID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}
