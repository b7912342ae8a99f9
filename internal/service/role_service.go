package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/campuspulse/moodmeter-service/internal/authz"
	"github.com/campuspulse/moodmeter-service/internal/config"
	"github.com/campuspulse/moodmeter-service/internal/repository"
)

const (
	roleCacheNamespace = "role"
	roleCacheTTL       = 5 * time.Minute
)

// Resolution is an email's resolved standing: a role plus, for mentors, the
// mentors-table row id the dashboards filter by.
type Resolution struct {
	Role     authz.Role
	MentorID *string
}

// RoleService maps an authenticated email to a role. Authentication itself
// happens upstream; this only classifies an already-verified email against
// the admin list and the mentors catalog. Results are cached briefly so
// every request does not hit the mentors table.
type RoleService struct {
	cfg      *config.Config
	catalogs repository.CatalogRepository
	cache    ValueCacheStore
	logger   *slog.Logger
}

func NewRoleService(cfg *config.Config, catalogs repository.CatalogRepository, cache ValueCacheStore, logger *slog.Logger) *RoleService {
	if cache == nil {
		cache = NewNoopValueCacheStore()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RoleService{cfg: cfg, catalogs: catalogs, cache: cache, logger: logger}
}

// Resolve classifies email. An empty email is anonymous; so is any email
// that is neither on the admin list nor in the mentors table.
func (s *RoleService) Resolve(ctx context.Context, email string) (Resolution, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return Resolution{Role: authz.RoleAnonymous}, nil
	}

	if cached, ok, err := s.cache.Get(ctx, roleCacheNamespace, email); err != nil {
		s.logger.Warn("role cache read failed", "error", err)
	} else if ok {
		return parseResolution(cached), nil
	}

	res := Resolution{Role: authz.RoleAnonymous}
	switch {
	case s.cfg.IsAdminEmail(email):
		res.Role = authz.RoleAdmin
	default:
		mentor, err := s.catalogs.MentorByEmail(ctx, repository.Anonymous(), email)
		if err == nil {
			res.Role = authz.RoleMentor
			res.MentorID = &mentor.ID
		} else if !errors.Is(err, repository.ErrMentorNotFound) {
			return Resolution{}, err
		}
	}

	if err := s.cache.Set(ctx, roleCacheNamespace, email, formatResolution(res), roleCacheTTL); err != nil {
		s.logger.Warn("role cache write failed", "error", err)
	}
	return res, nil
}

// Invalidate drops all cached resolutions, e.g. after the mentors catalog
// changes.
func (s *RoleService) Invalidate(ctx context.Context) error {
	return s.cache.InvalidateNamespace(ctx, roleCacheNamespace)
}

func formatResolution(r Resolution) string {
	if r.MentorID != nil {
		return string(r.Role) + ":" + *r.MentorID
	}
	return string(r.Role)
}

func parseResolution(raw string) Resolution {
	role, mentorID, found := strings.Cut(raw, ":")
	res := Resolution{Role: authz.Role(role)}
	if !authz.ValidRole(res.Role) {
		return Resolution{Role: authz.RoleAnonymous}
	}
	if found && mentorID != "" {
		res.MentorID = &mentorID
	}
	return res
}
