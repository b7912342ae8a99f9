package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/campuspulse/moodmeter-service/internal/domain"
	"github.com/campuspulse/moodmeter-service/internal/observability"
	"github.com/campuspulse/moodmeter-service/internal/repository"
)

type RedeemInput struct {
	Token string    `json:"token"`
	Mood  MoodInput `json:"mood"`
}

type RedeemResult struct {
	SessionID   string    `json:"session_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// FollowupService drives token redemption. The ordering of the error checks
// (not-found-or-expired, then already-used, then no-consent) and the
// atomicity of the final write live in the repository; this layer validates
// the "after" mood report and shapes the result.
type FollowupService struct {
	sessions repository.SessionRepository
	mapper   *SessionService
	now      func() time.Time
}

func NewFollowupService(sessions repository.SessionRepository, mapper *SessionService, now func() time.Time) *FollowupService {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &FollowupService{sessions: sessions, mapper: mapper, now: now}
}

func (s *FollowupService) Redeem(ctx context.Context, id repository.Identity, in RedeemInput) (*RedeemResult, error) {
	if strings.TrimSpace(in.Token) == "" {
		observability.RecordFollowupRedeem("invalid")
		return nil, &ValidationError{Violations: []FieldViolation{{Field: "token", Constraint: "required"}}}
	}
	if violations := validateMoodInput(in.Mood); len(violations) > 0 {
		observability.RecordFollowupRedeem("invalid")
		return nil, &ValidationError{Violations: violations}
	}
	after, err := s.mapper.buildMoodEvent(in.Mood, domain.MomentAfter)
	if err != nil {
		observability.RecordFollowupRedeem("invalid")
		return nil, err
	}

	session, err := s.sessions.Redeem(ctx, id, in.Token, after, s.now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTokenNotFoundOrExpired):
			observability.RecordFollowupRedeem("not_found")
		case errors.Is(err, repository.ErrTokenAlreadyUsed):
			observability.RecordFollowupRedeem("conflict")
		case errors.Is(err, repository.ErrNoConsent):
			observability.RecordFollowupRedeem("forbidden")
		default:
			observability.RecordFollowupRedeem("error")
		}
		return nil, err
	}
	observability.RecordFollowupRedeem("success")
	return &RedeemResult{SessionID: session.ID, CompletedAt: *session.FollowupCompletedAt}, nil
}
