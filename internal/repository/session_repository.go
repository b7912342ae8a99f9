package repository

import (
	"context"
	"errors"
	"time"

	"github.com/campuspulse/moodmeter-service/internal/authz"
	"github.com/campuspulse/moodmeter-service/internal/domain"
	"github.com/campuspulse/moodmeter-service/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrSessionNotFound        = errors.New("session not found")
	ErrTokenNotFoundOrExpired = errors.New("token not found or expired")
	ErrTokenAlreadyUsed       = errors.New("token already used")
	ErrNoConsent              = errors.New("no consent on record")
)

var forUpdateClause = clause.Locking{Strength: "UPDATE"}

// Window selects sessions whose creation time falls inside
// [now - From, now - To]. Windows rather than "older than N hours" keep
// repeated dispatcher runs from re-selecting a session once it ages past.
type Window struct {
	Name string
	From time.Duration
	To   time.Duration
}

// DefaultWindow is the canonical T+24h slot: created between 25 and 24 hours
// ago. SecondWindow (T+72h) is configurable and off by default.
var (
	DefaultWindow = Window{Name: "24h", From: 25 * time.Hour, To: 24 * time.Hour}
	SecondWindow  = Window{Name: "72h", From: 73 * time.Hour, To: 72 * time.Hour}
)

type SessionRepository interface {
	Create(ctx context.Context, id Identity, session *domain.Session, before *domain.MoodEvent) error
	FindByID(ctx context.Context, id Identity, sessionID string) (*domain.Session, error)
	MoodEvents(ctx context.Context, id Identity, sessionID string) ([]domain.MoodEvent, error)
	Redeem(ctx context.Context, id Identity, tokenValue string, after *domain.MoodEvent, now time.Time) (*domain.Session, error)
	DueForReminder(ctx context.Context, id Identity, windows []Window, limit int, now time.Time) ([]domain.Session, error)
	MarkReminderSent(ctx context.Context, id Identity, sessionID string, now time.Time) (bool, error)
}

type GormSessionRepository struct{ scope *Scope }

func NewSessionRepository(scope *Scope) SessionRepository {
	return &GormSessionRepository{scope: scope}
}

// Create persists the session, its keyring entry and its "before" mood event
// in one transaction. The keyring upsert is idempotent; a session row without
// its mood event is never observable.
func (r *GormSessionRepository) Create(ctx context.Context, id Identity, session *domain.Session, before *domain.MoodEvent) error {
	err := r.scope.Run(ctx, id, authz.ActionSessionCreate, func(tx *gorm.DB) error {
		entry := domain.KeyringEntry{HashMatricula: session.HashMatricula}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error; err != nil {
			return err
		}
		if err := tx.Create(session).Error; err != nil {
			return err
		}
		before.SessionID = session.ID
		before.Moment = domain.MomentBefore
		return insertMoodEvent(tx, before)
	})
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "session", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "session", "create", "success")
	return nil
}

func (r *GormSessionRepository) FindByID(ctx context.Context, id Identity, sessionID string) (*domain.Session, error) {
	var s domain.Session
	err := r.scope.Run(ctx, id, authz.ActionCatalogRead, func(tx *gorm.DB) error {
		return tx.Where("id = ?", sessionID).First(&s).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "session", "find_by_id", "not_found")
			return nil, ErrSessionNotFound
		}
		observability.RecordRepositoryOperation(ctx, "session", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "session", "find_by_id", "success")
	return &s, nil
}

func (r *GormSessionRepository) MoodEvents(ctx context.Context, id Identity, sessionID string) ([]domain.MoodEvent, error) {
	var events []domain.MoodEvent
	err := r.scope.Run(ctx, id, authz.ActionCatalogRead, func(tx *gorm.DB) error {
		return tx.Where("session_id = ?", sessionID).Order("moment").Find(&events).Error
	})
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "mood_event", "list", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "mood_event", "list", "success")
	return events, nil
}

// Redeem consumes a follow-up token exactly once. Lookup, already-used check,
// consent check, "after" event insert, completion stamp and token clear all
// happen inside one transaction, with the completion update made conditional
// on followup_completed_at still being null so a concurrent redeemer loses
// cleanly with ErrTokenAlreadyUsed.
func (r *GormSessionRepository) Redeem(ctx context.Context, id Identity, tokenValue string, after *domain.MoodEvent, now time.Time) (*domain.Session, error) {
	var redeemed *domain.Session
	err := r.scope.Run(ctx, id, authz.ActionFollowupRedeem, func(tx *gorm.DB) error {
		var s domain.Session
		// Expiry re-derived from creation time, never from a stored column.
		cutoff := now.Add(-domain.TokenLifetime)
		err := lockForUpdate(tx).
			Where("followup_token = ? AND created_at > ?", tokenValue, cutoff).
			First(&s).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTokenNotFoundOrExpired
			}
			return err
		}
		if s.FollowupCompletedAt != nil {
			return ErrTokenAlreadyUsed
		}
		if !s.ConsentFollowup {
			return ErrNoConsent
		}

		after.SessionID = s.ID
		after.Moment = domain.MomentAfter
		if err := insertMoodEvent(tx, after); err != nil {
			return err
		}

		res := tx.Model(&domain.Session{}).
			Where("id = ? AND followup_completed_at IS NULL", s.ID).
			Updates(map[string]any{"followup_completed_at": now, "followup_token": nil})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTokenAlreadyUsed
		}
		s.FollowupCompletedAt = &now
		s.FollowupToken = nil
		redeemed = &s
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrTokenNotFoundOrExpired):
			observability.RecordRepositoryOperation(ctx, "session", "redeem", "not_found")
		case errors.Is(err, ErrTokenAlreadyUsed):
			observability.RecordRepositoryOperation(ctx, "session", "redeem", "conflict")
		case errors.Is(err, ErrNoConsent):
			observability.RecordRepositoryOperation(ctx, "session", "redeem", "forbidden")
		default:
			observability.RecordRepositoryOperation(ctx, "session", "redeem", "error")
		}
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "session", "redeem", "success")
	return redeemed, nil
}

// DueForReminder scans for follow-up eligible sessions inside the given
// windows: consent granted, token minted and unsent, address present.
func (r *GormSessionRepository) DueForReminder(ctx context.Context, id Identity, windows []Window, limit int, now time.Time) ([]domain.Session, error) {
	var sessions []domain.Session
	err := r.scope.Run(ctx, id, authz.ActionDispatchRun, func(tx *gorm.DB) error {
		q := tx.Where(
			"consent_followup = ? AND followup_token IS NOT NULL AND followup_variant IS NOT NULL AND followup_sent_at IS NULL AND email IS NOT NULL",
			true,
		)
		windowCond := tx.Session(&gorm.Session{NewDB: true})
		var windowQuery *gorm.DB
		for _, w := range windows {
			cond := windowCond.Where("created_at >= ? AND created_at <= ?", now.Add(-w.From), now.Add(-w.To))
			if windowQuery == nil {
				windowQuery = cond
			} else {
				windowQuery = windowQuery.Or(cond)
			}
		}
		if windowQuery != nil {
			q = q.Where(windowQuery)
		}
		return q.Order("created_at ASC").Limit(limit).Find(&sessions).Error
	})
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "session", "due_for_reminder", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "session", "due_for_reminder", "success")
	return sessions, nil
}

// MarkReminderSent stamps followup_sent_at once. The conditional update makes
// a second stamp a no-op, reported as false.
func (r *GormSessionRepository) MarkReminderSent(ctx context.Context, id Identity, sessionID string, now time.Time) (bool, error) {
	var marked bool
	err := r.scope.Run(ctx, id, authz.ActionDispatchRun, func(tx *gorm.DB) error {
		res := tx.Model(&domain.Session{}).
			Where("id = ? AND followup_sent_at IS NULL", sessionID).
			Update("followup_sent_at", now)
		if res.Error != nil {
			return res.Error
		}
		marked = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "session", "mark_reminder_sent", "error")
		return false, err
	}
	observability.RecordRepositoryOperation(ctx, "session", "mark_reminder_sent", "success")
	return marked, nil
}

// insertMoodEvent absorbs a duplicate (session, moment) pair as a no-op per
// the data-model invariant.
func insertMoodEvent(tx *gorm.DB, event *domain.MoodEvent) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "moment"}},
		DoNothing: true,
	}).Create(event).Error
}
