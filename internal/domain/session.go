package domain

import "time"

// Moment distinguishes the two mood reports a session can carry.
const (
	MomentBefore = "before"
	MomentAfter  = "after"
)

// TokenLifetime is how long a follow-up token stays redeemable, measured
// from session creation. Expiry is re-derived from created_at at redemption
// time, so issue-time clock skew cannot drift the check.
const TokenLifetime = 7 * 24 * time.Hour

// Session is one mentoring encounter. The subject is only ever referenced by
// a salted hash; the raw matricula never reaches this struct.
type Session struct {
	ID              string  `gorm:"primaryKey;size:64" json:"id"`
	HashMatricula   string  `gorm:"size:128;index;not null" json:"-"`
	MentorID        string  `gorm:"size:64;index;not null" json:"mentor_id"`
	CommunityID     uint    `gorm:"index;not null" json:"community_id"`
	Campus          *string `gorm:"size:128" json:"campus,omitempty"`
	DurationMin     int     `gorm:"not null" json:"duration_min"`
	ReasonID        *uint   `gorm:"index" json:"reason_id,omitempty"`
	ReasonFree      *string `gorm:"size:300" json:"reason_free,omitempty"`
	ConsentFollowup bool    `gorm:"not null;default:false" json:"consent_followup"`
	Email           *string `gorm:"size:254" json:"-"`
	EmailHash       *string `gorm:"size:128" json:"-"`
	UserID          *string `gorm:"size:128;index" json:"-"`

	FollowupToken       *string    `gorm:"size:64;uniqueIndex" json:"-"`
	FollowupVariant     *string    `gorm:"size:8" json:"-"`
	FollowupSentAt      *time.Time `gorm:"index" json:"-"`
	FollowupCompletedAt *time.Time `gorm:"index" json:"followup_completed_at,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	MoodEvents []MoodEvent `gorm:"foreignKey:SessionID" json:"-"`
}

// TokenState is the derived follow-up token lifecycle state. It is never
// persisted; the nullable session columns are the source of truth and this
// variant keeps the validity predicate in one place.
type TokenState int

const (
	TokenAbsent TokenState = iota
	TokenIssued
	TokenSent
	TokenRedeemed
	TokenExpired
)

func (s *Session) TokenStateAt(now time.Time) TokenState {
	if s.FollowupCompletedAt != nil {
		return TokenRedeemed
	}
	if s.FollowupToken == nil {
		return TokenAbsent
	}
	if now.Sub(s.CreatedAt) > TokenLifetime {
		return TokenExpired
	}
	if s.FollowupSentAt != nil {
		return TokenSent
	}
	return TokenIssued
}

// FollowupEligible reports whether the reminder dispatcher may still contact
// the subject: consent on record, a live unsent token, and an address.
func (s *Session) FollowupEligible(now time.Time) bool {
	return s.ConsentFollowup && s.Email != nil && s.TokenStateAt(now) == TokenIssued
}
