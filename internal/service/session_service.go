package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/campuspulse/moodmeter-service/internal/config"
	"github.com/campuspulse/moodmeter-service/internal/domain"
	"github.com/campuspulse/moodmeter-service/internal/mood"
	"github.com/campuspulse/moodmeter-service/internal/observability"
	"github.com/campuspulse/moodmeter-service/internal/repository"
	"github.com/campuspulse/moodmeter-service/internal/security"

	"github.com/google/uuid"
)

// Matriculas look like A01234567 or A012345678; the leading letter is
// case-insensitive and normalized to upper before hashing.
var matriculaPattern = regexp.MustCompile(`^[aA]\d{8,9}$`)

const (
	maxDurationMin = 600
	maxNoteLen     = 300
)

type FieldViolation struct {
	Field      string `json:"field"`
	Constraint string `json:"constraint"`
}

// ValidationError rejects malformed input before any write. Violations list
// every failed constraint, not just the first.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Constraint)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// MoodInput carries one mood report in either of the two supported shapes:
// categorical (Valence + Intensity, server derives the coordinates) or
// numeric (ValenceNum + EnergyNum supplied directly, legacy format).
type MoodInput struct {
	Valence   *string `json:"valence,omitempty"`
	Intensity *int    `json:"intensity,omitempty"`

	ValenceNum *int    `json:"valence_num,omitempty"`
	EnergyNum  *int    `json:"energy_num,omitempty"`
	Quadrant   *string `json:"quadrant,omitempty"`

	Label *string `json:"label,omitempty"`
	Note  *string `json:"note,omitempty"`
}

func (m MoodInput) categorical() bool { return m.Valence != nil }

type CreateSessionInput struct {
	Matricula       string  `json:"matricula"`
	MentorID        string  `json:"mentor_id"`
	CommunityID     uint    `json:"community_id"`
	Campus          *string `json:"campus,omitempty"`
	DurationMin     int     `json:"duration_min"`
	ReasonID        *uint   `json:"reason_id,omitempty"`
	ReasonFree      *string `json:"reason_free,omitempty"`
	ConsentFollowup bool    `json:"consent_followup"`

	// Email is the follow-up contact address; UserID is the SSO subject when
	// the check-in happened signed in. Both optional.
	Email  *string `json:"email,omitempty"`
	UserID *string `json:"-"`

	Mood MoodInput `json:"mood"`
}

type CreateSessionResult struct {
	SessionID string  `json:"session_id"`
	Token     *string `json:"token,omitempty"`
}

type SessionService struct {
	cfg      *config.Config
	sessions repository.SessionRepository
	moodCfg  mood.Config
	rng      mood.Picker
}

func NewSessionService(cfg *config.Config, sessions repository.SessionRepository, moodCfg mood.Config, rng mood.Picker) *SessionService {
	return &SessionService{cfg: cfg, sessions: sessions, moodCfg: moodCfg, rng: rng}
}

// Create validates the check-in, hashes the matricula, and writes the
// session with its "before" mood event in one transaction. A token comes
// back only when consent was granted.
func (s *SessionService) Create(ctx context.Context, id repository.Identity, in CreateSessionInput) (*CreateSessionResult, error) {
	if err := s.validate(in); err != nil {
		observability.RecordSessionCreate("invalid")
		return nil, err
	}

	before, err := s.buildMoodEvent(in.Mood, domain.MomentBefore)
	if err != nil {
		observability.RecordSessionCreate("invalid")
		return nil, err
	}

	session := &domain.Session{
		ID:              uuid.NewString(),
		HashMatricula:   security.HashIdentifier(strings.ToUpper(in.Matricula), s.cfg.HashSalt),
		MentorID:        in.MentorID,
		CommunityID:     in.CommunityID,
		Campus:          in.Campus,
		DurationMin:     in.DurationMin,
		ReasonID:        in.ReasonID,
		ReasonFree:      in.ReasonFree,
		ConsentFollowup: in.ConsentFollowup,
		Email:           in.Email,
		UserID:          in.UserID,
	}
	if in.Email != nil {
		hash := security.HashIdentifier(*in.Email, s.cfg.HashSalt)
		session.EmailHash = &hash
	}
	if in.ConsentFollowup {
		token := uuid.NewString()
		variant := s.cfg.FollowupVariant
		session.FollowupToken = &token
		session.FollowupVariant = &variant
	}

	if err := s.sessions.Create(ctx, id, session, before); err != nil {
		observability.RecordSessionCreate("error")
		return nil, err
	}
	observability.RecordSessionCreate("success")
	return &CreateSessionResult{SessionID: session.ID, Token: session.FollowupToken}, nil
}

// Classify derives the quadrant and a label for a point on the mood plane.
// Backs the interactive meter; no writes.
func (s *SessionService) Classify(valence, energy int) (quadrant, label string, err error) {
	if valence < mood.NumericScaleMin || valence > mood.NumericScaleMax ||
		energy < mood.NumericScaleMin || energy > mood.NumericScaleMax {
		return "", "", &ValidationError{Violations: []FieldViolation{
			{Field: "valence/energy", Constraint: fmt.Sprintf("must be within [%d,%d]", mood.NumericScaleMin, mood.NumericScaleMax)},
		}}
	}
	quadrant, label = s.moodCfg.QuadrantFrom(valence, energy, s.rng)
	return quadrant, label, nil
}

func (s *SessionService) validate(in CreateSessionInput) error {
	var violations []FieldViolation
	if !matriculaPattern.MatchString(in.Matricula) {
		violations = append(violations, FieldViolation{Field: "matricula", Constraint: "must match A followed by 8 or 9 digits"})
	}
	if strings.TrimSpace(in.MentorID) == "" {
		violations = append(violations, FieldViolation{Field: "mentor_id", Constraint: "required"})
	}
	if in.CommunityID == 0 {
		violations = append(violations, FieldViolation{Field: "community_id", Constraint: "required"})
	}
	if in.DurationMin < 0 || in.DurationMin > maxDurationMin {
		violations = append(violations, FieldViolation{Field: "duration_min", Constraint: fmt.Sprintf("must be within [0,%d]", maxDurationMin)})
	}
	if in.ReasonFree != nil && len(*in.ReasonFree) > maxNoteLen {
		violations = append(violations, FieldViolation{Field: "reason_free", Constraint: fmt.Sprintf("at most %d characters", maxNoteLen)})
	}
	if in.Mood.Note != nil && len(*in.Mood.Note) > maxNoteLen {
		violations = append(violations, FieldViolation{Field: "mood.note", Constraint: fmt.Sprintf("at most %d characters", maxNoteLen)})
	}
	if in.Email != nil {
		if _, err := mail.ParseAddress(*in.Email); err != nil {
			violations = append(violations, FieldViolation{Field: "email", Constraint: "must be a valid address"})
		}
	}
	violations = append(violations, validateMoodInput(in.Mood)...)
	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

func validateMoodInput(m MoodInput) []FieldViolation {
	var violations []FieldViolation
	switch {
	case m.categorical():
		if !mood.ValidValence(mood.Valence(*m.Valence)) {
			violations = append(violations, FieldViolation{Field: "mood.valence", Constraint: "must be one of dificil, neutral, agradable"})
		}
		if m.Intensity == nil {
			violations = append(violations, FieldViolation{Field: "mood.intensity", Constraint: "required with categorical valence"})
		} else if *m.Intensity < 1 || *m.Intensity > 5 {
			violations = append(violations, FieldViolation{Field: "mood.intensity", Constraint: "must be within [1,5]"})
		}
	case m.ValenceNum != nil && m.EnergyNum != nil:
		if *m.ValenceNum < mood.NumericScaleMin || *m.ValenceNum > mood.NumericScaleMax {
			violations = append(violations, FieldViolation{Field: "mood.valence_num", Constraint: fmt.Sprintf("must be within [%d,%d]", mood.NumericScaleMin, mood.NumericScaleMax)})
		}
		if *m.EnergyNum < mood.NumericScaleMin || *m.EnergyNum > mood.NumericScaleMax {
			violations = append(violations, FieldViolation{Field: "mood.energy_num", Constraint: fmt.Sprintf("must be within [%d,%d]", mood.NumericScaleMin, mood.NumericScaleMax)})
		}
	default:
		violations = append(violations, FieldViolation{Field: "mood", Constraint: "either valence+intensity or valence_num+energy_num is required"})
	}
	return violations
}

// buildMoodEvent maps a validated MoodInput onto the numeric plane. The
// categorical shape derives both coordinates and the quadrant; the numeric
// shape trusts the caller-supplied quadrant and label.
func (s *SessionService) buildMoodEvent(m MoodInput, moment string) (*domain.MoodEvent, error) {
	ev := &domain.MoodEvent{Moment: moment, Label: m.Label, Note: m.Note}
	if m.categorical() {
		valence, err := mood.MapValenceToNum(mood.Valence(*m.Valence))
		if err != nil {
			return nil, err
		}
		energy, err := mood.MapIntensityToEnergy(*m.Intensity)
		if err != nil {
			return nil, err
		}
		ev.Valence = valence
		ev.Energy = energy
		ev.Intensity = m.Intensity
		quadrant, label := s.moodCfg.QuadrantFrom(valence, energy, s.rng)
		ev.Quadrant = &quadrant
		if ev.Label == nil {
			ev.Label = &label
		}
		return ev, nil
	}
	ev.Valence = *m.ValenceNum
	ev.Energy = *m.EnergyNum
	ev.Quadrant = m.Quadrant
	return ev, nil
}

// AsValidationError unwraps err into a *ValidationError when it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
