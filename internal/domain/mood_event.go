package domain

import "time"

// MoodEvent is one mood report tied to a session and a moment. The composite
// unique index backs the "at most one event per (session, moment)" invariant;
// a second insert for the same pair is absorbed with an ON CONFLICT DO
// NOTHING, never an error.
type MoodEvent struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	SessionID string  `gorm:"size:64;not null;uniqueIndex:idx_mood_events_session_moment" json:"session_id"`
	Moment    string  `gorm:"size:8;not null;uniqueIndex:idx_mood_events_session_moment" json:"moment"`
	Valence   int     `gorm:"not null" json:"valence"`
	Energy    int     `gorm:"not null" json:"energy"`
	Label     *string `gorm:"size:64" json:"label,omitempty"`
	Quadrant  *string `gorm:"size:4" json:"quadrant,omitempty"`
	Intensity *int    `json:"intensity,omitempty"`
	Note      *string `gorm:"size:300" json:"note,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
