package domain

import "time"

type Community struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Code  string `gorm:"size:32;uniqueIndex;not null" json:"code"`
	Name  string `gorm:"size:128;not null" json:"name"`
	Color string `gorm:"size:16;not null" json:"color"`
}

type Mentor struct {
	ID          string `gorm:"primaryKey;size:64" json:"id"`
	Name        string `gorm:"size:128;not null" json:"name"`
	Email       string `gorm:"size:254;uniqueIndex;not null" json:"-"`
	CommunityID *uint  `gorm:"index" json:"community_id,omitempty"`
	// Pointer so a seeded false survives the column default: gorm skips
	// zero-value fields that carry a default tag.
	Active *bool `gorm:"not null;default:true" json:"active"`
}

type Reason struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Code  string `gorm:"size:32;uniqueIndex;not null" json:"code"`
	Label string `gorm:"size:128;not null" json:"label"`
}

// KeyringEntry registers a hashed matricula. Rows only accumulate; the upsert
// on conflict is a no-op so re-registration stays idempotent.
type KeyringEntry struct {
	HashMatricula string    `gorm:"primaryKey;size:128" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
}

// UserLink binds an external (SSO) user id to a hashed matricula. One link
// per user; a matricula hash may back at most one user.
type UserLink struct {
	UserID        string    `gorm:"primaryKey;size:128" json:"user_id"`
	MatriculaHash string    `gorm:"size:128;uniqueIndex;not null" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
