package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/campuspulse/moodmeter-service/internal/domain"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newScopeForTest(t *testing.T) *Scope {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.Community{},
		&domain.Mentor{},
		&domain.Reason{},
		&domain.KeyringEntry{},
		&domain.UserLink{},
		&domain.Session{},
		&domain.MoodEvent{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewScope(db, "test-salt")
}

func strPtr(v string) *string { return &v }
func uintPtr(v uint) *uint    { return &v }
func intPtr(v int) *int       { return &v }
func boolPtr(v bool) *bool    { return &v }

func testSession(hash string, age time.Duration, mutate func(*domain.Session)) *domain.Session {
	token := "tok-" + hash
	variant := "A"
	email := hash + "@example.edu"
	s := &domain.Session{
		ID:              "s-" + hash,
		HashMatricula:   hash,
		MentorID:        "m-1",
		CommunityID:     1,
		DurationMin:     30,
		ConsentFollowup: true,
		Email:           &email,
		FollowupToken:   &token,
		FollowupVariant: &variant,
		CreatedAt:       time.Now().UTC().Add(-age),
	}
	if mutate != nil {
		mutate(s)
	}
	return s
}

func testBeforeEvent() *domain.MoodEvent {
	label := "tranquilo"
	return &domain.MoodEvent{Valence: 3, Energy: -2, Label: &label, Intensity: intPtr(2)}
}
