package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/campuspulse/moodmeter-service/internal/config"
	"github.com/campuspulse/moodmeter-service/internal/domain"
	"github.com/campuspulse/moodmeter-service/internal/repository"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newScopeForTest(t *testing.T) *repository.Scope {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
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
	return repository.NewScope(db, "test-salt")
}

func newConfigForTest() *config.Config {
	return &config.Config{
		Profile:            "test",
		BaseURL:            "https://pulse.example.edu",
		HashSalt:           "test-salt",
		AdminEmails:        []string{"admin@example.edu"},
		FollowupVariant:    "A",
		DispatchBatchLimit: 100,
		DispatchSendLimit:  4,
	}
}

func newRedisClientForTest(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})
	return server, client
}

// fixedPicker always picks the same pool index, making label derivation
// deterministic.
type fixedPicker struct{ v int }

func (p fixedPicker) Intn(n int) int {
	if p.v >= n {
		return n - 1
	}
	return p.v
}

func strPtr(v string) *string { return &v }
func intPtr(v int) *int       { return &v }
func boolPtr(v bool) *bool    { return &v }

func validCreateInput() CreateSessionInput {
	return CreateSessionInput{
		Matricula:       "A01234567",
		MentorID:        "m-1",
		CommunityID:     1,
		DurationMin:     30,
		ConsentFollowup: true,
		Email:           strPtr("student@example.edu"),
		Mood: MoodInput{
			Valence:   strPtr("agradable"),
			Intensity: intPtr(4),
		},
	}
}

func backdateSession(t *testing.T, scope *repository.Scope, sessionID string, age time.Duration) {
	t.Helper()
	createdAt := time.Now().UTC().Add(-age)
	if err := scope.DB().Model(&domain.Session{}).Where("id = ?", sessionID).
		Update("created_at", createdAt).Error; err != nil {
		t.Fatalf("backdate session: %v", err)
	}
}
