package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/campuspulse/moodmeter-service/internal/domain"

	"gorm.io/gorm"
)

func seedCatalogs(t *testing.T, scope *Scope) {
	t.Helper()
	communities := []domain.Community{
		{ID: 1, Code: "norte", Name: "Norte", Color: "#1E88E5"},
		{ID: 2, Code: "sur", Name: "Sur", Color: "#43A047"},
	}
	for i := range communities {
		if err := scope.db.Create(&communities[i]).Error; err != nil {
			t.Fatalf("seed community: %v", err)
		}
	}
	mentors := []domain.Mentor{
		{ID: "m-1", Name: "Ana", Email: "ana@example.edu", Active: boolPtr(true)},
		{ID: "m-2", Name: "Luis", Email: "luis@example.edu", Active: boolPtr(false)},
	}
	for i := range mentors {
		if err := scope.db.Create(&mentors[i]).Error; err != nil {
			t.Fatalf("seed mentor: %v", err)
		}
	}
	reasons := []domain.Reason{
		{ID: 1, Code: "academic", Label: "Academic stress"},
		{ID: 2, Code: "personal", Label: "Personal"},
	}
	for i := range reasons {
		if err := scope.db.Create(&reasons[i]).Error; err != nil {
			t.Fatalf("seed reason: %v", err)
		}
	}
}

func TestCatalogListsAreAnonymousReadable(t *testing.T) {
	scope := newScopeForTest(t)
	seedCatalogs(t, scope)
	repo := NewCatalogRepository(scope)
	ctx := context.Background()

	communities, err := repo.Communities(ctx, Anonymous())
	if err != nil {
		t.Fatalf("communities: %v", err)
	}
	if len(communities) != 2 {
		t.Fatalf("communities = %d, want 2", len(communities))
	}

	reasons, err := repo.Reasons(ctx, Anonymous())
	if err != nil {
		t.Fatalf("reasons: %v", err)
	}
	if len(reasons) != 2 {
		t.Fatalf("reasons = %d, want 2", len(reasons))
	}
}

func TestMentorsListsOnlyActive(t *testing.T) {
	scope := newScopeForTest(t)
	seedCatalogs(t, scope)
	repo := NewCatalogRepository(scope)

	mentors, err := repo.Mentors(context.Background(), Anonymous())
	if err != nil {
		t.Fatalf("mentors: %v", err)
	}
	if len(mentors) != 1 || mentors[0].ID != "m-1" {
		t.Fatalf("expected only active mentor m-1, got %+v", mentors)
	}

	// The seeded false must survive the column default.
	var luis domain.Mentor
	if err := scope.db.Where("id = ?", "m-2").First(&luis).Error; err != nil {
		t.Fatalf("reload mentor: %v", err)
	}
	if luis.Active == nil || *luis.Active {
		t.Fatalf("mentor m-2 active = %v, want false", luis.Active)
	}
}

func TestMentorByEmail(t *testing.T) {
	scope := newScopeForTest(t)
	seedCatalogs(t, scope)
	repo := NewCatalogRepository(scope)
	ctx := context.Background()

	m, err := repo.MentorByEmail(ctx, Anonymous(), "ana@example.edu")
	if err != nil {
		t.Fatalf("mentor by email: %v", err)
	}
	if m.ID != "m-1" {
		t.Fatalf("mentor id = %s, want m-1", m.ID)
	}

	if _, err := repo.MentorByEmail(ctx, Anonymous(), "nobody@example.edu"); !errors.Is(err, ErrMentorNotFound) {
		t.Fatalf("err = %v, want ErrMentorNotFound", err)
	}
}

func TestCommunityColor(t *testing.T) {
	scope := newScopeForTest(t)
	seedCatalogs(t, scope)
	repo := NewCatalogRepository(scope)
	ctx := context.Background()

	color, err := repo.CommunityColor(ctx, Anonymous(), 1)
	if err != nil {
		t.Fatalf("community color: %v", err)
	}
	if color != "#1E88E5" {
		t.Fatalf("color = %s, want #1E88E5", color)
	}

	if _, err := repo.CommunityColor(ctx, Anonymous(), 99); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}
}
