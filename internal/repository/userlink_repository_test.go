package repository

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"
)

func TestLinkCreatesAndReadsBack(t *testing.T) {
	scope := newScopeForTest(t)
	repo := NewUserLinkRepository(scope)
	user := Identity{Email: "student@example.edu", Role: "mentor"}
	ctx := context.Background()

	if err := repo.Link(ctx, user, "user-1", "hash-1"); err != nil {
		t.Fatalf("link: %v", err)
	}
	link, err := repo.FindByUser(ctx, user, "user-1")
	if err != nil {
		t.Fatalf("find by user: %v", err)
	}
	if link.MatriculaHash != "hash-1" {
		t.Fatalf("hash = %s, want hash-1", link.MatriculaHash)
	}
}

func TestLinkRejectsSecondLinkForSameUser(t *testing.T) {
	scope := newScopeForTest(t)
	repo := NewUserLinkRepository(scope)
	user := Identity{Email: "student@example.edu", Role: "mentor"}
	ctx := context.Background()

	if err := repo.Link(ctx, user, "user-1", "hash-1"); err != nil {
		t.Fatalf("first link: %v", err)
	}
	if err := repo.Link(ctx, user, "user-1", "hash-2"); !errors.Is(err, ErrUserAlreadyLinked) {
		t.Fatalf("err = %v, want ErrUserAlreadyLinked", err)
	}
	// Repeating the original pair conflicts too; a link is written once.
	if err := repo.Link(ctx, user, "user-1", "hash-1"); !errors.Is(err, ErrUserAlreadyLinked) {
		t.Fatalf("same-pair err = %v, want ErrUserAlreadyLinked", err)
	}
}

func TestLinkRejectsMatriculaBoundToAnotherUser(t *testing.T) {
	scope := newScopeForTest(t)
	repo := NewUserLinkRepository(scope)
	user := Identity{Email: "student@example.edu", Role: "mentor"}
	ctx := context.Background()

	if err := repo.Link(ctx, user, "user-1", "hash-1"); err != nil {
		t.Fatalf("first link: %v", err)
	}
	if err := repo.Link(ctx, user, "user-2", "hash-1"); !errors.Is(err, ErrMatriculaTaken) {
		t.Fatalf("err = %v, want ErrMatriculaTaken", err)
	}
}

func TestFindByUserUnknown(t *testing.T) {
	scope := newScopeForTest(t)
	repo := NewUserLinkRepository(scope)
	user := Identity{Email: "student@example.edu", Role: "mentor"}

	if _, err := repo.FindByUser(context.Background(), user, "ghost"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}
}

func TestLinkWorksDuringAnonymousCheckIn(t *testing.T) {
	scope := newScopeForTest(t)
	repo := NewUserLinkRepository(scope)

	// The check-in flow runs without a signed-in role; the SSO user id
	// travels in the payload, so link writes must not require one.
	if err := repo.Link(context.Background(), Anonymous(), "user-1", "hash-1"); err != nil {
		t.Fatalf("anonymous link: %v", err)
	}
}
