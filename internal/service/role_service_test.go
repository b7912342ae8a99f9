package service

import (
	"context"
	"testing"

	"github.com/campuspulse/moodmeter-service/internal/authz"
	"github.com/campuspulse/moodmeter-service/internal/domain"
	"github.com/campuspulse/moodmeter-service/internal/repository"
)

func newRoleServiceForTest(t *testing.T, cache ValueCacheStore) (*RoleService, *repository.Scope) {
	t.Helper()
	scope := newScopeForTest(t)
	if err := scope.DB().Create(&domain.Mentor{ID: "m-1", Name: "Ana", Email: "ana@example.edu", Active: boolPtr(true)}).Error; err != nil {
		t.Fatalf("seed mentor: %v", err)
	}
	catalogs := repository.NewCatalogRepository(scope)
	return NewRoleService(newConfigForTest(), catalogs, cache, nil), scope
}

func TestResolveAdmin(t *testing.T) {
	svc, _ := newRoleServiceForTest(t, NewNoopValueCacheStore())

	res, err := svc.Resolve(context.Background(), "Admin@Example.edu")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Role != authz.RoleAdmin || res.MentorID != nil {
		t.Fatalf("resolution = %+v, want admin", res)
	}
}

func TestResolveMentorCarriesMentorID(t *testing.T) {
	svc, _ := newRoleServiceForTest(t, NewNoopValueCacheStore())

	res, err := svc.Resolve(context.Background(), "ana@example.edu")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Role != authz.RoleMentor {
		t.Fatalf("role = %s, want mentor", res.Role)
	}
	if res.MentorID == nil || *res.MentorID != "m-1" {
		t.Fatalf("mentor id = %v, want m-1", res.MentorID)
	}
}

func TestResolveUnknownAndEmptyAreAnonymous(t *testing.T) {
	svc, _ := newRoleServiceForTest(t, NewNoopValueCacheStore())
	ctx := context.Background()

	for _, email := range []string{"", "stranger@example.edu"} {
		res, err := svc.Resolve(ctx, email)
		if err != nil {
			t.Fatalf("resolve %q: %v", email, err)
		}
		if res.Role != authz.RoleAnonymous {
			t.Fatalf("role for %q = %s, want anonymous", email, res.Role)
		}
	}
}

func TestResolveServedFromCacheAfterCatalogChange(t *testing.T) {
	svc, scope := newRoleServiceForTest(t, NewInMemoryValueCacheStore())
	ctx := context.Background()

	if _, err := svc.Resolve(ctx, "ana@example.edu"); err != nil {
		t.Fatalf("warm cache: %v", err)
	}
	// Deactivating the mentor does not show until the entry expires or the
	// namespace is invalidated.
	if err := scope.DB().Model(&domain.Mentor{}).Where("id = ?", "m-1").Update("email", "moved@example.edu").Error; err != nil {
		t.Fatalf("update mentor: %v", err)
	}
	res, err := svc.Resolve(ctx, "ana@example.edu")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Role != authz.RoleMentor {
		t.Fatalf("cached role = %s, want mentor", res.Role)
	}

	if err := svc.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	res, err = svc.Resolve(ctx, "ana@example.edu")
	if err != nil {
		t.Fatalf("resolve after invalidate: %v", err)
	}
	if res.Role != authz.RoleAnonymous {
		t.Fatalf("role = %s, want anonymous after invalidate", res.Role)
	}
}
