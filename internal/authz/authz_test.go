package authz

import (
	"errors"
	"testing"
)

func TestAnonymousCanCheckInButNotReadDashboards(t *testing.T) {
	if err := Require(RoleAnonymous, ActionSessionCreate); err != nil {
		t.Fatalf("anonymous session create: %v", err)
	}
	if err := Require(RoleAnonymous, ActionFollowupRedeem); err != nil {
		t.Fatalf("anonymous redeem: %v", err)
	}
	if err := Require(RoleAnonymous, ActionDashboardRead); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := Require(RoleAnonymous, ActionDispatchRun); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestMentorReadsDashboardsButCannotDispatch(t *testing.T) {
	if err := Require(RoleMentor, ActionDashboardRead); err != nil {
		t.Fatalf("mentor dashboard: %v", err)
	}
	if err := Require(RoleMentor, ActionDispatchRun); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAdminAllowedEverything(t *testing.T) {
	for _, a := range []Action{ActionSessionCreate, ActionFollowupRedeem, ActionDashboardRead, ActionDispatchRun, ActionLinkWrite, ActionCatalogRead} {
		if err := Require(RoleAdmin, a); err != nil {
			t.Fatalf("admin %s: %v", a, err)
		}
	}
}

func TestUnknownRoleDenied(t *testing.T) {
	if ValidRole("superuser") {
		t.Fatal("superuser should not be a valid role")
	}
	if err := Require("superuser", ActionCatalogRead); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
