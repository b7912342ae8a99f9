// Package authz is the explicit authorization boundary consulted before any
// core operation touches storage. The storage-level row policies (scoped
// session variables) remain as defense in depth, not as the security check.
package authz

import (
	"errors"
	"fmt"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleMentor    Role = "mentor"
	RoleAnonymous Role = "anonymous"
)

type Action string

const (
	ActionSessionCreate  Action = "session:create"
	ActionFollowupRedeem Action = "followup:redeem"
	ActionDashboardRead  Action = "dashboard:read"
	ActionDispatchRun    Action = "dispatch:run"
	ActionLinkWrite      Action = "link:write"
	ActionCatalogRead    Action = "catalog:read"
)

var ErrForbidden = errors.New("forbidden")

// Check-in and redemption are deliberately anonymous operations; dashboards
// and dispatch are not.
var allowed = map[Role]map[Action]bool{
	RoleAnonymous: {
		ActionSessionCreate:  true,
		ActionFollowupRedeem: true,
		ActionLinkWrite:      true,
		ActionCatalogRead:    true,
	},
	RoleMentor: {
		ActionSessionCreate:  true,
		ActionFollowupRedeem: true,
		ActionDashboardRead:  true,
		ActionLinkWrite:      true,
		ActionCatalogRead:    true,
	},
	RoleAdmin: {
		ActionSessionCreate:  true,
		ActionFollowupRedeem: true,
		ActionDashboardRead:  true,
		ActionDispatchRun:    true,
		ActionLinkWrite:      true,
		ActionCatalogRead:    true,
	},
}

func ValidRole(r Role) bool {
	_, ok := allowed[r]
	return ok
}

func Allowed(r Role, a Action) bool {
	return allowed[r][a]
}

func Require(r Role, a Action) error {
	if !Allowed(r, a) {
		return fmt.Errorf("%w: role %q may not %q", ErrForbidden, r, a)
	}
	return nil
}
