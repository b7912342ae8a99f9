package repository

import (
	"context"
	"fmt"

	"github.com/campuspulse/moodmeter-service/internal/authz"

	"gorm.io/gorm"
)

// Identity is the caller on whose behalf a transaction runs. Anonymous
// callers carry an empty email and RoleAnonymous.
type Identity struct {
	Email string
	Role  authz.Role
}

func Anonymous() Identity { return Identity{Role: authz.RoleAnonymous} }

// Scope opens identity-tagged transactions. The authorization decision is
// made here, explicitly, before any query runs; the per-transaction storage
// variables below only feed the database's row policies as a second layer.
// Every core write path goes through Run so partial writes can never become
// visible.
type Scope struct {
	db       *gorm.DB
	hashSalt string
}

func NewScope(db *gorm.DB, hashSalt string) *Scope {
	return &Scope{db: db, hashSalt: hashSalt}
}

// DB exposes the underlying handle for migrations and test seeding; request
// paths go through Run.
func (s *Scope) DB() *gorm.DB { return s.db }

// Run executes fn inside one transaction: commit on nil, full rollback on any
// error. The connection is released either way.
func (s *Scope) Run(ctx context.Context, id Identity, action authz.Action, fn func(tx *gorm.DB) error) error {
	if err := authz.Require(id.Role, action); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.applySessionVars(tx, id); err != nil {
			return err
		}
		return fn(tx)
	})
}

// applySessionVars sets the transaction-local variables the postgres row
// policies read. set_config(..., true) scopes them to this transaction only.
// Other dialects (sqlite in tests) have no row policies to feed.
func (s *Scope) applySessionVars(tx *gorm.DB, id Identity) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	role := id.Role
	if role == "" {
		role = authz.RoleAnonymous
	}
	if s.hashSalt != "" {
		if err := tx.Exec("SELECT set_config('app.hash_salt', ?, true)", s.hashSalt).Error; err != nil {
			return fmt.Errorf("set hash salt: %w", err)
		}
	}
	if id.Email != "" {
		if err := tx.Exec("SELECT set_config('app.user_email', ?, true)", id.Email).Error; err != nil {
			return fmt.Errorf("set user email: %w", err)
		}
	}
	if err := tx.Exec("SELECT set_config('app.user_role', ?, true)", string(role)).Error; err != nil {
		return fmt.Errorf("set user role: %w", err)
	}
	return nil
}

// lockForUpdate adds a row lock on dialects that support SELECT FOR UPDATE.
// On sqlite the surrounding transaction plus the conditional completion
// update give the same at-most-once effect.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(forUpdateClause)
	}
	return tx
}
