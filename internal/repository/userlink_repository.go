package repository

import (
	"context"
	"errors"

	"github.com/campuspulse/moodmeter-service/internal/authz"
	"github.com/campuspulse/moodmeter-service/internal/domain"
	"github.com/campuspulse/moodmeter-service/internal/observability"

	"gorm.io/gorm"
)

var (
	ErrUserAlreadyLinked = errors.New("user already has a linked matricula")
	ErrMatriculaTaken    = errors.New("matricula already linked to another user")
)

type UserLinkRepository interface {
	Link(ctx context.Context, id Identity, userID, matriculaHash string) error
	FindByUser(ctx context.Context, id Identity, userID string) (*domain.UserLink, error)
}

type GormUserLinkRepository struct{ scope *Scope }

func NewUserLinkRepository(scope *Scope) UserLinkRepository {
	return &GormUserLinkRepository{scope: scope}
}

// Link binds userID to matriculaHash. Both duplicate directions surface as
// distinct conflicts so callers can render specific messages.
func (r *GormUserLinkRepository) Link(ctx context.Context, id Identity, userID, matriculaHash string) error {
	err := r.scope.Run(ctx, id, authz.ActionLinkWrite, func(tx *gorm.DB) error {
		var existing domain.UserLink
		err := tx.Where("user_id = ?", userID).First(&existing).Error
		if err == nil {
			return ErrUserAlreadyLinked
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		err = tx.Where("matricula_hash = ?", matriculaHash).First(&existing).Error
		if err == nil {
			return ErrMatriculaTaken
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.Create(&domain.UserLink{UserID: userID, MatriculaHash: matriculaHash}).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrUserAlreadyLinked), errors.Is(err, ErrMatriculaTaken):
			observability.RecordRepositoryOperation(ctx, "user_link", "link", "conflict")
		default:
			observability.RecordRepositoryOperation(ctx, "user_link", "link", "error")
		}
		return err
	}
	observability.RecordRepositoryOperation(ctx, "user_link", "link", "success")
	return nil
}

func (r *GormUserLinkRepository) FindByUser(ctx context.Context, id Identity, userID string) (*domain.UserLink, error) {
	var link domain.UserLink
	err := r.scope.Run(ctx, id, authz.ActionCatalogRead, func(tx *gorm.DB) error {
		return tx.Where("user_id = ?", userID).First(&link).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "user_link", "find_by_user", "not_found")
			return nil, gorm.ErrRecordNotFound
		}
		observability.RecordRepositoryOperation(ctx, "user_link", "find_by_user", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "user_link", "find_by_user", "success")
	return &link, nil
}
