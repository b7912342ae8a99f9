package repository

import (
	"context"
	"errors"

	"github.com/campuspulse/moodmeter-service/internal/authz"
	"github.com/campuspulse/moodmeter-service/internal/domain"
	"github.com/campuspulse/moodmeter-service/internal/observability"

	"gorm.io/gorm"
)

var ErrMentorNotFound = errors.New("mentor not found")

type CatalogRepository interface {
	Communities(ctx context.Context, id Identity) ([]domain.Community, error)
	CommunityColor(ctx context.Context, id Identity, communityID uint) (string, error)
	Mentors(ctx context.Context, id Identity) ([]domain.Mentor, error)
	MentorByEmail(ctx context.Context, id Identity, email string) (*domain.Mentor, error)
	Reasons(ctx context.Context, id Identity) ([]domain.Reason, error)
}

type GormCatalogRepository struct{ scope *Scope }

func NewCatalogRepository(scope *Scope) CatalogRepository {
	return &GormCatalogRepository{scope: scope}
}

func (r *GormCatalogRepository) Communities(ctx context.Context, id Identity) ([]domain.Community, error) {
	var out []domain.Community
	err := r.scope.Run(ctx, id, authz.ActionCatalogRead, func(tx *gorm.DB) error {
		return tx.Order("name ASC").Find(&out).Error
	})
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "community", "list", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "community", "list", "success")
	return out, nil
}

func (r *GormCatalogRepository) CommunityColor(ctx context.Context, id Identity, communityID uint) (string, error) {
	var c domain.Community
	err := r.scope.Run(ctx, id, authz.ActionCatalogRead, func(tx *gorm.DB) error {
		return tx.Select("color").Where("id = ?", communityID).First(&c).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "community", "color", "not_found")
			return "", gorm.ErrRecordNotFound
		}
		observability.RecordRepositoryOperation(ctx, "community", "color", "error")
		return "", err
	}
	observability.RecordRepositoryOperation(ctx, "community", "color", "success")
	return c.Color, nil
}

func (r *GormCatalogRepository) Mentors(ctx context.Context, id Identity) ([]domain.Mentor, error) {
	var out []domain.Mentor
	err := r.scope.Run(ctx, id, authz.ActionCatalogRead, func(tx *gorm.DB) error {
		return tx.Where("active = ?", true).Order("name ASC").Find(&out).Error
	})
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "mentor", "list", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "mentor", "list", "success")
	return out, nil
}

func (r *GormCatalogRepository) MentorByEmail(ctx context.Context, id Identity, email string) (*domain.Mentor, error) {
	var m domain.Mentor
	err := r.scope.Run(ctx, id, authz.ActionCatalogRead, func(tx *gorm.DB) error {
		return tx.Where("email = ?", email).First(&m).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "mentor", "find_by_email", "not_found")
			return nil, ErrMentorNotFound
		}
		observability.RecordRepositoryOperation(ctx, "mentor", "find_by_email", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "mentor", "find_by_email", "success")
	return &m, nil
}

func (r *GormCatalogRepository) Reasons(ctx context.Context, id Identity) ([]domain.Reason, error) {
	var out []domain.Reason
	err := r.scope.Run(ctx, id, authz.ActionCatalogRead, func(tx *gorm.DB) error {
		return tx.Order("id ASC").Find(&out).Error
	})
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "reason", "list", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "reason", "list", "success")
	return out, nil
}
