package repository

import (
	"context"

	"github.com/tavern-lab/backend/internal/entity"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

type BadgeRepository interface {
	Create(ctx context.Context, data *entity.Badge) error
	GetByID(ctx context.Context, id string) (*entity.Badge, error)
	GetList(ctx context.Context, createdBy string) ([]entity.Badge, error)
	Delete(ctx context.Context, id string) error
}

type badgeRepository struct{}

func NewBadgeRepository() *badgeRepository {
	return &badgeRepository{}
}

func (r *badgeRepository) Create(ctx context.Context, data *entity.Badge) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *badgeRepository) GetByID(ctx context.Context, id string) (*entity.Badge, error) {
	var result entity.Badge
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

// GetList returns every badge when createdBy is empty.
func (r *badgeRepository) GetList(ctx context.Context, createdBy string) ([]entity.Badge, error) {
	tx := xcontext.DB(ctx).Order("created_at DESC")
	if createdBy != "" {
		tx = tx.Where("created_by=?", createdBy)
	}

	var result []entity.Badge
	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *badgeRepository) Delete(ctx context.Context, id string) error {
	return updateOne(xcontext.DB(ctx).Delete(&entity.Badge{}, "id=?", id))
}
