package repository

import (
	"context"
	"time"

	"github.com/tavern-lab/backend/internal/entity"
	"github.com/tavern-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type RefreshTokenRepository interface {
	Create(context.Context, *entity.RefreshToken) error
	Get(ctx context.Context, family string) (*entity.RefreshToken, error)

	// Rotate moves the family from counter to counter+1 and extends its
	// expiration. It returns gorm.ErrRecordNotFound when another refresh
	// already used counter.
	Rotate(ctx context.Context, family string, counter uint64) error
	Delete(ctx context.Context, family string) error
	DeleteExpired(ctx context.Context, userID string) (int64, error)
}

type refreshTokenRepository struct{}

func NewRefreshTokenRepository() *refreshTokenRepository {
	return &refreshTokenRepository{}
}

func (r *refreshTokenRepository) Create(ctx context.Context, token *entity.RefreshToken) error {
	return xcontext.DB(ctx).Create(token).Error
}

func (r *refreshTokenRepository) Get(ctx context.Context, family string) (*entity.RefreshToken, error) {
	var token entity.RefreshToken
	if err := xcontext.DB(ctx).Take(&token, "family=?", family).Error; err != nil {
		return nil, err
	}

	return &token, nil
}

func (r *refreshTokenRepository) Rotate(ctx context.Context, family string, counter uint64) error {
	expiration := time.Now().Add(xcontext.Configs(ctx).Auth.RefreshToken.Expiration)
	return updateOne(xcontext.DB(ctx).
		Model(&entity.RefreshToken{}).
		Where("family=? AND counter=?", family, counter).
		Updates(map[string]any{
			"counter":    gorm.Expr("counter+1"),
			"expiration": expiration,
		}))
}

func (r *refreshTokenRepository) Delete(ctx context.Context, family string) error {
	return xcontext.DB(ctx).Where("family=?", family).Delete(&entity.RefreshToken{}).Error
}

func (r *refreshTokenRepository) DeleteExpired(ctx context.Context, userID string) (int64, error) {
	tx := xcontext.DB(ctx).
		Where("user_id=? AND expiration<?", userID, time.Now()).
		Delete(&entity.RefreshToken{})
	return tx.RowsAffected, tx.Error
}
