package repository

import (
	"context"
	"time"

	"portal/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TokenRepository persists refresh token hashes.
type TokenRepository interface {
	Store(ctx context.Context, token *model.RefreshToken) error
	FindValid(ctx context.Context, hash string, now time.Time) (*model.RefreshToken, error)
	DeleteByHash(ctx context.Context, hash string) (int64, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Store(ctx context.Context, token *model.RefreshToken) error {
	return translate(GetDB(ctx, r.db).Omit("User").Create(token).Error)
}

// FindValid returns the stored token with the given hash if it has not expired.
func (r *tokenRepository) FindValid(ctx context.Context, hash string, now time.Time) (*model.RefreshToken, error) {
	var token model.RefreshToken
	err := GetDB(ctx, r.db).
		Where("token_hash = ? AND expires_at > ?", hash, now).
		First(&token).Error
	if err != nil {
		return nil, translate(err)
	}
	return &token, nil
}

// DeleteByHash removes the matching token and reports how many rows went away.
func (r *tokenRepository) DeleteByHash(ctx context.Context, hash string) (int64, error) {
	res := GetDB(ctx, r.db).Where("token_hash = ?", hash).Delete(&model.RefreshToken{})
	return res.RowsAffected, res.Error
}

func (r *tokenRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("user_id = ?", userID).Delete(&model.RefreshToken{}).Error
}
