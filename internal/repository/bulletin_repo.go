package repository

import (
	"context"

	"portal/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BulletinRepository interface {
	Create(ctx context.Context, bulletin *model.Bulletin) error
	Update(ctx context.Context, bulletin *model.Bulletin) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Bulletin, error)
	List(ctx context.Context, filter BulletinFilter) ([]model.Bulletin, int64, error)
}

type bulletinRepository struct {
	db *gorm.DB
}

func NewBulletinRepository(db *gorm.DB) BulletinRepository {
	return &bulletinRepository{db: db}
}

func (r *bulletinRepository) Create(ctx context.Context, bulletin *model.Bulletin) error {
	return translate(GetDB(ctx, r.db).Omit("Creator").Create(bulletin).Error)
}

func (r *bulletinRepository) Update(ctx context.Context, bulletin *model.Bulletin) error {
	res := GetDB(ctx, r.db).Model(&model.Bulletin{}).
		Where("id = ?", bulletin.ID).
		Select("type", "title", "description", "short_description", "event_date", "location", "status").
		Updates(bulletin)
	return affected(res)
}

func (r *bulletinRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return affected(GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Bulletin{}))
}

func (r *bulletinRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Bulletin, error) {
	var bulletin model.Bulletin
	if err := GetDB(ctx, r.db).Preload("Creator", unscopedCreator).First(&bulletin, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &bulletin, nil
}

func (r *bulletinRepository) List(ctx context.Context, filter BulletinFilter) ([]model.Bulletin, int64, error) {
	var bulletins []model.Bulletin
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Bulletin{})
	if filter.Type != "" {
		db = db.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		db = db.Where("title ILIKE ? ESCAPE '\\' OR description ILIKE ? ESCAPE '\\'", pattern, pattern)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := db.Preload("Creator", unscopedCreator).Order("created_at desc").Offset(filter.Offset)
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if err := q.Find(&bulletins).Error; err != nil {
		return nil, 0, err
	}

	return bulletins, total, nil
}
