package repository

import (
	"context"

	"portal/internal/model"

	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *model.ProductCategory) error
	List(ctx context.Context) ([]model.ProductCategory, error)
	FindBySlug(ctx context.Context, slug string) (*model.ProductCategory, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *model.ProductCategory) error {
	return translate(GetDB(ctx, r.db).Create(category).Error)
}

func (r *categoryRepository) List(ctx context.Context) ([]model.ProductCategory, error) {
	var categories []model.ProductCategory
	if err := GetDB(ctx, r.db).Order("name asc").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) FindBySlug(ctx context.Context, slug string) (*model.ProductCategory, error) {
	var category model.ProductCategory
	if err := GetDB(ctx, r.db).Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, translate(err)
	}
	return &category, nil
}
