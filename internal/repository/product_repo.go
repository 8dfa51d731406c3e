package repository

import (
	"context"
	"time"

	"portal/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	UpdateImageURL(ctx context.Context, id uuid.UUID, url string) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error)
	ListPurgeable(ctx context.Context, deletedBefore time.Time) ([]model.Product, error)
	ClearImageURL(ctx context.Context, id uuid.UUID) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// unscopedCreator keeps the creator name visible after the user is soft deleted.
func unscopedCreator(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	return translate(GetDB(ctx, r.db).Omit("Category", "Creator").Create(product).Error)
}

// Update replaces every mutable column of a live product.
func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	res := GetDB(ctx, r.db).Model(&model.Product{}).
		Where("id = ?", product.ID).
		Select("name", "description", "short_description", "price", "stock", "category_id", "image_url", "status").
		Updates(product)
	return affected(res)
}

func (r *productRepository) UpdateImageURL(ctx context.Context, id uuid.UUID, url string) error {
	return affected(GetDB(ctx, r.db).Model(&model.Product{}).Where("id = ?", id).Update("image_url", url))
}

func (r *productRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return affected(GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Product{}))
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := GetDB(ctx, r.db).
		Preload("Category").
		Preload("Creator", unscopedCreator).
		First(&product, "products.id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Product{})
	if filter.CategorySlug != "" {
		db = db.Joins("LEFT JOIN product_categories pc ON pc.id = products.category_id").
			Where("pc.slug = ?", filter.CategorySlug)
	}
	if filter.Status != "" {
		db = db.Where("products.status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		db = db.Where("products.name ILIKE ? ESCAPE '\\' OR products.description ILIKE ? ESCAPE '\\'", pattern, pattern)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := db.Preload("Category").
		Preload("Creator", unscopedCreator).
		Order("products.created_at desc").
		Offset(filter.Offset)
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if err := q.Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// ListPurgeable returns soft-deleted products removed before deletedBefore that still reference an image.
func (r *productRepository) ListPurgeable(ctx context.Context, deletedBefore time.Time) ([]model.Product, error) {
	var products []model.Product
	err := GetDB(ctx, r.db).Unscoped().
		Where("deleted_at IS NOT NULL AND deleted_at < ?", deletedBefore).
		Where("image_url <> ''").
		Order("deleted_at asc").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) ClearImageURL(ctx context.Context, id uuid.UUID) error {
	return affected(GetDB(ctx, r.db).Unscoped().Model(&model.Product{}).Where("id = ?", id).Update("image_url", ""))
}
