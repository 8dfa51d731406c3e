package repository

import (
	"context"
	"fmt"
	"time"

	"portal/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Breakdown names one grouped count shown on the admin dashboard.
type Breakdown int

const (
	UsersByRole Breakdown = iota
	UsersByStatus
	ProductsByStatus
	BulletinsByType
	BulletinsByStatus
	ContactsByStatus
)

// StatisticsRepository aggregates over live rows. Soft-deleted users, products and bulletins are excluded.
type StatisticsRepository interface {
	CountBy(ctx context.Context, b Breakdown) ([]model.GroupCount, error)
	CreatedBetween(ctx context.Context, start, end time.Time) (model.PeriodCounts, error)
	StockValue(ctx context.Context, limit int) (total decimal.Decimal, top []model.StockRanking, err error)
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

func (r *statisticsRepository) CountBy(ctx context.Context, b Breakdown) ([]model.GroupCount, error) {
	q := r.db.WithContext(ctx)
	switch b {
	case UsersByRole:
		q = q.Model(&model.User{}).Joins("JOIN roles ON roles.id = users.role_id").
			Select("roles.name AS name, COUNT(*) AS count").Group("roles.name")
	case UsersByStatus:
		q = q.Model(&model.User{}).Select("status AS name, COUNT(*) AS count").Group("status")
	case ProductsByStatus:
		q = q.Model(&model.Product{}).Select("status AS name, COUNT(*) AS count").Group("status")
	case BulletinsByType:
		q = q.Model(&model.Bulletin{}).Select("type AS name, COUNT(*) AS count").Group("type")
	case BulletinsByStatus:
		q = q.Model(&model.Bulletin{}).Select("status AS name, COUNT(*) AS count").Group("status")
	case ContactsByStatus:
		q = q.Model(&model.ContactSubmission{}).Select("status AS name, COUNT(*) AS count").Group("status")
	default:
		return nil, fmt.Errorf("unknown breakdown %d", b)
	}

	var rows []model.GroupCount
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count breakdown %d: %w", b, err)
	}
	return rows, nil
}

func (r *statisticsRepository) CreatedBetween(ctx context.Context, start, end time.Time) (model.PeriodCounts, error) {
	var counts model.PeriodCounts
	targets := []struct {
		table any
		dst   *int64
	}{
		{&model.User{}, &counts.Users},
		{&model.Product{}, &counts.Products},
		{&model.Bulletin{}, &counts.Bulletins},
		{&model.ContactSubmission{}, &counts.Contacts},
	}
	for _, t := range targets {
		if err := r.db.WithContext(ctx).Model(t.table).
			Where("created_at >= ? AND created_at <= ?", start, end).
			Count(t.dst).Error; err != nil {
			return counts, fmt.Errorf("failed to count created rows: %w", err)
		}
	}
	return counts, nil
}

// StockValue returns the summed price * stock of live products and the limit most valuable ones.
func (r *statisticsRepository) StockValue(ctx context.Context, limit int) (decimal.Decimal, []model.StockRanking, error) {
	var total struct {
		Value decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&model.Product{}).
		Select("COALESCE(SUM(price * stock), 0) AS value").
		Scan(&total).Error; err != nil {
		return decimal.Zero, nil, fmt.Errorf("failed to sum stock value: %w", err)
	}

	var rankings []model.StockRanking
	if err := r.db.WithContext(ctx).Model(&model.Product{}).
		Select("id AS product_id, name AS product_name, stock, price, price * stock AS stock_value").
		Where("stock > 0").
		Order("stock_value DESC, name ASC").
		Limit(limit).
		Scan(&rankings).Error; err != nil {
		return decimal.Zero, nil, fmt.Errorf("failed to query top stocked products: %w", err)
	}
	return total.Value, rankings, nil
}
