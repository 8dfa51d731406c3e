package service

import (
	"context"
	"time"

	"portal/internal/apperr"
	"portal/internal/model"
	"portal/internal/rbac"
	"portal/internal/repository"
)

const topStockedLimit = 5

type StatisticsService interface {
	GetStatistics(ctx context.Context, startDate, endDate time.Time) (*model.DashboardStatistics, error)
}

type statisticsService struct {
	repo repository.StatisticsRepository
}

func NewStatisticsService(repo repository.StatisticsRepository) StatisticsService {
	return &statisticsService{repo: repo}
}

// GetStatistics counts live rows per role, status and type, rows created inside [startDate, endDate],
// and the stock value of the catalog.
func (s *statisticsService) GetStatistics(ctx context.Context, startDate, endDate time.Time) (*model.DashboardStatistics, error) {
	if endDate.Before(startDate) {
		return nil, apperr.Validation("end_date must not be before start_date")
	}

	roleNames := make([]string, 0, len(rbac.AllRoles))
	for _, r := range rbac.AllRoles {
		roleNames = append(roleNames, r.String())
	}

	stats := &model.DashboardStatistics{
		TimeRangeStartDate: startDate,
		TimeRangeEndDate:   endDate,
	}
	breakdowns := []struct {
		b     repository.Breakdown
		known []string
		dst   *map[string]int64
	}{
		{repository.UsersByRole, roleNames, &stats.UsersByRole},
		{repository.UsersByStatus, model.UserStatuses, &stats.UsersByStatus},
		{repository.ProductsByStatus, model.ProductStatuses, &stats.ProductsByStatus},
		{repository.BulletinsByType, model.BulletinTypes, &stats.BulletinsByType},
		{repository.BulletinsByStatus, model.BulletinStatuses, &stats.BulletinsByStatus},
		{repository.ContactsByStatus, model.ContactStatuses, &stats.ContactsByStatus},
	}
	for _, bd := range breakdowns {
		rows, err := s.repo.CountBy(ctx, bd.b)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		// Every known key is reported, zero or not.
		counts := make(map[string]int64, len(bd.known))
		for _, k := range bd.known {
			counts[k] = 0
		}
		for _, row := range rows {
			counts[row.Name] += row.Count
		}
		*bd.dst = counts
	}

	period, err := s.repo.CreatedBetween(ctx, startDate, endDate)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	stats.CreatedInRange = period

	total, top, err := s.repo.StockValue(ctx, topStockedLimit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if top == nil {
		top = []model.StockRanking{}
	}
	stats.TotalStockValue = total
	stats.TopStockedProducts = top

	return stats, nil
}
