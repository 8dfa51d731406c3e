package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GroupCount is one row of a GROUP BY count.
type GroupCount struct {
	Name  string
	Count int64
}

// PeriodCounts counts rows created inside a time range.
type PeriodCounts struct {
	Users     int64 `json:"users"`
	Products  int64 `json:"products"`
	Bulletins int64 `json:"bulletins"`
	Contacts  int64 `json:"contacts"`
}

// StockRanking ranks a live product by the value of its stock on hand
type StockRanking struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Stock       int             `json:"stock"`
	Price       decimal.Decimal `json:"price"`
	StockValue  decimal.Decimal `json:"stock_value"`
}

// DashboardStatistics aggregates live-row breakdowns, activity inside a time range and stock value
type DashboardStatistics struct {
	UsersByRole        map[string]int64 `json:"users_by_role"`
	UsersByStatus      map[string]int64 `json:"users_by_status"`
	ProductsByStatus   map[string]int64 `json:"products_by_status"`
	BulletinsByType    map[string]int64 `json:"bulletins_by_type"`
	BulletinsByStatus  map[string]int64 `json:"bulletins_by_status"`
	ContactsByStatus   map[string]int64 `json:"contacts_by_status"`
	CreatedInRange     PeriodCounts     `json:"created_in_range"`
	TotalStockValue    decimal.Decimal  `json:"total_stock_value"`
	TopStockedProducts []StockRanking   `json:"top_stocked_products"`
	TimeRangeStartDate time.Time        `json:"time_range_start_date"`
	TimeRangeEndDate   time.Time        `json:"time_range_end_date"`
}
