package service

import (
	"context"
	"testing"
	"time"

	"portal/internal/apperr"
	"portal/internal/model"
	"portal/internal/rbac"
)

func TestStatisticsCountLiveRows(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	stats := NewStatisticsService(env.repos.Statistics)

	sales := env.createUser(t, "sales@x.com", rbac.RoleSales)
	env.createUser(t, "c@x.com", rbac.RoleCustomer)
	gone := env.createUser(t, "gone@x.com", rbac.RoleCustomer)
	if err := env.users.Delete(ctx, env.admin, gone.UserID); err != nil {
		t.Fatal(err)
	}

	env.createProduct(t, sales, ProductInput{Name: "Pallet", Price: "10.50", Stock: 2})
	env.createProduct(t, sales, ProductInput{Name: "Crate", Price: "4", Stock: 10, Status: model.ProductStatusInactive})
	env.createProduct(t, sales, ProductInput{Name: "Tape", Price: "1"})
	deleted := env.createProduct(t, sales, ProductInput{Name: "Old", Price: "100", Stock: 100})
	if err := env.products.Delete(ctx, sales, deleted); err != nil {
		t.Fatal(err)
	}
	env.bulletins.Create(ctx, sales, BulletinInput{Type: model.BulletinTypeHiring, Title: "Driver", Description: "x"})
	env.contacts.Submit(ctx, validContact())

	got, err := stats.GetStatistics(ctx, time.Time{}, time.Now().AddDate(10, 0, 0))
	if err != nil {
		t.Fatal(err)
	}

	if got.UsersByRole["customer_user"] != 1 || got.UsersByRole["sales_user"] != 1 || got.UsersByRole["admin"] != 0 {
		t.Errorf("users by role %v", got.UsersByRole)
	}
	if len(got.UsersByRole) != len(rbac.AllRoles) {
		t.Errorf("every role should be reported, got %v", got.UsersByRole)
	}
	if got.ProductsByStatus[model.ProductStatusActive] != 2 || got.ProductsByStatus[model.ProductStatusInactive] != 1 ||
		got.ProductsByStatus[model.ProductStatusOutOfStock] != 0 {
		t.Errorf("products by status %v", got.ProductsByStatus)
	}
	if got.BulletinsByType[model.BulletinTypeHiring] != 1 || got.BulletinsByType[model.BulletinTypeEvent] != 0 {
		t.Errorf("bulletins by type %v", got.BulletinsByType)
	}
	if got.ContactsByStatus[model.ContactStatusNew] != 1 {
		t.Errorf("contacts by status %v", got.ContactsByStatus)
	}
	if got.CreatedInRange != (model.PeriodCounts{Users: 2, Products: 3, Bulletins: 1, Contacts: 1}) {
		t.Errorf("created in range %+v", got.CreatedInRange)
	}

	if got.TotalStockValue.String() != "61" {
		t.Errorf("total stock value %s", got.TotalStockValue)
	}
	if len(got.TopStockedProducts) != 2 || got.TopStockedProducts[0].ProductName != "Crate" ||
		got.TopStockedProducts[1].StockValue.String() != "21" {
		t.Errorf("top stocked %+v", got.TopStockedProducts)
	}
}

func TestStatisticsTimeRange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	stats := NewStatisticsService(env.repos.Statistics)

	// Memory rows are stamped in early 2024.
	env.contacts.Submit(ctx, validContact())
	got, err := stats.GetStatistics(ctx, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2030, 2, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if got.CreatedInRange.Contacts != 0 || got.ContactsByStatus[model.ContactStatusNew] != 1 {
		t.Errorf("range should only bound created_in_range: %+v", got)
	}
	if got.TopStockedProducts == nil {
		t.Error("empty ranking should encode as []")
	}

	_, err = stats.GetStatistics(ctx, time.Now(), time.Now().Add(-time.Hour))
	wantKind(t, err, apperr.KindValidation)
}
