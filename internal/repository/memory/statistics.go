package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"portal/internal/model"
	"portal/internal/repository"

	"github.com/shopspring/decimal"
)

type statisticsRepo struct{ s *Store }

func (r *statisticsRepo) CountBy(_ context.Context, b repository.Breakdown) ([]model.GroupCount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := map[string]int64{}
	switch b {
	case repository.UsersByRole:
		for _, u := range r.s.users {
			if u.DeletedAt.Valid {
				continue
			}
			if role, ok := r.s.roles[u.RoleID]; ok {
				counts[role.Name]++
			}
		}
	case repository.UsersByStatus:
		for _, u := range r.s.users {
			if !u.DeletedAt.Valid {
				counts[u.Status]++
			}
		}
	case repository.ProductsByStatus:
		for _, p := range r.s.products {
			if !p.DeletedAt.Valid {
				counts[p.Status]++
			}
		}
	case repository.BulletinsByType:
		for _, bl := range r.s.bulletins {
			if !bl.DeletedAt.Valid {
				counts[bl.Type]++
			}
		}
	case repository.BulletinsByStatus:
		for _, bl := range r.s.bulletins {
			if !bl.DeletedAt.Valid {
				counts[bl.Status]++
			}
		}
	case repository.ContactsByStatus:
		for _, c := range r.s.contacts {
			counts[c.Status]++
		}
	default:
		return nil, fmt.Errorf("unknown breakdown %d", b)
	}

	out := make([]model.GroupCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, model.GroupCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *statisticsRepo) CreatedBetween(_ context.Context, start, end time.Time) (model.PeriodCounts, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	in := func(t time.Time) bool { return !t.Before(start) && !t.After(end) }
	var counts model.PeriodCounts
	for _, u := range r.s.users {
		if !u.DeletedAt.Valid && in(u.CreatedAt) {
			counts.Users++
		}
	}
	for _, p := range r.s.products {
		if !p.DeletedAt.Valid && in(p.CreatedAt) {
			counts.Products++
		}
	}
	for _, b := range r.s.bulletins {
		if !b.DeletedAt.Valid && in(b.CreatedAt) {
			counts.Bulletins++
		}
	}
	for _, c := range r.s.contacts {
		if in(c.CreatedAt) {
			counts.Contacts++
		}
	}
	return counts, nil
}

func (r *statisticsRepo) StockValue(_ context.Context, limit int) (decimal.Decimal, []model.StockRanking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	total := decimal.Zero
	var rankings []model.StockRanking
	for _, p := range r.s.products {
		if p.DeletedAt.Valid {
			continue
		}
		value := p.Price.Mul(decimal.NewFromInt(int64(p.Stock)))
		total = total.Add(value)
		if p.Stock > 0 {
			rankings = append(rankings, model.StockRanking{
				ProductID: p.ID, ProductName: p.Name, Stock: p.Stock, Price: p.Price, StockValue: value,
			})
		}
	}
	sort.Slice(rankings, func(i, j int) bool {
		if c := rankings[i].StockValue.Cmp(rankings[j].StockValue); c != 0 {
			return c > 0
		}
		return rankings[i].ProductName < rankings[j].ProductName
	})
	if limit > 0 && len(rankings) > limit {
		rankings = rankings[:limit]
	}
	return total, rankings, nil
}
