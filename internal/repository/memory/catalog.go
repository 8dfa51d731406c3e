package memory

import (
	"context"
	"sort"
	"time"

	"portal/internal/model"
	"portal/internal/repository"

	"github.com/google/uuid"
)

type categoryRepo struct{ s *Store }

func (r *categoryRepo) Create(_ context.Context, category *model.ProductCategory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.categories {
		if c.Slug == category.Slug {
			return repository.ErrDuplicate
		}
	}
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	category.CreatedAt = r.s.stamp()
	category.UpdatedAt = category.CreatedAt
	r.s.categories[category.ID] = *category
	return nil
}

func (r *categoryRepo) List(_ context.Context) ([]model.ProductCategory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]model.ProductCategory, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *categoryRepo) FindBySlug(_ context.Context, slug string) (*model.ProductCategory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.categories {
		if c.Slug == slug {
			out := c
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

// creator resolves a creator including soft-deleted users. Callers hold the lock.
func (s *Store) creator(id *uuid.UUID) *model.User {
	if id == nil {
		return nil
	}
	u, ok := s.users[*id]
	if !ok {
		return nil
	}
	return &u
}

type productRepo struct{ s *Store }

func (r *productRepo) joined(p model.Product) model.Product {
	if p.CategoryID != nil {
		if c, ok := r.s.categories[*p.CategoryID]; ok {
			p.Category = &c
		}
	}
	p.Creator = r.s.creator(p.CreatedBy)
	return p
}

func (r *productRepo) Create(_ context.Context, product *model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if product.Status == "" {
		product.Status = model.ProductStatusActive
	}
	product.CreatedAt = r.s.stamp()
	product.UpdatedAt = product.CreatedAt
	row := *product
	row.Category, row.Creator = nil, nil
	r.s.products[product.ID] = row
	return nil
}

func (r *productRepo) Update(_ context.Context, product *model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.products[product.ID]
	if !ok || row.DeletedAt.Valid {
		return repository.ErrNotFound
	}
	row.Name = product.Name
	row.Description = product.Description
	row.ShortDescription = product.ShortDescription
	row.Price = product.Price
	row.Stock = product.Stock
	row.CategoryID = product.CategoryID
	row.ImageURL = product.ImageURL
	row.Status = product.Status
	row.UpdatedAt = r.s.now()
	r.s.products[product.ID] = row
	return nil
}

func (r *productRepo) UpdateImageURL(_ context.Context, id uuid.UUID, url string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.products[id]
	if !ok || row.DeletedAt.Valid {
		return repository.ErrNotFound
	}
	row.ImageURL = url
	r.s.products[id] = row
	return nil
}

func (r *productRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.products[id]
	if !ok || row.DeletedAt.Valid {
		return repository.ErrNotFound
	}
	row.DeletedAt = r.s.deletedNow()
	r.s.products[id] = row
	return nil
}

func (r *productRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.products[id]
	if !ok || row.DeletedAt.Valid {
		return nil, repository.ErrNotFound
	}
	out := r.joined(row)
	return &out, nil
}

func (r *productRepo) List(_ context.Context, filter repository.ProductFilter) ([]model.Product, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var rows []model.Product
	for _, p := range r.s.products {
		if p.DeletedAt.Valid {
			continue
		}
		full := r.joined(p)
		if filter.CategorySlug != "" && (full.Category == nil || full.Category.Slug != filter.CategorySlug) {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if !matches(filter.Search, p.Name, p.Description) {
			continue
		}
		rows = append(rows, full)
	}
	newestFirst(rows, func(p model.Product) time.Time { return p.CreatedAt })
	return window(rows, filter.Page), int64(len(rows)), nil
}

func (r *productRepo) ListPurgeable(_ context.Context, deletedBefore time.Time) ([]model.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var rows []model.Product
	for _, p := range r.s.products {
		if p.DeletedAt.Valid && p.DeletedAt.Time.Before(deletedBefore) && p.ImageURL != "" {
			rows = append(rows, p)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].DeletedAt.Time.Before(rows[j].DeletedAt.Time) })
	return rows, nil
}

func (r *productRepo) ClearImageURL(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	row.ImageURL = ""
	r.s.products[id] = row
	return nil
}

type bulletinRepo struct{ s *Store }

func (r *bulletinRepo) Create(_ context.Context, bulletin *model.Bulletin) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if bulletin.ID == uuid.Nil {
		bulletin.ID = uuid.New()
	}
	if bulletin.Status == "" {
		bulletin.Status = model.BulletinStatusPublished
	}
	bulletin.CreatedAt = r.s.stamp()
	bulletin.UpdatedAt = bulletin.CreatedAt
	row := *bulletin
	row.Creator = nil
	r.s.bulletins[bulletin.ID] = row
	return nil
}

func (r *bulletinRepo) Update(_ context.Context, bulletin *model.Bulletin) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.bulletins[bulletin.ID]
	if !ok || row.DeletedAt.Valid {
		return repository.ErrNotFound
	}
	row.Type = bulletin.Type
	row.Title = bulletin.Title
	row.Description = bulletin.Description
	row.ShortDescription = bulletin.ShortDescription
	row.EventDate = bulletin.EventDate
	row.Location = bulletin.Location
	row.Status = bulletin.Status
	row.UpdatedAt = r.s.now()
	r.s.bulletins[bulletin.ID] = row
	return nil
}

func (r *bulletinRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.bulletins[id]
	if !ok || row.DeletedAt.Valid {
		return repository.ErrNotFound
	}
	row.DeletedAt = r.s.deletedNow()
	r.s.bulletins[id] = row
	return nil
}

func (r *bulletinRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Bulletin, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.bulletins[id]
	if !ok || row.DeletedAt.Valid {
		return nil, repository.ErrNotFound
	}
	row.Creator = r.s.creator(row.CreatedBy)
	return &row, nil
}

func (r *bulletinRepo) List(_ context.Context, filter repository.BulletinFilter) ([]model.Bulletin, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var rows []model.Bulletin
	for _, b := range r.s.bulletins {
		if b.DeletedAt.Valid {
			continue
		}
		if filter.Type != "" && b.Type != filter.Type {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if !matches(filter.Search, b.Title, b.Description) {
			continue
		}
		b.Creator = r.s.creator(b.CreatedBy)
		rows = append(rows, b)
	}
	newestFirst(rows, func(b model.Bulletin) time.Time { return b.CreatedAt })
	return window(rows, filter.Page), int64(len(rows)), nil
}

type contactRepo struct{ s *Store }

func (r *contactRepo) Create(_ context.Context, submission *model.ContactSubmission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if submission.ID == uuid.Nil {
		submission.ID = uuid.New()
	}
	if submission.Status == "" {
		submission.Status = model.ContactStatusNew
	}
	submission.CreatedAt = r.s.stamp()
	submission.UpdatedAt = submission.CreatedAt
	r.s.contacts[submission.ID] = *submission
	return nil
}

func (r *contactRepo) List(_ context.Context, filter repository.ContactFilter) ([]model.ContactSubmission, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var rows []model.ContactSubmission
	for _, c := range r.s.contacts {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		rows = append(rows, c)
	}
	newestFirst(rows, func(c model.ContactSubmission) time.Time { return c.CreatedAt })
	return window(rows, filter.Page), int64(len(rows)), nil
}

func (r *contactRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.contacts[id]
	if !ok {
		return repository.ErrNotFound
	}
	row.Status = status
	row.UpdatedAt = r.s.now()
	r.s.contacts[id] = row
	return nil
}

func (r *contactRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.contacts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.contacts, id)
	return nil
}

type auditRepo struct{ s *Store }

func (r *auditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = r.s.stamp()
	row := *entry
	row.User = nil
	r.s.audit = append(r.s.audit, row)
	return nil
}

func (r *auditRepo) List(_ context.Context, filter repository.AuditFilter) ([]model.AuditLog, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var rows []model.AuditLog
	for _, a := range r.s.audit {
		if filter.Action != "" && a.Action != filter.Action {
			continue
		}
		if filter.EntityID != "" && a.EntityID != filter.EntityID {
			continue
		}
		a.User = r.s.creator(a.UserID)
		rows = append(rows, a)
	}
	newestFirst(rows, func(a model.AuditLog) time.Time { return a.CreatedAt })
	return window(rows, filter.Page), int64(len(rows)), nil
}
