// Package memory provides in-process implementations of the repository interfaces.
// It is used by service and handler tests and mirrors the gorm repositories' semantics:
// soft-deleted rows are hidden, unique keys are enforced among live rows, and lists are
// ordered newest first.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"portal/internal/model"
	"portal/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store holds every table. The repositories returned by its accessors share it.
type Store struct {
	mu sync.RWMutex

	roles      map[uuid.UUID]model.Role
	users      map[uuid.UUID]model.User
	tokens     map[string]model.RefreshToken
	categories map[uuid.UUID]model.ProductCategory
	products   map[uuid.UUID]model.Product
	bulletins  map[uuid.UUID]model.Bulletin
	contacts   map[uuid.UUID]model.ContactSubmission
	audit      []model.AuditLog

	now  func() time.Time
	seq  time.Duration
	base time.Time
}

func NewStore() *Store {
	return &Store{
		roles:      map[uuid.UUID]model.Role{},
		users:      map[uuid.UUID]model.User{},
		tokens:     map[string]model.RefreshToken{},
		categories: map[uuid.UUID]model.ProductCategory{},
		products:   map[uuid.UUID]model.Product{},
		bulletins:  map[uuid.UUID]model.Bulletin{},
		contacts:   map[uuid.UUID]model.ContactSubmission{},
		now:        time.Now,
		base:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// SetClock replaces the clock used for soft-delete timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// stamp returns strictly increasing creation times so ordering is deterministic.
// Callers hold s.mu.
func (s *Store) stamp() time.Time {
	s.seq += time.Second
	return s.base.Add(s.seq)
}

func (s *Store) deletedNow() gorm.DeletedAt {
	return gorm.DeletedAt{Time: s.now(), Valid: true}
}

func (s *Store) Users() repository.UserRepository            { return &userRepo{s} }
func (s *Store) Roles() repository.RoleRepository            { return &roleRepo{s} }
func (s *Store) Tokens() repository.TokenRepository          { return &tokenRepo{s} }
func (s *Store) Categories() repository.CategoryRepository   { return &categoryRepo{s} }
func (s *Store) Products() repository.ProductRepository      { return &productRepo{s} }
func (s *Store) Bulletins() repository.BulletinRepository    { return &bulletinRepo{s} }
func (s *Store) Contacts() repository.ContactRepository      { return &contactRepo{s} }
func (s *Store) Audit() repository.AuditRepository           { return &auditRepo{s} }
func (s *Store) Statistics() repository.StatisticsRepository { return &statisticsRepo{s} }
func (s *Store) TxManager() repository.TransactionManager    { return txManager{} }

// Repositories returns every repository backed by this store.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Tx:         s.TxManager(),
		Users:      s.Users(),
		Roles:      s.Roles(),
		Tokens:     s.Tokens(),
		Categories: s.Categories(),
		Products:   s.Products(),
		Bulletins:  s.Bulletins(),
		Contacts:   s.Contacts(),
		Audit:      s.Audit(),
		Statistics: s.Statistics(),
	}
}

// RawUser returns the stored row including soft-deleted ones.
func (s *Store) RawUser(id uuid.UUID) (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok
}

// RawProduct returns the stored row including soft-deleted ones.
func (s *Store) RawProduct(id uuid.UUID) (model.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	return p, ok
}

// RawBulletin returns the stored row including soft-deleted ones.
func (s *Store) RawBulletin(id uuid.UUID) (model.Bulletin, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bulletins[id]
	return b, ok
}

// TokensFor returns the refresh tokens stored for a user.
func (s *Store) TokensFor(userID uuid.UUID) []model.RefreshToken {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.RefreshToken
	for _, t := range s.tokens {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}

// txManager runs fn directly; the store lock makes each call atomic on its own.
type txManager struct{}

func (txManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

func window[T any](rows []T, page repository.Page) []T {
	if page.Offset >= len(rows) {
		return []T{}
	}
	rows = rows[page.Offset:]
	if page.Limit > 0 && page.Limit < len(rows) {
		rows = rows[:page.Limit]
	}
	return rows
}

func newestFirst[T any](rows []T, created func(T) time.Time) {
	sort.SliceStable(rows, func(i, j int) bool {
		return created(rows[i]).After(created(rows[j]))
	})
}

func matches(search string, fields ...string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
