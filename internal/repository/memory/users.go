package memory

import (
	"context"
	"sort"
	"time"

	"portal/internal/model"
	"portal/internal/repository"

	"github.com/google/uuid"
)

type roleRepo struct{ s *Store }

func (r *roleRepo) FindByName(_ context.Context, name string) (*model.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, role := range r.s.roles {
		if role.Name == name {
			out := role
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *roleRepo) ListAll(_ context.Context) ([]model.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]model.Role, 0, len(r.s.roles))
	for _, role := range r.s.roles {
		out = append(out, role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *roleRepo) Ensure(_ context.Context, role *model.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.roles {
		if existing.Name == role.Name {
			*role = existing
			return nil
		}
	}
	if role.ID == uuid.Nil {
		role.ID = uuid.New()
	}
	role.CreatedAt = r.s.stamp()
	role.UpdatedAt = role.CreatedAt
	r.s.roles[role.ID] = *role
	return nil
}

type userRepo struct{ s *Store }

// withRole attaches the role join. Callers hold the lock.
func (r *userRepo) withRole(u model.User) *model.User {
	if role, ok := r.s.roles[u.RoleID]; ok {
		u.Role = &role
	}
	return &u
}

func (r *userRepo) emailTaken(email string, exclude uuid.UUID) bool {
	for _, u := range r.s.users {
		if !u.DeletedAt.Valid && u.Email == email && u.ID != exclude {
			return true
		}
	}
	return false
}

func (r *userRepo) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.emailTaken(user.Email, uuid.Nil) {
		return repository.ErrDuplicate
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Status == "" {
		user.Status = model.UserStatusActive
	}
	user.CreatedAt = r.s.stamp()
	user.UpdatedAt = user.CreatedAt
	row := *user
	row.Role = nil
	r.s.users[user.ID] = row
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok || u.DeletedAt.Valid {
		return nil, repository.ErrNotFound
	}
	return r.withRole(u), nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if !u.DeletedAt.Valid && u.Email == email {
			return r.withRole(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) EmailTaken(_ context.Context, email string, exclude uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.emailTaken(email, exclude), nil
}

func (r *userRepo) List(_ context.Context, filter repository.UserFilter) ([]model.User, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var rows []model.User
	for _, u := range r.s.users {
		if u.DeletedAt.Valid {
			continue
		}
		full := r.withRole(u)
		if filter.Role != "" && full.RoleName() != filter.Role {
			continue
		}
		if filter.Status != "" && u.Status != filter.Status {
			continue
		}
		if !matches(filter.Search, u.Name, u.Email) {
			continue
		}
		rows = append(rows, *full)
	}
	newestFirst(rows, func(u model.User) time.Time { return u.CreatedAt })
	return window(rows, filter.Page), int64(len(rows)), nil
}

func (r *userRepo) Update(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.users[user.ID]
	if !ok || row.DeletedAt.Valid {
		return repository.ErrNotFound
	}
	if r.emailTaken(user.Email, user.ID) {
		return repository.ErrDuplicate
	}
	row.Name, row.Email, row.RoleID, row.Status = user.Name, user.Email, user.RoleID, user.Status
	row.UpdatedAt = r.s.now()
	r.s.users[user.ID] = row
	return nil
}

func (r *userRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.users[id]
	if !ok || row.DeletedAt.Valid {
		return repository.ErrNotFound
	}
	row.Password = hash
	r.s.users[id] = row
	return nil
}

func (r *userRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.users[id]
	if !ok || row.DeletedAt.Valid {
		return repository.ErrNotFound
	}
	row.DeletedAt = r.s.deletedNow()
	r.s.users[id] = row
	return nil
}

func (r *userRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.users)), nil
}

type tokenRepo struct{ s *Store }

func (r *tokenRepo) Store(_ context.Context, token *model.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tokens[token.TokenHash]; ok {
		return repository.ErrDuplicate
	}
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	token.CreatedAt = r.s.now()
	r.s.tokens[token.TokenHash] = *token
	return nil
}

func (r *tokenRepo) FindValid(_ context.Context, hash string, now time.Time) (*model.RefreshToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tokens[hash]
	if !ok || !t.ExpiresAt.After(now) {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *tokenRepo) DeleteByHash(_ context.Context, hash string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tokens[hash]; !ok {
		return 0, nil
	}
	delete(r.s.tokens, hash)
	return 1, nil
}

func (r *tokenRepo) DeleteByUser(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for hash, t := range r.s.tokens {
		if t.UserID == userID {
			delete(r.s.tokens, hash)
		}
	}
	return nil
}
