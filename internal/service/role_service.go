package service

import (
	"context"

	"portal/internal/apperr"
	"portal/internal/model"
	"portal/internal/rbac"
	"portal/internal/repository"
)

type RoleResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

// RoleService exposes the fixed role set and keeps the roles table in sync with the registry.
type RoleService interface {
	ListRoles(ctx context.Context) ([]RoleResponse, error)
	EnsureDefaultRoles(ctx context.Context) error
}

type roleService struct {
	repo     repository.RoleRepository
	registry *rbac.Registry
}

func NewRoleService(repo repository.RoleRepository, registry *rbac.Registry) RoleService {
	return &roleService{repo: repo, registry: registry}
}

func (s *roleService) ListRoles(ctx context.Context) ([]RoleResponse, error) {
	roles, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	out := make([]RoleResponse, 0, len(roles))
	for _, r := range roles {
		role := s.registry.Resolve(r.Name)
		out = append(out, RoleResponse{
			ID:          r.ID.String(),
			Name:        r.Name,
			Description: r.Description,
			Permissions: s.registry.Permissions(role),
		})
	}
	return out, nil
}

// EnsureDefaultRoles creates any registry role missing from the table. Existing rows are kept.
func (s *roleService) EnsureDefaultRoles(ctx context.Context) error {
	for _, role := range rbac.AllRoles {
		row := &model.Role{Name: string(role), Description: s.registry.Description(role)}
		if err := s.repo.Ensure(ctx, row); err != nil {
			return apperr.Internal(err)
		}
	}
	return nil
}
