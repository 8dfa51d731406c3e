package service

import (
	"context"
	"errors"

	"portal/internal/apperr"
	"portal/internal/model"
	"portal/internal/rbac"
	"portal/internal/repository"
	"portal/internal/security"
	"portal/pkg/pagination"

	"github.com/google/uuid"
)

// DTOs for Request validation
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
	Status   string `json:"status"`
}

// UpdateUserRequest replaces every mutable field; clients resend all of them.
type UpdateUserRequest struct {
	Name   string `json:"name" binding:"required"`
	Email  string `json:"email" binding:"required,email"`
	Role   string `json:"role" binding:"required"`
	Status string `json:"status" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

type UserListQuery struct {
	Role   string
	Status string
	Search string
	pagination.Params
}

// DTO for returning User without exposing sensitive data (e.g. password)
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt string    `json:"created_at"`
	UpdatedAt string    `json:"updated_at"`
}

type UserList struct {
	Users  []UserResponse `json:"users"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// UserService defines the interface for business logic related to User
type UserService interface {
	List(ctx context.Context, q UserListQuery) (*UserList, error)
	Get(ctx context.Context, id uuid.UUID) (*UserResponse, error)
	Create(ctx context.Context, actor *rbac.Principal, req CreateUserRequest) (uuid.UUID, error)
	Update(ctx context.Context, actor *rbac.Principal, id uuid.UUID, req UpdateUserRequest) error
	Delete(ctx context.Context, actor *rbac.Principal, id uuid.UUID) error
	ChangePassword(ctx context.Context, actor *rbac.Principal, id uuid.UUID, req ChangePasswordRequest) error
}

type userService struct {
	repos    repository.Repositories
	hasher   *security.Hasher
	registry *rbac.Registry
}

// NewUserService returns a new instance of UserService
func NewUserService(repos repository.Repositories, hasher *security.Hasher, registry *rbac.Registry) UserService {
	return &userService{repos: repos, hasher: hasher, registry: registry}
}

const (
	msgUserNotFound = "User not found"
	msgEmailExists  = "Email already exists"
	msgInvalidRole  = "Invalid role"
)

// Helper: parse model to standard json API response
func toUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.RoleName(),
		Status:    user.Status,
		CreatedAt: user.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: user.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// resolveRole validates a client supplied role name and loads its row.
func (s *userService) resolveRole(ctx context.Context, name string) (*model.Role, error) {
	role, ok := s.registry.Parse(name)
	if !ok {
		return nil, apperr.Validation(msgInvalidRole)
	}
	row, err := s.repos.Roles.FindByName(ctx, string(role))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Validation(msgInvalidRole)
		}
		return nil, apperr.Internal(err)
	}
	return row, nil
}

func validUserStatus(status string) error {
	if !model.Contains(model.UserStatuses, status) {
		return apperr.Validation("Invalid status")
	}
	return nil
}

func (s *userService) List(ctx context.Context, q UserListQuery) (*UserList, error) {
	users, total, err := s.repos.Users.List(ctx, repository.UserFilter{
		Role:   q.Role,
		Status: q.Status,
		Search: q.Search,
		Page:   repository.Page{Limit: q.Limit, Offset: q.Offset},
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}

	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	return &UserList{Users: out, Total: total, Limit: q.Limit, Offset: q.Offset}, nil
}

func (s *userService) Get(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.repos.Users.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, msgUserNotFound)
	}
	res := toUserResponse(user)
	return &res, nil
}

func (s *userService) Create(ctx context.Context, actor *rbac.Principal, req CreateUserRequest) (uuid.UUID, error) {
	if req.Status == "" {
		req.Status = model.UserStatusActive
	}
	if err := validUserStatus(req.Status); err != nil {
		return uuid.Nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return uuid.Nil, apperr.Internal(err)
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
		Status:   req.Status,
	}

	err = s.repos.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		taken, err := s.repos.Users.EmailTaken(txCtx, req.Email, uuid.Nil)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict(msgEmailExists)
		}

		role, err := s.resolveRole(txCtx, req.Role)
		if err != nil {
			return err
		}
		user.RoleID = role.ID
		if err := s.repos.Users.Create(txCtx, user); err != nil {
			return err
		}
		return audit(txCtx, s.repos.Audit, actor, model.ActionCreateUser, user.ID, user.Email, map[string]any{
			"role":   role.Name,
			"status": user.Status,
		})
	})
	if err != nil {
		return uuid.Nil, conflict(err, msgEmailExists)
	}
	return user.ID, nil
}

func (s *userService) Update(ctx context.Context, actor *rbac.Principal, id uuid.UUID, req UpdateUserRequest) error {
	if err := validUserStatus(req.Status); err != nil {
		return err
	}

	err := s.repos.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repos.Users.GetByID(txCtx, id); err != nil {
			return notFound(err, msgUserNotFound)
		}

		taken, err := s.repos.Users.EmailTaken(txCtx, req.Email, id)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict(msgEmailExists)
		}

		role, err := s.resolveRole(txCtx, req.Role)
		if err != nil {
			return err
		}

		err = s.repos.Users.Update(txCtx, &model.User{
			ID:     id,
			Name:   req.Name,
			Email:  req.Email,
			RoleID: role.ID,
			Status: req.Status,
		})
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound(msgUserNotFound)
		}
		if err != nil {
			return err
		}
		return audit(txCtx, s.repos.Audit, actor, model.ActionUpdateUser, id, req.Email, map[string]any{
			"name":   req.Name,
			"role":   role.Name,
			"status": req.Status,
		})
	})
	if err != nil {
		return conflict(err, msgEmailExists)
	}
	return nil
}

// Delete soft deletes the user and revokes its refresh tokens in one transaction.
func (s *userService) Delete(ctx context.Context, actor *rbac.Principal, id uuid.UUID) error {
	err := s.repos.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		user, err := s.repos.Users.GetByID(txCtx, id)
		if err != nil {
			return notFound(err, msgUserNotFound)
		}
		if err := s.repos.Users.SoftDelete(txCtx, id); err != nil {
			return notFound(err, msgUserNotFound)
		}
		if err := s.repos.Tokens.DeleteByUser(txCtx, id); err != nil {
			return err
		}
		return audit(txCtx, s.repos.Audit, actor, model.ActionDeleteUser, id, user.Email, nil)
	})
	if err != nil {
		return passthrough(err)
	}
	return nil
}

// ChangePassword sets a new password. Owners must prove the current one; admins need not.
// Every refresh token of the user is revoked. Resets by someone other than the owner are audited.
func (s *userService) ChangePassword(ctx context.Context, actor *rbac.Principal, id uuid.UUID, req ChangePasswordRequest) error {
	if d := rbac.AuthorizeOwnerOrAdmin(actor, id); !d.Allowed {
		return d.Err()
	}

	user, err := s.repos.Users.GetByID(ctx, id)
	if err != nil {
		return notFound(err, msgUserNotFound)
	}
	if actor.UserID == id && !s.hasher.Verify(user.Password, req.CurrentPassword) {
		return apperr.Validation("Current password is incorrect")
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return apperr.Internal(err)
	}

	err = s.repos.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repos.Users.UpdatePassword(txCtx, id, hash); err != nil {
			return notFound(err, msgUserNotFound)
		}
		if err := s.repos.Tokens.DeleteByUser(txCtx, id); err != nil {
			return err
		}
		if actor.UserID == id {
			return nil
		}
		return audit(txCtx, s.repos.Audit, actor, model.ActionResetPassword, id, user.Email, nil)
	})
	if err != nil {
		return passthrough(err)
	}
	return nil
}
