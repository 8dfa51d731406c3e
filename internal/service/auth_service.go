package service

import (
	"context"
	"errors"
	"time"

	"portal/internal/apperr"
	"portal/internal/model"
	"portal/internal/rbac"
	"portal/internal/repository"
	"portal/internal/security"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// SessionUser is the public-safe user projection returned at login.
type SessionUser struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  rbac.Role `json:"role"`
}

type LoginResponse struct {
	Message      string      `json:"message"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         SessionUser `json:"user"`
}

type RefreshResponse struct {
	Message      string `json:"message"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type MeResponse struct {
	User        UserResponse `json:"user"`
	Role        rbac.Role    `json:"role"`
	Permissions []string     `json:"permissions"`
}

// AuthService manages registration and the access/refresh token session lifecycle.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (uuid.UUID, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error)
	Me(ctx context.Context, p *rbac.Principal) (*MeResponse, error)
}

type authService struct {
	repos    repository.Repositories
	hasher   *security.Hasher
	tokens   *security.TokenService
	registry *rbac.Registry
	now      func() time.Time
}

func NewAuthService(repos repository.Repositories, hasher *security.Hasher, tokens *security.TokenService, registry *rbac.Registry) AuthService {
	return &authService{
		repos:    repos,
		hasher:   hasher,
		tokens:   tokens,
		registry: registry,
		now:      time.Now,
	}
}

const (
	msgInvalidCredentials = "Invalid credentials"
	msgInactiveAccount    = "Account is not active"
	msgInvalidRefresh     = "Invalid refresh token"
)

// Register creates a customer account. Any role in the payload is ignored.
func (s *authService) Register(ctx context.Context, req RegisterRequest) (uuid.UUID, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return uuid.Nil, apperr.Internal(err)
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
		Status:   model.UserStatusActive,
	}

	err = s.repos.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		role, err := s.repos.Roles.FindByName(txCtx, string(rbac.DefaultRole))
		if err != nil {
			return apperr.Internal(err)
		}
		user.RoleID = role.ID

		taken, err := s.repos.Users.EmailTaken(txCtx, req.Email, uuid.Nil)
		if err != nil {
			return apperr.Internal(err)
		}
		if taken {
			return apperr.Conflict("Email already registered")
		}
		return s.repos.Users.Create(txCtx, user)
	})
	if err != nil {
		return uuid.Nil, conflict(err, "Email already registered")
	}
	return user.ID, nil
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.repos.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Unauthenticated(msgInvalidCredentials)
		}
		return nil, apperr.Internal(err)
	}
	if user.Status != model.UserStatusActive {
		return nil, apperr.Forbidden(msgInactiveAccount)
	}
	if !s.hasher.Verify(user.Password, req.Password) {
		return nil, apperr.Unauthenticated(msgInvalidCredentials)
	}

	role := s.registry.Resolve(user.RoleName())
	access, refresh, err := s.issuePair(user.ID, role)
	if err != nil {
		return nil, err
	}

	if err := s.repos.Tokens.Store(ctx, &model.RefreshToken{
		UserID:    user.ID,
		TokenHash: security.HashToken(refresh.Value),
		ExpiresAt: refresh.ExpiresAt,
	}); err != nil {
		return nil, apperr.Internal(err)
	}

	return &LoginResponse{
		Message:      "Login successful",
		AccessToken:  access.Value,
		RefreshToken: refresh.Value,
		User: SessionUser{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Role:  role,
		},
	}, nil
}

// Logout deletes the stored refresh token if present. Unknown tokens are not an error.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if _, err := s.repos.Tokens.DeleteByHash(ctx, security.HashToken(refreshToken)); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// Refresh redeems a stored refresh token for a new access token and rotates the refresh token.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	if refreshToken == "" {
		return nil, apperr.Validation("Refresh token is required")
	}
	userID, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, apperr.Unauthenticated(msgInvalidRefresh)
	}

	var out *RefreshResponse
	err = s.repos.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		oldHash := security.HashToken(refreshToken)
		stored, err := s.repos.Tokens.FindValid(txCtx, oldHash, s.now())
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperr.Unauthenticated(msgInvalidRefresh)
			}
			return err
		}
		if stored.UserID != userID {
			return apperr.Unauthenticated(msgInvalidRefresh)
		}

		user, err := s.repos.Users.GetByID(txCtx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperr.Unauthenticated(msgInvalidRefresh)
			}
			return err
		}
		if user.Status != model.UserStatusActive {
			return apperr.Forbidden(msgInactiveAccount)
		}

		access, refresh, err := s.issuePair(user.ID, s.registry.Resolve(user.RoleName()))
		if err != nil {
			return err
		}
		if _, err := s.repos.Tokens.DeleteByHash(txCtx, oldHash); err != nil {
			return err
		}
		if err := s.repos.Tokens.Store(txCtx, &model.RefreshToken{
			UserID:    user.ID,
			TokenHash: security.HashToken(refresh.Value),
			ExpiresAt: refresh.ExpiresAt,
		}); err != nil {
			return err
		}

		out = &RefreshResponse{
			Message:      "Token refreshed",
			AccessToken:  access.Value,
			RefreshToken: refresh.Value,
		}
		return nil
	})
	if err != nil {
		return nil, passthrough(err)
	}
	return out, nil
}

// Me returns the caller's account with the role and permissions carried by its token.
func (s *authService) Me(ctx context.Context, p *rbac.Principal) (*MeResponse, error) {
	if d := rbac.Authorize(p, rbac.NewSet(rbac.AllRoles...)); !d.Allowed {
		return nil, d.Err()
	}
	user, err := s.repos.Users.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, notFound(err, "User not found")
	}
	return &MeResponse{
		User:        toUserResponse(user),
		Role:        p.Role,
		Permissions: s.registry.Permissions(p.Role),
	}, nil
}

func (s *authService) issuePair(userID uuid.UUID, role rbac.Role) (security.Token, security.Token, error) {
	access, err := s.tokens.IssueAccess(userID, role)
	if err != nil {
		return security.Token{}, security.Token{}, apperr.Internal(err)
	}
	refresh, err := s.tokens.IssueRefresh(userID)
	if err != nil {
		return security.Token{}, security.Token{}, apperr.Internal(err)
	}
	return access, refresh, nil
}
