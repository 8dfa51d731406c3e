package service

import (
	"context"
	"strings"
	"time"

	"portal/internal/apperr"
	"portal/internal/model"
	"portal/internal/rbac"
	"portal/internal/repository"
	"portal/pkg/pagination"

	"github.com/google/uuid"
)

// BulletinInput carries the full mutable field set of a bulletin. EventDate is YYYY-MM-DD or RFC 3339.
type BulletinInput struct {
	Type             string `json:"type" binding:"required"`
	Title            string `json:"title" binding:"required"`
	Description      string `json:"description" binding:"required"`
	ShortDescription string `json:"short_description"`
	EventDate        string `json:"event_date"`
	Location         string `json:"location"`
	Status           string `json:"status"`
}

type BulletinListQuery struct {
	Type   string
	Search string
	Status string
	pagination.Params
}

type BulletinList struct {
	Bulletins     []any `json:"bulletins"`
	Authenticated bool  `json:"authenticated"`
	Total         int64 `json:"total"`
	Limit         int   `json:"limit"`
	Offset        int   `json:"offset"`
}

type BulletinService interface {
	List(ctx context.Context, p *rbac.Principal, q BulletinListQuery) (*BulletinList, error)
	Get(ctx context.Context, p *rbac.Principal, id uuid.UUID) (*FullBulletinView, error)
	Create(ctx context.Context, actor *rbac.Principal, in BulletinInput) (uuid.UUID, error)
	Update(ctx context.Context, actor *rbac.Principal, id uuid.UUID, in BulletinInput) error
	Delete(ctx context.Context, actor *rbac.Principal, id uuid.UUID) error
}

type bulletinService struct {
	repos repository.Repositories
}

func NewBulletinService(repos repository.Repositories) BulletinService {
	return &bulletinService{repos: repos}
}

const msgBulletinNotFound = "Bulletin not found"

func (s *bulletinService) List(ctx context.Context, p *rbac.Principal, q BulletinListQuery) (*BulletinList, error) {
	if q.Type != "" && !model.Contains(model.BulletinTypes, q.Type) {
		return nil, apperr.Validation("Invalid bulletin type")
	}
	status, err := listStatus(p, rbac.BulletinManagers, q.Status, model.BulletinStatusPublished, model.BulletinStatuses)
	if err != nil {
		return nil, err
	}

	bulletins, total, err := s.repos.Bulletins.List(ctx, repository.BulletinFilter{
		Type:   q.Type,
		Status: status,
		Search: q.Search,
		Page:   repository.Page{Limit: q.Limit, Offset: q.Offset},
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}

	authenticated := p != nil
	return &BulletinList{
		Bulletins:     ProjectBulletins(bulletins, authenticated),
		Authenticated: authenticated,
		Total:         total,
		Limit:         q.Limit,
		Offset:        q.Offset,
	}, nil
}

func (s *bulletinService) Get(ctx context.Context, p *rbac.Principal, id uuid.UUID) (*FullBulletinView, error) {
	if p == nil {
		return nil, apperr.Unauthenticated("Please login to view full bulletin details")
	}
	bulletin, err := s.repos.Bulletins.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, msgBulletinNotFound)
	}
	view := ToFullBulletinView(bulletin)
	return &view, nil
}

func parseEventDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, apperr.Validation("Invalid event date")
}

func toBulletin(in BulletinInput) (*model.Bulletin, error) {
	if strings.TrimSpace(in.Type) == "" || strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "" {
		return nil, apperr.Validation("Type, title, and description are required")
	}
	if !model.Contains(model.BulletinTypes, in.Type) {
		return nil, apperr.Validation("Invalid bulletin type")
	}
	if in.Status == "" {
		in.Status = model.BulletinStatusPublished
	}
	if !model.Contains(model.BulletinStatuses, in.Status) {
		return nil, apperr.Validation("Invalid status")
	}
	date, err := parseEventDate(in.EventDate)
	if err != nil {
		return nil, err
	}

	return &model.Bulletin{
		Type:             in.Type,
		Title:            in.Title,
		Description:      in.Description,
		ShortDescription: in.ShortDescription,
		EventDate:        date,
		Location:         in.Location,
		Status:           in.Status,
	}, nil
}

func (s *bulletinService) Create(ctx context.Context, actor *rbac.Principal, in BulletinInput) (uuid.UUID, error) {
	bulletin, err := toBulletin(in)
	if err != nil {
		return uuid.Nil, err
	}
	if actor != nil {
		creator := actor.UserID
		bulletin.CreatedBy = &creator
	}
	err = s.repos.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repos.Bulletins.Create(txCtx, bulletin); err != nil {
			return err
		}
		return audit(txCtx, s.repos.Audit, actor, model.ActionCreateBulletin, bulletin.ID, bulletin.Title, bulletinDetails(bulletin))
	})
	if err != nil {
		return uuid.Nil, passthrough(err)
	}
	return bulletin.ID, nil
}

// Update replaces the bulletin row. Status may move between any values.
func (s *bulletinService) Update(ctx context.Context, actor *rbac.Principal, id uuid.UUID, in BulletinInput) error {
	bulletin, err := toBulletin(in)
	if err != nil {
		return err
	}
	bulletin.ID = id

	err = s.repos.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repos.Bulletins.Update(txCtx, bulletin); err != nil {
			return notFound(err, msgBulletinNotFound)
		}
		return audit(txCtx, s.repos.Audit, actor, model.ActionUpdateBulletin, id, bulletin.Title, bulletinDetails(bulletin))
	})
	if err != nil {
		return passthrough(err)
	}
	return nil
}

func (s *bulletinService) Delete(ctx context.Context, actor *rbac.Principal, id uuid.UUID) error {
	err := s.repos.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		bulletin, err := s.repos.Bulletins.FindByID(txCtx, id)
		if err != nil {
			return notFound(err, msgBulletinNotFound)
		}
		if err := s.repos.Bulletins.SoftDelete(txCtx, id); err != nil {
			return notFound(err, msgBulletinNotFound)
		}
		return audit(txCtx, s.repos.Audit, actor, model.ActionDeleteBulletin, id, bulletin.Title, nil)
	})
	if err != nil {
		return passthrough(err)
	}
	return nil
}

func bulletinDetails(b *model.Bulletin) map[string]any {
	return map[string]any{
		"type":       b.Type,
		"status":     b.Status,
		"event_date": b.EventDate,
		"location":   b.Location,
	}
}
