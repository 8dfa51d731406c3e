package service

import (
	"context"
	"encoding/json"
	"fmt"

	"portal/internal/apperr"
	"portal/internal/model"
	"portal/internal/rbac"
	"portal/internal/repository"
	"portal/pkg/pagination"

	"github.com/google/uuid"
)

type AuditLogResponse struct {
	ID         uuid.UUID       `json:"id"`
	UserID     *uuid.UUID      `json:"user_id"`
	Username   string          `json:"username"`
	Action     string          `json:"action"`
	EntityID   string          `json:"entity_id"`
	EntityName string          `json:"entity_name"`
	Details    json.RawMessage `json:"details"`
	CreatedAt  string          `json:"created_at"`
}

type AuditListQuery struct {
	Action   string
	EntityID string
	pagination.Params
}

type AuditLogList struct {
	Logs   []AuditLogResponse `json:"logs"`
	Total  int64              `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

type AuditService interface {
	List(ctx context.Context, q AuditListQuery) (*AuditLogList, error)
}

type auditService struct {
	repo repository.AuditRepository
}

// NewAuditService creates a new AuditService instance
func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) List(ctx context.Context, q AuditListQuery) (*AuditLogList, error) {
	if q.Action != "" && !model.Contains(model.AuditActions, q.Action) {
		return nil, apperr.Validation("Invalid audit action")
	}

	logs, total, err := s.repo.List(ctx, repository.AuditFilter{
		Action:   q.Action,
		EntityID: q.EntityID,
		Page:     repository.Page{Limit: q.Limit, Offset: q.Offset},
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for i := range logs {
		l := &logs[i]
		details := json.RawMessage(l.Details)
		if len(details) == 0 {
			details = json.RawMessage("{}")
		}
		res = append(res, AuditLogResponse{
			ID:         l.ID,
			UserID:     l.UserID,
			Username:   l.ActorName(),
			Action:     l.Action,
			EntityID:   l.EntityID,
			EntityName: l.EntityName,
			Details:    details,
			CreatedAt:  l.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return &AuditLogList{Logs: res, Total: total, Limit: q.Limit, Offset: q.Offset}, nil
}

// audit writes one entry through repo. Call it inside the transaction of the change it describes
// so the entry and the change commit together.
func audit(ctx context.Context, repo repository.AuditRepository, actor *rbac.Principal, action string, entityID uuid.UUID, entityName string, details map[string]any) error {
	entry := &model.AuditLog{
		Action:     action,
		EntityID:   entityID.String(),
		EntityName: entityName,
		Details:    "{}",
	}
	if actor != nil {
		uid := actor.UserID
		entry.UserID = &uid
	}
	if len(details) > 0 {
		b, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("encode audit details: %w", err)
		}
		entry.Details = string(b)
	}
	if err := repo.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}
