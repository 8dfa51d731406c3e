package service

import (
	"context"
	"regexp"
	"strings"

	"portal/internal/apperr"
	"portal/internal/model"
	"portal/internal/rbac"
	"portal/internal/repository"
	"portal/pkg/pagination"

	"github.com/google/uuid"
)

type ContactRequest struct {
	Subject  string `json:"subject" binding:"required"`
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Message  string `json:"message" binding:"required"`
}

type ContactStatusRequest struct {
	Status string `json:"status"`
}

type ContactListQuery struct {
	Status string
	pagination.Params
}

type ContactList struct {
	Submissions []model.ContactSubmission `json:"submissions"`
	Total       int64                     `json:"total"`
	Limit       int                       `json:"limit"`
	Offset      int                       `json:"offset"`
}

// ContactService backs the public contact form and its staff inbox.
type ContactService interface {
	Submit(ctx context.Context, req ContactRequest) (uuid.UUID, error)
	List(ctx context.Context, q ContactListQuery) (*ContactList, error)
	UpdateStatus(ctx context.Context, actor *rbac.Principal, id uuid.UUID, status string) error
	Delete(ctx context.Context, actor *rbac.Principal, id uuid.UUID) error
}

type contactService struct {
	repos repository.Repositories
}

func NewContactService(repos repository.Repositories) ContactService {
	return &contactService{repos: repos}
}

const msgSubmissionNotFound = "Submission not found"

var contactEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func (s *contactService) Submit(ctx context.Context, req ContactRequest) (uuid.UUID, error) {
	for _, v := range []string{req.Subject, req.FullName, req.Email, req.Message} {
		if strings.TrimSpace(v) == "" {
			return uuid.Nil, apperr.Validation("All fields are required")
		}
	}
	if !contactEmail.MatchString(req.Email) {
		return uuid.Nil, apperr.Validation("Please provide a valid email address")
	}

	submission := &model.ContactSubmission{
		Subject:  req.Subject,
		FullName: req.FullName,
		Email:    req.Email,
		Message:  req.Message,
		Status:   model.ContactStatusNew,
	}
	if err := s.repos.Contacts.Create(ctx, submission); err != nil {
		return uuid.Nil, apperr.Internal(err)
	}
	return submission.ID, nil
}

func (s *contactService) List(ctx context.Context, q ContactListQuery) (*ContactList, error) {
	if q.Status != "" && !model.Contains(model.ContactStatuses, q.Status) {
		return nil, invalidContactStatus()
	}
	submissions, total, err := s.repos.Contacts.List(ctx, repository.ContactFilter{
		Status: q.Status,
		Page:   repository.Page{Limit: q.Limit, Offset: q.Offset},
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &ContactList{Submissions: submissions, Total: total, Limit: q.Limit, Offset: q.Offset}, nil
}

func invalidContactStatus() error {
	return apperr.Validation("Invalid status. Must be one of: " + strings.Join(model.ContactStatuses, ", "))
}

// UpdateStatus checks the allow-list before touching storage.
func (s *contactService) UpdateStatus(ctx context.Context, actor *rbac.Principal, id uuid.UUID, status string) error {
	if !model.Contains(model.ContactStatuses, status) {
		return invalidContactStatus()
	}
	err := s.repos.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repos.Contacts.UpdateStatus(txCtx, id, status); err != nil {
			return notFound(err, msgSubmissionNotFound)
		}
		return audit(txCtx, s.repos.Audit, actor, model.ActionUpdateContactStatus, id, "", map[string]any{"status": status})
	})
	if err != nil {
		return passthrough(err)
	}
	return nil
}

// Delete removes the submission permanently.
func (s *contactService) Delete(ctx context.Context, actor *rbac.Principal, id uuid.UUID) error {
	err := s.repos.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repos.Contacts.Delete(txCtx, id); err != nil {
			return notFound(err, msgSubmissionNotFound)
		}
		return audit(txCtx, s.repos.Audit, actor, model.ActionDeleteContact, id, "", nil)
	})
	if err != nil {
		return passthrough(err)
	}
	return nil
}
