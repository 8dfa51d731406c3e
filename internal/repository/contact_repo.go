package repository

import (
	"context"

	"portal/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContactRepository interface {
	Create(ctx context.Context, submission *model.ContactSubmission) error
	List(ctx context.Context, filter ContactFilter) ([]model.ContactSubmission, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type contactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, submission *model.ContactSubmission) error {
	return translate(GetDB(ctx, r.db).Create(submission).Error)
}

func (r *contactRepository) List(ctx context.Context, filter ContactFilter) ([]model.ContactSubmission, int64, error) {
	var submissions []model.ContactSubmission
	var total int64

	db := GetDB(ctx, r.db).Model(&model.ContactSubmission{})
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := db.Order("created_at desc").Offset(filter.Offset)
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if err := q.Find(&submissions).Error; err != nil {
		return nil, 0, err
	}

	return submissions, total, nil
}

func (r *contactRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return affected(GetDB(ctx, r.db).Model(&model.ContactSubmission{}).Where("id = ?", id).Update("status", status))
}

// Delete removes the row permanently.
func (r *contactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.ContactSubmission{}))
}
