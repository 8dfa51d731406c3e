package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Bulletin types
const (
	BulletinTypeEvent        = "event"
	BulletinTypeHiring       = "hiring"
	BulletinTypeAnnouncement = "announcement"
)

// Bulletin statuses. Transitions are not enforced.
const (
	BulletinStatusDraft     = "draft"
	BulletinStatusPublished = "published"
	BulletinStatusArchived  = "archived"
)

var (
	BulletinTypes    = []string{BulletinTypeEvent, BulletinTypeHiring, BulletinTypeAnnouncement}
	BulletinStatuses = []string{BulletinStatusDraft, BulletinStatusPublished, BulletinStatusArchived}
)

// Bulletin is a company announcement, event or hiring notice.
type Bulletin struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Type             string         `gorm:"type:varchar(20);not null;index" json:"type"`
	Title            string         `gorm:"type:varchar(255);not null" json:"title"`
	Description      string         `gorm:"type:text;not null" json:"description"`
	ShortDescription string         `gorm:"type:varchar(500)" json:"short_description"`
	EventDate        *time.Time     `gorm:"type:date;index" json:"event_date"`
	Location         string         `gorm:"type:varchar(255)" json:"location"`
	CreatedBy        *uuid.UUID     `gorm:"type:uuid;index" json:"created_by"`
	Creator          *User          `gorm:"foreignKey:CreatedBy;constraint:OnDelete:SET NULL;" json:"-"`
	Status           string         `gorm:"type:varchar(20);not null;default:'published';index" json:"status"`
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// CreatorName returns the joined creator name, or "".
func (b *Bulletin) CreatorName() string {
	if b.Creator == nil {
		return ""
	}
	return b.Creator.Name
}
