package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateUser    = "CREATE_USER"
	ActionUpdateUser    = "UPDATE_USER"
	ActionDeleteUser    = "DELETE_USER"
	ActionResetPassword = "RESET_PASSWORD"

	ActionCreateCategory = "CREATE_CATEGORY"
	ActionCreateProduct  = "CREATE_PRODUCT"
	ActionUpdateProduct  = "UPDATE_PRODUCT"
	ActionDeleteProduct  = "DELETE_PRODUCT"
	ActionPurgeImages    = "PURGE_PRODUCT_IMAGES"

	ActionCreateBulletin = "CREATE_BULLETIN"
	ActionUpdateBulletin = "UPDATE_BULLETIN"
	ActionDeleteBulletin = "DELETE_BULLETIN"

	ActionUpdateContactStatus = "UPDATE_CONTACT_STATUS"
	ActionDeleteContact       = "DELETE_CONTACT"
)

// AuditActions is the allow-list accepted by the audit log filter.
var AuditActions = []string{
	ActionCreateUser, ActionUpdateUser, ActionDeleteUser, ActionResetPassword,
	ActionCreateCategory, ActionCreateProduct, ActionUpdateProduct, ActionDeleteProduct, ActionPurgeImages,
	ActionCreateBulletin, ActionUpdateBulletin, ActionDeleteBulletin,
	ActionUpdateContactStatus, ActionDeleteContact,
}

// AuditLog tracks who changed what, and when. UserID is nil for maintenance jobs.
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User       *User      `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL;" json:"-"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:jsonb" json:"details"` // serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

// ActorName returns the joined user name, or "System" for entries without a user.
func (a *AuditLog) ActorName() string {
	if a.User == nil {
		return "System"
	}
	return a.User.Name
}
