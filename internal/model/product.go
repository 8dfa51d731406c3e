package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product statuses
const (
	ProductStatusActive     = "active"
	ProductStatusInactive   = "inactive"
	ProductStatusOutOfStock = "out_of_stock"
)

// ProductStatuses is the allow-list of product statuses.
var ProductStatuses = []string{ProductStatusActive, ProductStatusInactive, ProductStatusOutOfStock}

// ProductCategory groups products; Slug is the public filter key.
type ProductCategory struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Slug        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Product is a catalog entry. CreatedBy is nulled when the creating user row is removed.
type Product struct {
	ID               uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name             string           `gorm:"type:varchar(255);not null" json:"name"`
	Description      string           `gorm:"type:text" json:"description"`
	ShortDescription string           `gorm:"type:varchar(500)" json:"short_description"`
	Price            decimal.Decimal  `gorm:"type:decimal(10,2);not null;index" json:"price"`
	Stock            int              `gorm:"type:int;default:0;not null" json:"stock"`
	CategoryID       *uuid.UUID       `gorm:"type:uuid;index" json:"category_id"`
	Category         *ProductCategory `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL;" json:"-"`
	ImageURL         string           `gorm:"type:varchar(500)" json:"image_url"`
	Status           string           `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	CreatedBy        *uuid.UUID       `gorm:"type:uuid;index" json:"created_by"`
	Creator          *User            `gorm:"foreignKey:CreatedBy;constraint:OnDelete:SET NULL;" json:"-"`
	CreatedAt        time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	DeletedAt        gorm.DeletedAt   `gorm:"index" json:"-"`
}

// CategoryName returns the joined category name, or "".
func (p *Product) CategoryName() string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Name
}

// CreatorName returns the joined creator name, or "".
func (p *Product) CreatorName() string {
	if p.Creator == nil {
		return ""
	}
	return p.Creator.Name
}

// HasLocalImage reports whether ImageURL points into the upload tree rather than an external URL.
func (p *Product) HasLocalImage() bool {
	return IsLocalImage(p.ImageURL)
}

// IsLocalImage reports whether url is a non-empty, non-http(s) image path.
func IsLocalImage(url string) bool {
	return url != "" && !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://")
}
