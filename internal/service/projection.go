package service

import (
	"time"

	"portal/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PublicProductView is what anonymous callers see in listings: no price, stock or full description.
type PublicProductView struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	ShortDescription string    `json:"short_description"`
	ImageURL         string    `json:"image_url"`
	Status           string    `json:"status"`
	CategoryName     string    `json:"category_name"`
	CreatedAt        time.Time `json:"created_at"`
}

// FullProductView is the complete record shown to authenticated callers.
type FullProductView struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	ShortDescription string          `json:"short_description"`
	Price            decimal.Decimal `json:"price"`
	Stock            int             `json:"stock"`
	CategoryID       *uuid.UUID      `json:"category_id"`
	CategoryName     string          `json:"category_name"`
	ImageURL         string          `json:"image_url"`
	Status           string          `json:"status"`
	CreatedBy        *uuid.UUID      `json:"created_by"`
	CreatedByName    string          `json:"created_by_name"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func ToPublicProductView(p *model.Product) PublicProductView {
	return PublicProductView{
		ID:               p.ID,
		Name:             p.Name,
		ShortDescription: p.ShortDescription,
		ImageURL:         p.ImageURL,
		Status:           p.Status,
		CategoryName:     p.CategoryName(),
		CreatedAt:        p.CreatedAt,
	}
}

func ToFullProductView(p *model.Product) FullProductView {
	return FullProductView{
		ID:               p.ID,
		Name:             p.Name,
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		Price:            p.Price,
		Stock:            p.Stock,
		CategoryID:       p.CategoryID,
		CategoryName:     p.CategoryName(),
		ImageURL:         p.ImageURL,
		Status:           p.Status,
		CreatedBy:        p.CreatedBy,
		CreatedByName:    p.CreatorName(),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// ProjectProducts shapes every row for the caller's authentication state.
func ProjectProducts(products []model.Product, authenticated bool) []any {
	out := make([]any, 0, len(products))
	for i := range products {
		if authenticated {
			out = append(out, ToFullProductView(&products[i]))
		} else {
			out = append(out, ToPublicProductView(&products[i]))
		}
	}
	return out
}

// PublicBulletinView replaces the description with the short description.
type PublicBulletinView struct {
	ID               uuid.UUID  `json:"id"`
	Type             string     `json:"type"`
	Title            string     `json:"title"`
	ShortDescription string     `json:"short_description"`
	EventDate        *time.Time `json:"event_date"`
	Location         string     `json:"location"`
	Status           string     `json:"status"`
	CreatedByName    string     `json:"created_by_name"`
	CreatedAt        time.Time  `json:"created_at"`
}

type FullBulletinView struct {
	ID               uuid.UUID  `json:"id"`
	Type             string     `json:"type"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	ShortDescription string     `json:"short_description"`
	EventDate        *time.Time `json:"event_date"`
	Location         string     `json:"location"`
	Status           string     `json:"status"`
	CreatedBy        *uuid.UUID `json:"created_by"`
	CreatedByName    string     `json:"created_by_name"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func ToPublicBulletinView(b *model.Bulletin) PublicBulletinView {
	return PublicBulletinView{
		ID:               b.ID,
		Type:             b.Type,
		Title:            b.Title,
		ShortDescription: b.ShortDescription,
		EventDate:        b.EventDate,
		Location:         b.Location,
		Status:           b.Status,
		CreatedByName:    b.CreatorName(),
		CreatedAt:        b.CreatedAt,
	}
}

func ToFullBulletinView(b *model.Bulletin) FullBulletinView {
	return FullBulletinView{
		ID:               b.ID,
		Type:             b.Type,
		Title:            b.Title,
		Description:      b.Description,
		ShortDescription: b.ShortDescription,
		EventDate:        b.EventDate,
		Location:         b.Location,
		Status:           b.Status,
		CreatedBy:        b.CreatedBy,
		CreatedByName:    b.CreatorName(),
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

// ProjectBulletins shapes every row for the caller's authentication state.
func ProjectBulletins(bulletins []model.Bulletin, authenticated bool) []any {
	out := make([]any, 0, len(bulletins))
	for i := range bulletins {
		if authenticated {
			out = append(out, ToFullBulletinView(&bulletins[i]))
		} else {
			out = append(out, ToPublicBulletinView(&bulletins[i]))
		}
	}
	return out
}
