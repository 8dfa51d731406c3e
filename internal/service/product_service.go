package service

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"regexp"
	"strings"
	"time"

	"portal/internal/apperr"
	"portal/internal/model"
	"portal/internal/rbac"
	"portal/internal/repository"
	"portal/internal/storage"
	"portal/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductInput carries the full mutable field set of a product. It binds from JSON or multipart forms.
type ProductInput struct {
	Name             string `json:"name" form:"name" binding:"required"`
	Description      string `json:"description" form:"description"`
	ShortDescription string `json:"short_description" form:"short_description"`
	Price            Amount `json:"price" form:"price" binding:"required"`
	Stock            int    `json:"stock" form:"stock"`
	CategoryID       string `json:"category_id" form:"category_id"`
	ImageURL         string `json:"image_url" form:"image_url"`
	Status           string `json:"status" form:"status"`
}

// Amount is a decimal carried as text. It unmarshals from a JSON number or a JSON string.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*a = ""
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	*a = Amount(d.String())
	return nil
}

type CategoryInput struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug" binding:"required"`
	Description string `json:"description"`
}

type ProductListQuery struct {
	Category string
	Search   string
	Status   string
	pagination.Params
}

type ProductList struct {
	Products      []any `json:"products"`
	Authenticated bool  `json:"authenticated"`
	Total         int64 `json:"total"`
	Limit         int   `json:"limit"`
	Offset        int   `json:"offset"`
}

// PurgeReport lists the products whose images were (or, on a dry run, would be) removed.
type PurgeReport struct {
	Cutoff   time.Time   `json:"cutoff"`
	Products []uuid.UUID `json:"products"`
	DryRun   bool        `json:"dry_run"`
}

type ProductService interface {
	List(ctx context.Context, p *rbac.Principal, q ProductListQuery) (*ProductList, error)
	Get(ctx context.Context, p *rbac.Principal, id uuid.UUID) (*FullProductView, error)
	Create(ctx context.Context, actor *rbac.Principal, in ProductInput, image *multipart.FileHeader) (uuid.UUID, error)
	Update(ctx context.Context, actor *rbac.Principal, id uuid.UUID, in ProductInput, image *multipart.FileHeader) error
	Delete(ctx context.Context, actor *rbac.Principal, id uuid.UUID) error
	ListCategories(ctx context.Context) ([]model.ProductCategory, error)
	CreateCategory(ctx context.Context, actor *rbac.Principal, in CategoryInput) (uuid.UUID, error)
	PurgeDeletedImages(ctx context.Context, retention time.Duration, dryRun bool) (*PurgeReport, error)
}

type productService struct {
	repos  repository.Repositories
	store  storage.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewProductService(repos repository.Repositories, store storage.Store, logger *slog.Logger) ProductService {
	if logger == nil {
		logger = slog.Default()
	}
	return &productService{repos: repos, store: store, logger: logger, now: time.Now}
}

const msgProductNotFound = "Product not found"

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// listStatus decides which status filter applies. Only product managers may widen it.
func listStatus(p *rbac.Principal, managers rbac.Set, requested, fallback string, allowed []string) (string, error) {
	if requested == "" || p == nil || !managers.Has(p.Role) {
		return fallback, nil
	}
	if requested == "all" {
		return "", nil
	}
	if !model.Contains(allowed, requested) {
		return "", apperr.Validation("Invalid status")
	}
	return requested, nil
}

func (s *productService) List(ctx context.Context, p *rbac.Principal, q ProductListQuery) (*ProductList, error) {
	status, err := listStatus(p, rbac.ProductManagers, q.Status, model.ProductStatusActive, model.ProductStatuses)
	if err != nil {
		return nil, err
	}

	products, total, err := s.repos.Products.List(ctx, repository.ProductFilter{
		CategorySlug: q.Category,
		Status:       status,
		Search:       q.Search,
		Page:         repository.Page{Limit: q.Limit, Offset: q.Offset},
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}

	authenticated := p != nil
	return &ProductList{
		Products:      ProjectProducts(products, authenticated),
		Authenticated: authenticated,
		Total:         total,
		Limit:         q.Limit,
		Offset:        q.Offset,
	}, nil
}

// Get requires authentication before the lookup so anonymous callers learn nothing about existence.
func (s *productService) Get(ctx context.Context, p *rbac.Principal, id uuid.UUID) (*FullProductView, error) {
	if p == nil {
		return nil, apperr.Unauthenticated("Please login to view full product details")
	}
	product, err := s.repos.Products.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, msgProductNotFound)
	}
	view := ToFullProductView(product)
	return &view, nil
}

// toProduct validates the input and builds the row it describes.
func toProduct(in ProductInput) (*model.Product, error) {
	raw := strings.TrimSpace(string(in.Price))
	if strings.TrimSpace(in.Name) == "" || raw == "" {
		return nil, apperr.Validation("Name and price are required")
	}
	price, err := decimal.NewFromString(raw)
	if err != nil || price.IsNegative() {
		return nil, apperr.Validation("Invalid price")
	}
	if in.Stock < 0 {
		return nil, apperr.Validation("Invalid stock")
	}
	if in.Status == "" {
		in.Status = model.ProductStatusActive
	}
	if !model.Contains(model.ProductStatuses, in.Status) {
		return nil, apperr.Validation("Invalid status")
	}

	product := &model.Product{
		Name:             in.Name,
		Description:      in.Description,
		ShortDescription: in.ShortDescription,
		Price:            price.Round(2),
		Stock:            in.Stock,
		ImageURL:         in.ImageURL,
		Status:           in.Status,
	}
	if in.CategoryID != "" {
		id, err := uuid.Parse(in.CategoryID)
		if err != nil {
			return nil, apperr.Validation("Invalid category id")
		}
		product.CategoryID = &id
	}
	return product, nil
}

func productDetails(p *model.Product) map[string]any {
	return map[string]any{
		"price":       p.Price.String(),
		"stock":       p.Stock,
		"status":      p.Status,
		"category_id": p.CategoryID,
	}
}

func productWriteError(err error) error {
	if errors.Is(err, repository.ErrForeignKey) {
		return apperr.Validation("Invalid category id")
	}
	return notFound(err, msgProductNotFound)
}

func (s *productService) saveUpload(image *multipart.FileHeader) (*storage.Upload, error) {
	if image == nil {
		return nil, nil
	}
	upload, err := s.store.SaveTemp(image)
	if err != nil {
		if errors.Is(err, storage.ErrNotImage) || errors.Is(err, storage.ErrTooLarge) {
			return nil, apperr.Wrap(apperr.KindValidation, err.Error(), err)
		}
		return nil, apperr.Internal(err)
	}
	return upload, nil
}

// attach promotes the upload into the product's namespace and records its URL.
func (s *productService) attach(ctx context.Context, id uuid.UUID, upload *storage.Upload) (string, error) {
	url, err := s.store.Promote(upload, id)
	if err != nil {
		s.store.Discard(upload)
		return "", apperr.Internal(err)
	}
	if err := s.repos.Products.UpdateImageURL(ctx, id, url); err != nil {
		return "", notFound(err, msgProductNotFound)
	}
	return url, nil
}

func (s *productService) Create(ctx context.Context, actor *rbac.Principal, in ProductInput, image *multipart.FileHeader) (uuid.UUID, error) {
	product, err := toProduct(in)
	if err != nil {
		return uuid.Nil, err
	}
	if actor != nil {
		creator := actor.UserID
		product.CreatedBy = &creator
	}

	upload, err := s.saveUpload(image)
	if err != nil {
		return uuid.Nil, err
	}

	err = s.repos.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repos.Products.Create(txCtx, product); err != nil {
			return productWriteError(err)
		}
		return audit(txCtx, s.repos.Audit, actor, model.ActionCreateProduct, product.ID, product.Name, productDetails(product))
	})
	if err != nil {
		s.store.Discard(upload)
		return uuid.Nil, passthrough(err)
	}

	// The row is committed; an image that fails to attach leaves the product without one.
	if upload != nil {
		if _, err := s.attach(ctx, product.ID, upload); err != nil {
			s.logger.Error("failed to attach product image",
				slog.String("product_id", product.ID.String()),
				slog.Any("error", err))
		}
	}
	return product.ID, nil
}

// Update replaces the product row. A new image supersedes the stored one, and a superseded local
// image is removed from storage.
func (s *productService) Update(ctx context.Context, actor *rbac.Principal, id uuid.UUID, in ProductInput, image *multipart.FileHeader) error {
	product, err := toProduct(in)
	if err != nil {
		return err
	}
	product.ID = id

	existing, err := s.repos.Products.FindByID(ctx, id)
	if err != nil {
		return notFound(err, msgProductNotFound)
	}

	upload, err := s.saveUpload(image)
	if err != nil {
		return err
	}

	err = s.repos.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repos.Products.Update(txCtx, product); err != nil {
			return productWriteError(err)
		}
		return audit(txCtx, s.repos.Audit, actor, model.ActionUpdateProduct, id, product.Name, productDetails(product))
	})
	if err != nil {
		s.store.Discard(upload)
		return passthrough(err)
	}

	finalURL := product.ImageURL
	if upload != nil {
		url, err := s.attach(ctx, id, upload)
		if err != nil {
			s.logger.Error("failed to attach product image",
				slog.String("product_id", id.String()),
				slog.Any("error", err))
		} else {
			finalURL = url
		}
	}

	if existing.HasLocalImage() && existing.ImageURL != finalURL {
		if err := s.store.Delete(id, existing.ImageURL); err != nil {
			s.logger.Warn("failed to delete superseded image",
				slog.String("product_id", id.String()),
				slog.String("image_url", existing.ImageURL),
				slog.Any("error", err))
		}
	}
	return nil
}

// Delete soft deletes the product. Images stay until the purge pass.
func (s *productService) Delete(ctx context.Context, actor *rbac.Principal, id uuid.UUID) error {
	err := s.repos.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		product, err := s.repos.Products.FindByID(txCtx, id)
		if err != nil {
			return notFound(err, msgProductNotFound)
		}
		if err := s.repos.Products.SoftDelete(txCtx, id); err != nil {
			return notFound(err, msgProductNotFound)
		}
		return audit(txCtx, s.repos.Audit, actor, model.ActionDeleteProduct, id, product.Name, nil)
	})
	if err != nil {
		return passthrough(err)
	}
	return nil
}

func (s *productService) ListCategories(ctx context.Context) ([]model.ProductCategory, error) {
	categories, err := s.repos.Categories.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return categories, nil
}

func (s *productService) CreateCategory(ctx context.Context, actor *rbac.Principal, in CategoryInput) (uuid.UUID, error) {
	slug := strings.ToLower(strings.TrimSpace(in.Slug))
	if strings.TrimSpace(in.Name) == "" || slug == "" {
		return uuid.Nil, apperr.Validation("Name and slug are required")
	}
	if !slugPattern.MatchString(slug) {
		return uuid.Nil, apperr.Validation("Invalid slug")
	}

	category := &model.ProductCategory{
		Name:        strings.TrimSpace(in.Name),
		Slug:        slug,
		Description: in.Description,
	}
	err := s.repos.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repos.Categories.Create(txCtx, category); err != nil {
			return err
		}
		return audit(txCtx, s.repos.Audit, actor, model.ActionCreateCategory, category.ID, category.Name, map[string]any{
			"slug": category.Slug,
		})
	})
	if err != nil {
		return uuid.Nil, conflict(err, "Category slug already exists")
	}
	return category.ID, nil
}

// PurgeDeletedImages removes the image directories of products soft deleted more than retention ago
// and clears their image URLs. External image URLs are left alone.
func (s *productService) PurgeDeletedImages(ctx context.Context, retention time.Duration, dryRun bool) (*PurgeReport, error) {
	report := &PurgeReport{Cutoff: s.now().Add(-retention), Products: []uuid.UUID{}, DryRun: dryRun}

	products, err := s.repos.Products.ListPurgeable(ctx, report.Cutoff)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	for i := range products {
		p := &products[i]
		if !p.HasLocalImage() {
			continue
		}
		report.Products = append(report.Products, p.ID)
		if dryRun {
			continue
		}
		if err := s.store.PurgeProduct(p.ID); err != nil {
			return report, apperr.Internal(err)
		}
		err := s.repos.Tx.RunInTx(ctx, func(txCtx context.Context) error {
			if err := s.repos.Products.ClearImageURL(txCtx, p.ID); err != nil {
				return err
			}
			return audit(txCtx, s.repos.Audit, nil, model.ActionPurgeImages, p.ID, p.Name, map[string]any{
				"image_url":  p.ImageURL,
				"deleted_at": p.DeletedAt.Time,
			})
		})
		if err != nil {
			return report, apperr.Internal(err)
		}
		s.logger.Info("purged product images", slog.String("product_id", p.ID.String()))
	}
	return report, nil
}
