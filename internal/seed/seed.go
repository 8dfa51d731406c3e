// Package seed loads demo roles, users, categories, products and bulletins from YAML fixtures.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"portal/internal/model"
	"portal/internal/rbac"
	"portal/internal/repository"
	"portal/internal/security"
	"portal/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

type Fixtures struct {
	Users      []UserFixture     `yaml:"users"`
	Categories []CategoryFixture `yaml:"categories"`
	Products   []ProductFixture  `yaml:"products"`
	Bulletins  []BulletinFixture `yaml:"bulletins"`
}

type UserFixture struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

type CategoryFixture struct {
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
}

// ProductFixture references its category by slug and its creator by email.
type ProductFixture struct {
	Name             string `yaml:"name"`
	ShortDescription string `yaml:"short_description"`
	Description      string `yaml:"description"`
	Price            string `yaml:"price"`
	Stock            int    `yaml:"stock"`
	Category         string `yaml:"category"`
	CreatedBy        string `yaml:"created_by"`
}

type BulletinFixture struct {
	Type             string `yaml:"type"`
	Title            string `yaml:"title"`
	ShortDescription string `yaml:"short_description"`
	Description      string `yaml:"description"`
	EventDate        string `yaml:"event_date"`
	Location         string `yaml:"location"`
	CreatedBy        string `yaml:"created_by"`
}

// Load parses fixtures from path, or the embedded defaults when path is empty.
func Load(path string) (*Fixtures, error) {
	data := defaultFixtures
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read fixtures: %w", err)
		}
		data = b
	}

	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	return &f, nil
}

// Result counts the rows created by a run.
type Result struct {
	Skipped    bool
	Users      int
	Categories int
	Products   int
	Bulletins  int
}

type Seeder struct {
	repos  repository.Repositories
	roles  service.RoleService
	hasher *security.Hasher
	logger *slog.Logger
}

func NewSeeder(repos repository.Repositories, registry *rbac.Registry, hasher *security.Hasher, logger *slog.Logger) *Seeder {
	return &Seeder{
		repos:  repos,
		roles:  service.NewRoleService(repos.Roles, registry),
		hasher: hasher,
		logger: logger,
	}
}

// Run makes sure every role exists, then inserts the fixtures. When users already exist the run
// is skipped unless force is set; forced runs leave existing emails and slugs untouched.
func (s *Seeder) Run(ctx context.Context, f *Fixtures, force bool) (*Result, error) {
	if err := s.roles.EnsureDefaultRoles(ctx); err != nil {
		return nil, err
	}

	count, err := s.repos.Users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if count > 0 && !force {
		s.logger.Warn("database already contains users, skipping seed", slog.Int64("users", count))
		return &Result{Skipped: true}, nil
	}

	res := &Result{}
	err = s.repos.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		users, err := s.seedUsers(txCtx, f.Users, res)
		if err != nil {
			return err
		}
		categories, err := s.seedCategories(txCtx, f.Categories, res)
		if err != nil {
			return err
		}
		if err := s.seedProducts(txCtx, f.Products, users, categories, res); err != nil {
			return err
		}
		return s.seedBulletins(txCtx, f.Bulletins, users, res)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("seed complete",
		slog.Int("users", res.Users),
		slog.Int("categories", res.Categories),
		slog.Int("products", res.Products),
		slog.Int("bulletins", res.Bulletins))
	return res, nil
}

func (s *Seeder) seedUsers(ctx context.Context, fixtures []UserFixture, res *Result) (map[string]uuid.UUID, error) {
	ids := make(map[string]uuid.UUID, len(fixtures))
	for _, fx := range fixtures {
		if existing, err := s.repos.Users.GetByEmail(ctx, fx.Email); err == nil {
			ids[fx.Email] = existing.ID
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}

		role, err := s.repos.Roles.FindByName(ctx, fx.Role)
		if err != nil {
			return nil, fmt.Errorf("user %s: role %q: %w", fx.Email, fx.Role, err)
		}
		hash, err := s.hasher.Hash(fx.Password)
		if err != nil {
			return nil, err
		}
		user := &model.User{
			Name:     fx.Name,
			Email:    fx.Email,
			Password: hash,
			RoleID:   role.ID,
			Status:   model.UserStatusActive,
		}
		if err := s.repos.Users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("user %s: %w", fx.Email, err)
		}
		ids[fx.Email] = user.ID
		res.Users++
	}
	return ids, nil
}

func (s *Seeder) seedCategories(ctx context.Context, fixtures []CategoryFixture, res *Result) (map[string]uuid.UUID, error) {
	ids := make(map[string]uuid.UUID, len(fixtures))
	for _, fx := range fixtures {
		if existing, err := s.repos.Categories.FindBySlug(ctx, fx.Slug); err == nil {
			ids[fx.Slug] = existing.ID
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}

		category := &model.ProductCategory{Name: fx.Name, Slug: fx.Slug, Description: fx.Description}
		if err := s.repos.Categories.Create(ctx, category); err != nil {
			return nil, fmt.Errorf("category %s: %w", fx.Slug, err)
		}
		ids[fx.Slug] = category.ID
		res.Categories++
	}
	return ids, nil
}

func (s *Seeder) seedProducts(ctx context.Context, fixtures []ProductFixture, users, categories map[string]uuid.UUID, res *Result) error {
	for _, fx := range fixtures {
		price, err := decimal.NewFromString(fx.Price)
		if err != nil {
			return fmt.Errorf("product %s: price: %w", fx.Name, err)
		}
		product := &model.Product{
			Name:             fx.Name,
			Description:      fx.Description,
			ShortDescription: fx.ShortDescription,
			Price:            price,
			Stock:            fx.Stock,
			Status:           model.ProductStatusActive,
			CategoryID:       lookup(categories, fx.Category),
			CreatedBy:        lookup(users, fx.CreatedBy),
		}
		if err := s.repos.Products.Create(ctx, product); err != nil {
			return fmt.Errorf("product %s: %w", fx.Name, err)
		}
		res.Products++
	}
	return nil
}

func (s *Seeder) seedBulletins(ctx context.Context, fixtures []BulletinFixture, users map[string]uuid.UUID, res *Result) error {
	for _, fx := range fixtures {
		bulletin := &model.Bulletin{
			Type:             fx.Type,
			Title:            fx.Title,
			Description:      fx.Description,
			ShortDescription: fx.ShortDescription,
			Location:         fx.Location,
			Status:           model.BulletinStatusPublished,
			CreatedBy:        lookup(users, fx.CreatedBy),
		}
		if fx.EventDate != "" {
			d, err := time.Parse(time.DateOnly, fx.EventDate)
			if err != nil {
				return fmt.Errorf("bulletin %s: event date: %w", fx.Title, err)
			}
			bulletin.EventDate = &d
		}
		if err := s.repos.Bulletins.Create(ctx, bulletin); err != nil {
			return fmt.Errorf("bulletin %s: %w", fx.Title, err)
		}
		res.Bulletins++
	}
	return nil
}

func lookup(ids map[string]uuid.UUID, key string) *uuid.UUID {
	id, ok := ids[key]
	if !ok {
		return nil
	}
	return &id
}
