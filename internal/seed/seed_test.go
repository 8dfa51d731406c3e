package seed

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"portal/internal/rbac"
	"portal/internal/repository/memory"
	"portal/internal/security"
)

func newSeeder(store *memory.Store) *Seeder {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSeeder(store.Repositories(), rbac.NewRegistry(), security.NewHasher(4), logger)
}

func TestDefaultFixtures(t *testing.T) {
	f, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Users) != 5 || len(f.Categories) == 0 || len(f.Products) == 0 || len(f.Bulletins) == 0 {
		t.Fatalf("fixtures %d users, %d categories, %d products, %d bulletins",
			len(f.Users), len(f.Categories), len(f.Products), len(f.Bulletins))
	}

	registry := rbac.NewRegistry()
	seen := map[rbac.Role]bool{}
	for _, u := range f.Users {
		role, ok := registry.Parse(u.Role)
		if !ok {
			t.Errorf("user %s: unknown role %q", u.Email, u.Role)
		}
		seen[role] = true
	}
	if len(seen) != len(rbac.AllRoles) {
		t.Errorf("fixtures cover %d roles, want %d", len(seen), len(rbac.AllRoles))
	}
}

func TestRunSeedsOnce(t *testing.T) {
	store := memory.NewStore()
	s := newSeeder(store)
	ctx := context.Background()
	f, _ := Load("")

	res, err := s.Run(ctx, f, false)
	if err != nil {
		t.Fatal(err)
	}
	if res.Skipped || res.Users != 5 || res.Products != len(f.Products) || res.Bulletins != len(f.Bulletins) {
		t.Errorf("first run %+v", res)
	}

	repos := store.Repositories()
	admin, err := repos.Users.GetByEmail(ctx, "emmc.systems@gmail.com")
	if err != nil {
		t.Fatal(err)
	}
	if !security.NewHasher(4).Verify(admin.Password, "admin123") {
		t.Error("admin password not hashed from fixture")
	}

	res, err = s.Run(ctx, f, false)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Skipped {
		t.Errorf("second run should be skipped: %+v", res)
	}

	res, err = s.Run(ctx, f, true)
	if err != nil {
		t.Fatal(err)
	}
	if res.Users != 0 || res.Categories != 0 {
		t.Errorf("forced run should reuse users and categories: %+v", res)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	data := []byte(`
users:
  - name: Only Admin
    email: root@example.com
    password: pw
    role: admin
categories:
  - name: Boxes
    slug: boxes
products:
  - name: Box
    price: "9.99"
    category: boxes
    created_by: root@example.com
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	res, err := newSeeder(memory.NewStore()).Run(context.Background(), f, false)
	if err != nil {
		t.Fatal(err)
	}
	if res.Users != 1 || res.Categories != 1 || res.Products != 1 || res.Bulletins != 0 {
		t.Errorf("result %+v", res)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
