package service

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/textproto"
	"testing"
	"time"

	"portal/internal/apperr"
	"portal/internal/rbac"
	"portal/internal/repository"
	"portal/internal/repository/memory"
	"portal/internal/security"
	"portal/internal/storage"

	"github.com/google/uuid"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type testEnv struct {
	store    *memory.Store
	repos    repository.Repositories
	hasher   *security.Hasher
	tokens   *security.TokenService
	registry *rbac.Registry
	files    *storage.Local
	admin    *rbac.Principal

	auth      AuthService
	users     UserService
	products  ProductService
	bulletins BulletinService
	contacts  ContactService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repositories()
	registry := rbac.NewRegistry()
	hasher := security.NewHasher(4)
	tokens := security.NewTokenService(security.TokenConfig{
		AccessSecret:  []byte("access"),
		RefreshSecret: []byte("refresh"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	})
	files, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := NewRoleService(repos.Roles, registry).EnsureDefaultRoles(context.Background()); err != nil {
		t.Fatal(err)
	}

	return &testEnv{
		store:     store,
		repos:     repos,
		hasher:    hasher,
		tokens:    tokens,
		registry:  registry,
		files:     files,
		admin:     principal(rbac.RoleAdmin),
		auth:      NewAuthService(repos, hasher, tokens, registry),
		users:     NewUserService(repos, hasher, registry),
		products:  NewProductService(repos, files, discardLogger),
		bulletins: NewBulletinService(repos),
		contacts:  NewContactService(repos),
	}
}

// createUser adds an active user with the given role and returns its principal.
func (e *testEnv) createUser(t *testing.T, email string, role rbac.Role) *rbac.Principal {
	t.Helper()
	id, err := e.users.Create(context.Background(), e.admin, CreateUserRequest{
		Name:     "User " + email,
		Email:    email,
		Password: "secret",
		Role:     string(role),
	})
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return &rbac.Principal{UserID: id, Role: role}
}

func wantKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	if !apperr.IsKind(err, kind) {
		t.Fatalf("expected %s error, got %v", kind, err)
	}
}

func imageHeader(t *testing.T, filename, contentType string, body []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(body)
	w.Close()

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(10 << 20)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["image"][0]
}

func principal(role rbac.Role) *rbac.Principal {
	return &rbac.Principal{UserID: uuid.New(), Role: role}
}
