package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"portal/internal/config"
	"portal/internal/rbac"
	"portal/internal/repository/memory"
	"portal/internal/security"
	"portal/internal/service"
	"portal/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type testServer struct {
	router http.Handler
	users  service.UserService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repos := memory.NewStore().Repositories()
	registry := rbac.NewRegistry()
	hasher := security.NewHasher(4)
	tokens := security.NewTokenService(security.TokenConfig{
		AccessSecret:  []byte("access"),
		RefreshSecret: []byte("refresh"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	})
	dir := t.TempDir()
	files, err := storage.NewLocal(dir)
	if err != nil {
		t.Fatal(err)
	}

	roles := service.NewRoleService(repos.Roles, registry)
	if err := roles.EnsureDefaultRoles(context.Background()); err != nil {
		t.Fatal(err)
	}
	users := service.NewUserService(repos, hasher, registry)

	router := NewRouter(Deps{
		Config:    &config.Config{Env: "development"},
		Logger:    logger,
		Tokens:    tokens,
		UploadDir: dir,
		Auth:      service.NewAuthService(repos, hasher, tokens, registry),
		Users:     users,
		Roles:     roles,
		Products:  service.NewProductService(repos, files, logger),
		Bulletins: service.NewBulletinService(repos),
		Contacts:  service.NewContactService(repos),
		Audit:     service.NewAuditService(repos.Audit),
		Stats:     service.NewStatisticsService(repos.Statistics),
	})
	return &testServer{router: router, users: users}
}

type result struct {
	Code int
	Body map[string]any
}

func (s *testServer) do(t *testing.T, method, path, token string, payload any) result {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.serve(t, req, token)
}

func (s *testServer) serve(t *testing.T, req *http.Request, token string) result {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	res := result{Code: w.Code}
	if err := json.Unmarshal(w.Body.Bytes(), &res.Body); err != nil {
		t.Fatalf("%s %s: invalid json %q", req.Method, req.URL.Path, w.Body.String())
	}
	return res
}

// userWithRole creates an account with the role and returns its id and an access token.
func (s *testServer) userWithRole(t *testing.T, email string, role rbac.Role) (uuid.UUID, string) {
	t.Helper()
	id, err := s.users.Create(context.Background(), nil, service.CreateUserRequest{
		Name: "Test", Email: email, Password: "secret", Role: string(role),
	})
	if err != nil {
		t.Fatal(err)
	}
	res := s.do(t, "POST", "/api/auth/login", "", map[string]string{"email": email, "password": "secret"})
	if res.Code != http.StatusOK {
		t.Fatalf("login %s: %d %v", email, res.Code, res.Body)
	}
	return id, res.Body["accessToken"].(string)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	res := s.do(t, "GET", "/api/health", "", nil)
	if res.Code != http.StatusOK || res.Body["status"] != "OK" {
		t.Errorf("health %d %v", res.Code, res.Body)
	}

	res = s.do(t, "GET", "/api/nothing-here", "", nil)
	if res.Code != http.StatusNotFound || res.Body["message"] != "Route not found" {
		t.Errorf("unknown route %d %v", res.Code, res.Body)
	}
}

func TestRegisterIgnoresRequestedRole(t *testing.T) {
	s := newTestServer(t)
	payload := map[string]string{"name": "Eve", "email": "eve@x.com", "password": "pw", "role": "admin"}

	res := s.do(t, "POST", "/api/auth/register", "", payload)
	if res.Code != http.StatusCreated {
		t.Fatalf("register %d %v", res.Code, res.Body)
	}

	login := s.do(t, "POST", "/api/auth/login", "", map[string]string{"email": "eve@x.com", "password": "pw"})
	user := login.Body["user"].(map[string]any)
	if user["role"] != string(rbac.RoleCustomer) {
		t.Errorf("role = %v", user["role"])
	}

	res = s.do(t, "POST", "/api/auth/register", "", payload)
	if res.Code != http.StatusConflict {
		t.Errorf("duplicate register %d", res.Code)
	}

	res = s.do(t, "POST", "/api/auth/register", "", map[string]string{"email": "x@x.com"})
	if res.Code != http.StatusBadRequest {
		t.Errorf("missing fields %d", res.Code)
	}
}

func TestLoginFailures(t *testing.T) {
	s := newTestServer(t)
	s.userWithRole(t, "a@x.com", rbac.RoleUser)

	res := s.do(t, "POST", "/api/auth/login", "", map[string]string{"email": "a@x.com", "password": "nope"})
	if res.Code != http.StatusUnauthorized || res.Body["message"] != "Invalid credentials" {
		t.Errorf("wrong password %d %v", res.Code, res.Body)
	}
	if _, ok := res.Body["stack"]; ok {
		t.Error("4xx responses must not carry a stack")
	}

	res = s.do(t, "POST", "/api/auth/login", "", map[string]string{"email": "a@x.com"})
	if res.Code != http.StatusBadRequest {
		t.Errorf("missing password %d", res.Code)
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestServer(t)
	s.userWithRole(t, "a@x.com", rbac.RoleSales)
	login := s.do(t, "POST", "/api/auth/login", "", map[string]string{"email": "a@x.com", "password": "secret"})
	access := login.Body["accessToken"].(string)
	refresh := login.Body["refreshToken"].(string)

	me := s.do(t, "GET", "/api/auth/me", access, nil)
	if me.Code != http.StatusOK || me.Body["role"] != string(rbac.RoleSales) {
		t.Errorf("me %d %v", me.Code, me.Body)
	}
	if res := s.do(t, "GET", "/api/auth/me", "", nil); res.Code != http.StatusUnauthorized {
		t.Errorf("me anonymous %d", res.Code)
	}
	if res := s.do(t, "GET", "/api/auth/me", "garbage", nil); res.Code != http.StatusUnauthorized {
		t.Errorf("me with bad token %d", res.Code)
	}

	rotated := s.do(t, "POST", "/api/auth/refresh", "", map[string]string{"refreshToken": refresh})
	if rotated.Code != http.StatusOK || rotated.Body["refreshToken"] == refresh {
		t.Fatalf("refresh %d %v", rotated.Code, rotated.Body)
	}
	newRefresh := rotated.Body["refreshToken"].(string)

	for i := 0; i < 2; i++ {
		res := s.do(t, "POST", "/api/auth/logout", "", map[string]string{"refreshToken": newRefresh})
		if res.Code != http.StatusOK {
			t.Errorf("logout #%d: %d", i+1, res.Code)
		}
	}
	if res := s.do(t, "POST", "/api/auth/logout", "", nil); res.Code != http.StatusOK {
		t.Errorf("logout without body %d", res.Code)
	}

	res := s.do(t, "POST", "/api/auth/refresh", "", map[string]string{"refreshToken": newRefresh})
	if res.Code != http.StatusUnauthorized {
		t.Errorf("refresh after logout %d", res.Code)
	}
}

func TestProductVisibility(t *testing.T) {
	s := newTestServer(t)
	_, sales := s.userWithRole(t, "sales@x.com", rbac.RoleSales)
	_, customer := s.userWithRole(t, "c@x.com", rbac.RoleCustomer)

	created := s.do(t, "POST", "/api/products", sales, map[string]any{
		"name": "Box", "description": "Long", "short_description": "Short", "price": 25.5, "stock": 3,
	})
	if created.Code != http.StatusCreated {
		t.Fatalf("create %d %v", created.Code, created.Body)
	}
	id := created.Body["id"].(string)

	anon := s.do(t, "GET", "/api/products", "", nil)
	if anon.Body["authenticated"] != false {
		t.Errorf("anonymous flag %v", anon.Body["authenticated"])
	}
	row := anon.Body["products"].([]any)[0].(map[string]any)
	for _, key := range []string{"price", "stock", "description"} {
		if _, ok := row[key]; ok {
			t.Errorf("anonymous list exposes %q", key)
		}
	}

	full := s.do(t, "GET", "/api/products", customer, nil)
	row = full.Body["products"].([]any)[0].(map[string]any)
	if full.Body["authenticated"] != true || row["price"] != "25.5" || row["stock"] != float64(3) {
		t.Errorf("authenticated list %v", full.Body)
	}

	for _, path := range []string{"/api/products/" + id, "/api/products/" + uuid.NewString(), "/api/products/not-a-uuid"} {
		if res := s.do(t, "GET", path, "", nil); res.Code != http.StatusUnauthorized {
			t.Errorf("anonymous GET %s: %d", path, res.Code)
		}
	}

	detail := s.do(t, "GET", "/api/products/"+id, customer, nil)
	if detail.Code != http.StatusOK {
		t.Fatalf("detail %d %v", detail.Code, detail.Body)
	}
	product := detail.Body["product"].(map[string]any)
	if product["description"] != "Long" || product["created_by_name"] != "Test" {
		t.Errorf("detail %v", product)
	}

	if res := s.do(t, "GET", "/api/products/"+uuid.NewString(), customer, nil); res.Code != http.StatusNotFound {
		t.Errorf("missing product %d", res.Code)
	}
}

func TestProductWritesRequireManager(t *testing.T) {
	s := newTestServer(t)
	_, customer := s.userWithRole(t, "c@x.com", rbac.RoleCustomer)
	_, hr := s.userWithRole(t, "hr@x.com", rbac.RoleHR)
	_, admin := s.userWithRole(t, "admin@x.com", rbac.RoleAdmin)
	payload := map[string]any{"name": "Box", "price": "1.00"}

	if res := s.do(t, "POST", "/api/products", "", payload); res.Code != http.StatusUnauthorized {
		t.Errorf("anonymous create %d", res.Code)
	}
	for _, token := range []string{customer, hr} {
		if res := s.do(t, "POST", "/api/products", token, payload); res.Code != http.StatusForbidden {
			t.Errorf("non-manager create %d", res.Code)
		}
	}

	created := s.do(t, "POST", "/api/products", admin, payload)
	if created.Code != http.StatusCreated {
		t.Fatalf("admin create %d %v", created.Code, created.Body)
	}
	id := created.Body["id"].(string)

	if res := s.do(t, "DELETE", "/api/products/"+id, customer, nil); res.Code != http.StatusForbidden {
		t.Errorf("customer delete %d", res.Code)
	}
	if res := s.do(t, "DELETE", "/api/products/"+id, admin, nil); res.Code != http.StatusOK {
		t.Errorf("admin delete %d", res.Code)
	}
	if res := s.do(t, "DELETE", "/api/products/"+id, admin, nil); res.Code != http.StatusNotFound {
		t.Errorf("second delete %d", res.Code)
	}
}

func TestProductMultipartUpload(t *testing.T) {
	s := newTestServer(t)
	_, sales := s.userWithRole(t, "sales@x.com", rbac.RoleSales)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.WriteField("name", "Crate")
	w.WriteField("price", "12.50")
	w.WriteField("stock", "4")
	part, err := w.CreatePart(map[string][]string{
		"Content-Disposition": {`form-data; name="image"; filename="crate.png"`},
		"Content-Type":        {"image/png"},
	})
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("png"))
	w.Close()

	req := httptest.NewRequest("POST", "/api/products", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	created := s.serve(t, req, sales)
	if created.Code != http.StatusCreated {
		t.Fatalf("multipart create %d %v", created.Code, created.Body)
	}
	id := created.Body["id"].(string)

	detail := s.do(t, "GET", "/api/products/"+id, sales, nil)
	url, _ := detail.Body["product"].(map[string]any)["image_url"].(string)
	if !strings.HasPrefix(url, "/uploads/products/"+id+"/") {
		t.Fatalf("image url %q", url)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest("GET", url, nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "png" {
		t.Errorf("static image %d %q", rec.Code, rec.Body.String())
	}
}

func TestUserManagementAccess(t *testing.T) {
	s := newTestServer(t)
	ownerID, owner := s.userWithRole(t, "o@x.com", rbac.RoleUser)
	_, other := s.userWithRole(t, "other@x.com", rbac.RoleSales)
	_, admin := s.userWithRole(t, "admin@x.com", rbac.RoleAdmin)
	target := "/api/admin/users/" + ownerID.String()
	update := map[string]string{"name": "X", "email": "o@x.com", "role": "admin", "status": "active"}

	for _, token := range []string{owner, other} {
		if res := s.do(t, "PUT", target, token, update); res.Code != http.StatusForbidden {
			t.Errorf("non-admin update %d", res.Code)
		}
		if res := s.do(t, "DELETE", target, token, nil); res.Code != http.StatusForbidden {
			t.Errorf("non-admin delete %d", res.Code)
		}
	}
	if res := s.do(t, "GET", "/api/admin/users", "", nil); res.Code != http.StatusUnauthorized {
		t.Errorf("anonymous list %d", res.Code)
	}

	self := "/api/users/" + ownerID.String()
	if res := s.do(t, "GET", self, other, nil); res.Code != http.StatusForbidden {
		t.Errorf("non-owner read %d", res.Code)
	}
	res := s.do(t, "GET", self, owner, nil)
	if res.Code != http.StatusOK || res.Body["user"].(map[string]any)["email"] != "o@x.com" {
		t.Errorf("owner read %d %v", res.Code, res.Body)
	}
	if _, ok := res.Body["user"].(map[string]any)["password"]; ok {
		t.Error("password hash leaked")
	}
	if res := s.do(t, "GET", self, admin, nil); res.Code != http.StatusOK {
		t.Errorf("admin read %d", res.Code)
	}

	pw := map[string]string{"currentPassword": "secret", "newPassword": "changed"}
	if res := s.do(t, "PUT", self+"/password", other, pw); res.Code != http.StatusForbidden {
		t.Errorf("non-owner password change %d", res.Code)
	}
	if res := s.do(t, "PUT", self+"/password", owner, pw); res.Code != http.StatusOK {
		t.Errorf("owner password change %d %v", res.Code, res.Body)
	}

	list := s.do(t, "GET", "/api/admin/users", admin, nil)
	if list.Code != http.StatusOK || list.Body["total"] != float64(3) {
		t.Errorf("admin list %d %v", list.Code, list.Body)
	}
	if res := s.do(t, "DELETE", target, admin, nil); res.Code != http.StatusOK {
		t.Errorf("admin delete %d", res.Code)
	}
	if res := s.do(t, "GET", target, admin, nil); res.Code != http.StatusNotFound {
		t.Errorf("deleted user %d", res.Code)
	}
}

func TestRolesAdminOnly(t *testing.T) {
	s := newTestServer(t)
	_, hr := s.userWithRole(t, "hr@x.com", rbac.RoleHR)
	_, admin := s.userWithRole(t, "admin@x.com", rbac.RoleAdmin)

	if res := s.do(t, "GET", "/api/admin/roles", hr, nil); res.Code != http.StatusForbidden {
		t.Errorf("hr roles %d", res.Code)
	}
	res := s.do(t, "GET", "/api/admin/roles", admin, nil)
	if res.Code != http.StatusOK || len(res.Body["roles"].([]any)) != len(rbac.AllRoles) {
		t.Errorf("admin roles %d %v", res.Code, res.Body)
	}
}

func TestContactInbox(t *testing.T) {
	s := newTestServer(t)
	_, hr := s.userWithRole(t, "hr@x.com", rbac.RoleHR)
	_, sales := s.userWithRole(t, "sales@x.com", rbac.RoleSales)

	created := s.do(t, "POST", "/api/contact", "", map[string]string{
		"subject": "Quote", "fullName": "Jane", "email": "jane@example.com", "message": "Hello",
	})
	if created.Code != http.StatusCreated {
		t.Fatalf("submit %d %v", created.Code, created.Body)
	}
	id := created.Body["id"].(string)

	if res := s.do(t, "GET", "/api/contact", sales, nil); res.Code != http.StatusForbidden {
		t.Errorf("sales inbox %d", res.Code)
	}
	inbox := s.do(t, "GET", "/api/contact", hr, nil)
	if inbox.Code != http.StatusOK || inbox.Body["total"] != float64(1) {
		t.Errorf("hr inbox %d %v", inbox.Code, inbox.Body)
	}

	if res := s.do(t, "PUT", "/api/contact/"+id+"/status", hr, map[string]string{"status": "spam"}); res.Code != http.StatusBadRequest {
		t.Errorf("invalid status %d", res.Code)
	}
	if res := s.do(t, "PUT", "/api/contact/"+id+"/status", hr, map[string]string{"status": "read"}); res.Code != http.StatusOK {
		t.Errorf("status update %d", res.Code)
	}
	if res := s.do(t, "DELETE", "/api/contact/"+id, hr, nil); res.Code != http.StatusOK {
		t.Errorf("delete %d", res.Code)
	}
	if res := s.do(t, "DELETE", "/api/contact/"+id, hr, nil); res.Code != http.StatusNotFound {
		t.Errorf("second delete %d", res.Code)
	}
}

func TestAuditLogEndpoint(t *testing.T) {
	s := newTestServer(t)
	_, sales := s.userWithRole(t, "sales@x.com", rbac.RoleSales)
	_, admin := s.userWithRole(t, "admin@x.com", rbac.RoleAdmin)

	created := s.do(t, "POST", "/api/products", sales, map[string]any{"name": "Box", "price": "3"})
	if created.Code != http.StatusCreated {
		t.Fatalf("create %d", created.Code)
	}

	if res := s.do(t, "GET", "/api/admin/audit-logs", sales, nil); res.Code != http.StatusForbidden {
		t.Errorf("sales audit %d", res.Code)
	}
	res := s.do(t, "GET", "/api/admin/audit-logs?action=CREATE_PRODUCT", admin, nil)
	if res.Code != http.StatusOK || res.Body["total"] != float64(1) {
		t.Fatalf("admin audit %d %v", res.Code, res.Body)
	}
	entry := res.Body["logs"].([]any)[0].(map[string]any)
	if entry["entity_id"] != created.Body["id"] || entry["username"] != "Test" {
		t.Errorf("entry %v", entry)
	}
	if res := s.do(t, "GET", "/api/admin/audit-logs?action=nope", admin, nil); res.Code != http.StatusBadRequest {
		t.Errorf("invalid action %d", res.Code)
	}
}

func TestStatisticsEndpoint(t *testing.T) {
	s := newTestServer(t)
	_, sales := s.userWithRole(t, "sales@x.com", rbac.RoleSales)
	_, admin := s.userWithRole(t, "admin@x.com", rbac.RoleAdmin)
	if res := s.do(t, "POST", "/api/products", sales, map[string]any{"name": "Box", "price": "3", "stock": 4}); res.Code != http.StatusCreated {
		t.Fatalf("create %d", res.Code)
	}

	if res := s.do(t, "GET", "/api/admin/statistics", sales, nil); res.Code != http.StatusForbidden {
		t.Errorf("sales statistics %d", res.Code)
	}

	res := s.do(t, "GET", "/api/admin/statistics?start_date=2024-01-01T00:00:00Z&end_date=2024-12-31T00:00:00Z", admin, nil)
	if res.Code != http.StatusOK {
		t.Fatalf("statistics %d %v", res.Code, res.Body)
	}
	byRole := res.Body["users_by_role"].(map[string]any)
	if byRole["admin"] != float64(1) || byRole["sales_user"] != float64(1) || byRole["hr_user"] != float64(0) {
		t.Errorf("users_by_role %v", byRole)
	}
	if res.Body["products_by_status"].(map[string]any)["active"] != float64(1) {
		t.Errorf("products_by_status %v", res.Body["products_by_status"])
	}
	period := res.Body["created_in_range"].(map[string]any)
	if period["users"] != float64(2) || period["products"] != float64(1) || period["contacts"] != float64(0) {
		t.Errorf("created_in_range %v", period)
	}
	if res.Body["total_stock_value"] != "12" {
		t.Errorf("total_stock_value %v", res.Body["total_stock_value"])
	}
	if top := res.Body["top_stocked_products"].([]any); len(top) != 1 {
		t.Errorf("top_stocked_products %v", top)
	}

	for _, q := range []string{"?start_date=yesterday", "?start_date=2024-02-01T00:00:00Z&end_date=2024-01-01T00:00:00Z"} {
		if res := s.do(t, "GET", "/api/admin/statistics"+q, admin, nil); res.Code != http.StatusBadRequest {
			t.Errorf("%s: %d", q, res.Code)
		}
	}
}

func TestStaleBearerOnPublicRoutes(t *testing.T) {
	s := newTestServer(t)
	id, _ := s.userWithRole(t, "a@x.com", rbac.RoleSales)
	login := s.do(t, "POST", "/api/auth/login", "", map[string]string{"email": "a@x.com", "password": "secret"})
	refresh := login.Body["refreshToken"].(string)

	expired := security.NewTokenService(security.TokenConfig{
		AccessSecret: []byte("access"),
		AccessTTL:    -time.Minute,
		RefreshTTL:   time.Hour,
	})
	tok, err := expired.IssueAccess(id, rbac.RoleSales)
	if err != nil {
		t.Fatal(err)
	}

	for _, bearer := range []string{tok.Value, "expired.or.garbage"} {
		if res := s.do(t, "GET", "/api/health", bearer, nil); res.Code != http.StatusOK {
			t.Errorf("health %d", res.Code)
		}
		if res := s.do(t, "GET", "/api/products/categories", bearer, nil); res.Code != http.StatusOK {
			t.Errorf("categories %d", res.Code)
		}
		if res := s.do(t, "POST", "/api/auth/login", bearer, map[string]string{"email": "a@x.com", "password": "secret"}); res.Code != http.StatusOK {
			t.Errorf("login %d %v", res.Code, res.Body)
		}
		res := s.do(t, "POST", "/api/contact", bearer, map[string]string{
			"subject": "Quote", "fullName": "Jane", "email": "jane@example.com", "message": "Hi",
		})
		if res.Code != http.StatusCreated {
			t.Errorf("contact submit %d %v", res.Code, res.Body)
		}

		// Tiered lists and gated routes report the bad token instead of serving the anonymous view.
		for _, path := range []string{"/api/products", "/api/bulletins", "/api/auth/me"} {
			if res := s.do(t, "GET", path, bearer, nil); res.Code != http.StatusUnauthorized || res.Body["message"] != "Invalid token" {
				t.Errorf("%s: %d %v", path, res.Code, res.Body)
			}
		}
	}

	// The client whose access token just expired can still rotate and sign out.
	rotated := s.do(t, "POST", "/api/auth/refresh", tok.Value, map[string]string{"refreshToken": refresh})
	if rotated.Code != http.StatusOK {
		t.Fatalf("refresh with stale bearer %d %v", rotated.Code, rotated.Body)
	}
	for i := 0; i < 2; i++ {
		res := s.do(t, "POST", "/api/auth/logout", tok.Value, map[string]string{"refreshToken": rotated.Body["refreshToken"].(string)})
		if res.Code != http.StatusOK {
			t.Errorf("logout #%d with stale bearer: %d", i+1, res.Code)
		}
	}
}
