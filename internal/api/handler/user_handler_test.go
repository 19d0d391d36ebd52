package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/kata-academy/useradmin/internal/api/middleware"
	"github.com/kata-academy/useradmin/internal/core/domain"
)

// captureRenderer records the view name and attributes a handler rendered.
type captureRenderer struct {
	name string
	data echo.Map
}

func (r *captureRenderer) Render(_ io.Writer, name string, data interface{}, _ echo.Context) error {
	r.name = name
	r.data, _ = data.(echo.Map)
	return nil
}

type stubUserService struct {
	listFn          func(ctx context.Context) ([]domain.User, error)
	getByIDFn       func(ctx context.Context, id int64) (*domain.User, error)
	getByUsernameFn func(ctx context.Context, username string) (*domain.User, error)
	createFn        func(ctx context.Context, user *domain.User) error
	updateFn        func(ctx context.Context, user *domain.User) error
	deleteFn        func(ctx context.Context, id int64) error
}

func (s *stubUserService) ListAll(ctx context.Context) ([]domain.User, error) {
	return s.listFn(ctx)
}
func (s *stubUserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *stubUserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *stubUserService) Create(ctx context.Context, user *domain.User) error {
	return s.createFn(ctx, user)
}
func (s *stubUserService) Update(ctx context.Context, user *domain.User) error {
	return s.updateFn(ctx, user)
}
func (s *stubUserService) Delete(ctx context.Context, id int64) error {
	return s.deleteFn(ctx, id)
}

type stubRoleRepo struct {
	roles []domain.Role
}

func (r *stubRoleRepo) FindAll(_ context.Context) ([]domain.Role, error) {
	return r.roles, nil
}

func (r *stubRoleRepo) FindByIDs(_ context.Context, ids []int64) ([]domain.Role, error) {
	var found []domain.Role
	for _, id := range ids {
		matched := false
		for _, role := range r.roles {
			if role.ID == id {
				found = append(found, role)
				matched = true
				break
			}
		}
		if !matched {
			return nil, domain.ErrRoleNotFound
		}
	}
	return found, nil
}

func defaultRoles() *stubRoleRepo {
	return &stubRoleRepo{roles: []domain.Role{
		{ID: 1, Name: domain.RoleAdmin},
		{ID: 2, Name: domain.RoleUser},
	}}
}

func newFormContext(t *testing.T, method, target string, form url.Values) (echo.Context, *httptest.ResponseRecorder, *captureRenderer) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	renderer := &captureRenderer{}
	e.Renderer = renderer

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec, renderer
}

func TestUserHandler_Create_BlankUsername(t *testing.T) {
	persisted := false
	svc := &stubUserService{
		createFn: func(ctx context.Context, user *domain.User) error {
			persisted = true
			return nil
		},
	}
	h := NewUserHandler(svc, defaultRoles())

	form := url.Values{
		"username": {""},
		"age":      {"30"},
		"email":    {"a@x.com"},
		"password": {"pw"},
	}
	c, rec, renderer := newFormContext(t, http.MethodPost, "/admin", form)

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if persisted {
		t.Fatalf("no record must be persisted on validation failure")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 re-render, got %d", rec.Code)
	}
	if renderer.name != "new" {
		t.Fatalf("expected new view, got %q", renderer.name)
	}
	errs, _ := renderer.data["errors"].(map[string]string)
	if errs["username"] == "" {
		t.Fatalf("expected username error, got %v", errs)
	}
}

func TestUserHandler_Create_Success(t *testing.T) {
	var created *domain.User
	svc := &stubUserService{
		createFn: func(ctx context.Context, user *domain.User) error {
			created = user
			return nil
		},
	}
	h := NewUserHandler(svc, defaultRoles())

	form := url.Values{
		"username": {"alice"},
		"age":      {"30"},
		"email":    {"a@x.com"},
		"password": {"pw1"},
		"roles":    {"2"},
	}
	c, rec, _ := newFormContext(t, http.MethodPost, "/admin", form)

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/admin" {
		t.Fatalf("expected redirect to /admin, got %q", loc)
	}
	if created == nil || created.Username != "alice" || created.Age != 30 {
		t.Fatalf("unexpected created user: %+v", created)
	}
	if len(created.Roles) != 1 || created.Roles[0].Name != domain.RoleUser {
		t.Fatalf("roles not resolved: %+v", created.Roles)
	}
}

func TestUserHandler_Create_DuplicateUsername(t *testing.T) {
	svc := &stubUserService{
		createFn: func(ctx context.Context, user *domain.User) error {
			return domain.ErrUserExists
		},
	}
	h := NewUserHandler(svc, defaultRoles())

	form := url.Values{
		"username": {"alice"},
		"age":      {"30"},
		"email":    {"a@x.com"},
		"password": {"pw1"},
	}
	c, _, _ := newFormContext(t, http.MethodPost, "/admin", form)

	if err := h.Create(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists to propagate, got %v", err)
	}
}

func TestUserHandler_Find_Success(t *testing.T) {
	svc := &stubUserService{
		getByIDFn: func(ctx context.Context, id int64) (*domain.User, error) {
			return &domain.User{ID: id, Username: "alice"}, nil
		},
	}
	h := NewUserHandler(svc, defaultRoles())

	c, rec, renderer := newFormContext(t, http.MethodGet, "/admin/7", nil)
	c.SetParamNames("id")
	c.SetParamValues("7")

	if err := h.Find(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || renderer.name != "find" {
		t.Fatalf("expected find view with 200, got %q %d", renderer.name, rec.Code)
	}
}

func TestUserHandler_Find_NotFound(t *testing.T) {
	svc := &stubUserService{
		getByIDFn: func(ctx context.Context, id int64) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	h := NewUserHandler(svc, defaultRoles())

	c, _, _ := newFormContext(t, http.MethodGet, "/admin/7", nil)
	c.SetParamNames("id")
	c.SetParamValues("7")

	if err := h.Find(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound to propagate, got %v", err)
	}
}

func TestUserHandler_Find_BadID(t *testing.T) {
	h := NewUserHandler(&stubUserService{}, defaultRoles())

	c, _, _ := newFormContext(t, http.MethodGet, "/admin/abc", nil)
	c.SetParamNames("id")
	c.SetParamValues("abc")

	err := h.Find(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 error, got %v", err)
	}
}

// The update lookup id comes from the submitted body, not the path.
func TestUserHandler_Update_UsesBodyID(t *testing.T) {
	var updated *domain.User
	svc := &stubUserService{
		updateFn: func(ctx context.Context, user *domain.User) error {
			updated = user
			return nil
		},
	}
	h := NewUserHandler(svc, defaultRoles())

	form := url.Values{
		"id":       {"1"},
		"username": {"alice"},
		"age":      {"31"},
		"email":    {"a@x.com"},
		"password": {"$2a$10$storeddigest"},
		"roles":    {"1", "2"},
	}
	c, rec, _ := newFormContext(t, http.MethodPatch, "/admin/999", form)
	c.SetParamNames("id")
	c.SetParamValues("999")

	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if updated == nil || updated.ID != 1 {
		t.Fatalf("expected body id 1 to drive the update, got %+v", updated)
	}
	if len(updated.Roles) != 2 {
		t.Fatalf("expected both roles resolved, got %+v", updated.Roles)
	}
}

func TestUserHandler_Update_ValidationFailure(t *testing.T) {
	svc := &stubUserService{
		updateFn: func(ctx context.Context, user *domain.User) error {
			t.Fatalf("service must not be reached")
			return nil
		},
	}
	h := NewUserHandler(svc, defaultRoles())

	form := url.Values{
		"id":       {"1"},
		"username": {"alice"},
		"age":      {"-3"},
		"email":    {"not-an-email"},
		"password": {"pw"},
	}
	c, rec, renderer := newFormContext(t, http.MethodPatch, "/admin/1", form)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || renderer.name != "edit" {
		t.Fatalf("expected edit re-render with 200, got %q %d", renderer.name, rec.Code)
	}
	errs, _ := renderer.data["errors"].(map[string]string)
	if errs["age"] == "" || errs["email"] == "" {
		t.Fatalf("expected age and email errors, got %v", errs)
	}
}

func TestUserHandler_Delete_Redirects(t *testing.T) {
	var deleted int64
	svc := &stubUserService{
		deleteFn: func(ctx context.Context, id int64) error {
			deleted = id
			return nil
		},
	}
	h := NewUserHandler(svc, defaultRoles())

	c, rec, _ := newFormContext(t, http.MethodDelete, "/admin/5", nil)
	c.SetParamNames("id")
	c.SetParamValues("5")

	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if deleted != 5 {
		t.Fatalf("expected delete of id 5, got %d", deleted)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != "/admin" {
		t.Fatalf("expected redirect to /admin, got %d", rec.Code)
	}
}

func TestUserHandler_Profile(t *testing.T) {
	svc := &stubUserService{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			if username != "alice" {
				t.Fatalf("unexpected username: %s", username)
			}
			return &domain.User{ID: 1, Username: "alice"}, nil
		},
	}
	h := NewUserHandler(svc, defaultRoles())

	c, rec, renderer := newFormContext(t, http.MethodGet, "/user", nil)
	c.Set(middleware.CtxUsername, "alice")

	if err := h.Profile(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || renderer.name != "user" {
		t.Fatalf("expected user view with 200, got %q %d", renderer.name, rec.Code)
	}
}

func TestUserHandler_Edit_PrefillsStoredDigest(t *testing.T) {
	svc := &stubUserService{
		getByIDFn: func(ctx context.Context, id int64) (*domain.User, error) {
			return &domain.User{
				ID: id, Username: "alice", Age: 30, Email: "a@x.com",
				Password: "$2a$10$storeddigest",
				Roles:    []domain.Role{{ID: 2, Name: domain.RoleUser}},
			}, nil
		},
	}
	h := NewUserHandler(svc, defaultRoles())

	c, _, renderer := newFormContext(t, http.MethodGet, "/admin/1/edit", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := h.Edit(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if renderer.name != "edit" {
		t.Fatalf("expected edit view, got %q", renderer.name)
	}
	form, _ := renderer.data["user"].(userForm)
	if form.Password != "$2a$10$storeddigest" {
		t.Fatalf("edit form must redisplay the stored digest, got %q", form.Password)
	}
	if !form.HasRole(2) || form.HasRole(1) {
		t.Fatalf("unexpected selected roles: %v", form.RoleIDs)
	}
}

func TestUserHandler_New_ListsAllRoles(t *testing.T) {
	h := NewUserHandler(&stubUserService{}, defaultRoles())

	c, rec, renderer := newFormContext(t, http.MethodGet, "/admin/new", nil)

	if err := h.New(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || renderer.name != "new" {
		t.Fatalf("expected new view with 200, got %q %d", renderer.name, rec.Code)
	}
	roles, _ := renderer.data["allRoles"].([]domain.Role)
	if len(roles) != 2 {
		t.Fatalf("expected all roles in the form, got %v", roles)
	}
}
