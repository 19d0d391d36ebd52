package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/kata-academy/useradmin/internal/api/metrics"
	"github.com/kata-academy/useradmin/internal/api/middleware"
	"github.com/kata-academy/useradmin/internal/core/domain"
	"github.com/kata-academy/useradmin/internal/core/ports"
)

// UserHandler serves the admin CRUD pages and the self-service profile page.
// Authorization is enforced by the route middleware, not here.
type UserHandler struct {
	users ports.UserService
	roles ports.RoleRepository
}

func NewUserHandler(users ports.UserService, roles ports.RoleRepository) *UserHandler {
	return &UserHandler{users: users, roles: roles}
}

// userForm is the create/edit payload bound from the submitted HTML form.
type userForm struct {
	ID       int64   `form:"id"`
	Username string  `form:"username" validate:"required"`
	Age      int     `form:"age" validate:"gt=0,lte=130"`
	Email    string  `form:"email" validate:"required,email"`
	Password string  `form:"password" validate:"required"`
	RoleIDs  []int64 `form:"roles"`
}

// HasRole reports whether the form has the role id selected. Used by the
// form templates to mark multi-select options.
func (f userForm) HasRole(id int64) bool {
	for _, rid := range f.RoleIDs {
		if rid == id {
			return true
		}
	}
	return false
}

// Profile handles GET /user — the authenticated principal's own record.
func (h *UserHandler) Profile(c echo.Context) error {
	username, _ := c.Get(middleware.CtxUsername).(string)

	user, err := h.users.GetByUsername(c.Request().Context(), username)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}

	return c.Render(http.StatusOK, "user", echo.Map{"user": user})
}

// List handles GET /admin.
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.users.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "getAll", echo.Map{"users": users})
}

// Find handles GET /admin/:id.
func (h *UserHandler) Find(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	user, err := h.users.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "find", echo.Map{"user": user})
}

// New handles GET /admin/new — an empty creation form with all assignable roles.
func (h *UserHandler) New(c echo.Context) error {
	allRoles, err := h.roles.FindAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "new", echo.Map{
		"user":     userForm{},
		"allRoles": allRoles,
	})
}

// Create handles POST /admin. Validation failures re-render the creation form
// with field messages; a username collision propagates from the store.
func (h *UserHandler) Create(c echo.Context) error {
	var form userForm
	if err := c.Bind(&form); err != nil {
		return h.renderForm(c, "new", form, fieldErrors(err))
	}
	if err := c.Validate(&form); err != nil {
		return h.renderForm(c, "new", form, fieldErrors(err))
	}

	roles, err := h.roles.FindByIDs(c.Request().Context(), form.RoleIDs)
	if err != nil {
		return err
	}

	user := domain.User{
		Username: form.Username,
		Age:      form.Age,
		Email:    form.Email,
		Password: form.Password,
		Roles:    roles,
	}
	if err := h.users.Create(c.Request().Context(), &user); err != nil {
		return err
	}

	metrics.UsersCreatedTotal.Inc()
	return c.Redirect(http.StatusSeeOther, "/admin")
}

// Edit handles GET /admin/:id/edit. The form redisplays the stored password
// digest; an untouched resubmission must round-trip without a re-hash.
func (h *UserHandler) Edit(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	user, err := h.users.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	allRoles, err := h.roles.FindAll(c.Request().Context())
	if err != nil {
		return err
	}

	form := userForm{
		ID:       user.ID,
		Username: user.Username,
		Age:      user.Age,
		Email:    user.Email,
		Password: user.Password,
	}
	for _, r := range user.Roles {
		form.RoleIDs = append(form.RoleIDs, r.ID)
	}

	return c.Render(http.StatusOK, "edit", echo.Map{
		"user":     form,
		"allRoles": allRoles,
	})
}

// Update handles PATCH /admin/:id. The lookup id comes from the submitted
// body, not the path; the path id exists only for the route shape.
func (h *UserHandler) Update(c echo.Context) error {
	var form userForm
	if err := c.Bind(&form); err != nil {
		return h.renderForm(c, "edit", form, fieldErrors(err))
	}
	if err := c.Validate(&form); err != nil {
		return h.renderForm(c, "edit", form, fieldErrors(err))
	}

	roles, err := h.roles.FindByIDs(c.Request().Context(), form.RoleIDs)
	if err != nil {
		return err
	}

	user := domain.User{
		ID:       form.ID,
		Username: form.Username,
		Age:      form.Age,
		Email:    form.Email,
		Password: form.Password,
		Roles:    roles,
	}
	if err := h.users.Update(c.Request().Context(), &user); err != nil {
		return err
	}

	metrics.UsersUpdatedTotal.Inc()
	return c.Redirect(http.StatusSeeOther, "/admin")
}

// Delete handles DELETE /admin/:id. Deleting an unknown id still redirects.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.users.Delete(c.Request().Context(), id); err != nil {
		return err
	}

	metrics.UsersDeletedTotal.Inc()
	return c.Redirect(http.StatusSeeOther, "/admin")
}

func (h *UserHandler) renderForm(c echo.Context, view string, form userForm, errs map[string]string) error {
	allRoles, err := h.roles.FindAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, view, echo.Map{
		"user":     form,
		"allRoles": allRoles,
		"errors":   errs,
	})
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	return id, nil
}
