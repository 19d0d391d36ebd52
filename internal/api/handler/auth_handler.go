package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kata-academy/useradmin/internal/api/metrics"
	"github.com/kata-academy/useradmin/internal/api/middleware"
	"github.com/kata-academy/useradmin/internal/core/domain"
	"github.com/kata-academy/useradmin/internal/core/ports"
)

// TokenRevoker invalidates a session token id for its remaining lifetime.
// A nil revoker makes logout cookie-clearing only.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
}

// AuthHandler serves the login form and the login/logout actions.
type AuthHandler struct {
	auth     ports.AuthService
	revoker  TokenRevoker
	tokenTTL time.Duration
}

func NewAuthHandler(auth ports.AuthService, revoker TokenRevoker, tokenTTL time.Duration) *AuthHandler {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthHandler{auth: auth, revoker: revoker, tokenTTL: tokenTTL}
}

type loginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

// LoginForm handles GET /login.
func (h *AuthHandler) LoginForm(c echo.Context) error {
	return c.Render(http.StatusOK, "login", echo.Map{})
}

// Login handles POST /login. Unknown username and wrong password produce the
// same message; the form never reveals which one failed.
func (h *AuthHandler) Login(c echo.Context) error {
	var form loginForm
	if err := c.Bind(&form); err != nil {
		return c.Render(http.StatusBadRequest, "login", echo.Map{"error": "invalid payload"})
	}

	token, _, err := h.auth.Login(c.Request().Context(), form.Username, form.Password)
	if err != nil {
		if err == domain.ErrInvalidCredentials {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return c.Render(http.StatusUnauthorized, "login", echo.Map{
				"error":    "invalid username or password",
				"username": form.Username,
			})
		}
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.tokenTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.Redirect(http.StatusSeeOther, "/user")
}

// Logout handles POST /logout: revokes the current token and clears the
// session cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	if h.revoker != nil {
		jti, _ := c.Get(middleware.CtxTokenID).(string)
		expiry, _ := c.Get(middleware.CtxTokenExpiry).(time.Time)
		if jti != "" {
			if err := h.revoker.Revoke(c.Request().Context(), jti, time.Until(expiry)); err != nil {
				return err
			}
		}
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	return c.Redirect(http.StatusSeeOther, "/login")
}
