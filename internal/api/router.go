package api

import (
	"database/sql"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/kata-academy/useradmin/internal/api/handler"
	"github.com/kata-academy/useradmin/internal/api/middleware"
	"github.com/kata-academy/useradmin/internal/core/domain"
)

// Deps carries the explicitly constructed collaborators the router wires into
// handlers. The composition root builds them; nothing here reaches for
// globals.
type Deps struct {
	Users     *handler.UserHandler
	Auth      *handler.AuthHandler
	JWTSecret string
	Revoked   middleware.TokenChecker
	Renderer  echo.Renderer
	Logger    zerolog.Logger

	// Health probe targets.
	DB    *sql.DB
	Redis *redis.Client
}

// NewRouter builds and returns the Echo instance with all routes registered.
//
// Route → permission contract: /admin* requires the ROLE_ADMIN authority,
// /user and /logout require only an authenticated session, /login and the
// probes are public.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Renderer = deps.Renderer
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	// HTML forms can only POST; the hidden _method field upgrades to PATCH/DELETE.
	e.Pre(echomiddleware.MethodOverrideWithConfig(echomiddleware.MethodOverrideConfig{
		Getter: echomiddleware.MethodFromForm("_method"),
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("useradmin"))

	authenticated := middleware.Auth(deps.JWTSecret, deps.Revoked)
	adminOnly := middleware.RequireAuthority(domain.RoleAdmin)

	// --- Auth routes ---
	e.GET("/login", deps.Auth.LoginForm)
	e.POST("/login", deps.Auth.Login)
	e.POST("/logout", deps.Auth.Logout, authenticated)

	// --- Self-service profile ---
	e.GET("/user", deps.Users.Profile, authenticated)

	// --- Admin CRUD ---
	admin := e.Group("/admin", authenticated, adminOnly)
	admin.GET("", deps.Users.List)
	admin.GET("/new", deps.Users.New)
	admin.POST("", deps.Users.Create)
	admin.GET("/:id", deps.Users.Find)
	admin.GET("/:id/edit", deps.Users.Edit)
	admin.PATCH("/:id", deps.Users.Update)
	admin.DELETE("/:id", deps.Users.Delete)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.DB, deps.Redis)

	e.GET("/health", healthHandler.Liveness)          // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
