package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/kata-academy/useradmin/internal/api"
	"github.com/kata-academy/useradmin/internal/api/handler"
	"github.com/kata-academy/useradmin/internal/core/domain"
	"github.com/kata-academy/useradmin/internal/core/ports"
	"github.com/kata-academy/useradmin/internal/core/service"
	"github.com/kata-academy/useradmin/internal/infrastructure/config"
	"github.com/kata-academy/useradmin/internal/infrastructure/db/postgres"
	redisdb "github.com/kata-academy/useradmin/internal/infrastructure/db/redis"
	"github.com/kata-academy/useradmin/internal/infrastructure/security"
	"github.com/kata-academy/useradmin/internal/infrastructure/view"
	"github.com/kata-academy/useradmin/pkg/logger"
	"github.com/kata-academy/useradmin/web"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---
	db, err := postgres.Connect(ctx, postgres.Config{DSN: cfg.Postgres.DSN})
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer db.Close()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	renderer, err := view.NewRenderer(web.Templates)
	if err != nil {
		log.Fatal().Err(err).Msg("template parsing failed")
	}

	// --- Wiring: repositories → services → handlers ---
	userRepo := postgres.NewUserRepository(db)
	roleRepo := postgres.NewRoleRepository(db)
	hasher := security.NewBcryptHasher()

	userService := service.NewUserService(userRepo, hasher, log)
	principalService := service.NewPrincipalService(userService)
	authService := service.NewAuthService(principalService, hasher, cfg.JWTSecret, cfg.TokenTTL)
	denylist := redisdb.NewTokenDenylist(rdb)

	if err := seedAdmin(ctx, cfg, userService, roleRepo, log); err != nil {
		log.Fatal().Err(err).Msg("admin bootstrap failed")
	}

	e := api.NewRouter(api.Deps{
		Users:     handler.NewUserHandler(userService, roleRepo),
		Auth:      handler.NewAuthHandler(authService, denylist, cfg.TokenTTL),
		JWTSecret: cfg.JWTSecret,
		Revoked:   denylist,
		Renderer:  renderer,
		Logger:    log,
		DB:        db,
		Redis:     rdb,
	})

	// --- Serve with graceful shutdown ---
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}

// seedAdmin creates the bootstrap administrator when configured and absent, so
// a fresh deployment has a way in.
func seedAdmin(ctx context.Context, cfg *config.Config, users ports.UserService, roles ports.RoleRepository, log zerolog.Logger) error {
	if cfg.Bootstrap.AdminUsername == "" || cfg.Bootstrap.AdminPassword == "" {
		return nil
	}

	existing, err := users.GetByUsername(ctx, cfg.Bootstrap.AdminUsername)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	all, err := roles.FindAll(ctx)
	if err != nil {
		return err
	}
	var assigned []domain.Role
	for _, r := range all {
		if r.Name == domain.RoleAdmin || r.Name == domain.RoleUser {
			assigned = append(assigned, r)
		}
	}

	admin := domain.User{
		Username: cfg.Bootstrap.AdminUsername,
		Age:      1,
		Email:    cfg.Bootstrap.AdminEmail,
		Password: cfg.Bootstrap.AdminPassword,
		Roles:    assigned,
	}
	if err := users.Create(ctx, &admin); err != nil {
		return err
	}

	log.Info().Str("username", admin.Username).Msg("bootstrap admin created")
	return nil
}
