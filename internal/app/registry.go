package app

import (
	"context"
	"fmt"

	"transferdesk/internal/audit"
	"transferdesk/internal/auth"
	"transferdesk/internal/notification"
	"transferdesk/internal/rbac"
	"transferdesk/internal/rbac/infra"
	"transferdesk/internal/transfer"
	"transferdesk/internal/upload"
	"transferdesk/internal/user"
)

// registerModules wires repositories, services, handlers and routes. Order
// matters only for RBAC, whose policy must be loaded before the first
// request hits an authorized route.
func (a *App) registerModules() error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return fmt.Errorf("unwrap sql.DB: %w", err)
	}

	enforcer, err := infra.NewEnforcer(envOr("RBAC_MODEL_PATH", "internal/rbac/infra/model.conf"))
	if err != nil {
		return fmt.Errorf("build enforcer: %w", err)
	}
	rbacRepo := rbac.NewRepository(a.DB)
	rbacService := rbac.NewService(rbacRepo, enforcer)
	if err := rbacRepo.SeedDefaults(context.Background()); err != nil {
		return fmt.Errorf("seed permissions: %w", err)
	}
	if err := rbacService.Reload(context.Background()); err != nil {
		return fmt.Errorf("load policy: %w", err)
	}

	userRepo := user.NewRepository(a.DB)
	auditRepo := audit.NewRepository(a.DB)
	uploadRepo := upload.NewRepository(a.DB)
	transferRepo := transfer.NewRepository(a.DB)

	notifier := notification.NewNoop()
	if a.KafkaWriter != nil {
		notifier = notification.NewKafkaNotifier(a.KafkaWriter)
	}

	authService := auth.NewService(userRepo)
	userService := user.NewService(userRepo)
	transferService := transfer.NewService(
		sqlDB,
		transferRepo,
		auditRepo,
		uploadRepo,
		userRepo,
		notifier,
		a.Redis,
	)

	authHandler := auth.NewHandler(authService)
	userHandler := user.NewHandler(userService)
	transferHandler := transfer.NewHandler(transferService, a.Redis)

	api := a.Router.Group("/api/v1")

	auth.RegisterRoutes(api, authHandler)
	user.RegisterRoutes(api, userHandler, rbacService)
	transfer.RegisterRoutes(api, transferHandler, rbacService, a.Redis)

	return nil
}
