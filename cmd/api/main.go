package main

import (
	"context"
	"log/slog"
	"os"

	_ "portal/api/swagger" // swagger docs
	"portal/internal/config"
	"portal/internal/database"
	"portal/internal/handler"
	"portal/internal/middleware"
	"portal/internal/rbac"
	"portal/internal/repository"
	"portal/internal/security"
	"portal/internal/service"
	"portal/internal/storage"

	"github.com/gin-gonic/gin"
)

// @title           Catalog Portal API
// @version         1.0
// @description     Role-gated catalog, bulletin and contact inbox API with tiered visibility for anonymous callers.
// @host            localhost:8080
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := config.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewConnection(cfg.DB, cfg.Production())
	if err != nil {
		logger.Error("database connection failed", slog.Any("error", err))
		os.Exit(1)
	}
	if err := database.Migrate(db, logger); err != nil {
		logger.Error("database migration failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("connected to PostgreSQL", slog.String("host", cfg.DB.Host), slog.String("name", cfg.DB.Name))

	store, err := storage.NewLocal(cfg.UploadDir)
	if err != nil {
		logger.Error("upload directory", slog.Any("error", err))
		os.Exit(1)
	}

	ctx := context.Background()
	rdb := config.NewRedisClient(ctx, cfg.Redis, logger)
	if rdb != nil {
		defer rdb.Close()
	}

	// Set up dependencies (Repository -> Service -> Handler)
	repos := repository.New(db)
	registry := rbac.NewRegistry()
	hasher := security.NewHasher(cfg.BcryptCost)
	tokens := security.NewTokenService(security.TokenConfig{
		AccessSecret:  []byte(cfg.JWT.Secret),
		RefreshSecret: []byte(cfg.JWT.RefreshSecret),
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		Issuer:        "portal",
	})

	roleService := service.NewRoleService(repos.Roles, registry)
	if err := roleService.EnsureDefaultRoles(ctx); err != nil {
		logger.Error("ensure roles", slog.Any("error", err))
		os.Exit(1)
	}

	deps := handler.Deps{
		Config:    cfg,
		Logger:    logger,
		Tokens:    tokens,
		Limit:     middleware.RateLimit(cfg.RateLimit, rdb, logger),
		UploadDir: store.Root(),
		Auth:      service.NewAuthService(repos, hasher, tokens, registry),
		Users:     service.NewUserService(repos, hasher, registry),
		Roles:     roleService,
		Products:  service.NewProductService(repos, store, logger),
		Bulletins: service.NewBulletinService(repos),
		Contacts:  service.NewContactService(repos),
		Audit:     service.NewAuditService(repos.Audit),
		Stats:     service.NewStatisticsService(repos.Statistics),
	}

	router := handler.NewRouter(deps)
	router.MaxMultipartMemory = storage.MaxImageSize

	logger.Info("server listening", slog.String("port", cfg.Port), slog.String("env", cfg.Env))
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}
