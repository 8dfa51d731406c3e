package handler

import (
	"log/slog"
	"net/http"

	"portal/internal/config"
	"portal/internal/middleware"
	"portal/internal/security"
	"portal/internal/service"
	"portal/internal/storage"
	"portal/pkg/response"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Deps carries everything the router needs to build its handlers.
type Deps struct {
	Config    *config.Config
	Logger    *slog.Logger
	Tokens    *security.TokenService
	Limit     gin.HandlerFunc
	UploadDir string

	Auth      service.AuthService
	Users     service.UserService
	Roles     service.RoleService
	Products  service.ProductService
	Bulletins service.BulletinService
	Contacts  service.ContactService
	Audit     service.AuditService
	Stats     service.StatisticsService
}

// NewRouter builds the gin engine with the global middleware chain and every API route.
// The responder runs before Authenticate so token failures use the same error body.
func NewRouter(deps Deps) *gin.Engine {
	production := deps.Config != nil && deps.Config.Production()

	router := gin.New()
	if !production {
		router.Use(gin.Logger())
	}
	router.Use(
		middleware.Recovery(deps.Logger, production),
		middleware.ErrorResponder(deps.Logger, production),
	)

	if deps.Config != nil && len(deps.Config.CORSOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = deps.Config.CORSOrigins
		corsConfig.AllowCredentials = true
		corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
		corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
		router.Use(cors.New(corsConfig))
	}

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if deps.UploadDir != "" {
		router.Static(storage.URLPrefix, deps.UploadDir)
	}

	api := router.Group("/api")
	api.Use(middleware.Authenticate(deps.Tokens))

	NewHealthHandler().RegisterRoutes(api)
	NewAuthHandler(deps.Auth, deps.Limit).RegisterRoutes(api)
	NewUserHandler(deps.Users).RegisterRoutes(api)
	NewRoleHandler(deps.Roles).RegisterRoutes(api)
	NewProductHandler(deps.Products).RegisterRoutes(api)
	NewBulletinHandler(deps.Bulletins).RegisterRoutes(api)
	NewContactHandler(deps.Contacts, deps.Limit).RegisterRoutes(api)
	NewAuditHandler(deps.Audit).RegisterRoutes(api)
	NewStatisticsHandler(deps.Stats).RegisterRoutes(api)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, response.Message("Route not found"))
	})

	return router
}
