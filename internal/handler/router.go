package handler

import (
	"net/http"
	"time"

	"vastustructural/internal/service"
	"vastustructural/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouterConfig carries the settings the HTTP layer needs
type RouterConfig struct {
	Secret         []byte
	TokenTTL       time.Duration
	UploadDir      string
	AllowedOrigins []string
}

const maxUploadMemory = 32 << 20

// NewRouter registers every portal route on a fresh gin engine
func NewRouter(cfg RouterConfig, services *service.Services, hub *websocket.Hub) *gin.Engine {
	router := gin.Default()
	router.MaxMultipartMemory = maxUploadMemory

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = []string{"http://localhost:5173"}
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	if hub != nil {
		router.GET("/ws", func(c *gin.Context) {
			websocket.ServeWs(hub, c, cfg.Secret)
		})
	}

	if cfg.UploadDir != "" {
		router.Static(UploadsURLPrefix, cfg.UploadDir)
	}

	uploads := &UploadStore{Dir: cfg.UploadDir}
	root := router.Group("")
	NewAuthHandler(services.Users, services.Contractors, cfg.Secret, cfg.TokenTTL).RegisterRoutes(root)
	NewPublicHandler(services.Projects, services.Feed, services.Checkout, services.Leads).RegisterRoutes(root)
	NewPartnerHandler(services.Contractors, services.Leads, cfg.Secret).RegisterRoutes(root)
	NewProjectHandler(services.Projects, services.Lifecycle, services.Feed, uploads, cfg.Secret).RegisterRoutes(root)
	NewContractorPortalHandler(services.Projects, services.Lifecycle, services.Feed, uploads, cfg.Secret).RegisterRoutes(root)
	NewAuditHandler(services.Audit, cfg.Secret).RegisterRoutes(root)
	NewStatisticsHandler(services.Statistics, services.Revenue, cfg.Secret).RegisterRoutes(root)

	return router
}
