package main

import (
	"context"
	"log"
	"os"

	_ "vastustructural/api/swagger" // swagger docs
	"vastustructural/internal/app"
	"vastustructural/internal/catalog"
	"vastustructural/internal/config"
	"vastustructural/internal/handler"
	"vastustructural/internal/payment"
	"vastustructural/internal/service"
	"vastustructural/internal/websocket"

	"github.com/gin-gonic/gin"
)

// @title           VastuStructural Portal API
// @version         1.0
// @description     Orders, payments and project tracking for the admin, contractor and client portals.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	store, err := app.OpenStore(cfg)
	if err != nil {
		log.Fatalf("Storage setup failed: %v", err)
	}

	plans, err := catalog.Default()
	if err != nil {
		log.Fatalf("Plan catalog failed to load: %v", err)
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	gateway := payment.New(payment.Config{
		KeyID:     cfg.Payment.KeyID,
		KeySecret: cfg.Payment.KeySecret,
		BaseURL:   cfg.Payment.APIURL,
	})
	if _, ok := gateway.(*payment.Sandbox); ok {
		log.Println("Payment gateway credentials not set, using the sandbox gateway")
	}

	secret := []byte(cfg.JWTSecret)
	services := service.NewServices(store, plans, gateway, wsHub, service.NewTokenIssuer(secret, cfg.TokenTTL))

	if cfg.Admin.Email != "" && cfg.Admin.Password != "" {
		created, err := services.Users.SeedAdmin(context.Background(), cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			log.Fatalf("Admin seed failed: %v", err)
		}
		if created {
			log.Printf("Seeded admin account %s", cfg.Admin.Email)
		}
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("Upload directory %s: %v", cfg.UploadDir, err)
	}

	router := handler.NewRouter(handler.RouterConfig{
		Secret:         secret,
		TokenTTL:       cfg.TokenTTL,
		UploadDir:      cfg.UploadDir,
		AllowedOrigins: cfg.AllowedOrigins,
	}, services, wsHub)

	log.Printf("Server listening on :%s (storage: %s)", cfg.Port, cfg.Storage)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
