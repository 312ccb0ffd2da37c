package main

import (
	"context"
	"log"

	_ "storepos/api/swagger" // swagger docs
	"storepos/internal/app"
	"storepos/internal/config"
	"storepos/internal/database"
	"storepos/internal/handler"
	"storepos/internal/middleware"
	"storepos/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Store POS API
// @version         1.0
// @description     Catalog, customers, checkout, receipts, reports and reorders for a single store.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	db, err := database.NewConnection(cfg.DSN())
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	middleware.InitAuth(cfg.Secret())

	a := app.New(cfg, db, wsHub)
	if err := a.Bootstrap(context.Background()); err != nil {
		log.Fatalf("Bootstrap failed: %v", err)
	}

	scheduler, err := a.Services.Reorders.StartScheduler(cfg.ReorderScanCron)
	if err != nil {
		log.Fatalf("Invalid REORDER_SCAN_CRON %q: %v", cfg.ReorderScanCron, err)
	}
	if scheduler != nil {
		defer scheduler.Stop()
	}

	// Initialize Handlers
	userHandler := handler.NewUserHandler(a.Services.Users)
	catalogHandler := handler.NewCatalogHandler(a.Services.Catalog)
	customerHandler := handler.NewCustomerHandler(a.Services.Customers)
	checkoutHandler := handler.NewCheckoutHandler(a.Services.Checkout)
	reportHandler := handler.NewReportHandler(a.Services.Reports)
	reorderHandler := handler.NewReorderHandler(a.Services.Reorders)
	auditHandler := handler.NewAuditHandler(a.Services.Audit)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK", "ws_clients": wsHub.ClientCount()})
	})

	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c)
	})

	userHandler.RegisterRoutes(router.Group(""))
	catalogHandler.RegisterRoutes(router.Group(""))
	customerHandler.RegisterRoutes(router.Group(""))
	checkoutHandler.RegisterRoutes(router.Group(""))
	reportHandler.RegisterRoutes(router.Group(""))
	reorderHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))

	log.Printf("Server listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
