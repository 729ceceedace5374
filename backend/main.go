package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"learnhub/backend/config"
	"learnhub/backend/logger"
	"learnhub/backend/middleware"
	"learnhub/backend/routes"
	"learnhub/backend/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize logger
	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer appLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	store, closeStore, err := utils.OpenStore(ctx, cfg, appLog)
	if err != nil {
		appLog.Fatal("Error initializing storage", "driver", cfg.StorageDriver, "error", err)
	}
	defer closeStore()

	cache, closeCache, err := utils.OpenSummaryCache(ctx, cfg, appLog)
	if err != nil {
		appLog.Fatal("Error connecting to redis", "error", err)
	}
	defer closeCache()

	// Create Fiber app
	app := fiber.New(routes.AppConfig())

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Webhook-Signature",
	}))
	app.Use(middleware.LoggingMiddleware(appLog))

	// Setup routes
	routes.SetupRoutes(app, routes.Deps{Store: store, Cache: cache, Cfg: cfg, Log: appLog})

	go func() {
		<-ctx.Done()
		appLog.Info("shutting down")
		_ = app.Shutdown()
	}()

	appLog.Info("server starting", "port", cfg.ServerPort, "storage", cfg.StorageDriver)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		appLog.Error("server stopped", "error", err)
	}
}
