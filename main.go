package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"rhythm-unlock-service/config"
	"rhythm-unlock-service/handlers"
	"rhythm-unlock-service/middleware"
	"rhythm-unlock-service/models"
	"rhythm-unlock-service/services"
	"rhythm-unlock-service/utils"
	"rhythm-unlock-service/workers"
)

func main() {
	log := utils.Log

	config.LoadDotEnv()
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if err := utils.SetLogLevel(cfg.LogLevel); err != nil {
		log.Fatalf("invalid LOG_LEVEL: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	catalog := services.NewCatalogService(db, log)
	if err := catalog.Refresh(); err != nil {
		log.Fatalf("failed to load catalog: %v", err)
	}
	profiles := services.NewProfileService(db, log)
	if err := profiles.Refresh(); err != nil {
		log.Fatalf("failed to load profiles: %v", err)
	}

	var loader services.MetricsLoader
	switch cfg.ThemeSource {
	case config.ThemeSourceR2:
		r2, err := utils.NewR2Client(ctx, cfg.R2)
		if err != nil {
			log.Fatalf("failed to initialize R2 client: %v", err)
		}
		loader = services.ObjectMetricsLoader(r2, cfg.ThemeObjectKey)
	default:
		loader = services.FileMetricsLoader(cfg.ThemePath)
	}

	unlockService := services.NewUnlockService(catalog, profiles, services.NewGameState(), loader, log)
	unlockService.SetEnabled(cfg.UnlocksEnabled)
	if err := unlockService.Reload(ctx); err != nil {
		log.Fatalf("failed to load unlocks: %v", err)
	}

	sched, err := unlockService.StartResolveScheduler(cfg.ResolveInterval)
	if err != nil {
		log.Fatalf("failed to start resolve scheduler: %v", err)
	}
	defer func() { _ = sched.Shutdown() }()

	if cfg.ThemeSource == config.ThemeSourceFile {
		watcher := workers.NewThemeWatcher(cfg.ThemePath, cfg.ThemeWatchInterval, unlockService.Reload, log)
		go watcher.Run(ctx)
		log.Infof("✅ Theme watcher polling %s every %s", cfg.ThemePath, cfg.ThemeWatchInterval)
	}

	app := fiber.New()

	// 🔐❗ GLOBAL: Only Gateway requests allowed
	app.Use(middleware.GatewayAuthMiddleware(cfg.ServiceToken))

	allowedOrigins := strings.Join(cfg.AllowedOrigins, ",")
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID, X-User-Roles",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	handlers.SetupRoutes(app, unlockService)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Errorf("Server error: %v", err)
		}
	}()

	log.Infof("✅ Server running on http://localhost:%s", cfg.Port)
	log.Infof("✅ Resolve scheduler running (every %s)", cfg.ResolveInterval)
	log.Infof("✅ CORS configured for origins: %s", allowedOrigins)

	<-ctx.Done()
	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
}
