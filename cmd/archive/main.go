package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"dungeon-layout/internal/archive/handlers"
	"dungeon-layout/internal/archive/repository"
	"dungeon-layout/internal/archive/service"
	"dungeon-layout/internal/common/config"
	"dungeon-layout/internal/common/middleware"
	"dungeon-layout/internal/layout/feed"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// Archive Service
// ============================================================

func main() {
	cfg := config.Load()
	port := cfg.PortOr("3002")

	db, err := repository.OpenSQLite(cfg.ArchiveDBPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	repo := repository.New(db)
	if err := repo.Init(context.Background(), cfg.ArchiveMigrations); err != nil {
		log.Fatalf("init db: %v", err)
	}

	// Без REMOTE_RENDER превью рисуется локально
	layoutURL := ""
	if cfg.RemoteRender {
		layoutURL = cfg.LayoutURL
	}
	archive := service.NewArchive(repo, service.NewFileStorage(cfg.StorageRoot), layoutURL)
	archiveHandler := handlers.NewArchiveHandler(archive)

	// ============================================================
	// Floor Feed (WebSocket)
	// ============================================================

	mux := http.NewServeMux()
	mux.Handle("/feed", feed.NewServer(archive))
	feedAddr := fmt.Sprintf(":%s", cfg.FeedPort)
	go func() {
		log.Printf("[FEED] Listening on %s/feed", feedAddr)
		if err := http.ListenAndServe(feedAddr, mux); err != nil {
			log.Fatalf("[FEED] server stopped: %v", err)
		}
	}()

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Archive Service",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())

	// ============================================================
	// Health Check Routes
	// ============================================================

	app.Get("/health/live", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})

	app.Get("/health/ready", func(c fiber.Ctx) error {
		if err := db.PingContext(context.Background()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "db unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ready"})
	})

	// ============================================================
	// Archive Routes
	// ============================================================

	archiveHandler.Register(app)

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", port)
	log.Printf("Starting Archive Service on %s (env: %s)", addr, cfg.Environment)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
