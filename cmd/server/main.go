package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/artsearch/backend/internal/artsy"
	"github.com/artsearch/backend/internal/config"
	"github.com/artsearch/backend/internal/database"
	"github.com/artsearch/backend/internal/handlers"
	"github.com/artsearch/backend/internal/middleware"
	"github.com/artsearch/backend/internal/services"
	"github.com/artsearch/backend/pkg/logger"
	"github.com/artsearch/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	logger.Init()

	cfg := config.Load()
	utils.ConfigureJWT(cfg.JWT.Secret, cfg.JWT.ExpirationMinutes)

	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	artsyClient := artsy.NewClient(cfg.Artsy)
	auditService := services.NewAuditService(db)

	authHandler := handlers.NewAuthHandler(db, auditService)
	favoritesHandler := handlers.NewFavoritesHandler(db, auditService)
	catalogHandler := handlers.NewCatalogHandler(artsyClient, auditService)

	authMiddleware := middleware.NewAuthMiddleware(db)

	app := fiber.New(fiber.Config{AppName: "artsearch"})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS())
	app.Use(middleware.RequestLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	app.Post("/register", authHandler.Register)
	app.Post("/login", authHandler.Login)
	app.Post("/logout", authHandler.Logout)
	app.Get("/me", authMiddleware.RequireAuth, authHandler.Me)
	app.Delete("/deleteUser", authMiddleware.RequireAuth, authHandler.DeleteUser)

	app.Post("/updateFavorites", authMiddleware.RequireAuth, favoritesHandler.Update)

	app.Get("/searchArtists", authMiddleware.OptionalAuth, catalogHandler.SearchArtists)
	app.Get("/fetchArtistData", catalogHandler.FetchArtistData)
	app.Get("/fetchArtworkData", catalogHandler.FetchArtworkData)
	app.Get("/fetchCategories", catalogHandler.FetchCategories)
	app.Get("/getSimilarArtistData", catalogHandler.GetSimilarArtistData)

	listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	logger.Info("server_starting", map[string]interface{}{
		"port":    cfg.Server.Port,
		"address": listenAddr,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(listenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("shutting down server due to signal: %s", sig)
		shutdownDone := make(chan struct{})
		go func() {
			_ = app.Shutdown()
			close(shutdownDone)
		}()
		select {
		case <-shutdownDone:
		case <-time.After(10 * time.Second):
			log.Print("forced shutdown timeout reached")
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	}
}
