package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gmbs/interventions-api/internal/config"
	"github.com/gmbs/interventions-api/internal/database"
	"github.com/gmbs/interventions-api/internal/handlers"
	"github.com/gmbs/interventions-api/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"

	_ "github.com/gmbs/interventions-api/docs/api" // Swagger docs
)

// @title Interventions API
// @version 1.0.0
// @description Field service interventions record keeping with multi-database support

// @contact.name API Support
// @contact.email support@gmbs.fr

// @host localhost:8001
// @BasePath /api
// @schemes http https

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler:          customErrorHandler,
		DisableStartupMessage: false,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())
	app.Use(cors.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("interventions-api")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Health check
	healthHandler := &handlers.HealthHandler{Config: cfg, DB: db}
	app.Get("/health", healthHandler.Check)

	// API routes under /api
	api := app.Group("/api")

	// Version and caller identity middleware
	api.Use(middleware.VersionMiddleware())
	api.Use(middleware.Actor())

	// Intervention routes
	interventionHandler := &handlers.InterventionHandler{DB: db}
	interventions := api.Group("/interventions")
	interventions.Get("/stats", interventionHandler.Stats)
	interventions.Get("/", interventionHandler.List)
	interventions.Post("/", interventionHandler.Create)
	interventions.Get("/:id", interventionHandler.Get)
	interventions.Put("/:id", interventionHandler.Update)
	interventions.Delete("/:id", interventionHandler.Delete)
	interventions.Post("/:id/comments", interventionHandler.AddComment)
	interventions.Get("/:id/documents", interventionHandler.ListDocuments)
	interventions.Post("/:id/documents", interventionHandler.AddDocument)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.Port
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	// Check if it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    code,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}
