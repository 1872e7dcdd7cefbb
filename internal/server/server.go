package server

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/klarkent2022/smart-irrigation/internal/config"
	"github.com/klarkent2022/smart-irrigation/internal/handlers"
	"github.com/klarkent2022/smart-irrigation/internal/middleware"
	"github.com/klarkent2022/smart-irrigation/internal/routes"
)

// multipart framing on top of the image itself
const bodyOverhead = 64 << 10

// New initializes the Fiber application with config, middlewares, and routes.
func New(cfg *config.Config, d routes.Deps) *fiber.App {
	bodyLimit := fiber.DefaultBodyLimit
	if n := int(cfg.S3.MaxUploadBytes) + bodyOverhead; n > bodyLimit {
		bodyLimit = n
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
		IdleTimeout:  cfg.App.IdleTimeout,
		BodyLimit:    bodyLimit,
		ErrorHandler: handlers.ErrorHandler(d.Logger),
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.CORS.AllowOrigins, ","),
		AllowMethods:     strings.Join(cfg.CORS.AllowMethods, ","),
		AllowHeaders:     strings.Join(cfg.CORS.AllowHeaders, ","),
		AllowCredentials: cfg.CORS.AllowCredentials,
	}))
	app.Use(middleware.RequestTimeout(cfg.App.RequestTimeout))
	app.Use(middleware.RequestLogger(d.Logger, handlers.StatusFor))
	if d.Metrics != nil {
		app.Use(d.Metrics.Middleware(handlers.StatusFor))
	}

	routes.Setup(app, d)
	return app
}
