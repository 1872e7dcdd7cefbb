package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/klarkent2022/smart-irrigation/internal/handlers"
	"github.com/klarkent2022/smart-irrigation/internal/metrics"
	"github.com/klarkent2022/smart-irrigation/internal/middleware"
	"github.com/klarkent2022/smart-irrigation/internal/utils"
	"go.uber.org/zap"
)

type Deps struct {
	Handler      *handlers.Handler
	Tokens       *utils.TokenService
	LoginLimiter middleware.Limiter
	Metrics      *metrics.Metrics
	Logger       *zap.Logger
}

func Setup(app *fiber.App, d Deps) {
	auth := middleware.JWTAuth(d.Tokens, d.Logger)
	h := d.Handler

	app.Get("/health", h.Health)
	if d.Metrics != nil {
		app.Get("/metrics", d.Metrics.Handler())
	}

	api := app.Group("/api")

	api.Post("/register", h.Register)
	if d.LoginLimiter != nil {
		api.Post("/login", middleware.RateLimit(d.LoginLimiter, middleware.ByIP, d.Logger), h.Login)
	} else {
		api.Post("/login", h.Login)
	}
	api.Get("/user", auth, h.CurrentUser)

	plants := api.Group("/plants", auth)
	plants.Post("/", h.CreatePlant)
	plants.Get("/", h.ListPlants)
	plants.Get("/:id", h.GetPlant)
	plants.Put("/:id", h.UpdatePlant)
	plants.Post("/:id/image", h.UploadPlantImage)
}
