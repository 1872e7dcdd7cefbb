package handlers

import (
	"github.com/klarkent2022/smart-irrigation/internal/services"
	"go.uber.org/zap"
)

type Handler struct {
	users  *services.UserService
	plants *services.PlantService
	health HealthChecker
	log    *zap.Logger
}

func NewHandler(users *services.UserService, plants *services.PlantService, health HealthChecker, logger *zap.Logger) *Handler {
	return &Handler{users: users, plants: plants, health: health, log: logger}
}
