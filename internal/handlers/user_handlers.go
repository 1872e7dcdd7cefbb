package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/klarkent2022/smart-irrigation/internal/middleware"
	"github.com/klarkent2022/smart-irrigation/internal/models"
)

func (h *Handler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "invalid body")
	}
	if err := h.users.Register(c.UserContext(), req); err != nil {
		return err
	}
	return c.JSON(models.MessageResponse{Message: "User registered successfully"})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "invalid body")
	}
	resp, err := h.users.Login(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// CurrentUser returns the identity carried by the bearer token.
func (h *Handler) CurrentUser(c *fiber.Ctx) error {
	claims, _ := middleware.Claims(c)
	id, err := h.users.CurrentUser(claims)
	if err != nil {
		return err
	}
	return c.JSON(id)
}
