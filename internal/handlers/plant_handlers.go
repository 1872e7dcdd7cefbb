package handlers

import (
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/klarkent2022/smart-irrigation/internal/middleware"
	"github.com/klarkent2022/smart-irrigation/internal/models"
)

// owner is the username of the authenticated caller. JWTAuth guarantees claims
// on these routes; an empty username is rejected.
func owner(c *fiber.Ctx) (string, error) {
	claims, ok := middleware.Claims(c)
	if !ok || claims.Username == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
	}
	return claims.Username, nil
}

func (h *Handler) CreatePlant(c *fiber.Ctx) error {
	username, err := owner(c)
	if err != nil {
		return err
	}
	var req models.CreatePlantRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "invalid body")
	}
	p, err := h.plants.Create(c.UserContext(), username, req)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (h *Handler) ListPlants(c *fiber.Ctx) error {
	username, err := owner(c)
	if err != nil {
		return err
	}
	plants, err := h.plants.List(c.UserContext(), username)
	if err != nil {
		return err
	}
	return c.JSON(models.PlantListResponse{Plants: plants})
}

func (h *Handler) GetPlant(c *fiber.Ctx) error {
	username, err := owner(c)
	if err != nil {
		return err
	}
	p, err := h.plants.Get(c.UserContext(), c.Params("id"), username)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (h *Handler) UpdatePlant(c *fiber.Ctx) error {
	username, err := owner(c)
	if err != nil {
		return err
	}
	var req models.UpdatePlantRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "invalid body")
	}
	p, err := h.plants.Update(c.UserContext(), c.Params("id"), username, req)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

// UploadPlantImage expects a multipart form with the file under "image".
func (h *Handler) UploadPlantImage(c *fiber.Ctx) error {
	username, err := owner(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("image")
	if err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "multipart field 'image' is required")
	}
	f, err := fh.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "cannot read uploaded image")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "cannot read uploaded image")
	}

	// sniff the bytes rather than trust the part header
	contentType := http.DetectContentType(data)
	p, err := h.plants.SetImage(c.UserContext(), c.Params("id"), username, contentType, data)
	if err != nil {
		return err
	}
	return c.JSON(p)
}
