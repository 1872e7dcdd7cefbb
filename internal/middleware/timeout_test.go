package middleware_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klarkent2022/smart-irrigation/internal/middleware"
)

func TestRequestTimeout(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.RequestTimeout(20 * time.Millisecond))
	app.Get("/", func(c *fiber.Ctx) error {
		deadline, ok := c.UserContext().Deadline()
		if !ok || time.Until(deadline) > 20*time.Millisecond {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		<-c.UserContext().Done()
		return c.SendStatus(fiber.StatusGatewayTimeout)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), 1000)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusGatewayTimeout, resp.StatusCode)
}
