package metrics_test

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klarkent2022/smart-irrigation/internal/metrics"
)

var errGone = errors.New("gone")

func TestMiddleware_UsesMappedStatus(t *testing.T) {
	m := metrics.New()
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error { return c.SendStatus(fiber.StatusNotFound) },
	})
	app.Use(m.Middleware(func(err error) int {
		if errors.Is(err, errGone) {
			return fiber.StatusNotFound
		}
		return fiber.StatusInternalServerError
	}))
	app.Get("/plants/:id", func(c *fiber.Ctx) error { return errGone })

	for _, id := range []string{"a", "b"} {
		resp, err := app.Test(httptest.NewRequest("GET", "/plants/"+id, nil))
		require.NoError(t, err)
		resp.Body.Close()
	}

	n, err := testutil.GatherAndCount(m.Registry(), "irrigation_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "one series for both ids")
}
