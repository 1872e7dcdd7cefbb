package middleware_test

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/klarkent2022/smart-irrigation/internal/middleware"
)

func readAll(t *testing.T, r io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	return b
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("redis unavailable")
}

func hit(t *testing.T, app *fiber.App) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("POST", "/login", nil))
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestLocalLimiter(t *testing.T) {
	l := middleware.NewLocalLimiter(2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := l.Allow(ctx, "1.2.3.4")
	assert.False(t, ok, "third request inside the window")

	ok, _ = l.Allow(ctx, "5.6.7.8")
	assert.True(t, ok, "keys are independent")
}

func TestRateLimit(t *testing.T) {
	t.Run("answers 429 once exhausted", func(t *testing.T) {
		app := fiber.New()
		app.Post("/login", middleware.RateLimit(middleware.NewLocalLimiter(1, time.Minute), middleware.ByIP, zap.NewNop()),
			func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

		assert.Equal(t, fiber.StatusOK, hit(t, app))
		assert.Equal(t, fiber.StatusTooManyRequests, hit(t, app))
	})

	t.Run("limiter errors fail open", func(t *testing.T) {
		app := fiber.New()
		app.Post("/login", middleware.RateLimit(failingLimiter{}, middleware.ByIP, zap.NewNop()),
			func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

		assert.Equal(t, fiber.StatusOK, hit(t, app))
		assert.Equal(t, fiber.StatusOK, hit(t, app))
	})
}
