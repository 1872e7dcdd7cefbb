package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/klarkent2022/smart-irrigation/internal/utils"
	"go.uber.org/zap"
)

const claimsKey = "claims"

// JWTAuth rejects requests without a valid bearer token and stores the
// verified claims for the handler.
func JWTAuth(tokens *utils.TokenService, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "Not authenticated")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			return unauthorized(c, "Invalid authorization header")
		}

		claims, err := tokens.Verify(strings.TrimSpace(parts[1]))
		if err != nil {
			logger.Debug("jwt invalid", zap.Error(err))
			return unauthorized(c, "Invalid or expired token")
		}

		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

// Claims returns the claims stored by JWTAuth.
func Claims(c *fiber.Ctx) (*utils.Claims, bool) {
	claims, ok := c.Locals(claimsKey).(*utils.Claims)
	return claims, ok && claims != nil
}

func unauthorized(c *fiber.Ctx, detail string) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": detail})
}
