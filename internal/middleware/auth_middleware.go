package middleware

import (
	"strings"

	"auth-service/internal/config"
	"auth-service/internal/constants"
	"auth-service/internal/services"
	"auth-service/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequireAuth guards routes behind a valid access token. The token is
// stateless; the user row is loaded so blocked accounts are cut off even
// inside the access-token lifetime.
func RequireAuth(jwtService *services.JWTService, users services.UserStore, tokens services.TokenStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, err := extractBearerToken(c)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, config.Messages.Auth.Error.TokenRequired, nil)
		}

		claims, err := jwtService.VerifyAccessToken(raw)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, config.Messages.Auth.Error.InvalidToken, nil)
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, config.Messages.Auth.Error.InvalidToken, nil)
		}

		user, err := users.FindByID(userID)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, config.Messages.Auth.Error.InvalidToken, nil)
		}

		if user.IsBlocked {
			if err := tokens.RevokeAllForUser(user.ID); err != nil {
				utils.LogError("revoke tokens for blocked user", err)
			}
			return utils.ErrorResponse(c, fiber.StatusForbidden, config.Messages.Auth.Error.AccountBlocked, nil)
		}

		c.Locals("user", user)
		return c.Next()
	}
}

func extractBearerToken(c *fiber.Ctx) (string, error) {
	header := c.Get("Authorization")
	prefix := constants.BearerScheme + " "
	if header == "" || !strings.HasPrefix(header, prefix) {
		return "", fiber.ErrUnauthorized
	}
	return strings.TrimPrefix(header, prefix), nil
}
