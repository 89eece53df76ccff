package handlers

import (
	"errors"

	"auth-service/internal/config"
	"auth-service/internal/helpers"
	"auth-service/internal/models"
	"auth-service/internal/requests"
	"auth-service/internal/services"
	"auth-service/pkg/utils"
	"auth-service/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register handles user registration; the response carries a session exactly
// like login does.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input requests.RegisterRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, config.Messages.Validation.Error.InvalidRequest, err)
	}

	if err := validator.ValidateStruct(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, config.Messages.Validation.Error.InvalidRequest, err)
	}

	if err := helpers.ValidatePasswordStrength(input.Password); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, config.Messages.Validation.Error.InvalidRequest, err)
	}

	user, tokens, err := h.auth.Register(input.Email, input.Name, input.Password)
	if err != nil {
		return h.mapAuthError(c, err)
	}

	return utils.SuccessResponse(c, config.Messages.Auth.Success.Registration, fiber.Map{
		"user":   user,
		"tokens": tokens,
	})
}

// Login handles user authentication
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input requests.LoginRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, config.Messages.Validation.Error.InvalidRequest, err)
	}

	if err := validator.ValidateStruct(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, config.Messages.Validation.Error.InvalidRequest, err)
	}

	user, tokens, err := h.auth.Login(input.Email, input.Password)
	if err != nil {
		return h.mapAuthError(c, err)
	}

	return utils.SuccessResponse(c, config.Messages.Auth.Success.Login, fiber.Map{
		"user":   user,
		"tokens": tokens,
	})
}

// Refresh rotates the presented refresh token for the next generation.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var input requests.RefreshTokenRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, config.Messages.Validation.Error.InvalidRequest, err)
	}

	if err := validator.ValidateStruct(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, config.Messages.Validation.Error.InvalidRequest, err)
	}

	tokens, err := h.auth.Refresh(input.RefreshToken)
	if err != nil {
		return h.mapAuthError(c, err)
	}

	return utils.SuccessResponse(c, config.Messages.Auth.Success.Refresh, tokens)
}

// Logout retires the presented refresh token. It always reports success to
// the client, token or no token.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var input requests.LogoutRequest
	// A missing or unreadable body is treated the same as no token.
	_ = c.BodyParser(&input)

	h.auth.Logout(input.RefreshToken)

	return utils.SuccessResponse(c, config.Messages.Auth.Success.Logout, nil)
}

// LogoutAll revokes every live refresh token of the authenticated user.
func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	if err := h.auth.LogoutAll(user.ID); err != nil {
		return h.mapAuthError(c, err)
	}

	return utils.SuccessResponse(c, config.Messages.Auth.Success.LogoutAll, nil)
}

// UserInfo returns the current user's information
func (h *AuthHandler) UserInfo(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	return utils.SuccessResponse(c, "", user)
}

func (h *AuthHandler) mapAuthError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, config.Messages.Auth.Error.InvalidCredentials, nil)
	case errors.Is(err, services.ErrEmailExists):
		return utils.ErrorResponse(c, fiber.StatusConflict, config.Messages.Auth.Error.EmailExists, nil)
	case errors.Is(err, services.ErrAccountBlocked):
		return utils.ErrorResponse(c, fiber.StatusForbidden, config.Messages.Auth.Error.AccountBlocked, nil)
	case errors.Is(err, services.ErrInvalidToken):
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, config.Messages.Auth.Error.InvalidToken, nil)
	case errors.Is(err, services.ErrMalformedToken):
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, config.Messages.Auth.Error.MalformedToken, nil)
	case errors.Is(err, services.ErrTokenReuseDetected):
		return utils.ErrorResponse(c, fiber.StatusForbidden, config.Messages.Auth.Error.TokenReuseDetected, nil)
	case errors.Is(err, services.ErrTokenInvalidated):
		return utils.ErrorResponse(c, fiber.StatusForbidden, config.Messages.Auth.Error.TokenInvalidated, nil)
	case errors.Is(err, services.ErrStorageUnavailable):
		utils.LogError("auth storage", err)
		return utils.ErrorResponse(c, fiber.StatusServiceUnavailable, config.Messages.Server.Error.Database, nil)
	default:
		utils.LogError("auth", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, config.Messages.Server.Error.Internal, nil)
	}
}
