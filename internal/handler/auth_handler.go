package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/dto"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/service"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/utils"
)

// AuthHandler serves login, token lifecycle, and password endpoints.
type AuthHandler struct {
	service *service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs the handler instance.
func NewAuthHandler(service *service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// RegisterPublic wires the endpoints reachable without a token.
func (h *AuthHandler) RegisterPublic(router fiber.Router) {
	router.Post("/login", h.login)
	router.Post("/refresh", h.refresh)
	router.Post("/password-reset", h.passwordReset)
	router.Post("/password-reset/confirm", h.passwordResetConfirm)
}

// RegisterProtected wires the endpoints that need an access token.
func (h *AuthHandler) RegisterProtected(router fiber.Router) {
	router.Post("/logout", h.logout)
	router.Get("/me", h.me)
	router.Post("/change-password", h.changePassword)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	tokens, err := h.service.Login(c.Context(), req)
	if err != nil {
		switch {
		case isValidationError(err):
			return validationFailed(c, err)
		case errors.Is(err, service.ErrInvalidCredentials):
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid email or password")
		case errors.Is(err, service.ErrAccountDisabled):
			return utils.SendError(c, fiber.StatusForbidden, "account is disabled")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("login failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to log in")
		}
	}

	return utils.SendSuccess(c, "login successful", tokens)
}

func (h *AuthHandler) refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	tokens, err := h.service.Refresh(c.Context(), req)
	if err != nil {
		switch {
		case isValidationError(err):
			return validationFailed(c, err)
		case errors.Is(err, service.ErrInvalidToken):
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid refresh token")
		case errors.Is(err, service.ErrAccountDisabled):
			return utils.SendError(c, fiber.StatusForbidden, "account is disabled")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("token refresh failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to refresh token")
		}
	}

	return utils.SendSuccess(c, "token refreshed", tokens)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.Logout(c.Context(), req); err != nil {
		switch {
		case isValidationError(err):
			return validationFailed(c, err)
		case errors.Is(err, service.ErrInvalidToken):
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid refresh token")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("logout failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to log out")
		}
	}

	return utils.SendSuccess(c, "logged out", nil)
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	user, err := h.service.Me(c.Context(), userIDFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load profile")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load profile")
	}

	return utils.SendSuccess(c, "profile retrieved", user)
}

func (h *AuthHandler) changePassword(c *fiber.Ctx) error {
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.ChangePassword(c.Context(), userIDFromContext(c), req); err != nil {
		switch {
		case isValidationError(err):
			return validationFailed(c, err)
		case errors.Is(err, service.ErrPasswordMismatch):
			return utils.SendError(c, fiber.StatusBadRequest, "current password is incorrect")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("password change failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to change password")
		}
	}

	return utils.SendSuccess(c, "password changed", nil)
}

// passwordReset always answers 200 so the endpoint cannot probe accounts.
func (h *AuthHandler) passwordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.RequestPasswordReset(c.Context(), req); err != nil {
		if isValidationError(err) {
			return validationFailed(c, err)
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("password reset request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to process request")
	}

	return utils.SendSuccess(c, "if the email is registered, a reset link has been sent", nil)
}

func (h *AuthHandler) passwordResetConfirm(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.ConfirmPasswordReset(c.Context(), req); err != nil {
		switch {
		case isValidationError(err):
			return validationFailed(c, err)
		case errors.Is(err, service.ErrResetTokenInvalid):
			return utils.SendError(c, fiber.StatusBadRequest, "reset token is invalid or expired")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("password reset confirm failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to reset password")
		}
	}

	return utils.SendSuccess(c, "password reset", nil)
}
