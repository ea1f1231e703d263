package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/dto"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/models"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/repository"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/service"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/utils"
)

// AdminUserHandler serves the platform-wide account management endpoints.
type AdminUserHandler struct {
	service *service.UserService
	logger  zerolog.Logger
}

// NewAdminUserHandler constructs the handler instance.
func NewAdminUserHandler(service *service.UserService, logger zerolog.Logger) *AdminUserHandler {
	return &AdminUserHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_user_handler").Logger(),
	}
}

// Register wires the super-admin user routes.
func (h *AdminUserHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Post("/school-admins", h.createSchoolAdmin)
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.deactivate)
}

func (h *AdminUserHandler) create(c *fiber.Ctx) error {
	var req dto.UserCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.service.Create(c.Context(), req)
	if err != nil {
		return h.mapUserError(c, err, "user creation failed", "failed to create user")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "user created", user)
}

// createSchoolAdmin provisions a school administrator. The role comes from
// the route, not the payload.
func (h *AdminUserHandler) createSchoolAdmin(c *fiber.Ctx) error {
	var req dto.UserCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Role = models.RoleSchoolAdmin

	user, err := h.service.Create(c.Context(), req)
	if err != nil {
		return h.mapUserError(c, err, "school admin creation failed", "failed to create school admin")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "school admin created", user)
}

func (h *AdminUserHandler) list(c *fiber.Ctx) error {
	schoolID, err := parseUintQuery(c, "school_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid school id")
	}

	filter := repository.UserFilter{
		Role:   strings.ToUpper(strings.TrimSpace(c.Query("role"))),
		Search: strings.TrimSpace(c.Query("search")),
	}
	if schoolID != 0 {
		filter.SchoolID = &schoolID
	}

	users, err := h.service.List(c.Context(), filter)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list users")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list users")
	}

	return utils.SendSuccess(c, "users retrieved", users)
}

func (h *AdminUserHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	user, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "user not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load user")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load user")
	}

	return utils.SendSuccess(c, "user retrieved", user)
}

func (h *AdminUserHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	var req dto.UserUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.service.Update(c.Context(), nil, id, req)
	if err != nil {
		return h.mapUserError(c, err, "user update failed", "failed to update user")
	}

	return utils.SendSuccess(c, "user updated", user)
}

func (h *AdminUserHandler) deactivate(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	if err := h.service.Deactivate(c.Context(), nil, id); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "user not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("user deactivation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to deactivate user")
	}

	return utils.SendSuccess(c, "user deactivated", nil)
}

func (h *AdminUserHandler) mapUserError(c *fiber.Ctx, err error, logMsg, fallback string) error {
	switch {
	case isValidationError(err):
		return validationFailed(c, err)
	case errors.Is(err, service.ErrUserNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrEmailTaken):
		return utils.SendError(c, fiber.StatusConflict, "an account with this email already exists")
	case errors.Is(err, service.ErrSchoolRequired):
		return utils.SendError(c, fiber.StatusBadRequest, "a school is required for this role")
	case errors.Is(err, service.ErrSuperAdminSchool):
		return utils.SendError(c, fiber.StatusBadRequest, "super admins must not belong to a school")
	case errors.Is(err, service.ErrSchoolNotFound):
		return utils.SendError(c, fiber.StatusBadRequest, "school not found")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(logMsg)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
