package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/dto"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/models"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/service"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/utils"
)

// SchoolHandler serves tenant management endpoints.
type SchoolHandler struct {
	service *service.SchoolService
	logger  zerolog.Logger
}

// NewSchoolHandler constructs the handler instance.
func NewSchoolHandler(service *service.SchoolService, logger zerolog.Logger) *SchoolHandler {
	return &SchoolHandler{
		service: service,
		logger:  logger.With().Str("component", "school_handler").Logger(),
	}
}

// Register wires the super-admin school routes.
func (h *SchoolHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("", h.list)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.deactivate)
}

// RegisterDetail wires the school read route. School admins only see their
// own tenant; super admins see any.
func (h *SchoolHandler) RegisterDetail(router fiber.Router) {
	router.Get("/:id", h.get)
}

// RegisterMySchool wires the school-admin view of their own tenant.
func (h *SchoolHandler) RegisterMySchool(router fiber.Router) {
	router.Get("/my-school", h.mySchool)
}

func (h *SchoolHandler) create(c *fiber.Ctx) error {
	var req dto.SchoolCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	school, err := h.service.Create(c.Context(), req)
	if err != nil {
		switch {
		case isValidationError(err):
			return validationFailed(c, err)
		case errors.Is(err, service.ErrSchoolNameTaken):
			return utils.SendError(c, fiber.StatusConflict, "a school with this name already exists")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("school creation failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create school")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "school created", school)
}

func (h *SchoolHandler) list(c *fiber.Ctx) error {
	schools, err := h.service.List(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list schools")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list schools")
	}

	return utils.SendSuccess(c, "schools retrieved", schools)
}

func (h *SchoolHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid school id")
	}

	if userRoleFromContext(c) == models.RoleSchoolAdmin {
		schoolID := schoolIDFromContext(c)
		if schoolID == nil || *schoolID != id {
			return utils.SendError(c, fiber.StatusForbidden, "school belongs to another tenant")
		}
	}

	school, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrSchoolNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "school not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load school")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load school")
	}

	return utils.SendSuccess(c, "school retrieved", school)
}

func (h *SchoolHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid school id")
	}

	var req dto.SchoolUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	school, err := h.service.Update(c.Context(), id, req)
	if err != nil {
		switch {
		case isValidationError(err):
			return validationFailed(c, err)
		case errors.Is(err, service.ErrSchoolNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "school not found")
		case errors.Is(err, service.ErrSchoolNameTaken):
			return utils.SendError(c, fiber.StatusConflict, "a school with this name already exists")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("school update failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update school")
		}
	}

	return utils.SendSuccess(c, "school updated", school)
}

func (h *SchoolHandler) deactivate(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid school id")
	}

	if err := h.service.Deactivate(c.Context(), id); err != nil {
		if errors.Is(err, service.ErrSchoolNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "school not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("school deactivation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to deactivate school")
	}

	return utils.SendSuccess(c, "school deactivated", nil)
}

func (h *SchoolHandler) mySchool(c *fiber.Ctx) error {
	schoolID := schoolIDFromContext(c)
	if schoolID == nil {
		return utils.SendError(c, fiber.StatusForbidden, "no school associated with this account")
	}

	school, err := h.service.Get(c.Context(), *schoolID)
	if err != nil {
		if errors.Is(err, service.ErrSchoolNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "school not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load school")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load school")
	}

	return utils.SendSuccess(c, "school retrieved", school)
}
