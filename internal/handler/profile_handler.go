package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/dto"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/service"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/utils"
)

// ProfileHandler serves the role-specific profile endpoints.
type ProfileHandler struct {
	service *service.ProfileService
	logger  zerolog.Logger
}

// NewProfileHandler constructs the handler instance.
func NewProfileHandler(service *service.ProfileService, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: service,
		logger:  logger.With().Str("component", "profile_handler").Logger(),
	}
}

// RegisterTeacher wires the teacher's own-profile routes.
func (h *ProfileHandler) RegisterTeacher(router fiber.Router) {
	router.Get("/profile", h.getTeacherProfile)
	router.Put("/profile", h.updateTeacherProfile)
}

// RegisterStudent wires the student's own-profile routes.
func (h *ProfileHandler) RegisterStudent(router fiber.Router) {
	router.Get("/profile", h.getStudentProfile)
	router.Put("/profile", h.updateStudentProfile)
}

func (h *ProfileHandler) getTeacherProfile(c *fiber.Ctx) error {
	profile, err := h.service.GetTeacherProfile(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.mapProfileError(c, err, "failed to load teacher profile")
	}

	return utils.SendSuccess(c, "profile retrieved", profile)
}

func (h *ProfileHandler) updateTeacherProfile(c *fiber.Ctx) error {
	var req dto.TeacherProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	profile, err := h.service.UpdateTeacherProfile(c.Context(), userIDFromContext(c), req)
	if err != nil {
		return h.mapProfileError(c, err, "failed to update teacher profile")
	}

	return utils.SendSuccess(c, "profile updated", profile)
}

func (h *ProfileHandler) getStudentProfile(c *fiber.Ctx) error {
	profile, err := h.service.GetStudentProfile(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.mapProfileError(c, err, "failed to load student profile")
	}

	return utils.SendSuccess(c, "profile retrieved", profile)
}

func (h *ProfileHandler) updateStudentProfile(c *fiber.Ctx) error {
	var req dto.StudentProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	profile, err := h.service.UpdateStudentProfile(c.Context(), userIDFromContext(c), req)
	if err != nil {
		return h.mapProfileError(c, err, "failed to update student profile")
	}

	return utils.SendSuccess(c, "profile updated", profile)
}

func (h *ProfileHandler) mapProfileError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case isValidationError(err):
		return validationFailed(c, err)
	case errors.Is(err, service.ErrProfileNotFound), errors.Is(err, service.ErrUserNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "profile not found")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
