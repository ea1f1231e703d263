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

// SchoolMemberHandler serves the school-admin endpoints for managing the
// teachers and students of their own school.
type SchoolMemberHandler struct {
	service *service.UserService
	logger  zerolog.Logger
}

// NewSchoolMemberHandler constructs the handler instance.
func NewSchoolMemberHandler(service *service.UserService, logger zerolog.Logger) *SchoolMemberHandler {
	return &SchoolMemberHandler{
		service: service,
		logger:  logger.With().Str("component", "school_member_handler").Logger(),
	}
}

// Register wires the member management routes.
func (h *SchoolMemberHandler) Register(router fiber.Router) {
	router.Post("/teachers", h.createTeacher)
	router.Get("/teachers", h.listTeachers)
	router.Post("/students", h.createStudent)
	router.Post("/students/bulk", h.bulkCreateStudents)
	router.Get("/students", h.listStudents)
	router.Get("/members/:id", h.getMember)
	router.Put("/members/:id", h.updateMember)
	router.Delete("/members/:id", h.deactivateMember)
}

func (h *SchoolMemberHandler) createTeacher(c *fiber.Ctx) error {
	schoolID := schoolIDFromContext(c)
	if schoolID == nil {
		return utils.SendError(c, fiber.StatusForbidden, "no school associated with this account")
	}

	var req dto.UserCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	teacher, err := h.service.CreateTeacher(c.Context(), *schoolID, req)
	if err != nil {
		return h.mapMemberError(c, err, "teacher creation failed", "failed to create teacher")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "teacher created", teacher)
}

func (h *SchoolMemberHandler) listTeachers(c *fiber.Ctx) error {
	return h.listByRole(c, models.RoleTeacher, "teachers retrieved")
}

func (h *SchoolMemberHandler) createStudent(c *fiber.Ctx) error {
	schoolID := schoolIDFromContext(c)
	if schoolID == nil {
		return utils.SendError(c, fiber.StatusForbidden, "no school associated with this account")
	}

	var entry dto.BulkStudentEntry
	if err := c.BodyParser(&entry); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	student, err := h.service.CreateStudent(c.Context(), *schoolID, entry)
	if err != nil {
		return h.mapMemberError(c, err, "student creation failed", "failed to create student")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "student created", student)
}

// bulkCreateStudents imports a batch atomically: any invalid row rejects the
// whole batch and no accounts are created.
func (h *SchoolMemberHandler) bulkCreateStudents(c *fiber.Ctx) error {
	schoolID := schoolIDFromContext(c)
	if schoolID == nil {
		return utils.SendError(c, fiber.StatusForbidden, "no school associated with this account")
	}

	var req dto.BulkStudentCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.BulkCreateStudents(c.Context(), *schoolID, req)
	if err != nil {
		switch {
		case isValidationError(err):
			return validationFailed(c, err)
		case errors.Is(err, service.ErrEmailTaken), errors.Is(err, service.ErrStudentIDTaken):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("bulk student import failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to import students")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "students imported", result)
}

func (h *SchoolMemberHandler) listStudents(c *fiber.Ctx) error {
	return h.listByRole(c, models.RoleStudent, "students retrieved")
}

func (h *SchoolMemberHandler) listByRole(c *fiber.Ctx, role, message string) error {
	schoolID := schoolIDFromContext(c)
	if schoolID == nil {
		return utils.SendError(c, fiber.StatusForbidden, "no school associated with this account")
	}

	filter := repository.UserFilter{
		Role:       role,
		SchoolID:   schoolID,
		Search:     strings.TrimSpace(c.Query("search")),
		ClassLevel: strings.ToUpper(strings.TrimSpace(c.Query("class_level"))),
	}

	users, err := h.service.List(c.Context(), filter)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list members")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list members")
	}

	return utils.SendSuccess(c, message, users)
}

func (h *SchoolMemberHandler) getMember(c *fiber.Ctx) error {
	schoolID := schoolIDFromContext(c)
	if schoolID == nil {
		return utils.SendError(c, fiber.StatusForbidden, "no school associated with this account")
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	member, err := h.service.GetInSchool(c.Context(), *schoolID, id)
	if err != nil {
		return h.mapMemberError(c, err, "failed to load member", "failed to load member")
	}

	return utils.SendSuccess(c, "member retrieved", member)
}

func (h *SchoolMemberHandler) updateMember(c *fiber.Ctx) error {
	schoolID := schoolIDFromContext(c)
	if schoolID == nil {
		return utils.SendError(c, fiber.StatusForbidden, "no school associated with this account")
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	var req dto.UserUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	member, err := h.service.Update(c.Context(), schoolID, id, req)
	if err != nil {
		return h.mapMemberError(c, err, "member update failed", "failed to update member")
	}

	return utils.SendSuccess(c, "member updated", member)
}

func (h *SchoolMemberHandler) deactivateMember(c *fiber.Ctx) error {
	schoolID := schoolIDFromContext(c)
	if schoolID == nil {
		return utils.SendError(c, fiber.StatusForbidden, "no school associated with this account")
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	if err := h.service.Deactivate(c.Context(), schoolID, id); err != nil {
		return h.mapMemberError(c, err, "member deactivation failed", "failed to deactivate member")
	}

	return utils.SendSuccess(c, "member deactivated", nil)
}

func (h *SchoolMemberHandler) mapMemberError(c *fiber.Ctx, err error, logMsg, fallback string) error {
	switch {
	case isValidationError(err):
		return validationFailed(c, err)
	case errors.Is(err, service.ErrUserNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "member not found")
	case errors.Is(err, service.ErrForbiddenSchool):
		return utils.SendError(c, fiber.StatusForbidden, "record belongs to another school")
	case errors.Is(err, service.ErrEmailTaken):
		return utils.SendError(c, fiber.StatusConflict, "an account with this email already exists")
	case errors.Is(err, service.ErrStudentIDTaken):
		return utils.SendError(c, fiber.StatusConflict, "student id already assigned")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(logMsg)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
