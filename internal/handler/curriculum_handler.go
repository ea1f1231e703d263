package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/dto"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/service"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/utils"
)

// CurriculumHandler serves the class-level and topic catalog endpoints.
// Reads are open to every authenticated role; writes are wired behind
// super-admin checks by the router.
type CurriculumHandler struct {
	service *service.CurriculumService
	logger  zerolog.Logger
}

// NewCurriculumHandler constructs the handler instance.
func NewCurriculumHandler(service *service.CurriculumService, logger zerolog.Logger) *CurriculumHandler {
	return &CurriculumHandler{
		service: service,
		logger:  logger.With().Str("component", "curriculum_handler").Logger(),
	}
}

// RegisterReads wires the catalog read routes.
func (h *CurriculumHandler) RegisterReads(router fiber.Router) {
	router.Get("/classes", h.listClasses)
	router.Get("/classes/:id", h.getClass)
	router.Get("/classes/:id/topics", h.listClassTopics)
	router.Get("/topics", h.listTopics)
	router.Get("/topics/:id", h.getTopic)
}

// RegisterWrites wires the catalog mutation routes.
func (h *CurriculumHandler) RegisterWrites(router fiber.Router) {
	router.Post("/classes", h.createClass)
	router.Put("/classes/:id", h.updateClass)
	router.Delete("/classes/:id", h.deleteClass)
	router.Post("/classes/:id/topics", h.createTopic)
	router.Put("/topics/:id", h.updateTopic)
	router.Delete("/topics/:id", h.deleteTopic)
}

func (h *CurriculumHandler) createClass(c *fiber.Ctx) error {
	var req dto.CurriculumClassCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	class, err := h.service.CreateClass(c.Context(), req)
	if err != nil {
		switch {
		case isValidationError(err):
			return validationFailed(c, err)
		case errors.Is(err, service.ErrClassCodeTaken):
			return utils.SendError(c, fiber.StatusConflict, "a class with this code already exists")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("class creation failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create class")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "class created", class)
}

func (h *CurriculumHandler) listClasses(c *fiber.Ctx) error {
	classes, err := h.service.ListClasses(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list classes")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list classes")
	}

	return utils.SendSuccess(c, "classes retrieved", classes)
}

func (h *CurriculumHandler) getClass(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid class id")
	}

	class, err := h.service.GetClass(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrClassNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "class not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load class")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load class")
	}

	return utils.SendSuccess(c, "class retrieved", class)
}

func (h *CurriculumHandler) updateClass(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid class id")
	}

	var req dto.CurriculumClassUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	class, err := h.service.UpdateClass(c.Context(), id, req)
	if err != nil {
		switch {
		case isValidationError(err):
			return validationFailed(c, err)
		case errors.Is(err, service.ErrClassNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "class not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("class update failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update class")
		}
	}

	return utils.SendSuccess(c, "class updated", class)
}

func (h *CurriculumHandler) deleteClass(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid class id")
	}

	if err := h.service.DeleteClass(c.Context(), id); err != nil {
		if errors.Is(err, service.ErrClassNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "class not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("class deletion failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete class")
	}

	return utils.SendSuccess(c, "class deleted", nil)
}

func (h *CurriculumHandler) createTopic(c *fiber.Ctx) error {
	classID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid class id")
	}

	var req dto.TopicCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	topic, err := h.service.CreateTopic(c.Context(), classID, req)
	if err != nil {
		switch {
		case isValidationError(err):
			return validationFailed(c, err)
		case errors.Is(err, service.ErrClassNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "class not found")
		case errors.Is(err, service.ErrTopicTitleTaken):
			return utils.SendError(c, fiber.StatusConflict, "the class already has a topic with this title")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("topic creation failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create topic")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "topic created", topic)
}

func (h *CurriculumHandler) listClassTopics(c *fiber.Ctx) error {
	classID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid class id")
	}

	return h.respondTopics(c, classID)
}

func (h *CurriculumHandler) listTopics(c *fiber.Ctx) error {
	classID, err := parseUintQuery(c, "class_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid class id")
	}

	return h.respondTopics(c, classID)
}

func (h *CurriculumHandler) respondTopics(c *fiber.Ctx, classID uint) error {
	topics, err := h.service.ListTopics(c.Context(), classID)
	if err != nil {
		if errors.Is(err, service.ErrClassNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "class not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list topics")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list topics")
	}

	return utils.SendSuccess(c, "topics retrieved", topics)
}

func (h *CurriculumHandler) getTopic(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid topic id")
	}

	topic, err := h.service.GetTopic(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrTopicNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "topic not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load topic")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load topic")
	}

	return utils.SendSuccess(c, "topic retrieved", topic)
}

func (h *CurriculumHandler) updateTopic(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid topic id")
	}

	var req dto.TopicUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	topic, err := h.service.UpdateTopic(c.Context(), id, req)
	if err != nil {
		switch {
		case isValidationError(err):
			return validationFailed(c, err)
		case errors.Is(err, service.ErrTopicNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "topic not found")
		case errors.Is(err, service.ErrTopicTitleTaken):
			return utils.SendError(c, fiber.StatusConflict, "the class already has a topic with this title")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("topic update failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update topic")
		}
	}

	return utils.SendSuccess(c, "topic updated", topic)
}

func (h *CurriculumHandler) deleteTopic(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid topic id")
	}

	if err := h.service.DeleteTopic(c.Context(), id); err != nil {
		if errors.Is(err, service.ErrTopicNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "topic not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("topic deletion failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete topic")
	}

	return utils.SendSuccess(c, "topic deleted", nil)
}
