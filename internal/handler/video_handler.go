package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/dto"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/service"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/utils"
)

// VideoHandler serves the curated video link endpoints.
type VideoHandler struct {
	service *service.VideoService
	logger  zerolog.Logger
}

// NewVideoHandler constructs the handler instance.
func NewVideoHandler(service *service.VideoService, logger zerolog.Logger) *VideoHandler {
	return &VideoHandler{
		service: service,
		logger:  logger.With().Str("component", "video_handler").Logger(),
	}
}

// RegisterReads wires the video read routes.
func (h *VideoHandler) RegisterReads(router fiber.Router) {
	router.Get("/videos", h.list)
	router.Get("/videos/:id", h.get)
	router.Get("/topics/:id/videos", h.listByTopic)
}

// RegisterWrites wires the video mutation routes.
func (h *VideoHandler) RegisterWrites(router fiber.Router) {
	router.Post("/topics/:id/videos", h.create)
	router.Put("/videos/:id", h.update)
	router.Delete("/videos/:id", h.remove)
}

func (h *VideoHandler) create(c *fiber.Ctx) error {
	topicID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid topic id")
	}

	var req dto.VideoCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	video, err := h.service.Create(c.Context(), topicID, userIDFromContext(c), req)
	if err != nil {
		switch {
		case isValidationError(err):
			return validationFailed(c, err)
		case errors.Is(err, service.ErrTopicNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "topic not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("video creation failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to attach video")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "video attached", video)
}

func (h *VideoHandler) list(c *fiber.Ctx) error {
	topicID, err := parseUintQuery(c, "topic_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid topic id")
	}

	return h.respondList(c, topicID)
}

func (h *VideoHandler) listByTopic(c *fiber.Ctx) error {
	topicID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid topic id")
	}

	return h.respondList(c, topicID)
}

func (h *VideoHandler) respondList(c *fiber.Ctx, topicID uint) error {
	videos, err := h.service.List(c.Context(), topicID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list videos")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list videos")
	}

	return utils.SendSuccess(c, "videos retrieved", videos)
}

func (h *VideoHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid video id")
	}

	video, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrVideoNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "video not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load video")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load video")
	}

	return utils.SendSuccess(c, "video retrieved", video)
}

func (h *VideoHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid video id")
	}

	var req dto.VideoUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	video, err := h.service.Update(c.Context(), id, userIDFromContext(c), userRoleFromContext(c), req)
	if err != nil {
		switch {
		case isValidationError(err):
			return validationFailed(c, err)
		case errors.Is(err, service.ErrVideoNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "video not found")
		case errors.Is(err, service.ErrNotVideoOwner):
			return utils.SendError(c, fiber.StatusForbidden, "video belongs to another uploader")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("video update failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update video")
		}
	}

	return utils.SendSuccess(c, "video updated", video)
}

func (h *VideoHandler) remove(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid video id")
	}

	if err := h.service.Delete(c.Context(), id, userIDFromContext(c), userRoleFromContext(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrVideoNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "video not found")
		case errors.Is(err, service.ErrNotVideoOwner):
			return utils.SendError(c, fiber.StatusForbidden, "video belongs to another uploader")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("video deletion failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete video")
		}
	}

	return utils.SendSuccess(c, "video deleted", nil)
}
