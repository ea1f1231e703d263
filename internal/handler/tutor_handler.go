package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/dto"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/service"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/utils"
)

// TutorHandler serves the student-facing AI tutor endpoints.
type TutorHandler struct {
	service *service.TutorService
	logger  zerolog.Logger
}

// NewTutorHandler constructs the handler instance.
func NewTutorHandler(service *service.TutorService, logger zerolog.Logger) *TutorHandler {
	return &TutorHandler{
		service: service,
		logger:  logger.With().Str("component", "tutor_handler").Logger(),
	}
}

// Register wires the tutor routes onto the given router group.
func (h *TutorHandler) Register(router fiber.Router) {
	router.Post("/sessions", h.startSession)
	router.Get("/sessions", h.listSessions)
	router.Delete("/sessions/:id", h.closeSession)
	router.Get("/sessions/:id/messages", h.history)
	router.Post("/sessions/:id/messages", h.sendMessage)
	router.Get("/recommendations", h.recommendations)
	router.Post("/recommendations/:id/reviewed", h.markReviewed)
}

func (h *TutorHandler) startSession(c *fiber.Ctx) error {
	var req dto.ChatSessionCreateRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	session, err := h.service.StartSession(c.Context(), userIDFromContext(c), req.Title)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to start tutor session")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to start session")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "session started", session)
}

func (h *TutorHandler) listSessions(c *fiber.Ctx) error {
	sessions, err := h.service.ListSessions(c.Context(), userIDFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list tutor sessions")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list sessions")
	}

	return utils.SendSuccess(c, "sessions retrieved", sessions)
}

func (h *TutorHandler) closeSession(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid session id")
	}

	if err := h.service.CloseSession(c.Context(), userIDFromContext(c), id); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "session not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to close tutor session")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to close session")
	}

	return utils.SendSuccess(c, "session closed", nil)
}

func (h *TutorHandler) history(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid session id")
	}

	messages, err := h.service.History(c.Context(), userIDFromContext(c), id)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "session not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load session history")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load history")
	}

	return utils.SendSuccess(c, "messages retrieved", messages)
}

func (h *TutorHandler) sendMessage(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid session id")
	}

	var req dto.ChatMessageSendRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	exchange, err := h.service.SendMessage(c.Context(), userIDFromContext(c), id, req)
	if err != nil {
		switch {
		case isValidationError(err):
			return validationFailed(c, err)
		case errors.Is(err, service.ErrSessionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "session not found")
		case errors.Is(err, service.ErrSessionClosed):
			return utils.SendError(c, fiber.StatusConflict, "session is closed")
		case errors.Is(err, service.ErrEmptyMessage):
			return utils.SendError(c, fiber.StatusBadRequest, "message content is empty")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("tutor exchange failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to send message")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "message sent", exchange)
}

func (h *TutorHandler) recommendations(c *fiber.Ctx) error {
	recommendations, err := h.service.Recommendations(c.Context(), userIDFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list recommendations")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list recommendations")
	}

	return utils.SendSuccess(c, "recommendations retrieved", recommendations)
}

func (h *TutorHandler) markReviewed(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid recommendation id")
	}

	recommendation, err := h.service.MarkTopicReviewed(c.Context(), userIDFromContext(c), id)
	if err != nil {
		if errors.Is(err, service.ErrRecommendationNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "recommendation not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to mark topic reviewed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update recommendation")
	}

	return utils.SendSuccess(c, "topic marked as reviewed", recommendation)
}
