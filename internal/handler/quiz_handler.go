package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/dto"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/service"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/utils"
)

// QuizHandler serves quiz authoring, delivery, and attempt endpoints.
type QuizHandler struct {
	service *service.QuizService
	logger  zerolog.Logger
}

// NewQuizHandler constructs the handler instance.
func NewQuizHandler(service *service.QuizService, logger zerolog.Logger) *QuizHandler {
	return &QuizHandler{
		service: service,
		logger:  logger.With().Str("component", "quiz_handler").Logger(),
	}
}

// RegisterReads wires quiz delivery routes for every authenticated role.
// Students receive payloads with correct-answer flags stripped.
func (h *QuizHandler) RegisterReads(router fiber.Router) {
	router.Get("/topics/:id/quizzes", h.listByTopic)
	router.Get("/quizzes/:id", h.get)
}

// RegisterAuthoring wires quiz mutation routes for teachers and admins.
func (h *QuizHandler) RegisterAuthoring(router fiber.Router) {
	router.Post("/topics/:id/quizzes", h.create)
	router.Put("/quizzes/:id", h.update)
	router.Delete("/quizzes/:id", h.remove)
	router.Get("/quizzes/:id/attempts", h.listQuizAttempts)
}

// RegisterStudent wires the attempt routes for students.
func (h *QuizHandler) RegisterStudent(router fiber.Router) {
	router.Post("/quizzes/:id/attempts", h.submitAttempt)
	router.Get("/attempts", h.listMyAttempts)
	router.Get("/attempts/:id", h.getMyAttempt)
}

func (h *QuizHandler) create(c *fiber.Ctx) error {
	topicID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid topic id")
	}

	var req dto.QuizCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	quiz, err := h.service.Create(c.Context(), topicID, userIDFromContext(c), req)
	if err != nil {
		switch {
		case isValidationError(err):
			return validationFailed(c, err)
		case errors.Is(err, service.ErrTopicNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "topic not found")
		case errors.Is(err, service.ErrNoCorrectChoice):
			return utils.SendError(c, fiber.StatusBadRequest, "every question needs at least one correct choice")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("quiz creation failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create quiz")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "quiz created", quiz)
}

func (h *QuizHandler) listByTopic(c *fiber.Ctx) error {
	topicID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid topic id")
	}

	quizzes, err := h.service.List(c.Context(), topicID, isStudent(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list quizzes")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list quizzes")
	}

	return utils.SendSuccess(c, "quizzes retrieved", quizzes)
}

func (h *QuizHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid quiz id")
	}

	quiz, err := h.service.Get(c.Context(), id, isStudent(c))
	if err != nil {
		if errors.Is(err, service.ErrQuizNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "quiz not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load quiz")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load quiz")
	}

	return utils.SendSuccess(c, "quiz retrieved", quiz)
}

func (h *QuizHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid quiz id")
	}

	var req dto.QuizUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	quiz, err := h.service.Update(c.Context(), id, userIDFromContext(c), userRoleFromContext(c), req)
	if err != nil {
		switch {
		case isValidationError(err):
			return validationFailed(c, err)
		case errors.Is(err, service.ErrQuizNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "quiz not found")
		case errors.Is(err, service.ErrNotQuizOwner):
			return utils.SendError(c, fiber.StatusForbidden, "quiz belongs to another author")
		case errors.Is(err, service.ErrNoCorrectChoice):
			return utils.SendError(c, fiber.StatusBadRequest, "every question needs at least one correct choice")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("quiz update failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update quiz")
		}
	}

	return utils.SendSuccess(c, "quiz updated", quiz)
}

func (h *QuizHandler) remove(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid quiz id")
	}

	if err := h.service.Delete(c.Context(), id, userIDFromContext(c), userRoleFromContext(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrQuizNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "quiz not found")
		case errors.Is(err, service.ErrNotQuizOwner):
			return utils.SendError(c, fiber.StatusForbidden, "quiz belongs to another author")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("quiz deletion failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete quiz")
		}
	}

	return utils.SendSuccess(c, "quiz deleted", nil)
}

func (h *QuizHandler) submitAttempt(c *fiber.Ctx) error {
	quizID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid quiz id")
	}

	var req dto.AttemptSubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	attempt, err := h.service.SubmitAttempt(c.Context(), quizID, userIDFromContext(c), req)
	if err != nil {
		switch {
		case isValidationError(err):
			return validationFailed(c, err)
		case errors.Is(err, service.ErrQuizNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "quiz not found")
		case errors.Is(err, service.ErrQuizInactive):
			return utils.SendError(c, fiber.StatusConflict, "quiz is not active")
		case errors.Is(err, service.ErrInvalidAnswers):
			return utils.SendError(c, fiber.StatusBadRequest, "answers reference unknown questions or choices")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("attempt submission failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to grade attempt")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "attempt graded", attempt)
}

func (h *QuizHandler) listMyAttempts(c *fiber.Ctx) error {
	attempts, err := h.service.ListAttemptsByStudent(c.Context(), userIDFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list attempts")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list attempts")
	}

	return utils.SendSuccess(c, "attempts retrieved", attempts)
}

func (h *QuizHandler) getMyAttempt(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid attempt id")
	}

	attempt, err := h.service.GetAttempt(c.Context(), id, userIDFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrAttemptNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "attempt not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load attempt")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load attempt")
	}

	return utils.SendSuccess(c, "attempt retrieved", attempt)
}

func (h *QuizHandler) listQuizAttempts(c *fiber.Ctx) error {
	quizID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid quiz id")
	}

	attempts, err := h.service.ListAttemptsByQuiz(c.Context(), quizID)
	if err != nil {
		if errors.Is(err, service.ErrQuizNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "quiz not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list attempts")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list attempts")
	}

	return utils.SendSuccess(c, "attempts retrieved", attempts)
}
