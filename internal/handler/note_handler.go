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

// NoteHandler serves the note upload and approval workflow endpoints.
type NoteHandler struct {
	service *service.NoteService
	logger  zerolog.Logger
}

// NewNoteHandler constructs the handler instance.
func NewNoteHandler(service *service.NoteService, logger zerolog.Logger) *NoteHandler {
	return &NoteHandler{
		service: service,
		logger:  logger.With().Str("component", "note_handler").Logger(),
	}
}

// RegisterReads wires the note read routes, open to all authenticated roles.
// Students only ever see approved notes.
func (h *NoteHandler) RegisterReads(router fiber.Router) {
	router.Get("/notes", h.list)
	router.Get("/notes/:id", h.get)
	router.Get("/topics/:id/notes", h.listByTopic)
}

// RegisterTeacher wires the uploader routes.
func (h *NoteHandler) RegisterTeacher(router fiber.Router) {
	router.Post("/topics/:id/notes", h.upload)
}

// RegisterManage wires edit and delete for teachers and admins. The service
// only lets a teacher touch their own uploads.
func (h *NoteHandler) RegisterManage(router fiber.Router) {
	router.Put("/notes/:id", h.update)
	router.Delete("/notes/:id", h.remove)
}

// RegisterReview wires the approval routes for admins.
func (h *NoteHandler) RegisterReview(router fiber.Router) {
	router.Post("/notes/:id/review", h.review)
}

func (h *NoteHandler) upload(c *fiber.Ctx) error {
	topicID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid topic id")
	}

	var req dto.NoteUploadRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "unable to read file")
	}
	defer file.Close()

	note, err := h.service.Upload(c.Context(), topicID, userIDFromContext(c), req, fileHeader.Filename, file)
	if err != nil {
		switch {
		case isValidationError(err):
			return validationFailed(c, err)
		case errors.Is(err, service.ErrTopicNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "topic not found")
		case errors.Is(err, service.ErrUnsupportedFileType):
			return utils.SendError(c, fiber.StatusUnsupportedMediaType, "only pdf, txt, md, and docx files are accepted")
		case errors.Is(err, service.ErrFileTooLarge):
			return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "file exceeds the size limit")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("note upload failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to upload note")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "note uploaded", note)
}

func (h *NoteHandler) list(c *fiber.Ctx) error {
	filter := repository.NoteFilter{
		Status: strings.ToUpper(strings.TrimSpace(c.Query("status"))),
	}
	if uploaderID, err := parseUintQuery(c, "uploader_id"); err == nil && uploaderID != 0 {
		filter.UploaderID = uploaderID
	}
	if isStudent(c) {
		filter.Status = models.ApprovalApproved
	}

	notes, err := h.service.List(c.Context(), filter)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list notes")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list notes")
	}

	return utils.SendSuccess(c, "notes retrieved", notes)
}

func (h *NoteHandler) listByTopic(c *fiber.Ctx) error {
	topicID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid topic id")
	}

	filter := repository.NoteFilter{
		TopicID: topicID,
		Status:  strings.ToUpper(strings.TrimSpace(c.Query("status"))),
	}
	if isStudent(c) {
		filter.Status = models.ApprovalApproved
	}

	notes, err := h.service.List(c.Context(), filter)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list notes")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list notes")
	}

	return utils.SendSuccess(c, "notes retrieved", notes)
}

func (h *NoteHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid note id")
	}

	note, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNoteNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "note not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load note")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load note")
	}

	// Unapproved material stays invisible to students.
	if isStudent(c) && note.ApprovalStatus != models.ApprovalApproved {
		return utils.SendError(c, fiber.StatusNotFound, "note not found")
	}

	return utils.SendSuccess(c, "note retrieved", note)
}

func (h *NoteHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid note id")
	}

	var req dto.NoteUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	note, err := h.service.Update(c.Context(), id, userIDFromContext(c), userRoleFromContext(c), req)
	if err != nil {
		switch {
		case isValidationError(err):
			return validationFailed(c, err)
		case errors.Is(err, service.ErrNoteNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "note not found")
		case errors.Is(err, service.ErrNotNoteOwner):
			return utils.SendError(c, fiber.StatusForbidden, "note belongs to another uploader")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("note update failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update note")
		}
	}

	return utils.SendSuccess(c, "note updated", note)
}

func (h *NoteHandler) review(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid note id")
	}

	var req dto.NoteReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	note, err := h.service.Review(c.Context(), id, userIDFromContext(c), req)
	if err != nil {
		switch {
		case isValidationError(err):
			return validationFailed(c, err)
		case errors.Is(err, service.ErrNoteNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "note not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("note review failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to review note")
		}
	}

	return utils.SendSuccess(c, "note reviewed", note)
}

func (h *NoteHandler) remove(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid note id")
	}

	if err := h.service.Delete(c.Context(), id, userIDFromContext(c), userRoleFromContext(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrNoteNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "note not found")
		case errors.Is(err, service.ErrNotNoteOwner):
			return utils.SendError(c, fiber.StatusForbidden, "note belongs to another uploader")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("note deletion failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete note")
		}
	}

	return utils.SendSuccess(c, "note deleted", nil)
}
