package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/dto"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/events"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/models"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/observability"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/repository"
	"github.com/KIIZA-TREVOUR/mybiotutor/pkg/cloudinary"
)

var (
	// ErrNoteNotFound means no note exists for the given id.
	ErrNoteNotFound = errors.New("note not found")
	// ErrUnsupportedFileType means the upload is not a pdf, txt, md, or docx.
	ErrUnsupportedFileType = errors.New("unsupported file type")
	// ErrFileTooLarge means the upload exceeds the configured size cap.
	ErrFileTooLarge = errors.New("file exceeds the size limit")
	// ErrNotNoteOwner means the caller did not upload the note.
	ErrNotNoteOwner = errors.New("note belongs to another uploader")
)

// FileStore persists uploaded documents and serves them by URL.
type FileStore interface {
	Upload(ctx context.Context, name string, reader io.Reader) (cloudinary.UploadResult, error)
	Destroy(ctx context.Context, publicID string) error
}

// NoteService manages the note upload and approval workflow. Approved notes
// become the tutoring knowledge base.
type NoteService struct {
	notes      repository.NoteRepository
	curriculum repository.CurriculumRepository
	files      FileStore
	publisher  *events.Publisher
	validate   *validator.Validate
	tracer     trace.Tracer
	logger     zerolog.Logger
	maxBytes   int64
}

// NewNoteService constructs the note service. maxSizeMB caps uploads.
func NewNoteService(notes repository.NoteRepository, curriculum repository.CurriculumRepository, files FileStore, publisher *events.Publisher, validate *validator.Validate, maxSizeMB int, logger zerolog.Logger) *NoteService {
	return &NoteService{
		notes:      notes,
		curriculum: curriculum,
		files:      files,
		publisher:  publisher,
		validate:   validate,
		tracer:     otel.Tracer("github.com/KIIZA-TREVOUR/mybiotutor/internal/service/note"),
		logger:     logger.With().Str("component", "note_service").Logger(),
		maxBytes:   int64(maxSizeMB) * 1024 * 1024,
	}
}

// Upload stores the document and creates a PENDING note attached to the
// topic. Plain-text uploads are indexed immediately; binary formats keep an
// empty extract until processed.
func (s *NoteService) Upload(ctx context.Context, topicID, uploaderID uint, req dto.NoteUploadRequest, filename string, file io.Reader) (dto.NoteResponse, error) {
	ctx, span := s.tracer.Start(ctx, "note.upload", trace.WithAttributes(
		attribute.Int("topic_id", int(topicID)),
	))
	defer span.End()

	if err := s.validate.Struct(req); err != nil {
		return dto.NoteResponse{}, err
	}

	if _, err := s.curriculum.GetTopicByID(ctx, topicID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.NoteResponse{}, ErrTopicNotFound
		}
		return dto.NoteResponse{}, fmt.Errorf("get topic: %w", err)
	}

	data, err := io.ReadAll(io.LimitReader(file, s.maxBytes+1))
	if err != nil {
		return dto.NoteResponse{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		observability.NoteUploadsRejected().WithLabelValues("too_large").Inc()
		return dto.NoteResponse{}, ErrFileTooLarge
	}

	fileType, err := detectNoteType(filename, data)
	if err != nil {
		observability.NoteUploadsRejected().WithLabelValues("unsupported_type").Inc()
		span.SetStatus(codes.Error, err.Error())
		return dto.NoteResponse{}, err
	}

	start := time.Now()
	stored, err := s.files.Upload(ctx, filename, bytes.NewReader(data))
	observability.NoteUploadLatency().Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return dto.NoteResponse{}, fmt.Errorf("store file: %w", err)
	}

	note := models.ContentNote{
		TopicID:        topicID,
		UploadedByID:   uploaderID,
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		FileURL:        stored.SecureURL,
		FilePublicID:   stored.PublicID,
		FileType:       fileType,
		ApprovalStatus: models.ApprovalPending,
	}
	if fileType == "txt" || fileType == "md" {
		note.ExtractedText = string(data)
		note.IsProcessed = true
	}

	if err := s.notes.Create(ctx, &note); err != nil {
		return dto.NoteResponse{}, fmt.Errorf("create note: %w", err)
	}

	observability.NoteUploads().WithLabelValues(fileType).Inc()
	s.logger.Info().Uint("note_id", note.ID).Str("type", fileType).Msg("note uploaded")

	return dto.NewNoteResponse(note), nil
}

// List returns notes matching the filter.
func (s *NoteService) List(ctx context.Context, filter repository.NoteFilter) ([]dto.NoteResponse, error) {
	notes, err := s.notes.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	return dto.NewNoteResponseSlice(notes), nil
}

// Get returns one note.
func (s *NoteService) Get(ctx context.Context, id uint) (dto.NoteResponse, error) {
	note, err := s.notes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.NoteResponse{}, ErrNoteNotFound
		}
		return dto.NoteResponse{}, fmt.Errorf("get note: %w", err)
	}

	return dto.NewNoteResponse(note), nil
}

// Update edits note metadata. The uploader or an admin may edit, and an
// edited note drops back to PENDING for a fresh review.
func (s *NoteService) Update(ctx context.Context, id, editorID uint, editorRole string, req dto.NoteUpdateRequest) (dto.NoteResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.NoteResponse{}, err
	}

	note, err := s.notes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.NoteResponse{}, ErrNoteNotFound
		}
		return dto.NoteResponse{}, fmt.Errorf("get note: %w", err)
	}
	if !canManageContent(note.UploadedByID, editorID, editorRole) {
		return dto.NoteResponse{}, ErrNotNoteOwner
	}

	if req.Title != nil {
		note.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		note.Description = *req.Description
	}
	note.ApprovalStatus = models.ApprovalPending
	note.ApprovedByID = nil
	note.ApprovalDate = nil
	note.RejectionReason = ""

	if err := s.notes.Update(ctx, &note); err != nil {
		return dto.NoteResponse{}, fmt.Errorf("update note: %w", err)
	}

	return dto.NewNoteResponse(note), nil
}

// Review records an approval decision and emits a note.reviewed event.
func (s *NoteService) Review(ctx context.Context, id, reviewerID uint, req dto.NoteReviewRequest) (dto.NoteResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.NoteResponse{}, err
	}

	note, err := s.notes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.NoteResponse{}, ErrNoteNotFound
		}
		return dto.NoteResponse{}, fmt.Errorf("get note: %w", err)
	}

	now := time.Now()
	note.ApprovalStatus = req.Status
	if req.Status == models.ApprovalApproved {
		note.ApprovedByID = &reviewerID
		note.ApprovalDate = &now
		note.RejectionReason = ""
	} else {
		note.ApprovedByID = nil
		note.ApprovalDate = nil
		note.RejectionReason = req.RejectionReason
	}

	if err := s.notes.Update(ctx, &note); err != nil {
		return dto.NoteResponse{}, fmt.Errorf("review note: %w", err)
	}

	s.publisher.Publish(events.SubjectNoteReviewed, events.NoteReviewedEvent{
		NoteID:     note.ID,
		TopicID:    note.TopicID,
		ReviewerID: reviewerID,
		Status:     note.ApprovalStatus,
		ReviewedAt: now,
	})

	s.logger.Info().Uint("note_id", note.ID).Str("status", note.ApprovalStatus).Msg("note reviewed")

	return dto.NewNoteResponse(note), nil
}

// Delete removes the note row and best-effort removes the stored file. The
// uploader or an admin may delete.
func (s *NoteService) Delete(ctx context.Context, id, callerID uint, callerRole string) error {
	note, err := s.notes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoteNotFound
		}
		return fmt.Errorf("get note: %w", err)
	}
	if !canManageContent(note.UploadedByID, callerID, callerRole) {
		return ErrNotNoteOwner
	}

	if err := s.notes.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}

	if err := s.files.Destroy(ctx, note.FilePublicID); err != nil {
		s.logger.Warn().Err(err).Uint("note_id", id).Msg("failed to remove stored file")
	}

	s.logger.Info().Uint("note_id", id).Msg("note deleted")
	return nil
}

// detectNoteType sniffs the content and maps it to one of the allowed note
// formats. The extension only disambiguates md from plain text.
func detectNoteType(filename string, data []byte) (string, error) {
	detected := mimetype.Detect(data)

	switch {
	case detected.Is("application/pdf"):
		return "pdf", nil
	case detected.Is("application/vnd.openxmlformats-officedocument.wordprocessingml.document"):
		return "docx", nil
	case detected.Is("text/plain") || strings.HasPrefix(detected.String(), "text/"):
		if strings.EqualFold(filepath.Ext(filename), ".md") {
			return "md", nil
		}
		return "txt", nil
	default:
		return "", ErrUnsupportedFileType
	}
}
