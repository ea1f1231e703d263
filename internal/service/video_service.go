package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/dto"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/models"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/repository"
)

var (
	// ErrVideoNotFound means no video exists for the given id.
	ErrVideoNotFound = errors.New("video not found")
	// ErrNotVideoOwner means the caller is neither the uploader nor an admin.
	ErrNotVideoOwner = errors.New("video belongs to another uploader")
)

// VideoService manages curated video links attached to topics.
type VideoService struct {
	videos     repository.VideoRepository
	curriculum repository.CurriculumRepository
	validate   *validator.Validate
	logger     zerolog.Logger
}

// NewVideoService constructs the video service.
func NewVideoService(videos repository.VideoRepository, curriculum repository.CurriculumRepository, validate *validator.Validate, logger zerolog.Logger) *VideoService {
	return &VideoService{
		videos:     videos,
		curriculum: curriculum,
		validate:   validate,
		logger:     logger.With().Str("component", "video_service").Logger(),
	}
}

// Create attaches a video link to a topic.
func (s *VideoService) Create(ctx context.Context, topicID, uploaderID uint, req dto.VideoCreateRequest) (dto.VideoResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.VideoResponse{}, err
	}

	if _, err := s.curriculum.GetTopicByID(ctx, topicID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.VideoResponse{}, ErrTopicNotFound
		}
		return dto.VideoResponse{}, fmt.Errorf("get topic: %w", err)
	}

	video := models.VideoResource{
		TopicID:         topicID,
		Title:           req.Title,
		Description:     req.Description,
		VideoURL:        req.VideoURL,
		ThumbnailURL:    req.ThumbnailURL,
		DurationMinutes: req.DurationMinutes,
		UploadedByID:    uploaderID,
		Order:           req.Order,
	}
	if err := s.videos.Create(ctx, &video); err != nil {
		return dto.VideoResponse{}, fmt.Errorf("create video: %w", err)
	}

	s.logger.Info().Uint("video_id", video.ID).Uint("topic_id", topicID).Msg("video attached")

	return dto.NewVideoResponse(video), nil
}

// List returns videos, optionally restricted to one topic.
func (s *VideoService) List(ctx context.Context, topicID uint) ([]dto.VideoResponse, error) {
	videos, err := s.videos.List(ctx, topicID)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}

	return dto.NewVideoResponseSlice(videos), nil
}

// Get returns one video.
func (s *VideoService) Get(ctx context.Context, id uint) (dto.VideoResponse, error) {
	video, err := s.videos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.VideoResponse{}, ErrVideoNotFound
		}
		return dto.VideoResponse{}, fmt.Errorf("get video: %w", err)
	}

	return dto.NewVideoResponse(video), nil
}

// Update applies a partial update to a video. Only the uploader or an admin
// may edit.
func (s *VideoService) Update(ctx context.Context, id, editorID uint, editorRole string, req dto.VideoUpdateRequest) (dto.VideoResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.VideoResponse{}, err
	}

	video, err := s.videos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.VideoResponse{}, ErrVideoNotFound
		}
		return dto.VideoResponse{}, fmt.Errorf("get video: %w", err)
	}
	if !canManageContent(video.UploadedByID, editorID, editorRole) {
		return dto.VideoResponse{}, ErrNotVideoOwner
	}

	if req.Title != nil {
		video.Title = *req.Title
	}
	if req.Description != nil {
		video.Description = *req.Description
	}
	if req.VideoURL != nil {
		video.VideoURL = *req.VideoURL
	}
	if req.ThumbnailURL != nil {
		video.ThumbnailURL = *req.ThumbnailURL
	}
	if req.DurationMinutes != nil {
		video.DurationMinutes = req.DurationMinutes
	}
	if req.Order != nil {
		video.Order = *req.Order
	}

	if err := s.videos.Update(ctx, &video); err != nil {
		return dto.VideoResponse{}, fmt.Errorf("update video: %w", err)
	}

	return dto.NewVideoResponse(video), nil
}

// Delete removes a video link. Only the uploader or an admin may delete.
func (s *VideoService) Delete(ctx context.Context, id, callerID uint, callerRole string) error {
	video, err := s.videos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVideoNotFound
		}
		return fmt.Errorf("get video: %w", err)
	}
	if !canManageContent(video.UploadedByID, callerID, callerRole) {
		return ErrNotVideoOwner
	}

	if err := s.videos.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVideoNotFound
		}
		return fmt.Errorf("delete video: %w", err)
	}

	s.logger.Info().Uint("video_id", id).Msg("video deleted")
	return nil
}
