package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/dto"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/models"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/repository"
)

var (
	// ErrClassNotFound means no curriculum class exists for the given id.
	ErrClassNotFound = errors.New("curriculum class not found")
	// ErrClassCodeTaken means a class already carries the code.
	ErrClassCodeTaken = errors.New("a class with this code already exists")
	// ErrTopicNotFound means no topic exists for the given id.
	ErrTopicNotFound = errors.New("topic not found")
	// ErrTopicTitleTaken means the class already has a topic with the title.
	ErrTopicTitleTaken = errors.New("the class already has a topic with this title")
)

// CurriculumService manages the shared class-level and topic catalog.
type CurriculumService struct {
	curriculum repository.CurriculumRepository
	validate   *validator.Validate
	logger     zerolog.Logger
}

// NewCurriculumService constructs the curriculum service.
func NewCurriculumService(curriculum repository.CurriculumRepository, validate *validator.Validate, logger zerolog.Logger) *CurriculumService {
	return &CurriculumService{
		curriculum: curriculum,
		validate:   validate,
		logger:     logger.With().Str("component", "curriculum_service").Logger(),
	}
}

// CreateClass adds a class level to the catalog.
func (s *CurriculumService) CreateClass(ctx context.Context, req dto.CurriculumClassCreateRequest) (dto.CurriculumClassResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.CurriculumClassResponse{}, err
	}

	taken, err := s.curriculum.ClassCodeExists(ctx, req.Code, 0)
	if err != nil {
		return dto.CurriculumClassResponse{}, fmt.Errorf("check class code: %w", err)
	}
	if taken {
		return dto.CurriculumClassResponse{}, ErrClassCodeTaken
	}

	class := models.CurriculumClass{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Order:       req.Order,
	}
	if err := s.curriculum.CreateClass(ctx, &class); err != nil {
		return dto.CurriculumClassResponse{}, fmt.Errorf("create class: %w", err)
	}

	s.logger.Info().Uint("class_id", class.ID).Str("code", class.Code).Msg("curriculum class created")

	return dto.NewCurriculumClassResponse(class), nil
}

// ListClasses returns all class levels ordered by their position.
func (s *CurriculumService) ListClasses(ctx context.Context) ([]dto.CurriculumClassResponse, error) {
	classes, err := s.curriculum.ListClasses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}

	responses := make([]dto.CurriculumClassResponse, 0, len(classes))
	for _, class := range classes {
		response := dto.NewCurriculumClassResponse(class)
		count, err := s.curriculum.CountTopics(ctx, class.ID)
		if err != nil {
			return nil, fmt.Errorf("count topics: %w", err)
		}
		response.TotalTopics = int(count)
		responses = append(responses, response)
	}

	return responses, nil
}

// GetClass returns one class level.
func (s *CurriculumService) GetClass(ctx context.Context, id uint) (dto.CurriculumClassResponse, error) {
	class, err := s.curriculum.GetClassByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CurriculumClassResponse{}, ErrClassNotFound
		}
		return dto.CurriculumClassResponse{}, fmt.Errorf("get class: %w", err)
	}

	response := dto.NewCurriculumClassResponse(class)
	count, err := s.curriculum.CountTopics(ctx, class.ID)
	if err != nil {
		return dto.CurriculumClassResponse{}, fmt.Errorf("count topics: %w", err)
	}
	response.TotalTopics = int(count)

	return response, nil
}

// UpdateClass applies a partial update to a class level.
func (s *CurriculumService) UpdateClass(ctx context.Context, id uint, req dto.CurriculumClassUpdateRequest) (dto.CurriculumClassResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.CurriculumClassResponse{}, err
	}

	class, err := s.curriculum.GetClassByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CurriculumClassResponse{}, ErrClassNotFound
		}
		return dto.CurriculumClassResponse{}, fmt.Errorf("get class: %w", err)
	}

	if req.Name != nil {
		class.Name = *req.Name
	}
	if req.Description != nil {
		class.Description = *req.Description
	}
	if req.Order != nil {
		class.Order = *req.Order
	}

	if err := s.curriculum.UpdateClass(ctx, &class); err != nil {
		return dto.CurriculumClassResponse{}, fmt.Errorf("update class: %w", err)
	}

	return dto.NewCurriculumClassResponse(class), nil
}

// DeleteClass removes a class level and cascades to its topics.
func (s *CurriculumService) DeleteClass(ctx context.Context, id uint) error {
	if err := s.curriculum.DeleteClass(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassNotFound
		}
		return fmt.Errorf("delete class: %w", err)
	}

	s.logger.Info().Uint("class_id", id).Msg("curriculum class deleted")
	return nil
}

// CreateTopic adds a topic to a class. Titles are unique within one class.
func (s *CurriculumService) CreateTopic(ctx context.Context, classID uint, req dto.TopicCreateRequest) (dto.TopicResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.TopicResponse{}, err
	}

	class, err := s.curriculum.GetClassByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TopicResponse{}, ErrClassNotFound
		}
		return dto.TopicResponse{}, fmt.Errorf("get class: %w", err)
	}

	title := strings.TrimSpace(req.Title)
	taken, err := s.curriculum.TopicTitleExists(ctx, class.ID, title, 0)
	if err != nil {
		return dto.TopicResponse{}, fmt.Errorf("check topic title: %w", err)
	}
	if taken {
		return dto.TopicResponse{}, ErrTopicTitleTaken
	}

	topic := models.Topic{
		CurriculumClassID:  class.ID,
		CurriculumClass:    &class,
		Title:              title,
		Description:        req.Description,
		Order:              req.Order,
		LearningObjectives: req.LearningObjectives,
		KeyConcepts:        datatypes.NewJSONSlice(req.KeyConcepts),
	}
	if err := s.curriculum.CreateTopic(ctx, &topic); err != nil {
		return dto.TopicResponse{}, fmt.Errorf("create topic: %w", err)
	}

	s.logger.Info().Uint("topic_id", topic.ID).Str("class", class.Code).Msg("topic created")

	return dto.NewTopicResponse(topic), nil
}

// ListTopics returns topics, optionally restricted to one class.
func (s *CurriculumService) ListTopics(ctx context.Context, classID uint) ([]dto.TopicResponse, error) {
	if classID != 0 {
		if _, err := s.curriculum.GetClassByID(ctx, classID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrClassNotFound
			}
			return nil, fmt.Errorf("get class: %w", err)
		}
	}

	topics, err := s.curriculum.ListTopics(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}

	return dto.NewTopicResponseSlice(topics), nil
}

// GetTopic returns one topic.
func (s *CurriculumService) GetTopic(ctx context.Context, id uint) (dto.TopicResponse, error) {
	topic, err := s.curriculum.GetTopicByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TopicResponse{}, ErrTopicNotFound
		}
		return dto.TopicResponse{}, fmt.Errorf("get topic: %w", err)
	}

	return dto.NewTopicResponse(topic), nil
}

// UpdateTopic applies a partial update; a title change re-checks uniqueness
// within the topic's class.
func (s *CurriculumService) UpdateTopic(ctx context.Context, id uint, req dto.TopicUpdateRequest) (dto.TopicResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.TopicResponse{}, err
	}

	topic, err := s.curriculum.GetTopicByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TopicResponse{}, ErrTopicNotFound
		}
		return dto.TopicResponse{}, fmt.Errorf("get topic: %w", err)
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title != topic.Title {
			taken, err := s.curriculum.TopicTitleExists(ctx, topic.CurriculumClassID, title, topic.ID)
			if err != nil {
				return dto.TopicResponse{}, fmt.Errorf("check topic title: %w", err)
			}
			if taken {
				return dto.TopicResponse{}, ErrTopicTitleTaken
			}
			topic.Title = title
		}
	}
	if req.Description != nil {
		topic.Description = *req.Description
	}
	if req.Order != nil {
		topic.Order = *req.Order
	}
	if req.LearningObjectives != nil {
		topic.LearningObjectives = *req.LearningObjectives
	}
	if req.KeyConcepts != nil {
		topic.KeyConcepts = datatypes.NewJSONSlice(*req.KeyConcepts)
	}

	if err := s.curriculum.UpdateTopic(ctx, &topic); err != nil {
		return dto.TopicResponse{}, fmt.Errorf("update topic: %w", err)
	}

	return dto.NewTopicResponse(topic), nil
}

// DeleteTopic removes a topic.
func (s *CurriculumService) DeleteTopic(ctx context.Context, id uint) error {
	if err := s.curriculum.DeleteTopic(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTopicNotFound
		}
		return fmt.Errorf("delete topic: %w", err)
	}

	s.logger.Info().Uint("topic_id", id).Msg("topic deleted")
	return nil
}
