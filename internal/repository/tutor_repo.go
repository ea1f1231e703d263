package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/models"
)

// TutorRepository covers chat sessions, their messages, and the adaptive
// learning log behind recommendations.
type TutorRepository interface {
	CreateSession(ctx context.Context, session *models.ChatSession) error
	GetSessionByID(ctx context.Context, id uint) (models.ChatSession, error)
	ListSessionsByStudent(ctx context.Context, studentID uint) ([]models.ChatSession, error)
	UpdateSession(ctx context.Context, session *models.ChatSession) error

	CreateMessage(ctx context.Context, message *models.ChatMessage) error
	ListMessagesBySession(ctx context.Context, sessionID uint) ([]models.ChatMessage, error)

	CreateLog(ctx context.Context, log *models.AdaptiveLearningLog) error
	GetLogByID(ctx context.Context, id uint) (models.AdaptiveLearningLog, error)
	ListRecommendations(ctx context.Context, studentID uint) ([]models.AdaptiveLearningLog, error)
	MarkRecommendationsShown(ctx context.Context, ids []uint) error
	UpdateLog(ctx context.Context, log *models.AdaptiveLearningLog) error
}

type tutorRepository struct {
	db *gorm.DB
}

// NewTutorRepository instantiates a GORM-backed repository.
func NewTutorRepository(db *gorm.DB) TutorRepository {
	return &tutorRepository{db: db}
}

func (r *tutorRepository) CreateSession(ctx context.Context, session *models.ChatSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *tutorRepository) GetSessionByID(ctx context.Context, id uint) (models.ChatSession, error) {
	var session models.ChatSession
	if err := r.db.WithContext(ctx).First(&session, id).Error; err != nil {
		return models.ChatSession{}, err
	}

	return session, nil
}

func (r *tutorRepository) ListSessionsByStudent(ctx context.Context, studentID uint) ([]models.ChatSession, error) {
	var sessions []models.ChatSession
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("updated_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *tutorRepository) UpdateSession(ctx context.Context, session *models.ChatSession) error {
	return r.db.WithContext(ctx).Save(session).Error
}

func (r *tutorRepository) CreateMessage(ctx context.Context, message *models.ChatMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *tutorRepository) ListMessagesBySession(ctx context.Context, sessionID uint) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	return messages, nil
}

func (r *tutorRepository) CreateLog(ctx context.Context, log *models.AdaptiveLearningLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *tutorRepository) GetLogByID(ctx context.Context, id uint) (models.AdaptiveLearningLog, error) {
	var log models.AdaptiveLearningLog
	if err := r.db.WithContext(ctx).Preload("Topic").First(&log, id).Error; err != nil {
		return models.AdaptiveLearningLog{}, err
	}

	return log, nil
}

// ListRecommendations returns weak-area logs still awaiting review,
// newest first.
func (r *tutorRepository) ListRecommendations(ctx context.Context, studentID uint) ([]models.AdaptiveLearningLog, error) {
	var logs []models.AdaptiveLearningLog
	err := r.db.WithContext(ctx).Preload("Topic").
		Where("student_id = ? AND recommended = ? AND topic_reviewed = ?", studentID, true, false).
		Order("created_at DESC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}

	return logs, nil
}

func (r *tutorRepository) MarkRecommendationsShown(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.AdaptiveLearningLog{}).
		Where("id IN ?", ids).
		Update("recommendation_shown", true).Error
}

func (r *tutorRepository) UpdateLog(ctx context.Context, log *models.AdaptiveLearningLog) error {
	return r.db.WithContext(ctx).Save(log).Error
}
