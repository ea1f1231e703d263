package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/models"
)

// QuizRepository covers quizzes, their question graphs, and attempts.
type QuizRepository interface {
	Create(ctx context.Context, quiz *models.Quiz) error
	GetByID(ctx context.Context, id uint) (models.Quiz, error)
	List(ctx context.Context, topicID uint, activeOnly bool) ([]models.Quiz, error)
	Update(ctx context.Context, quiz *models.Quiz) error
	ReplaceQuestions(ctx context.Context, quizID uint, questions []models.Question) error
	Delete(ctx context.Context, id uint) error

	CreateAttempt(ctx context.Context, attempt *models.QuizAttempt) error
	GetAttemptByID(ctx context.Context, id uint) (models.QuizAttempt, error)
	ListAttemptsByStudent(ctx context.Context, studentID uint) ([]models.QuizAttempt, error)
	ListAttemptsByQuiz(ctx context.Context, quizID uint) ([]models.QuizAttempt, error)
}

type quizRepository struct {
	db *gorm.DB
}

// NewQuizRepository instantiates a GORM-backed repository.
func NewQuizRepository(db *gorm.DB) QuizRepository {
	return &quizRepository{db: db}
}

// Create persists the quiz together with its questions and choices; GORM
// cascades the associations in one transaction.
func (r *quizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	return r.db.WithContext(ctx).Create(quiz).Error
}

func (r *quizRepository) GetByID(ctx context.Context, id uint) (models.Quiz, error) {
	var quiz models.Quiz
	err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.\"order\" ASC, questions.id ASC")
		}).
		Preload("Questions.Choices", func(db *gorm.DB) *gorm.DB {
			return db.Order("answer_choices.\"order\" ASC, answer_choices.id ASC")
		}).
		First(&quiz, id).Error
	if err != nil {
		return models.Quiz{}, err
	}

	return quiz, nil
}

func (r *quizRepository) List(ctx context.Context, topicID uint, activeOnly bool) ([]models.Quiz, error) {
	query := r.db.WithContext(ctx).Model(&models.Quiz{})
	if topicID != 0 {
		query = query.Where("topic_id = ?", topicID)
	}
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var quizzes []models.Quiz
	if err := query.Order("created_at DESC").Find(&quizzes).Error; err != nil {
		return nil, err
	}

	return quizzes, nil
}

func (r *quizRepository) Update(ctx context.Context, quiz *models.Quiz) error {
	return r.db.WithContext(ctx).Omit("Questions").Save(quiz).Error
}

// ReplaceQuestions swaps the quiz's question graph wholesale inside one
// transaction so a partially-written quiz is never observable.
func (r *quizRepository) ReplaceQuestions(ctx context.Context, quizID uint, questions []models.Question) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var questionIDs []uint
		if err := tx.Model(&models.Question{}).Where("quiz_id = ?", quizID).Pluck("id", &questionIDs).Error; err != nil {
			return err
		}
		if len(questionIDs) > 0 {
			if err := tx.Where("question_id IN ?", questionIDs).Delete(&models.AnswerChoice{}).Error; err != nil {
				return err
			}
			if err := tx.Where("quiz_id = ?", quizID).Delete(&models.Question{}).Error; err != nil {
				return err
			}
		}
		for i := range questions {
			questions[i].QuizID = quizID
			if err := tx.Create(&questions[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *quizRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Quiz{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *quizRepository) CreateAttempt(ctx context.Context, attempt *models.QuizAttempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *quizRepository) GetAttemptByID(ctx context.Context, id uint) (models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	if err := r.db.WithContext(ctx).Preload("Quiz").First(&attempt, id).Error; err != nil {
		return models.QuizAttempt{}, err
	}

	return attempt, nil
}

func (r *quizRepository) ListAttemptsByStudent(ctx context.Context, studentID uint) ([]models.QuizAttempt, error) {
	var attempts []models.QuizAttempt
	err := r.db.WithContext(ctx).Preload("Quiz").
		Where("student_id = ?", studentID).
		Order("started_at DESC").
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}

	return attempts, nil
}

func (r *quizRepository) ListAttemptsByQuiz(ctx context.Context, quizID uint) ([]models.QuizAttempt, error) {
	var attempts []models.QuizAttempt
	err := r.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("started_at DESC").
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}

	return attempts, nil
}
