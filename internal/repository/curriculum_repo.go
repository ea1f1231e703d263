package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/models"
)

// CurriculumRepository covers the class-level and topic hierarchy.
type CurriculumRepository interface {
	CreateClass(ctx context.Context, class *models.CurriculumClass) error
	ListClasses(ctx context.Context) ([]models.CurriculumClass, error)
	GetClassByID(ctx context.Context, id uint) (models.CurriculumClass, error)
	UpdateClass(ctx context.Context, class *models.CurriculumClass) error
	DeleteClass(ctx context.Context, id uint) error
	ClassCodeExists(ctx context.Context, code string, excludeID uint) (bool, error)
	CountTopics(ctx context.Context, classID uint) (int64, error)

	CreateTopic(ctx context.Context, topic *models.Topic) error
	ListTopics(ctx context.Context, classID uint) ([]models.Topic, error)
	GetTopicByID(ctx context.Context, id uint) (models.Topic, error)
	UpdateTopic(ctx context.Context, topic *models.Topic) error
	DeleteTopic(ctx context.Context, id uint) error
	TopicTitleExists(ctx context.Context, classID uint, title string, excludeID uint) (bool, error)
}

type curriculumRepository struct {
	db *gorm.DB
}

// NewCurriculumRepository instantiates a GORM-backed repository.
func NewCurriculumRepository(db *gorm.DB) CurriculumRepository {
	return &curriculumRepository{db: db}
}

func (r *curriculumRepository) CreateClass(ctx context.Context, class *models.CurriculumClass) error {
	return r.db.WithContext(ctx).Create(class).Error
}

func (r *curriculumRepository) ListClasses(ctx context.Context) ([]models.CurriculumClass, error) {
	var classes []models.CurriculumClass
	if err := r.db.WithContext(ctx).Order("\"order\" ASC").Find(&classes).Error; err != nil {
		return nil, err
	}

	return classes, nil
}

func (r *curriculumRepository) GetClassByID(ctx context.Context, id uint) (models.CurriculumClass, error) {
	var class models.CurriculumClass
	if err := r.db.WithContext(ctx).First(&class, id).Error; err != nil {
		return models.CurriculumClass{}, err
	}

	return class, nil
}

func (r *curriculumRepository) UpdateClass(ctx context.Context, class *models.CurriculumClass) error {
	return r.db.WithContext(ctx).Save(class).Error
}

func (r *curriculumRepository) DeleteClass(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.CurriculumClass{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *curriculumRepository) ClassCodeExists(ctx context.Context, code string, excludeID uint) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.CurriculumClass{}).Where("code = ?", code)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *curriculumRepository) CountTopics(ctx context.Context, classID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Topic{}).
		Where("curriculum_class_id = ?", classID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *curriculumRepository) CreateTopic(ctx context.Context, topic *models.Topic) error {
	return r.db.WithContext(ctx).Create(topic).Error
}

func (r *curriculumRepository) ListTopics(ctx context.Context, classID uint) ([]models.Topic, error) {
	query := r.db.WithContext(ctx).Preload("CurriculumClass").Order("\"order\" ASC, id ASC")
	if classID != 0 {
		query = query.Where("curriculum_class_id = ?", classID)
	}

	var topics []models.Topic
	if err := query.Find(&topics).Error; err != nil {
		return nil, err
	}

	return topics, nil
}

func (r *curriculumRepository) GetTopicByID(ctx context.Context, id uint) (models.Topic, error) {
	var topic models.Topic
	if err := r.db.WithContext(ctx).Preload("CurriculumClass").First(&topic, id).Error; err != nil {
		return models.Topic{}, err
	}

	return topic, nil
}

func (r *curriculumRepository) UpdateTopic(ctx context.Context, topic *models.Topic) error {
	return r.db.WithContext(ctx).Save(topic).Error
}

func (r *curriculumRepository) DeleteTopic(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Topic{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *curriculumRepository) TopicTitleExists(ctx context.Context, classID uint, title string, excludeID uint) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.Topic{}).
		Where("curriculum_class_id = ? AND title = ?", classID, title)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
