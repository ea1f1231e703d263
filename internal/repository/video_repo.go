package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/models"
)

// VideoRepository defines persistence operations for curated video links.
type VideoRepository interface {
	Create(ctx context.Context, video *models.VideoResource) error
	GetByID(ctx context.Context, id uint) (models.VideoResource, error)
	List(ctx context.Context, topicID uint) ([]models.VideoResource, error)
	Update(ctx context.Context, video *models.VideoResource) error
	Delete(ctx context.Context, id uint) error
}

type videoRepository struct {
	db *gorm.DB
}

// NewVideoRepository instantiates a GORM-backed repository.
func NewVideoRepository(db *gorm.DB) VideoRepository {
	return &videoRepository{db: db}
}

func (r *videoRepository) Create(ctx context.Context, video *models.VideoResource) error {
	return r.db.WithContext(ctx).Create(video).Error
}

func (r *videoRepository) GetByID(ctx context.Context, id uint) (models.VideoResource, error) {
	var video models.VideoResource
	if err := r.db.WithContext(ctx).Preload("Topic").First(&video, id).Error; err != nil {
		return models.VideoResource{}, err
	}

	return video, nil
}

func (r *videoRepository) List(ctx context.Context, topicID uint) ([]models.VideoResource, error) {
	query := r.db.WithContext(ctx).Preload("Topic")
	if topicID != 0 {
		query = query.Where("topic_id = ?", topicID)
	}

	var videos []models.VideoResource
	if err := query.Order("created_at DESC").Find(&videos).Error; err != nil {
		return nil, err
	}

	return videos, nil
}

func (r *videoRepository) Update(ctx context.Context, video *models.VideoResource) error {
	return r.db.WithContext(ctx).Save(video).Error
}

func (r *videoRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.VideoResource{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
