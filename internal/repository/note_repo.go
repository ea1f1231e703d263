package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/models"
)

// NoteFilter narrows note listings. Zero values are ignored.
type NoteFilter struct {
	TopicID    uint
	UploaderID uint
	Status     string
}

// NoteRepository defines persistence operations for uploaded study notes.
type NoteRepository interface {
	Create(ctx context.Context, note *models.ContentNote) error
	GetByID(ctx context.Context, id uint) (models.ContentNote, error)
	List(ctx context.Context, filter NoteFilter) ([]models.ContentNote, error)
	Update(ctx context.Context, note *models.ContentNote) error
	Delete(ctx context.Context, id uint) error
	SearchApproved(ctx context.Context, terms []string, limit int) ([]models.ContentNote, error)
}

type noteRepository struct {
	db *gorm.DB
}

// NewNoteRepository instantiates a GORM-backed repository.
func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) Create(ctx context.Context, note *models.ContentNote) error {
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *noteRepository) GetByID(ctx context.Context, id uint) (models.ContentNote, error) {
	var note models.ContentNote
	err := r.db.WithContext(ctx).
		Preload("Topic").
		Preload("UploadedBy").
		First(&note, id).Error
	if err != nil {
		return models.ContentNote{}, err
	}

	return note, nil
}

func (r *noteRepository) List(ctx context.Context, filter NoteFilter) ([]models.ContentNote, error) {
	query := r.db.WithContext(ctx).Preload("Topic").Preload("UploadedBy")

	if filter.TopicID != 0 {
		query = query.Where("topic_id = ?", filter.TopicID)
	}
	if filter.UploaderID != 0 {
		query = query.Where("uploaded_by_id = ?", filter.UploaderID)
	}
	if filter.Status != "" {
		query = query.Where("approval_status = ?", filter.Status)
	}

	var notes []models.ContentNote
	if err := query.Order("created_at DESC").Find(&notes).Error; err != nil {
		return nil, err
	}

	return notes, nil
}

func (r *noteRepository) Update(ctx context.Context, note *models.ContentNote) error {
	return r.db.WithContext(ctx).Save(note).Error
}

func (r *noteRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.ContentNote{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SearchApproved matches approved notes whose title or extracted text
// contains any of the given terms. Candidates are capped at limit; the
// caller ranks them.
func (r *noteRepository) SearchApproved(ctx context.Context, terms []string, limit int) ([]models.ContentNote, error) {
	query := r.db.WithContext(ctx).Preload("Topic").
		Where("approval_status = ?", models.ApprovalApproved)

	if len(terms) > 0 {
		clauses := make([]string, 0, len(terms))
		args := make([]interface{}, 0, len(terms)*2)
		for _, term := range terms {
			like := "%" + strings.ToLower(term) + "%"
			clauses = append(clauses, "(LOWER(title) LIKE ? OR LOWER(extracted_text) LIKE ?)")
			args = append(args, like, like)
		}
		query = query.Where(strings.Join(clauses, " OR "), args...)
	}

	var notes []models.ContentNote
	if err := query.Limit(limit).Find(&notes).Error; err != nil {
		return nil, err
	}

	return notes, nil
}
