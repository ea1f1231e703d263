package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/models"
)

// SchoolMemberCounts carries the active member tallies for one school.
type SchoolMemberCounts struct {
	Students int64
	Teachers int64
}

// SchoolRepository defines persistence operations for tenant records.
type SchoolRepository interface {
	Create(ctx context.Context, school *models.School) error
	List(ctx context.Context) ([]models.School, error)
	GetByID(ctx context.Context, id uint) (models.School, error)
	Update(ctx context.Context, school *models.School) error
	Deactivate(ctx context.Context, id uint) error
	NameExists(ctx context.Context, name string, excludeID uint) (bool, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	MemberCounts(ctx context.Context, schoolID uint) (SchoolMemberCounts, error)
}

type schoolRepository struct {
	db *gorm.DB
}

// NewSchoolRepository instantiates a GORM-backed repository.
func NewSchoolRepository(db *gorm.DB) SchoolRepository {
	return &schoolRepository{db: db}
}

func (r *schoolRepository) Create(ctx context.Context, school *models.School) error {
	return r.db.WithContext(ctx).Create(school).Error
}

func (r *schoolRepository) List(ctx context.Context) ([]models.School, error) {
	var schools []models.School
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&schools).Error; err != nil {
		return nil, err
	}

	return schools, nil
}

func (r *schoolRepository) GetByID(ctx context.Context, id uint) (models.School, error) {
	var school models.School
	if err := r.db.WithContext(ctx).First(&school, id).Error; err != nil {
		return models.School{}, err
	}

	return school, nil
}

func (r *schoolRepository) Update(ctx context.Context, school *models.School) error {
	return r.db.WithContext(ctx).Save(school).Error
}

// Deactivate flips is_active without removing the row or its dependents.
func (r *schoolRepository) Deactivate(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&models.School{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *schoolRepository) NameExists(ctx context.Context, name string, excludeID uint) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.School{}).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name)))
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *schoolRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.School{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *schoolRepository) MemberCounts(ctx context.Context, schoolID uint) (SchoolMemberCounts, error) {
	var counts SchoolMemberCounts

	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("school_id = ? AND role = ? AND is_active = ?", schoolID, models.RoleStudent, true).
		Count(&counts.Students).Error; err != nil {
		return SchoolMemberCounts{}, err
	}

	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("school_id = ? AND role = ? AND is_active = ?", schoolID, models.RoleTeacher, true).
		Count(&counts.Teachers).Error; err != nil {
		return SchoolMemberCounts{}, err
	}

	return counts, nil
}
