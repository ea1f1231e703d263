package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/models"
)

// UserFilter narrows listing queries. Zero values are ignored.
type UserFilter struct {
	Role       string
	SchoolID   *uint
	ClassLevel string
	Search     string
	ActiveOnly bool
}

// UserRepository defines persistence operations for accounts and their
// role profiles.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	CreateWithProfile(ctx context.Context, user *models.User, teacher *models.TeacherProfile, student *models.StudentProfile) error
	BulkCreateStudents(ctx context.Context, users []models.User, profiles []models.StudentProfile) error
	GetByID(ctx context.Context, id uint) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	List(ctx context.Context, filter UserFilter) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id uint, hash string) error
	UpdateLastLogin(ctx context.Context, id uint, at time.Time) error
	Deactivate(ctx context.Context, id uint) error
	EmailExists(ctx context.Context, email string, excludeID uint) (bool, error)
	StudentIDExists(ctx context.Context, schoolID uint, studentID string) (bool, error)

	GetTeacherProfile(ctx context.Context, userID uint) (models.TeacherProfile, error)
	UpdateTeacherProfile(ctx context.Context, profile *models.TeacherProfile) error
	GetStudentProfile(ctx context.Context, userID uint) (models.StudentProfile, error)
	UpdateStudentProfile(ctx context.Context, profile *models.StudentProfile) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository instantiates a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// CreateWithProfile persists an account together with its role profile in
// one transaction so a failed profile insert never leaves an orphan user.
func (r *userRepository) CreateWithProfile(ctx context.Context, user *models.User, teacher *models.TeacherProfile, student *models.StudentProfile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if teacher != nil {
			teacher.UserID = user.ID
			if err := tx.Create(teacher).Error; err != nil {
				return err
			}
		}
		if student != nil {
			student.UserID = user.ID
			if err := tx.Create(student).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// BulkCreateStudents inserts every account and profile atomically. The
// slices are parallel: profiles[i] belongs to users[i]. Any failure rolls
// the whole batch back.
func (r *userRepository) BulkCreateStudents(ctx context.Context, users []models.User, profiles []models.StudentProfile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range users {
			if err := tx.Create(&users[i]).Error; err != nil {
				return err
			}
			profiles[i].UserID = users[i].ID
			if err := tx.Create(&profiles[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("School").
		Preload("TeacherProfile").
		Preload("StudentProfile").
		First(&user, id).Error
	if err != nil {
		return models.User{}, err
	}

	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("School").
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return models.User{}, err
	}

	return user, nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]models.User, error) {
	query := r.db.WithContext(ctx).Model(&models.User{}).Preload("School")

	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.SchoolID != nil {
		query = query.Where("school_id = ?", *filter.SchoolID)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("email LIKE ? OR first_name LIKE ? OR last_name LIKE ?", like, like, like)
	}
	if filter.ClassLevel != "" {
		query = query.
			Joins("JOIN student_profiles ON student_profiles.user_id = users.id").
			Where("student_profiles.class_level = ?", filter.ClassLevel)
	}

	var users []models.User
	if err := query.Order("users.id ASC").Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password_hash", hash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("last_login", at).Error
}

func (r *userRepository) Deactivate(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) EmailExists(ctx context.Context, email string, excludeID uint) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) StudentIDExists(ctx context.Context, schoolID uint, studentID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.StudentProfile{}).
		Joins("JOIN users ON users.id = student_profiles.user_id").
		Where("users.school_id = ? AND student_profiles.student_id = ?", schoolID, studentID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) GetTeacherProfile(ctx context.Context, userID uint) (models.TeacherProfile, error) {
	var profile models.TeacherProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return models.TeacherProfile{}, err
	}

	return profile, nil
}

func (r *userRepository) UpdateTeacherProfile(ctx context.Context, profile *models.TeacherProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

func (r *userRepository) GetStudentProfile(ctx context.Context, userID uint) (models.StudentProfile, error) {
	var profile models.StudentProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return models.StudentProfile{}, err
	}

	return profile, nil
}

func (r *userRepository) UpdateStudentProfile(ctx context.Context, profile *models.StudentProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}
