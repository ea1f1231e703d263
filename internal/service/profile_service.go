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

// ErrProfileNotFound means no profile exists for the user, usually because
// the account does not hold the matching role.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileService serves the role-specific profile records attached to
// teacher and student accounts.
type ProfileService struct {
	users    repository.UserRepository
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewProfileService constructs the profile service.
func NewProfileService(users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) *ProfileService {
	return &ProfileService{
		users:    users,
		validate: validate,
		logger:   logger.With().Str("component", "profile_service").Logger(),
	}
}

// GetTeacherProfile returns the professional profile of a teacher account.
func (s *ProfileService) GetTeacherProfile(ctx context.Context, userID uint) (dto.TeacherProfileResponse, error) {
	profile, user, err := s.teacherProfile(ctx, userID)
	if err != nil {
		return dto.TeacherProfileResponse{}, err
	}

	profile.User = user
	return dto.NewTeacherProfileResponse(profile), nil
}

// UpdateTeacherProfile applies a partial update to a teacher profile.
func (s *ProfileService) UpdateTeacherProfile(ctx context.Context, userID uint, req dto.TeacherProfileUpdateRequest) (dto.TeacherProfileResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.TeacherProfileResponse{}, err
	}

	profile, user, err := s.teacherProfile(ctx, userID)
	if err != nil {
		return dto.TeacherProfileResponse{}, err
	}

	if req.SubjectSpecialization != nil {
		profile.SubjectSpecialization = *req.SubjectSpecialization
	}
	if req.YearsOfExperience != nil {
		profile.YearsOfExperience = req.YearsOfExperience
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.PhoneNumber != nil {
		profile.PhoneNumber = *req.PhoneNumber
	}

	if err := s.users.UpdateTeacherProfile(ctx, &profile); err != nil {
		return dto.TeacherProfileResponse{}, fmt.Errorf("update teacher profile: %w", err)
	}

	profile.User = user
	return dto.NewTeacherProfileResponse(profile), nil
}

// GetStudentProfile returns the academic profile of a student account.
func (s *ProfileService) GetStudentProfile(ctx context.Context, userID uint) (dto.StudentProfileResponse, error) {
	profile, user, err := s.studentProfile(ctx, userID)
	if err != nil {
		return dto.StudentProfileResponse{}, err
	}

	profile.User = user
	return dto.NewStudentProfileResponse(profile), nil
}

// UpdateStudentProfile applies a partial update to a student profile. The
// admission number and weak-topic list are system-managed and untouched.
func (s *ProfileService) UpdateStudentProfile(ctx context.Context, userID uint, req dto.StudentProfileUpdateRequest) (dto.StudentProfileResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.StudentProfileResponse{}, err
	}

	profile, user, err := s.studentProfile(ctx, userID)
	if err != nil {
		return dto.StudentProfileResponse{}, err
	}

	if req.ClassLevel != nil {
		profile.ClassLevel = *req.ClassLevel
	}
	if req.PhoneNumber != nil {
		profile.PhoneNumber = *req.PhoneNumber
	}
	if req.ParentEmail != nil {
		profile.ParentEmail = *req.ParentEmail
	}
	if req.ParentPhone != nil {
		profile.ParentPhone = *req.ParentPhone
	}

	if err := s.users.UpdateStudentProfile(ctx, &profile); err != nil {
		return dto.StudentProfileResponse{}, fmt.Errorf("update student profile: %w", err)
	}

	profile.User = user
	return dto.NewStudentProfileResponse(profile), nil
}

func (s *ProfileService) teacherProfile(ctx context.Context, userID uint) (models.TeacherProfile, models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.TeacherProfile{}, models.User{}, ErrUserNotFound
		}
		return models.TeacherProfile{}, models.User{}, fmt.Errorf("get user: %w", err)
	}

	profile, err := s.users.GetTeacherProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.TeacherProfile{}, models.User{}, ErrProfileNotFound
		}
		return models.TeacherProfile{}, models.User{}, fmt.Errorf("get teacher profile: %w", err)
	}

	return profile, user, nil
}

func (s *ProfileService) studentProfile(ctx context.Context, userID uint) (models.StudentProfile, models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.StudentProfile{}, models.User{}, ErrUserNotFound
		}
		return models.StudentProfile{}, models.User{}, fmt.Errorf("get user: %w", err)
	}

	profile, err := s.users.GetStudentProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.StudentProfile{}, models.User{}, ErrProfileNotFound
		}
		return models.StudentProfile{}, models.User{}, fmt.Errorf("get student profile: %w", err)
	}

	return profile, user, nil
}
