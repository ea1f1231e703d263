package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/dto"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/models"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/repository"
)

var (
	// ErrUserNotFound means no account exists for the given id.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken means another account already uses the email.
	ErrEmailTaken = errors.New("an account with this email already exists")
	// ErrStudentIDTaken means the student id is already assigned in the school.
	ErrStudentIDTaken = errors.New("student id already assigned")
	// ErrSchoolRequired means the role demands a school but none was given.
	ErrSchoolRequired = errors.New("a school is required for this role")
	// ErrSuperAdminSchool means a super admin was paired with a school.
	ErrSuperAdminSchool = errors.New("super admins must not belong to a school")
	// ErrForbiddenSchool means the record belongs to a different school than
	// the caller administers.
	ErrForbiddenSchool = errors.New("record belongs to another school")
)

// UserService manages accounts across both the platform scope (super admin)
// and the tenant scope (school admin).
type UserService struct {
	users           repository.UserRepository
	schools         repository.SchoolRepository
	validate        *validator.Validate
	logger          zerolog.Logger
	defaultPassword string
}

// NewUserService constructs the user service. defaultPassword is assigned to
// bulk-imported students that arrive without one.
func NewUserService(users repository.UserRepository, schools repository.SchoolRepository, validate *validator.Validate, defaultPassword string, logger zerolog.Logger) *UserService {
	return &UserService{
		users:           users,
		schools:         schools,
		validate:        validate,
		logger:          logger.With().Str("component", "user_service").Logger(),
		defaultPassword: defaultPassword,
	}
}

// Create registers an account with any role. Role/school pairing is enforced:
// super admins carry no school, everyone else must reference an existing one.
func (s *UserService) Create(ctx context.Context, req dto.UserCreateRequest) (dto.UserResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	role := strings.ToUpper(req.Role)
	if role == "" {
		role = models.RoleStudent
	}

	if role == models.RoleSuperAdmin {
		if req.SchoolID != nil {
			return dto.UserResponse{}, ErrSuperAdminSchool
		}
	} else {
		if req.SchoolID == nil {
			return dto.UserResponse{}, ErrSchoolRequired
		}
		if _, err := s.schools.GetByID(ctx, *req.SchoolID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.UserResponse{}, ErrSchoolNotFound
			}
			return dto.UserResponse{}, fmt.Errorf("lookup school: %w", err)
		}
	}

	return s.createAccount(ctx, req, role, req.SchoolID, "")
}

// CreateTeacher registers a TEACHER account inside the given school,
// regardless of any role carried in the payload.
func (s *UserService) CreateTeacher(ctx context.Context, schoolID uint, req dto.UserCreateRequest) (dto.UserResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	return s.createAccount(ctx, req, models.RoleTeacher, &schoolID, "")
}

// CreateStudent registers a single STUDENT account inside the given school.
func (s *UserService) CreateStudent(ctx context.Context, schoolID uint, entry dto.BulkStudentEntry) (dto.UserResponse, error) {
	if err := s.validate.Struct(entry); err != nil {
		return dto.UserResponse{}, err
	}

	password := entry.Password
	if password == "" {
		password = s.defaultPassword
	}

	req := dto.UserCreateRequest{
		Email:     entry.Email,
		FirstName: entry.FirstName,
		LastName:  entry.LastName,
		Password:  password,
	}

	studentID := entry.StudentID
	if studentID != "" {
		taken, err := s.users.StudentIDExists(ctx, schoolID, studentID)
		if err != nil {
			return dto.UserResponse{}, fmt.Errorf("check student id: %w", err)
		}
		if taken {
			return dto.UserResponse{}, ErrStudentIDTaken
		}
	} else {
		generated, err := s.generateStudentID(ctx, schoolID, nil)
		if err != nil {
			return dto.UserResponse{}, err
		}
		studentID = generated
	}

	response, err := s.createStudentAccount(ctx, req, schoolID, entry, studentID)
	if err != nil {
		return dto.UserResponse{}, err
	}

	return response, nil
}

func (s *UserService) createAccount(ctx context.Context, req dto.UserCreateRequest, role string, schoolID *uint, classLevel string) (dto.UserResponse, error) {
	taken, err := s.users.EmailExists(ctx, strings.ToLower(req.Email), 0)
	if err != nil {
		return dto.UserResponse{}, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return dto.UserResponse{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.UserResponse{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:        strings.ToLower(req.Email),
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
		SchoolID:     schoolID,
		IsActive:     true,
	}

	var teacherProfile *models.TeacherProfile
	var studentProfile *models.StudentProfile
	switch role {
	case models.RoleTeacher:
		teacherProfile = &models.TeacherProfile{}
	case models.RoleStudent:
		level := classLevel
		if level == "" {
			level = models.ClassLevels[0]
		}
		generated, err := s.generateStudentID(ctx, derefSchool(schoolID), nil)
		if err != nil {
			return dto.UserResponse{}, err
		}
		studentProfile = &models.StudentProfile{ClassLevel: level, StudentID: generated}
	}

	if err := s.users.CreateWithProfile(ctx, &user, teacherProfile, studentProfile); err != nil {
		return dto.UserResponse{}, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", role).Msg("account created")

	return dto.NewUserResponse(user), nil
}

func (s *UserService) createStudentAccount(ctx context.Context, req dto.UserCreateRequest, schoolID uint, entry dto.BulkStudentEntry, studentID string) (dto.UserResponse, error) {
	taken, err := s.users.EmailExists(ctx, strings.ToLower(req.Email), 0)
	if err != nil {
		return dto.UserResponse{}, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return dto.UserResponse{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.UserResponse{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:        strings.ToLower(req.Email),
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         models.RoleStudent,
		SchoolID:     &schoolID,
		IsActive:     true,
	}
	profile := models.StudentProfile{
		ClassLevel:  entry.ClassLevel,
		StudentID:   studentID,
		PhoneNumber: entry.PhoneNumber,
		ParentEmail: strings.ToLower(entry.ParentEmail),
		ParentPhone: entry.ParentPhone,
	}

	if err := s.users.CreateWithProfile(ctx, &user, nil, &profile); err != nil {
		return dto.UserResponse{}, fmt.Errorf("create student: %w", err)
	}

	s.logger.Info().Uint("user_id", user.ID).Str("student_id", studentID).Msg("student account created")

	return dto.NewUserResponse(user), nil
}

// BulkCreateStudents imports a batch of students atomically: the whole batch
// is validated first and any failing row aborts the import with no accounts
// created.
func (s *UserService) BulkCreateStudents(ctx context.Context, schoolID uint, req dto.BulkStudentCreateRequest) (dto.BulkStudentCreateResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.BulkStudentCreateResponse{}, err
	}

	seenEmails := make(map[string]struct{}, len(req.Students))
	seenStudentIDs := make(map[string]struct{}, len(req.Students))
	users := make([]models.User, 0, len(req.Students))
	profiles := make([]models.StudentProfile, 0, len(req.Students))

	for i, entry := range req.Students {
		email := strings.ToLower(entry.Email)
		if _, dup := seenEmails[email]; dup {
			return dto.BulkStudentCreateResponse{}, fmt.Errorf("student %d (%s): %w", i+1, email, ErrEmailTaken)
		}
		seenEmails[email] = struct{}{}

		taken, err := s.users.EmailExists(ctx, email, 0)
		if err != nil {
			return dto.BulkStudentCreateResponse{}, fmt.Errorf("check email: %w", err)
		}
		if taken {
			return dto.BulkStudentCreateResponse{}, fmt.Errorf("student %d (%s): %w", i+1, email, ErrEmailTaken)
		}

		studentID := entry.StudentID
		if studentID != "" {
			if _, dup := seenStudentIDs[studentID]; dup {
				return dto.BulkStudentCreateResponse{}, fmt.Errorf("student %d (%s): %w", i+1, email, ErrStudentIDTaken)
			}
			exists, err := s.users.StudentIDExists(ctx, schoolID, studentID)
			if err != nil {
				return dto.BulkStudentCreateResponse{}, fmt.Errorf("check student id: %w", err)
			}
			if exists {
				return dto.BulkStudentCreateResponse{}, fmt.Errorf("student %d (%s): %w", i+1, email, ErrStudentIDTaken)
			}
		} else {
			generated, err := s.generateStudentID(ctx, schoolID, seenStudentIDs)
			if err != nil {
				return dto.BulkStudentCreateResponse{}, err
			}
			studentID = generated
		}
		seenStudentIDs[studentID] = struct{}{}

		password := entry.Password
		if password == "" {
			password = s.defaultPassword
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return dto.BulkStudentCreateResponse{}, fmt.Errorf("hash password: %w", err)
		}

		users = append(users, models.User{
			Email:        email,
			PasswordHash: string(hash),
			FirstName:    entry.FirstName,
			LastName:     entry.LastName,
			Role:         models.RoleStudent,
			SchoolID:     &schoolID,
			IsActive:     true,
		})
		profiles = append(profiles, models.StudentProfile{
			ClassLevel:  entry.ClassLevel,
			StudentID:   studentID,
			PhoneNumber: entry.PhoneNumber,
			ParentEmail: strings.ToLower(entry.ParentEmail),
			ParentPhone: entry.ParentPhone,
		})
	}

	if err := s.users.BulkCreateStudents(ctx, users, profiles); err != nil {
		return dto.BulkStudentCreateResponse{}, fmt.Errorf("bulk create students: %w", err)
	}

	created := make([]dto.CreatedStudent, 0, len(users))
	for i, user := range users {
		created = append(created, dto.CreatedStudent{
			ID:        user.ID,
			Email:     user.Email,
			Name:      user.FullName(),
			StudentID: profiles[i].StudentID,
		})
	}

	s.logger.Info().Uint("school_id", schoolID).Int("count", len(created)).Msg("bulk student import completed")

	return dto.BulkStudentCreateResponse{Created: len(created), Students: created}, nil
}

// List returns accounts matching the filter.
func (s *UserService) List(ctx context.Context, filter repository.UserFilter) ([]dto.UserResponse, error) {
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return dto.NewUserResponseSlice(users), nil
}

// Get returns one account by id.
func (s *UserService) Get(ctx context.Context, id uint) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, fmt.Errorf("get user: %w", err)
	}

	return dto.NewUserResponse(user), nil
}

// GetInSchool returns one account, rejecting records outside the school.
func (s *UserService) GetInSchool(ctx context.Context, schoolID, id uint) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, fmt.Errorf("get user: %w", err)
	}
	if user.SchoolID == nil || *user.SchoolID != schoolID {
		return dto.UserResponse{}, ErrForbiddenSchool
	}

	return dto.NewUserResponse(user), nil
}

// Update applies a partial update to an account. When schoolID is non-nil the
// record must belong to that school.
func (s *UserService) Update(ctx context.Context, schoolID *uint, id uint, req dto.UserUpdateRequest) (dto.UserResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, fmt.Errorf("get user: %w", err)
	}
	if schoolID != nil && (user.SchoolID == nil || *user.SchoolID != *schoolID) {
		return dto.UserResponse{}, ErrForbiddenSchool
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.users.Update(ctx, &user); err != nil {
		return dto.UserResponse{}, fmt.Errorf("update user: %w", err)
	}

	return dto.NewUserResponse(user), nil
}

// Deactivate soft-deletes an account. The row and its submissions remain; the
// account can no longer log in. When schoolID is non-nil the account must
// belong to that school.
func (s *UserService) Deactivate(ctx context.Context, schoolID *uint, id uint) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("get user: %w", err)
	}
	if schoolID != nil && (user.SchoolID == nil || *user.SchoolID != *schoolID) {
		return ErrForbiddenSchool
	}

	if err := s.users.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}

	s.logger.Info().Uint("user_id", id).Msg("account deactivated")
	return nil
}

// generateStudentID derives a unique admission number of the form
// STD<school><seq>. reserved carries ids already claimed by the current batch
// but not yet written.
func (s *UserService) generateStudentID(ctx context.Context, schoolID uint, reserved map[string]struct{}) (string, error) {
	seq := uint(time.Now().UnixNano() % 1_000_000)
	for attempts := 0; attempts < 1_000_000; attempts++ {
		candidate := fmt.Sprintf("STD%d-%06d", schoolID, seq%1_000_000)
		if _, held := reserved[candidate]; !held {
			exists, err := s.users.StudentIDExists(ctx, schoolID, candidate)
			if err != nil {
				return "", fmt.Errorf("check student id: %w", err)
			}
			if !exists {
				return candidate, nil
			}
		}
		seq++
	}

	return "", fmt.Errorf("exhausted student id space for school %d", schoolID)
}

func derefSchool(id *uint) uint {
	if id == nil {
		return 0
	}
	return *id
}
