package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/dto"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/models"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/repository"
)

var (
	// ErrSchoolNotFound means no school exists for the given id.
	ErrSchoolNotFound = errors.New("school not found")
	// ErrSchoolNameTaken means another school already uses the name.
	ErrSchoolNameTaken = errors.New("a school with this name already exists")
)

// SchoolService manages tenant registration and lifecycle.
type SchoolService struct {
	schools  repository.SchoolRepository
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewSchoolService constructs the school service.
func NewSchoolService(schools repository.SchoolRepository, validate *validator.Validate, logger zerolog.Logger) *SchoolService {
	return &SchoolService{
		schools:  schools,
		validate: validate,
		logger:   logger.With().Str("component", "school_service").Logger(),
	}
}

// Create registers a new tenant. Name uniqueness is case-insensitive and the
// slug is derived from the name when not supplied.
func (s *SchoolService) Create(ctx context.Context, req dto.SchoolCreateRequest) (dto.SchoolResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.SchoolResponse{}, err
	}

	taken, err := s.schools.NameExists(ctx, req.Name, 0)
	if err != nil {
		return dto.SchoolResponse{}, fmt.Errorf("check school name: %w", err)
	}
	if taken {
		return dto.SchoolResponse{}, ErrSchoolNameTaken
	}

	slug := req.Slug
	if slug == "" {
		slug = Slugify(req.Name)
	}
	slug, err = s.uniqueSlug(ctx, slug)
	if err != nil {
		return dto.SchoolResponse{}, err
	}

	school := models.School{
		Name:               strings.TrimSpace(req.Name),
		Slug:               slug,
		Email:              req.Email,
		PhoneNumber:        req.PhoneNumber,
		Address:            req.Address,
		District:           req.District,
		Region:             req.Region,
		RegistrationNumber: req.RegistrationNumber,
		IsActive:           true,
		SubscriptionType:   models.SubscriptionFree,
	}
	if req.SubscriptionType != "" {
		school.SubscriptionType = req.SubscriptionType
	}
	if req.SubscriptionStartDate != nil {
		if parsed, err := time.Parse("2006-01-02", *req.SubscriptionStartDate); err == nil {
			school.SubscriptionStartDate = &parsed
		}
	}
	if req.SubscriptionEndDate != nil {
		if parsed, err := time.Parse("2006-01-02", *req.SubscriptionEndDate); err == nil {
			school.SubscriptionEndDate = &parsed
		}
	}

	if err := s.schools.Create(ctx, &school); err != nil {
		return dto.SchoolResponse{}, fmt.Errorf("create school: %w", err)
	}

	s.logger.Info().Uint("school_id", school.ID).Str("slug", school.Slug).Msg("school registered")

	return dto.NewSchoolResponse(school, 0, 0), nil
}

// List returns every tenant with member counts.
func (s *SchoolService) List(ctx context.Context) ([]dto.SchoolResponse, error) {
	schools, err := s.schools.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list schools: %w", err)
	}

	responses := make([]dto.SchoolResponse, 0, len(schools))
	for _, school := range schools {
		counts, err := s.schools.MemberCounts(ctx, school.ID)
		if err != nil {
			return nil, fmt.Errorf("count members: %w", err)
		}
		responses = append(responses, dto.NewSchoolResponse(school, counts.Students, counts.Teachers))
	}

	return responses, nil
}

// Get returns one school by id.
func (s *SchoolService) Get(ctx context.Context, id uint) (dto.SchoolResponse, error) {
	school, err := s.schools.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SchoolResponse{}, ErrSchoolNotFound
		}
		return dto.SchoolResponse{}, fmt.Errorf("get school: %w", err)
	}

	counts, err := s.schools.MemberCounts(ctx, school.ID)
	if err != nil {
		return dto.SchoolResponse{}, fmt.Errorf("count members: %w", err)
	}

	return dto.NewSchoolResponse(school, counts.Students, counts.Teachers), nil
}

// Update applies a partial update to a school.
func (s *SchoolService) Update(ctx context.Context, id uint, req dto.SchoolUpdateRequest) (dto.SchoolResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.SchoolResponse{}, err
	}

	school, err := s.schools.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SchoolResponse{}, ErrSchoolNotFound
		}
		return dto.SchoolResponse{}, fmt.Errorf("get school: %w", err)
	}

	if req.Name != nil && !strings.EqualFold(*req.Name, school.Name) {
		taken, err := s.schools.NameExists(ctx, *req.Name, school.ID)
		if err != nil {
			return dto.SchoolResponse{}, fmt.Errorf("check school name: %w", err)
		}
		if taken {
			return dto.SchoolResponse{}, ErrSchoolNameTaken
		}
		school.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		school.Email = *req.Email
	}
	if req.PhoneNumber != nil {
		school.PhoneNumber = *req.PhoneNumber
	}
	if req.Address != nil {
		school.Address = *req.Address
	}
	if req.District != nil {
		school.District = *req.District
	}
	if req.Region != nil {
		school.Region = *req.Region
	}
	if req.RegistrationNumber != nil {
		school.RegistrationNumber = *req.RegistrationNumber
	}
	if req.IsActive != nil {
		school.IsActive = *req.IsActive
	}
	if req.SubscriptionType != nil {
		school.SubscriptionType = *req.SubscriptionType
	}
	if req.SubscriptionStartDate != nil {
		if parsed, err := time.Parse("2006-01-02", *req.SubscriptionStartDate); err == nil {
			school.SubscriptionStartDate = &parsed
		}
	}
	if req.SubscriptionEndDate != nil {
		if parsed, err := time.Parse("2006-01-02", *req.SubscriptionEndDate); err == nil {
			school.SubscriptionEndDate = &parsed
		}
	}

	if err := s.schools.Update(ctx, &school); err != nil {
		return dto.SchoolResponse{}, fmt.Errorf("update school: %w", err)
	}

	counts, err := s.schools.MemberCounts(ctx, school.ID)
	if err != nil {
		return dto.SchoolResponse{}, fmt.Errorf("count members: %w", err)
	}

	return dto.NewSchoolResponse(school, counts.Students, counts.Teachers), nil
}

// Deactivate soft-deletes the school. Rows and member accounts remain; members
// of a disabled school can no longer log in.
func (s *SchoolService) Deactivate(ctx context.Context, id uint) error {
	if err := s.schools.Deactivate(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSchoolNotFound
		}
		return fmt.Errorf("deactivate school: %w", err)
	}

	s.logger.Info().Uint("school_id", id).Msg("school deactivated")
	return nil
}

func (s *SchoolService) uniqueSlug(ctx context.Context, base string) (string, error) {
	slug := base
	for i := 2; ; i++ {
		exists, err := s.schools.SlugExists(ctx, slug)
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// Slugify lowercases the name and collapses every non-alphanumeric run into
// a single hyphen.
func Slugify(name string) string {
	var builder strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			builder.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				builder.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.Trim(builder.String(), "-")
}
