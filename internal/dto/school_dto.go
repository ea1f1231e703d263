package dto

import (
	"time"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/models"
)

// SchoolCreateRequest describes the payload for registering a new tenant.
type SchoolCreateRequest struct {
	Name                  string  `json:"name" validate:"required,min=3,max=255"`
	Slug                  string  `json:"slug" validate:"omitempty,max=255"`
	Email                 string  `json:"email" validate:"required,email"`
	PhoneNumber           string  `json:"phone_number" validate:"required,max=20"`
	Address               string  `json:"address" validate:"required"`
	District              string  `json:"district" validate:"required,max=100"`
	Region                string  `json:"region" validate:"required,max=100"`
	RegistrationNumber    string  `json:"registration_number" validate:"omitempty,max=100"`
	SubscriptionType      string  `json:"subscription_type" validate:"omitempty,oneof=FREE BASIC PREMIUM"`
	SubscriptionStartDate *string `json:"subscription_start_date" validate:"omitempty,datetime=2006-01-02"`
	SubscriptionEndDate   *string `json:"subscription_end_date" validate:"omitempty,datetime=2006-01-02"`
}

// SchoolUpdateRequest describes the payload for updating a school.
type SchoolUpdateRequest struct {
	Name                  *string `json:"name" validate:"omitempty,min=3,max=255"`
	Email                 *string `json:"email" validate:"omitempty,email"`
	PhoneNumber           *string `json:"phone_number" validate:"omitempty,max=20"`
	Address               *string `json:"address"`
	District              *string `json:"district" validate:"omitempty,max=100"`
	Region                *string `json:"region" validate:"omitempty,max=100"`
	RegistrationNumber    *string `json:"registration_number" validate:"omitempty,max=100"`
	IsActive              *bool   `json:"is_active"`
	SubscriptionType      *string `json:"subscription_type" validate:"omitempty,oneof=FREE BASIC PREMIUM"`
	SubscriptionStartDate *string `json:"subscription_start_date" validate:"omitempty,datetime=2006-01-02"`
	SubscriptionEndDate   *string `json:"subscription_end_date" validate:"omitempty,datetime=2006-01-02"`
}

// SchoolResponse is the serialized representation returned to API clients.
type SchoolResponse struct {
	ID                    uint       `json:"id"`
	Name                  string     `json:"name"`
	Slug                  string     `json:"slug"`
	Email                 string     `json:"email"`
	PhoneNumber           string     `json:"phone_number"`
	Address               string     `json:"address"`
	District              string     `json:"district"`
	Region                string     `json:"region"`
	RegistrationNumber    string     `json:"registration_number"`
	IsActive              bool       `json:"is_active"`
	SubscriptionType      string     `json:"subscription_type"`
	SubscriptionStartDate *time.Time `json:"subscription_start_date"`
	SubscriptionEndDate   *time.Time `json:"subscription_end_date"`
	TotalStudents         int64      `json:"total_students"`
	TotalTeachers         int64      `json:"total_teachers"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// NewSchoolResponse converts a model into a DTO with member counts attached.
func NewSchoolResponse(model models.School, totalStudents, totalTeachers int64) SchoolResponse {
	return SchoolResponse{
		ID:                    model.ID,
		Name:                  model.Name,
		Slug:                  model.Slug,
		Email:                 model.Email,
		PhoneNumber:           model.PhoneNumber,
		Address:               model.Address,
		District:              model.District,
		Region:                model.Region,
		RegistrationNumber:    model.RegistrationNumber,
		IsActive:              model.IsActive,
		SubscriptionType:      model.SubscriptionType,
		SubscriptionStartDate: model.SubscriptionStartDate,
		SubscriptionEndDate:   model.SubscriptionEndDate,
		TotalStudents:         totalStudents,
		TotalTeachers:         totalTeachers,
		CreatedAt:             model.CreatedAt,
		UpdatedAt:             model.UpdatedAt,
	}
}
