package dto

import (
	"time"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/models"
)

// UserCreateRequest describes the payload for registering a platform account.
// Role and school may be forced server-side depending on the calling endpoint.
type UserCreateRequest struct {
	Email           string `json:"email" validate:"required,email"`
	FirstName       string `json:"first_name" validate:"required,max=150"`
	LastName        string `json:"last_name" validate:"required,max=150"`
	Role            string `json:"role" validate:"omitempty,oneof=SUPER_ADMIN SCHOOL_ADMIN TEACHER STUDENT"`
	SchoolID        *uint  `json:"school_id"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

// UserUpdateRequest describes the payload for updating account fields.
type UserUpdateRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
	IsActive  *bool   `json:"is_active"`
}

// UserResponse is the serialized account representation.
type UserResponse struct {
	ID         uint       `json:"id"`
	Email      string     `json:"email"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	FullName   string     `json:"full_name"`
	Role       string     `json:"role"`
	SchoolID   *uint      `json:"school_id"`
	SchoolName string     `json:"school_name,omitempty"`
	IsActive   bool       `json:"is_active"`
	DateJoined time.Time  `json:"date_joined"`
	LastLogin  *time.Time `json:"last_login"`
}

// NewUserResponse converts a model into a DTO.
func NewUserResponse(model models.User) UserResponse {
	response := UserResponse{
		ID:         model.ID,
		Email:      model.Email,
		FirstName:  model.FirstName,
		LastName:   model.LastName,
		FullName:   model.FullName(),
		Role:       model.Role,
		SchoolID:   model.SchoolID,
		IsActive:   model.IsActive,
		DateJoined: model.DateJoined,
		LastLogin:  model.LastLogin,
	}
	if model.School != nil {
		response.SchoolName = model.School.Name
	}
	return response
}

// NewUserResponseSlice converts a slice of models into DTOs.
func NewUserResponseSlice(users []models.User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, NewUserResponse(user))
	}

	return responses
}

// BulkStudentEntry is one row of a bulk student import.
type BulkStudentEntry struct {
	Email       string `json:"email" validate:"required,email"`
	FirstName   string `json:"first_name" validate:"required,max=150"`
	LastName    string `json:"last_name" validate:"required,max=150"`
	ClassLevel  string `json:"class_level" validate:"required,oneof=S1 S2 S3 S4 S5 S6"`
	Password    string `json:"password" validate:"omitempty,min=8"`
	StudentID   string `json:"student_id" validate:"omitempty,max=50"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,max=20"`
	ParentEmail string `json:"parent_email" validate:"omitempty,email"`
	ParentPhone string `json:"parent_phone" validate:"omitempty,max=20"`
}

// BulkStudentCreateRequest wraps the import batch.
type BulkStudentCreateRequest struct {
	Students []BulkStudentEntry `json:"students" validate:"required,min=1,dive"`
}

// CreatedStudent summarises one account produced by a bulk import.
type CreatedStudent struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	StudentID string `json:"student_id"`
}

// BulkStudentCreateResponse reports the outcome of a bulk import.
type BulkStudentCreateResponse struct {
	Created  int              `json:"created"`
	Students []CreatedStudent `json:"students"`
}
