package dto

import (
	"time"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/models"
)

// TeacherProfileResponse is the serialized teacher profile.
type TeacherProfileResponse struct {
	User                  UserResponse `json:"user"`
	SubjectSpecialization string       `json:"subject_specialization"`
	YearsOfExperience     *int         `json:"years_of_experience"`
	Bio                   string       `json:"bio"`
	PhoneNumber           string       `json:"phone_number"`
	CreatedAt             time.Time    `json:"created_at"`
	UpdatedAt             time.Time    `json:"updated_at"`
}

// NewTeacherProfileResponse converts a model into a DTO.
func NewTeacherProfileResponse(profile models.TeacherProfile) TeacherProfileResponse {
	return TeacherProfileResponse{
		User:                  NewUserResponse(profile.User),
		SubjectSpecialization: profile.SubjectSpecialization,
		YearsOfExperience:     profile.YearsOfExperience,
		Bio:                   profile.Bio,
		PhoneNumber:           profile.PhoneNumber,
		CreatedAt:             profile.CreatedAt,
		UpdatedAt:             profile.UpdatedAt,
	}
}

// TeacherProfileUpdateRequest describes the editable teacher profile fields.
type TeacherProfileUpdateRequest struct {
	SubjectSpecialization *string `json:"subject_specialization" validate:"omitempty,max=200"`
	YearsOfExperience     *int    `json:"years_of_experience" validate:"omitempty,min=0,max=60"`
	Bio                   *string `json:"bio"`
	PhoneNumber           *string `json:"phone_number" validate:"omitempty,max=20"`
}

// StudentProfileResponse is the serialized student profile.
type StudentProfileResponse struct {
	User        UserResponse `json:"user"`
	ClassLevel  string       `json:"class_level"`
	StudentID   string       `json:"student_id"`
	PhoneNumber string       `json:"phone_number"`
	ParentEmail string       `json:"parent_email"`
	ParentPhone string       `json:"parent_phone"`
	WeakTopics  []uint       `json:"weak_topics"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewStudentProfileResponse converts a model into a DTO.
func NewStudentProfileResponse(profile models.StudentProfile) StudentProfileResponse {
	weak := make([]uint, 0, len(profile.WeakTopics))
	weak = append(weak, profile.WeakTopics...)

	return StudentProfileResponse{
		User:        NewUserResponse(profile.User),
		ClassLevel:  profile.ClassLevel,
		StudentID:   profile.StudentID,
		PhoneNumber: profile.PhoneNumber,
		ParentEmail: profile.ParentEmail,
		ParentPhone: profile.ParentPhone,
		WeakTopics:  weak,
		CreatedAt:   profile.CreatedAt,
		UpdatedAt:   profile.UpdatedAt,
	}
}

// StudentProfileUpdateRequest describes the editable student profile fields.
// StudentID and WeakTopics are system-managed and not editable here.
type StudentProfileUpdateRequest struct {
	ClassLevel  *string `json:"class_level" validate:"omitempty,oneof=S1 S2 S3 S4 S5 S6"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=20"`
	ParentEmail *string `json:"parent_email" validate:"omitempty,email"`
	ParentPhone *string `json:"parent_phone" validate:"omitempty,max=20"`
}
