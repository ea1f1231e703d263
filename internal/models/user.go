package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Platform roles.
const (
	RoleSuperAdmin  = "SUPER_ADMIN"
	RoleSchoolAdmin = "SCHOOL_ADMIN"
	RoleTeacher     = "TEACHER"
	RoleStudent     = "STUDENT"
)

// Class levels of the secondary curriculum (Senior 1 through Senior 6).
var ClassLevels = []string{"S1", "S2", "S3", "S4", "S5", "S6"}

// ValidRole reports whether the given role is one of the platform roles.
func ValidRole(role string) bool {
	switch role {
	case RoleSuperAdmin, RoleSchoolAdmin, RoleTeacher, RoleStudent:
		return true
	default:
		return false
	}
}

// ValidClassLevel reports whether level is within S1..S6.
func ValidClassLevel(level string) bool {
	for _, l := range ClassLevels {
		if l == level {
			return true
		}
	}
	return false
}

// User is the email-keyed account record. SchoolID is nil only for the
// platform super admin; every other role must reference a school.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	FirstName    string     `gorm:"size:150;not null" json:"first_name"`
	LastName     string     `gorm:"size:150;not null" json:"last_name"`
	Role         string     `gorm:"size:20;index;not null" json:"role"`
	SchoolID     *uint      `gorm:"index" json:"school_id"`
	School       *School    `json:"-"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	DateJoined   time.Time  `gorm:"autoCreateTime" json:"date_joined"`
	LastLogin    *time.Time `json:"last_login"`

	TeacherProfile *TeacherProfile `json:"-"`
	StudentProfile *StudentProfile `json:"-"`
}

func (User) TableName() string { return "users" }

// FullName joins first and last names, trimming when either is empty.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u User) IsSuperAdmin() bool  { return u.Role == RoleSuperAdmin }
func (u User) IsSchoolAdmin() bool { return u.Role == RoleSchoolAdmin }
func (u User) IsTeacher() bool     { return u.Role == RoleTeacher }
func (u User) IsStudent() bool     { return u.Role == RoleStudent }

// TeacherProfile extends a TEACHER user with professional details.
type TeacherProfile struct {
	UserID                uint      `gorm:"primaryKey" json:"user_id"`
	User                  User      `json:"-"`
	SubjectSpecialization string    `gorm:"size:200;not null;default:Biology" json:"subject_specialization"`
	YearsOfExperience     *int      `json:"years_of_experience"`
	Bio                   string    `gorm:"type:text" json:"bio"`
	PhoneNumber           string    `gorm:"size:20" json:"phone_number"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func (TeacherProfile) TableName() string { return "teacher_profiles" }

// StudentProfile extends a STUDENT user with academic and guardian details.
// WeakTopics is maintained by the grading pipeline and feeds recommendations.
type StudentProfile struct {
	UserID      uint                      `gorm:"primaryKey" json:"user_id"`
	User        User                      `json:"-"`
	ClassLevel  string                    `gorm:"size:2;not null" json:"class_level"`
	StudentID   string                    `gorm:"size:50;uniqueIndex;not null" json:"student_id"`
	PhoneNumber string                    `gorm:"size:20" json:"phone_number"`
	ParentEmail string                    `gorm:"size:255" json:"parent_email"`
	ParentPhone string                    `gorm:"size:20" json:"parent_phone"`
	WeakTopics  datatypes.JSONSlice[uint] `json:"weak_topics"`
	CreatedAt   time.Time                 `json:"created_at"`
	UpdatedAt   time.Time                 `json:"updated_at"`
}

func (StudentProfile) TableName() string { return "student_profiles" }
