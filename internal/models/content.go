package models

import (
	"time"

	"gorm.io/datatypes"
)

// Approval workflow states for uploaded notes.
const (
	ApprovalPending  = "PENDING"
	ApprovalApproved = "APPROVED"
	ApprovalRejected = "REJECTED"
	ApprovalRevision = "REVISION"
)

// ValidApprovalStatus reports whether status is a known workflow state.
func ValidApprovalStatus(status string) bool {
	switch status {
	case ApprovalPending, ApprovalApproved, ApprovalRejected, ApprovalRevision:
		return true
	default:
		return false
	}
}

// CurriculumClass is one level of the shared curriculum (S1..S6). The catalog
// is global: all schools see the same classes, topics and approved material.
type CurriculumClass struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Code        string    `gorm:"size:2;uniqueIndex;not null" json:"code"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Order       uint      `gorm:"uniqueIndex;not null" json:"order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Topics      []Topic   `gorm:"foreignKey:CurriculumClassID" json:"-"`
}

func (CurriculumClass) TableName() string { return "curriculum_classes" }

// Topic is a unit of study within a class level, e.g. "The Cell".
// Title is unique per class; the same title may recur in another class.
type Topic struct {
	ID                 uint                        `gorm:"primaryKey" json:"id"`
	CurriculumClassID  uint                        `gorm:"not null;uniqueIndex:idx_topics_class_title" json:"curriculum_class_id"`
	CurriculumClass    *CurriculumClass            `json:"-"`
	Title              string                      `gorm:"size:255;not null;uniqueIndex:idx_topics_class_title" json:"title"`
	Description        string                      `gorm:"type:text;not null" json:"description"`
	Order              uint                        `gorm:"not null" json:"order"`
	LearningObjectives string                      `gorm:"type:text" json:"learning_objectives"`
	KeyConcepts        datatypes.JSONSlice[string] `json:"key_concepts"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`
	Notes              []ContentNote               `gorm:"foreignKey:TopicID" json:"-"`
	Videos             []VideoResource             `gorm:"foreignKey:TopicID" json:"-"`
}

func (Topic) TableName() string { return "topics" }

// ContentNote is a teacher-uploaded document attached to a topic. Approved
// notes form the knowledge base consulted by the tutor.
type ContentNote struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	TopicID         uint       `gorm:"index;not null" json:"topic_id"`
	Topic           *Topic     `json:"-"`
	UploadedByID    uint       `gorm:"index;not null" json:"uploaded_by_id"`
	UploadedBy      *User      `gorm:"foreignKey:UploadedByID" json:"-"`
	Title           string     `gorm:"size:255;not null" json:"title"`
	Description     string     `gorm:"type:text" json:"description"`
	FileURL         string     `gorm:"size:512;not null" json:"file_url"`
	FilePublicID    string     `gorm:"size:255" json:"-"`
	FileType        string     `gorm:"size:10" json:"file_type"`
	ExtractedText   string     `gorm:"type:text" json:"-"`
	IsProcessed     bool       `gorm:"not null;default:false" json:"is_processed"`
	ApprovalStatus  string     `gorm:"size:20;index;not null;default:PENDING" json:"approval_status"`
	ApprovedByID    *uint      `json:"approved_by_id"`
	ApprovedBy      *User      `gorm:"foreignKey:ApprovedByID" json:"-"`
	ApprovalDate    *time.Time `json:"approval_date"`
	RejectionReason string     `gorm:"type:text" json:"rejection_reason"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (ContentNote) TableName() string { return "content_notes" }

// VideoResource is an embedded video link attached to a topic.
type VideoResource struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	TopicID         uint      `gorm:"index;not null" json:"topic_id"`
	Topic           *Topic    `json:"-"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	Description     string    `gorm:"type:text" json:"description"`
	VideoURL        string    `gorm:"size:512;not null" json:"video_url"`
	ThumbnailURL    string    `gorm:"size:512" json:"thumbnail_url"`
	DurationMinutes *uint     `json:"duration_minutes"`
	UploadedByID    uint      `gorm:"index;not null" json:"uploaded_by_id"`
	UploadedBy      *User     `gorm:"foreignKey:UploadedByID" json:"-"`
	Order           uint      `gorm:"not null;default:0" json:"order"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (VideoResource) TableName() string { return "video_resources" }
