package models

import (
	"time"

	"gorm.io/datatypes"
)

// Dialogue turn roles stored on chat messages.
const (
	ChatRoleUser      = "USER"
	ChatRoleAssistant = "ASSISTANT"
	ChatRoleSystem    = "SYSTEM"
)

// ChatSession groups the dialogue turns of one tutoring conversation.
type ChatSession struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	StudentID uint          `gorm:"index;not null" json:"student_id"`
	Student   *User         `gorm:"foreignKey:StudentID" json:"-"`
	Title     string        `gorm:"size:255" json:"title"`
	IsActive  bool          `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Messages  []ChatMessage `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ChatSession) TableName() string { return "chat_sessions" }

// ChatMessage is one turn of a tutoring dialogue. SourcesUsed carries the
// content note ids the assistant grounded its reply on.
type ChatMessage struct {
	ID          uint                      `gorm:"primaryKey" json:"id"`
	SessionID   uint                      `gorm:"index;not null" json:"session_id"`
	Role        string                    `gorm:"size:10;not null" json:"role"`
	Content     string                    `gorm:"type:text;not null" json:"content"`
	SourcesUsed datatypes.JSONSlice[uint] `json:"sources_used"`
	CreatedAt   time.Time                 `json:"created_at"`
}

func (ChatMessage) TableName() string { return "chat_messages" }

// AdaptiveLearningLog tracks per-topic performance and the recommendation
// lifecycle: created at grading, surfaced to the student, marked reviewed.
type AdaptiveLearningLog struct {
	ID                  uint         `gorm:"primaryKey" json:"id"`
	StudentID           uint         `gorm:"index;not null" json:"student_id"`
	Student             *User        `gorm:"foreignKey:StudentID" json:"-"`
	TopicID             uint         `gorm:"index;not null" json:"topic_id"`
	Topic               *Topic       `json:"-"`
	QuizAttemptID       *uint        `json:"quiz_attempt_id"`
	QuizAttempt         *QuizAttempt `json:"-"`
	ScorePercentage     float64      `gorm:"not null" json:"score_percentage"`
	IsWeakArea          bool         `gorm:"not null;default:false" json:"is_weak_area"`
	Recommended         bool         `gorm:"not null;default:false" json:"recommended"`
	RecommendationShown bool         `gorm:"not null;default:false" json:"recommendation_shown"`
	TopicReviewed       bool         `gorm:"not null;default:false" json:"topic_reviewed"`
	CreatedAt           time.Time    `json:"created_at"`
}

func (AdaptiveLearningLog) TableName() string { return "adaptive_learning_logs" }
