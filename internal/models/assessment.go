package models

import (
	"time"

	"gorm.io/datatypes"
)

// Quiz belongs to a topic and owns an ordered set of questions.
type Quiz struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	TopicID          uint       `gorm:"index;not null" json:"topic_id"`
	Topic            *Topic     `json:"-"`
	Title            string     `gorm:"size:255;not null" json:"title"`
	Description      string     `gorm:"type:text" json:"description"`
	PassThreshold    uint       `gorm:"not null;default:50" json:"pass_threshold"`
	TimeLimitMinutes *uint      `json:"time_limit_minutes"`
	IsActive         bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedByID      uint       `gorm:"index;not null" json:"created_by_id"`
	CreatedBy        *User      `gorm:"foreignKey:CreatedByID" json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	Questions        []Question `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

func (Quiz) TableName() string { return "quizzes" }

// TotalPoints sums the points of all questions in the quiz.
func (q Quiz) TotalPoints() uint {
	var total uint
	for _, question := range q.Questions {
		total += question.Points
	}
	return total
}

// Question is a multiple-choice question within a quiz.
type Question struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	QuizID       uint           `gorm:"index;not null" json:"quiz_id"`
	QuestionText string         `gorm:"type:text;not null" json:"question_text"`
	Explanation  string         `gorm:"type:text" json:"explanation"`
	Order        uint           `gorm:"not null;default:0" json:"order"`
	Points       uint           `gorm:"not null;default:1" json:"points"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Choices      []AnswerChoice `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"choices,omitempty"`
}

func (Question) TableName() string { return "questions" }

// CorrectChoiceIDs returns the ids of choices flagged correct.
func (q Question) CorrectChoiceIDs() []uint {
	var ids []uint
	for _, choice := range q.Choices {
		if choice.IsCorrect {
			ids = append(ids, choice.ID)
		}
	}
	return ids
}

// AnswerChoice is a selectable option for a question.
type AnswerChoice struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	QuestionID uint      `gorm:"index;not null" json:"question_id"`
	ChoiceText string    `gorm:"type:text;not null" json:"choice_text"`
	IsCorrect  bool      `gorm:"not null;default:false" json:"is_correct"`
	Order      uint      `gorm:"not null;default:0" json:"order"`
	CreatedAt  time.Time `json:"created_at"`
}

func (AnswerChoice) TableName() string { return "answer_choices" }

// QuizAttempt records a student submission. Answers maps question id to the
// chosen choice id; score and percentage are written together by grading.
type QuizAttempt struct {
	ID               uint              `gorm:"primaryKey" json:"id"`
	QuizID           uint              `gorm:"index;not null" json:"quiz_id"`
	Quiz             *Quiz             `json:"-"`
	StudentID        uint              `gorm:"index;not null" json:"student_id"`
	Student          *User             `gorm:"foreignKey:StudentID" json:"-"`
	Score            float64           `gorm:"not null;default:0" json:"score"`
	Percentage       float64           `gorm:"not null;default:0" json:"percentage"`
	Passed           bool              `gorm:"not null;default:false" json:"passed"`
	StartedAt        time.Time         `gorm:"autoCreateTime" json:"started_at"`
	CompletedAt      *time.Time        `json:"completed_at"`
	TimeTakenSeconds *uint             `json:"time_taken_seconds"`
	Answers          datatypes.JSONMap `json:"answers"`
}

func (QuizAttempt) TableName() string { return "quiz_attempts" }
