package dto

import (
	"time"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/models"
)

// ChoicePayload is one answer option inside a question payload.
type ChoicePayload struct {
	ChoiceText string `json:"choice_text" validate:"required"`
	IsCorrect  bool   `json:"is_correct"`
	Order      uint   `json:"order"`
}

// QuestionPayload is one question inside a quiz create/update payload.
type QuestionPayload struct {
	QuestionText string          `json:"question_text" validate:"required"`
	Explanation  string          `json:"explanation"`
	Order        uint            `json:"order"`
	Points       uint            `json:"points" validate:"omitempty,min=1"`
	Choices      []ChoicePayload `json:"choices" validate:"required,min=2,dive"`
}

// QuizCreateRequest describes the payload for creating a quiz with questions.
type QuizCreateRequest struct {
	Title            string            `json:"title" validate:"required,max=255"`
	Description      string            `json:"description"`
	PassThreshold    *uint             `json:"pass_threshold" validate:"omitempty,max=100"`
	TimeLimitMinutes *uint             `json:"time_limit_minutes"`
	Questions        []QuestionPayload `json:"questions" validate:"required,min=1,dive"`
}

// QuizUpdateRequest describes the editable quiz fields. When Questions is
// present the question set is replaced wholesale.
type QuizUpdateRequest struct {
	Title            *string            `json:"title" validate:"omitempty,max=255"`
	Description      *string            `json:"description"`
	PassThreshold    *uint              `json:"pass_threshold" validate:"omitempty,max=100"`
	TimeLimitMinutes *uint              `json:"time_limit_minutes"`
	IsActive         *bool              `json:"is_active"`
	Questions        *[]QuestionPayload `json:"questions" validate:"omitempty,min=1,dive"`
}

// ChoiceResponse is a serialized answer choice. IsCorrect is omitted from
// student-facing payloads.
type ChoiceResponse struct {
	ID         uint   `json:"id"`
	ChoiceText string `json:"choice_text"`
	IsCorrect  *bool  `json:"is_correct,omitempty"`
	Order      uint   `json:"order"`
}

// QuestionResponse is a serialized question with its choices.
type QuestionResponse struct {
	ID           uint             `json:"id"`
	QuestionText string           `json:"question_text"`
	Explanation  string           `json:"explanation,omitempty"`
	Order        uint             `json:"order"`
	Points       uint             `json:"points"`
	Choices      []ChoiceResponse `json:"choices"`
}

// QuizResponse is the serialized quiz.
type QuizResponse struct {
	ID               uint               `json:"id"`
	TopicID          uint               `json:"topic_id"`
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	PassThreshold    uint               `json:"pass_threshold"`
	TimeLimitMinutes *uint              `json:"time_limit_minutes"`
	IsActive         bool               `json:"is_active"`
	CreatedByID      uint               `json:"created_by_id"`
	TotalQuestions   int                `json:"total_questions"`
	Questions        []QuestionResponse `json:"questions,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// NewQuizResponse converts a model into a DTO. When forStudent is true the
// correct-answer flags and explanations are stripped from the payload.
func NewQuizResponse(model models.Quiz, forStudent bool) QuizResponse {
	questions := make([]QuestionResponse, 0, len(model.Questions))
	for _, question := range model.Questions {
		choices := make([]ChoiceResponse, 0, len(question.Choices))
		for _, choice := range question.Choices {
			response := ChoiceResponse{
				ID:         choice.ID,
				ChoiceText: choice.ChoiceText,
				Order:      choice.Order,
			}
			if !forStudent {
				isCorrect := choice.IsCorrect
				response.IsCorrect = &isCorrect
			}
			choices = append(choices, response)
		}

		questionResponse := QuestionResponse{
			ID:           question.ID,
			QuestionText: question.QuestionText,
			Order:        question.Order,
			Points:       question.Points,
			Choices:      choices,
		}
		if !forStudent {
			questionResponse.Explanation = question.Explanation
		}
		questions = append(questions, questionResponse)
	}

	return QuizResponse{
		ID:               model.ID,
		TopicID:          model.TopicID,
		Title:            model.Title,
		Description:      model.Description,
		PassThreshold:    model.PassThreshold,
		TimeLimitMinutes: model.TimeLimitMinutes,
		IsActive:         model.IsActive,
		CreatedByID:      model.CreatedByID,
		TotalQuestions:   len(model.Questions),
		Questions:        questions,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}
}

// NewQuizSummarySlice converts models into list DTOs without question bodies.
func NewQuizSummarySlice(quizzes []models.Quiz) []QuizResponse {
	responses := make([]QuizResponse, 0, len(quizzes))
	for _, quiz := range quizzes {
		response := NewQuizResponse(quiz, true)
		response.Questions = nil
		responses = append(responses, response)
	}

	return responses
}

// AttemptSubmitRequest carries a student's answers, keyed by question id.
type AttemptSubmitRequest struct {
	Answers          map[uint]uint `json:"answers" validate:"required,min=1"`
	TimeTakenSeconds *uint         `json:"time_taken_seconds"`
}

// AttemptResponse is the serialized quiz attempt.
type AttemptResponse struct {
	ID               uint           `json:"id"`
	QuizID           uint           `json:"quiz_id"`
	StudentID        uint           `json:"student_id"`
	Score            float64        `json:"score"`
	Percentage       float64        `json:"percentage"`
	Passed           bool           `json:"passed"`
	StartedAt        time.Time      `json:"started_at"`
	CompletedAt      *time.Time     `json:"completed_at"`
	TimeTakenSeconds *uint          `json:"time_taken_seconds"`
	Answers          map[string]any `json:"answers"`
}

// NewAttemptResponse converts a model into a DTO.
func NewAttemptResponse(model models.QuizAttempt) AttemptResponse {
	return AttemptResponse{
		ID:               model.ID,
		QuizID:           model.QuizID,
		StudentID:        model.StudentID,
		Score:            model.Score,
		Percentage:       model.Percentage,
		Passed:           model.Passed,
		StartedAt:        model.StartedAt,
		CompletedAt:      model.CompletedAt,
		TimeTakenSeconds: model.TimeTakenSeconds,
		Answers:          model.Answers,
	}
}

// NewAttemptResponseSlice converts a slice of models into DTOs.
func NewAttemptResponseSlice(attempts []models.QuizAttempt) []AttemptResponse {
	responses := make([]AttemptResponse, 0, len(attempts))
	for _, attempt := range attempts {
		responses = append(responses, NewAttemptResponse(attempt))
	}

	return responses
}
