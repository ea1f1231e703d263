package dto

import (
	"time"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/models"
)

// ChatSessionResponse is the serialized tutoring session.
type ChatSessionResponse struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewChatSessionResponse converts a model into a DTO.
func NewChatSessionResponse(model models.ChatSession) ChatSessionResponse {
	return ChatSessionResponse{
		ID:        model.ID,
		Title:     model.Title,
		IsActive:  model.IsActive,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// NewChatSessionResponseSlice converts a slice of models into DTOs.
func NewChatSessionResponseSlice(sessions []models.ChatSession) []ChatSessionResponse {
	responses := make([]ChatSessionResponse, 0, len(sessions))
	for _, session := range sessions {
		responses = append(responses, NewChatSessionResponse(session))
	}

	return responses
}

// ChatSessionCreateRequest opens a new tutoring session.
type ChatSessionCreateRequest struct {
	Title string `json:"title" validate:"omitempty,max=255"`
}

// ChatMessageSendRequest carries one student turn of a tutoring dialogue.
type ChatMessageSendRequest struct {
	Content string `json:"content" validate:"required,min=1,max=4000"`
}

// ChatMessageResponse is the serialized dialogue turn.
type ChatMessageResponse struct {
	ID          uint      `json:"id"`
	SessionID   uint      `json:"session_id"`
	Role        string    `json:"role"`
	Content     string    `json:"content"`
	SourcesUsed []uint    `json:"sources_used"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewChatMessageResponse converts a model into a DTO.
func NewChatMessageResponse(model models.ChatMessage) ChatMessageResponse {
	sources := make([]uint, 0, len(model.SourcesUsed))
	sources = append(sources, model.SourcesUsed...)

	return ChatMessageResponse{
		ID:          model.ID,
		SessionID:   model.SessionID,
		Role:        model.Role,
		Content:     model.Content,
		SourcesUsed: sources,
		CreatedAt:   model.CreatedAt,
	}
}

// NewChatMessageResponseSlice converts a slice of models into DTOs.
func NewChatMessageResponseSlice(messages []models.ChatMessage) []ChatMessageResponse {
	responses := make([]ChatMessageResponse, 0, len(messages))
	for _, message := range messages {
		responses = append(responses, NewChatMessageResponse(message))
	}

	return responses
}

// TutorExchangeResponse pairs the stored student turn with the assistant reply.
type TutorExchangeResponse struct {
	UserMessage      ChatMessageResponse `json:"user_message"`
	AssistantMessage ChatMessageResponse `json:"assistant_message"`
}

// RecommendationResponse surfaces one adaptive-learning recommendation.
type RecommendationResponse struct {
	ID              uint      `json:"id"`
	TopicID         uint      `json:"topic_id"`
	TopicTitle      string    `json:"topic_title,omitempty"`
	ScorePercentage float64   `json:"score_percentage"`
	IsWeakArea      bool      `json:"is_weak_area"`
	TopicReviewed   bool      `json:"topic_reviewed"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewRecommendationResponse converts a model into a DTO.
func NewRecommendationResponse(model models.AdaptiveLearningLog) RecommendationResponse {
	response := RecommendationResponse{
		ID:              model.ID,
		TopicID:         model.TopicID,
		ScorePercentage: model.ScorePercentage,
		IsWeakArea:      model.IsWeakArea,
		TopicReviewed:   model.TopicReviewed,
		CreatedAt:       model.CreatedAt,
	}
	if model.Topic != nil {
		response.TopicTitle = model.Topic.Title
	}
	return response
}

// NewRecommendationResponseSlice converts a slice of models into DTOs.
func NewRecommendationResponseSlice(logs []models.AdaptiveLearningLog) []RecommendationResponse {
	responses := make([]RecommendationResponse, 0, len(logs))
	for _, log := range logs {
		responses = append(responses, NewRecommendationResponse(log))
	}

	return responses
}
