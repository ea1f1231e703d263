package dto

import (
	"time"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/models"
)

// CurriculumClassCreateRequest describes the payload for adding a class level.
type CurriculumClassCreateRequest struct {
	Code        string `json:"code" validate:"required,oneof=S1 S2 S3 S4 S5 S6"`
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
	Order       uint   `json:"order" validate:"required"`
}

// CurriculumClassUpdateRequest describes the editable class fields.
type CurriculumClassUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description"`
	Order       *uint   `json:"order"`
}

// CurriculumClassResponse is the serialized class level.
type CurriculumClassResponse struct {
	ID          uint      `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Order       uint      `json:"order"`
	TotalTopics int       `json:"total_topics"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewCurriculumClassResponse converts a model into a DTO.
func NewCurriculumClassResponse(model models.CurriculumClass) CurriculumClassResponse {
	return CurriculumClassResponse{
		ID:          model.ID,
		Code:        model.Code,
		Name:        model.Name,
		Description: model.Description,
		Order:       model.Order,
		TotalTopics: len(model.Topics),
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// NewCurriculumClassResponseSlice converts a slice of models into DTOs.
func NewCurriculumClassResponseSlice(classes []models.CurriculumClass) []CurriculumClassResponse {
	responses := make([]CurriculumClassResponse, 0, len(classes))
	for _, class := range classes {
		responses = append(responses, NewCurriculumClassResponse(class))
	}

	return responses
}

// TopicCreateRequest describes the payload for adding a topic to a class.
type TopicCreateRequest struct {
	Title              string   `json:"title" validate:"required,max=255"`
	Description        string   `json:"description" validate:"required"`
	Order              uint     `json:"order"`
	LearningObjectives string   `json:"learning_objectives"`
	KeyConcepts        []string `json:"key_concepts" validate:"omitempty,dive,min=1"`
}

// TopicUpdateRequest describes the editable topic fields.
type TopicUpdateRequest struct {
	Title              *string   `json:"title" validate:"omitempty,max=255"`
	Description        *string   `json:"description"`
	Order              *uint     `json:"order"`
	LearningObjectives *string   `json:"learning_objectives"`
	KeyConcepts        *[]string `json:"key_concepts"`
}

// TopicResponse is the serialized topic.
type TopicResponse struct {
	ID                 uint      `json:"id"`
	CurriculumClassID  uint      `json:"curriculum_class_id"`
	ClassCode          string    `json:"class_code,omitempty"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Order              uint      `json:"order"`
	LearningObjectives string    `json:"learning_objectives"`
	KeyConcepts        []string  `json:"key_concepts"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewTopicResponse converts a model into a DTO.
func NewTopicResponse(model models.Topic) TopicResponse {
	concepts := make([]string, 0, len(model.KeyConcepts))
	concepts = append(concepts, model.KeyConcepts...)

	response := TopicResponse{
		ID:                 model.ID,
		CurriculumClassID:  model.CurriculumClassID,
		Title:              model.Title,
		Description:        model.Description,
		Order:              model.Order,
		LearningObjectives: model.LearningObjectives,
		KeyConcepts:        concepts,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}
	if model.CurriculumClass != nil {
		response.ClassCode = model.CurriculumClass.Code
	}
	return response
}

// NewTopicResponseSlice converts a slice of models into DTOs.
func NewTopicResponseSlice(topics []models.Topic) []TopicResponse {
	responses := make([]TopicResponse, 0, len(topics))
	for _, topic := range topics {
		responses = append(responses, NewTopicResponse(topic))
	}

	return responses
}

// NoteUploadRequest carries the metadata of a note upload; the file itself
// arrives as a multipart part.
type NoteUploadRequest struct {
	Title       string `form:"title" json:"title" validate:"required,min=3,max=255"`
	Description string `form:"description" json:"description"`
}

// NoteUpdateRequest describes the editable note metadata.
type NoteUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=3,max=255"`
	Description *string `json:"description"`
}

// NoteReviewRequest carries an approval decision.
type NoteReviewRequest struct {
	Status          string `json:"status" validate:"required,oneof=APPROVED REJECTED REVISION"`
	RejectionReason string `json:"rejection_reason" validate:"required_unless=Status APPROVED"`
}

// NoteResponse is the serialized content note.
type NoteResponse struct {
	ID              uint       `json:"id"`
	TopicID         uint       `json:"topic_id"`
	UploadedByID    uint       `json:"uploaded_by_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	FileURL         string     `json:"file_url"`
	FileType        string     `json:"file_type"`
	ApprovalStatus  string     `json:"approval_status"`
	ApprovedByID    *uint      `json:"approved_by_id"`
	ApprovalDate    *time.Time `json:"approval_date"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewNoteResponse converts a model into a DTO.
func NewNoteResponse(model models.ContentNote) NoteResponse {
	return NoteResponse{
		ID:              model.ID,
		TopicID:         model.TopicID,
		UploadedByID:    model.UploadedByID,
		Title:           model.Title,
		Description:     model.Description,
		FileURL:         model.FileURL,
		FileType:        model.FileType,
		ApprovalStatus:  model.ApprovalStatus,
		ApprovedByID:    model.ApprovedByID,
		ApprovalDate:    model.ApprovalDate,
		RejectionReason: model.RejectionReason,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

// NewNoteResponseSlice converts a slice of models into DTOs.
func NewNoteResponseSlice(notes []models.ContentNote) []NoteResponse {
	responses := make([]NoteResponse, 0, len(notes))
	for _, note := range notes {
		responses = append(responses, NewNoteResponse(note))
	}

	return responses
}

// VideoCreateRequest describes the payload for attaching a video to a topic.
type VideoCreateRequest struct {
	Title           string `json:"title" validate:"required,max=255"`
	Description     string `json:"description"`
	VideoURL        string `json:"video_url" validate:"required,url"`
	ThumbnailURL    string `json:"thumbnail_url" validate:"omitempty,url"`
	DurationMinutes *uint  `json:"duration_minutes"`
	Order           uint   `json:"order"`
}

// VideoUpdateRequest describes the editable video fields.
type VideoUpdateRequest struct {
	Title           *string `json:"title" validate:"omitempty,max=255"`
	Description     *string `json:"description"`
	VideoURL        *string `json:"video_url" validate:"omitempty,url"`
	ThumbnailURL    *string `json:"thumbnail_url" validate:"omitempty,url"`
	DurationMinutes *uint   `json:"duration_minutes"`
	Order           *uint   `json:"order"`
}

// VideoResponse is the serialized video resource.
type VideoResponse struct {
	ID              uint      `json:"id"`
	TopicID         uint      `json:"topic_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	VideoURL        string    `json:"video_url"`
	ThumbnailURL    string    `json:"thumbnail_url"`
	DurationMinutes *uint     `json:"duration_minutes"`
	UploadedByID    uint      `json:"uploaded_by_id"`
	Order           uint      `json:"order"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewVideoResponse converts a model into a DTO.
func NewVideoResponse(model models.VideoResource) VideoResponse {
	return VideoResponse{
		ID:              model.ID,
		TopicID:         model.TopicID,
		Title:           model.Title,
		Description:     model.Description,
		VideoURL:        model.VideoURL,
		ThumbnailURL:    model.ThumbnailURL,
		DurationMinutes: model.DurationMinutes,
		UploadedByID:    model.UploadedByID,
		Order:           model.Order,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

// NewVideoResponseSlice converts a slice of models into DTOs.
func NewVideoResponseSlice(videos []models.VideoResource) []VideoResponse {
	responses := make([]VideoResponse, 0, len(videos))
	for _, video := range videos {
		responses = append(responses, NewVideoResponse(video))
	}

	return responses
}
