package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/dto"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/models"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/observability"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/repository"
	"github.com/KIIZA-TREVOUR/mybiotutor/pkg/ai"
)

var (
	// ErrSessionNotFound means no chat session exists for the given id.
	ErrSessionNotFound = errors.New("chat session not found")
	// ErrSessionClosed means the session has been archived.
	ErrSessionClosed = errors.New("chat session is closed")
	// ErrRecommendationNotFound means no recommendation exists for the id.
	ErrRecommendationNotFound = errors.New("recommendation not found")
	// ErrEmptyMessage means nothing survived sanitization.
	ErrEmptyMessage = errors.New("message is empty")
)

const (
	// Conversation turns replayed to the model per request.
	historyWindow = 10
	// Characters of extracted text handed to the model per source note.
	sourceExcerptLimit = 1500
)

// TutorService runs the AI tutoring dialogue. Replies are grounded in
// approved notes retrieved by keyword overlap with the question; when no AI
// client is configured the service degrades to returning the sources alone.
type TutorService struct {
	tutorRepo  repository.TutorRepository
	notes      repository.NoteRepository
	users      repository.UserRepository
	model      ai.Tutor
	sanitizer  *bluemonday.Policy
	validate   *validator.Validate
	logger     zerolog.Logger
	maxSources int
}

// NewTutorService constructs the tutor service. model may be nil.
func NewTutorService(tutorRepo repository.TutorRepository, notes repository.NoteRepository, users repository.UserRepository, model ai.Tutor, validate *validator.Validate, maxSources int, logger zerolog.Logger) *TutorService {
	if maxSources <= 0 {
		maxSources = 3
	}

	return &TutorService{
		tutorRepo:  tutorRepo,
		notes:      notes,
		users:      users,
		model:      model,
		sanitizer:  bluemonday.StrictPolicy(),
		validate:   validate,
		logger:     logger.With().Str("component", "tutor_service").Logger(),
		maxSources: maxSources,
	}
}

// StartSession opens a new tutoring conversation for the student.
func (s *TutorService) StartSession(ctx context.Context, studentID uint, title string) (dto.ChatSessionResponse, error) {
	session := models.ChatSession{
		StudentID: studentID,
		Title:     strings.TrimSpace(s.sanitizer.Sanitize(title)),
		IsActive:  true,
	}
	if session.Title == "" {
		session.Title = "New conversation"
	}

	if err := s.tutorRepo.CreateSession(ctx, &session); err != nil {
		return dto.ChatSessionResponse{}, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info().Uint("session_id", session.ID).Uint("student_id", studentID).Msg("chat session started")

	return dto.NewChatSessionResponse(session), nil
}

// ListSessions returns the student's conversations, most recent first.
func (s *TutorService) ListSessions(ctx context.Context, studentID uint) ([]dto.ChatSessionResponse, error) {
	sessions, err := s.tutorRepo.ListSessionsByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	return dto.NewChatSessionResponseSlice(sessions), nil
}

// CloseSession archives a conversation.
func (s *TutorService) CloseSession(ctx context.Context, studentID, sessionID uint) error {
	session, err := s.ownedSession(ctx, studentID, sessionID)
	if err != nil {
		return err
	}

	session.IsActive = false
	if err := s.tutorRepo.UpdateSession(ctx, &session); err != nil {
		return fmt.Errorf("close session: %w", err)
	}

	return nil
}

// History returns the dialogue turns of one session.
func (s *TutorService) History(ctx context.Context, studentID, sessionID uint) ([]dto.ChatMessageResponse, error) {
	if _, err := s.ownedSession(ctx, studentID, sessionID); err != nil {
		return nil, err
	}

	messages, err := s.tutorRepo.ListMessagesBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	return dto.NewChatMessageResponseSlice(messages), nil
}

// SendMessage stores the student turn, retrieves grounding notes, asks the
// model for a reply, and stores the assistant turn with its source note ids.
func (s *TutorService) SendMessage(ctx context.Context, studentID, sessionID uint, req dto.ChatMessageSendRequest) (dto.TutorExchangeResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.TutorExchangeResponse{}, err
	}

	session, err := s.ownedSession(ctx, studentID, sessionID)
	if err != nil {
		return dto.TutorExchangeResponse{}, err
	}
	if !session.IsActive {
		return dto.TutorExchangeResponse{}, ErrSessionClosed
	}

	question := strings.TrimSpace(s.sanitizer.Sanitize(req.Content))
	if question == "" {
		return dto.TutorExchangeResponse{}, ErrEmptyMessage
	}

	userMessage := models.ChatMessage{
		SessionID: session.ID,
		Role:      models.ChatRoleUser,
		Content:   question,
	}
	if err := s.tutorRepo.CreateMessage(ctx, &userMessage); err != nil {
		return dto.TutorExchangeResponse{}, fmt.Errorf("store user message: %w", err)
	}
	observability.TutorMessages().WithLabelValues(models.ChatRoleUser).Inc()

	sources := s.retrieveSources(ctx, question)
	reply, sourceIDs := s.answer(ctx, studentID, sessionID, question, sources)

	assistantMessage := models.ChatMessage{
		SessionID:   session.ID,
		Role:        models.ChatRoleAssistant,
		Content:     reply,
		SourcesUsed: datatypes.NewJSONSlice(sourceIDs),
	}
	if err := s.tutorRepo.CreateMessage(ctx, &assistantMessage); err != nil {
		return dto.TutorExchangeResponse{}, fmt.Errorf("store assistant message: %w", err)
	}
	observability.TutorMessages().WithLabelValues(models.ChatRoleAssistant).Inc()

	// First exchange titles the session after the question.
	if session.Title == "New conversation" {
		session.Title = truncate(question, 80)
		if err := s.tutorRepo.UpdateSession(ctx, &session); err != nil {
			s.logger.Warn().Err(err).Uint("session_id", session.ID).Msg("failed to retitle session")
		}
	}

	return dto.TutorExchangeResponse{
		UserMessage:      dto.NewChatMessageResponse(userMessage),
		AssistantMessage: dto.NewChatMessageResponse(assistantMessage),
	}, nil
}

// Recommendations surfaces unreviewed weak-area topics and marks them shown.
func (s *TutorService) Recommendations(ctx context.Context, studentID uint) ([]dto.RecommendationResponse, error) {
	logs, err := s.tutorRepo.ListRecommendations(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list recommendations: %w", err)
	}

	ids := make([]uint, 0, len(logs))
	for _, log := range logs {
		if !log.RecommendationShown {
			ids = append(ids, log.ID)
		}
	}
	if err := s.tutorRepo.MarkRecommendationsShown(ctx, ids); err != nil {
		s.logger.Warn().Err(err).Msg("failed to mark recommendations shown")
	}

	return dto.NewRecommendationResponseSlice(logs), nil
}

// MarkTopicReviewed closes out a recommendation after the student revisits
// the topic.
func (s *TutorService) MarkTopicReviewed(ctx context.Context, studentID, logID uint) (dto.RecommendationResponse, error) {
	log, err := s.tutorRepo.GetLogByID(ctx, logID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RecommendationResponse{}, ErrRecommendationNotFound
		}
		return dto.RecommendationResponse{}, fmt.Errorf("get recommendation: %w", err)
	}
	if log.StudentID != studentID {
		return dto.RecommendationResponse{}, ErrRecommendationNotFound
	}

	log.TopicReviewed = true
	if err := s.tutorRepo.UpdateLog(ctx, &log); err != nil {
		return dto.RecommendationResponse{}, fmt.Errorf("update recommendation: %w", err)
	}

	return dto.NewRecommendationResponse(log), nil
}

func (s *TutorService) ownedSession(ctx context.Context, studentID, sessionID uint) (models.ChatSession, error) {
	session, err := s.tutorRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ChatSession{}, ErrSessionNotFound
		}
		return models.ChatSession{}, fmt.Errorf("get session: %w", err)
	}
	if session.StudentID != studentID {
		return models.ChatSession{}, ErrSessionNotFound
	}

	return session, nil
}

// retrieveSources ranks approved notes by keyword overlap with the question
// and keeps the top maxSources. Retrieval failures degrade to no sources.
func (s *TutorService) retrieveSources(ctx context.Context, question string) []models.ContentNote {
	terms := keywords(question)
	if len(terms) == 0 {
		return nil
	}

	candidates, err := s.notes.SearchApproved(ctx, terms, s.maxSources*10)
	if err != nil {
		s.logger.Warn().Err(err).Msg("source retrieval failed")
		return nil
	}

	type scored struct {
		note  models.ContentNote
		score int
	}
	ranked := make([]scored, 0, len(candidates))
	for _, note := range candidates {
		haystack := strings.ToLower(note.Title + " " + note.ExtractedText)
		score := 0
		for _, term := range terms {
			score += strings.Count(haystack, term)
		}
		if score > 0 {
			ranked = append(ranked, scored{note: note, score: score})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if len(ranked) > s.maxSources {
		ranked = ranked[:s.maxSources]
	}
	notes := make([]models.ContentNote, 0, len(ranked))
	for _, entry := range ranked {
		notes = append(notes, entry.note)
	}

	return notes
}

// answer asks the model for a grounded reply. Without a model, or when the
// model fails, the student still gets the matched notes to read.
func (s *TutorService) answer(ctx context.Context, studentID, sessionID uint, question string, sources []models.ContentNote) (string, []uint) {
	sourceIDs := make([]uint, 0, len(sources))
	for _, note := range sources {
		sourceIDs = append(sourceIDs, note.ID)
	}

	if s.model == nil {
		return s.fallbackReply(sources), sourceIDs
	}

	input := ai.TutorInput{Question: question}
	if profile, err := s.users.GetStudentProfile(ctx, studentID); err == nil {
		input.ClassLevel = profile.ClassLevel
	}
	for _, note := range sources {
		topic := ""
		if note.Topic != nil {
			topic = note.Topic.Title
		}
		input.Sources = append(input.Sources, ai.SourceNote{
			NoteID:  note.ID,
			Title:   note.Title,
			Topic:   topic,
			Excerpt: truncate(note.ExtractedText, sourceExcerptLimit),
		})
	}
	if history, err := s.tutorRepo.ListMessagesBySession(ctx, sessionID); err == nil {
		start := len(history) - historyWindow
		if start < 0 {
			start = 0
		}
		for _, message := range history[start:] {
			if message.Content == question && message.Role == models.ChatRoleUser {
				continue
			}
			input.History = append(input.History, ai.DialogueTurn{Role: message.Role, Content: message.Content})
		}
	}

	reply, err := s.model.Reply(ctx, input)
	if err != nil {
		s.logger.Error().Err(err).Uint("session_id", sessionID).Msg("tutor model failed")
		return s.fallbackReply(sources), sourceIDs
	}

	return reply.Content, sourceIDs
}

func (s *TutorService) fallbackReply(sources []models.ContentNote) string {
	if len(sources) == 0 {
		return "I couldn't find approved study notes matching your question yet. Try rephrasing it, or ask your teacher to upload notes for this topic."
	}

	builder := strings.Builder{}
	builder.WriteString("The tutor is unavailable right now, but these approved notes should help:")
	for _, note := range sources {
		builder.WriteString("\n- ")
		builder.WriteString(note.Title)
		if note.Topic != nil {
			builder.WriteString(" (")
			builder.WriteString(note.Topic.Title)
			builder.WriteString(")")
		}
	}

	return builder.String()
}

// keywords lowercases the question and keeps informative terms.
func keywords(question string) []string {
	stop := map[string]struct{}{
		"the": {}, "and": {}, "for": {}, "with": {}, "what": {}, "when": {},
		"where": {}, "which": {}, "how": {}, "why": {}, "does": {}, "are": {},
		"is": {}, "of": {}, "in": {}, "to": {}, "a": {}, "an": {}, "do": {},
		"can": {}, "about": {}, "explain": {}, "tell": {}, "me": {},
	}

	fields := strings.FieldsFunc(strings.ToLower(question), func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'))
	})

	terms := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if len(field) < 3 {
			continue
		}
		if _, skip := stop[field]; skip {
			continue
		}
		if _, dup := seen[field]; dup {
			continue
		}
		seen[field] = struct{}{}
		terms = append(terms, field)
	}

	return terms
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	// Cut on a rune boundary so multibyte text survives intact.
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
