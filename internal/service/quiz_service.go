package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/dto"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/events"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/models"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/observability"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/repository"
)

var (
	// ErrQuizNotFound means no quiz exists for the given id.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuizInactive means the quiz is not open for attempts.
	ErrQuizInactive = errors.New("quiz is not active")
	// ErrNoCorrectChoice means a question has no choice flagged correct.
	ErrNoCorrectChoice = errors.New("every question needs at least one correct choice")
	// ErrInvalidAnswers means an answer references a question or choice
	// outside the quiz.
	ErrInvalidAnswers = errors.New("answers reference unknown questions or choices")
	// ErrAttemptNotFound means no attempt exists for the given id.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrNotQuizOwner means the caller is neither the quiz author nor an admin.
	ErrNotQuizOwner = errors.New("quiz belongs to another author")
)

// Percentages below this flag the topic as a weak area.
const weakAreaThreshold = 50.0

// QuizService manages quizzes, grading, and the adaptive-learning log that
// grading feeds.
type QuizService struct {
	quizzes    repository.QuizRepository
	curriculum repository.CurriculumRepository
	tutor      repository.TutorRepository
	users      repository.UserRepository
	publisher  *events.Publisher
	validate   *validator.Validate
	logger     zerolog.Logger
}

// NewQuizService constructs the quiz service.
func NewQuizService(quizzes repository.QuizRepository, curriculum repository.CurriculumRepository, tutor repository.TutorRepository, users repository.UserRepository, publisher *events.Publisher, validate *validator.Validate, logger zerolog.Logger) *QuizService {
	return &QuizService{
		quizzes:    quizzes,
		curriculum: curriculum,
		tutor:      tutor,
		users:      users,
		publisher:  publisher,
		validate:   validate,
		logger:     logger.With().Str("component", "quiz_service").Logger(),
	}
}

// Create builds a quiz with its question graph under a topic. Every question
// must carry at least one correct choice.
func (s *QuizService) Create(ctx context.Context, topicID, creatorID uint, req dto.QuizCreateRequest) (dto.QuizResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.QuizResponse{}, err
	}

	if _, err := s.curriculum.GetTopicByID(ctx, topicID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizResponse{}, ErrTopicNotFound
		}
		return dto.QuizResponse{}, fmt.Errorf("get topic: %w", err)
	}

	questions, err := buildQuestions(req.Questions)
	if err != nil {
		return dto.QuizResponse{}, err
	}

	quiz := models.Quiz{
		TopicID:          topicID,
		Title:            req.Title,
		Description:      req.Description,
		PassThreshold:    50,
		TimeLimitMinutes: req.TimeLimitMinutes,
		IsActive:         true,
		CreatedByID:      creatorID,
		Questions:        questions,
	}
	if req.PassThreshold != nil {
		quiz.PassThreshold = *req.PassThreshold
	}

	if err := s.quizzes.Create(ctx, &quiz); err != nil {
		return dto.QuizResponse{}, fmt.Errorf("create quiz: %w", err)
	}

	s.logger.Info().Uint("quiz_id", quiz.ID).Uint("topic_id", topicID).Int("questions", len(questions)).Msg("quiz created")

	return dto.NewQuizResponse(quiz, false), nil
}

// List returns quiz summaries for a topic. Students only see active quizzes.
func (s *QuizService) List(ctx context.Context, topicID uint, forStudent bool) ([]dto.QuizResponse, error) {
	quizzes, err := s.quizzes.List(ctx, topicID, forStudent)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}

	return dto.NewQuizSummarySlice(quizzes), nil
}

// Get returns one quiz with its question graph. Student payloads hide the
// correct-answer flags and explanations, and inactive quizzes entirely.
func (s *QuizService) Get(ctx context.Context, id uint, forStudent bool) (dto.QuizResponse, error) {
	quiz, err := s.quizzes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizResponse{}, ErrQuizNotFound
		}
		return dto.QuizResponse{}, fmt.Errorf("get quiz: %w", err)
	}
	if forStudent && !quiz.IsActive {
		return dto.QuizResponse{}, ErrQuizNotFound
	}

	return dto.NewQuizResponse(quiz, forStudent), nil
}

// Update edits quiz fields; when Questions is present the question set is
// replaced wholesale under the same correct-choice rule. Only the author or
// an admin may edit.
func (s *QuizService) Update(ctx context.Context, id, editorID uint, editorRole string, req dto.QuizUpdateRequest) (dto.QuizResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.QuizResponse{}, err
	}

	quiz, err := s.quizzes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizResponse{}, ErrQuizNotFound
		}
		return dto.QuizResponse{}, fmt.Errorf("get quiz: %w", err)
	}
	if !canManageContent(quiz.CreatedByID, editorID, editorRole) {
		return dto.QuizResponse{}, ErrNotQuizOwner
	}

	if req.Title != nil {
		quiz.Title = *req.Title
	}
	if req.Description != nil {
		quiz.Description = *req.Description
	}
	if req.PassThreshold != nil {
		quiz.PassThreshold = *req.PassThreshold
	}
	if req.TimeLimitMinutes != nil {
		quiz.TimeLimitMinutes = req.TimeLimitMinutes
	}
	if req.IsActive != nil {
		quiz.IsActive = *req.IsActive
	}

	if err := s.quizzes.Update(ctx, &quiz); err != nil {
		return dto.QuizResponse{}, fmt.Errorf("update quiz: %w", err)
	}

	if req.Questions != nil {
		questions, err := buildQuestions(*req.Questions)
		if err != nil {
			return dto.QuizResponse{}, err
		}
		if err := s.quizzes.ReplaceQuestions(ctx, quiz.ID, questions); err != nil {
			return dto.QuizResponse{}, fmt.Errorf("replace questions: %w", err)
		}
	}

	updated, err := s.quizzes.GetByID(ctx, quiz.ID)
	if err != nil {
		return dto.QuizResponse{}, fmt.Errorf("reload quiz: %w", err)
	}

	return dto.NewQuizResponse(updated, false), nil
}

// Delete removes a quiz and cascades to questions, choices, and attempts.
// Only the author or an admin may delete.
func (s *QuizService) Delete(ctx context.Context, id, callerID uint, callerRole string) error {
	quiz, err := s.quizzes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuizNotFound
		}
		return fmt.Errorf("get quiz: %w", err)
	}
	if !canManageContent(quiz.CreatedByID, callerID, callerRole) {
		return ErrNotQuizOwner
	}

	if err := s.quizzes.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuizNotFound
		}
		return fmt.Errorf("delete quiz: %w", err)
	}

	s.logger.Info().Uint("quiz_id", id).Msg("quiz deleted")
	return nil
}

// SubmitAttempt grades a submission synchronously. Score, percentage, and
// the pass flag are computed and persisted together, the adaptive log is
// updated, and a quiz.graded event is emitted.
func (s *QuizService) SubmitAttempt(ctx context.Context, quizID, studentID uint, req dto.AttemptSubmitRequest) (dto.AttemptResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.AttemptResponse{}, err
	}

	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AttemptResponse{}, ErrQuizNotFound
		}
		return dto.AttemptResponse{}, fmt.Errorf("get quiz: %w", err)
	}
	if !quiz.IsActive {
		return dto.AttemptResponse{}, ErrQuizInactive
	}

	score, err := gradeAnswers(quiz, req.Answers)
	if err != nil {
		return dto.AttemptResponse{}, err
	}

	total := float64(quiz.TotalPoints())
	percentage := 0.0
	if total > 0 {
		percentage = score / total * 100
	}
	passed := percentage >= float64(quiz.PassThreshold)

	now := time.Now()
	answers := datatypes.JSONMap{}
	for questionID, choiceID := range req.Answers {
		answers[strconv.FormatUint(uint64(questionID), 10)] = choiceID
	}

	attempt := models.QuizAttempt{
		QuizID:           quiz.ID,
		StudentID:        studentID,
		Score:            score,
		Percentage:       percentage,
		Passed:           passed,
		CompletedAt:      &now,
		TimeTakenSeconds: req.TimeTakenSeconds,
		Answers:          answers,
	}
	if err := s.quizzes.CreateAttempt(ctx, &attempt); err != nil {
		return dto.AttemptResponse{}, fmt.Errorf("create attempt: %w", err)
	}

	s.recordAdaptiveOutcome(ctx, quiz, attempt)

	outcome := "failed"
	if passed {
		outcome = "passed"
	}
	observability.QuizAttemptsGraded().WithLabelValues(outcome).Inc()

	s.publisher.Publish(events.SubjectQuizGraded, events.QuizGradedEvent{
		AttemptID:  attempt.ID,
		QuizID:     quiz.ID,
		StudentID:  studentID,
		TopicID:    quiz.TopicID,
		Percentage: percentage,
		Passed:     passed,
		GradedAt:   now,
	})

	s.logger.Info().
		Uint("attempt_id", attempt.ID).
		Uint("quiz_id", quiz.ID).
		Float64("percentage", percentage).
		Bool("passed", passed).
		Msg("attempt graded")

	return dto.NewAttemptResponse(attempt), nil
}

// ListAttemptsByStudent returns a student's own attempt history.
func (s *QuizService) ListAttemptsByStudent(ctx context.Context, studentID uint) ([]dto.AttemptResponse, error) {
	attempts, err := s.quizzes.ListAttemptsByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}

	return dto.NewAttemptResponseSlice(attempts), nil
}

// ListAttemptsByQuiz returns every attempt on one quiz.
func (s *QuizService) ListAttemptsByQuiz(ctx context.Context, quizID uint) ([]dto.AttemptResponse, error) {
	if _, err := s.quizzes.GetByID(ctx, quizID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("get quiz: %w", err)
	}

	attempts, err := s.quizzes.ListAttemptsByQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}

	return dto.NewAttemptResponseSlice(attempts), nil
}

// GetAttempt returns one attempt. When ownerID is non-zero the attempt must
// belong to that student.
func (s *QuizService) GetAttempt(ctx context.Context, id, ownerID uint) (dto.AttemptResponse, error) {
	attempt, err := s.quizzes.GetAttemptByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AttemptResponse{}, ErrAttemptNotFound
		}
		return dto.AttemptResponse{}, fmt.Errorf("get attempt: %w", err)
	}
	if ownerID != 0 && attempt.StudentID != ownerID {
		return dto.AttemptResponse{}, ErrAttemptNotFound
	}

	return dto.NewAttemptResponse(attempt), nil
}

// recordAdaptiveOutcome logs the graded topic performance and maintains the
// student's weak-topic list. Failures here never fail the submission.
func (s *QuizService) recordAdaptiveOutcome(ctx context.Context, quiz models.Quiz, attempt models.QuizAttempt) {
	isWeak := attempt.Percentage < weakAreaThreshold
	attemptID := attempt.ID

	log := models.AdaptiveLearningLog{
		StudentID:       attempt.StudentID,
		TopicID:         quiz.TopicID,
		QuizAttemptID:   &attemptID,
		ScorePercentage: attempt.Percentage,
		IsWeakArea:      isWeak,
		Recommended:     isWeak,
	}
	if err := s.tutor.CreateLog(ctx, &log); err != nil {
		s.logger.Warn().Err(err).Uint("attempt_id", attempt.ID).Msg("failed to record adaptive log")
		return
	}

	profile, err := s.users.GetStudentProfile(ctx, attempt.StudentID)
	if err != nil {
		s.logger.Warn().Err(err).Uint("student_id", attempt.StudentID).Msg("failed to load student profile")
		return
	}

	weak := make([]uint, 0, len(profile.WeakTopics)+1)
	for _, topicID := range profile.WeakTopics {
		if topicID != quiz.TopicID {
			weak = append(weak, topicID)
		}
	}
	if isWeak {
		weak = append(weak, quiz.TopicID)
	}
	profile.WeakTopics = datatypes.NewJSONSlice(weak)

	if err := s.users.UpdateStudentProfile(ctx, &profile); err != nil {
		s.logger.Warn().Err(err).Uint("student_id", attempt.StudentID).Msg("failed to update weak topics")
	}
}

func buildQuestions(payloads []dto.QuestionPayload) ([]models.Question, error) {
	questions := make([]models.Question, 0, len(payloads))
	for _, payload := range payloads {
		hasCorrect := false
		choices := make([]models.AnswerChoice, 0, len(payload.Choices))
		for _, choice := range payload.Choices {
			if choice.IsCorrect {
				hasCorrect = true
			}
			choices = append(choices, models.AnswerChoice{
				ChoiceText: choice.ChoiceText,
				IsCorrect:  choice.IsCorrect,
				Order:      choice.Order,
			})
		}
		if !hasCorrect {
			return nil, ErrNoCorrectChoice
		}

		points := payload.Points
		if points == 0 {
			points = 1
		}
		questions = append(questions, models.Question{
			QuestionText: payload.QuestionText,
			Explanation:  payload.Explanation,
			Order:        payload.Order,
			Points:       points,
			Choices:      choices,
		})
	}

	return questions, nil
}

// gradeAnswers awards each question's points when the chosen choice is
// flagged correct. Unanswered questions score zero; answers pointing outside
// the quiz abort grading.
func gradeAnswers(quiz models.Quiz, answers map[uint]uint) (float64, error) {
	choicesByQuestion := make(map[uint]map[uint]bool, len(quiz.Questions))
	pointsByQuestion := make(map[uint]uint, len(quiz.Questions))
	for _, question := range quiz.Questions {
		options := make(map[uint]bool, len(question.Choices))
		for _, choice := range question.Choices {
			options[choice.ID] = choice.IsCorrect
		}
		choicesByQuestion[question.ID] = options
		pointsByQuestion[question.ID] = question.Points
	}

	var score float64
	for questionID, choiceID := range answers {
		options, ok := choicesByQuestion[questionID]
		if !ok {
			return 0, ErrInvalidAnswers
		}
		correct, ok := options[choiceID]
		if !ok {
			return 0, ErrInvalidAnswers
		}
		if correct {
			score += float64(pointsByQuestion[questionID])
		}
	}

	return score, nil
}
