package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/dto"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/events"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/models"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/repository"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/service"
)

func newQuizService(t *testing.T) (*service.QuizService, *gorm.DB) {
	t.Helper()

	db := openTestDB(t)
	quizzes := service.NewQuizService(
		repository.NewQuizRepository(db),
		repository.NewCurriculumRepository(db),
		repository.NewTutorRepository(db),
		repository.NewUserRepository(db),
		events.NewPublisher(nil, testLogger()),
		testValidator(),
		testLogger(),
	)

	return quizzes, db
}

func cellQuizPayload() dto.QuizCreateRequest {
	return dto.QuizCreateRequest{
		Title: "Cell structure check",
		Questions: []dto.QuestionPayload{
			{
				QuestionText: "Which organelle produces ATP?",
				Explanation:  "Mitochondria run cellular respiration.",
				Order:        1,
				Choices: []dto.ChoicePayload{
					{ChoiceText: "Mitochondrion", IsCorrect: true, Order: 1},
					{ChoiceText: "Ribosome", Order: 2},
				},
			},
			{
				QuestionText: "Where is DNA stored?",
				Order:        2,
				Choices: []dto.ChoicePayload{
					{ChoiceText: "Nucleus", IsCorrect: true, Order: 1},
					{ChoiceText: "Cell wall", Order: 2},
				},
			},
		},
	}
}

// answerKey maps question text to the chosen choice id for a fetched quiz.
func answerKey(t *testing.T, quiz dto.QuizResponse, pick func(q dto.QuestionResponse) uint) map[uint]uint {
	t.Helper()

	answers := make(map[uint]uint, len(quiz.Questions))
	for _, question := range quiz.Questions {
		answers[question.ID] = pick(question)
	}
	return answers
}

func correctChoice(q dto.QuestionResponse) uint {
	for _, choice := range q.Choices {
		if choice.IsCorrect != nil && *choice.IsCorrect {
			return choice.ID
		}
	}
	return 0
}

func wrongChoice(q dto.QuestionResponse) uint {
	for _, choice := range q.Choices {
		if choice.IsCorrect == nil || !*choice.IsCorrect {
			return choice.ID
		}
	}
	return 0
}

func TestCreateQuizRequiresCorrectChoice(t *testing.T) {
	quizzes, db := newQuizService(t)
	topic := seedTopic(t, db, "S1", "The Cell")
	teacher := seedUser(t, db, "teacher@school.test", "changeme123", models.RoleTeacher, nil)

	req := cellQuizPayload()
	req.Questions[1].Choices = []dto.ChoicePayload{
		{ChoiceText: "Nucleus", Order: 1},
		{ChoiceText: "Cell wall", Order: 2},
	}

	_, err := quizzes.Create(context.Background(), topic.ID, teacher.ID, req)
	assert.ErrorIs(t, err, service.ErrNoCorrectChoice)
}

func TestCreateQuizDefaultsPassThreshold(t *testing.T) {
	quizzes, db := newQuizService(t)
	topic := seedTopic(t, db, "S1", "The Cell")
	teacher := seedUser(t, db, "teacher@school.test", "changeme123", models.RoleTeacher, nil)

	created, err := quizzes.Create(context.Background(), topic.ID, teacher.ID, cellQuizPayload())
	require.NoError(t, err)

	assert.EqualValues(t, 50, created.PassThreshold)
	assert.True(t, created.IsActive)
	assert.Equal(t, 2, created.TotalQuestions)
}

func TestGetQuizStripsAnswersForStudents(t *testing.T) {
	quizzes, db := newQuizService(t)
	topic := seedTopic(t, db, "S1", "The Cell")
	teacher := seedUser(t, db, "teacher@school.test", "changeme123", models.RoleTeacher, nil)
	ctx := context.Background()

	created, err := quizzes.Create(ctx, topic.ID, teacher.ID, cellQuizPayload())
	require.NoError(t, err)

	full, err := quizzes.Get(ctx, created.ID, false)
	require.NoError(t, err)
	require.NotEmpty(t, full.Questions)
	assert.NotNil(t, full.Questions[0].Choices[0].IsCorrect)
	assert.NotEmpty(t, full.Questions[0].Explanation)

	student, err := quizzes.Get(ctx, created.ID, true)
	require.NoError(t, err)
	for _, question := range student.Questions {
		assert.Empty(t, question.Explanation)
		for _, choice := range question.Choices {
			assert.Nil(t, choice.IsCorrect)
		}
	}
}

func TestInactiveQuizHiddenFromStudents(t *testing.T) {
	quizzes, db := newQuizService(t)
	topic := seedTopic(t, db, "S1", "The Cell")
	teacher := seedUser(t, db, "teacher@school.test", "changeme123", models.RoleTeacher, nil)
	ctx := context.Background()

	created, err := quizzes.Create(ctx, topic.ID, teacher.ID, cellQuizPayload())
	require.NoError(t, err)

	inactive := false
	_, err = quizzes.Update(ctx, created.ID, teacher.ID, models.RoleTeacher, dto.QuizUpdateRequest{IsActive: &inactive})
	require.NoError(t, err)

	_, err = quizzes.Get(ctx, created.ID, true)
	assert.ErrorIs(t, err, service.ErrQuizNotFound)

	// Staff still see it.
	_, err = quizzes.Get(ctx, created.ID, false)
	assert.NoError(t, err)
}

func TestSubmitAttemptGradesSynchronously(t *testing.T) {
	quizzes, db := newQuizService(t)
	topic := seedTopic(t, db, "S1", "The Cell")
	teacher := seedUser(t, db, "teacher@school.test", "changeme123", models.RoleTeacher, nil)
	school := seedSchool(t, db, "Green Hills Academy")
	student := seedStudent(t, db, "student@school.test", school.ID)
	ctx := context.Background()

	created, err := quizzes.Create(ctx, topic.ID, teacher.ID, cellQuizPayload())
	require.NoError(t, err)
	full, err := quizzes.Get(ctx, created.ID, false)
	require.NoError(t, err)

	// One of two questions right is exactly the 50% default threshold.
	answers := answerKey(t, full, correctChoice)
	answers[full.Questions[1].ID] = wrongChoice(full.Questions[1])

	attempt, err := quizzes.SubmitAttempt(ctx, created.ID, student.ID, dto.AttemptSubmitRequest{Answers: answers})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, attempt.Score, 0.001)
	assert.InDelta(t, 50.0, attempt.Percentage, 0.001)
	assert.True(t, attempt.Passed)
	assert.NotNil(t, attempt.CompletedAt)
}

func TestFailedAttemptFlagsWeakTopic(t *testing.T) {
	quizzes, db := newQuizService(t)
	topic := seedTopic(t, db, "S1", "The Cell")
	teacher := seedUser(t, db, "teacher@school.test", "changeme123", models.RoleTeacher, nil)
	school := seedSchool(t, db, "Green Hills Academy")
	student := seedStudent(t, db, "student@school.test", school.ID)
	ctx := context.Background()

	created, err := quizzes.Create(ctx, topic.ID, teacher.ID, cellQuizPayload())
	require.NoError(t, err)
	full, err := quizzes.Get(ctx, created.ID, false)
	require.NoError(t, err)

	attempt, err := quizzes.SubmitAttempt(ctx, created.ID, student.ID,
		dto.AttemptSubmitRequest{Answers: answerKey(t, full, wrongChoice)})
	require.NoError(t, err)
	assert.False(t, attempt.Passed)
	assert.Zero(t, attempt.Percentage)

	var log models.AdaptiveLearningLog
	require.NoError(t, db.Where("student_id = ? AND topic_id = ?", student.ID, topic.ID).First(&log).Error)
	assert.True(t, log.IsWeakArea)
	assert.True(t, log.Recommended)

	var profile models.StudentProfile
	require.NoError(t, db.Where("user_id = ?", student.ID).First(&profile).Error)
	assert.Contains(t, []uint(profile.WeakTopics), topic.ID)

	// Passing the topic afterwards clears the weak flag.
	_, err = quizzes.SubmitAttempt(ctx, created.ID, student.ID,
		dto.AttemptSubmitRequest{Answers: answerKey(t, full, correctChoice)})
	require.NoError(t, err)

	require.NoError(t, db.Where("user_id = ?", student.ID).First(&profile).Error)
	assert.NotContains(t, []uint(profile.WeakTopics), topic.ID)
}

func TestSubmitAttemptRejectsForeignAnswers(t *testing.T) {
	quizzes, db := newQuizService(t)
	topic := seedTopic(t, db, "S1", "The Cell")
	teacher := seedUser(t, db, "teacher@school.test", "changeme123", models.RoleTeacher, nil)
	school := seedSchool(t, db, "Green Hills Academy")
	student := seedStudent(t, db, "student@school.test", school.ID)
	ctx := context.Background()

	created, err := quizzes.Create(ctx, topic.ID, teacher.ID, cellQuizPayload())
	require.NoError(t, err)

	_, err = quizzes.SubmitAttempt(ctx, created.ID, student.ID,
		dto.AttemptSubmitRequest{Answers: map[uint]uint{9999: 1}})
	assert.ErrorIs(t, err, service.ErrInvalidAnswers)
}

func TestSubmitAttemptRejectsInactiveQuiz(t *testing.T) {
	quizzes, db := newQuizService(t)
	topic := seedTopic(t, db, "S1", "The Cell")
	teacher := seedUser(t, db, "teacher@school.test", "changeme123", models.RoleTeacher, nil)
	school := seedSchool(t, db, "Green Hills Academy")
	student := seedStudent(t, db, "student@school.test", school.ID)
	ctx := context.Background()

	created, err := quizzes.Create(ctx, topic.ID, teacher.ID, cellQuizPayload())
	require.NoError(t, err)
	full, err := quizzes.Get(ctx, created.ID, false)
	require.NoError(t, err)

	inactive := false
	_, err = quizzes.Update(ctx, created.ID, teacher.ID, models.RoleTeacher, dto.QuizUpdateRequest{IsActive: &inactive})
	require.NoError(t, err)

	_, err = quizzes.SubmitAttempt(ctx, created.ID, student.ID,
		dto.AttemptSubmitRequest{Answers: answerKey(t, full, correctChoice)})
	assert.ErrorIs(t, err, service.ErrQuizInactive)
}

func TestGetAttemptEnforcesOwnership(t *testing.T) {
	quizzes, db := newQuizService(t)
	topic := seedTopic(t, db, "S1", "The Cell")
	teacher := seedUser(t, db, "teacher@school.test", "changeme123", models.RoleTeacher, nil)
	school := seedSchool(t, db, "Green Hills Academy")
	student := seedStudent(t, db, "student@school.test", school.ID)
	other := seedStudent(t, db, "other@school.test", school.ID)
	ctx := context.Background()

	created, err := quizzes.Create(ctx, topic.ID, teacher.ID, cellQuizPayload())
	require.NoError(t, err)
	full, err := quizzes.Get(ctx, created.ID, false)
	require.NoError(t, err)

	attempt, err := quizzes.SubmitAttempt(ctx, created.ID, student.ID,
		dto.AttemptSubmitRequest{Answers: answerKey(t, full, correctChoice)})
	require.NoError(t, err)

	_, err = quizzes.GetAttempt(ctx, attempt.ID, other.ID)
	assert.ErrorIs(t, err, service.ErrAttemptNotFound)

	owned, err := quizzes.GetAttempt(ctx, attempt.ID, student.ID)
	require.NoError(t, err)
	assert.Equal(t, attempt.ID, owned.ID)

	mine, err := quizzes.ListAttemptsByStudent(ctx, student.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestQuizMutationsAreAuthorOrAdminOnly(t *testing.T) {
	quizzes, db := newQuizService(t)
	topic := seedTopic(t, db, "S1", "The Cell")
	teacher := seedUser(t, db, "teacher@school.test", "changeme123", models.RoleTeacher, nil)
	other := seedUser(t, db, "other@school.test", "changeme123", models.RoleTeacher, nil)
	admin := seedUser(t, db, "admin@biotutor.test", "changeme123", models.RoleSchoolAdmin, nil)
	ctx := context.Background()

	created, err := quizzes.Create(ctx, topic.ID, teacher.ID, cellQuizPayload())
	require.NoError(t, err)

	title := "Cell structure check, revised"
	_, err = quizzes.Update(ctx, created.ID, other.ID, models.RoleTeacher, dto.QuizUpdateRequest{Title: &title})
	assert.ErrorIs(t, err, service.ErrNotQuizOwner)

	err = quizzes.Delete(ctx, created.ID, other.ID, models.RoleTeacher)
	assert.ErrorIs(t, err, service.ErrNotQuizOwner)

	updated, err := quizzes.Update(ctx, created.ID, admin.ID, models.RoleSchoolAdmin, dto.QuizUpdateRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Cell structure check, revised", updated.Title)

	require.NoError(t, quizzes.Delete(ctx, created.ID, teacher.ID, models.RoleTeacher))

	_, err = quizzes.Get(ctx, created.ID, false)
	assert.ErrorIs(t, err, service.ErrQuizNotFound)
}
