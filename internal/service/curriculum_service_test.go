package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/dto"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/repository"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/service"
)

func newCurriculumService(t *testing.T) (*service.CurriculumService, *gorm.DB) {
	t.Helper()

	db := openTestDB(t)
	curriculum := service.NewCurriculumService(repository.NewCurriculumRepository(db), testValidator(), testLogger())

	return curriculum, db
}

func TestCreateClassRejectsDuplicateCode(t *testing.T) {
	curriculum, _ := newCurriculumService(t)
	ctx := context.Background()

	_, err := curriculum.CreateClass(ctx, dto.CurriculumClassCreateRequest{Code: "S1", Name: "Senior 1", Order: 1})
	require.NoError(t, err)

	_, err = curriculum.CreateClass(ctx, dto.CurriculumClassCreateRequest{Code: "S1", Name: "Senior One", Order: 7})
	assert.ErrorIs(t, err, service.ErrClassCodeTaken)
}

func TestListClassesCountsTopics(t *testing.T) {
	curriculum, _ := newCurriculumService(t)
	ctx := context.Background()

	s1, err := curriculum.CreateClass(ctx, dto.CurriculumClassCreateRequest{Code: "S1", Name: "Senior 1", Order: 1})
	require.NoError(t, err)
	_, err = curriculum.CreateClass(ctx, dto.CurriculumClassCreateRequest{Code: "S2", Name: "Senior 2", Order: 2})
	require.NoError(t, err)

	_, err = curriculum.CreateTopic(ctx, s1.ID, dto.TopicCreateRequest{Title: "The Cell", Description: "Structure and function"})
	require.NoError(t, err)
	_, err = curriculum.CreateTopic(ctx, s1.ID, dto.TopicCreateRequest{Title: "Classification", Description: "Kingdoms of life"})
	require.NoError(t, err)

	classes, err := curriculum.ListClasses(ctx)
	require.NoError(t, err)
	require.Len(t, classes, 2)
	assert.Equal(t, 2, classes[0].TotalTopics)
	assert.Equal(t, 0, classes[1].TotalTopics)
}

func TestTopicTitleUniquePerClass(t *testing.T) {
	curriculum, _ := newCurriculumService(t)
	ctx := context.Background()

	s1, err := curriculum.CreateClass(ctx, dto.CurriculumClassCreateRequest{Code: "S1", Name: "Senior 1", Order: 1})
	require.NoError(t, err)
	s2, err := curriculum.CreateClass(ctx, dto.CurriculumClassCreateRequest{Code: "S2", Name: "Senior 2", Order: 2})
	require.NoError(t, err)

	_, err = curriculum.CreateTopic(ctx, s1.ID, dto.TopicCreateRequest{Title: "The Cell", Description: "Structure and function"})
	require.NoError(t, err)

	// Same title in the same class is rejected.
	_, err = curriculum.CreateTopic(ctx, s1.ID, dto.TopicCreateRequest{Title: "The Cell", Description: "Again"})
	assert.ErrorIs(t, err, service.ErrTopicTitleTaken)

	// But the same title may recur in another class.
	_, err = curriculum.CreateTopic(ctx, s2.ID, dto.TopicCreateRequest{Title: "The Cell", Description: "Deeper dive"})
	assert.NoError(t, err)
}

func TestUpdateTopicChecksTitleConflict(t *testing.T) {
	curriculum, _ := newCurriculumService(t)
	ctx := context.Background()

	s1, err := curriculum.CreateClass(ctx, dto.CurriculumClassCreateRequest{Code: "S1", Name: "Senior 1", Order: 1})
	require.NoError(t, err)

	_, err = curriculum.CreateTopic(ctx, s1.ID, dto.TopicCreateRequest{Title: "The Cell", Description: "Structure"})
	require.NoError(t, err)
	second, err := curriculum.CreateTopic(ctx, s1.ID, dto.TopicCreateRequest{Title: "Classification", Description: "Kingdoms"})
	require.NoError(t, err)

	conflicting := "The Cell"
	_, err = curriculum.UpdateTopic(ctx, second.ID, dto.TopicUpdateRequest{Title: &conflicting})
	assert.ErrorIs(t, err, service.ErrTopicTitleTaken)

	// Re-submitting the topic's own title is not a conflict.
	same := "Classification"
	_, err = curriculum.UpdateTopic(ctx, second.ID, dto.TopicUpdateRequest{Title: &same})
	assert.NoError(t, err)
}

func TestCreateTopicRequiresExistingClass(t *testing.T) {
	curriculum, _ := newCurriculumService(t)

	_, err := curriculum.CreateTopic(context.Background(), 9999, dto.TopicCreateRequest{Title: "Orphan", Description: "No class"})
	assert.ErrorIs(t, err, service.ErrClassNotFound)
}

func TestTopicKeyConceptsRoundTrip(t *testing.T) {
	curriculum, _ := newCurriculumService(t)
	ctx := context.Background()

	s1, err := curriculum.CreateClass(ctx, dto.CurriculumClassCreateRequest{Code: "S1", Name: "Senior 1", Order: 1})
	require.NoError(t, err)

	created, err := curriculum.CreateTopic(ctx, s1.ID, dto.TopicCreateRequest{
		Title:       "The Cell",
		Description: "Structure and function",
		KeyConcepts: []string{"organelles", "membrane", "nucleus"},
	})
	require.NoError(t, err)

	fetched, err := curriculum.GetTopic(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"organelles", "membrane", "nucleus"}, fetched.KeyConcepts)
}
