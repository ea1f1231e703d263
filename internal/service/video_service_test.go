package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/dto"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/models"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/repository"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/service"
)

func newVideoService(t *testing.T) (*service.VideoService, *gorm.DB) {
	t.Helper()

	db := openTestDB(t)
	videos := service.NewVideoService(
		repository.NewVideoRepository(db),
		repository.NewCurriculumRepository(db),
		testValidator(),
		testLogger(),
	)

	return videos, db
}

func TestCreateVideoRequiresExistingTopic(t *testing.T) {
	videos, db := newVideoService(t)
	teacher := seedUser(t, db, "teacher@school.test", "changeme123", models.RoleTeacher, nil)

	_, err := videos.Create(context.Background(), 9999, teacher.ID, dto.VideoCreateRequest{
		Title:    "Mitosis walkthrough",
		VideoURL: "https://videos.test/mitosis",
	})

	assert.ErrorIs(t, err, service.ErrTopicNotFound)
}

func TestVideoMutationsAreUploaderOrAdminOnly(t *testing.T) {
	videos, db := newVideoService(t)
	topic := seedTopic(t, db, "S1", "The Cell")
	teacher := seedUser(t, db, "teacher@school.test", "changeme123", models.RoleTeacher, nil)
	other := seedUser(t, db, "other@school.test", "changeme123", models.RoleTeacher, nil)
	admin := seedUser(t, db, "admin@biotutor.test", "changeme123", models.RoleSchoolAdmin, nil)
	ctx := context.Background()

	created, err := videos.Create(ctx, topic.ID, teacher.ID, dto.VideoCreateRequest{
		Title:    "Mitosis walkthrough",
		VideoURL: "https://videos.test/mitosis",
	})
	require.NoError(t, err)
	assert.Equal(t, teacher.ID, created.UploadedByID)

	title := "Mitosis walkthrough, part 1"
	_, err = videos.Update(ctx, created.ID, other.ID, models.RoleTeacher, dto.VideoUpdateRequest{Title: &title})
	assert.ErrorIs(t, err, service.ErrNotVideoOwner)

	err = videos.Delete(ctx, created.ID, other.ID, models.RoleTeacher)
	assert.ErrorIs(t, err, service.ErrNotVideoOwner)

	updated, err := videos.Update(ctx, created.ID, admin.ID, models.RoleSchoolAdmin, dto.VideoUpdateRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Mitosis walkthrough, part 1", updated.Title)

	require.NoError(t, videos.Delete(ctx, created.ID, teacher.ID, models.RoleTeacher))

	_, err = videos.Get(ctx, created.ID)
	assert.ErrorIs(t, err, service.ErrVideoNotFound)
}
