package service_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/dto"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/events"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/models"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/observability"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/repository"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/service"
	"github.com/KIIZA-TREVOUR/mybiotutor/pkg/cloudinary"
)

// fakeFileStore records uploads in memory instead of calling Cloudinary.
type fakeFileStore struct {
	uploads   int
	destroyed []string
}

func (f *fakeFileStore) Upload(_ context.Context, name string, reader io.Reader) (cloudinary.UploadResult, error) {
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return cloudinary.UploadResult{}, err
	}
	f.uploads++
	return cloudinary.UploadResult{
		SecureURL: fmt.Sprintf("https://files.test/%s", name),
		PublicID:  fmt.Sprintf("notes/%s", name),
	}, nil
}

func (f *fakeFileStore) Destroy(_ context.Context, publicID string) error {
	f.destroyed = append(f.destroyed, publicID)
	return nil
}

func newNoteService(t *testing.T) (*service.NoteService, *fakeFileStore, *gorm.DB) {
	t.Helper()

	db := openTestDB(t)
	store := &fakeFileStore{}
	notes := service.NewNoteService(
		repository.NewNoteRepository(db),
		repository.NewCurriculumRepository(db),
		store,
		events.NewPublisher(nil, testLogger()),
		testValidator(),
		1,
		testLogger(),
	)

	return notes, store, db
}

func TestUploadTextNoteIsIndexedImmediately(t *testing.T) {
	notes, store, db := newNoteService(t)
	topic := seedTopic(t, db, "S1", "The Cell")
	teacher := seedUser(t, db, "teacher@school.test", "changeme123", models.RoleTeacher, nil)

	accepted := testutil.ToFloat64(observability.NoteUploads().WithLabelValues("txt"))

	body := "The cell is the basic unit of life."
	resp, err := notes.Upload(context.Background(), topic.ID, teacher.ID,
		dto.NoteUploadRequest{Title: "Cell basics"}, "cell-basics.txt", strings.NewReader(body))
	require.NoError(t, err)

	assert.Equal(t, accepted+1, testutil.ToFloat64(observability.NoteUploads().WithLabelValues("txt")))

	assert.Equal(t, "txt", resp.FileType)
	assert.Equal(t, models.ApprovalPending, resp.ApprovalStatus)
	assert.Equal(t, "https://files.test/cell-basics.txt", resp.FileURL)
	assert.Equal(t, 1, store.uploads)

	var stored models.ContentNote
	require.NoError(t, db.First(&stored, resp.ID).Error)
	assert.Equal(t, body, stored.ExtractedText)
	assert.True(t, stored.IsProcessed)
}

func TestUploadRejectsOversizeFile(t *testing.T) {
	notes, store, db := newNoteService(t)
	topic := seedTopic(t, db, "S1", "The Cell")
	teacher := seedUser(t, db, "teacher@school.test", "changeme123", models.RoleTeacher, nil)

	rejected := testutil.ToFloat64(observability.NoteUploadsRejected().WithLabelValues("too_large"))

	// The service was built with a 1 MB cap.
	big := bytes.Repeat([]byte("a"), 1024*1024+1)
	_, err := notes.Upload(context.Background(), topic.ID, teacher.ID,
		dto.NoteUploadRequest{Title: "Too big"}, "big.txt", bytes.NewReader(big))

	assert.ErrorIs(t, err, service.ErrFileTooLarge)
	assert.Zero(t, store.uploads)
	assert.Equal(t, rejected+1, testutil.ToFloat64(observability.NoteUploadsRejected().WithLabelValues("too_large")))
}

func TestUploadRejectsUnsupportedFormat(t *testing.T) {
	notes, _, db := newNoteService(t)
	topic := seedTopic(t, db, "S1", "The Cell")
	teacher := seedUser(t, db, "teacher@school.test", "changeme123", models.RoleTeacher, nil)

	// A PNG header is neither pdf, docx, nor text.
	png := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}
	_, err := notes.Upload(context.Background(), topic.ID, teacher.ID,
		dto.NoteUploadRequest{Title: "Diagram"}, "diagram.png", bytes.NewReader(png))

	assert.ErrorIs(t, err, service.ErrUnsupportedFileType)
}

func TestUploadRequiresExistingTopic(t *testing.T) {
	notes, _, db := newNoteService(t)
	teacher := seedUser(t, db, "teacher@school.test", "changeme123", models.RoleTeacher, nil)

	_, err := notes.Upload(context.Background(), 9999, teacher.ID,
		dto.NoteUploadRequest{Title: "Orphan"}, "orphan.txt", strings.NewReader("text"))

	assert.ErrorIs(t, err, service.ErrTopicNotFound)
}

func TestUpdateIsOwnerOnlyAndResetsApproval(t *testing.T) {
	notes, _, db := newNoteService(t)
	topic := seedTopic(t, db, "S1", "The Cell")
	teacher := seedUser(t, db, "teacher@school.test", "changeme123", models.RoleTeacher, nil)
	other := seedUser(t, db, "other@school.test", "changeme123", models.RoleTeacher, nil)
	admin := seedUser(t, db, "admin@biotutor.test", "changeme123", models.RoleSuperAdmin, nil)
	ctx := context.Background()

	uploaded, err := notes.Upload(ctx, topic.ID, teacher.ID,
		dto.NoteUploadRequest{Title: "Cell basics"}, "cell.txt", strings.NewReader("cells"))
	require.NoError(t, err)

	approved, err := notes.Review(ctx, uploaded.ID, admin.ID, dto.NoteReviewRequest{Status: models.ApprovalApproved})
	require.NoError(t, err)
	require.NotNil(t, approved.ApprovedByID)

	title := "Cell basics revised"
	_, err = notes.Update(ctx, uploaded.ID, other.ID, models.RoleTeacher, dto.NoteUpdateRequest{Title: &title})
	assert.ErrorIs(t, err, service.ErrNotNoteOwner)

	edited, err := notes.Update(ctx, uploaded.ID, teacher.ID, models.RoleTeacher, dto.NoteUpdateRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Cell basics revised", edited.Title)
	assert.Equal(t, models.ApprovalPending, edited.ApprovalStatus)
	assert.Nil(t, edited.ApprovedByID)
	assert.Nil(t, edited.ApprovalDate)
}

func TestReviewRecordsDecision(t *testing.T) {
	notes, _, db := newNoteService(t)
	topic := seedTopic(t, db, "S1", "The Cell")
	teacher := seedUser(t, db, "teacher@school.test", "changeme123", models.RoleTeacher, nil)
	admin := seedUser(t, db, "admin@biotutor.test", "changeme123", models.RoleSuperAdmin, nil)
	ctx := context.Background()

	uploaded, err := notes.Upload(ctx, topic.ID, teacher.ID,
		dto.NoteUploadRequest{Title: "Cell basics"}, "cell.txt", strings.NewReader("cells"))
	require.NoError(t, err)

	approved, err := notes.Review(ctx, uploaded.ID, admin.ID, dto.NoteReviewRequest{Status: models.ApprovalApproved})
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, approved.ApprovalStatus)
	require.NotNil(t, approved.ApprovedByID)
	assert.Equal(t, admin.ID, *approved.ApprovedByID)
	assert.NotNil(t, approved.ApprovalDate)

	rejected, err := notes.Review(ctx, uploaded.ID, admin.ID, dto.NoteReviewRequest{
		Status:          models.ApprovalRejected,
		RejectionReason: "scan is unreadable",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalRejected, rejected.ApprovalStatus)
	assert.Nil(t, rejected.ApprovedByID)
	assert.Equal(t, "scan is unreadable", rejected.RejectionReason)
}

func TestReviewRejectionNeedsReason(t *testing.T) {
	notes, _, db := newNoteService(t)
	topic := seedTopic(t, db, "S1", "The Cell")
	teacher := seedUser(t, db, "teacher@school.test", "changeme123", models.RoleTeacher, nil)
	admin := seedUser(t, db, "admin@biotutor.test", "changeme123", models.RoleSuperAdmin, nil)
	ctx := context.Background()

	uploaded, err := notes.Upload(ctx, topic.ID, teacher.ID,
		dto.NoteUploadRequest{Title: "Cell basics"}, "cell.txt", strings.NewReader("cells"))
	require.NoError(t, err)

	_, err = notes.Review(ctx, uploaded.ID, admin.ID, dto.NoteReviewRequest{Status: models.ApprovalRejected})
	assert.Error(t, err)
}

func TestDeleteRemovesStoredFile(t *testing.T) {
	notes, store, db := newNoteService(t)
	topic := seedTopic(t, db, "S1", "The Cell")
	teacher := seedUser(t, db, "teacher@school.test", "changeme123", models.RoleTeacher, nil)
	ctx := context.Background()

	uploaded, err := notes.Upload(ctx, topic.ID, teacher.ID,
		dto.NoteUploadRequest{Title: "Cell basics"}, "cell.txt", strings.NewReader("cells"))
	require.NoError(t, err)

	require.NoError(t, notes.Delete(ctx, uploaded.ID, teacher.ID, models.RoleTeacher))
	assert.Equal(t, []string{"notes/cell.txt"}, store.destroyed)

	_, err = notes.Get(ctx, uploaded.ID)
	assert.ErrorIs(t, err, service.ErrNoteNotFound)
}

func TestUpdateAllowsAdminEdits(t *testing.T) {
	notes, _, db := newNoteService(t)
	topic := seedTopic(t, db, "S1", "The Cell")
	teacher := seedUser(t, db, "teacher@school.test", "changeme123", models.RoleTeacher, nil)
	admin := seedUser(t, db, "admin@biotutor.test", "changeme123", models.RoleSchoolAdmin, nil)
	ctx := context.Background()

	uploaded, err := notes.Upload(ctx, topic.ID, teacher.ID,
		dto.NoteUploadRequest{Title: "Cell basics"}, "cell.txt", strings.NewReader("cells"))
	require.NoError(t, err)

	title := "Cell basics, corrected"
	edited, err := notes.Update(ctx, uploaded.ID, admin.ID, models.RoleSchoolAdmin, dto.NoteUpdateRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Cell basics, corrected", edited.Title)
	assert.Equal(t, models.ApprovalPending, edited.ApprovalStatus)
}

func TestDeleteIsOwnerOrAdminOnly(t *testing.T) {
	notes, store, db := newNoteService(t)
	topic := seedTopic(t, db, "S1", "The Cell")
	teacher := seedUser(t, db, "teacher@school.test", "changeme123", models.RoleTeacher, nil)
	other := seedUser(t, db, "other@school.test", "changeme123", models.RoleTeacher, nil)
	admin := seedUser(t, db, "admin@biotutor.test", "changeme123", models.RoleSchoolAdmin, nil)
	ctx := context.Background()

	uploaded, err := notes.Upload(ctx, topic.ID, teacher.ID,
		dto.NoteUploadRequest{Title: "Cell basics"}, "cell.txt", strings.NewReader("cells"))
	require.NoError(t, err)

	err = notes.Delete(ctx, uploaded.ID, other.ID, models.RoleTeacher)
	assert.ErrorIs(t, err, service.ErrNotNoteOwner)
	assert.Empty(t, store.destroyed)

	require.NoError(t, notes.Delete(ctx, uploaded.ID, admin.ID, models.RoleSchoolAdmin))
	assert.Equal(t, []string{"notes/cell.txt"}, store.destroyed)
}
