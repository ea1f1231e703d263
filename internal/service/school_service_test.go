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

func newSchoolService(t *testing.T) (*service.SchoolService, *gorm.DB) {
	t.Helper()

	db := openTestDB(t)
	schools := service.NewSchoolService(repository.NewSchoolRepository(db), testValidator(), testLogger())

	return schools, db
}

func schoolPayload(name string) dto.SchoolCreateRequest {
	return dto.SchoolCreateRequest{
		Name:        name,
		Email:       "office@school.test",
		PhoneNumber: "+256700000000",
		Address:     "Plot 4, Main Street",
		District:    "Wakiso",
		Region:      "Central",
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Green Hills Academy":   "green-hills-academy",
		"St. Mary's College":    "st-mary-s-college",
		"  Lakeside  High  ":    "lakeside-high",
		"Kampala SS (Main) 2nd": "kampala-ss-main-2nd",
	}

	for input, want := range cases {
		assert.Equal(t, want, service.Slugify(input), "input %q", input)
	}
}

func TestCreateSchoolDerivesSlug(t *testing.T) {
	schools, _ := newSchoolService(t)

	created, err := schools.Create(context.Background(), schoolPayload("Green Hills Academy"))
	require.NoError(t, err)
	assert.Equal(t, "green-hills-academy", created.Slug)
	assert.True(t, created.IsActive)
	assert.Equal(t, models.SubscriptionFree, created.SubscriptionType)
}

func TestCreateSchoolSuffixesCollidingSlug(t *testing.T) {
	schools, _ := newSchoolService(t)
	ctx := context.Background()

	_, err := schools.Create(ctx, schoolPayload("St Mary's College"))
	require.NoError(t, err)

	// A different name with the same derived slug gets a numeric suffix.
	second, err := schools.Create(ctx, schoolPayload("St. Mary's College"))
	require.NoError(t, err)
	assert.Equal(t, "st-mary-s-college-2", second.Slug)
}

func TestCreateSchoolRejectsDuplicateNameCaseInsensitive(t *testing.T) {
	schools, _ := newSchoolService(t)
	ctx := context.Background()

	_, err := schools.Create(ctx, schoolPayload("Green Hills Academy"))
	require.NoError(t, err)

	_, err = schools.Create(ctx, schoolPayload("GREEN HILLS ACADEMY"))
	assert.ErrorIs(t, err, service.ErrSchoolNameTaken)
}

func TestGetSchoolReportsMemberCounts(t *testing.T) {
	schools, db := newSchoolService(t)
	school := seedSchool(t, db, "Green Hills")
	seedStudent(t, db, "one@school.test", school.ID)
	seedStudent(t, db, "two@school.test", school.ID)
	seedUser(t, db, "teacher@school.test", "password123", models.RoleTeacher, &school.ID)

	// Deactivated members are not counted.
	inactive := seedStudent(t, db, "gone@school.test", school.ID)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", inactive.ID).Update("is_active", false).Error)

	response, err := schools.Get(context.Background(), school.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, response.TotalStudents)
	assert.EqualValues(t, 1, response.TotalTeachers)
}

func TestDeactivateSchool(t *testing.T) {
	schools, db := newSchoolService(t)
	school := seedSchool(t, db, "Green Hills")

	require.NoError(t, schools.Deactivate(context.Background(), school.ID))

	var reloaded models.School
	require.NoError(t, db.First(&reloaded, school.ID).Error)
	assert.False(t, reloaded.IsActive)

	assert.ErrorIs(t, schools.Deactivate(context.Background(), 9999), service.ErrSchoolNotFound)
}
