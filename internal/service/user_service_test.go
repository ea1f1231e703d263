package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/dto"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/models"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/repository"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/service"
)

func newUserService(t *testing.T) (*service.UserService, *gorm.DB) {
	t.Helper()

	db := openTestDB(t)
	users := service.NewUserService(
		repository.NewUserRepository(db),
		repository.NewSchoolRepository(db),
		testValidator(),
		"changeme123",
		testLogger(),
	)

	return users, db
}

func TestCreateEnforcesRoleSchoolPairing(t *testing.T) {
	users, db := newUserService(t)
	school := seedSchool(t, db, "Green Hills")
	ctx := context.Background()

	// Super admins never belong to a school.
	_, err := users.Create(ctx, dto.UserCreateRequest{
		Email:           "root@biotutor.test",
		FirstName:       "Root",
		LastName:        "Admin",
		Role:            models.RoleSuperAdmin,
		SchoolID:        &school.ID,
		Password:        "password123",
		PasswordConfirm: "password123",
	})
	assert.ErrorIs(t, err, service.ErrSuperAdminSchool)

	// Every other role requires one.
	_, err = users.Create(ctx, dto.UserCreateRequest{
		Email:           "teacher@school.test",
		FirstName:       "Jane",
		LastName:        "Okello",
		Role:            models.RoleTeacher,
		Password:        "password123",
		PasswordConfirm: "password123",
	})
	assert.ErrorIs(t, err, service.ErrSchoolRequired)

	// And the school must exist.
	missing := uint(9999)
	_, err = users.Create(ctx, dto.UserCreateRequest{
		Email:           "teacher@school.test",
		FirstName:       "Jane",
		LastName:        "Okello",
		Role:            models.RoleTeacher,
		SchoolID:        &missing,
		Password:        "password123",
		PasswordConfirm: "password123",
	})
	assert.ErrorIs(t, err, service.ErrSchoolNotFound)
}

func TestCreateTeacherAttachesProfile(t *testing.T) {
	users, db := newUserService(t)
	school := seedSchool(t, db, "Green Hills")

	response, err := users.CreateTeacher(context.Background(), school.ID, dto.UserCreateRequest{
		Email:           "Jane.Okello@School.Test",
		FirstName:       "Jane",
		LastName:        "Okello",
		Password:        "password123",
		PasswordConfirm: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "jane.okello@school.test", response.Email)
	assert.Equal(t, models.RoleTeacher, response.Role)
	require.NotNil(t, response.SchoolID)
	assert.Equal(t, school.ID, *response.SchoolID)

	var profile models.TeacherProfile
	require.NoError(t, db.Where("user_id = ?", response.ID).First(&profile).Error)
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	users, db := newUserService(t)
	school := seedSchool(t, db, "Green Hills")
	seedUser(t, db, "taken@school.test", "password123", models.RoleTeacher, &school.ID)

	_, err := users.CreateTeacher(context.Background(), school.ID, dto.UserCreateRequest{
		Email:           "taken@school.test",
		FirstName:       "Jane",
		LastName:        "Okello",
		Password:        "password123",
		PasswordConfirm: "password123",
	})
	assert.ErrorIs(t, err, service.ErrEmailTaken)
}

func TestCreateStudentGeneratesAdmissionNumber(t *testing.T) {
	users, db := newUserService(t)
	school := seedSchool(t, db, "Green Hills")

	response, err := users.CreateStudent(context.Background(), school.ID, dto.BulkStudentEntry{
		Email:      "amina@school.test",
		FirstName:  "Amina",
		LastName:   "Nankya",
		ClassLevel: "S3",
	})
	require.NoError(t, err)

	var profile models.StudentProfile
	require.NoError(t, db.Where("user_id = ?", response.ID).First(&profile).Error)
	assert.Equal(t, "S3", profile.ClassLevel)
	assert.True(t, strings.HasPrefix(profile.StudentID, "STD"))
}

func TestBulkCreateStudentsIsAtomic(t *testing.T) {
	users, db := newUserService(t)
	school := seedSchool(t, db, "Green Hills")

	_, err := users.BulkCreateStudents(context.Background(), school.ID, dto.BulkStudentCreateRequest{
		Students: []dto.BulkStudentEntry{
			{Email: "one@school.test", FirstName: "One", LastName: "Student", ClassLevel: "S1"},
			{Email: "two@school.test", FirstName: "Two", LastName: "Student", ClassLevel: "S1"},
			{Email: "ONE@school.test", FirstName: "Dup", LastName: "Student", ClassLevel: "S1"},
		},
	})
	require.ErrorIs(t, err, service.ErrEmailTaken)

	// Nothing from the failed batch was written.
	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestBulkCreateStudentsImportsWholeBatch(t *testing.T) {
	users, db := newUserService(t)
	school := seedSchool(t, db, "Green Hills")

	response, err := users.BulkCreateStudents(context.Background(), school.ID, dto.BulkStudentCreateRequest{
		Students: []dto.BulkStudentEntry{
			{Email: "one@school.test", FirstName: "One", LastName: "Student", ClassLevel: "S1"},
			{Email: "two@school.test", FirstName: "Two", LastName: "Student", ClassLevel: "S2", StudentID: "GHS-0042"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, response.Created)
	require.Len(t, response.Students, 2)
	assert.Equal(t, "GHS-0042", response.Students[1].StudentID)

	var profiles int64
	require.NoError(t, db.Model(&models.StudentProfile{}).Count(&profiles).Error)
	assert.EqualValues(t, 2, profiles)
}

func TestBulkCreateStudentsRejectsTakenStudentID(t *testing.T) {
	users, db := newUserService(t)
	school := seedSchool(t, db, "Green Hills")
	existing := seedStudent(t, db, "existing@school.test", school.ID)

	var profile models.StudentProfile
	require.NoError(t, db.Where("user_id = ?", existing.ID).First(&profile).Error)

	_, err := users.BulkCreateStudents(context.Background(), school.ID, dto.BulkStudentCreateRequest{
		Students: []dto.BulkStudentEntry{
			{Email: "new@school.test", FirstName: "New", LastName: "Student", ClassLevel: "S1", StudentID: profile.StudentID},
		},
	})
	assert.ErrorIs(t, err, service.ErrStudentIDTaken)
}

func TestSchoolScopedAccessGuard(t *testing.T) {
	users, db := newUserService(t)
	mine := seedSchool(t, db, "Green Hills")
	other := seedSchool(t, db, "Lakeside")
	outsider := seedStudent(t, db, "outsider@lakeside.test", other.ID)

	_, err := users.GetInSchool(context.Background(), mine.ID, outsider.ID)
	assert.ErrorIs(t, err, service.ErrForbiddenSchool)

	err = users.Deactivate(context.Background(), &mine.ID, outsider.ID)
	assert.ErrorIs(t, err, service.ErrForbiddenSchool)
}

func TestDeactivateIsSoftDelete(t *testing.T) {
	users, db := newUserService(t)
	school := seedSchool(t, db, "Green Hills")
	student := seedStudent(t, db, "amina@school.test", school.ID)

	require.NoError(t, users.Deactivate(context.Background(), nil, student.ID))

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, student.ID).Error)
	assert.False(t, reloaded.IsActive)
}

func TestListUsersFilters(t *testing.T) {
	users, db := newUserService(t)
	school := seedSchool(t, db, "Green Hills")
	seedStudent(t, db, "amina@school.test", school.ID)
	seedUser(t, db, "teacher@school.test", "password123", models.RoleTeacher, &school.ID)

	students, err := users.List(context.Background(), repository.UserFilter{
		Role:     models.RoleStudent,
		SchoolID: &school.ID,
	})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "amina@school.test", students[0].Email)

	matched, err := users.List(context.Background(), repository.UserFilter{Search: "teacher"})
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, models.RoleTeacher, matched[0].Role)
}
