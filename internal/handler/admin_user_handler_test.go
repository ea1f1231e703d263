package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/dto"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/handler"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/models"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/repository"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/service"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/utils"
)

var adminUserDBSeq atomic.Int64

func newAdminUserApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:adminusertest%d?mode=memory&cache=shared", adminUserDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.School{},
		&models.User{},
		&models.TeacherProfile{},
		&models.StudentProfile{},
	))

	users := service.NewUserService(
		repository.NewUserRepository(db),
		repository.NewSchoolRepository(db),
		validator.New(validator.WithRequiredStructEnabled()),
		"changeme123",
		zerolog.New(io.Discard),
	)

	app := fiber.New()
	handler.NewAdminUserHandler(users, zerolog.New(io.Discard)).Register(app.Group("/api/v1/users"))

	return app, db
}

// Accounts minted through the school-admins route carry the SCHOOL_ADMIN
// role no matter what the payload claims.
func TestCreateSchoolAdminForcesRole(t *testing.T) {
	app, db := newAdminUserApp(t)

	school := models.School{
		Name:             "Green Hills Academy",
		Slug:             "green-hills-academy",
		Email:            "office@greenhills.test",
		IsActive:         true,
		SubscriptionType: models.SubscriptionFree,
	}
	require.NoError(t, db.Create(&school).Error)

	body, err := json.Marshal(dto.UserCreateRequest{
		Email:           "head@greenhills.test",
		FirstName:       "Allen",
		LastName:        "Nakato",
		Role:            models.RoleSuperAdmin,
		SchoolID:        &school.ID,
		Password:        "changeme123",
		PasswordConfirm: "changeme123",
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/users/school-admins", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var envelope struct {
		Success bool             `json:"success"`
		Data    dto.UserResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, models.RoleSchoolAdmin, envelope.Data.Role)

	var stored models.User
	require.NoError(t, db.First(&stored, envelope.Data.ID).Error)
	assert.Equal(t, models.RoleSchoolAdmin, stored.Role)
}

func TestCreateSchoolAdminRequiresSchool(t *testing.T) {
	app, _ := newAdminUserApp(t)

	body, err := json.Marshal(dto.UserCreateRequest{
		Email:           "floating@biotutor.test",
		FirstName:       "Brian",
		LastName:        "Okello",
		Password:        "changeme123",
		PasswordConfirm: "changeme123",
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/users/school-admins", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var envelope utils.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.False(t, envelope.Success)
}
