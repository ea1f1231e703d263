package router_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/config"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/events"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/handler"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/models"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/repository"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/router"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/service"
)

var routerDBSeq atomic.Int64

// stubAuth trusts the X-Test-* headers instead of a real JWT so tests can
// act as any user.
func stubAuth(c *fiber.Ctx) error {
	if role := c.Get("X-Test-Role"); role != "" {
		userID := uint(1)
		if raw := c.Get("X-Test-User"); raw != "" {
			parsed, err := strconv.ParseUint(raw, 10, 32)
			if err == nil {
				userID = uint(parsed)
			}
		}
		c.Locals("user_id", userID)
		c.Locals("user_role", role)
		if raw := c.Get("X-Test-School"); raw != "" {
			parsed, err := strconv.ParseUint(raw, 10, 32)
			if err == nil {
				c.Locals("school_id", uint(parsed))
			}
		}
	}
	return c.Next()
}

// newTestApp wires real service stacks behind the stub auth middleware.
func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:routertest%d?mode=memory&cache=shared", routerDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.School{},
		&models.User{},
		&models.CurriculumClass{},
		&models.Topic{},
		&models.Quiz{},
		&models.Question{},
		&models.AnswerChoice{},
		&models.QuizAttempt{},
		&models.AdaptiveLearningLog{},
	))

	logger := zerolog.New(io.Discard)
	validate := validator.New(validator.WithRequiredStructEnabled())

	curriculum := service.NewCurriculumService(
		repository.NewCurriculumRepository(db),
		validate,
		logger,
	)
	quizzes := service.NewQuizService(
		repository.NewQuizRepository(db),
		repository.NewCurriculumRepository(db),
		repository.NewTutorRepository(db),
		repository.NewUserRepository(db),
		events.NewPublisher(nil, logger),
		validate,
		logger,
	)
	schools := service.NewSchoolService(
		repository.NewSchoolRepository(db),
		validate,
		logger,
	)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "BioTutor API", AppEnv: "test"}, router.Dependencies{
		SchoolHandler:     handler.NewSchoolHandler(schools, logger),
		CurriculumHandler: handler.NewCurriculumHandler(curriculum, logger),
		QuizHandler:       handler.NewQuizHandler(quizzes, logger),
		JWTMiddleware:     stubAuth,
	})
	return app, db
}

func testRequest(method, target, body string, headers map[string]string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

func TestRouterEnforcesCurriculumRoles(t *testing.T) {
	app, _ := newTestApp(t)
	payload := `{"code":"S1","name":"Senior 1","order":1}`

	// Students may not curate the catalogue.
	resp, err := app.Test(testRequest(http.MethodPost, "/api/v1/classes", payload,
		map[string]string{"X-Test-Role": models.RoleStudent}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Super admins may.
	resp, err = app.Test(testRequest(http.MethodPost, "/api/v1/classes", payload,
		map[string]string{"X-Test-Role": models.RoleSuperAdmin}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// Everyone authenticated can read.
	resp, err = app.Test(testRequest(http.MethodGet, "/api/v1/classes", "",
		map[string]string{"X-Test-Role": models.RoleStudent}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope struct {
		Success bool              `json:"success"`
		Data    []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.True(t, envelope.Success)
	assert.Len(t, envelope.Data, 1)
}

func TestRouterQuizMutationsRequireOwnership(t *testing.T) {
	app, db := newTestApp(t)

	class := models.CurriculumClass{Code: "S1", Name: "Senior 1", Order: 1}
	require.NoError(t, db.Create(&class).Error)
	topic := models.Topic{CurriculumClassID: class.ID, Title: "The Cell", Description: "Cell structure", Order: 1}
	require.NoError(t, db.Create(&topic).Error)

	payload := `{"title":"Cell check","questions":[{"question_text":"Which organelle produces ATP?","order":1,"choices":[{"choice_text":"Mitochondrion","is_correct":true,"order":1},{"choice_text":"Ribosome","order":2}]}]}`
	resp, err := app.Test(testRequest(http.MethodPost, fmt.Sprintf("/api/v1/topics/%d/quizzes", topic.ID), payload,
		map[string]string{"X-Test-Role": models.RoleTeacher, "X-Test-User": "1"}), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Data struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	quizPath := fmt.Sprintf("/api/v1/quizzes/%d", created.Data.ID)

	// Another teacher may not touch it.
	resp, err = app.Test(testRequest(http.MethodPut, quizPath, `{"title":"Hijacked"}`,
		map[string]string{"X-Test-Role": models.RoleTeacher, "X-Test-User": "99"}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, err = app.Test(testRequest(http.MethodDelete, quizPath, "",
		map[string]string{"X-Test-Role": models.RoleTeacher, "X-Test-User": "99"}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// The author still can.
	resp, err = app.Test(testRequest(http.MethodPut, quizPath, `{"title":"Cell check, revised"}`,
		map[string]string{"X-Test-Role": models.RoleTeacher, "X-Test-User": "1"}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// So can a school admin.
	resp, err = app.Test(testRequest(http.MethodDelete, quizPath, "",
		map[string]string{"X-Test-Role": models.RoleSchoolAdmin, "X-Test-User": "50"}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouterSchoolDetailScopedToOwnTenant(t *testing.T) {
	app, db := newTestApp(t)

	mine := models.School{Name: "Green Hills Academy", Slug: "green-hills", Email: "office@greenhills.test", IsActive: true, SubscriptionType: models.SubscriptionFree}
	require.NoError(t, db.Create(&mine).Error)
	other := models.School{Name: "Lakeside College", Slug: "lakeside", Email: "office@lakeside.test", IsActive: true, SubscriptionType: models.SubscriptionFree}
	require.NoError(t, db.Create(&other).Error)

	minePath := fmt.Sprintf("/api/v1/schools/%d", mine.ID)
	otherPath := fmt.Sprintf("/api/v1/schools/%d", other.ID)
	mineHeader := strconv.FormatUint(uint64(mine.ID), 10)

	// A school admin reads their own tenant.
	resp, err := app.Test(testRequest(http.MethodGet, minePath, "",
		map[string]string{"X-Test-Role": models.RoleSchoolAdmin, "X-Test-School": mineHeader}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// But not anyone else's.
	resp, err = app.Test(testRequest(http.MethodGet, otherPath, "",
		map[string]string{"X-Test-Role": models.RoleSchoolAdmin, "X-Test-School": mineHeader}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Teachers have no school routes at all.
	resp, err = app.Test(testRequest(http.MethodGet, minePath, "",
		map[string]string{"X-Test-Role": models.RoleTeacher}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Super admins read any school.
	resp, err = app.Test(testRequest(http.MethodGet, otherPath, "",
		map[string]string{"X-Test-Role": models.RoleSuperAdmin}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouterTagsAPIResponses(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "BioTutor API", resp.Header.Get("X-Application"))
}
