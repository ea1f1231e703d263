package service_test

import (
	"fmt"
	"io"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/models"
)

var testDBSeq atomic.Int64

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:servicetest%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.School{},
		&models.User{},
		&models.TeacherProfile{},
		&models.StudentProfile{},
		&models.CurriculumClass{},
		&models.Topic{},
		&models.ContentNote{},
		&models.VideoResource{},
		&models.Quiz{},
		&models.Question{},
		&models.AnswerChoice{},
		&models.QuizAttempt{},
		&models.ChatSession{},
		&models.ChatMessage{},
		&models.AdaptiveLearningLog{},
	))

	return db
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func seedSchool(t *testing.T, db *gorm.DB, name string) models.School {
	t.Helper()

	school := models.School{
		Name:             name,
		Slug:             fmt.Sprintf("%s-%d", name, testDBSeq.Add(1)),
		Email:            "office@school.test",
		IsActive:         true,
		SubscriptionType: models.SubscriptionFree,
	}
	require.NoError(t, db.Create(&school).Error)

	return school
}

func seedUser(t *testing.T, db *gorm.DB, email, password, role string, schoolID *uint) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		SchoolID:     schoolID,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&user).Error)

	return user
}

func seedStudent(t *testing.T, db *gorm.DB, email string, schoolID uint) models.User {
	t.Helper()

	user := seedUser(t, db, email, "password123", models.RoleStudent, &schoolID)
	profile := models.StudentProfile{
		UserID:     user.ID,
		ClassLevel: "S2",
		StudentID:  fmt.Sprintf("STD%d-%06d", schoolID, user.ID),
	}
	require.NoError(t, db.Create(&profile).Error)

	return user
}

func seedTopic(t *testing.T, db *gorm.DB, code, title string) models.Topic {
	t.Helper()

	class := models.CurriculumClass{
		Code:  code,
		Name:  "Senior " + code[1:],
		Order: uint(testDBSeq.Add(1)),
	}
	require.NoError(t, db.Create(&class).Error)

	topic := models.Topic{
		CurriculumClassID: class.ID,
		Title:             title,
		Description:       "Test topic",
		Order:             1,
	}
	require.NoError(t, db.Create(&topic).Error)

	return topic
}
