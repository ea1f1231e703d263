package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/config"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/database"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/events"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/handler"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/middleware"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/models"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/repository"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/router"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/service"
	"github.com/KIIZA-TREVOUR/mybiotutor/pkg/ai"
	cloud "github.com/KIIZA-TREVOUR/mybiotutor/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
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
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	// The event bus and tutor model are optional: the API keeps serving when
	// they are unavailable, just without their features.
	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, domain events disabled")
			natsConn = nil
		}
	}
	publisher := events.NewPublisher(natsConn, logger)

	var tutorModel ai.Tutor
	if cfg.OpenAIAPIKey != "" {
		openAITutor, err := ai.NewOpenAITutor(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.TutorModel,
			Logger: logger,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("tutor model unavailable, falling back to note retrieval only")
		} else {
			tutorModel = openAITutor
		}
	} else {
		logger.Warn().Msg("no OpenAI API key configured, tutor runs in retrieval-only mode")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	schoolRepo := repository.NewSchoolRepository(db)
	userRepo := repository.NewUserRepository(db)
	curriculumRepo := repository.NewCurriculumRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	tutorRepo := repository.NewTutorRepository(db)

	tokenService := service.NewTokenService(service.TokenConfig{
		AccessSecret:  cfg.JWTSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
		ResetTTL:      cfg.PasswordResetTTL,
	}, redisClient, logger)

	authService := service.NewAuthService(userRepo, tokenService, validate, logger)
	schoolService := service.NewSchoolService(schoolRepo, validate, logger)
	userService := service.NewUserService(userRepo, schoolRepo, validate, cfg.DefaultStudentPassword, logger)
	profileService := service.NewProfileService(userRepo, validate, logger)
	curriculumService := service.NewCurriculumService(curriculumRepo, validate, logger)
	noteService := service.NewNoteService(noteRepo, curriculumRepo, uploader, publisher, validate, cfg.NoteMaxSizeMB, logger)
	videoService := service.NewVideoService(videoRepo, curriculumRepo, validate, logger)
	quizService := service.NewQuizService(quizRepo, curriculumRepo, tutorRepo, userRepo, publisher, validate, logger)
	tutorService := service.NewTutorService(tutorRepo, noteRepo, userRepo, tutorModel, validate, cfg.TutorMaxSources, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:         handler.NewAuthHandler(authService, logger),
		SchoolHandler:       handler.NewSchoolHandler(schoolService, logger),
		AdminUserHandler:    handler.NewAdminUserHandler(userService, logger),
		SchoolMemberHandler: handler.NewSchoolMemberHandler(userService, logger),
		ProfileHandler:      handler.NewProfileHandler(profileService, logger),
		CurriculumHandler:   handler.NewCurriculumHandler(curriculumService, logger),
		NoteHandler:         handler.NewNoteHandler(noteService, logger),
		VideoHandler:        handler.NewVideoHandler(videoService, logger),
		QuizHandler:         handler.NewQuizHandler(quizService, logger),
		TutorHandler:        handler.NewTutorHandler(tutorService, logger),
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret, tokenService),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, natsConn)
}

func waitForShutdown(app *fiber.App, natsConn *nats.Conn) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	if natsConn != nil {
		natsConn.Close()
	}

	log.Println("server stopped")
}
