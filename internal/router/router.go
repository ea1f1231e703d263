package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/KIIZA-TREVOUR/mybiotutor/internal/config"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/handler"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/middleware"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/models"
	"github.com/KIIZA-TREVOUR/mybiotutor/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler         *handler.AuthHandler
	SchoolHandler       *handler.SchoolHandler
	AdminUserHandler    *handler.AdminUserHandler
	SchoolMemberHandler *handler.SchoolMemberHandler
	ProfileHandler      *handler.ProfileHandler
	CurriculumHandler   *handler.CurriculumHandler
	NoteHandler         *handler.NoteHandler
	VideoHandler        *handler.VideoHandler
	QuizHandler         *handler.QuizHandler
	TutorHandler        *handler.TutorHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Use provided JWT middleware, or a no-op if nil
	jwtProtected := deps.JWTMiddleware
	if jwtProtected == nil {
		jwtProtected = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Authentication
	if deps.AuthHandler != nil {
		auth := api.Group("/users/auth")
		deps.AuthHandler.RegisterPublic(auth)

		authProtected := api.Group("/users/auth", jwtProtected)
		deps.AuthHandler.RegisterProtected(authProtected)
	}

	// Schools: admins read their own school, super admins manage all.
	// The literal /my-school route registers before /:id so it wins the match.
	if deps.SchoolHandler != nil {
		schools := api.Group("/schools")
		deps.SchoolHandler.RegisterMySchool(withGuards(schools, jwtProtected, middleware.RequireRole(models.RoleSchoolAdmin)))
		deps.SchoolHandler.RegisterDetail(withGuards(schools, jwtProtected, middleware.RequireRole(models.RoleSuperAdmin, models.RoleSchoolAdmin)))
		deps.SchoolHandler.Register(withGuards(schools, jwtProtected, middleware.RequireRole(models.RoleSuperAdmin)))
	}

	// Platform-wide user administration
	if deps.AdminUserHandler != nil {
		users := api.Group("/users", jwtProtected, middleware.RequireRole(models.RoleSuperAdmin))
		deps.AdminUserHandler.Register(users)
	}

	// School-scoped member management
	if deps.SchoolMemberHandler != nil {
		school := api.Group("/school", jwtProtected, middleware.RequireRole(models.RoleSchoolAdmin))
		deps.SchoolMemberHandler.Register(school)
	}

	// Own-profile endpoints
	if deps.ProfileHandler != nil {
		teacher := api.Group("/teacher", jwtProtected, middleware.RequireRole(models.RoleTeacher))
		deps.ProfileHandler.RegisterTeacher(teacher)

		student := api.Group("/student", jwtProtected, middleware.RequireRole(models.RoleStudent))
		deps.ProfileHandler.RegisterStudent(student)
	}

	// Curriculum catalogue: readable by every role, curated by super admins.
	if deps.CurriculumHandler != nil {
		deps.CurriculumHandler.RegisterReads(withGuards(api, jwtProtected))
		deps.CurriculumHandler.RegisterWrites(withGuards(api, jwtProtected, middleware.RequireRole(models.RoleSuperAdmin)))
	}

	// Study notes
	if deps.NoteHandler != nil {
		deps.NoteHandler.RegisterReads(withGuards(api, jwtProtected))
		deps.NoteHandler.RegisterTeacher(withGuards(api, jwtProtected, middleware.RequireRole(models.RoleTeacher)))
		deps.NoteHandler.RegisterManage(withGuards(api, jwtProtected, middleware.RequireRole(models.RoleTeacher, models.RoleSchoolAdmin, models.RoleSuperAdmin)))
		deps.NoteHandler.RegisterReview(withGuards(api, jwtProtected, middleware.RequireRole(models.RoleSuperAdmin, models.RoleSchoolAdmin)))
	}

	// Video resources
	if deps.VideoHandler != nil {
		deps.VideoHandler.RegisterReads(withGuards(api, jwtProtected))
		deps.VideoHandler.RegisterWrites(withGuards(api, jwtProtected, middleware.RequireRole(models.RoleTeacher, models.RoleSchoolAdmin, models.RoleSuperAdmin)))
	}

	// Quizzes and graded attempts
	if deps.QuizHandler != nil {
		deps.QuizHandler.RegisterReads(withGuards(api, jwtProtected))
		deps.QuizHandler.RegisterAuthoring(withGuards(api, jwtProtected, middleware.RequireRole(models.RoleTeacher, models.RoleSchoolAdmin, models.RoleSuperAdmin)))
		deps.QuizHandler.RegisterStudent(withGuards(api, jwtProtected, middleware.RequireRole(models.RoleStudent)))
	}

	// AI tutor, student-only and rate limited per user
	if deps.TutorHandler != nil {
		tutor := api.Group("/tutor",
			jwtProtected,
			middleware.RequireRole(models.RoleStudent),
			middleware.RateLimit("tutor", cfg.TutorRateLimit, cfg.TutorRateWindow),
		)
		deps.TutorHandler.Register(tutor)
	}
}
