package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/wahegurunursing/classes-api/config"
	"github.com/wahegurunursing/classes-api/database"
	"github.com/wahegurunursing/classes-api/handlers"
	auth_handlers "github.com/wahegurunursing/classes-api/handlers/auth"
	contact_handlers "github.com/wahegurunursing/classes-api/handlers/contact"
	course_handlers "github.com/wahegurunursing/classes-api/handlers/course"
	enrollment_handlers "github.com/wahegurunursing/classes-api/handlers/enrollment"
	user_handlers "github.com/wahegurunursing/classes-api/handlers/user"
	"github.com/wahegurunursing/classes-api/model"
	"github.com/wahegurunursing/classes-api/services"
	cronsvc "github.com/wahegurunursing/classes-api/services/cron"
	"github.com/wahegurunursing/classes-api/services/storage"
	"github.com/wahegurunursing/classes-api/utils/auth"
	"github.com/wahegurunursing/classes-api/utils/cache"
	"github.com/wahegurunursing/classes-api/utils/middleware"
)

// Dependencies holds the long-lived pieces wired up by SetupRoutes so the
// caller can manage their lifecycle.
type Dependencies struct {
	CronManager *cronsvc.CronManager
	RedisCache  *cache.RedisCache
}

// SetupRoutes wires middleware, services and handlers onto the app
func SetupRoutes(app *fiber.App, store database.Storage, env *config.EnviornmentVariable) (*Dependencies, error) {
	if env.JWT_SECRET == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := env.JWT_ISSUER
	if jwtIssuer == "" {
		jwtIssuer = "waheguru-nursing-classes-api"
	}

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret:        env.JWT_SECRET,
		Expiry:        24 * time.Hour,
		RefreshExpiry: 7 * 24 * time.Hour,
		Issuer:        jwtIssuer,
	})

	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Redis backs the IP brute force limiter and the featured course
	// cache; the API still works without it.
	redisURL := env.REDIS_URL
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}
	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Warnw("Redis unavailable, brute force protection and caching disabled", "error", err)
		redisCache = nil
	}

	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	// Object storage for issued certificates, optional
	var spacesClient *storage.SpacesClient
	if env.SPACES_ACCESS_KEY != "" && env.SPACES_SECRET_KEY != "" {
		spacesClient, err = storage.NewSpacesClient(storage.SpacesConfig{
			AccessKey: env.SPACES_ACCESS_KEY,
			SecretKey: env.SPACES_SECRET_KEY,
			Bucket:    env.SPACES_BUCKET,
			Region:    env.SPACES_REGION,
			Endpoint:  env.SPACES_ENDPOINT,
		})
		if err != nil {
			log.Warnw("Spaces unavailable, certificate uploads disabled", "error", err)
			spacesClient = nil
		}
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	emailService := services.NewEmailService(env)
	courseService := services.NewCourseService(db)
	enrollmentService := services.NewEnrollmentService(db, courseService, spacesClient)
	contactService := services.NewContactService(db, emailService)

	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection, emailService)
	courseHandler := course_handlers.NewCourseHandler(db, courseService, redisCache)
	enrollmentHandler := enrollment_handlers.NewEnrollmentHandler(db, enrollmentService)
	userHandler := user_handlers.NewUserHandler(db)
	contactHandler := contact_handlers.NewContactHandler(contactService)

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    env.ALLOWED_ORIGINS,
		RateLimitRequests: 100,
		RateLimitWindow:   1 * time.Minute,
	})

	// Health check endpoint (public)
	app.Get("/health", func(c *fiber.Ctx) error {
		return handlers.HandleCheckHealth(c, store)
	})

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}
	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Get("/verify-email", authHandler.VerifyEmail)
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)

	// Course routes
	courses := api.Group("/courses")
	courses.Get("/", authMiddleware.Optional(), courseHandler.List)
	courses.Get("/featured", courseHandler.Featured)
	courses.Get("/instructor/my-courses",
		authMiddleware.Required(),
		authMiddleware.RequireRole(model.RoleInstructor, model.RoleAdmin),
		courseHandler.MyCourses)
	courses.Get("/:id", authMiddleware.Optional(), courseHandler.Get)
	courses.Post("/",
		authMiddleware.Required(),
		authMiddleware.RequireRole(model.RoleInstructor, model.RoleAdmin),
		courseHandler.Create)

	// Mutations are allowed for the owning instructor or an admin
	ownsCourse := middleware.OwnerOrRoles(func(c *fiber.Ctx, userID uint) (bool, error) {
		id, err := c.ParamsInt("id")
		if err != nil || id < 1 {
			return false, nil
		}
		var course model.Course
		if err := db.Select("instructor_id").First(&course, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return false, nil
			}
			return false, err
		}
		return course.InstructorID == userID, nil
	}, model.RoleAdmin)

	courses.Put("/:id", authMiddleware.Required(), ownsCourse, courseHandler.Update)
	courses.Delete("/:id", authMiddleware.Required(), ownsCourse, courseHandler.Delete)
	courses.Patch("/:id/status", authMiddleware.Required(), ownsCourse, courseHandler.SetStatus)
	courses.Post("/:id/modules", authMiddleware.Required(), ownsCourse, courseHandler.AddModule)
	courses.Post("/:id/modules/:moduleId/lessons", authMiddleware.Required(), ownsCourse, courseHandler.AddLesson)
	courses.Delete("/:id/modules/:moduleId", authMiddleware.Required(), ownsCourse, courseHandler.DeleteModule)
	courses.Get("/:id/reviews", courseHandler.ListReviews)
	courses.Post("/:id/reviews", authMiddleware.Required(), courseHandler.AddReview)
	courses.Get("/:id/stats", authMiddleware.Required(), ownsCourse, courseHandler.Stats)

	// Enrollment routes (all protected)
	enrollments := api.Group("/enrollments", authMiddleware.Required())
	enrollments.Get("/stats", authMiddleware.RequireRole(model.RoleAdmin), enrollmentHandler.Stats)
	enrollments.Get("/", enrollmentHandler.List)
	enrollments.Post("/", enrollmentHandler.Enroll)
	enrollments.Get("/:id", enrollmentHandler.Get)
	enrollments.Delete("/:id", enrollmentHandler.Cancel)
	enrollments.Put("/:id", enrollmentHandler.SetStatus)
	enrollments.Put("/:id/status", enrollmentHandler.SetStatus)
	enrollments.Put("/:id/progress", enrollmentHandler.UpdateProgress)
	enrollments.Post("/:id/payments", enrollmentHandler.AddPayment)
	enrollments.Post("/:id/payments/:paymentId/refund",
		authMiddleware.RequireRole(model.RoleAdmin), enrollmentHandler.RefundPayment)
	enrollments.Post("/:id/attendance", enrollmentHandler.MarkAttendance)
	enrollments.Post("/:id/notes", enrollmentHandler.AddNote)
	enrollments.Post("/:id/grades", enrollmentHandler.AddGrade)
	enrollments.Post("/:id/certificate", enrollmentHandler.IssueCertificate)

	// User routes
	users := api.Group("/users", authMiddleware.Required())
	users.Get("/profile", userHandler.GetProfile)
	users.Put("/profile", userHandler.UpdateProfile)
	users.Put("/change-password", userHandler.ChangePassword)
	users.Put("/deactivate", userHandler.Deactivate)

	// Admin user management
	users.Get("/stats", authMiddleware.RequireRole(model.RoleAdmin), userHandler.Stats)
	users.Get("/", authMiddleware.RequireRole(model.RoleAdmin), userHandler.List)
	users.Get("/:id", authMiddleware.RequireRole(model.RoleAdmin), userHandler.Get)
	users.Put("/:id", authMiddleware.RequireRole(model.RoleAdmin), userHandler.Update)
	users.Delete("/:id", authMiddleware.RequireRole(model.RoleAdmin), userHandler.Delete)
	users.Put("/:id/reactivate", authMiddleware.RequireRole(model.RoleAdmin), userHandler.Reactivate)

	// Contact form (public)
	contact := api.Group("/contact")
	contact.Post("/", contactHandler.Submit)
	contact.Get("/status", contactHandler.Status)

	cronManager := cronsvc.NewCronManager(db, courseService, contactService)

	return &Dependencies{
		CronManager: cronManager,
		RedisCache:  redisCache,
	}, nil
}
