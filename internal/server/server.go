package server

import (
	"net/http"
	"time"

	"anoa.com/campusrecruit/internal/config"
	"anoa.com/campusrecruit/internal/entity"
	"anoa.com/campusrecruit/internal/middleware"
	"anoa.com/campusrecruit/pkg/mailer"
	"anoa.com/campusrecruit/pkg/metrics"
	"anoa.com/campusrecruit/pkg/ratelimiter"
	"anoa.com/campusrecruit/pkg/storage"
	"anoa.com/campusrecruit/pkg/token"

	adminHttp "anoa.com/campusrecruit/internal/modules/admin/delivery/http"
	adminRepo "anoa.com/campusrecruit/internal/modules/admin/repository"
	adminService "anoa.com/campusrecruit/internal/modules/admin/service"

	applicationHttp "anoa.com/campusrecruit/internal/modules/application/delivery/http"
	applicationRepo "anoa.com/campusrecruit/internal/modules/application/repository"
	applicationService "anoa.com/campusrecruit/internal/modules/application/service"

	jobHttp "anoa.com/campusrecruit/internal/modules/job/delivery/http"
	jobRepo "anoa.com/campusrecruit/internal/modules/job/repository"
	jobService "anoa.com/campusrecruit/internal/modules/job/service"

	notiHttp "anoa.com/campusrecruit/internal/modules/notification/delivery/http"
	notifRepo "anoa.com/campusrecruit/internal/modules/notification/repository"
	notifService "anoa.com/campusrecruit/internal/modules/notification/service"

	profileHttp "anoa.com/campusrecruit/internal/modules/profile/delivery/http"
	profileRepo "anoa.com/campusrecruit/internal/modules/profile/repository"
	profileService "anoa.com/campusrecruit/internal/modules/profile/service"

	searchService "anoa.com/campusrecruit/internal/modules/search/service"

	uploadHttp "anoa.com/campusrecruit/internal/modules/upload/delivery/http"
	uploadService "anoa.com/campusrecruit/internal/modules/upload/service"

	userHttp "anoa.com/campusrecruit/internal/modules/user/delivery/http"
	userRepo "anoa.com/campusrecruit/internal/modules/user/repository"
	userService "anoa.com/campusrecruit/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the process-wide collaborators built by main. Redis may be nil.
type Deps struct {
	DB          *gorm.DB
	RedisClient *redis.Client
	Search      searchService.JobSearchService
	Storage     storage.FileStorage
	Mailer      mailer.Sender
}

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, deps Deps) *Server {
	db := deps.DB
	if deps.Search == nil {
		deps.Search = searchService.NewNoopSearchService()
	}

	tokens := token.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	limiter := ratelimiter.New(deps.RedisClient)

	userRepository := userRepo.NewUserRepository(db)
	profileRepository := profileRepo.NewProfileRepository(db)
	jobRepository := jobRepo.NewJobRepository(db)
	applicationRepository := applicationRepo.NewApplicationRepository(db)

	authSvc := userService.NewAuthService(userRepository, tokens, deps.Search)
	authHandler := userHttp.NewAuthHandler(authSvc)

	uploadSvc := uploadService.NewUploadService(deps.Storage)
	uploadHandler := uploadHttp.NewUploadHandler(uploadSvc)

	profileSvc := profileService.NewProfileService(profileRepository, userRepository, uploadSvc)
	profileHandler := profileHttp.NewProfileHandler(profileSvc)

	jobSvc := jobService.NewService(jobRepository, profileRepository, deps.Search, limiter, cfg.RateLimitJobCreate)
	jobHandler := jobHttp.NewJobHandler(jobSvc)

	// Notification Module
	notificationRepository := notifRepo.NewNotificationRepository(db)
	notificationSvc := notifService.NewNotificationService(notificationRepository, deps.RedisClient)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, deps.RedisClient, cfg.AllowedOrigins)
	dispatcher := notifService.NewDispatcher(deps.Mailer)

	applicationSvc := applicationService.NewService(
		applicationRepository,
		jobRepository,
		profileRepository,
		dispatcher,
		notificationSvc,
		applicationService.Config{
			PublicBaseURL: cfg.PublicBaseURL,
			MailTimeout:   cfg.MailTimeout,
		},
	)
	applicationHandler := applicationHttp.NewApplicationHandler(applicationSvc)

	adminSvc := adminService.NewAdminService(adminRepo.NewAdminRepository(db), userRepository)
	adminHandler := adminHttp.NewAdminHandler(adminSvc)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/health", "/metrics"},
	}))
	router.Use(metrics.GinMiddleware())

	router.GET("/health", health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	authMiddleware := middleware.NewAuthMiddleware(userRepository, tokens)
	requireStudent := authMiddleware.RequireRole(entity.RoleStudent)
	requireCompany := authMiddleware.RequireRole(entity.RoleCompany)

	api := router.Group("/api")
	api.GET("/health", health)

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	api.GET("/jobs", jobHandler.ListJobs)
	api.GET("/jobs/:id", jobHandler.GetJob)

	// Protected routes (apply auth middleware explicitly)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.PUT("/users/:id", authHandler.UpdateAccount)

		// Job routes
		protected.POST("/jobs", requireCompany, jobHandler.CreateJob)
		protected.PUT("/jobs/:id", requireCompany, jobHandler.UpdateJob)
		protected.DELETE("/jobs/:id", requireCompany, jobHandler.DeleteJob)

		// Application routes
		applications := protected.Group("/applications")
		{
			applications.POST("/jobs/:jobId/apply", requireStudent, applicationHandler.Apply)
			applications.GET("/me", requireStudent, applicationHandler.ListMine)
			applications.GET("/company", requireCompany, applicationHandler.ListForCompany)
			applications.GET("/company/applications", requireCompany, applicationHandler.ListCompanyApplications)
			applications.GET("/jobs/:jobId", requireCompany, applicationHandler.ListForJob)
			applications.PATCH("/:id", requireCompany, applicationHandler.UpdateStatus)
		}

		// Profile routes
		protected.GET("/student/profile", requireStudent, profileHandler.GetStudentProfile)
		protected.PUT("/student/profile", requireStudent, profileHandler.UpdateStudentProfile)

		// Upload routes
		protected.POST("/upload/resume", uploadHandler.UploadResume)
		protected.POST("/upload/file", uploadHandler.UploadFile)

		// Notification routes
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)

		// Admin routes
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.GET("/stats", adminHandler.GetStats)
			adminGroup.GET("/users", adminHandler.GetRecentUsers)
			adminGroup.GET("/jobs", adminHandler.GetRecentJobs)
		}
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: deps.RedisClient,
	}
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
