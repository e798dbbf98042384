package server

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/Mrabbi3/ConceptsPro/internal/config"
	"github.com/Mrabbi3/ConceptsPro/internal/handler"
	"github.com/Mrabbi3/ConceptsPro/internal/middleware"
	"github.com/Mrabbi3/ConceptsPro/internal/repository"
	"github.com/Mrabbi3/ConceptsPro/internal/service"
	"github.com/Mrabbi3/ConceptsPro/pkg/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	cfg         *config.Config
	redisClient *redis.Client
	cronRunner  *cron.Cron
}

func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Storage driver. Local disk by default; Cloudinary when configured.
	var fileStore storage.FileStorage
	var localStore *storage.LocalStorage
	if cfg.StorageDriver == "cloudinary" {
		cloudStore, err := storage.NewCloudinaryStorage()
		if err != nil {
			return nil, err
		}
		fileStore = cloudStore
	} else {
		local, err := storage.NewLocalStorage(cfg.UploadDir, "/api/files")
		if err != nil {
			return nil, err
		}
		fileStore = local
		localStore = local
	}

	var searchSvc service.SearchService
	if cfg.MeiliSearchHost != "" {
		host := cfg.MeiliSearchHost
		if !strings.HasPrefix(host, "http") {
			host = "http://" + host + ":7700"
		}
		meiliClient := meilisearch.New(host, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		searchSvc = service.NewSearchService(meiliClient, cfg.MeiliMasterKey)
	}

	notificationSvc := service.NewNotificationService(notificationRepo, redisClient)

	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL)
	courseSvc := service.NewCourseService(courseRepo, enrollmentRepo, searchSvc)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, submissionRepo, courseRepo, enrollmentRepo, redisClient, cfg.SubmitRateLimit)
	gradeSvc := service.NewGradeService(gradeRepo, submissionRepo, assignmentRepo, courseRepo, notificationSvc)
	announcementSvc := service.NewAnnouncementService(announcementRepo, courseRepo, enrollmentRepo, notificationSvc, searchSvc)
	fileSvc := service.NewFileService(fileStore, localStore, submissionRepo, cfg.MaxUploadSize)

	authHandler := handler.NewAuthHandler(authSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc)
	gradeHandler := handler.NewGradeHandler(gradeSvc)
	announcementHandler := handler.NewAnnouncementHandler(announcementSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc, redisClient)
	fileHandler := handler.NewFileHandler(fileSvc, localStore)

	cronRunner := cron.New()
	if localStore != nil {
		_, err := cronRunner.AddFunc("0 */12 * * *", func() {
			log.Println("Running orphan upload cleanup...")
			if err := fileSvc.CleanupOrphanUploads(context.Background(), "submissions", 24*time.Hour); err != nil {
				log.Printf("Error cleaning up orphan uploads: %v", err)
			} else {
				log.Println("Orphan upload cleanup completed.")
			}
		})
		if err != nil {
			return nil, err
		}
	}

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(userRepo, cfg.JWTSecret)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Protected routes
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.PUT("/auth/me", authHandler.UpdateMe)

		// Course routes
		protected.GET("/courses", courseHandler.List)
		protected.POST("/courses", courseHandler.Create)
		protected.GET("/courses/:id", courseHandler.Get)
		protected.PUT("/courses/:id", courseHandler.Update)
		protected.POST("/courses/:id/enroll", courseHandler.Enroll)
		protected.POST("/courses/:id/unenroll", courseHandler.Unenroll)
		protected.GET("/courses/:id/students", courseHandler.ListStudents)
		protected.GET("/courses/:id/grades", gradeHandler.CourseGrades)

		// Assignment routes
		protected.GET("/courses/:id/assignments", assignmentHandler.ListByCourse)
		protected.POST("/courses/:id/assignments", assignmentHandler.Create)
		protected.GET("/assignments/:id", assignmentHandler.Get)
		protected.PUT("/assignments/:id", assignmentHandler.Update)
		protected.DELETE("/assignments/:id", assignmentHandler.Delete)
		protected.POST("/assignments/:id/submit", assignmentHandler.Submit)
		protected.GET("/assignments/:id/submissions", assignmentHandler.ListSubmissions)
		protected.GET("/submissions/me", assignmentHandler.MySubmissions)

		// Grade routes
		protected.POST("/submissions/:id/grade", gradeHandler.Grade)
		protected.POST("/submissions/:id/release", gradeHandler.Release)
		protected.GET("/grades/me", gradeHandler.MyGrades)

		// Announcement routes
		protected.GET("/courses/:id/announcements", announcementHandler.ListByCourse)
		protected.POST("/courses/:id/announcements", announcementHandler.Create)
		protected.PUT("/announcements/:id", announcementHandler.Update)
		protected.DELETE("/announcements/:id", announcementHandler.Delete)

		// Notification routes
		protected.GET("/notifications", notificationHandler.List)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.DELETE("/notifications/:id", notificationHandler.Delete)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)

		// File routes
		protected.POST("/files/upload/:folder", fileHandler.Upload)
		protected.POST("/files/upload/multiple/:folder", fileHandler.UploadMultiple)
		protected.GET("/files/:folder/:filename", fileHandler.Serve)

		if searchSvc != nil {
			searchHandler := handler.NewSearchHandler(searchSvc)
			protected.GET("/search/token", searchHandler.Token)
		}
	}

	return &Server{
		engine:      router,
		cfg:         cfg,
		redisClient: redisClient,
		cronRunner:  cronRunner,
	}, nil
}

func (s *Server) Run(addr string) error {
	s.cronRunner.Start()
	defer s.cronRunner.Stop()

	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
