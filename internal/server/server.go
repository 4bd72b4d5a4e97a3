package server

import (
	"context"
	"net/http"
	"time"

	"anoa.com/feedbackportal/internal/config"
	"anoa.com/feedbackportal/internal/middleware"
	"anoa.com/feedbackportal/internal/scheduler"

	feedbackHttp "anoa.com/feedbackportal/internal/modules/feedback/delivery/http"
	feedbackRepo "anoa.com/feedbackportal/internal/modules/feedback/repository"
	feedbackService "anoa.com/feedbackportal/internal/modules/feedback/service"

	messageHttp "anoa.com/feedbackportal/internal/modules/message/delivery/http"
	messageRepo "anoa.com/feedbackportal/internal/modules/message/repository"
	messageService "anoa.com/feedbackportal/internal/modules/message/service"

	notiHttp "anoa.com/feedbackportal/internal/modules/notification/delivery/http"
	notifRepo "anoa.com/feedbackportal/internal/modules/notification/repository"
	notifService "anoa.com/feedbackportal/internal/modules/notification/service"

	searchHttp "anoa.com/feedbackportal/internal/modules/search/delivery/http"
	searchService "anoa.com/feedbackportal/internal/modules/search/service"

	subjectHttp "anoa.com/feedbackportal/internal/modules/subject/delivery/http"
	subjectRepo "anoa.com/feedbackportal/internal/modules/subject/repository"
	subjectService "anoa.com/feedbackportal/internal/modules/subject/service"

	teacherHttp "anoa.com/feedbackportal/internal/modules/teacher/delivery/http"
	teacherRepo "anoa.com/feedbackportal/internal/modules/teacher/repository"
	teacherService "anoa.com/feedbackportal/internal/modules/teacher/service"

	userHttp "anoa.com/feedbackportal/internal/modules/user/delivery/http"
	userRepo "anoa.com/feedbackportal/internal/modules/user/repository"
	userService "anoa.com/feedbackportal/internal/modules/user/service"

	voteHttp "anoa.com/feedbackportal/internal/modules/vote/delivery/http"
	voteRepo "anoa.com/feedbackportal/internal/modules/vote/repository"
	voteService "anoa.com/feedbackportal/internal/modules/vote/service"

	"anoa.com/feedbackportal/pkg/validator"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	scheduler   *scheduler.Scheduler
	log         *zap.Logger
}

// NewServer wires repositories, services and handlers. redisClient may be
// nil; search indexing is enabled only when cfg names a Meilisearch host.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, log *zap.Logger) (*Server, error) {
	if err := validator.RegisterBindingValidations(); err != nil {
		return nil, err
	}

	userRepo := userRepo.NewUserRepository(db)
	subjectRepo := subjectRepo.NewSubjectRepository(db)
	teacherRepo := teacherRepo.NewTeacherRepository(db)
	feedbackRepo := feedbackRepo.NewFeedbackRepository(db)
	messageRepo := messageRepo.NewMessageRepository(db)
	voteRepo := voteRepo.NewVoteRepository(db)
	notificationRepository := notifRepo.NewNotificationRepository(db)

	var indexer searchService.FeedbackIndexer
	if cfg.SearchEnabled() {
		meiliClient := meilisearch.New(cfg.MeiliSearchHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		indexer = searchService.NewMeiliIndexer(meiliClient, cfg.MeiliIndex, log)
	}

	// Notification Module
	notificationSvc := notifService.NewNotificationService(notificationRepository, redisClient, log)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, redisClient, cfg.AllowedOrigins, log)

	voteSvc := voteService.NewVoteService(voteRepo, redisClient, notificationSvc, log)
	voteHandler := voteHttp.NewVoteHandler(voteSvc, log)

	authSvc := userService.NewAuthService(userRepo, feedbackRepo, cfg.JWTSecret, cfg.JWTTTL, log)
	authHandler := userHttp.NewAuthHandler(authSvc, log)

	subjectSvc := subjectService.NewSubjectService(subjectRepo, feedbackRepo, log)
	subjectHandler := subjectHttp.NewSubjectHandler(subjectSvc, log)

	teacherSvc := teacherService.NewTeacherService(teacherRepo, feedbackRepo, log)
	teacherHandler := teacherHttp.NewTeacherHandler(teacherSvc, log)

	feedbackSvc := feedbackService.NewFeedbackService(feedbackRepo, subjectRepo, teacherRepo, messageRepo, userRepo, voteSvc, indexer, log)
	feedbackHandler := feedbackHttp.NewFeedbackHandler(feedbackSvc, log)

	messageSvc := messageService.NewMessageService(messageRepo, feedbackRepo, userRepo, voteSvc, notificationSvc, redisClient, cfg.RateLimitMessage, log)
	messageHandler := messageHttp.NewMessageHandler(messageSvc, log)

	searchSvc := searchService.NewSearchService(feedbackRepo, subjectRepo, teacherRepo, messageRepo, indexer, log)
	searchHandler := searchHttp.NewSearchHandler(searchSvc, log)

	jobs := scheduler.New(log)
	if indexer != nil {
		if err := jobs.Register(searchService.NewReindexJob(searchSvc, cfg.SearchReindexCron)); err != nil {
			return nil, err
		}
	}

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(gin.Recovery())

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	public := api.Group("")
	public.Use(authMiddleware.OptionalAuth())
	{
		public.GET("/home", searchHandler.Home)
		public.GET("/search", searchHandler.Search)

		public.GET("/subjects", subjectHandler.ListSubjects)
		public.GET("/subjects/:code", subjectHandler.GetProfile)
		public.GET("/teachers", teacherHandler.ListTeachers)
		public.GET("/teachers/:id", teacherHandler.GetProfile)
		public.GET("/users/:id", authHandler.GetProfile)

		public.GET("/feedbacks/:id", feedbackHandler.GetThread)
		public.GET("/messages/:id/score", voteHandler.GetScore)
	}

	// Protected routes (apply auth middleware explicitly)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.GET("/me", authHandler.Me)

		protected.POST("/subjects", subjectHandler.CreateSubject)
		protected.POST("/teachers", teacherHandler.CreateTeacher)

		// Feedback routes
		protected.POST("/feedbacks", feedbackHandler.CreateFeedback)
		protected.POST("/feedbacks/forum", feedbackHandler.CreateForumFeedback)
		protected.DELETE("/feedbacks/:id", feedbackHandler.DeleteFeedback)
		protected.POST("/feedbacks/:id/messages", messageHandler.CreateMessage)

		// Message routes
		protected.PUT("/messages/:id", messageHandler.UpdateMessage)
		protected.DELETE("/messages/:id", messageHandler.DeleteMessage)
		protected.POST("/messages/:id/upvote", voteHandler.Upvote)
		protected.POST("/messages/:id/downvote", voteHandler.Downvote)
		protected.POST("/votes", voteHandler.ToggleVote)

		// Notification routes
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
		scheduler:   jobs,
		log:         log,
	}, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// StartJobs starts the background scheduler. Stop it with Shutdown.
func (s *Server) StartJobs() {
	s.scheduler.Start()
}

// RunJob triggers a registered background job immediately.
func (s *Server) RunJob(ctx context.Context, name string) error {
	return s.scheduler.RunByName(ctx, name)
}

func (s *Server) Shutdown() {
	s.scheduler.Stop()
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
