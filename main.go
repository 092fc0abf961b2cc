package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tasknest/backend/internal/cache"
	"tasknest/backend/internal/config"
	"tasknest/backend/internal/database"
	"tasknest/backend/internal/handlers"
	"tasknest/backend/internal/middleware"
	"tasknest/backend/internal/monitoring"
	"tasknest/backend/internal/scheduler"
	"tasknest/backend/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis is optional: without it the pending-login slots live in
	// process memory and dashboard stats are computed on every request.
	var redisCache *cache.RedisCache
	rc := cache.NewRedisCache(cfg)
	if err := rc.Ping(); err != nil {
		log.Printf("Redis unavailable, falling back to in-memory stores: %v", err)
		rc.Close()
	} else {
		redisCache = rc
		defer redisCache.Close()
	}

	reminderService := services.NewReminderService()
	poller := scheduler.NewPoller(db, reminderService, nil, cfg.Scheduler.PollInterval)

	router := setupRouter(cfg, db, redisCache, reminderService, poller)

	monitoring.RegisterHealthCheck("database", func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
	if redisCache != nil {
		monitoring.RegisterHealthCheck("redis", func(ctx context.Context) error {
			return redisCache.Ping()
		})
	}

	if err := poller.Start(); err != nil {
		log.Fatalf("Failed to start reminder poller: %v", err)
	}

	server := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	poller.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}

func setupRouter(cfg *config.Config, db *gorm.DB, redisCache *cache.RedisCache, reminderService services.ReminderService, poller *scheduler.Poller) *gin.Engine {
	var pendingStore cache.PendingLoginStore
	if redisCache != nil {
		pendingStore = cache.NewRedisPendingLoginStore(redisCache, cfg.Auth.PendingLoginTTL)
	} else {
		pendingStore = cache.NewMemoryPendingLoginStore(cfg.Auth.PendingLoginTTL)
	}

	var dashboardService services.DashboardService = services.NewDashboardService()
	if redisCache != nil {
		dashboardService = services.NewCachedDashboardService(dashboardService, redisCache, 5*time.Minute)
	}

	authService := services.NewAuthService(cfg.Auth, pendingStore)
	registerService := services.NewRegisterService(cfg.Auth)
	twoFactorService := services.NewTwoFactorService(cfg.Auth)
	taskService := services.NewTaskService()
	userService := services.NewUserService(cfg.Auth)
	examService := services.NewExamService()

	authHandler := handlers.NewAuthHandler(db, authService)
	registerHandler := handlers.NewRegisterHandler(db, registerService)
	refreshHandler := handlers.NewRefreshHandler(db, authService)
	logoutHandler := handlers.NewLogoutHandler(db, authService)
	twoFactorHandler := handlers.NewTwoFactorHandler(db, twoFactorService)
	taskHandler := handlers.NewTaskHandler(db, taskService, dashboardService)
	reminderHandler := handlers.NewReminderHandler(db, reminderService, dashboardService)
	userHandler := handlers.NewUserHandler(db, userService, authService)
	examHandler := handlers.NewExamHandler(db, examService)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(middleware.RecoveryWithLog())
	router.Use(monitoring.MetricsMiddleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	loginLimiter := middleware.NewRateLimiter(cfg.RateLimit)

	router.GET("/health", monitoring.HealthHandler())
	router.GET("/livez", monitoring.LivenessHandler())
	router.GET("/metrics", monitoring.MetricsHandler(func() (string, interface{}) {
		return "reminder_poller", poller.Stats()
	}))

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		auth.Use(loginLimiter.Middleware())
		{
			auth.POST("/register", registerHandler.Registration)
			auth.POST("/login", authHandler.Login)
			auth.POST("/login/verify", authHandler.VerifySecondFactor)
			auth.POST("/refresh", refreshHandler.Refresh)
		}

		protected := api.Group("")
		protected.Use(middleware.AuthRequired(cfg.Auth))
		{
			protected.POST("/auth/logout", logoutHandler.Logout)

			protected.GET("/users/me", userHandler.GetProfile)
			protected.PUT("/users/me", userHandler.UpdateProfile)
			protected.PUT("/users/me/password", userHandler.ChangePassword)
			protected.DELETE("/users/me", userHandler.DeleteAccount)

			protected.POST("/users/me/2fa/setup", twoFactorHandler.Setup)
			protected.POST("/users/me/2fa/enable", twoFactorHandler.Enable)
			protected.POST("/users/me/2fa/disable", twoFactorHandler.Disable)

			protected.POST("/tasks", taskHandler.CreateTask)
			protected.GET("/tasks", taskHandler.ListTasks)
			protected.GET("/tasks/:id", taskHandler.GetTask)
			protected.PUT("/tasks/:id", taskHandler.UpdateTask)
			protected.DELETE("/tasks/:id", taskHandler.DeleteTask)
			protected.POST("/tasks/:id/complete", taskHandler.CompleteTask)
			protected.PATCH("/tasks/:id/status", taskHandler.SetStatus)
			protected.POST("/tasks/:id/progress", taskHandler.RecordProgress)
			protected.GET("/tasks/:id/progress", taskHandler.ProgressHistory)

			protected.POST("/reminders", reminderHandler.CreateReminder)
			protected.GET("/reminders", reminderHandler.ListReminders)
			protected.GET("/reminders/due", reminderHandler.DueReminders)
			protected.POST("/reminders/:id/seen", reminderHandler.MarkSeen)
			protected.DELETE("/reminders/:id", reminderHandler.DeleteReminder)

			protected.POST("/exams", examHandler.CreateExam)
			protected.GET("/exams", examHandler.ListExams)
			protected.PUT("/exams/:id", examHandler.UpdateExam)
			protected.DELETE("/exams/:id", examHandler.DeleteExam)

			protected.GET("/dashboard", taskHandler.Dashboard)
			protected.GET("/calendar/events", taskHandler.CalendarEvents)
		}
	}

	return router
}
