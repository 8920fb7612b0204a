package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"skillsprint/config"
	_ "skillsprint/docs" // Important for Swagger
	"skillsprint/internal/aiclient"
	"skillsprint/internal/conversation"
	"skillsprint/internal/delivery/http/middleware"
	v1 "skillsprint/internal/delivery/http/v1"
	"skillsprint/internal/identity"
	"skillsprint/internal/metrics"
	"skillsprint/internal/objectstore"
	"skillsprint/internal/profilecache"
	"skillsprint/internal/repository/postgres"
	"skillsprint/internal/session"
	"skillsprint/internal/usecase"
	"skillsprint/pkg/auth"
	"skillsprint/pkg/database"
	"skillsprint/pkg/logger"
	"skillsprint/pkg/redis"
	"skillsprint/pkg/security"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	profileCacheTTL = 24 * time.Hour
	refreshTokenTTL = 30 * 24 * time.Hour
)

// @title           SkillSprint API
// @version         1.0
// @description     Backend-for-frontend of the SkillSprint career platform.
// @host            localhost:8080
// @BasePath        /
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting SkillSprint backend", "port", cfg.Port)
	if strings.EqualFold(os.Getenv("GIN_MODE"), gin.ReleaseMode) {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Setup Database
	if cfg.RunMigrations {
		if err := database.RunMigrations(cfg.DBUrl); err != nil {
			logger.Log.Error("Failed to run migrations", "error", err)
			os.Exit(1)
		}
	}
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Redis (optional)
	if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
		if errors.Is(err, redis.ErrNotConfigured) {
			logger.Log.Info("Redis not configured, using in-memory stores")
		} else {
			logger.Log.Warn("Redis unavailable, using in-memory stores", "error", err)
		}
	}
	redisClient := redis.Client()
	defer redis.Close()

	// 5. Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	// 6. Setup Repositories
	userRepo := postgres.NewUserRepository(dbPool)
	jobRepo := postgres.NewJobRepository(dbPool)
	courseRepo := postgres.NewCourseRepository(dbPool)
	conversationRepo := postgres.NewConversationRepository(dbPool)

	// 7. Identity and sessions
	jwksProvider := auth.NewProvider(cfg.SupabaseUrl + "/auth/v1/.well-known/jwks.json")
	verifier := auth.NewVerifier(cfg.SupabaseJWTSecret, jwksProvider)

	tokens := identity.NewMemoryTokenStore()
	cache := profilecache.NewMemoryCache()
	if redisClient != nil {
		tokens = identity.NewRedisTokenStore(redisClient)
		cache = profilecache.NewRedisCache(redisClient, profileCacheTTL)
	}

	sessions := session.NewManager(session.ManagerConfig{
		Provider:    identity.NewGoTrue(cfg.SupabaseUrl, cfg.SupabaseKey),
		Tokens:      tokens,
		Verifier:    verifier,
		Profiles:    userRepo,
		Cache:       cache,
		Metrics:     collector,
		IdleTTL:     cfg.SessionIdleTTL,
		TokenTTL:    refreshTokenTTL,
		MaxSessions: cfg.SessionMaxLive,
	})
	go sessions.Run(ctx)

	var google v1.GoogleAuth
	if cfg.GoogleClientID != "" {
		google = identity.NewGoogleAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	} else {
		logger.Log.Warn("GOOGLE_CLIENT_ID not configured - Google sign-in will be unavailable")
	}

	// 8. Object storage
	uploader, err := newUploader(ctx, cfg)
	if err != nil {
		logger.Log.Error("Failed to configure object storage", "error", err)
		os.Exit(1)
	}

	// 9. Security
	audit := security.NewSecurityLogger("skillsprint-api")
	defer audit.Sync()
	tracker := security.NewLoginTracker(security.DefaultLoginTrackerConfig(), redisClient, audit)
	uploadLimiter := security.NewUploadLimiter(cfg.UploadsPerMinute, cfg.UploadsPerDay, redisClient)

	// 10. Setup UseCases
	ai := aiclient.New(cfg.AIBackendURL, cfg.AIRequestTimeout, collector)

	authUC := usecase.NewAuthUsecase(userRepo, tracker, audit)
	jobUC := usecase.NewJobUsecase(jobRepo, userRepo)
	careerUC := usecase.NewCareerUsecase(userRepo, courseRepo, ai)
	resumeUC := usecase.NewResumeUsecase(userRepo, uploader, uploadLimiter, ai, audit, collector)
	coachUC := usecase.NewCoachUsecase(conversation.NewStore(conversationRepo), ai)
	dashboardUC := usecase.NewDashboardUsecase(courseRepo, jobRepo)
	imageUC := usecase.NewProfileImageUsecase(userRepo, uploader, uploadLimiter, audit, collector)

	checks := map[string]usecase.Pinger{"database": dbPool}
	if redisClient != nil {
		checks["redis"] = usecase.PingFunc(redis.HealthCheck)
	}
	healthUC := usecase.NewHealthUsecase(checks)

	// 11. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:         authUC,
		JobUC:          jobUC,
		CareerUC:       careerUC,
		ResumeUC:       resumeUC,
		CoachUC:        coachUC,
		DashboardUC:    dashboardUC,
		ProfileImageUC: imageUC,
		HealthUC:       healthUC,
		Sessions:       sessions,
		Google:         google,
		Redis:          redisClient,
		Audit:          audit,
		Metrics:        metrics.Handler(registry),
		Options: v1.RouterOptions{
			AllowedOrigins: []string{cfg.FrontendURL},
			Session: middleware.SessionConfig{
				CookieName: cfg.SessionCookieName,
				Secure:     cfg.SessionCookieSecure,
				ReadyWait:  2 * time.Second,
			},
			AuthRateLimit:    cfg.RateLimitLoginThreshold,
			AIRateLimit:      cfg.RateLimitAIThreshold,
			RateLimitWindow:  time.Duration(cfg.RateLimitWindowSeconds) * time.Second,
			MaxMultipartSize: 12 << 20,
		},
	})

	// 12. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
			stop()
		}
	}()

	// Graceful Shutdown
	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}
	sessions.Shutdown()

	logger.Log.Info("Server exiting")
}

func newUploader(ctx context.Context, cfg *config.Config) (objectstore.Uploader, error) {
	if cfg.StorageProvider == "s3" {
		s3cfg := objectstore.S3Config{
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
			PublicBaseURL:   cfg.S3PublicBaseURL,
		}
		client, err := objectstore.NewS3Client(ctx, s3cfg)
		if err != nil {
			return nil, err
		}
		return objectstore.NewS3(client, s3cfg), nil
	}
	return objectstore.NewCloudinary(cfg.CloudinaryUploadURL, cfg.CloudinaryUploadPreset), nil
}
