package v1

import (
	"net/http"
	"skillsprint/internal/delivery/http/middleware"
	"skillsprint/internal/delivery/http/response"
	"skillsprint/internal/domain"
	"skillsprint/internal/guard"
	"skillsprint/internal/session"
	"skillsprint/internal/usecase"
	"skillsprint/pkg/security"
	"skillsprint/pkg/validation"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	goredis "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	AuthUC         domain.AuthUsecase
	JobUC          domain.JobUsecase
	CareerUC       domain.CareerUsecase
	ResumeUC       domain.ResumeUsecase
	CoachUC        domain.CoachUsecase
	DashboardUC    domain.DashboardUsecase
	ProfileImageUC domain.ProfileImageUsecase
	HealthUC       usecase.HealthUsecase
	Sessions       *session.Manager
	Google         GoogleAuth
	Redis          *goredis.Client
	Audit          *security.SecurityLogger
	Metrics        http.Handler
	Options        RouterOptions
}

type RouterOptions struct {
	AllowedOrigins   []string
	Session          middleware.SessionConfig
	AuthRateLimit    int
	AIRateLimit      int
	RateLimitWindow  time.Duration
	DisableCSRF      bool
	MaxMultipartSize int64
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.RegisterValidators(v)
	}

	r := gin.New()
	if deps.Options.MaxMultipartSize > 0 {
		r.MaxMultipartMemory = deps.Options.MaxMultipartSize
	}

	r.Use(middleware.CORSMiddleware(deps.Options.AllowedOrigins)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())

	// Ops routes carry no session.
	ops := r.Group("/v1")
	{
		ops.GET("/health", func(c *gin.Context) {
			status := map[string]string{"status": "ok"}
			if deps.HealthUC != nil {
				status = deps.HealthUC.Check(c.Request.Context())
			}
			code := http.StatusOK
			if status["status"] != "ok" {
				code = http.StatusServiceUnavailable
			}
			response.Success(c, code, "System "+status["status"], status)
		})
		ops.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	limiter := middleware.NewRateLimiter(deps.Redis, deps.Audit)
	window := deps.Options.RateLimitWindow
	authLimit := limiter.Middleware(middleware.AuthRateLimitConfig(deps.Options.AuthRateLimit, window))
	aiLimit := limiter.Middleware(middleware.AIRateLimitConfig(deps.Options.AIRateLimit, window))

	app := r.Group("")
	app.Use(middleware.Sessions(deps.Sessions, deps.Options.Session))
	if !deps.Options.DisableCSRF {
		app.Use(middleware.CSRFMiddleware(deps.Options.Session.Secure, "/login", "/signup"))
	}

	wait := deps.Options.Session.ReadyWait
	student := app.Group("/student", middleware.RequireSession(guard.Require(domain.RoleStudent), wait))
	recruiter := app.Group("/recruiter", middleware.RequireSession(guard.Require(domain.RoleRecruiter), wait))
	signedIn := app.Group("", middleware.RequireSession(nil, wait))

	NewAuthHandler(app, authLimit, deps.AuthUC, deps.Google, deps.Options.Session.Secure)
	NewJobHandler(app, student, recruiter, deps.JobUC)
	NewStudentHandler(student, aiLimit, deps.DashboardUC, deps.CareerUC, deps.ResumeUC)
	NewCoachHandler(student, aiLimit, deps.CoachUC)
	NewRecruiterHandler(recruiter, deps.DashboardUC)
	NewProfileHandler(signedIn, deps.ProfileImageUC)

	r.NoRoute(func(c *gin.Context) {
		response.Redirect(c, http.StatusSeeOther, "/")
	})

	return r
}
