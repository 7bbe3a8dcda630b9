package main

import (
	"strings"
	"time"

	"jobboard-backend/internal/admin"
	"jobboard-backend/internal/applications"
	"jobboard-backend/internal/audit"
	"jobboard-backend/internal/auth"
	"jobboard-backend/internal/company"
	"jobboard-backend/internal/config"
	"jobboard-backend/internal/httpx"
	"jobboard-backend/internal/jobs"
	"jobboard-backend/internal/metrics"
	"jobboard-backend/internal/models"
	"jobboard-backend/internal/ratelimit"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type services struct {
	db           *gorm.DB
	cfg          *config.Config
	log          zerolog.Logger
	metrics      *metrics.Metrics
	issuer       *auth.TokenIssuer
	limiter      *ratelimit.KeyedLimiter
	users        *auth.Service
	companies    *company.Service
	jobs         *jobs.Service
	applications *applications.Service
	admin        *admin.Service
}

func newServices(db *gorm.DB, cfg *config.Config, cache jobs.Cache, m *metrics.Metrics, log zerolog.Logger) *services {
	return &services{
		db:           db,
		cfg:          cfg,
		log:          log,
		metrics:      m,
		issuer:       auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL),
		limiter:      ratelimit.New(cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst, 10*time.Minute),
		users:        auth.NewService(db, auth.BcryptHasher{}, m, log),
		companies:    company.NewService(db, log),
		jobs:         jobs.NewService(db, cache, cfg.OpenJobsCacheTTL, m, log),
		applications: applications.NewService(db, m, log),
		admin:        admin.NewService(db, log),
	}
}

func newApp(s *services) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: httpx.ErrorHandler(s.log),
	})

	app.Use(httpx.AccessLog(s.log))
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(s.cfg.CORSOriginList(), ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + httpx.HeaderRequestID,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	app.Get("/metrics", s.metrics.Handler())

	api := app.Group("/api")

	// Public
	limited := ratelimit.Middleware(s.limiter)
	api.Post("/auth/register", limited, auth.RegisterHandler(s.users))
	api.Post("/auth/login", limited, auth.LoginHandler(s.users, s.issuer))
	api.Get("/jobs", jobs.ListOpenJobsHandler(s.jobs))
	api.Get("/jobs/:id<int>", jobs.GetJobHandler(s.jobs))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(s.issuer, s.users))

	protected.Get("/auth/me", auth.MeHandler(s.companies))

	posters := auth.RequireRole(models.RoleCompany, models.RoleHiringManager, models.RoleSuperAdmin)
	protected.Get("/jobs/mine", jobs.ListMyJobsHandler(s.jobs))
	protected.Post("/jobs", posters, jobs.CreateJobHandler(s.jobs))
	protected.Put("/jobs/:id", jobs.UpdateJobHandler(s.jobs))
	protected.Delete("/jobs/:id", jobs.DeleteJobHandler(s.jobs))
	protected.Get("/jobs/:id/can-manage", jobs.CanManageHandler(s.jobs))

	protected.Get("/jobs/:id/applications", applications.ListJobApplicationsHandler(s.applications, s.jobs))
	protected.Post("/jobs/:id/applications", auth.RequireRole(models.RoleCandidate), applications.SubmitApplicationHandler(s.applications))
	protected.Get("/applications/mine", applications.ListMyApplicationsHandler(s.applications))
	protected.Post("/applications/:id/status", applications.UpdateStatusHandler(s.applications))

	protected.Get("/companies", company.ListCompaniesHandler(s.companies))
	protected.Post("/companies", company.CreateCompanyHandler(s.companies))
	protected.Get("/companies/mine", company.ListMyCompaniesHandler(s.companies))
	protected.Get("/companies/:id", company.GetCompanyHandler(s.companies))

	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleSuperAdmin))
	adminRoutes.Get("/dashboard", admin.DashboardHandler(s.admin))
	adminRoutes.Post("/users/:id/toggle", admin.ToggleUserHandler(s.admin))
	adminRoutes.Get("/audit-logs", audit.ListAuditLogsHandler(s.db))

	return app
}
