package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/tms-backend/internal/config"
	"github.com/stemsi/tms-backend/internal/handler"
	"github.com/stemsi/tms-backend/internal/logger"
	"github.com/stemsi/tms-backend/internal/middleware"
	"github.com/stemsi/tms-backend/internal/response"
	"github.com/stemsi/tms-backend/internal/service"
)

// formMaxAge is how long clients may cache criteria forms. Forms only change
// with a new release.
const formMaxAge = 300

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth           *handler.AuthHandler
	ScheinCriteria *handler.ScheinCriteriaHandler
	Points         *handler.PointsHandler
	System         *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// limiter may be nil.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
	limiter *middleware.RateLimiter,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(logger.RequestLogger(log))
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", handlers.System.Health)

	writeLimit := func(c *gin.Context) { c.Next() }
	if limiter != nil {
		writeLimit = limiter.Middleware()
	}

	api := router.Group("/api/v1")
	api.Use(
		middleware.RequireJWT(authService),
		middleware.RejectRevokedTokens(authService),
	)

	// ─── 1. Auth ───────────────────────────────────────────────────────
	auth := api.Group("/auth")
	{
		auth.GET("/me", handlers.Auth.Me)
		auth.POST("/logout", handlers.Auth.Logout)
	}

	// ─── 2. Scheincriteria ─────────────────────────────────────────────
	admin := middleware.RequireRole(service.RoleAdmin)
	staff := middleware.RequireRole(service.RoleAdmin, service.RoleEmployee, service.RoleTutor)

	criteria := api.Group("/scheincriteria")
	{
		criteria.GET("/form", admin, middleware.CacheControl(formMaxAge), handlers.ScheinCriteria.GetFormData)
		criteria.POST("/validate", admin, handlers.ScheinCriteria.ValidateCriteria)

		criteria.GET("", admin, handlers.ScheinCriteria.ListCriteria)
		criteria.POST("", admin, writeLimit, handlers.ScheinCriteria.CreateCriteria)
		criteria.GET("/:id", admin, handlers.ScheinCriteria.GetCriteria)
		criteria.PUT("/:id", admin, writeLimit, handlers.ScheinCriteria.UpdateCriteria)
		criteria.DELETE("/:id", admin, writeLimit, handlers.ScheinCriteria.DeleteCriteria)

		status := criteria.Group("", staff, middleware.NoStore())
		status.GET("/:id/info", handlers.ScheinCriteria.GetCriteriaInfo)
		status.GET("/students", handlers.ScheinCriteria.GetAllSummaries)
		status.GET("/students/:id", handlers.ScheinCriteria.GetStudentSummary)
	}

	// ─── 3. Grading ────────────────────────────────────────────────────
	grading := api.Group("/students/:id",
		middleware.RequireRole(service.RoleAdmin, service.RoleTutor, service.RoleCorrector),
		writeLimit,
	)
	{
		grading.PUT("/points", handlers.Points.AdjustSheetPoints)
		grading.PUT("/exams/:exam_id/points", handlers.Points.AdjustExamResults)
		grading.PUT("/presentations/:sheet_id", handlers.Points.SetPresentations)
	}

	return router
}
