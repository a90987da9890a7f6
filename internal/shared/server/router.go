package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-uploads/internal/resumes"
	"resume-uploads/internal/services/health"
	"resume-uploads/internal/shared/auth"
	"resume-uploads/internal/shared/config"
	"resume-uploads/internal/shared/metrics"
	"resume-uploads/internal/shared/server/middleware"
	"resume-uploads/internal/shared/server/respond"
	"resume-uploads/internal/shared/telemetry"
)

// RouterDeps carries the handlers and gates the router mounts.
type RouterDeps struct {
	Config        config.Config
	ResumeHandler *resumes.Handler
	Health        *health.Service
	Verifier      *auth.Verifier
	// RateStore backs the limiter; nil uses a per-process memory store.
	RateStore middleware.WindowStore
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	// The rate limiter keys on ClientIP, so forwarded headers only count when
	// they come from a configured proxy.
	if err := r.SetTrustedProxies(deps.Config.TrustedProxies); err != nil {
		telemetry.Error("router.trusted_proxies_invalid", map[string]any{
			"proxies": deps.Config.TrustedProxies,
			"error":   err.Error(),
		})
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService()
	}
	healthHandler := func(c *gin.Context) {
		report := healthSvc.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	}
	r.GET("/health", healthHandler)
	r.GET("/metrics", metrics.Handler())

	// One limiter shared by both mounts so /resumes and /api/v1/resumes
	// draw from the same per-IP budget.
	gates := []gin.HandlerFunc{
		middleware.Auth(deps.Verifier, deps.Config.IsDevLike()),
		middleware.RateLimit(middleware.RateLimitConfig{
			Max:    deps.Config.RateLimitMax,
			Window: deps.Config.RateLimitWindow,
			Store:  deps.RateStore,
		}),
	}

	root := r.Group("")
	root.Use(gates...)

	api := r.Group("/api/v1")
	api.GET("/health", healthHandler)
	v1 := api.Group("")
	v1.Use(gates...)

	if deps.ResumeHandler != nil {
		deps.ResumeHandler.RegisterRoutes(root)
		deps.ResumeHandler.RegisterRoutes(v1)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
