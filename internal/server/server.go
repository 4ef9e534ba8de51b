// Package server assembles the HTTP surface: middleware chain, /api/v2
// routes and the operational endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskerhub/backend/internal/cache"
	"taskerhub/backend/internal/config"
	"taskerhub/backend/internal/geocoder"
	"taskerhub/backend/internal/handlers"
	"taskerhub/backend/internal/middleware"
	"taskerhub/backend/internal/models"
	"taskerhub/backend/internal/monitoring"
	"taskerhub/backend/internal/repositories"
	"taskerhub/backend/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const APIPrefix = "/api/v2"

// Deps are the long-lived handles the server is built from. Cache may be
// nil, in which case nothing is cached.
type Deps struct {
	Store    repositories.Store
	Cache    cache.Cache
	Geocoder geocoder.Geocoder

	// Components are extra sections for GET /metrics, such as the Redis
	// hit rate or the database pool.
	Components map[string]monitoring.StatsFunc
}

type Server struct {
	cfg     *config.Config
	engine  *gin.Engine
	metrics *monitoring.Metrics
	health  *monitoring.HealthChecker
	auth    *services.AuthServiceImpl
}

func New(cfg *config.Config, deps Deps) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	c := deps.Cache
	if c == nil {
		c = cache.NopCache{}
	}

	authorizer := services.NewAuthorizer()
	s := &Server{
		cfg:     cfg,
		engine:  gin.New(),
		metrics: monitoring.NewMetrics(),
		health:  monitoring.NewHealthChecker(),
		auth: services.NewAuthService(deps.Store, services.AuthConfig{
			JWTSecret:  cfg.Auth.JWTSecret,
			TokenTTL:   cfg.Auth.TokenTTL,
			BCryptCost: cfg.Auth.BCryptCost,
		}),
	}

	s.health.Register("database", true, deps.Store.Ping)
	s.health.Register("cache", false, c.Health)

	s.engine.Use(middleware.RecoveryWithLog())
	if gin.Mode() != gin.TestMode {
		s.engine.Use(gin.Logger())
	}
	s.engine.Use(cors.New(corsConfig(cfg.CORS)))
	s.engine.Use(s.metrics.Middleware())
	s.engine.Use(middleware.ErrorResponder())
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.BurstSize, cfg.RateLimit.CleanupInterval)
		s.engine.Use(limiter.Middleware())
	}

	s.routes(
		handlers.NewAuthHandler(s.auth, cfg.IsProduction()),
		handlers.NewProfileHandler(services.NewProfileService(deps.Store, authorizer, services.NewProfilePipeline(deps.Geocoder), c)),
		handlers.NewTaskHandler(services.NewTaskService(deps.Store, authorizer, c)),
		handlers.NewPaymentHandler(services.NewPaymentService(deps.Store, authorizer)),
		handlers.NewUserHandler(services.NewUserService(deps.Store, cfg.Auth.BCryptCost)),
		deps.Components,
	)
	return s
}

func corsConfig(cfg config.CORSConfig) cors.Config {
	cc := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			cc.AllowAllOrigins = true
			return cc
		}
	}
	cc.AllowOrigins = cfg.AllowedOrigins
	cc.AllowCredentials = true
	return cc
}

func (s *Server) routes(
	authH *handlers.AuthHandler,
	profileH *handlers.ProfileHandler,
	taskH *handlers.TaskHandler,
	paymentH *handlers.PaymentHandler,
	userH *handlers.UserHandler,
	components map[string]monitoring.StatsFunc,
) {
	s.engine.GET("/health", s.health.HealthHandler(s.metrics))
	s.engine.GET("/health/ready", s.health.ReadinessHandler())
	s.engine.GET("/health/live", monitoring.LivenessHandler(s.metrics))
	s.engine.GET("/metrics", s.metrics.MetricsHandler(components))

	protect := middleware.Protect(s.auth)
	members := middleware.Authorize(models.Roles...)
	admins := middleware.Authorize(models.RoleAdmin)

	api := s.engine.Group(APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authH.Register)
		auth.POST("/login", authH.Login)
		auth.GET("/me", protect, authH.Me)
		auth.GET("/logout", authH.Logout)
	}

	profiles := api.Group("/profiles")
	{
		profiles.GET("", profileH.GetProfiles)
		profiles.POST("", protect, members, profileH.CreateProfile)
		profiles.GET("/:id", profileH.GetProfile)
		profiles.PUT("/:id", protect, members, profileH.UpdateProfile)
		profiles.DELETE("/:id", protect, members, profileH.DeleteProfile)

		profiles.GET("/:id/tasks", taskH.GetProfileTasks)
		profiles.POST("/:id/tasks", protect, members, taskH.CreateTask)
	}

	tasks := api.Group("/tasks")
	{
		tasks.GET("", taskH.GetTasks)
		tasks.GET("/:id", taskH.GetTask)
		tasks.PUT("/:id", protect, members, taskH.UpdateTask)
		tasks.DELETE("/:id", protect, members, taskH.DeleteTask)

		tasks.GET("/:id/payments", protect, paymentH.GetTaskPayments)
		tasks.POST("/:id/payments", protect, paymentH.CreatePayment)
	}

	payments := api.Group("/payments", protect)
	{
		payments.GET("", admins, paymentH.GetPayments)
		payments.GET("/:id", paymentH.GetPayment)
		payments.PUT("/:id/status", paymentH.UpdatePaymentStatus)
	}

	users := api.Group("/users", protect, admins)
	{
		users.GET("", userH.GetUsers)
		users.POST("", userH.CreateUser)
		users.GET("/:id", userH.GetUser)
		users.PUT("/:id", userH.UpdateUser)
		users.DELETE("/:id", userH.DeleteUser)
	}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled or the process receives SIGINT or
// SIGTERM, then drains in-flight requests for up to ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.GetServerAddr(),
		Handler:           s.engine,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
		IdleTimeout:       s.cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s (env=%s)", srv.Addr, s.cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Println("Server stopped")
	return nil
}
