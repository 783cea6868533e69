package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/inna-tuzhikova/hasker/internal/apperrors"
	"github.com/inna-tuzhikova/hasker/internal/auth"
	"github.com/inna-tuzhikova/hasker/internal/config"
	"github.com/inna-tuzhikova/hasker/internal/database"
	"github.com/inna-tuzhikova/hasker/internal/forum"
	"github.com/inna-tuzhikova/hasker/internal/handlers"
	"github.com/inna-tuzhikova/hasker/internal/middleware"
	"github.com/inna-tuzhikova/hasker/internal/models"
)

type Server struct {
	cfg     *config.Config
	db      database.Service
	handler *handlers.Handler
	issuer  *auth.TokenIssuer
	limiter *middleware.RateLimiter
	logger  *zap.Logger
}

// New wires the handlers for an already opened database and forum service.
func New(cfg *config.Config, db database.Service, svc *forum.Service, issuer *auth.TokenIssuer, logger *zap.Logger) *Server {
	return &Server{
		cfg:     cfg,
		db:      db,
		handler: handlers.NewHandler(db.GetDB(), svc, issuer),
		issuer:  issuer,
		limiter: middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, nil),
		logger:  logger,
	}
}

// NewServer creates and configures a new server
func NewServer(cfg *config.Config, db database.Service, svc *forum.Service, issuer *auth.TokenIssuer, logger *zap.Logger) *http.Server {
	s := New(cfg, db, svc, issuer, logger)

	return &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(s.logger))
	r.Use(middleware.Metrics())

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.AllowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(apperrors.Middleware(s.logger))

	// Health check endpoint
	r.GET("/health", s.healthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		// Auth routes (public)
		api.POST("/register", s.limiter.Middleware(), s.handler.Auth.Register)
		api.POST("/login", s.limiter.Middleware(), s.handler.Auth.Login)

		// User routes (public reads)
		api.GET("/users/:id", s.handler.User.GetUserProfile)

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(s.issuer))
		{
			protected.GET("/me", s.handler.Auth.GetMe)

			// Read-only question API
			protected.GET("/questions", s.handler.API.Recent())
			protected.GET("/questions/trending", s.handler.API.Trending())
			protected.GET("/questions/top_trending", s.handler.API.TopTrending)
			protected.GET("/questions/search", s.handler.API.Search())
			protected.GET("/questions/tags/:tag", s.handler.API.ByTag())
			protected.GET("/questions/:id", s.handler.API.Detail)
			protected.GET("/questions/:id/answers", s.handler.API.Answers)

			writes := protected.Group("")
			writes.Use(s.limiter.Middleware())
			{
				writes.PUT("/me", s.handler.User.UpdateSettings)

				writes.POST("/questions", s.handler.Question.Ask)
				writes.DELETE("/questions/:id", s.handler.Question.Delete)
				writes.POST("/questions/:id/answers", s.handler.Question.AddAnswer)
				writes.POST("/questions/:id/upvote", s.handler.Question.VoteQuestion(models.Up))
				writes.POST("/questions/:id/downvote", s.handler.Question.VoteQuestion(models.Down))
				writes.POST("/questions/:id/answers/:answerId/upvote", s.handler.Question.VoteAnswer(models.Up))
				writes.POST("/questions/:id/answers/:answerId/downvote", s.handler.Question.VoteAnswer(models.Down))
				writes.POST("/questions/:id/answers/:answerId/correct", s.handler.Question.ToggleCorrect)
			}
		}
	}

	return r
}

func (s *Server) healthHandler(c *gin.Context) {
	stats := s.db.Health()
	status := http.StatusOK
	if stats["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, stats)
}
