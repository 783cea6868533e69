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

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/inna-tuzhikova/hasker/internal/auth"
	"github.com/inna-tuzhikova/hasker/internal/cache"
	"github.com/inna-tuzhikova/hasker/internal/config"
	"github.com/inna-tuzhikova/hasker/internal/database"
	"github.com/inna-tuzhikova/hasker/internal/forum"
	"github.com/inna-tuzhikova/hasker/internal/logging"
	"github.com/inna-tuzhikova/hasker/internal/notify"
	"github.com/inna-tuzhikova/hasker/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.New(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database", zap.Error(err))
		}
	}()

	trending, rdb := initTrendingCache(cfg, logger)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	svc := forum.NewService(db.GetDB(), logger,
		forum.WithCache(trending),
		forum.WithNotifier(initNotifier(cfg, logger)),
	)
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL, nil)

	srv := server.NewServer(cfg, db, svc, issuer, logger)
	done := runGracefulShutdown(srv, logger)

	logger.Info("Starting server", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Server error", zap.Error(err))
	}

	<-done
	logger.Info("Server stopped")
}

// initTrendingCache connects to redis when REDIS_URL is set. Without it trending lists are always read from the database.
func initTrendingCache(cfg *config.Config, logger *zap.Logger) (cache.TrendingCache, *goredis.Client) {
	if cfg.RedisURL == "" {
		logger.Info("REDIS_URL not set, trending cache disabled")
		return cache.Noop{}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	logger.Info("Trending cache enabled", zap.Duration("ttl", cfg.TrendingCacheTTL))
	return cache.NewRedisTrending(rdb, cfg.TrendingCacheTTL), rdb
}

func initNotifier(cfg *config.Config, logger *zap.Logger) notify.Notifier {
	if cfg.TwilioEnabled() {
		logger.Info("SMS notifications enabled")
		return notify.NewTwilioNotifier(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, cfg.BaseURL, logger)
	}
	return notify.NewLogNotifier(logger, cfg.BaseURL)
}

func runGracefulShutdown(srv *http.Server, logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, cleaning up...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", zap.Error(err))
		}
		close(done)
	}()

	return done
}
