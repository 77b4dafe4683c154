// cmd/server/main.go
// HTTP Server
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"payment-relay/internal/config"
	"payment-relay/internal/handler"
	"payment-relay/internal/service"
	"payment-relay/pkg/logger"
	"payment-relay/pkg/middleware"
	"payment-relay/pkg/redis"
	"payment-relay/pkg/tracing"
)

const serviceName = "payment-relay"

var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	// Initialize logger
	log, err := logger.New(serviceName, cfg.Environment)
	if err != nil {
		return err
	}
	defer log.Sync()

	// Initialize tracing
	shutdownTracer, err := tracing.InitTracer(ctx, tracing.Config{
		Service:       serviceName,
		Version:       Version,
		Environment:   string(cfg.AuthNet.Env),
		CollectorAddr: cfg.OtelCollectorAddr,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize tracer: %w", err)
	}
	defer shutdownTracer(context.Background())

	opts := handler.RouterOptions{
		ServiceName:   serviceName,
		AllowedOrigin: cfg.AllowedOrigin,
	}

	// Initialize Redis for rate limiting
	if cfg.RateLimitPerMinute > 0 {
		redisClient, err := redis.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()

		if err := redisClient.Ping(ctx); err != nil {
			log.Warn("redis not reachable, rate limiter will fail open", zap.Error(err))
		}
		opts.RateLimiter = middleware.RateLimiter(redisClient, cfg.RateLimitPerMinute, log)
	}

	// Initialize services
	gateway := service.NewAuthNetClient(cfg.AuthNet.Env.Endpoint(), cfg.AuthNet.Timeout, log)
	tokenService := service.NewTokenService(gateway, cfg, log)

	// Initialize handlers
	tokenHandler := handler.NewTokenHandler(tokenService, log)

	// Setup router
	gin.SetMode(gin.ReleaseMode)
	router := handler.NewRouter(tokenHandler, log, opts)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.AuthNet.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting server",
			zap.String("port", cfg.Port),
			zap.String("authnet_env", string(cfg.AuthNet.Env)),
			zap.String("version", Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			log.Info("received shutdown signal", zap.String("signal", sig.String()))
		case <-gCtx.Done():
		}

		log.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", zap.Error(err))
		return err
	}

	log.Info("server exited")
	return nil
}
