package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"internet-cafe-api/internal/audit"
	"internet-cafe-api/internal/config"
	"internet-cafe-api/internal/database"
	"internet-cafe-api/internal/handler"
	"internet-cafe-api/internal/middleware"
	"internet-cafe-api/internal/notification"
	"internet-cafe-api/internal/repository"
	"internet-cafe-api/internal/router"
	"internet-cafe-api/internal/service"
	"internet-cafe-api/internal/statistics"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// Initialize database
	db, err := database.InitDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(ctx, db, database.MigrateUp); err != nil {
			return err
		}
		logger.Info("database migrations applied")
	}

	// Audit sinks
	sinks := []audit.Sink{audit.NewLogSink(logger)}

	if cfg.Audit.NATSURL != "" {
		nc, err := audit.ConnectNATS(cfg.Audit.NATSURL, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to nats: %w", err)
		}
		defer nc.Drain()
		sinks = append(sinks, audit.NewNATSSink(nc, cfg.Audit.Subject))
	}

	if cfg.Audit.WebhookURL != "" {
		notifier := notification.NewNotifierWithConfig(notification.NotificationConfig{
			URL:            cfg.Audit.WebhookURL,
			Timeout:        cfg.Audit.WebhookTimeout,
			RetryAttempts:  cfg.Audit.RetryAttempts,
			RetryDelay:     cfg.Audit.RetryDelay,
			MaxPayloadSize: cfg.Audit.MaxPayloadSize,
		}, logger)

		healthCtx, cancel := context.WithTimeout(ctx, cfg.Audit.WebhookTimeout)
		if !notifier.IsHealthy(healthCtx) {
			logger.Warn("audit webhook is not reachable, events will be retried per delivery", "url", cfg.Audit.WebhookURL)
		}
		cancel()

		sinks = append(sinks, audit.NewWebhookSink(notifier))
	}

	recorder := audit.NewRecorder(logger, cfg.Audit.Timeout, sinks...)
	defer recorder.Wait()

	// Rate limiter shared across instances when Redis is configured
	var limiter middleware.RateLimiter
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("invalid redis url: %w", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		limiter = middleware.NewRedisLimiter(rdb, cfg.Security.RateLimitRPS, cfg.Security.RateLimitBurst, logger)
	}

	h := newHandlers(db, recorder, logger)
	r := router.NewRouter(h, cfg, limiter, logger)

	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Port),
		Handler:        r,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting server",
			"port", cfg.Port,
			"rate_limit_rps", cfg.Security.RateLimitRPS,
			"rate_limit_burst", cfg.Security.RateLimitBurst,
			"cors", cfg.Security.EnableCORS,
			"request_timeout", cfg.Security.RequestTimeout,
			"distributed_rate_limit", cfg.Redis.URL != "",
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("server is shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Security.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		logger.Info("server exited gracefully")
		return nil
	})

	return g.Wait()
}

func newHandlers(db *sql.DB, recorder service.AuditRecorder, logger *slog.Logger) handler.Handlers {
	store := repository.NewStore(db)

	users := service.NewUserService(store, recorder, logger)
	accounts := service.NewAccountService(store, recorder, logger)
	computers := service.NewComputerService(store, recorder, logger)
	sessions := service.NewSessionService(store, recorder, logger)
	stats := service.NewStatisticsService(statistics.NewReader(db), logger)

	return handler.Handlers{
		Users:      handler.NewUserHandler(users, accounts, sessions, logger),
		Accounts:   handler.NewAccountHandler(accounts, logger),
		Computers:  handler.NewComputerHandler(computers, sessions, logger),
		Sessions:   handler.NewSessionHandler(sessions, logger),
		Statistics: handler.NewStatisticsHandler(stats, logger),
		Health:     handler.NewHealthHandler(db, logger),
	}
}
