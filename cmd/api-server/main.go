package main

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

	"reviewhub/database"
	"reviewhub/internal/config"
	"reviewhub/internal/logger"
	"reviewhub/internal/mailer"
	"reviewhub/internal/microservices/http-api/server"
	"reviewhub/internal/microservices/http-api/service"
	"reviewhub/internal/ratelimit"
	"reviewhub/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("api-server: %v", err)
	}
}

func run() error {
	cfg, err := config.LoadConfig(config.ConfigPath())
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logFormat := cfg.LogFormat
	if cfg.IsDevelopment() {
		logFormat = "console"
	}
	zlog, err := logger.Init(logger.Config{Level: cfg.LogLevel, Format: logFormat, File: cfg.LogFile})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer zlog.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.ConnectDB(cfg, zlog)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(db, zlog); err != nil {
		return err
	}

	outbox, closeOutbox, err := newOutbox(ctx, cfg, zlog)
	if err != nil {
		return err
	}
	defer closeOutbox()

	limiter := ratelimit.New(cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst, 10*time.Minute)
	defer limiter.Stop()

	svcs := server.NewServices(
		db,
		token.NewManager(cfg.JWTSecret, cfg.AccessTokenTTL),
		mailer.NewConfirmationMailer(outbox),
		zlog,
		service.AuthOptions{
			CodeLength:     cfg.ConfirmationCodeLength,
			SingleUseCodes: cfg.ConfirmationCodeSingleUse,
		},
	)

	router, err := server.NewRouter(svcs, server.Options{
		Log:             zlog,
		CORSOrigins:     cfg.CORSOrigins,
		DefaultPageSize: cfg.DefaultPageSize,
		AuthLimiter:     limiter,
		Health: func(ctx context.Context) error {
			return database.Ping(ctx, db)
		},
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("HTTP server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.GoEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// newOutbox queues confirmation mail in Redis when REDIS_URL is set and sends
// it from a detached goroutine otherwise. The returned func stops the worker
// and waits for in-flight deliveries.
func newOutbox(ctx context.Context, cfg *config.Config, zlog *zap.Logger) (mailer.Outbox, func(), error) {
	sender := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		UseTLS:   cfg.SMTPTLS,
	})

	if cfg.RedisURL == "" {
		inline := mailer.NewInlineOutbox(sender, zlog)
		return inline, inline.Wait, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}

	outbox := mailer.NewRedisOutbox(client, cfg.MailOutboxKey, sender, zlog)
	workerCtx, stopWorker := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		outbox.Run(workerCtx)
	}()
	pending, err := outbox.Len(pingCtx)
	if err != nil {
		zlog.Warn("could not read mail outbox length", zap.Error(err))
	}
	zlog.Info("mail outbox backed by redis", zap.String("key", cfg.MailOutboxKey), zap.Int64("pending", pending))

	return outbox, func() {
		stopWorker()
		<-done
		client.Close()
	}, nil
}
