package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	jwtauth "mediation-cms/internal/adapters/auth/jwt"
	redisdedupe "mediation-cms/internal/adapters/cache/redis"
	"mediation-cms/internal/adapters/notify/rabbitmq"
	s3store "mediation-cms/internal/adapters/objectstore/s3"
	pg "mediation-cms/internal/adapters/storage/postgres"
	"mediation-cms/internal/config"
	"mediation-cms/internal/platform/logger"
	"mediation-cms/internal/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewFromEnv().Error("config error", map[string]any{"error": err})
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("server error", map[string]any{"error": err})
		os.Exit(1)
	}
}

func run(cfg config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := router.Options{
		Log:           log,
		SecureCookie:  strings.HasPrefix(cfg.ServerURL, "https://"),
		DedupeTTL:     cfg.IdempotencyTTL,
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
	}

	// sin JWT_SECRET => modo dev (headers X-Debug-*)
	if cfg.JWTSecret != "" {
		signer := jwtauth.NewSigner(jwtauth.Config{Secret: cfg.JWTSecret, TTL: cfg.TokenTTL})
		opts.AuthVerifier = signer
		opts.TokenIssuer = signer
	} else {
		log.Warn("JWT_SECRET not set: dev auth mode, login disabled", nil)
	}

	if cfg.DBDSN != "" {
		db, err := pg.Open(cfg.DBDSN)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := pg.Migrate(ctx, db); err != nil {
			return err
		}
		opts.DB = db
		log.Info("using postgres storage", nil)
	} else {
		log.Warn("DB_DSN not set: using in-memory storage", nil)
	}

	if cfg.RedisAddr != "" {
		client, err := redisdedupe.Open(ctx, redisdedupe.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return err
		}
		defer client.Close()
		opts.Dedupe = redisdedupe.NewDedupe(client)
	}

	if cfg.AMQPURL != "" {
		pub, err := rabbitmq.NewPublisher(cfg.AMQPURL, log)
		if err != nil {
			return err
		}
		defer pub.Close()
		opts.Notifier = pub
	}

	if cfg.S3Bucket != "" {
		store, err := s3store.New(ctx, s3store.Config{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.AWSRegion,
			Endpoint: cfg.S3Endpoint,
		})
		if err != nil {
			return err
		}
		opts.Blobs = store
	}

	h, err := router.NewRouter(opts)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      h,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
