package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"carbot_backend/internal/events"
	"carbot_backend/internal/scheduler"
	"carbot_backend/internal/session"
	"carbot_backend/platform/config"
	"carbot_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	if !cfg.IsRedisEnabled() {
		panic("scheduler requires REDIS_URL; the in-memory store sweeps itself inside the api process")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store *session.RedisStore
	if err := withRetry(ctx, log, "redis connection", 5, 2*time.Second, func() error {
		s, err := session.NewRedisStore(cfg.GetRedisURL(), cfg.GetSessionTTL())
		if err != nil {
			return err
		}
		if err := s.Ping(ctx); err != nil {
			return err
		}
		store = s
		return nil
	}); err != nil {
		log.Error("failed to connect to redis", "error", err)
		panic("failed to connect to redis: " + err.Error())
	}

	eventBus := events.NewInMemoryBus(log)

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = client.Close() }()

	worker, err := scheduler.NewWorker(cfg, store, eventBus, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	g, ctx := errgroup.WithContext(ctx)

	// Periodic producer: one cleanup task per interval.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.GetSessionCleanupInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := client.EnqueueSessionsCleanup(ctx); err != nil {
					log.Error("failed to enqueue session cleanup", "error", err)
				}
			}
		}
	})

	g.Go(func() error {
		worker.Run(ctx)
		return nil
	})

	_ = g.Wait()
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
