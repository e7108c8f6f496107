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

	"carbot_backend/internal/agent"
	"carbot_backend/internal/assistant"
	"carbot_backend/internal/catalog"
	"carbot_backend/internal/catalog/repository"
	"carbot_backend/internal/companyinfo"
	"carbot_backend/internal/events"
	"carbot_backend/internal/financing"
	apphttp "carbot_backend/internal/http"
	"carbot_backend/internal/http/router"
	"carbot_backend/internal/session"
	"carbot_backend/internal/webhook"
	"carbot_backend/internal/whatsapp"
	"carbot_backend/platform/config"
	"carbot_backend/platform/logger"
	"carbot_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	store := initSessionStore(ctx, cfg, log)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	catalogModule, err := catalog.NewModule(repository.NewCSVSource(cfg.GetCatalogPath()), val, log)
	if err != nil {
		log.Error("failed to initialize catalog module", "error", err)
		panic("failed to initialize catalog module: " + err.Error())
	}

	infoCorpus, err := companyinfo.Load(cfg.GetCompanyInfoPath())
	if err != nil {
		log.Error("failed to load company info corpus", "error", err)
		panic("failed to load company info corpus: " + err.Error())
	}
	log.Info("company info corpus loaded", "sections", len(infoCorpus.Sections()))

	classifier, err := agent.NewGeminiClassifier(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize classifier", "error", err)
		panic("failed to initialize classifier: " + err.Error())
	}

	var humanizer agent.Humanizer
	if cfg.IsHumanizerEnabled() {
		humanizer = agent.NewGeminiHumanizer(classifier)
		log.Info("humanizer enabled", "model", cfg.GetGeminiModel())
	}

	dispatcher := agent.NewDispatcher(catalogModule.Service(), infoCorpus, log)
	orchestrator := agent.NewOrchestrator(store, classifier, dispatcher, humanizer, eventBus, log)

	assistantModule := assistant.NewModule(orchestrator, store, val)

	whatsappClient := whatsapp.NewClient(cfg, log)
	if whatsappClient == nil {
		log.Warn("whatsapp gateway not configured; webhook replies stay inline")
	}
	webhookModule := webhook.NewModule(orchestrator, whatsappClient, cfg, eventBus, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   store,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			catalogModule,
			financing.NewModule(val),
			assistantModule,
			webhookModule,
		},
	}

	engine := router.New(app)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: engine,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initSessionStore picks Redis when configured, otherwise the in-memory
// store with a background sweep so expired sessions do not pile up.
func initSessionStore(ctx context.Context, cfg *config.Config, log *logger.Logger) session.Store {
	if cfg.IsRedisEnabled() {
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
		log.Info("session store ready", "backend", "redis", "ttl", cfg.GetSessionTTL())
		return store
	}

	store := session.NewMemoryStore(cfg.GetSessionTTL())
	log.Info("session store ready", "backend", "memory", "ttl", cfg.GetSessionTTL())

	go func() {
		ticker := time.NewTicker(cfg.GetSessionCleanupInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := store.CleanupExpired(ctx)
				if err != nil {
					log.Error("session sweep failed", "error", err)
					continue
				}
				if removed > 0 {
					log.Info("expired sessions removed", "count", removed)
				}
			}
		}
	}()

	return store
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
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
