package scheduler

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"carbot_backend/internal/events"
	"carbot_backend/internal/session"
	"carbot_backend/platform/config"
	"carbot_backend/platform/logger"
)

// Worker consumes scheduler tasks against the session store.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	store  session.Store
	bus    events.Bus
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, store session.Store, bus events.Bus, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			defaultQueue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		store:  store,
		bus:    bus,
		log:    log,
	}

	mux.HandleFunc(TaskSessionsCleanup, w.handleSessionsCleanup)

	return w, nil
}

func (w *Worker) handleSessionsCleanup(ctx context.Context, task *asynq.Task) error {
	if _, err := ParseSessionsCleanupPayload(task); err != nil {
		return err
	}

	removed, err := w.store.CleanupExpired(ctx)
	if err != nil {
		return err
	}

	w.log.Info("expired sessions removed", "count", removed)
	if w.bus != nil && removed > 0 {
		w.bus.Publish(ctx, events.SessionsCleaned{
			BaseEvent: events.NewBaseEvent(),
			Removed:   removed,
		})
	}
	return nil
}

// Run blocks until ctx is cancelled, then drains the server.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
