// Package scheduler runs background maintenance through asynq: currently
// the periodic expired-session sweep.
package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskSessionsCleanup = "sessions.cleanup"

// SessionsCleanupPayload records when the sweep was requested, mostly for
// queue inspection.
type SessionsCleanupPayload struct {
	RequestedAt time.Time `json:"requestedAt"`
}

func NewSessionsCleanupTask(payload SessionsCleanupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionsCleanup, data), nil
}

func ParseSessionsCleanupPayload(task *asynq.Task) (SessionsCleanupPayload, error) {
	var payload SessionsCleanupPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return SessionsCleanupPayload{}, err
	}
	return payload, nil
}
