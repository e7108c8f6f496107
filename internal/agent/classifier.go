package agent

import (
	"context"
	"errors"

	"carbot_backend/internal/session"
)

// ErrClassificationUnavailable marks a classifier failure the orchestrator
// must absorb into a graceful fallback reply instead of a transport fault.
var ErrClassificationUnavailable = errors.New("classification unavailable")

// Classifier turns free-form user text into a Decision, using the
// conversation context for disambiguation.
type Classifier interface {
	Classify(ctx context.Context, text string, conv *session.ConversationContext) (Decision, error)
}

// Humanizer optionally rewrites a successful result's message into warmer
// prose. Results must be terminal-valid without it.
type Humanizer interface {
	Humanize(ctx context.Context, userText string, result ActionResult) (string, error)
}

// NopHumanizer returns the result message unchanged.
type NopHumanizer struct{}

// Humanize implements Humanizer.
func (NopHumanizer) Humanize(_ context.Context, _ string, result ActionResult) (string, error) {
	return result.Message, nil
}

// InfoLookup answers free-text company questions from a corpus. Best-effort:
// callers treat failures as non-fatal.
type InfoLookup interface {
	Lookup(query string) (string, error)
}
