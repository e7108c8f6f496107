package agent

import (
	"context"
	"errors"
	"time"

	"carbot_backend/internal/events"
	"carbot_backend/internal/session"
	"carbot_backend/platform/apperr"
	"carbot_backend/platform/logger"
)

// Orchestrator runs one conversation turn end to end: load session, classify,
// guard, dispatch, humanize, record both turns, publish.
type Orchestrator struct {
	store      session.Store
	classifier Classifier
	dispatcher *Dispatcher
	humanizer  Humanizer
	bus        events.Bus
	log        *logger.Logger
}

// NewOrchestrator wires the turn pipeline. A nil humanizer falls back to
// NopHumanizer.
func NewOrchestrator(store session.Store, classifier Classifier, dispatcher *Dispatcher, humanizer Humanizer, bus events.Bus, log *logger.Logger) *Orchestrator {
	if humanizer == nil {
		humanizer = NopHumanizer{}
	}
	return &Orchestrator{
		store:      store,
		classifier: classifier,
		dispatcher: dispatcher,
		humanizer:  humanizer,
		bus:        bus,
		log:        log,
	}
}

// Process handles one user message for a session and returns the reply.
// The whole turn runs inside Store.Update, so concurrent messages for the
// same session serialize and each one is recorded against the state the
// previous turn committed.
func (o *Orchestrator) Process(ctx context.Context, sessionID, text, channel string) (Reply, error) {
	if text == "" {
		return Reply{}, apperr.Validation("message must not be empty").WithOp("agent.Process")
	}

	start := time.Now()
	var result ActionResult

	_, err := o.store.Update(ctx, sessionID, func(conv *session.ConversationContext) error {
		conv.AddUserTurn(text)

		decision, err := o.classifier.Classify(ctx, text, conv)
		if err != nil {
			if !errors.Is(err, ErrClassificationUnavailable) {
				return err
			}
			o.log.ClassifierError(sessionID, err)
			result = ActionResult{
				Action:  ActionRespond,
				Message: msgProcessingError,
				Reason:  "classification unavailable",
			}
			conv.AddAssistantTurn(result.Message)
			return nil
		}

		decision = applyClarifyGuards(decision, text, conv)
		result = o.dispatcher.Dispatch(ctx, decision, conv)

		if result.Success && !result.Clarify {
			if rewritten, err := o.humanizer.Humanize(ctx, text, result); err == nil {
				result.Message = rewritten
			} else {
				o.log.Warn("humanizer failed, keeping original message",
					"sessionId", sessionID, "error", err.Error())
			}
		}

		conv.AddAssistantTurn(result.Message)
		conv.LastAction = string(result.Action)
		return nil
	})
	if err != nil {
		return Reply{}, err
	}

	o.log.ConversationTurn(sessionID, string(result.Action), result.Success, float64(time.Since(start).Microseconds())/1000.0)
	o.bus.Publish(ctx, events.ConversationTurnCompleted{
		BaseEvent: events.NewBaseEvent(),
		SessionID: sessionID,
		Action:    string(result.Action),
		Success:   result.Success,
		Channel:   channel,
	})

	return Reply{
		SessionID: sessionID,
		Message:   result.Message,
		Success:   result.Success,
		Action:    result.Action,
		Vehicles:  result.Vehicles,
		Financing: result.Financing,
	}, nil
}
