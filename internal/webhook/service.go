// Package webhook provides the inbound WhatsApp messaging bounded context
// module: it bridges gateway callbacks into conversation turns.
package webhook

import (
	"context"
	"strings"
	"time"

	"carbot_backend/internal/agent"
	"carbot_backend/internal/events"
	"carbot_backend/platform/apperr"
	"carbot_backend/platform/logger"
	"carbot_backend/platform/phone"
)

const (
	channelWhatsApp = "whatsapp"
	asyncTimeout    = 60 * time.Second
)

// Sender delivers an outbound message. Satisfied by *whatsapp.Client.
type Sender interface {
	SendMessage(ctx context.Context, phoneNumber, message string) error
}

// TurnProcessor runs one conversation turn. Satisfied by *agent.Orchestrator.
type TurnProcessor interface {
	Process(ctx context.Context, sessionID, text, channel string) (agent.Reply, error)
}

// Service turns inbound gateway messages into conversation turns. In sync
// mode the reply travels back inline as TwiML; in async mode the webhook
// acknowledges immediately and the reply goes out through the sender.
type Service struct {
	orchestrator TurnProcessor
	sender       Sender
	async        bool
	eventBus     events.Bus
	log          *logger.Logger
}

// NewService wires the webhook service. Async mode requires a sender.
func NewService(orchestrator TurnProcessor, sender Sender, async bool, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{
		orchestrator: orchestrator,
		sender:       sender,
		async:        async,
		eventBus:     eventBus,
		log:          log,
	}
}

// HandleInbound processes one gateway callback and returns the TwiML body
// to answer with. The sender's phone number, normalized to E.164, is the
// session ID, so one WhatsApp number maps to one conversation.
func (s *Service) HandleInbound(ctx context.Context, from, body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", apperr.Validation("message body must not be empty").WithOp("webhook.HandleInbound")
	}

	sessionID := phone.NormalizeE164(strings.TrimPrefix(from, "whatsapp:"))
	if sessionID == "" {
		return "", apperr.Validation("sender phone number is invalid").WithOp("webhook.HandleInbound")
	}

	s.eventBus.Publish(ctx, events.WebhookMessageReceived{
		BaseEvent: events.NewBaseEvent(),
		SessionID: sessionID,
		From:      from,
		Length:    len(body),
	})

	if s.async {
		s.processAsync(sessionID, body)
		return renderTwiML("")
	}

	reply, err := s.orchestrator.Process(ctx, sessionID, body, channelWhatsApp)
	if err != nil {
		return "", err
	}
	return renderTwiML(reply.Message)
}

// processAsync runs the turn off the request goroutine and delivers the
// reply through the gateway. The request context is gone by then, so the
// turn gets its own deadline.
func (s *Service) processAsync(sessionID, body string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncTimeout)
		defer cancel()

		reply, err := s.orchestrator.Process(ctx, sessionID, body, channelWhatsApp)
		if err != nil {
			s.log.Error("async webhook turn failed", "sessionId", sessionID, "error", err.Error())
			return
		}
		if err := s.sender.SendMessage(ctx, sessionID, reply.Message); err != nil {
			s.log.Error("async webhook reply delivery failed", "sessionId", sessionID, "error", err.Error())
		}
	}()
}
