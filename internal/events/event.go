// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"carbot_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Conversation Domain Events
// =============================================================================

// ConversationTurnCompleted is published after the orchestrator finishes a turn.
type ConversationTurnCompleted struct {
	BaseEvent
	SessionID string `json:"sessionId"`
	Action    string `json:"action"`
	Success   bool   `json:"success"`
	Channel   string `json:"channel"` // "rest" or "whatsapp"
}

func (e ConversationTurnCompleted) EventName() string { return "conversation.turn.completed" }

// =============================================================================
// Webhook Domain Events
// =============================================================================

// WebhookMessageReceived is published when an inbound WhatsApp message arrives.
type WebhookMessageReceived struct {
	BaseEvent
	SessionID string `json:"sessionId"`
	From      string `json:"from"`
	Length    int    `json:"length"`
}

func (e WebhookMessageReceived) EventName() string { return "webhook.message.received" }

// =============================================================================
// Session Domain Events
// =============================================================================

// SessionsCleaned is published after an expired-session sweep completes.
type SessionsCleaned struct {
	BaseEvent
	Removed int `json:"removed"`
}

func (e SessionsCleaned) EventName() string { return "sessions.cleaned" }
