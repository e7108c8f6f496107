// Package transport defines the assistant module's request and response DTOs.
package transport

import "carbot_backend/internal/agent"

// MessageRequest is one inbound user message. SessionID is optional; an
// empty one starts a new conversation.
type MessageRequest struct {
	Message   string `json:"message" validate:"required,min=1,max=2000"`
	SessionID string `json:"sessionId" validate:"omitempty,max=128"`
}

// MessageResponse wraps the orchestrator's reply.
type MessageResponse struct {
	Reply agent.Reply `json:"reply"`
}

// SessionResponse exposes a session's conversation state.
type SessionResponse struct {
	SessionID         string `json:"sessionId"`
	Turns             int    `json:"turns"`
	LastAction        string `json:"lastAction,omitempty"`
	SelectedStockID   *int   `json:"selectedStockId,omitempty"`
	LastSearchResults []int  `json:"lastSearchResults,omitempty"`
}

// CleanupResponse reports the result of an expired-session sweep.
type CleanupResponse struct {
	Removed int `json:"removed"`
}
