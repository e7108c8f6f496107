// Package session stores per-conversation state with a TTL.
package session

import "time"

// MaxTurns caps the retained conversation history per session.
const MaxTurns = 20

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message in the conversation history.
type Turn struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationContext is the state carried across the turns of one
// conversation. It is always mutated through Store.Update so a whole turn
// commits atomically.
type ConversationContext struct {
	SessionID         string    `json:"sessionId"`
	Turns             []Turn    `json:"turns"`
	LastSearchResults []int     `json:"lastSearchResults,omitempty"`
	SelectedStockID   *int      `json:"selectedStockId,omitempty"`
	LastAction        string    `json:"lastAction,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	LastAccessedAt    time.Time `json:"lastAccessedAt"`
}

// NewContext creates an empty conversation context.
func NewContext(sessionID string) *ConversationContext {
	now := time.Now()
	return &ConversationContext{
		SessionID:      sessionID,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
}

// AddUserTurn appends a user message, trimming history beyond MaxTurns.
func (c *ConversationContext) AddUserTurn(text string) {
	c.addTurn(RoleUser, text)
}

// AddAssistantTurn appends an assistant message, trimming history beyond MaxTurns.
func (c *ConversationContext) AddAssistantTurn(text string) {
	c.addTurn(RoleAssistant, text)
}

func (c *ConversationContext) addTurn(role, text string) {
	c.Turns = append(c.Turns, Turn{Role: role, Text: text, Timestamp: time.Now()})
	if len(c.Turns) > MaxTurns {
		c.Turns = c.Turns[len(c.Turns)-MaxTurns:]
	}
}

// SetSearchResults records the stock IDs of the most recent search.
func (c *ConversationContext) SetSearchResults(stockIDs []int) {
	c.LastSearchResults = append([]int(nil), stockIDs...)
}

// SelectVehicle marks a vehicle as the one under discussion.
func (c *ConversationContext) SelectVehicle(stockID int) {
	c.SelectedStockID = &stockID
}

// Clone returns a deep copy, so in-flight mutations never leak into the
// stored context until they commit.
func (c *ConversationContext) Clone() *ConversationContext {
	clone := *c
	clone.Turns = append([]Turn(nil), c.Turns...)
	clone.LastSearchResults = append([]int(nil), c.LastSearchResults...)
	if c.SelectedStockID != nil {
		selected := *c.SelectedStockID
		clone.SelectedStockID = &selected
	}
	return &clone
}
