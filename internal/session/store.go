package session

import "context"

// UpdateFunc mutates a conversation context inside Store.Update.
type UpdateFunc func(*ConversationContext) error

// Store persists conversation contexts with a TTL. Implementations must
// serialize operations on the same session ID and must refresh the TTL on
// every read and write.
type Store interface {
	// GetOrCreate returns the session's context, creating an empty one if
	// none exists or the previous one expired.
	GetOrCreate(ctx context.Context, sessionID string) (*ConversationContext, error)

	// Get returns the session's context. A missing session is a not-found
	// error; an expired one is a gone error.
	Get(ctx context.Context, sessionID string) (*ConversationContext, error)

	// Save stores the context, resetting its TTL.
	Save(ctx context.Context, conv *ConversationContext) error

	// Update atomically applies fn to the session's context (creating it
	// when absent) and commits the result. If fn returns an error or ctx is
	// cancelled before commit, the stored context is left untouched.
	Update(ctx context.Context, sessionID string, fn UpdateFunc) (*ConversationContext, error)

	// Delete removes the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// Exists reports whether the session is present and unexpired, without
	// refreshing its TTL.
	Exists(ctx context.Context, sessionID string) (bool, error)

	// CleanupExpired removes expired sessions and returns how many were removed.
	CleanupExpired(ctx context.Context) (int, error)

	// ClearAll removes every session and returns how many were removed.
	ClearAll(ctx context.Context) (int, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
