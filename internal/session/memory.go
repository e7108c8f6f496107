package session

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"carbot_backend/platform/apperr"
)

const shardCount = 16

type memoryEntry struct {
	conv      *ConversationContext
	expiresAt time.Time
}

type memoryShard struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

// MemoryStore is a sharded in-process session store. Distinct sessions land
// on different shards and rarely contend; operations on the same session
// serialize on its shard lock. Expiry is lazy on access, with CleanupExpired
// as the sweep for sessions nobody touches again.
type MemoryStore struct {
	shards [shardCount]*memoryShard
	ttl    time.Duration
	now    func() time.Time
}

// NewMemoryStore creates a memory store with the given TTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	store := &MemoryStore{ttl: ttl, now: time.Now}
	for i := range store.shards {
		store.shards[i] = &memoryShard{entries: make(map[string]*memoryEntry)}
	}
	return store
}

func (s *MemoryStore) shardFor(sessionID string) *memoryShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return s.shards[h.Sum32()%shardCount]
}

// GetOrCreate returns the session's context, creating an empty one if none
// exists or the previous one expired.
func (s *MemoryStore) GetOrCreate(ctx context.Context, sessionID string) (*ConversationContext, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	shard := s.shardFor(sessionID)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	now := s.now()
	entry, ok := shard.entries[sessionID]
	if !ok || now.After(entry.expiresAt) {
		conv := NewContext(sessionID)
		shard.entries[sessionID] = &memoryEntry{conv: conv, expiresAt: now.Add(s.ttl)}
		return conv.Clone(), nil
	}

	entry.conv.LastAccessedAt = now
	entry.expiresAt = now.Add(s.ttl)
	return entry.conv.Clone(), nil
}

// Get returns the session's context, refreshing its TTL.
func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*ConversationContext, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	shard := s.shardFor(sessionID)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	now := s.now()
	entry, ok := shard.entries[sessionID]
	if !ok {
		return nil, apperr.NotFound("session not found").WithOp("session.Get")
	}
	if now.After(entry.expiresAt) {
		delete(shard.entries, sessionID)
		return nil, apperr.Gone("session expired").WithOp("session.Get")
	}

	entry.conv.LastAccessedAt = now
	entry.expiresAt = now.Add(s.ttl)
	return entry.conv.Clone(), nil
}

// Save stores the context, resetting its TTL.
func (s *MemoryStore) Save(ctx context.Context, conv *ConversationContext) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	shard := s.shardFor(conv.SessionID)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	now := s.now()
	stored := conv.Clone()
	stored.LastAccessedAt = now
	shard.entries[conv.SessionID] = &memoryEntry{conv: stored, expiresAt: now.Add(s.ttl)}
	return nil
}

// Update atomically applies fn to the session's context and commits the
// result. The shard lock is held for the whole mutation, so concurrent
// updates on the same session serialize and none of their effects are lost.
func (s *MemoryStore) Update(ctx context.Context, sessionID string, fn UpdateFunc) (*ConversationContext, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	shard := s.shardFor(sessionID)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	now := s.now()
	var working *ConversationContext
	entry, ok := shard.entries[sessionID]
	if !ok || now.After(entry.expiresAt) {
		working = NewContext(sessionID)
	} else {
		working = entry.conv.Clone()
	}

	if err := fn(working); err != nil {
		return nil, err
	}
	// A cancelled request must not commit a half-finished turn.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	working.LastAccessedAt = now
	shard.entries[sessionID] = &memoryEntry{conv: working, expiresAt: now.Add(s.ttl)}
	return working.Clone(), nil
}

// Delete removes the session.
func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	shard := s.shardFor(sessionID)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	delete(shard.entries, sessionID)
	return nil
}

// Exists reports whether the session is present and unexpired, without
// refreshing its TTL.
func (s *MemoryStore) Exists(ctx context.Context, sessionID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	shard := s.shardFor(sessionID)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	entry, ok := shard.entries[sessionID]
	if !ok {
		return false, nil
	}
	return !s.now().After(entry.expiresAt), nil
}

// CleanupExpired sweeps all shards and removes expired sessions.
func (s *MemoryStore) CleanupExpired(ctx context.Context) (int, error) {
	removed := 0
	for _, shard := range s.shards {
		if err := ctx.Err(); err != nil {
			return removed, err
		}

		shard.mu.Lock()
		now := s.now()
		for id, entry := range shard.entries {
			if now.After(entry.expiresAt) {
				delete(shard.entries, id)
				removed++
			}
		}
		shard.mu.Unlock()
	}
	return removed, nil
}

// ClearAll removes every session and returns how many were removed.
func (s *MemoryStore) ClearAll(ctx context.Context) (int, error) {
	removed := 0
	for _, shard := range s.shards {
		if err := ctx.Err(); err != nil {
			return removed, err
		}

		shard.mu.Lock()
		removed += len(shard.entries)
		shard.entries = make(map[string]*memoryEntry)
		shard.mu.Unlock()
	}
	return removed, nil
}

// Ping always succeeds for the in-process store.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}
