package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"carbot_backend/platform/apperr"
)

const (
	redisKeyPrefix = "carbot:session:"
	redisLockCount = 64
)

// RedisStore persists conversation contexts as JSON values with a native key
// TTL. Redis removes expired sessions on its own, so an expired and a missing
// session both surface as not found. Same-session mutations serialize on an
// in-process keyed mutex; this store is built for a single API instance
// fronting Redis, not for multi-writer deployments.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	locks  [redisLockCount]sync.Mutex
}

// NewRedisStore connects to Redis using a REDIS_URL-style address.
func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedisStoreWithClient(redis.NewClient(opt), ttl), nil
}

// NewRedisStoreWithClient wraps an existing client, used by tests.
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(sessionID string) string {
	return redisKeyPrefix + sessionID
}

func (s *RedisStore) lockFor(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return &s.locks[h.Sum32()%redisLockCount]
}

// load reads and decodes a session, refreshing its TTL. Returns redis.Nil
// via the error when the key is absent.
func (s *RedisStore) load(ctx context.Context, sessionID string) (*ConversationContext, error) {
	payload, err := s.client.GetEx(ctx, redisKey(sessionID), s.ttl).Bytes()
	if err != nil {
		return nil, err
	}

	var conv ConversationContext
	if err := json.Unmarshal(payload, &conv); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return &conv, nil
}

func (s *RedisStore) persist(ctx context.Context, conv *ConversationContext) error {
	payload, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", conv.SessionID, err)
	}
	if err := s.client.Set(ctx, redisKey(conv.SessionID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("store session %s: %w", conv.SessionID, err)
	}
	return nil
}

// GetOrCreate returns the session's context, creating an empty one if absent.
func (s *RedisStore) GetOrCreate(ctx context.Context, sessionID string) (*ConversationContext, error) {
	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	conv, err := s.load(ctx, sessionID)
	if errors.Is(err, redis.Nil) {
		conv = NewContext(sessionID)
		if err := s.persist(ctx, conv); err != nil {
			return nil, err
		}
		return conv, nil
	}
	if err != nil {
		return nil, err
	}

	conv.LastAccessedAt = time.Now()
	return conv, nil
}

// Get returns the session's context, refreshing its TTL.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (*ConversationContext, error) {
	conv, err := s.load(ctx, sessionID)
	if errors.Is(err, redis.Nil) {
		return nil, apperr.NotFound("session not found").WithOp("session.Get")
	}
	if err != nil {
		return nil, err
	}

	conv.LastAccessedAt = time.Now()
	return conv, nil
}

// Save stores the context, resetting its TTL.
func (s *RedisStore) Save(ctx context.Context, conv *ConversationContext) error {
	stored := conv.Clone()
	stored.LastAccessedAt = time.Now()
	return s.persist(ctx, stored)
}

// Update atomically applies fn to the session's context and commits the
// result. The keyed mutex serializes same-session updates so interleaved
// turns never drop each other's writes.
func (s *RedisStore) Update(ctx context.Context, sessionID string, fn UpdateFunc) (*ConversationContext, error) {
	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	conv, err := s.load(ctx, sessionID)
	if errors.Is(err, redis.Nil) {
		conv = NewContext(sessionID)
	} else if err != nil {
		return nil, err
	}

	if err := fn(conv); err != nil {
		return nil, err
	}
	// A cancelled request must not commit a half-finished turn.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conv.LastAccessedAt = time.Now()
	if err := s.persist(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// Delete removes the session.
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, redisKey(sessionID)).Err()
}

// Exists reports whether the session is present, without refreshing its TTL.
func (s *RedisStore) Exists(ctx context.Context, sessionID string) (bool, error) {
	count, err := s.client.Exists(ctx, redisKey(sessionID)).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CleanupExpired removes session keys that lost their TTL (e.g. restored
// from a dump). Redis expires normal sessions natively, so this sweep only
// repairs keys that would otherwise live forever.
func (s *RedisStore) CleanupExpired(ctx context.Context) (int, error) {
	removed := 0
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		ttl, err := s.client.TTL(ctx, key).Result()
		if err != nil {
			return removed, err
		}
		if ttl == -1 {
			if err := s.client.Del(ctx, key).Err(); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, iter.Err()
}

// ClearAll removes every session key and returns how many were removed.
func (s *RedisStore) ClearAll(ctx context.Context) (int, error) {
	removed := 0
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		deleted, err := s.client.Del(ctx, iter.Val()).Result()
		if err != nil {
			return removed, err
		}
		removed += int(deleted)
	}
	return removed, iter.Err()
}

// Ping reports whether Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
