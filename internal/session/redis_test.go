package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"carbot_backend/platform/apperr"
)

func newRedisTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStoreWithClient(client, time.Minute), mr
}

func TestRedisGetOrCreateRoundTrip(t *testing.T) {
	store, _ := newRedisTestStore(t)
	ctx := context.Background()

	conv, err := store.GetOrCreate(ctx, "abc")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if conv.SessionID != "abc" {
		t.Errorf("SessionID = %q", conv.SessionID)
	}

	_, err = store.Update(ctx, "abc", func(c *ConversationContext) error {
		c.AddUserTurn("hola")
		c.SetSearchResults([]int{101, 102})
		c.SelectVehicle(101)
		c.LastAction = "search_cars"
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	loaded, err := store.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(loaded.Turns) != 1 || loaded.Turns[0].Text != "hola" {
		t.Errorf("turns not persisted: %+v", loaded.Turns)
	}
	if len(loaded.LastSearchResults) != 2 {
		t.Errorf("search results not persisted: %v", loaded.LastSearchResults)
	}
	if loaded.SelectedStockID == nil || *loaded.SelectedStockID != 101 {
		t.Errorf("selected vehicle not persisted: %v", loaded.SelectedStockID)
	}
}

func TestRedisTTL(t *testing.T) {
	store, mr := newRedisTestStore(t)
	ctx := context.Background()

	if _, err := store.GetOrCreate(ctx, "abc"); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	if ttl := mr.TTL(redisKey("abc")); ttl != time.Minute {
		t.Errorf("key TTL = %v, want 1m", ttl)
	}

	// Reads refresh the TTL.
	mr.FastForward(30 * time.Second)
	if _, err := store.Get(ctx, "abc"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ttl := mr.TTL(redisKey("abc")); ttl != time.Minute {
		t.Errorf("TTL after read = %v, want 1m", ttl)
	}

	// Redis drops the key past its TTL.
	mr.FastForward(2 * time.Minute)
	if _, err := store.Get(ctx, "abc"); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("expired Get error = %v, want not found", err)
	}
}

func TestRedisUpdateConcurrentTurns(t *testing.T) {
	store, _ := newRedisTestStore(t)
	ctx := context.Background()

	const workers = 10
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(n int) {
			defer wg.Done()
			_, err := store.Update(ctx, "abc", func(c *ConversationContext) error {
				c.AddUserTurn(fmt.Sprintf("message %d", n))
				return nil
			})
			if err != nil {
				t.Errorf("Update: %v", err)
			}
		}(i)
	}
	wg.Wait()

	conv, err := store.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(conv.Turns) != workers {
		t.Errorf("recorded %d turns, want %d", len(conv.Turns), workers)
	}
}

func TestRedisCleanupExpiredRepairsPersistentKeys(t *testing.T) {
	store, mr := newRedisTestStore(t)
	ctx := context.Background()

	if _, err := store.GetOrCreate(ctx, "normal"); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	// Simulate a session key that lost its TTL.
	mr.Set(redisKey("stuck"), `{"sessionId":"stuck"}`)

	removed, err := store.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("CleanupExpired: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if mr.Exists(redisKey("stuck")) {
		t.Error("persistent key should have been removed")
	}
	if !mr.Exists(redisKey("normal")) {
		t.Error("TTL-bearing key should survive")
	}
}

func TestRedisDeleteAndClearAll(t *testing.T) {
	store, mr := newRedisTestStore(t)
	ctx := context.Background()

	if _, err := store.GetOrCreate(ctx, "a"); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if _, err := store.GetOrCreate(ctx, "b"); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	if err := store.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if ok, _ := store.Exists(ctx, "a"); ok {
		t.Error("deleted session still exists")
	}

	removed, err := store.ClearAll(ctx)
	if err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if removed != 1 {
		t.Errorf("ClearAll removed = %d, want 1", removed)
	}
	if mr.Exists(redisKey("b")) {
		t.Error("ClearAll left keys behind")
	}
}
