package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"carbot_backend/platform/apperr"
)

func TestMemoryGetOrCreateIdempotent(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	first, err := store.GetOrCreate(ctx, "abc")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	_, err = store.Update(ctx, "abc", func(conv *ConversationContext) error {
		conv.AddUserTurn("hola")
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	second, err := store.GetOrCreate(ctx, "abc")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if second.SessionID != first.SessionID {
		t.Errorf("session ID changed: %q vs %q", second.SessionID, first.SessionID)
	}
	if len(second.Turns) != 1 {
		t.Errorf("expected existing session with 1 turn, got %d", len(second.Turns))
	}
}

func TestMemoryTTLExpiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	current := time.Now()
	store.now = func() time.Time { return current }

	if _, err := store.GetOrCreate(ctx, "abc"); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	// Within the TTL the session survives.
	current = current.Add(30 * time.Second)
	if _, err := store.Get(ctx, "abc"); err != nil {
		t.Fatalf("Get within TTL: %v", err)
	}

	// The read refreshed the TTL, so another 50s is still alive.
	current = current.Add(50 * time.Second)
	if ok, _ := store.Exists(ctx, "abc"); !ok {
		t.Fatal("session should be alive after TTL refresh")
	}

	// Past the refreshed deadline the session is gone.
	current = current.Add(2 * time.Minute)
	if _, err := store.Get(ctx, "abc"); !apperr.Is(err, apperr.KindGone) {
		t.Errorf("expired Get error = %v, want gone", err)
	}

	// And a brand new context replaces it.
	conv, err := store.GetOrCreate(ctx, "abc")
	if err != nil {
		t.Fatalf("GetOrCreate after expiry: %v", err)
	}
	if len(conv.Turns) != 0 {
		t.Errorf("expected fresh session, got %d turns", len(conv.Turns))
	}
}

func TestMemoryGetMissing(t *testing.T) {
	store := NewMemoryStore(time.Minute)

	if _, err := store.Get(context.Background(), "nope"); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("Get missing error = %v, want not found", err)
	}
}

func TestMemoryUpdateConcurrentTurns(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	const workers = 10
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(n int) {
			defer wg.Done()
			_, err := store.Update(ctx, "abc", func(conv *ConversationContext) error {
				conv.AddUserTurn(fmt.Sprintf("message %d", n))
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

func TestMemoryUpdateRollsBackOnError(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	if _, err := store.Update(ctx, "abc", func(conv *ConversationContext) error {
		conv.AddUserTurn("kept")
		return nil
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	wantErr := errors.New("boom")
	_, err := store.Update(ctx, "abc", func(conv *ConversationContext) error {
		conv.AddUserTurn("discarded")
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Update error = %v, want %v", err, wantErr)
	}

	conv, err := store.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(conv.Turns) != 1 || conv.Turns[0].Text != "kept" {
		t.Errorf("failed update leaked into stored context: %+v", conv.Turns)
	}
}

func TestMemoryUpdateRespectsCancellation(t *testing.T) {
	store := NewMemoryStore(time.Minute)

	cancelled, cancel := context.WithCancel(context.Background())
	_, err := store.Update(cancelled, "abc", func(conv *ConversationContext) error {
		conv.AddUserTurn("during cancel")
		cancel()
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Update error = %v, want context.Canceled", err)
	}

	if ok, _ := store.Exists(context.Background(), "abc"); ok {
		t.Error("cancelled update must not create the session")
	}
}

func TestMemoryTurnCap(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	_, err := store.Update(ctx, "abc", func(conv *ConversationContext) error {
		for i := 0; i < MaxTurns+5; i++ {
			conv.AddUserTurn(fmt.Sprintf("m%d", i))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	conv, err := store.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(conv.Turns) != MaxTurns {
		t.Errorf("turn count = %d, want %d", len(conv.Turns), MaxTurns)
	}
	if conv.Turns[len(conv.Turns)-1].Text != fmt.Sprintf("m%d", MaxTurns+4) {
		t.Errorf("newest turn lost: %q", conv.Turns[len(conv.Turns)-1].Text)
	}
}

func TestMemoryCleanupExpired(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	current := time.Now()
	store.now = func() time.Time { return current }

	for i := 0; i < 5; i++ {
		if _, err := store.GetOrCreate(ctx, fmt.Sprintf("old-%d", i)); err != nil {
			t.Fatalf("GetOrCreate: %v", err)
		}
	}
	current = current.Add(2 * time.Minute)
	if _, err := store.GetOrCreate(ctx, "fresh"); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	removed, err := store.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("CleanupExpired: %v", err)
	}
	if removed != 5 {
		t.Errorf("removed = %d, want 5", removed)
	}
	if ok, _ := store.Exists(ctx, "fresh"); !ok {
		t.Error("fresh session should survive cleanup")
	}
}

func TestMemoryDeleteAndClearAll(t *testing.T) {
	store := NewMemoryStore(time.Minute)
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
	if err := store.Delete(ctx, "a"); err != nil {
		t.Errorf("deleting a missing session should not error, got %v", err)
	}

	removed, err := store.ClearAll(ctx)
	if err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if removed != 1 {
		t.Errorf("ClearAll removed = %d, want 1", removed)
	}
	if ok, _ := store.Exists(ctx, "b"); ok {
		t.Error("ClearAll left sessions behind")
	}

	removed, err = store.ClearAll(ctx)
	if err != nil {
		t.Fatalf("ClearAll on empty store: %v", err)
	}
	if removed != 0 {
		t.Errorf("ClearAll on empty store removed = %d, want 0", removed)
	}
}
