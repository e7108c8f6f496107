package agent

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"carbot_backend/internal/session"
	platformevents "carbot_backend/platform/events"
	"carbot_backend/platform/logger"
)

type stubClassifier struct {
	mu        sync.Mutex
	decisions []Decision
	err       error
	calls     int
}

func (s *stubClassifier) Classify(_ context.Context, _ string, _ *session.ConversationContext) (Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return Decision{}, s.err
	}
	d := s.decisions[0]
	if len(s.decisions) > 1 {
		s.decisions = s.decisions[1:]
	}
	return d, nil
}

func newTestOrchestrator(t *testing.T, classifier Classifier) (*Orchestrator, session.Store) {
	t.Helper()
	log := logger.New("test")
	store := session.NewMemoryStore(30 * time.Minute)
	dispatcher := newTestDispatcher(t, nil)
	bus := platformevents.NewInMemoryBus(log)
	return NewOrchestrator(store, classifier, dispatcher, nil, bus, log), store
}

func TestProcessRecordsBothTurns(t *testing.T) {
	classifier := &stubClassifier{decisions: []Decision{{Action: ActionRespond, Message: "¡Hola! ¿En qué te ayudo?"}}}
	o, store := newTestOrchestrator(t, classifier)
	ctx := context.Background()

	reply, err := o.Process(ctx, "s1", "hola", "rest")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !reply.Success || reply.Message != "¡Hola! ¿En qué te ayudo?" {
		t.Errorf("reply = %+v", reply)
	}

	conv, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(conv.Turns) != 2 {
		t.Fatalf("recorded %d turns, want user+assistant", len(conv.Turns))
	}
	if conv.Turns[0].Role != session.RoleUser || conv.Turns[1].Role != session.RoleAssistant {
		t.Errorf("turn roles = %q, %q", conv.Turns[0].Role, conv.Turns[1].Role)
	}
	if conv.LastAction != string(ActionRespond) {
		t.Errorf("LastAction = %q", conv.LastAction)
	}
}

func TestProcessEmptyMessage(t *testing.T) {
	o, _ := newTestOrchestrator(t, &stubClassifier{decisions: []Decision{{Action: ActionRespond, Message: "x"}}})

	if _, err := o.Process(context.Background(), "s1", "", "rest"); err == nil {
		t.Fatal("empty message should be rejected")
	}
}

func TestProcessClassifierUnavailableFallback(t *testing.T) {
	classifier := &stubClassifier{err: fmt.Errorf("%w: model overloaded", ErrClassificationUnavailable)}
	o, store := newTestOrchestrator(t, classifier)
	ctx := context.Background()

	reply, err := o.Process(ctx, "s1", "hola", "rest")
	if err != nil {
		t.Fatalf("fallback must not surface as an error: %v", err)
	}
	if reply.Success {
		t.Errorf("fallback reply should not claim success: %+v", reply)
	}
	if reply.Message != msgProcessingError {
		t.Errorf("fallback message = %q", reply.Message)
	}

	// The failed turn is still part of the history.
	conv, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(conv.Turns) != 2 {
		t.Errorf("recorded %d turns, want 2", len(conv.Turns))
	}
}

func TestProcessFinancingGuardRewritesToClarify(t *testing.T) {
	// The classifier asks for financing with no vehicle anywhere in scope.
	classifier := &stubClassifier{decisions: []Decision{{Action: ActionGetFinancingOptions}}}
	o, _ := newTestOrchestrator(t, classifier)

	reply, err := o.Process(context.Background(), "s1", "quiero financiar un auto", "rest")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if reply.Action != ActionClarify {
		t.Errorf("action = %q, want clarify", reply.Action)
	}
	if reply.Financing != nil {
		t.Error("guarded turn must not produce financing data")
	}
}

func TestProcessReferencePhraseGuard(t *testing.T) {
	classifier := &stubClassifier{decisions: []Decision{{Action: ActionGetCarDetails}}}
	o, _ := newTestOrchestrator(t, classifier)

	reply, err := o.Process(context.Background(), "s1", "quiero el más barato", "rest")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if reply.Action != ActionClarify {
		t.Errorf("action = %q, want clarify", reply.Action)
	}
}

func TestProcessContextCarriesAcrossTurns(t *testing.T) {
	classifier := &stubClassifier{decisions: []Decision{
		{Action: ActionSearchCars, Make: "Toyota", Model: "Corolla", Year: 2020},
		{Action: ActionGetFinancingOptions},
	}}
	o, _ := newTestOrchestrator(t, classifier)
	ctx := context.Background()

	first, err := o.Process(ctx, "s1", "busco un corolla 2020", "rest")
	if err != nil {
		t.Fatalf("first turn: %v", err)
	}
	if !first.Success || len(first.Vehicles) != 1 {
		t.Fatalf("first turn = %+v", first)
	}

	second, err := o.Process(ctx, "s1", "¿cómo lo puedo financiar?", "rest")
	if err != nil {
		t.Fatalf("second turn: %v", err)
	}
	if !second.Success || second.Financing == nil {
		t.Fatalf("second turn should quote the single prior result: %+v", second)
	}
	if second.Financing.StockID != 101 {
		t.Errorf("financing quoted stock %d, want 101", second.Financing.StockID)
	}
}

func TestProcessConcurrentTurnsAllRecorded(t *testing.T) {
	classifier := &stubClassifier{decisions: []Decision{{Action: ActionRespond, Message: "ok"}}}
	o, store := newTestOrchestrator(t, classifier)
	ctx := context.Background()

	const turns = 8
	var wg sync.WaitGroup
	wg.Add(turns)
	for i := 0; i < turns; i++ {
		go func(n int) {
			defer wg.Done()
			if _, err := o.Process(ctx, "s1", fmt.Sprintf("mensaje %d", n), "rest"); err != nil {
				t.Errorf("Process: %v", err)
			}
		}(i)
	}
	wg.Wait()

	conv, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(conv.Turns) != turns*2 {
		t.Errorf("recorded %d turns, want %d", len(conv.Turns), turns*2)
	}
}
