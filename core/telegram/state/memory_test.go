package state

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryStoreGetPutRemove(t *testing.T) {
	store := NewMemoryStore()
	if _, ok := store.Get(1); ok {
		t.Fatal("expected no session for fresh store")
	}

	store.Put(Session{UserID: 1, Step: StepAwaitingSymbolChoice, Pairs: []string{"BTCUSDT"}})
	got, ok := store.Get(1)
	if !ok || got.Step != StepAwaitingSymbolChoice {
		t.Fatalf("Get = %+v, %v", got, ok)
	}

	store.Remove(1)
	store.Remove(1)
	if _, ok := store.Get(1); ok {
		t.Fatal("session should be removed")
	}
	if store.Len() != 0 {
		t.Fatalf("Len = %d, want 0", store.Len())
	}
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	store := NewMemoryStore()
	pairs := []string{"BTCUSDT", "ETHUSDT"}
	store.Put(Session{UserID: 5, Step: StepAwaitingSymbolChoice, Pairs: pairs})
	pairs[0] = "MUTATED"

	got, _ := store.Get(5)
	if got.Pairs[0] != "BTCUSDT" {
		t.Fatalf("stored pairs aliased caller slice: %v", got.Pairs)
	}
	got.Pairs[1] = "MUTATED"
	again, _ := store.Get(5)
	if again.Pairs[1] != "ETHUSDT" {
		t.Fatalf("returned pairs aliased stored slice: %v", again.Pairs)
	}
}

func TestMemoryStorePutIdleRemoves(t *testing.T) {
	store := NewMemoryStore()
	store.Put(Session{UserID: 3, Step: StepAwaitingDayCount, Symbol: "BTCUSDT"})
	store.Put(Session{UserID: 3, Step: StepIdle})
	if _, ok := store.Get(3); ok {
		t.Fatal("idle put should remove the session")
	}
}

func TestMemoryStoreSweep(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.Put(Session{UserID: 1, Step: StepAwaitingSymbolChoice, UpdatedAt: now.Add(-time.Hour)})
	store.Put(Session{UserID: 2, Step: StepAwaitingSymbolChoice, UpdatedAt: now})

	if n := store.Sweep(now.Add(-time.Minute)); n != 1 {
		t.Fatalf("Sweep removed %d, want 1", n)
	}
	if _, ok := store.Get(1); ok {
		t.Fatal("stale session survived sweep")
	}
	if _, ok := store.Get(2); !ok {
		t.Fatal("fresh session was swept")
	}
}

func TestMemoryStoreConcurrentUsers(t *testing.T) {
	store := NewMemoryStore()
	var wg sync.WaitGroup
	for i := int64(0); i < 100; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			store.Put(Session{UserID: id, Step: StepAwaitingDayCount, Symbol: "BTCUSDT"})
			if _, ok := store.Get(id); !ok {
				t.Errorf("user %d: session missing after put", id)
			}
		}(i)
	}
	wg.Wait()
	if store.Len() != 100 {
		t.Fatalf("Len = %d, want 100", store.Len())
	}
}

func TestRunJanitorDisabled(t *testing.T) {
	done := make(chan struct{})
	go func() {
		RunJanitor(context.Background(), NewMemoryStore(), 0)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor with zero ttl should return immediately")
	}
}

func TestSessionValidate(t *testing.T) {
	cases := []struct {
		name    string
		session Session
		wantErr bool
	}{
		{"symbol choice", Session{Step: StepAwaitingSymbolChoice}, false},
		{"symbol choice with symbol", Session{Step: StepAwaitingSymbolChoice, Symbol: "BTCUSDT"}, true},
		{"day count", Session{Step: StepAwaitingDayCount, Symbol: "BTCUSDT"}, false},
		{"day count without symbol", Session{Step: StepAwaitingDayCount}, true},
		{"idle", Session{Step: StepIdle}, true},
	}
	for _, tc := range cases {
		err := tc.session.Validate()
		if (err != nil) != tc.wantErr {
			t.Fatalf("%s: Validate() err = %v, wantErr %v", tc.name, err, tc.wantErr)
		}
	}
}
