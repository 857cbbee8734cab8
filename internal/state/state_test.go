package state

import (
	"errors"
	"sync"
	"testing"
)

func TestStore_GetReturnsInitial(t *testing.T) {
	s := New(42)
	defer s.Close()

	got, err := s.Get()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
}

func TestStore_SetNotifiesListenersInOrder(t *testing.T) {
	s := New(0)
	defer s.Close()

	var calls []string
	if _, err := s.Subscribe(func(next, prev int) {
		calls = append(calls, "first")
		if next != prev+1 {
			t.Errorf("expected next = prev+1, got next=%d prev=%d", next, prev)
		}
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if _, err := s.Subscribe(func(next, prev int) { calls = append(calls, "second") }); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := s.Set(func(n int) int { return n + 1 }); err != nil {
		t.Fatalf("set: %v", err)
	}

	// Listeners run before Set returns.
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Errorf("unexpected listener calls: %v", calls)
	}
}

func TestStore_Unsubscribe(t *testing.T) {
	s := New(0)
	defer s.Close()

	count := 0
	unsubscribe, err := s.Subscribe(func(next, prev int) { count++ })
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	_ = s.Set(func(n int) int { return n + 1 })
	unsubscribe()
	unsubscribe()
	_ = s.Set(func(n int) int { return n + 1 })

	if count != 1 {
		t.Errorf("expected 1 notification, got %d", count)
	}
}

func TestStore_ConcurrentSetsAreSerialized(t *testing.T) {
	s := New([]int{})
	defer s.Close()

	const writers = 8
	const perWriter = 100

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				_ = s.Set(func(xs []int) []int {
					next := make([]int, len(xs), len(xs)+1)
					copy(next, xs)
					return append(next, len(xs))
				})
			}
		}()
	}
	wg.Wait()

	got, _ := s.Get()
	if len(got) != writers*perWriter {
		t.Fatalf("expected %d entries, got %d", writers*perWriter, len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("entry %d = %d; transitions interleaved", i, v)
		}
	}
}

func TestStore_Closed(t *testing.T) {
	s := New("x")
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	if _, err := s.Get(); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed from Get, got %v", err)
	}
	if err := s.Set(func(v string) string { return v }); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed from Set, got %v", err)
	}
	if _, err := s.Subscribe(func(next, prev string) {}); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed from Subscribe, got %v", err)
	}
}

func TestStore_ListenerPanicIsRecovered(t *testing.T) {
	s := New(0)
	defer s.Close()

	var recovered any
	if err := s.OnListenerPanic(func(r any) { recovered = r }); err != nil {
		t.Fatalf("on panic: %v", err)
	}
	if _, err := s.Subscribe(func(next, prev int) { panic("boom") }); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	var after int
	if _, err := s.Subscribe(func(next, prev int) { after = next }); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := s.Set(func(n int) int { return n + 1 }); err != nil {
		t.Fatalf("set: %v", err)
	}

	if recovered != "boom" {
		t.Errorf("expected recovered value %q, got %v", "boom", recovered)
	}
	if after != 1 {
		t.Errorf("expected later listener to see 1, got %d", after)
	}
	got, err := s.Get()
	if err != nil || got != 1 {
		t.Errorf("expected state 1 after panic, got %d (err %v)", got, err)
	}
}
