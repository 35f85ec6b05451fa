package reactive

import (
	"sync"
	"testing"
)

func TestState_GetSet(t *testing.T) {
	state := NewState(42)

	if got := state.Get(); got != 42 {
		t.Errorf("Expected initial value 42, got %d", got)
	}

	state.Set(100)
	if got := state.Get(); got != 100 {
		t.Errorf("Expected value 100 after Set, got %d", got)
	}
}

func TestState_Subscribe(t *testing.T) {
	state := NewState("")
	var seen []string

	cancel := state.Subscribe(func(v string) { seen = append(seen, v) })
	state.Set("go")
	state.Set("go")
	state.Set("wasm")
	cancel()
	state.Set("ignored")

	if len(seen) != 2 || seen[0] != "go" || seen[1] != "wasm" {
		t.Errorf("Expected [go wasm], got %v", seen)
	}
}

func TestState_SubscriberOrder(t *testing.T) {
	state := NewState(0)
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		state.Subscribe(func(int) { order = append(order, i) })
	}
	state.Set(1)

	for i, v := range order {
		if v != i {
			t.Fatalf("Expected subscribers in registration order, got %v", order)
		}
	}
}

func TestState_Update(t *testing.T) {
	state := NewState(10)

	state.Update(func(v int) int {
		return v * 2
	})

	if got := state.Get(); got != 20 {
		t.Errorf("Expected 20 after Update, got %d", got)
	}
}

func TestState_CustomEquality(t *testing.T) {
	calls := 0
	state := NewStateFunc([]int{1}, nil)
	state.Subscribe(func([]int) { calls++ })

	state.Set([]int{1})
	state.Set([]int{1})
	if calls != 2 {
		t.Errorf("nil equality should notify on every Set, got %d calls", calls)
	}
}

func TestState_SubscriberMaySet(t *testing.T) {
	state := NewState(0)
	state.Subscribe(func(v int) {
		if v < 3 {
			state.Set(v + 1)
		}
	})
	state.Set(1)

	if got := state.Get(); got != 3 {
		t.Errorf("Expected 3, got %d", got)
	}
}

func TestState_ConcurrentAccess(t *testing.T) {
	state := NewState(0)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			state.Update(func(v int) int { return v + 1 })
			_ = state.Get()
		}()
	}
	wg.Wait()

	if got := state.Get(); got != 100 {
		t.Errorf("Expected 100, got %d", got)
	}
}

func TestComputed(t *testing.T) {
	first := NewState("Ada")
	last := NewState("Lovelace")
	computes := 0

	full := NewComputed(func() string {
		computes++
		return first.Get() + " " + last.Get()
	}, first, last)

	if got := full.Get(); got != "Ada Lovelace" {
		t.Errorf("Expected 'Ada Lovelace', got %q", got)
	}
	full.Get()
	if computes != 1 {
		t.Errorf("Expected memoized value, computed %d times", computes)
	}

	last.Set("King")
	if got := full.Get(); got != "Ada King" {
		t.Errorf("Expected 'Ada King', got %q", got)
	}
	if computes != 2 {
		t.Errorf("Expected recompute after change, computed %d times", computes)
	}

	full.Dispose()
	first.Set("Grace")
	if got := full.Get(); got != "Ada King" {
		t.Errorf("Disposed computed should not track sources, got %q", got)
	}
}
