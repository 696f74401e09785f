package generation

import (
	"sync"
	"testing"
)

func TestCounter_Next(t *testing.T) {
	c := New()

	if c.Current() != 0 {
		t.Errorf("expected zero before first Next, got %d", c.Current())
	}
	if g := c.Next(); g != 1 {
		t.Errorf("expected 1, got %d", g)
	}
	if g := c.Next(); g != 2 {
		t.Errorf("expected 2, got %d", g)
	}
}

func TestCounter_IsCurrent(t *testing.T) {
	c := New()

	if c.IsCurrent(0) {
		t.Error("zero must never be current")
	}

	old := c.Next()
	if !c.IsCurrent(old) {
		t.Error("expected freshly issued tag to be current")
	}

	c.Next()
	if c.IsCurrent(old) {
		t.Error("expected superseded tag to be stale")
	}
}

func TestCounter_ThreadSafety(t *testing.T) {
	c := New()
	numGoroutines := 100
	perGoroutine := 10

	var wg sync.WaitGroup
	results := make(chan uint64, numGoroutines*perGoroutine)

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				results <- c.Next()
			}
		}()
	}

	wg.Wait()
	close(results)

	seen := make(map[uint64]bool)
	for g := range results {
		if seen[g] {
			t.Errorf("duplicate generation issued: %d", g)
		}
		seen[g] = true
	}

	if len(seen) != numGoroutines*perGoroutine {
		t.Errorf("expected %d unique generations, got %d", numGoroutines*perGoroutine, len(seen))
	}
}
