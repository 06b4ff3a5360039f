package cancel_test

import (
	"context"
	"sync"
	"testing"

	"github.com/randomizedcoder/go-bounded-queue/internal/cancel"
)

// TestContextCanceler_Race tests concurrent access to ContextCanceler.
// Run with: go test -race ./internal/cancel
func TestContextCanceler_Race(t *testing.T) {
	c := cancel.NewContext(context.Background())
	var wg sync.WaitGroup

	// Spawn readers
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10000; j++ {
				_ = c.Done()
			}
		}()
	}

	// Spawn writer
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Cancel()
	}()

	wg.Wait()

	if !c.Done() {
		t.Error("expected Done() = true after Cancel()")
	}
}

// TestGroup_Race adds members while another goroutine cancels the group.
// Members added after CancelAll are picked up by the final CancelAll.
func TestGroup_Race(t *testing.T) {
	var g cancel.Group
	var wg sync.WaitGroup
	members := make(chan cancel.Canceler, 100)

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				c := cancel.NewAtomic()
				g.Add(c)
				members <- c
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 10; j++ {
			g.CancelAll()
		}
	}()

	wg.Wait()
	close(members)
	g.CancelAll()

	if g.Len() != 100 {
		t.Errorf("expected 100 members, got %d", g.Len())
	}
	for c := range members {
		if !c.Done() {
			t.Error("expected every member cancelled")
		}
	}
}
