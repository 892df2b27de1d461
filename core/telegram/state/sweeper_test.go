package state

import (
	"context"
	"testing"
	"time"
)

func TestSweeperRemovesIdleConversations(t *testing.T) {
	store := NewMemoryStore(time.Millisecond)
	if err := store.Start(context.Background(), 1, "a"); err != nil {
		t.Fatalf("start: %v", err)
	}
	s, err := NewSweeper(store, "")
	if err != nil {
		t.Fatalf("NewSweeper: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	s.Sweep()
	if n := store.Len(); n != 0 {
		t.Fatalf("expected empty store, got %d", n)
	}

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}

func TestSweeperRejectsBadSchedule(t *testing.T) {
	if _, err := NewSweeper(NewMemoryStore(time.Minute), "every now and then"); err == nil {
		t.Fatalf("expected schedule error")
	}
}
