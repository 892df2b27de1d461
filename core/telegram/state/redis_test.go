package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, time.Minute), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t)

	if _, err := s.Get(ctx, 5); !errors.Is(err, ErrNoConversation) {
		t.Fatalf("expected ErrNoConversation, got %v", err)
	}
	if err := s.Start(ctx, 5, "pick", WithOptions([]Option{{ID: 3, Label: "Law"}})); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !mr.Exists("conversation:5") {
		t.Fatalf("expected key conversation:5")
	}
	if err := s.Advance(ctx, 5, "next", Set("section_name", "Law")); err != nil {
		t.Fatalf("advance: %v", err)
	}
	conv, err := s.Get(ctx, 5)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if conv.Step != "next" || conv.Value("section_name") != "Law" || conv.Options[0].ID != 3 {
		t.Fatalf("unexpected record: %+v", conv)
	}
	if n, err := s.Active(ctx); err != nil || n != 1 {
		t.Fatalf("Active = %d, %v", n, err)
	}
	if err := s.End(ctx, 5); err != nil {
		t.Fatalf("end: %v", err)
	}
	if err := s.End(ctx, 5); err != nil {
		t.Fatalf("idempotent end: %v", err)
	}
}

func TestRedisStoreTTL(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t)

	_ = s.Start(ctx, 9, "a")
	mr.FastForward(40 * time.Second)
	if err := s.Advance(ctx, 9, "b"); err != nil {
		t.Fatalf("advance: %v", err)
	}
	mr.FastForward(40 * time.Second)
	if _, err := s.Get(ctx, 9); err != nil {
		t.Fatalf("write should refresh the ttl: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := s.Get(ctx, 9); !errors.Is(err, ErrNoConversation) {
		t.Fatalf("expected expiry, got %v", err)
	}
	if err := s.Advance(ctx, 9, "c"); !errors.Is(err, ErrNoConversation) {
		t.Fatalf("advance after expiry: %v", err)
	}
}

func TestRedisStoreEmptyStep(t *testing.T) {
	s, _ := newRedisStore(t)
	if err := s.Start(context.Background(), 1, ""); !errors.Is(err, ErrEmptyStep) {
		t.Fatalf("expected ErrEmptyStep, got %v", err)
	}
}
