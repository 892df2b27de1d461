package state

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps conversations in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
	items map[int64]*Conversation
}

// NewMemoryStore returns a store whose records expire after ttl of inactivity.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[int64]*Conversation),
	}
}

func (s *MemoryStore) Start(_ context.Context, user int64, step Step, patches ...Patch) error {
	if step == "" {
		return ErrEmptyStep
	}
	conv := newConversation(step, s.now(), patches)
	s.mu.Lock()
	s.items[user] = conv
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, user int64) (*Conversation, error) {
	s.mu.RLock()
	conv, ok := s.items[user]
	s.mu.RUnlock()
	if !ok || s.expired(conv, s.now()) {
		return nil, ErrNoConversation
	}
	return conv.clone(), nil
}

func (s *MemoryStore) Advance(_ context.Context, user int64, step Step, patches ...Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.items[user]
	now := s.now()
	if !ok || s.expired(conv, now) {
		delete(s.items, user)
		return ErrNoConversation
	}
	next := conv.clone()
	apply(next, patches)
	if step != "" {
		next.Step = step
	}
	next.UpdatedAt = now
	s.items[user] = next
	return nil
}

func (s *MemoryStore) End(_ context.Context, user int64) error {
	s.mu.Lock()
	delete(s.items, user)
	s.mu.Unlock()
	return nil
}

// Expire drops every conversation idle for longer than the TTL and returns
// how many were removed.
func (s *MemoryStore) Expire(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for user, conv := range s.items {
		if s.expired(conv, now) {
			delete(s.items, user)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored conversations, expired ones included
// until the next Expire.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Active implements the stats counter.
func (s *MemoryStore) Active(context.Context) (int, error) {
	return s.Len(), nil
}

func (s *MemoryStore) expired(conv *Conversation, now time.Time) bool {
	return now.Sub(conv.UpdatedAt) > s.ttl
}
