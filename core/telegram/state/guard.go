package state

import "sync"

// Guard admits at most one in-flight update per user.
type Guard struct {
	mu   sync.Mutex
	busy map[int64]struct{}
}

// NewGuard returns an empty guard.
func NewGuard() *Guard {
	return &Guard{busy: make(map[int64]struct{})}
}

// TryAcquire marks the user busy. It fails if the user already is; on success
// the caller must invoke release exactly once.
func (g *Guard) TryAcquire(user int64) (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, held := g.busy[user]; held {
		return nil, false
	}
	g.busy[user] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.busy, user)
			g.mu.Unlock()
		})
	}, true
}
