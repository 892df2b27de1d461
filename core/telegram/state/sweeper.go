package state

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/m3rciful/lecturebot/core/logger"
	"github.com/m3rciful/lecturebot/core/metrics"
)

// DefaultSweepSpec runs the sweep once a minute.
const DefaultSweepSpec = "@every 1m"

// Sweeper periodically removes idle conversations from a MemoryStore.
type Sweeper struct {
	cron  *cron.Cron
	store *MemoryStore
}

// NewSweeper schedules store.Expire on spec (cron syntax or @every).
func NewSweeper(store *MemoryStore, spec string) (*Sweeper, error) {
	if spec == "" {
		spec = DefaultSweepSpec
	}
	s := &Sweeper{cron: cron.New(), store: store}
	if _, err := s.cron.AddFunc(spec, s.Sweep); err != nil {
		return nil, fmt.Errorf("state: sweep schedule %q: %w", spec, err)
	}
	return s, nil
}

// Sweep runs one expiry pass.
func (s *Sweeper) Sweep() {
	removed := s.store.Expire(time.Now())
	active := s.store.Len()
	metrics.SetActiveConversations(active)
	if removed > 0 {
		logger.Info(context.Background(), logger.CompFSM, "conversation.expired",
			slog.Int("removed", removed),
			slog.Int("active", active),
		)
	}
}

// Start begins the schedule in its own goroutine.
func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running sweep to finish or ctx to end.
func (s *Sweeper) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
