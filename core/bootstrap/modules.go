package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/lecturebot/core/logger"
)

// Seeder loads reference data into memory before the bot starts serving.
type Seeder interface {
	Seed(ctx context.Context) error
}

// SeederFunc adapts a bare function to the Seeder interface.
type SeederFunc func(ctx context.Context) error

// Seed executes the underlying function.
func (f SeederFunc) Seed(ctx context.Context) error {
	return f(ctx)
}

// RunSeeders executes seeders in order and stops at the first failure.
func RunSeeders(ctx context.Context, seeders ...Seeder) error {
	start := time.Now()
	for i, s := range seeders {
		if s == nil {
			continue
		}
		if err := s.Seed(ctx); err != nil {
			logger.SEED.Error("seed failed", slog.String("event", "seed"), slog.Int("index", i), logger.Err(err))
			return fmt.Errorf("bootstrap: seeder %d: %w", i, err)
		}
	}
	logger.SEED.Info("seeders done",
		slog.String("event", "seed"),
		slog.Int("count", len(seeders)),
		slog.Duration("took", logger.Took(start)),
	)
	return nil
}
