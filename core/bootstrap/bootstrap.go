package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/lecturebot/core/config"
	coredatabase "github.com/m3rciful/lecturebot/core/database"
	"github.com/m3rciful/lecturebot/core/logger"
)

// Options control the bootstrap pipeline. Nil hooks fall back to the real
// logger, PostgreSQL connection and file migrations.
type Options struct {
	Config   *coreconfig.Config
	Database coredatabase.Config

	LoggerInit func(*coreconfig.Config) error
	Connect    func(coredatabase.Config) (*sqlx.DB, error)
	Migrate    func(coredatabase.Config) error
}

// Result holds what the pipeline opened. The caller owns DB.
type Result struct {
	DB *sqlx.DB
}

// Close releases the database handle.
func (r *Result) Close() error {
	if r == nil || r.DB == nil {
		return nil
	}
	return r.DB.Close()
}

// Run initializes the logger, connects to the database and applies
// migrations, in that order. A failure after connecting closes the handle.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}
	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	connect := opts.Connect
	if connect == nil {
		connect = coredatabase.Connect
	}
	migrate := opts.Migrate
	if migrate == nil {
		migrate = coredatabase.RunMigrations
	}

	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	res := &Result{}
	err := stage("connect", func() error {
		db, err := connect(opts.Database)
		res.DB = db
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}
	if err := stage("migrate", func() error { return migrate(opts.Database) }); err != nil {
		_ = res.Close()
		return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
	}
	return res, nil
}

func stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelError
	}
	logger.Event(context.Background(), logger.CompDB, level, "bootstrap.stage",
		slog.String("stage", name),
		slog.Duration("took", logger.Took(start)),
		slog.String("status", status(err)),
	)
	return err
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
