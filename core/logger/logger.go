package logger

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/m3rciful/lecturebot/core/buildinfo"
	coreconfig "github.com/m3rciful/lecturebot/core/config"
)

// Component names used across the bot.
const (
	CompApp      = "app"
	CompTG       = "tg"
	CompTGWire   = "tg.wire"
	CompDB       = "db"
	CompMigrate  = "db.migrate"
	CompSeed     = "db.seed"
	CompFSM      = "fsm"
	CompCatalog  = "catalog"
	CompLectures = "lectures"
	CompAI       = "ai"
	CompMetrics  = "metrics"
)

var (
	initOnce   sync.Once
	shutdownMu sync.Mutex
	closed     bool
	closers    []io.Closer

	levelVar slog.LevelVar

	// L is the base logger. It stays usable before InitLogger runs.
	L = slog.New(newContextHandler(slog.NewTextHandler(os.Stderr, nil)))

	DB    = L.With("component", CompDB)
	TG    = L.With("component", CompTG)
	MIG   = L.With("component", CompMigrate)
	TWire = L.With("component", CompTGWire)
	SEED  = L.With("component", CompSeed)
)

// InitLogger configures the global structured logger. Subsequent calls are no-ops.
func InitLogger(cfg *coreconfig.Config) error {
	var initErr error
	initOnce.Do(func() {
		levelVar.Set(selectLevel(cfg))

		main, errs, err := buildOutputs(cfg)
		if err != nil {
			initErr = err
			return
		}

		format := selectFormat(cfg)
		handler := newFormatHandler(main, format, &levelVar)
		if errs != nil {
			handler = newFanoutHandler(handler, newFormatHandler(errs, format, slog.LevelError))
		}

		L = slog.New(newContextHandler(handler))
		slog.SetDefault(L)
		wireComponents()
		logStartup(cfg)
	})
	return initErr
}

func wireComponents() {
	DB = L.With("component", CompDB)
	TG = L.With("component", CompTG)
	MIG = L.With("component", CompMigrate)
	TWire = L.With("component", CompTGWire)
	SEED = L.With("component", CompSeed)
}

func logStartup(cfg *coreconfig.Config) {
	attrs := []slog.Attr{
		slog.String("component", CompApp),
		slog.String("event", "startup"),
		slog.String("go_version", runtime.Version()),
		slog.String("build_version", buildinfo.Version),
		slog.String("build_commit", buildinfo.Commit),
	}
	if cfg != nil {
		attrs = append(attrs, slog.String("cfg_profile", selectProfile(cfg)))
	}
	L.LogAttrs(context.Background(), slog.LevelInfo, "startup", attrs...)
}

// Shutdown closes opened log files.
func Shutdown() error {
	shutdownMu.Lock()
	defer shutdownMu.Unlock()
	if closed {
		return nil
	}
	closed = true

	var errs []error
	for _, c := range closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func selectFormat(cfg *coreconfig.Config) logFormat {
	if cfg == nil {
		return formatJSON
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Format)) {
	case "kv", "text", "pretty":
		return formatKV
	case "json":
		return formatJSON
	}
	if strings.EqualFold(cfg.Logging.Profile, "debug") || strings.EqualFold(cfg.Logging.Profile, "dev") {
		return formatKV
	}
	return formatJSON
}

func selectLevel(cfg *coreconfig.Config) slog.Level {
	if cfg == nil {
		return slog.LevelInfo
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func selectProfile(cfg *coreconfig.Config) string {
	if profile := strings.TrimSpace(cfg.Logging.Profile); profile != "" {
		return strings.ToLower(profile)
	}
	return "prod"
}

// buildOutputs returns the main sink (stdout plus optional bot file) and an
// optional errors-only sink.
func buildOutputs(cfg *coreconfig.Config) (io.Writer, io.Writer, error) {
	if cfg == nil {
		return os.Stdout, nil, nil
	}
	dir := strings.TrimSpace(cfg.Logging.Dir)
	if dir == "" {
		return os.Stdout, nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("logger: failed to create log dir %s: %v", dir, err)
		return os.Stdout, nil, nil
	}

	main := io.Writer(os.Stdout)
	if f := openLogFile(dir, cfg.Logging.BotFile); f != nil {
		main = io.MultiWriter(os.Stdout, f)
	}
	var errs io.Writer
	if f := openLogFile(dir, cfg.Logging.ErrorsFile); f != nil {
		errs = f
	}
	return main, errs, nil
}

func openLogFile(dir, name string) *os.File {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("logger: failed to open log file %s: %v", path, err)
		return nil
	}
	closers = append(closers, f)
	return f
}

// Component constructs a logger scoped to the provided component attribute.
func Component(name string) *slog.Logger {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return L
	}
	return L.With("component", trimmed)
}

// LogEvent writes an event record through logg, falling back to the context logger.
func LogEvent(ctx context.Context, logg *slog.Logger, level slog.Level, event string, attrs ...slog.Attr) {
	if logg == nil {
		logg = FromContext(ctx)
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	logg.LogAttrs(ctx, level, event, attrs...)
}

// Event logs with component scope resolved automatically.
func Event(ctx context.Context, component string, level slog.Level, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), level, event, attrs...)
}

// Debug logs a debug-level event for the given component.
func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelDebug, event, attrs...)
}

// Info logs an info-level event for the given component.
func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelInfo, event, attrs...)
}

// Warn logs a warn-level event for the given component.
func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelWarn, event, attrs...)
}

// Error logs an error-level event for the given component.
func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelError, event, attrs...)
}

// Err is a shorthand attribute for errors. A nil error renders as an empty string.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("err", "")
	}
	return slog.String("err", err.Error())
}
