// Package cmd runs a bot process: configuration, bootstrap, then the Telegram
// runtime until a signal or a restart request stops it.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m3rciful/lecturebot/core/buildinfo"
	coreconfig "github.com/m3rciful/lecturebot/core/config"
	"github.com/m3rciful/lecturebot/core/logger"
	coretelegram "github.com/m3rciful/lecturebot/core/telegram"
)

// ConfigCarrier exposes access to the embedded core configuration.
type ConfigCarrier interface {
	CoreConfig() *coreconfig.Config
}

// TelegramApp is the minimal interface required to run a Telegram bot.
type TelegramApp interface {
	TelegramRunOptions() (coretelegram.RunOptions, error)
}

// Options describe how to load configuration, bootstrap the app, and run the bot.
type Options struct {
	// ConfigEnvVar names the variable holding the config path (CONFIG_PATH by default).
	ConfigEnvVar      string
	DefaultConfigPath string

	LoadConfig func(path string) (ConfigCarrier, error)
	Bootstrap  func(cfg ConfigCarrier) (TelegramApp, error)

	ShutdownLogger func() error
	RunTelegram    func(ctx context.Context, opts coretelegram.RunOptions) error
}

var (
	errNoLoader    = errors.New("cmd: LoadConfig is required")
	errNoBootstrap = errors.New("cmd: Bootstrap is required")
)

// Run loads configuration, bootstraps the app and blocks in the Telegram
// runtime. It returns when the runtime stops.
func Run(opts Options) error {
	if opts.LoadConfig == nil {
		return errNoLoader
	}
	if opts.Bootstrap == nil {
		return errNoBootstrap
	}
	path, err := opts.configPath()
	if err != nil {
		return err
	}

	log.Printf("%s: loading config %s", buildinfo.String(), path)
	cfg, err := opts.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("cmd: failed to load config: %w", err)
	}
	if cfg.CoreConfig() == nil {
		return fmt.Errorf("cmd: loaded config is missing core configuration")
	}

	app, err := opts.Bootstrap(cfg)
	if err != nil {
		return fmt.Errorf("cmd: bootstrap failed: %w", err)
	}
	defer opts.closeLogger()

	runOpts, err := app.TelegramRunOptions()
	if err != nil {
		return fmt.Errorf("cmd: telegram options build failed: %w", err)
	}
	withLifecycleLogs(&runOpts, time.Now())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	run := opts.RunTelegram
	if run == nil {
		run = coretelegram.RunTelegram
	}
	return run(ctx, runOpts)
}

func (o Options) configPath() (string, error) {
	env := o.ConfigEnvVar
	if env == "" {
		env = "CONFIG_PATH"
	}
	if p := os.Getenv(env); p != "" {
		return p, nil
	}
	if o.DefaultConfigPath == "" {
		return "", fmt.Errorf("cmd: config path not provided via %s or DefaultConfigPath", env)
	}
	return o.DefaultConfigPath, nil
}

func (o Options) closeLogger() {
	shutdown := o.ShutdownLogger
	if shutdown == nil {
		shutdown = logger.Shutdown
	}
	if err := shutdown(); err != nil {
		log.Printf("logger shutdown error: %v", err)
	}
}

// withLifecycleLogs logs "ready" after the app's own start hook succeeds and
// "shutdown" before its stop hook runs.
func withLifecycleLogs(o *coretelegram.RunOptions, startedAt time.Time) {
	start, stop := o.OnStart, o.OnStop

	o.OnStart = func(ctx context.Context, rt coretelegram.Runtime) error {
		if start != nil {
			if err := start(ctx, rt); err != nil {
				return err
			}
		}
		attrs := []slog.Attr{
			slog.Duration("startup", logger.RoundMS(time.Since(startedAt))),
			slog.String("version", buildinfo.Version),
		}
		if rt.Bot != nil && rt.Bot.Me != nil {
			attrs = append(attrs, slog.String("bot", rt.Bot.Me.Username))
		}
		logger.Info(ctx, logger.CompApp, "ready", attrs...)
		return nil
	}

	o.OnStop = func(ctx context.Context, rt coretelegram.Runtime) error {
		logger.Info(ctx, logger.CompApp, "shutdown",
			slog.Duration("uptime", logger.RoundMS(time.Since(startedAt))),
		)
		if stop == nil {
			return nil
		}
		return stop(ctx, rt)
	}
}
