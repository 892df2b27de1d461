// Package app wires the lecture bot: catalog, conversation store, flows and
// commands on top of the core Telegram runtime.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/m3rciful/lecturebot/core/bootstrap"
	"github.com/m3rciful/lecturebot/core/logger"
	"github.com/m3rciful/lecturebot/core/metrics"
	tg "github.com/m3rciful/lecturebot/core/telegram"
	"github.com/m3rciful/lecturebot/core/telegram/callbacks"
	tgcmd "github.com/m3rciful/lecturebot/core/telegram/commands"
	"github.com/m3rciful/lecturebot/core/telegram/middleware"
	"github.com/m3rciful/lecturebot/core/telegram/router"
	"github.com/m3rciful/lecturebot/core/telegram/state"
	"github.com/m3rciful/lecturebot/internal/access"
	"github.com/m3rciful/lecturebot/internal/ai"
	"github.com/m3rciful/lecturebot/internal/catalog"
	"github.com/m3rciful/lecturebot/internal/commands"
	"github.com/m3rciful/lecturebot/internal/filehost"
	"github.com/m3rciful/lecturebot/internal/flows"
	"github.com/m3rciful/lecturebot/internal/texts"

	tele "gopkg.in/telebot.v4"
)

// ConversationStore is a state.Store that can count live conversations.
type ConversationStore interface {
	state.Store
	Active(ctx context.Context) (int, error)
}

// App is the assembled bot.
type App struct {
	cfg *Config
	db  *sqlx.DB

	catalog    *catalog.Service
	store      ConversationStore
	sweeper    *state.Sweeper
	redis      *redis.Client
	dispatcher *state.Dispatcher
	guard      *state.Guard
	access     *access.Checker

	bot      *tele.Bot
	registry *tg.Registry
	flows    *flows.Set
	handlers *commands.Handlers
	metrics  *metrics.Server

	mu   sync.Mutex
	stop context.CancelFunc
}

// New builds the application around an open database. The bot is created
// offline; nothing touches the network until RunTelegram starts.
func New(cfg *Config, db *sqlx.DB) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config provided")
	}
	texts.SetSignature(cfg.Bot.Signature)

	a := &App{
		cfg:      cfg,
		db:       db,
		guard:    state.NewGuard(),
		registry: tg.NewRegistry(),
		metrics:  metrics.NewServer(cfg.Metrics.Listen),
	}
	a.catalog = catalog.NewService(catalog.NewStore(db), catalog.NewCache(), cfg.Timeouts.Store)

	if err := a.openConversations(); err != nil {
		return nil, err
	}

	bot, err := tg.NewBot(&cfg.Config)
	if err != nil {
		return nil, err
	}
	a.bot = bot
	a.access = &access.Checker{
		OwnerID:    cfg.Telegram.AdminID,
		Developers: a.catalog,
		Bot:        bot,
	}
	a.dispatcher = state.NewDispatcher(a.store, flows.DispatcherTexts())

	a.flows = flows.Register(flows.Deps{
		Dispatcher:    a.dispatcher,
		Catalog:       a.catalog,
		Bot:           bot,
		Files:         filehost.New(cfg.GitHub, nil),
		UploadTimeout: cfg.Timeouts.Upload,
	})
	a.handlers = commands.New(commands.Deps{
		Catalog:       a.catalog,
		Access:        a.access,
		AI:            ai.New(cfg.AI, nil),
		Bot:           bot,
		Conversations: a.store,
		Registry:      a.registry,
		OwnerID:       cfg.Telegram.AdminID,
		Restart:       a.restart,
		AITimeout:     cfg.Timeouts.AI,
		ListLimit:     cfg.Bot.ListLimit,
	})

	if err := a.register(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) openConversations() error {
	conv := a.cfg.Conversation
	if conv.Backend == BackendRedis {
		opts, err := redis.ParseURL(a.cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("app: redis url: %w", err)
		}
		a.redis = redis.NewClient(opts)
		a.store = state.NewRedisStore(a.redis, conv.TTL)
		return nil
	}
	mem := state.NewMemoryStore(conv.TTL)
	sweeper, err := state.NewSweeper(mem, conv.Sweep)
	if err != nil {
		return err
	}
	a.store, a.sweeper = mem, sweeper
	return nil
}

// flowSpecs are the commands that open a conversation.
func (a *App) flowSpecs() []commands.Spec {
	return []commands.Spec{
		{Name: "setup", Command: tgcmd.Command{
			Handler: a.flows.Setup.Start, Description: "إعداد النظام",
			Role: tgcmd.RoleAdmin, GroupOnly: true, Aliases: []string{"إعداد", "اعداد"},
		}},
		{Name: "manage_courses", Command: tgcmd.Command{
			Handler: a.flows.Manage.Start, Description: "إدارة الشعب والفصول والمواد",
			Role: tgcmd.RoleAdmin, Aliases: []string{"إدارة_المقررات", "ادارة_المقررات"},
		}},
		{Name: "add_lecture", Command: tgcmd.Command{
			Handler: a.flows.AddLecture.Start, Description: "إضافة محاضرة جديدة",
			Role: tgcmd.RoleAdmin, GroupOnly: true, Aliases: []string{"اضافة_محاضرة", "إضافة_محاضرة"},
		}},
		{Name: "view_lectures", Command: tgcmd.Command{
			Handler: a.flows.ViewLectures.Start, Description: "عرض المحاضرات المتاحة",
			Aliases: []string{"عرض_المحاضرات"},
		}},
	}
}

func (a *App) register() error {
	specs := append(a.handlers.Specs(), a.flowSpecs()...)
	if err := commands.Register(a.registry, specs...); err != nil {
		return err
	}
	if err := a.registry.RegisterCallback(state.PickAction, a.pick); err != nil {
		return err
	}
	if err := a.registry.RegisterCallback(state.CancelAction, a.dispatcher.Cancel); err != nil {
		return err
	}
	a.registry.SetCallbackNotFound(reply(texts.Expired))
	return nil
}

// pick feeds a number pad press into the conversation as typed input.
// Presses from a menu the conversation has moved past count as expired.
func (a *App) pick(c tele.Context) error {
	handled, err := a.dispatcher.DispatchPick(c, callbacks.CallbackPayload(c))
	if err != nil {
		return err
	}
	if !handled {
		return c.Send(texts.Expired)
	}
	return nil
}

// Seeders load the catalog into memory before the first update.
func (a *App) Seeders() []bootstrap.Seeder {
	return []bootstrap.Seeder{a.catalog}
}

// Registry exposes the command registry.
func (a *App) Registry() *tg.Registry { return a.registry }

// TelegramRunOptions implements cmd.TelegramApp.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	boundary := Boundary(a.dispatcher)
	cmdOpts := router.CommandRouteOptions{
		Access: middleware.AccessOptions{
			Authorizer: a.access,
			OnReject:   reply(texts.Denied),
			OnPrivate:  reply(texts.GroupsOnly),
		},
		Boundary: boundary,
	}

	var routes []tg.Route
	routes = append(routes, router.CommandRoutes(a.registry, cmdOpts)...)
	routes = append(routes, router.TextRoutes(a.dispatcher, a.registry, router.TextOptions{
		Commands: cmdOpts,
	})...)
	routes = append(routes,
		router.CallbackRoute(a.registry, router.CallbackOptions{Boundary: boundary}),
		router.InlineRoute(a.handlers.Inline, boundary),
	)

	mws := tg.DefaultMiddlewares(&a.cfg.Config, tg.MiddlewareOptions{
		OnLimited: reply(texts.RateLimited),
		Guard:     a.guard,
		OnBusy:    reply(texts.Busy),
	})

	return tg.RunOptions{
		Config:      &a.cfg.Config,
		Registry:    a.registry,
		Bot:         a.bot,
		Middlewares: mws,
		Routes:      routes,
		OnStart:     a.onStart,
		OnStop:      a.onStop,
	}, nil
}

func (a *App) onStart(ctx context.Context, rt tg.Runtime) error {
	a.mu.Lock()
	a.stop = rt.Stop
	a.mu.Unlock()

	if a.redis != nil {
		if err := a.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("app: redis ping: %w", err)
		}
	}
	if a.sweeper != nil {
		a.sweeper.Start()
	}
	a.metrics.Start()
	logger.Info(ctx, logger.CompApp, "app.started",
		slog.String("conversations", a.cfg.Conversation.Backend),
		slog.Bool("file_host", a.cfg.GitHub.Token != ""),
		slog.Bool("ai", a.cfg.AI.APIKey != ""),
	)
	return nil
}

func (a *App) onStop(ctx context.Context, _ tg.Runtime) error {
	if a.sweeper != nil {
		a.sweeper.Stop(ctx)
	}
	if err := a.metrics.Shutdown(ctx); err != nil {
		logger.Warn(ctx, logger.CompMetrics, "metrics.shutdown_failed", logger.Err(err))
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logger.Warn(ctx, logger.CompApp, "redis.close_failed", logger.Err(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			return fmt.Errorf("app: close database: %w", err)
		}
	}
	return nil
}

// restart stops the runtime; the process supervisor starts it again.
func (a *App) restart() {
	a.mu.Lock()
	stop := a.stop
	a.mu.Unlock()
	if stop == nil {
		logger.Warn(context.Background(), logger.CompApp, "restart.not_running")
		return
	}
	logger.Info(context.Background(), logger.CompApp, "restart.requested")
	stop()
}

func reply(text string) tele.HandlerFunc {
	return func(c tele.Context) error { return c.Send(text) }
}
