package telegram

import (
	"strings"
	"time"

	coreconfig "github.com/m3rciful/lecturebot/core/config"
	"github.com/m3rciful/lecturebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// MiddlewareOptions supplies the replies and the per-user guard of the
// default chain.
type MiddlewareOptions struct {
	// OnLimited answers updates dropped by the rate limiter.
	OnLimited tele.HandlerFunc
	// Guard enables the busy middleware when set.
	Guard  middleware.Acquirer
	OnBusy tele.HandlerFunc
}

// DefaultMiddlewares builds the chain in order: recover, rate_limit, logger,
// metrics, busy. Rate limiting is skipped when rate_limit.interval_ms is 0.
func DefaultMiddlewares(cfg *coreconfig.Config, opts MiddlewareOptions) []Middleware {
	mws := []Middleware{{Name: "recover", Use: middleware.RecoverMiddleware}}

	if rl, ok := rateLimitOptions(cfg); ok {
		rl.OnLimited = opts.OnLimited
		mws = append(mws, Middleware{Name: "rate_limit", Use: middleware.RateLimitMiddleware(rl)})
	}

	mws = append(mws,
		Middleware{Name: "logger", Use: middleware.LoggerMiddleware},
		Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	)
	if opts.Guard != nil {
		mws = append(mws, Middleware{Name: "busy", Use: middleware.Busy(opts.Guard, opts.OnBusy)})
	}
	return mws
}

func rateLimitOptions(cfg *coreconfig.Config) (middleware.RateLimitOptions, bool) {
	if cfg == nil || cfg.RateLimit.IntervalMS <= 0 {
		return middleware.RateLimitOptions{}, false
	}
	ex := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
	for _, t := range cfg.RateLimit.ExcludeUpdates {
		ex[strings.ToLower(t)] = struct{}{}
	}
	return middleware.RateLimitOptions{
		Interval: time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond,
		Burst:    cfg.RateLimit.Burst,
		Exclude:  ex,
	}, true
}
