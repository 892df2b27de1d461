package middleware

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/m3rciful/lecturebot/core/logger"
	tghelpers "github.com/m3rciful/lecturebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	// Interval is the refill period of one token.
	Interval  time.Duration
	Burst     int
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
	// IdleTTL drops limiters of users that have been quiet for this long.
	IdleTTL time.Duration
}

type userLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimitMiddleware enforces a per-user token bucket.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = 10 * time.Minute
	}
	var (
		mu       sync.Mutex
		limiters = make(map[int64]*userLimiter)
		lastGC   = time.Now()
	)
	allow := func(userID int64, now time.Time) bool {
		mu.Lock()
		defer mu.Unlock()
		if now.Sub(lastGC) > opts.IdleTTL {
			for id, ul := range limiters {
				if now.Sub(ul.seen) > opts.IdleTTL {
					delete(limiters, id)
				}
			}
			lastGC = now
		}
		ul, ok := limiters[userID]
		if !ok {
			ul = &userLimiter{lim: rate.NewLimiter(rate.Every(opts.Interval), opts.Burst)}
			limiters[userID] = ul
		}
		ul.seen = now
		return ul.lim.AllowN(now, 1)
	}

	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			uid := tghelpers.UserID(c)
			if uid == 0 || opts.Interval <= 0 {
				return next(c)
			}
			if _, skip := opts.Exclude[updateKind(c.Update())]; skip {
				return next(c)
			}
			if allow(uid, time.Now()) {
				return next(c)
			}
			logger.Warn(tghelpers.BuildContext(c), logger.CompTG, "tg.rate_limit",
				slog.Int64("user_id", uid),
			)
			if opts.OnLimited != nil {
				_ = opts.OnLimited(c)
			}
			return nil
		}
	}
}

func updateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return "callback"
	case upd.Message != nil:
		return "message"
	case upd.Query != nil:
		return "inline_query"
	}
	return "other"
}
