package middleware

import (
	"log/slog"
	"sync"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/tradebot/core/logger"
	tghelpers "github.com/m3rciful/tradebot/core/telegram/helpers"
)

// RateLimitOptions configures RateLimitMiddleware.
type RateLimitOptions struct {
	Interval time.Duration
	// Exclude lists update kinds ("callback", "message") that bypass the limit.
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
	// Now is used by tests; defaults to time.Now.
	Now func() time.Time
}

// RateLimitMiddleware drops updates arriving from the same user within
// Interval of the previous accepted one.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	var (
		mu       sync.Mutex
		lastSeen = make(map[int64]time.Time)
		lastGC   time.Time
	)
	allow := func(userID int64, at time.Time) bool {
		mu.Lock()
		defer mu.Unlock()
		if at.Sub(lastGC) > time.Minute {
			for id, ts := range lastSeen {
				if at.Sub(ts) >= opts.Interval {
					delete(lastSeen, id)
				}
			}
			lastGC = at
		}
		if last, ok := lastSeen[userID]; ok && at.Sub(last) < opts.Interval {
			return false
		}
		lastSeen[userID] = at
		return true
	}

	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}
			if _, skip := opts.Exclude[updateKind(c.Update())]; skip {
				return next(c)
			}
			if allow(user.ID, now()) {
				return next(c)
			}

			logger.Warn(tghelpers.BuildContext(c), "tg", "update.rate_limited",
				slog.String("status", "ok"),
				slog.String("outcome", "rate_limited"),
				slog.String("event_kind", updateKind(c.Update())),
			)
			if opts.OnLimited != nil {
				return opts.OnLimited(c)
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
	}
	return "other"
}
