package middleware

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	coreconfig "github.com/m3rciful/pqbot/core/config"
	"github.com/m3rciful/pqbot/core/logger"
	tghelpers "github.com/m3rciful/pqbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

const pruneThreshold = 4096

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	Interval  time.Duration
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
	// Now overrides the clock.
	Now func() time.Time
}

// UpdateKind classifies an update for rate limit exclusions.
func UpdateKind(c tele.Context) string {
	msg := c.Message()
	switch {
	case msg == nil:
		return "other"
	case msg.Document != nil || msg.Photo != nil:
		return coreconfig.UpdateDocument
	case strings.HasPrefix(strings.TrimSpace(msg.Text), "/"):
		return coreconfig.UpdateCommand
	default:
		return coreconfig.UpdateMessage
	}
}

// RateLimitMiddleware enforces a minimum interval between updates of one user.
// Limited updates are dropped after OnLimited runs.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	var (
		mu       sync.Mutex
		lastSeen = make(map[int64]time.Time)
	)
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}
			kind := UpdateKind(c)
			if _, skip := opts.Exclude[kind]; skip {
				return next(c)
			}

			t := now()
			mu.Lock()
			if last, ok := lastSeen[user.ID]; ok && t.Sub(last) < opts.Interval {
				mu.Unlock()
				logger.TG.LogAttrs(tghelpers.BuildContext(c), slog.LevelWarn, "rate limit",
					slog.String("event", "tg.rate_limit"),
					slog.String("status", "rate_limited"),
					slog.String("action", kind),
				)
				if opts.OnLimited != nil {
					_ = opts.OnLimited(c)
				}
				return nil
			}
			lastSeen[user.ID] = t
			if len(lastSeen) > pruneThreshold {
				for id, seen := range lastSeen {
					if t.Sub(seen) >= opts.Interval {
						delete(lastSeen, id)
					}
				}
			}
			mu.Unlock()
			return next(c)
		}
	}
}
