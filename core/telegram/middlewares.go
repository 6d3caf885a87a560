package telegram

import (
	"strings"
	"time"

	coreconfig "github.com/m3rciful/pqbot/core/config"
	"github.com/m3rciful/pqbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// MiddlewareHooks lets the application talk to the user from the chain.
type MiddlewareHooks struct {
	OnLimited tele.HandlerFunc
	OnPanic   func(tele.Context)
}

// DefaultMiddlewares builds the shared middleware chain: recover, rate limit,
// update logger, message metrics.
func DefaultMiddlewares(cfg *coreconfig.Config, hooks MiddlewareHooks) []Middleware {
	mws := []Middleware{
		{Name: "recover", Use: middleware.Recover(middleware.RecoverOptions{OnPanic: hooks.OnPanic})},
	}

	if cfg != nil && cfg.RateLimit.IntervalMS > 0 {
		ex := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
		for _, t := range cfg.RateLimit.ExcludeUpdates {
			ex[strings.ToLower(t)] = struct{}{}
		}
		mws = append(mws, Middleware{
			Name: "rate_limit",
			Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
				Interval:  time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond,
				Exclude:   ex,
				OnLimited: hooks.OnLimited,
			}),
		})
	}

	return append(mws,
		Middleware{Name: "logger", Use: middleware.LoggerMiddleware},
		Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	)
}
