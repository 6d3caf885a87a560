// Package middleware holds the global telebot middleware chain.
package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/m3rciful/pqbot/core/logger"
	tghelpers "github.com/m3rciful/pqbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// RecoverOptions configures Recover.
type RecoverOptions struct {
	// OnPanic runs after a recovered panic, e.g. to tell the user something went wrong.
	OnPanic func(c tele.Context)
}

// Recover catches panics in handlers and keeps the bot running.
func Recover(opts RecoverOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				logger.TG.LogAttrs(tghelpers.BuildContext(c), slog.LevelError, "panic recovered",
					slog.String("event", "tg.panic"),
					slog.String("err", fmt.Sprint(r)),
					slog.String("stack", string(debug.Stack())),
				)
				if opts.OnPanic != nil {
					opts.OnPanic(c)
				}
				err = nil
			}()
			return next(c)
		}
	}
}

