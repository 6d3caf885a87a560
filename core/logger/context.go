package logger

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	keyRID ctxKey = iota
	keyUpdate
	keyHandler
	keyLogger
)

type updateMeta struct {
	updateID int
	userID   int64
	chatID   int64
}

func valueOf[T any](ctx context.Context, key ctxKey) (T, bool) {
	var zero T
	if ctx == nil {
		return zero, false
	}
	v, ok := ctx.Value(key).(T)
	return v, ok
}

func with(ctx context.Context, key ctxKey, v any) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, v)
}

// WithLogger stores log in ctx.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	if log == nil {
		return with(ctx, keyLogger, L)
	}
	return with(ctx, keyLogger, log)
}

// FromContext returns the logger stored in ctx or the base logger.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := valueOf[*slog.Logger](ctx, keyLogger); ok && l != nil {
		return l
	}
	if L == nil {
		return slog.Default()
	}
	return L
}

// WithRID attaches a correlation id.
func WithRID(ctx context.Context, rid string) context.Context {
	return with(ctx, keyRID, rid)
}

// RIDFrom returns the correlation id stored in ctx.
func RIDFrom(ctx context.Context) string {
	rid, _ := valueOf[string](ctx, keyRID)
	return rid
}

// WithUpdateMeta attaches Telegram update identifiers.
func WithUpdateMeta(ctx context.Context, updateID int, userID, chatID int64) context.Context {
	return with(ctx, keyUpdate, updateMeta{updateID: updateID, userID: userID, chatID: chatID})
}

// UpdateIDFrom returns the Telegram update id stored in ctx.
func UpdateIDFrom(ctx context.Context) int {
	m, _ := valueOf[updateMeta](ctx, keyUpdate)
	return m.updateID
}

// UserIDFrom returns the Telegram user id stored in ctx.
func UserIDFrom(ctx context.Context) int64 {
	m, _ := valueOf[updateMeta](ctx, keyUpdate)
	return m.userID
}

// ChatIDFrom returns the Telegram chat id stored in ctx.
func ChatIDFrom(ctx context.Context) int64 {
	m, _ := valueOf[updateMeta](ctx, keyUpdate)
	return m.chatID
}

// WithHandler records which handler is serving the update.
func WithHandler(ctx context.Context, handler string) context.Context {
	if handler == "" {
		if ctx == nil {
			return context.Background()
		}
		return ctx
	}
	return with(ctx, keyHandler, handler)
}

// HandlerFrom returns the handler name stored in ctx.
func HandlerFrom(ctx context.Context) string {
	h, _ := valueOf[string](ctx, keyHandler)
	return h
}
