// Package bot connects the conversation engine to Telegram: it turns updates
// into engine input, runs each step on the user's dispatcher partition and
// delivers the resulting replies.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/m3rciful/pqbot/core/logger"
	tg "github.com/m3rciful/pqbot/core/telegram"
	"github.com/m3rciful/pqbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/pqbot/core/telegram/helpers"
	"github.com/m3rciful/pqbot/core/telegram/keyboard"
	"github.com/m3rciful/pqbot/core/telegram/middleware"
	"github.com/m3rciful/pqbot/core/telegram/router"
	tgsender "github.com/m3rciful/pqbot/core/telegram/sender"
	"github.com/m3rciful/pqbot/internal/conversation"

	tele "gopkg.in/telebot.v4"
)

const (
	msgTextOnly = "I can only read text messages. Send /help to see what I can do."
	msgSlowDown = "You are sending messages too quickly. Please wait a moment."
)

// Handler runs one conversation step.
type Handler interface {
	Handle(ctx context.Context, in conversation.Inbound) conversation.Result
}

// Deliverer sends a message to the chat of the current update.
// tele.Context implements it.
type Deliverer interface {
	Send(what interface{}, opts ...interface{}) error
}

// Options configures a Bot.
type Options struct {
	// DocumentsDir is joined with catalog filenames before sending.
	DocumentsDir string
	// Dispatcher serializes steps per user. Nil runs steps inline.
	Dispatcher *tgsender.Dispatcher
}

// Bot is the Telegram front of the conversation engine.
type Bot struct {
	engine     Handler
	docsDir    string
	dispatcher *tgsender.Dispatcher
}

// New creates a Bot.
func New(engine Handler, opts Options) *Bot {
	return &Bot{engine: engine, docsDir: opts.DocumentsDir, dispatcher: opts.Dispatcher}
}

// Registry registers every conversation command, all routed to Process, and
// makes Process the fallback for plain text.
func (b *Bot) Registry() *tg.Registry {
	reg := tg.NewRegistry()
	for _, spec := range conversation.Commands {
		reg.RegisterCommand(spec.Name, commands.Command{
			Handler:     b.Process,
			Description: spec.Description,
			Aliases:     spec.Aliases,
		})
	}
	reg.SetTextFallback(b.Process)
	return reg
}

// Routes binds commands, text and unsupported media.
func (b *Bot) Routes(reg *tg.Registry) []tg.Route {
	routes := router.CommandRoutes(reg)
	return append(routes, router.TextRoutes(reg, router.TextOptions{
		UnknownMedia: func(c tele.Context) error {
			return tghelpers.SendText(c, msgTextOnly)
		},
	})...)
}

// Hooks are the middleware callbacks that talk to the user.
func (b *Bot) Hooks() tg.MiddlewareHooks {
	return tg.MiddlewareHooks{
		OnLimited: func(c tele.Context) error {
			return tghelpers.SendText(c, msgSlowDown)
		},
		OnPanic: func(c tele.Context) {
			_ = tghelpers.SendText(c, conversation.MsgError)
		},
	}
}

// Process feeds a text update to the engine. The step runs on the sender's
// dispatcher partition so one user's messages are handled in arrival order.
func (b *Bot) Process(c tele.Context) error {
	user := c.Sender()
	if user == nil {
		return nil
	}
	in := conversation.ParseInbound(Identity(user), c.Text())
	ctx := tghelpers.BuildContext(c)
	step := func(ctx context.Context) error {
		return b.step(ctx, c, in)
	}
	if b.dispatcher == nil {
		return step(ctx)
	}

	action := "conversation.text"
	if in.IsCommand {
		action = "conversation." + router.HandlerName(in.Command)
	}
	err := b.dispatcher.Enqueue(ctx, user.ID, action, step)
	if err == nil {
		return nil
	}
	level := slog.LevelWarn
	if errors.Is(err, tgsender.ErrQueueClosed) {
		level = slog.LevelInfo
	}
	logger.LogEvent(ctx, logger.TG, level, "enqueue.fail",
		slog.String("action", action),
		slog.String("err", err.Error()),
	)
	_ = tghelpers.SendText(c, conversation.MsgError)
	return fmt.Errorf("bot: enqueue %s: %w", action, err)
}

func (b *Bot) step(ctx context.Context, c tele.Context, in conversation.Inbound) error {
	res := b.engine.Handle(ctx, in)
	err := b.Deliver(ctx, c, res.Replies)
	sent, kb := middleware.GetCounters(c)
	logger.Debug(ctx, logger.CompTelegram, "replies.sent",
		slog.Int("planned", len(res.Replies)),
		slog.Int("sent", sent),
		slog.Bool("keyboard", kb),
		slog.String("state", res.State.String()),
	)
	return err
}

// Deliver sends replies in order. The first failure stops the rest, the user
// is told something went wrong and the error is returned. Nothing is retried.
func (b *Bot) Deliver(ctx context.Context, d Deliverer, replies []conversation.Reply) error {
	for i, r := range replies {
		if err := b.send(d, r); err != nil {
			logger.Error(ctx, logger.CompTelegram, "deliver.fail",
				slog.String("kind", r.Kind.String()),
				slog.Int("index", i),
				slog.Int("dropped", len(replies)-i-1),
				slog.String("err", tgsender.SanitizeError(err)),
				slog.String("err_code", tgsender.ClassifyError(err)),
			)
			if nErr := d.Send(conversation.MsgError); nErr != nil {
				logger.Warn(ctx, logger.CompTelegram, "deliver.notice_fail",
					slog.String("err", tgsender.SanitizeError(nErr)),
				)
			}
			return fmt.Errorf("bot: deliver %s: %w", r.Kind, err)
		}
	}
	return nil
}

func (b *Bot) send(d Deliverer, r conversation.Reply) error {
	opts := tghelpers.Options(r.HTML, keyboard.ReplyButtons(r.Keyboard...))
	switch r.Kind {
	case conversation.ReplyPhoto:
		if err := checkFile(r.Path); err != nil {
			return err
		}
		return d.Send(&tele.Photo{File: tele.FromDisk(r.Path), Caption: r.Text}, opts)
	case conversation.ReplyDocument:
		path := b.DocumentPath(r.Path)
		if err := checkFile(path); err != nil {
			return err
		}
		return d.Send(&tele.Document{
			File:     tele.FromDisk(path),
			FileName: filepath.Base(r.Path),
			Caption:  r.Text,
		}, opts)
	default:
		return d.Send(r.Text, opts)
	}
}

// DocumentPath is where the file of a catalog filename lives on disk.
func (b *Bot) DocumentPath(filename string) string {
	return filepath.Join(b.docsDir, filename)
}

func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

// Identity maps a Telegram user to the engine's sender identity.
func Identity(u *tele.User) conversation.Identity {
	if u == nil {
		return conversation.Identity{}
	}
	return conversation.Identity{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
