// Package conversation implements the per-user dialogue of the bot: every
// inbound message is interpreted according to the user's session state, which
// yields the replies to send and the next state.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/m3rciful/pqbot/core/logger"
	"github.com/m3rciful/pqbot/internal/catalog"
	"github.com/m3rciful/pqbot/internal/requestlog"
	"github.com/m3rciful/pqbot/internal/session"
)

// Searcher finds catalog documents by filename.
type Searcher interface {
	Search(query string) []catalog.Document
}

// SessionStore commits session changes under a per-user lock.
type SessionStore interface {
	Update(userID int64, fn func(session.Session) session.Session) session.Session
}

// Options tunes an Engine.
type Options struct {
	// StartImage is sent before the welcome text; empty disables it.
	StartImage string
	// Now overrides the clock stamped on request log entries.
	Now func() time.Time
}

// Engine drives conversations. It is safe for concurrent use; messages of one
// user are serialized by the session store.
type Engine struct {
	catalog  Searcher
	sessions SessionStore
	requests requestlog.Sink
	opts     Options
}

// New wires an engine.
func New(cat Searcher, sessions SessionStore, requests requestlog.Sink, opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{catalog: cat, sessions: sessions, requests: requests, opts: opts}
}

// Handle processes one inbound message and returns the replies in send order
// together with the state the session was left in. A panic inside the step is
// turned into the generic error reply and an idle session.
func (e *Engine) Handle(ctx context.Context, in Inbound) Result {
	var (
		replies []Reply
		from    session.State
	)
	final := e.sessions.Update(in.Sender.ID, func(cur session.Session) (next session.Session) {
		from = cur.State()
		defer func() {
			if r := recover(); r != nil {
				logger.Error(ctx, logger.CompConv, "step.panic",
					slog.String("from_state", from.String()),
					slog.String("trigger", trigger(in)),
					slog.String("err", fmt.Sprint(r)),
					slog.String("stack", string(debug.Stack())),
				)
				replies = []Reply{plain(MsgError)}
				next = session.Idle()
			}
		}()
		next, replies = e.step(ctx, cur, in)
		return next
	})

	logger.LogEvent(ctx, logger.Conv, slog.LevelInfo, "transition",
		slog.Int64("user_id", in.Sender.ID),
		slog.String("trigger", trigger(in)),
		slog.String("from_state", from.String()),
		slog.String("to_state", final.State().String()),
		slog.Int("replies", len(replies)),
	)
	return Result{Replies: replies, State: final.State()}
}

func trigger(in Inbound) string {
	if in.IsCommand {
		return in.Command
	}
	return "text"
}

// step is the transition table.
func (e *Engine) step(ctx context.Context, cur session.Session, in Inbound) (session.Session, []Reply) {
	if in.IsCommand {
		return e.command(cur, in)
	}
	switch cur.State() {
	case session.StateAwaitingSearchQuery:
		return e.search(ctx, in.Text)
	case session.StateAwaitingSelection:
		return e.selectResult(ctx, cur, in.Text)
	case session.StateAwaitingFreeText:
		return e.submit(ctx, in)
	default:
		return session.Idle(), []Reply{plain(msgUnknownText)}
	}
}

func (e *Engine) command(cur session.Session, in Inbound) (session.Session, []Reply) {
	switch in.Command {
	case CmdStart:
		var replies []Reply
		if e.opts.StartImage != "" {
			replies = append(replies, Reply{Kind: ReplyPhoto, Path: e.opts.StartImage})
		}
		welcome := Reply{Kind: ReplyText, Text: welcomeText(in.Sender.FullName()), HTML: true, Keyboard: mainKeyboard}
		return cur, append(replies, welcome)
	case CmdSearch:
		return session.AwaitingQuery(), []Reply{textKB(msgSearchPrompt, promptKeyboard)}
	case CmdRequest:
		return session.AwaitingText(), []Reply{textKB(msgRequestPrompt, promptKeyboard)}
	case CmdHelp:
		return cur, []Reply{plain(helpText())}
	case CmdCancel:
		return session.Idle(), []Reply{textKB(msgFarewell, mainKeyboard)}
	default:
		return cur, []Reply{plain(msgUnknown)}
	}
}

func (e *Engine) search(ctx context.Context, query string) (session.Session, []Reply) {
	results := e.catalog.Search(strings.TrimSpace(query))
	logger.Debug(ctx, logger.CompCatalog, "search",
		slog.String("query", logger.SanitizeLimit(query, 128)),
		slog.Int("results", len(results)),
	)
	if len(results) == 0 {
		return session.Idle(), []Reply{plain(msgNoMatch)}
	}
	return session.Selecting(results), []Reply{textKB(resultsText(results), numberKeyboard(len(results)))}
}

func (e *Engine) selectResult(ctx context.Context, cur session.Session, input string) (session.Session, []Reply) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if errors.Is(err, strconv.ErrRange) {
		return session.Idle(), []Reply{plain(msgBadSelection)}
	}
	if err != nil {
		return session.Idle(), []Reply{plain(msgBadNumber)}
	}
	doc, ok := cur.Result(n)
	if !ok {
		logger.Debug(ctx, logger.CompConv, "selection.out_of_range",
			slog.Int("selection", n),
			slog.Int("results", cur.PendingCount()),
		)
		return session.Idle(), []Reply{plain(msgBadSelection)}
	}
	return session.Idle(), []Reply{
		plain(msgDownloading),
		{Kind: ReplyDocument, Path: doc.Filename, Keyboard: documentKeyboard},
	}
}

func (e *Engine) submit(ctx context.Context, in Inbound) (session.Session, []Reply) {
	echo := plain("You sent: " + in.Text)
	entry := requestlog.NewEntry(in.Sender.Tag(), in.Text, e.opts.Now())
	if err := e.requests.Append(ctx, entry); err != nil {
		logger.Error(ctx, logger.CompRequests, "append.fail",
			slog.String("request_id", entry.ID.String()),
			slog.String("err", err.Error()),
		)
		return session.Idle(), []Reply{echo, plain(MsgError)}
	}
	logger.Info(ctx, logger.CompRequests, "saved",
		slog.String("request_id", entry.ID.String()),
		slog.String("username", in.Sender.Username),
	)
	return session.Idle(), []Reply{echo, plain(msgSaved)}
}
