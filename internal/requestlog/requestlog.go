// Package requestlog records free-text requests sent to the bot.
// Entries are append-only; nothing in the bot reads them back.
package requestlog

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/pqbot/core/logger"
)

// Entry is a single free-text submission.
type Entry struct {
	ID     uuid.UUID
	Sender string
	Text   string
	At     time.Time
}

// NewEntry stamps a submission with a fresh ID.
func NewEntry(sender, text string, at time.Time) Entry {
	return Entry{ID: uuid.New(), Sender: sender, Text: text, At: at}
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Line renders the entry in the requests.txt format: "<sender> sent: <text>\n".
// Line breaks inside the text are folded into spaces so that every entry
// occupies exactly one line.
func (e Entry) Line() string {
	return e.Sender + " sent: " + lineBreaks.Replace(e.Text) + "\n"
}

// Sink stores entries.
type Sink interface {
	Append(ctx context.Context, e Entry) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, e Entry) error

// Append calls f.
func (f SinkFunc) Append(ctx context.Context, e Entry) error {
	return f(ctx, e)
}

// Tee writes to a primary sink and mirrors every entry to secondary sinks.
// Only the primary outcome is reported; mirror failures are logged.
type Tee struct {
	Primary Sink
	Mirrors []Sink
}

// Append stores e in every sink.
func (t Tee) Append(ctx context.Context, e Entry) error {
	if t.Primary == nil {
		return errors.New("requestlog: tee without primary sink")
	}
	err := t.Primary.Append(ctx, e)
	for _, m := range t.Mirrors {
		if m == nil {
			continue
		}
		if mErr := m.Append(ctx, e); mErr != nil {
			logger.Warn(ctx, logger.CompRequests, "mirror.fail",
				slog.String("request_id", e.ID.String()),
				slog.String("err", mErr.Error()),
			)
		}
	}
	return err
}
