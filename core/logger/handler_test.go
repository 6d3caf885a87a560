package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, format logFormat, fn func(*slog.Logger)) string {
	t.Helper()
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	h := newStructuredHandler(handlerConfig{level: slog.LevelDebug, writer: aw, format: format})
	fn(slog.New(h))
	require.NoError(t, aw.Flush())
	require.NoError(t, aw.Close())
	return strings.TrimSpace(buf.String())
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	ctx := WithRID(context.Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)

	line := render(t, formatKV, func(l *slog.Logger) {
		LogEvent(ctx, l.With("component", CompConv), slog.LevelInfo, "transition",
			slog.String("status", "OK"),
			slog.String("from_state", "idle"),
			slog.String("to_state", "awaiting_search_query"),
		)
	})

	tokens := strings.Split(line, " ")
	expected := []string{"ts=", "level=INFO", "component=conversation", "event=transition", "status=ok", "rid=rid-123", "update_id=42", "user_id=7", "chat_id=9"}
	require.GreaterOrEqual(t, len(tokens), len(expected), line)
	for i, prefix := range expected {
		assert.True(t, strings.HasPrefix(tokens[i], prefix), "token %d = %s, want prefix %s", i, tokens[i], prefix)
	}
	assert.Contains(t, line, "from_state=idle to_state=awaiting_search_query")
}

func TestStructuredHandlerJSONCompactsRID(t *testing.T) {
	ctx := WithRID(context.Background(), BuildRID(35, 36, 1))

	line := render(t, formatJSON, func(l *slog.Logger) {
		LogEvent(ctx, l, slog.LevelError, "deliver.fail",
			slog.Any("err", errors.New("boom")),
			slog.Duration("duration", 1500*time.Microsecond),
		)
	})

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &got))
	assert.Equal(t, "ERROR", got["level"])
	assert.Equal(t, "app", got["component"])
	assert.Equal(t, "z.10.1", got["rid"])
	assert.Equal(t, "35:36:1", got["rid_full"])
	assert.Equal(t, "boom", got["err"])
	assert.EqualValues(t, 2, got["duration_ms"])
	assert.True(t, strings.HasPrefix(line, `{"ts":`), line)
}

func TestStructuredHandlerDropsEmptyAndUnknownOutcome(t *testing.T) {
	line := render(t, formatKV, func(l *slog.Logger) {
		l.Info("", slog.String("username", ""), slog.String("outcome", "weird"), Err(nil))
	})
	assert.Contains(t, line, "event=unknown")
	assert.NotContains(t, line, "username=")
	assert.NotContains(t, line, "outcome=")
}

func TestStructuredHandlerGroups(t *testing.T) {
	line := render(t, formatKV, func(l *slog.Logger) {
		l.WithGroup("req").Info("grouped", slog.Group("q", slog.String("text", "a b")))
	})
	assert.Contains(t, line, `req.q.text="a b"`)
}

func TestCompactRIDPassesThroughOtherFormats(t *testing.T) {
	assert.Equal(t, "abc", CompactRID("abc"))
	assert.Equal(t, "1:x:2", CompactRID("1:x:2"))
	assert.Equal(t, "1.a.z", CompactRID("1:10:35"))
}

func TestRatioSampler(t *testing.T) {
	s := newRatioSampler(1, 3)
	got := []bool{s.Allow(), s.Allow(), s.Allow(), s.Allow()}
	assert.Equal(t, []bool{true, false, false, true}, got)

	s.Set(0, 0)
	assert.True(t, s.Allow())
}

func TestParseRatioSpec(t *testing.T) {
	n, d := parseRatioSpec("2/5")
	assert.Equal(t, []int{2, 5}, []int{n, d})
	n, d = parseRatioSpec("10")
	assert.Equal(t, []int{1, 10}, []int{n, d})
	n, d = parseRatioSpec("off")
	assert.Equal(t, []int{0, 0}, []int{n, d})
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "a\tb\nc", Sanitize("a\tb\nc\x00\u200b\x7f"))
	assert.Equal(t, "ab", SanitizeLimit("abc", 2))
}

func TestComponentLoggersUsableBeforeInit(t *testing.T) {
	require.NotNil(t, L)
	require.NotNil(t, Conv)
	assert.NotPanics(t, func() {
		Info(context.Background(), CompCatalog, "loaded", slog.Int("results", 4))
	})
}
