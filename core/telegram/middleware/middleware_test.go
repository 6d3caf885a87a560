package middleware

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/pqbot/core/config"

	tele "gopkg.in/telebot.v4"
)

type fakeContext struct {
	tele.Context
	msg   *tele.Message
	store map[string]interface{}
	sent  []interface{}
}

func newContext(userID int64, text string) *fakeContext {
	return &fakeContext{
		msg:   &tele.Message{Text: text, Sender: &tele.User{ID: userID}, Chat: &tele.Chat{ID: userID, Type: tele.ChatPrivate}},
		store: map[string]interface{}{},
	}
}

func (c *fakeContext) Message() *tele.Message        { return c.msg }
func (c *fakeContext) Sender() *tele.User            { return c.msg.Sender }
func (c *fakeContext) Chat() *tele.Chat              { return c.msg.Chat }
func (c *fakeContext) Text() string                  { return c.msg.Text }
func (c *fakeContext) Update() tele.Update           { return tele.Update{ID: 1, Message: c.msg} }
func (c *fakeContext) Get(key string) interface{}    { return c.store[key] }
func (c *fakeContext) Set(key string, v interface{}) { c.store[key] = v }

func (c *fakeContext) Send(what interface{}, _ ...interface{}) error {
	c.sent = append(c.sent, what)
	return nil
}

func TestUpdateKind(t *testing.T) {
	assert.Equal(t, coreconfig.UpdateCommand, UpdateKind(newContext(1, " /search")))
	assert.Equal(t, coreconfig.UpdateMessage, UpdateKind(newContext(1, "uhas")))

	doc := newContext(1, "")
	doc.msg.Document = &tele.Document{}
	assert.Equal(t, coreconfig.UpdateDocument, UpdateKind(doc))
}

func TestRateLimitDropsBurstsPerUser(t *testing.T) {
	now := time.Unix(1000, 0)
	limited := 0
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Second,
		Exclude:   map[string]struct{}{coreconfig.UpdateCommand: {}},
		OnLimited: func(tele.Context) error { limited++; return nil },
		Now:       func() time.Time { return now },
	})
	handled := 0
	h := mw(func(tele.Context) error { handled++; return nil })

	require.NoError(t, h(newContext(1, "uhas")))
	require.NoError(t, h(newContext(1, "again")))
	require.NoError(t, h(newContext(2, "other user")))
	require.NoError(t, h(newContext(1, "/cancel")))
	assert.Equal(t, 3, handled)
	assert.Equal(t, 1, limited)

	now = now.Add(time.Second)
	require.NoError(t, h(newContext(1, "later")))
	assert.Equal(t, 4, handled)
}

func TestRecoverNotifiesAndSwallowsPanic(t *testing.T) {
	notified := false
	h := Recover(RecoverOptions{OnPanic: func(tele.Context) { notified = true }})(func(tele.Context) error {
		panic("boom")
	})
	assert.NoError(t, h(newContext(1, "x")))
	assert.True(t, notified)
}

func TestMetricsCountSuccessfulSends(t *testing.T) {
	c := newContext(1, "x")
	h := MessageMetricsMiddleware(func(c tele.Context) error {
		if err := c.Send("plain"); err != nil {
			return err
		}
		return c.Send("with keyboard", &tele.SendOptions{ReplyMarkup: &tele.ReplyMarkup{}})
	})
	require.NoError(t, h(c))

	n, kb := GetCounters(c)
	assert.Equal(t, 2, n)
	assert.True(t, kb)
}

func TestLoggerMiddlewarePassesThrough(t *testing.T) {
	want := errors.New("handler failed")
	err := LoggerMiddleware(func(tele.Context) error { return want })(newContext(1, "hi"))
	assert.ErrorIs(t, err, want)
}
