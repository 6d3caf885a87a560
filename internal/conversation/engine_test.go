package conversation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/pqbot/internal/catalog"
	"github.com/m3rciful/pqbot/internal/requestlog"
	"github.com/m3rciful/pqbot/internal/session"
)

var ama = Identity{ID: 1001, Username: "ama_k", FirstName: "Ama", LastName: "Kofi"}

type harness struct {
	t       *testing.T
	engine  *Engine
	store   *session.Store
	logPath string
}

func newHarness(t *testing.T, cat *catalog.Catalog) *harness {
	t.Helper()
	if cat == nil {
		cat = catalog.Default()
	}
	store := session.NewStore(session.Options{})
	logPath := filepath.Join(t.TempDir(), "requests.txt")
	eng := New(cat, store, requestlog.NewFileSink(logPath), Options{StartImage: "./images/start.png"})
	return &harness{t: t, engine: eng, store: store, logPath: logPath}
}

func (h *harness) send(who Identity, text string) Result {
	h.t.Helper()
	return h.engine.Handle(context.Background(), ParseInbound(who, text))
}

func (h *harness) session(who Identity) session.Session {
	return h.store.Get(who.ID)
}

func (h *harness) requestLog() string {
	h.t.Helper()
	data, err := os.ReadFile(h.logPath)
	if errors.Is(err, os.ErrNotExist) {
		return ""
	}
	require.NoError(h.t, err)
	return string(data)
}

func texts(res Result) []string {
	out := make([]string, 0, len(res.Replies))
	for _, r := range res.Replies {
		out = append(out, r.Text)
	}
	return out
}

func TestSearchThenSelectDeliversDocument(t *testing.T) {
	h := newHarness(t, nil)

	res := h.send(ama, "/search")
	assert.Equal(t, session.StateAwaitingSearchQuery, res.State)
	assert.Equal(t, []string{msgSearchPrompt}, texts(res))
	assert.Equal(t, promptKeyboard, res.Replies[0].Keyboard)

	res = h.send(ama, "uhas")
	require.Equal(t, session.StateAwaitingSelection, res.State)
	require.Len(t, res.Replies, 1)
	want := "Matching files:\n" +
		"1. UHAS.pdf - Description 1 📁\n" +
		"2. UHAS.pdf - Description 2 📁\n" +
		"3. UHAS.pdf - Description 3 📁\n" +
		"4. UHAS.pdf - Description 4 📁\n" +
		"\nType the number to select the file."
	assert.Equal(t, want, res.Replies[0].Text)
	assert.Equal(t, [][]string{{"1", "2", "3", "4"}}, res.Replies[0].Keyboard)
	assert.Equal(t, 4, h.session(ama).PendingCount())

	res = h.send(ama, "2")
	assert.Equal(t, session.StateIdle, res.State)
	require.Len(t, res.Replies, 2)
	assert.Equal(t, Reply{Kind: ReplyText, Text: msgDownloading}, res.Replies[0])
	assert.Equal(t, ReplyDocument, res.Replies[1].Kind)
	assert.Equal(t, "UHAS.pdf", res.Replies[1].Path)
	assert.Equal(t, documentKeyboard, res.Replies[1].Keyboard)
	assert.Zero(t, h.session(ama).PendingCount())
}

func TestSelectionPicksTheRequestedRecord(t *testing.T) {
	cat := catalog.New(
		catalog.Document{Filename: "MATH101.pdf", Description: "Calculus"},
		catalog.Document{Filename: "CS101.pdf", Description: "Intro"},
		catalog.Document{Filename: "math202.pdf", Description: "Algebra"},
	)
	h := newHarness(t, cat)

	h.send(ama, "/search")
	res := h.send(ama, "MATH")
	require.Equal(t, session.StateAwaitingSelection, res.State)
	assert.Contains(t, res.Replies[0].Text, "1. MATH101.pdf - Calculus")
	assert.Contains(t, res.Replies[0].Text, "2. math202.pdf - Algebra")

	res = h.send(ama, " 2 ")
	require.Len(t, res.Replies, 2)
	assert.Equal(t, "math202.pdf", res.Replies[1].Path)
}

func TestSearchWithoutMatchesReturnsToIdle(t *testing.T) {
	h := newHarness(t, nil)

	h.send(ama, "/search")
	res := h.send(ama, "zzz-nomatch")

	assert.Equal(t, session.StateIdle, res.State)
	assert.Equal(t, []string{msgNoMatch}, texts(res))
	assert.True(t, h.session(ama).IsIdle())
	assert.Zero(t, h.session(ama).PendingCount())
}

func TestEmptyQueryMatchesEverything(t *testing.T) {
	h := newHarness(t, nil)

	h.send(ama, "/search")
	res := h.send(ama, "   ")

	assert.Equal(t, session.StateAwaitingSelection, res.State)
	assert.Equal(t, 4, h.session(ama).PendingCount())
}

func TestInvalidSelectionsEndTheFlow(t *testing.T) {
	cases := map[string]string{
		"zero":         msgBadSelection,
		"negative":     msgBadSelection,
		"beyond count": msgBadSelection,
		"beyond int":   msgBadSelection,
		"not a number": msgBadNumber,
		"decimal":      msgBadNumber,
	}
	inputs := map[string]string{
		"zero":         "0",
		"negative":     "-1",
		"beyond count": "5",
		"beyond int":   "99999999999999999999",
		"not a number": "second one",
		"decimal":      "1.5",
	}
	for name, want := range cases {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, nil)
			h.send(ama, "/search")
			h.send(ama, "uhas")

			res := h.send(ama, inputs[name])
			assert.Equal(t, session.StateIdle, res.State)
			assert.Equal(t, []string{want}, texts(res))
			assert.Zero(t, h.session(ama).PendingCount())
		})
	}
}

func TestFreeTextIsLoggedOnce(t *testing.T) {
	h := newHarness(t, nil)

	res := h.send(ama, "/request")
	assert.Equal(t, session.StateAwaitingFreeText, res.State)
	assert.Equal(t, []string{msgRequestPrompt}, texts(res))

	res = h.send(ama, "please add CS101 2023")
	assert.Equal(t, session.StateIdle, res.State)
	assert.Equal(t, []string{"You sent: please add CS101 2023", msgSaved}, texts(res))
	assert.Equal(t, "ama_k sent: please add CS101 2023\n", h.requestLog())
}

func TestFreeTextTagFallsBackToUserID(t *testing.T) {
	h := newHarness(t, nil)
	anon := Identity{ID: 77, FirstName: "Kwame"}

	h.send(anon, "/request")
	h.send(anon, "line one\nline two")

	assert.Equal(t, "77 sent: line one line two\n", h.requestLog())
}

func TestFreeTextLogFailureRepliesWithError(t *testing.T) {
	store := session.NewStore(session.Options{})
	failing := requestlog.SinkFunc(func(context.Context, requestlog.Entry) error {
		return errors.New("disk full")
	})
	eng := New(catalog.Default(), store, failing, Options{})

	eng.Handle(context.Background(), ParseInbound(ama, "/request"))
	res := eng.Handle(context.Background(), ParseInbound(ama, "anything"))

	assert.Equal(t, session.StateIdle, res.State)
	assert.Equal(t, []string{"You sent: anything", MsgError}, texts(res))
}

func TestCancelFromEveryStateResetsToIdle(t *testing.T) {
	setups := map[string][]string{
		"awaiting query":     {"/search"},
		"awaiting selection": {"/search", "uhas"},
		"awaiting text":      {"/request"},
		"idle":               nil,
	}
	for name, steps := range setups {
		for _, cancel := range []string{"/cancel", "/exit", "/CANCEL@pq_bot"} {
			t.Run(name+" "+cancel, func(t *testing.T) {
				h := newHarness(t, nil)
				for _, s := range steps {
					h.send(ama, s)
				}

				res := h.send(ama, cancel)
				assert.Equal(t, session.StateIdle, res.State)
				require.Len(t, res.Replies, 1)
				assert.Equal(t, msgFarewell, res.Replies[0].Text)
				assert.Equal(t, mainKeyboard, res.Replies[0].Keyboard)
				assert.Zero(t, h.session(ama).PendingCount())
				assert.Empty(t, h.requestLog())
			})
		}
	}
}

func TestStartSendsImageAndWelcome(t *testing.T) {
	h := newHarness(t, nil)
	h.send(ama, "/search")

	res := h.send(ama, "/start")
	assert.Equal(t, session.StateAwaitingSearchQuery, res.State)
	require.Len(t, res.Replies, 2)
	assert.Equal(t, Reply{Kind: ReplyPhoto, Path: "./images/start.png"}, res.Replies[0])

	welcome := res.Replies[1]
	assert.True(t, welcome.HTML)
	assert.True(t, strings.HasPrefix(welcome.Text, "👋 <b>Hello, Ama Kofi!"), welcome.Text)
	assert.Equal(t, mainKeyboard, welcome.Keyboard)

	res = h.send(ama, "uhas")
	assert.Equal(t, session.StateAwaitingSelection, res.State)
}

func TestStartKeepsPendingResults(t *testing.T) {
	h := newHarness(t, nil)
	h.send(ama, "/search")
	h.send(ama, "uhas")

	res := h.send(ama, "/start")
	assert.Equal(t, session.StateAwaitingSelection, res.State)
	assert.Equal(t, 4, h.session(ama).PendingCount())

	res = h.send(ama, "2")
	assert.Equal(t, session.StateIdle, res.State)
	assert.Equal(t, ReplyDocument, res.Replies[1].Kind)
}

func TestStartEscapesNamesAndSkipsMissingImage(t *testing.T) {
	eng := New(catalog.Default(), session.NewStore(session.Options{}), requestlog.NewFileSink(filepath.Join(t.TempDir(), "r.txt")), Options{})

	res := eng.Handle(context.Background(), ParseInbound(Identity{ID: 5, FirstName: "<Eve>"}, "/start"))
	require.Len(t, res.Replies, 1)
	assert.Contains(t, res.Replies[0].Text, "Hello, &lt;Eve&gt;!")

	res = eng.Handle(context.Background(), ParseInbound(Identity{ID: 6}, "/start"))
	assert.Contains(t, res.Replies[0].Text, "Hello, User!")
}

func TestHelpKeepsState(t *testing.T) {
	h := newHarness(t, nil)
	h.send(ama, "/search")
	h.send(ama, "uhas")

	res := h.send(ama, "/help")
	assert.Equal(t, session.StateAwaitingSelection, res.State)
	require.Len(t, res.Replies, 1)
	assert.Contains(t, res.Replies[0].Text, "/start -> Welcome to the past question bot")
	assert.Contains(t, res.Replies[0].Text, "/help -> This particular message")
	assert.Equal(t, 4, h.session(ama).PendingCount())
}

func TestEntryCommandsRestartFlows(t *testing.T) {
	h := newHarness(t, nil)
	h.send(ama, "/search")
	h.send(ama, "uhas")

	res := h.send(ama, "/request")
	assert.Equal(t, session.StateAwaitingFreeText, res.State)
	assert.Zero(t, h.session(ama).PendingCount())

	res = h.send(ama, "/search")
	assert.Equal(t, session.StateAwaitingSearchQuery, res.State)
}

func TestUnknownInput(t *testing.T) {
	h := newHarness(t, nil)

	res := h.send(ama, "hello there")
	assert.Equal(t, session.StateIdle, res.State)
	assert.Equal(t, []string{msgUnknownText}, texts(res))

	h.send(ama, "/request")
	res = h.send(ama, "/weather")
	assert.Equal(t, session.StateAwaitingFreeText, res.State)
	assert.Equal(t, []string{msgUnknown}, texts(res))
	assert.Empty(t, h.requestLog())
}

func TestUsersHaveIndependentSessions(t *testing.T) {
	h := newHarness(t, nil)
	kofi := Identity{ID: 2002, Username: "kofi"}

	h.send(ama, "/search")
	h.send(kofi, "/request")
	h.send(ama, "uhas")
	h.send(kofi, "need PHY 110")

	assert.Equal(t, session.StateAwaitingSelection, h.session(ama).State())
	assert.True(t, h.session(kofi).IsIdle())
	assert.Equal(t, "kofi sent: need PHY 110\n", h.requestLog())
}

func TestConcurrentSubmissionsAreAllLogged(t *testing.T) {
	h := newHarness(t, nil)

	var wg sync.WaitGroup
	for i := int64(1); i <= 10; i++ {
		who := Identity{ID: i}
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.send(who, "/request")
			h.send(who, "paper")
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, strings.Count(h.requestLog(), " sent: paper\n"))
}

type panicSearcher struct{}

func (panicSearcher) Search(string) []catalog.Document { panic("index corrupted") }

func TestPanicInStepRepliesWithErrorAndResets(t *testing.T) {
	store := session.NewStore(session.Options{})
	eng := New(panicSearcher{}, store, requestlog.SinkFunc(func(context.Context, requestlog.Entry) error { return nil }), Options{Now: func() time.Time { return time.Unix(0, 0) }})

	eng.Handle(context.Background(), ParseInbound(ama, "/search"))
	res := eng.Handle(context.Background(), ParseInbound(ama, "uhas"))

	assert.Equal(t, session.StateIdle, res.State)
	assert.Equal(t, []string{MsgError}, texts(res))
	assert.True(t, store.Get(ama.ID).IsIdle())
}
