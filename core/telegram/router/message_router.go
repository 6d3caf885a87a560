package router

import (
	"time"

	tg "github.com/m3rciful/pqbot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// TextOptions controls fallback behaviour for updates that are not commands.
type TextOptions struct {
	UnknownText  tele.HandlerFunc
	UnknownMedia tele.HandlerFunc
}

// mediaEndpoints are non-text messages the bot cannot use.
var mediaEndpoints = []string{
	tele.OnDocument,
	tele.OnPhoto,
	tele.OnSticker,
	tele.OnVoice,
	tele.OnVideo,
	tele.OnAudio,
}

// TextRoutes routes plain text to the registry's text fallback. Text that
// looks like a command telebot did not match (for example "/SEARCH") is
// resolved through the registry first.
func TextRoutes(reg *tg.Registry, opts TextOptions) []tg.Route {
	text := func(c tele.Context) error {
		start := time.Now()
		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(firstWord(c.Text())); ok && cmd.Handler != nil {
				return handleWithSummary(c, HandlerName(key), cmd.Handler)
			}
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "text", fb)
			}
		}
		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", opts.UnknownText)
		}
		logHandlerSummary(c, "unknown_text", start, "skip", nil)
		return nil
	}

	media := func(c tele.Context) error {
		if opts.UnknownMedia != nil {
			return handleWithSummary(c, "unexpected_media", opts.UnknownMedia)
		}
		logHandlerSummary(c, "unexpected_media", time.Now(), "skip", nil)
		return nil
	}

	routes := []tg.Route{{Endpoint: tele.OnText, Handler: text}}
	for _, ep := range mediaEndpoints {
		routes = append(routes, tg.Route{Endpoint: ep, Handler: media})
	}
	return routes
}

// firstWord returns the leading command token of text without its @botname,
// or "" when text is not a command.
func firstWord(text string) string {
	for i, r := range text {
		if i == 0 && r != '/' {
			return ""
		}
		if r == ' ' || r == '@' || r == '\n' {
			return text[:i]
		}
	}
	return text
}
