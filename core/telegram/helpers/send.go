package helpers

import (
	tele "gopkg.in/telebot.v4"
)

// Options builds send options for an optional HTML parse mode and markup.
func Options(html bool, markup *tele.ReplyMarkup) *tele.SendOptions {
	opts := &tele.SendOptions{ReplyMarkup: markup}
	if html {
		opts.ParseMode = tele.ModeHTML
	}
	return opts
}

func firstMarkup(markup []*tele.ReplyMarkup) *tele.ReplyMarkup {
	if len(markup) > 0 {
		return markup[0]
	}
	return nil
}

// SendText sends raw text (no parse mode) to the current recipient.
func SendText(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	return c.Send(text, Options(false, firstMarkup(markup)))
}

