package conversation

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/m3rciful/pqbot/internal/catalog"
)

const (
	msgSearchPrompt  = "Input the course's past question you want"
	msgRequestPrompt = "Please enter your text:"
	msgNoMatch       = "No matching files found."
	msgDownloading   = "Your file is downloading"
	msgBadSelection  = "Invalid selection. Please enter a valid number."
	msgBadNumber     = "Invalid input. Please enter a valid number."
	msgSaved         = "Your input has been saved ✅"
	msgFarewell      = "Bye! I hope we can talk again some day."
	msgUnknown       = "Sorry, I didn't understand that command."
	msgUnknownText   = "Sorry, I didn't understand that command. Send /help to see what I can do."

	// MsgError is sent whenever a step or its delivery fails unexpectedly.
	MsgError = "An error occurred while processing your request. Please try again later."
)

var (
	mainKeyboard     = [][]string{{CmdSearch, CmdRequest}, {CmdHelp, CmdCancel}}
	promptKeyboard   = [][]string{{CmdHelp, CmdCancel}}
	documentKeyboard = [][]string{{CmdSearch}, {CmdRequest}, {CmdHelp}, {"/exit"}}
)

func welcomeText(fullName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "👋 <b>Hello, %s!\n\nWelcome to the Past Questions Bot! </b> 📚\n\n", html.EscapeString(fullName))
	b.WriteString("<b>I'm here to assist you with past question files. Here's what I can do:</b>\n\n")
	b.WriteString("<b>1. /search </b> - Type the name of the past question you want, and I'll find any matching files for you.\n")
	b.WriteString("<b>2. /request </b>- Send your queries and suggestions, and I'll forward them to the bot manager for necessary actions.\n")
	b.WriteString("<b>3. /help </b>- Display available commands and get assistance with how to use this bot.\n\n")
	b.WriteString("Use the <b> /cancel</b> command to halt any process if you no longer need to continue or complete it.\n\n")
	b.WriteString("<i>🎯 Feel free to ask if you have any questions or need assistance! 😊</i>")
	return b.String()
}

func helpText() string {
	lines := make([]string, 0, len(Commands))
	for _, c := range Commands {
		lines = append(lines, c.Name+" -> "+c.Description)
	}
	return strings.Join(lines, "\n")
}

func resultsText(docs []catalog.Document) string {
	var b strings.Builder
	b.WriteString("Matching files:\n")
	for i, d := range docs {
		fmt.Fprintf(&b, "%d. %s - %s 📁\n", i+1, d.Filename, d.Description)
	}
	b.WriteString("\nType the number to select the file.")
	return b.String()
}

// numberKeyboard offers the result numbers, five per row.
func numberKeyboard(n int) [][]string {
	const perRow = 5
	var rows [][]string
	for i := 1; i <= n; i++ {
		if (i-1)%perRow == 0 {
			rows = append(rows, nil)
		}
		rows[len(rows)-1] = append(rows[len(rows)-1], strconv.Itoa(i))
	}
	return rows
}

func plain(s string) Reply { return Reply{Kind: ReplyText, Text: s} }

func textKB(s string, kb [][]string) Reply { return Reply{Kind: ReplyText, Text: s, Keyboard: kb} }
