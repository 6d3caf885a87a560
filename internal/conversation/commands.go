package conversation

import "strings"

// Command names understood by the engine.
const (
	CmdStart   = "/start"
	CmdSearch  = "/search"
	CmdRequest = "/request"
	CmdHelp    = "/help"
	CmdCancel  = "/cancel"
)

// CommandSpec describes a command for routing, the help text and the bot menu.
type CommandSpec struct {
	Name        string
	Description string
	Aliases     []string
}

// Commands lists every supported command in menu order.
var Commands = []CommandSpec{
	{Name: CmdStart, Description: "Welcome to the past question bot"},
	{Name: CmdSearch, Description: "Find a past question by course name"},
	{Name: CmdRequest, Description: "Ask for a past question we do not have yet"},
	{Name: CmdHelp, Description: "This particular message"},
	{Name: CmdCancel, Description: "Stop the current action", Aliases: []string{"/exit"}},
}

// LookupCommand resolves a command name or alias, with or without the slash.
func LookupCommand(name string) (CommandSpec, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	for _, c := range Commands {
		if c.Name == name {
			return c, true
		}
		for _, a := range c.Aliases {
			if a == name {
				return c, true
			}
		}
	}
	return CommandSpec{}, false
}
