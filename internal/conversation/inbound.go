package conversation

import (
	"strconv"
	"strings"
)

// Identity describes who sent a message. ID keys the session; the names are
// only used for presentation and the request log tag.
type Identity struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// Tag is how the sender appears in the request log: the username when the
// account has one, otherwise the numeric ID.
func (id Identity) Tag() string {
	if u := strings.TrimSpace(id.Username); u != "" {
		return u
	}
	return strconv.FormatInt(id.ID, 10)
}

// FullName is the name used to greet the user.
func (id Identity) FullName() string {
	first := strings.TrimSpace(id.FirstName)
	last := strings.TrimSpace(id.LastName)
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	default:
		return "User"
	}
}

// Inbound is one text message, already classified.
type Inbound struct {
	Sender Identity
	Text   string
	// Command is the canonical command name ("/search") when IsCommand is set.
	// Unknown commands keep their lower-cased spelling.
	Command   string
	IsCommand bool
}

// ParseInbound classifies text. Anything starting with "/" is a command; the
// "@botname" suffix and arguments are dropped and aliases are resolved.
func ParseInbound(sender Identity, text string) Inbound {
	in := Inbound{Sender: sender, Text: text}
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") {
		return in
	}
	name, _, _ := strings.Cut(trimmed, " ")
	name, _, _ = strings.Cut(name, "@")
	name = strings.ToLower(name)
	if spec, ok := LookupCommand(name); ok {
		name = spec.Name
	}
	in.Command = name
	in.IsCommand = true
	return in
}
