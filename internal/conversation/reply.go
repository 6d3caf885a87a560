package conversation

import "github.com/m3rciful/pqbot/internal/session"

// ReplyKind tells the transport how to send a reply.
type ReplyKind int

const (
	// ReplyText is a plain or HTML text message.
	ReplyText ReplyKind = iota
	// ReplyPhoto is an image file with an optional caption.
	ReplyPhoto
	// ReplyDocument is a catalog file.
	ReplyDocument
)

func (k ReplyKind) String() string {
	switch k {
	case ReplyPhoto:
		return "photo"
	case ReplyDocument:
		return "document"
	default:
		return "text"
	}
}

// Reply is one outbound message.
type Reply struct {
	Kind ReplyKind
	Text string
	// Path is the file to send for photos and documents.
	Path string
	HTML bool
	// Keyboard holds suggested replies, one slice per row.
	Keyboard [][]string
}

// Result is the outcome of handling one inbound message.
type Result struct {
	Replies []Reply
	State   session.State
}
