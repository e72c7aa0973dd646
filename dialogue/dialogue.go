// Package dialogue implements the coursework submission conversation.
//
// A user starts a dialogue with the start command (/lab by default). The bot
// asks for a link and waits; every following message is validated as a URL.
// A valid link is handed to the Sink and the dialogue ends, an invalid one
// gets a re-prompt. Sessions live in memory, one per user, and never expire.
package dialogue

import (
	"context"
	"time"
)

// State is the position of a user in the conversation.
type State int

const (
	// Idle means no dialogue is open.
	Idle State = iota
	// WaitingForLink means the bot has asked for a link.
	WaitingForLink
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case WaitingForLink:
		return "waiting_for_link"
	default:
		return "unknown"
	}
}

// Message is an incoming chat message.
type Message struct {
	ChatID   int64
	UserID   int64
	Username string
	Text     string
}

// Submission is an accepted coursework link.
type Submission struct {
	DialogueID  string
	UserID      int64
	ChatID      int64
	Username    string
	Link        string
	SubmittedAt time.Time
}

// Sender delivers replies to a chat.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Sink persists accepted submissions.
type Sink interface {
	Record(ctx context.Context, s Submission) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, s Submission) error

// Record calls f.
func (f SinkFunc) Record(ctx context.Context, s Submission) error {
	return f(ctx, s)
}

// Event names passed to Options.OnEvent.
const (
	EventStarted   = "started"
	EventAccepted  = "accepted"
	EventRejected  = "rejected"
	EventFailed    = "failed"
	EventCancelled = "cancelled"
)

// Messages are the bot replies.
type Messages struct {
	Prompt          string `koanf:"prompt"`
	Accepted        string `koanf:"accepted"`
	Invalid         string `koanf:"invalid"`
	Failed          string `koanf:"failed"`
	Cancelled       string `koanf:"cancelled"`
	NothingToCancel string `koanf:"nothing_to_cancel"`
}

// DefaultMessages returns the English replies.
func DefaultMessages() Messages {
	return Messages{
		Prompt:          "Send a link to your lab work.",
		Accepted:        "The link has been added.",
		Invalid:         "Please send a valid link.",
		Failed:          "Could not save the link, please send it again later.",
		Cancelled:       "Submission cancelled.",
		NothingToCancel: "Nothing to cancel.",
	}
}

// withDefaults fills empty replies from DefaultMessages.
func (m Messages) withDefaults() Messages {
	d := DefaultMessages()
	if m.Prompt == "" {
		m.Prompt = d.Prompt
	}
	if m.Accepted == "" {
		m.Accepted = d.Accepted
	}
	if m.Invalid == "" {
		m.Invalid = d.Invalid
	}
	if m.Failed == "" {
		m.Failed = d.Failed
	}
	if m.Cancelled == "" {
		m.Cancelled = d.Cancelled
	}
	if m.NothingToCancel == "" {
		m.NothingToCancel = d.NothingToCancel
	}
	return m
}
