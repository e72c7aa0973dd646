package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options configure a Machine.
type Options struct {
	StartCommand  string // default "lab"
	CancelCommand string // default "cancel"
	BotName       string // commands addressed to another bot (/lab@other) are ignored when set
	Messages      Messages
	Logger        *zap.Logger
	Now           func() time.Time
	OnEvent       func(event string)
}

type session struct {
	mu    sync.Mutex
	state State
	id    string // dialogue id, empty when idle
}

// Machine runs one dialogue per user.
type Machine struct {
	sender Sender
	sink   Sink
	opts   Options
	logger *zap.Logger

	mu       sync.RWMutex
	messages Messages
	sessions map[int64]*session
}

// NewMachine creates a Machine replying through sender and storing accepted
// links in sink.
func NewMachine(sender Sender, sink Sink, opts Options) (*Machine, error) {
	if sender == nil {
		return nil, errors.New("sender is required")
	}
	if sink == nil {
		return nil, errors.New("sink is required")
	}

	opts.StartCommand = strings.ToLower(strings.TrimPrefix(opts.StartCommand, "/"))
	if opts.StartCommand == "" {
		opts.StartCommand = "lab"
	}
	opts.CancelCommand = strings.ToLower(strings.TrimPrefix(opts.CancelCommand, "/"))
	if opts.CancelCommand == "" {
		opts.CancelCommand = "cancel"
	}
	if opts.StartCommand == opts.CancelCommand {
		return nil, fmt.Errorf("start and cancel commands must differ: %q", opts.StartCommand)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.OnEvent == nil {
		opts.OnEvent = func(string) {}
	}

	return &Machine{
		sender:   sender,
		sink:     sink,
		opts:     opts,
		logger:   opts.Logger.Named("dialogue"),
		messages: opts.Messages.withDefaults(),
		sessions: make(map[int64]*session),
	}, nil
}

// SetMessages replaces the replies. Empty fields fall back to the defaults.
func (m *Machine) SetMessages(msgs Messages) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = msgs.withDefaults()
}

// State returns the dialogue state of a user.
func (m *Machine) State(userID int64) State {
	m.mu.RLock()
	s, ok := m.sessions[userID]
	m.mu.RUnlock()
	if !ok {
		return Idle
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Active returns the number of users waiting to send a link.
func (m *Machine) Active() int {
	m.mu.RLock()
	sessions := make([]*session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	n := 0
	for _, s := range sessions {
		s.mu.Lock()
		if s.state == WaitingForLink {
			n++
		}
		s.mu.Unlock()
	}
	return n
}

// Handle processes one message. Messages of one user are handled in order;
// different users do not block each other.
func (m *Machine) Handle(ctx context.Context, msg Message) error {
	key := msg.UserID
	if key == 0 {
		key = msg.ChatID
	}
	s := m.lock(key)
	defer m.release(key, s)

	switch cmd, ok := m.command(msg.Text); {
	case ok && cmd == m.opts.StartCommand:
		return m.start(ctx, s, msg)
	case ok && cmd == m.opts.CancelCommand:
		return m.cancel(ctx, s, msg)
	}

	if s.state != WaitingForLink {
		return nil
	}
	return m.receiveLink(ctx, s, msg)
}

// lock returns the locked session of key. A session removed from the map
// while the caller waited for it is not used.
func (m *Machine) lock(key int64) *session {
	for {
		s := m.session(key)
		s.mu.Lock()

		m.mu.RLock()
		current := m.sessions[key] == s
		m.mu.RUnlock()
		if current {
			return s
		}
		s.mu.Unlock()
	}
}

// release unlocks s and drops it from the map once the dialogue is idle.
func (m *Machine) release(key int64, s *session) {
	if s.state == Idle {
		m.mu.Lock()
		if m.sessions[key] == s {
			delete(m.sessions, key)
		}
		m.mu.Unlock()
	}
	s.mu.Unlock()
}

func (m *Machine) session(key int64) *session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[key]
	if !ok {
		s = &session{}
		m.sessions[key] = s
	}
	return s
}

func (m *Machine) start(ctx context.Context, s *session, msg Message) error {
	if s.state == WaitingForLink {
		m.logger.Debug("dialogue preempted", zap.String("dialogue_id", s.id), zap.Int64("user_id", msg.UserID))
	}

	s.state = WaitingForLink
	s.id = uuid.NewString()
	m.opts.OnEvent(EventStarted)
	m.logger.Debug("dialogue started", zap.String("dialogue_id", s.id), zap.Int64("user_id", msg.UserID))

	return m.reply(ctx, msg.ChatID, m.replies().Prompt)
}

func (m *Machine) cancel(ctx context.Context, s *session, msg Message) error {
	if s.state != WaitingForLink {
		return m.reply(ctx, msg.ChatID, m.replies().NothingToCancel)
	}

	m.logger.Debug("dialogue cancelled", zap.String("dialogue_id", s.id), zap.Int64("user_id", msg.UserID))
	s.state = Idle
	s.id = ""
	m.opts.OnEvent(EventCancelled)
	return m.reply(ctx, msg.ChatID, m.replies().Cancelled)
}

func (m *Machine) receiveLink(ctx context.Context, s *session, msg Message) error {
	link := strings.TrimSpace(msg.Text)
	if err := ValidateURL(link); err != nil {
		m.logger.Debug("link rejected", zap.String("dialogue_id", s.id), zap.Int64("user_id", msg.UserID), zap.Error(err))
		m.opts.OnEvent(EventRejected)
		return m.reply(ctx, msg.ChatID, m.replies().Invalid)
	}

	sub := Submission{
		DialogueID:  s.id,
		UserID:      msg.UserID,
		ChatID:      msg.ChatID,
		Username:    msg.Username,
		Link:        link,
		SubmittedAt: m.opts.Now().UTC(),
	}
	if err := m.sink.Record(ctx, sub); err != nil {
		m.logger.Error("failed to record submission", zap.String("dialogue_id", s.id), zap.Int64("user_id", msg.UserID), zap.Error(err))
		m.opts.OnEvent(EventFailed)
		if replyErr := m.reply(ctx, msg.ChatID, m.replies().Failed); replyErr != nil {
			return errors.Join(fmt.Errorf("record submission: %w", err), replyErr)
		}
		return fmt.Errorf("record submission: %w", err)
	}

	m.logger.Info("submission accepted", zap.String("dialogue_id", s.id), zap.Int64("user_id", msg.UserID), zap.String("link", link))
	s.state = Idle
	s.id = ""
	m.opts.OnEvent(EventAccepted)
	return m.reply(ctx, msg.ChatID, m.replies().Accepted)
}

func (m *Machine) replies() Messages {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.messages
}

func (m *Machine) reply(ctx context.Context, chatID int64, text string) error {
	if err := m.sender.Send(ctx, chatID, text); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	return nil
}

// command extracts the command name from "/name", "/name@bot" or "/name args".
func (m *Machine) command(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	word := strings.Fields(text)[0][1:]
	name, target, addressed := strings.Cut(word, "@")
	if addressed && m.opts.BotName != "" && !strings.EqualFold(target, m.opts.BotName) {
		return "", false
	}
	if name == "" {
		return "", false
	}
	return strings.ToLower(name), true
}
