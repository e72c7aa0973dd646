// Package telegram connects the dialogue machine to the Telegram Bot API
// through long polling.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ideamans/go-sheettable/dialogue"
)

// Handler consumes incoming messages. *dialogue.Machine implements it.
type Handler interface {
	Handle(ctx context.Context, msg dialogue.Message) error
}

// Options configure a Bot.
type Options struct {
	PollTimeout time.Duration    // long polling timeout, default 60s
	AllowChat   func(int64) bool // nil allows every chat
	Logger      *zap.Logger
}

// Bot sends and receives Telegram messages.
type Bot struct {
	api    *tgbotapi.BotAPI
	opts   Options
	logger *zap.Logger
}

var _ dialogue.Sender = (*Bot)(nil)

// New authenticates with token against the public Bot API.
func New(token string, opts Options) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}
	return NewWithAPI(api, opts), nil
}

// NewWithAPI wraps an authenticated client.
func NewWithAPI(api *tgbotapi.BotAPI, opts Options) *Bot {
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = 60 * time.Second
	}
	if opts.AllowChat == nil {
		opts.AllowChat = func(int64) bool { return true }
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Bot{api: api, opts: opts, logger: opts.Logger.Named("telegram")}
}

// Username returns the bot account name without the leading "@".
func (b *Bot) Username() string {
	return b.api.Self.UserName
}

// Send implements dialogue.Sender.
func (b *Bot) Send(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("failed to send message to chat %d: %w", chatID, err)
	}
	return nil
}

// Run polls for updates and passes every text message from an allowed chat
// to h. Each user's messages are handled in order on their own goroutine.
// It returns when ctx is done and the messages already received are handled.
func (b *Bot) Run(ctx context.Context, h Handler) error {
	if h == nil {
		return errors.New("handler is required")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = int(b.opts.PollTimeout / time.Second)
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	d := newDispatcher(func(msg dialogue.Message) {
		if err := h.Handle(ctx, msg); err != nil {
			b.logger.Error("failed to handle message",
				zap.Int64("chat_id", msg.ChatID),
				zap.Int64("user_id", msg.UserID),
				zap.Error(err))
		}
	})
	defer d.wait()

	b.logger.Info("polling for updates",
		zap.String("bot", b.api.Self.UserName),
		zap.Int("timeout_seconds", u.Timeout))

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("polling stopped")
			return nil

		case update, ok := <-updates:
			if !ok {
				return nil
			}
			msg, ok := toMessage(update)
			if !ok {
				continue
			}
			if !b.opts.AllowChat(msg.ChatID) {
				b.logger.Debug("message from disallowed chat ignored", zap.Int64("chat_id", msg.ChatID))
				continue
			}
			d.dispatch(msg)
		}
	}
}

// toMessage extracts a text message. Edits, channel posts and other
// update kinds are skipped.
func toMessage(update tgbotapi.Update) (dialogue.Message, bool) {
	m := update.Message
	if m == nil || m.Chat == nil || m.Text == "" {
		return dialogue.Message{}, false
	}
	msg := dialogue.Message{
		ChatID: m.Chat.ID,
		Text:   m.Text,
	}
	if m.From != nil {
		msg.UserID = m.From.ID
		msg.Username = m.From.UserName
	}
	return msg, true
}
