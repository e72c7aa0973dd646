// Package config loads labbot configuration from a YAML file and LABBOT_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ideamans/go-sheettable/dialogue"
	"github.com/ideamans/go-sheettable/internal/logging"
)

// Spreadsheet backends.
const (
	BackendGoogle = "google"
	BackendExcel  = "excel"
	BackendMemory = "memory"
)

// Config is the complete labbot configuration.
type Config struct {
	Bot         BotConfig         `koanf:"bot"`
	Chat        ChatConfig        `koanf:"chat"`
	Spreadsheet SpreadsheetConfig `koanf:"spreadsheet"`
	Logging     logging.Config    `koanf:"logging"`
	Metrics     MetricsConfig     `koanf:"metrics"`
}

// BotConfig configures the chat bot.
type BotConfig struct {
	Token         Secret            `koanf:"token"`
	Name          string            `koanf:"name"`
	Command       string            `koanf:"command"`
	CancelCommand string            `koanf:"cancel_command"`
	PollTimeout   time.Duration     `koanf:"poll_timeout"`
	Messages      dialogue.Messages `koanf:"messages"`
}

// ChatConfig restricts which chats the bot answers. Empty means all.
type ChatConfig struct {
	AllowedIDs []int64 `koanf:"allowed_ids"`
}

// SpreadsheetConfig configures the table store and its backend.
type SpreadsheetConfig struct {
	Backend           string        `koanf:"backend"`
	ID                string        `koanf:"id"`
	Title             string        `koanf:"title"`
	Locale            string        `koanf:"locale"`
	CredentialsFile   string        `koanf:"credentials_file"`
	ExcelDir          string        `koanf:"excel_dir"`
	RowCount          int           `koanf:"row_count"`
	ColumnCount       int           `koanf:"column_count"`
	MaxRetries        int           `koanf:"max_retries"`    // 0 uses the backend default, negative disables
	RetryInterval     time.Duration `koanf:"retry_interval"` // 0 uses the backend default
	RequestsPerMinute int           `koanf:"requests_per_minute"`
	Burst             int           `koanf:"burst"`
}

// MetricsConfig configures the admin HTTP listener. Empty Listen disables it.
type MetricsConfig struct {
	Listen string `koanf:"listen"`
}

// Secret wraps strings that should be redacted in logs and serialization.
type Secret string

// String implements fmt.Stringer. Always returns redacted value.
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "[REDACTED]"
}

// GoString implements fmt.GoStringer for %#v formatting.
func (s Secret) GoString() string {
	return "Secret([REDACTED])"
}

// Value returns the actual secret value.
func (s Secret) Value() string {
	return string(s)
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Bot.Command == "" {
		cfg.Bot.Command = "lab"
	}
	if cfg.Bot.CancelCommand == "" {
		cfg.Bot.CancelCommand = "cancel"
	}
	if cfg.Bot.PollTimeout == 0 {
		cfg.Bot.PollTimeout = 60 * time.Second
	}

	if cfg.Spreadsheet.Backend == "" {
		cfg.Spreadsheet.Backend = BackendGoogle
	}
	if cfg.Spreadsheet.Title == "" {
		cfg.Spreadsheet.Title = "Study staff"
	}
	if cfg.Spreadsheet.Locale == "" {
		cfg.Spreadsheet.Locale = "en_US"
	}
	if cfg.Spreadsheet.ExcelDir == "" {
		cfg.Spreadsheet.ExcelDir = "data"
	}
	if cfg.Spreadsheet.RowCount == 0 {
		cfg.Spreadsheet.RowCount = 1000
	}
	if cfg.Spreadsheet.ColumnCount == 0 {
		cfg.Spreadsheet.ColumnCount = 10
	}
	if cfg.Spreadsheet.RequestsPerMinute == 0 {
		cfg.Spreadsheet.RequestsPerMinute = 60
	}

	def := logging.NewDefaultConfig()
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = def.Format
	}
}

// Validate checks the configuration. The bot token is checked separately by
// ValidateBot since only the run command needs it.
func (c *Config) Validate() error {
	switch c.Spreadsheet.Backend {
	case BackendGoogle, BackendExcel, BackendMemory:
	default:
		return fmt.Errorf("spreadsheet.backend must be one of google, excel, memory: got %q", c.Spreadsheet.Backend)
	}
	if c.Spreadsheet.RowCount < 2 {
		return errors.New("spreadsheet.row_count must be at least 2")
	}
	if c.Spreadsheet.ColumnCount < 1 {
		return errors.New("spreadsheet.column_count must be positive")
	}
	if c.Spreadsheet.RetryInterval < 0 {
		return errors.New("spreadsheet.retry_interval cannot be negative")
	}
	if c.Spreadsheet.RequestsPerMinute < 0 {
		return errors.New("spreadsheet.requests_per_minute cannot be negative")
	}
	if c.Bot.Command == c.Bot.CancelCommand {
		return fmt.Errorf("bot.command and bot.cancel_command must differ: %q", c.Bot.Command)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

// ValidateBot checks the settings needed to connect to the chat platform.
func (c *Config) ValidateBot() error {
	if c.Bot.Token == "" {
		return errors.New("bot.token is required (set LABBOT_BOT_TOKEN)")
	}
	if c.Bot.PollTimeout < time.Second {
		return errors.New("bot.poll_timeout must be at least 1s")
	}
	return nil
}

// AllowsChat reports whether the bot should answer in chatID.
func (c ChatConfig) AllowsChat(chatID int64) bool {
	if len(c.AllowedIDs) == 0 {
		return true
	}
	for _, id := range c.AllowedIDs {
		if id == chatID {
			return true
		}
	}
	return false
}
