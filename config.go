package sheettable

import (
	"time"

	"go.uber.org/zap"
)

// Config represents configuration for the Store
type Config struct {
	MaxRetries    int           // Retries for retryable adapter errors (default: 3, negative disables)
	RetryInterval time.Duration // Base interval for exponential backoff (default: 100ms)
	Locale        string        // Spreadsheet locale used on creation (default: en_US)
	Logger        *zap.Logger   // Optional; a no-op logger is used when nil
}

func (c Config) withDefaults() Config {
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	} else if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = 100 * time.Millisecond
	}
	if c.Locale == "" {
		c.Locale = "en_US"
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}
