package excel

import (
	"time"

	"github.com/ideamans/go-sheettable"
)

// Config holds configuration for Excel adapter
type Config struct {
	Dir string // Directory holding the workbooks; spreadsheet IDs are file names inside it
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Dir == "" {
		return ErrMissingDir
	}
	return nil
}

// DefaultStoreConfig returns the recommended store configuration for local workbooks
func DefaultStoreConfig() *sheettable.Config {
	return &sheettable.Config{
		MaxRetries:    1,
		RetryInterval: 50 * time.Millisecond,
	}
}
