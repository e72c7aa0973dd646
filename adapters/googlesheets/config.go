package googlesheets

import (
	"time"

	sheettable "github.com/ideamans/go-sheettable"
)

// Config represents configuration specific to Google Sheets adapter
type Config struct {
	RequestsPerMinute int // Client-side request limit, 0 disables (per-user Sheets quota is 60/min)
	Burst             int // Requests allowed at once when limiting (default: 1)
}

// DefaultStoreConfig returns the recommended default store configuration for Google Sheets
func DefaultStoreConfig() *sheettable.Config {
	return &sheettable.Config{
		MaxRetries:    3,
		RetryInterval: 1 * time.Second,
	}
}
