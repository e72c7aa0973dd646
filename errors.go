package sheettable

import (
	"errors"
	"fmt"
)

var (
	ErrKeyNotFound   = errors.New("key not found")
	ErrUnknownTable  = errors.New("unknown table")
	ErrInvalidRow    = errors.New("invalid row")
	ErrInvalidSchema = errors.New("invalid schema")
	ErrNoSpreadsheet = errors.New("no spreadsheet configured")
)

// RemoteError reports a failed call to the spreadsheet backend.
type RemoteError struct {
	Op        string // adapter operation, e.g. "batchGet"
	Err       error
	Retryable bool // transient failure (quota, 5xx, transport)
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err carries a retryable *RemoteError.
func IsRetryable(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Retryable
}
