package sheettable

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const maxBackoff = 2 * time.Second

// retry runs fn until it succeeds, returns a non-retryable error, or the
// retry budget is spent. Only *RemoteError values marked Retryable are retried.
func (s *Store) retry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var err error
	for i := 0; i <= s.config.MaxRetries; i++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !IsRetryable(err) || i == s.config.MaxRetries {
			break
		}

		// Exponential backoff with reasonable limits
		backoff := s.config.RetryInterval * time.Duration(1<<uint(i))
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
		s.logger.Warn("retrying spreadsheet call",
			zap.String("op", op),
			zap.Int("attempt", i+1),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%s: %w", op, ctx.Err())
		case <-timer.C:
		}
	}

	if IsRetryable(err) && s.config.MaxRetries > 0 {
		return fmt.Errorf("%s failed after %d retries: %w", op, s.config.MaxRetries, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
