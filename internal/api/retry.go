package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/n0madic/go-chorus/internal/auth"
)

// withRetry runs send up to 1+MaxRetries times with exponential backoff
// between attempts. Only transient failures are retried.
func (c *Client) withRetry(ctx context.Context, method, path string, send func(context.Context) error) error {
	attempts := 1 + c.cfg.MaxRetries

	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s %s: %w", method, path, err)
		}

		if i > 0 {
			backoff := time.Duration(1<<uint(i-1)) * c.retryBase
			c.logger.Debug("api.retry",
				"method", method,
				"path", path,
				"attempt", i+1,
				"backoff", backoff,
				"error", lastErr,
			)
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s %s: canceled during backoff: %w", method, path, ctx.Err())
			case <-time.After(backoff):
			}
		}

		lastErr = send(ctx)
		if lastErr == nil || !retriable(lastErr) {
			return lastErr
		}
	}
	if attempts > 1 {
		return fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
	}
	return lastErr
}

func retriable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, auth.ErrTokenExpired) {
		return false
	}
	return true
}
