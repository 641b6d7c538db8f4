package utils

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// RetryConfig holds the parameters for the retry strategy. It is used
// only while establishing external connections; a failed ETL run is
// never retried from inside the process.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Logger      *logrus.Logger
}

// Do executes fn with exponential back-off retry logic.
func (r *RetryConfig) Do(operationName string, fn func() error) error {
	var lastErr error
	delay := r.BaseDelay

	for attempt := 1; attempt <= r.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if attempt < r.MaxAttempts {
			r.Logger.Warnf("[retry] %s failed (attempt %d/%d): %v — retrying in %v",
				operationName, attempt, r.MaxAttempts, lastErr, delay)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, r.MaxAttempts, lastErr)
}
