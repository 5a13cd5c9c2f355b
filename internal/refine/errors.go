package refine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/providers/llm"
)

// InvalidInputError rejects a task before any pass executes.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string { return "invalid input: " + e.Reason }

func invalidInput(format string, args ...any) error {
	return &InvalidInputError{Reason: fmt.Sprintf(format, args...)}
}

// IsInvalidInput reports whether err is an input validation failure.
func IsInvalidInput(err error) bool {
	var ie *InvalidInputError
	return errors.As(err, &ie)
}

const (
	defaultRetries = 2
	defaultBackoff = 2 * time.Second
)

// generateWithRetry runs one logical generation for a pass, retrying
// transient failures with linear backoff. Rejections and context
// cancellation come back immediately.
func generateWithRetry(ctx context.Context, client llm.Client, retries int, backoff time.Duration, log *slog.Logger, contextText, instruction string) (string, error) {
	if retries < 0 {
		retries = 0
	}
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			t := time.NewTimer(backoff * time.Duration(attempt))
			select {
			case <-ctx.Done():
				t.Stop()
				return "", ctx.Err()
			case <-t.C:
			}
		}
		text, err := client.Generate(ctx, contextText, instruction)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !llm.IsTransient(err) || ctx.Err() != nil {
			return "", err
		}
		log.Warn("transient generation failure", "attempt", attempt+1, "error", err)
	}
	return "", lastErr
}
