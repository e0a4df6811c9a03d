package extractor

import (
	"context"
	stderrors "errors"
	"time"

	"reelgrab/pkg/errors"
	"reelgrab/pkg/logger"
	"reelgrab/pkg/retry"
)

// ErrExhausted is returned when every retry attempt completed without a hard
// error but none produced a media URL. It is an outcome, not a failure: the
// boundary layer maps it to a not-found response.
var ErrExhausted = stderrors.New("no video URL found after all retry attempts")

// Extractor performs one extraction pass for a post URL
type Extractor interface {
	Extract(ctx context.Context, postURL string) (string, error)
}

// Resolver wraps the extraction orchestrator with a bounded retry loop.
// Each attempt runs on a fresh identity (the orchestrator mints one per
// pass), so retrying after a failure also rotates the persona the upstream
// sees.
type Resolver struct {
	extractor  Extractor
	maxRetries int
	backoff    retry.BackoffStrategy
	sleep      SleepFunc
	logger     logger.Logger
}

// NewResolver creates a resolver with linear backoff between attempts
func NewResolver(extractor Extractor, maxRetries int, retryDelay time.Duration, log logger.Logger) *Resolver {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Resolver{
		extractor:  extractor,
		maxRetries: maxRetries,
		backoff: &retry.LinearBackoff{
			BaseDelay: retryDelay,
			Increment: retryDelay,
		},
		sleep:  retry.Wait,
		logger: log,
	}
}

// SetSleep replaces the inter-attempt wait, for tests
func (r *Resolver) SetSleep(sleep SleepFunc) {
	r.sleep = sleep
}

// Resolve runs up to maxRetries extraction passes and returns the first
// media URL found. Escalating delays separate the attempts. A hard error on
// the final attempt propagates; a terminal input error propagates
// immediately; running out of attempts without either yields ErrExhausted.
func (r *Resolver) Resolve(ctx context.Context, postURL string) (string, error) {
	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		if attempt > 1 {
			delay := r.backoff.NextDelay(attempt)
			r.logger.InfoWithFields("waiting before retry", map[string]interface{}{
				"attempt": attempt,
				"delay":   delay,
			})
			if err := r.sleep(ctx, delay); err != nil {
				return "", err
			}
		}

		r.logger.InfoWithFields("extraction attempt", map[string]interface{}{
			"attempt":     attempt,
			"max_retries": r.maxRetries,
		})

		videoURL, err := r.extractor.Extract(ctx, postURL)
		if err != nil {
			if errors.TypeOf(err) == errors.ErrorTypeInput {
				return "", err
			}
			r.logger.WarnWithFields("extraction attempt failed", map[string]interface{}{
				"attempt": attempt,
				"error":   err.Error(),
			})
			if attempt == r.maxRetries {
				return "", err
			}
			continue
		}

		if videoURL != "" {
			return videoURL, nil
		}
		// A clean pass with no URL: rotate identity and try again
	}

	return "", ErrExhausted
}
