package extractor

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"reelgrab/pkg/config"
	"reelgrab/pkg/errors"
	"reelgrab/pkg/identity"
	"reelgrab/pkg/logger"
	"reelgrab/pkg/ratelimit"
	"reelgrab/pkg/retry"
)

// DefaultBaseURL is the upstream the strategies talk to
const DefaultBaseURL = "https://www.instagram.com"

// SleepFunc waits for a duration, honoring context cancellation. Injected
// so tests can run the pipeline without real delays.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Orchestrator runs the strategy cascade for one extraction pass. Strategies
// run strictly one at a time: concurrent requests from the same identity
// increase detectability and defeat the pacing.
type Orchestrator struct {
	pool       *identity.Pool
	limiter    ratelimit.Limiter
	strategies []Strategy
	cfg        config.ExtractionConfig
	logger     logger.Logger
	sleep      SleepFunc

	mu  sync.Mutex
	rng *rand.Rand
}

// NewOrchestrator creates an orchestrator over the default strategy cascade
func NewOrchestrator(pool *identity.Pool, limiter ratelimit.Limiter, cfg config.ExtractionConfig, log logger.Logger) *Orchestrator {
	if log == nil {
		log = logger.GetLogger()
	}
	client := NewClient(log)
	return &Orchestrator{
		pool:    pool,
		limiter: limiter,
		strategies: []Strategy{
			NewGraphQLStrategy(client, DefaultBaseURL),
			NewRESTStrategy(client, DefaultBaseURL),
			NewEmbedStrategy(client, DefaultBaseURL),
			NewPageStrategy(client, DefaultBaseURL),
		},
		cfg:    cfg,
		logger: log,
		sleep:  retry.Wait,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewOrchestratorWithStrategies creates an orchestrator over a custom
// cascade, keeping the pacing injectable for tests
func NewOrchestratorWithStrategies(pool *identity.Pool, limiter ratelimit.Limiter, cfg config.ExtractionConfig, log logger.Logger, sleep SleepFunc, strategies ...Strategy) *Orchestrator {
	o := NewOrchestrator(pool, limiter, cfg, log)
	if sleep != nil {
		o.sleep = sleep
	}
	if len(strategies) > 0 {
		o.strategies = strategies
	}
	return o
}

// Extract runs one full extraction pass for a post URL. It mints a fresh
// identity, checks its rate budget, derives the shortcode and walks the
// cascade in priority order, returning the first hit. An empty URL with a
// nil error means every strategy came up empty.
func (o *Orchestrator) Extract(ctx context.Context, postURL string) (string, error) {
	ident := o.pool.Create()

	log := o.logger.WithFields(map[string]interface{}{
		"session": ident.ID,
		"url":     postURL,
	})

	if !o.limiter.Allow(ident.ID) {
		return "", errors.New(errors.ErrorTypeRateLimit, "rate limit exceeded, please wait before trying again")
	}

	shortcode, err := DeriveShortcode(postURL)
	if err != nil {
		return "", err
	}
	target := Target{Shortcode: shortcode, PageURL: NormalizeURL(postURL)}
	log = log.WithField("shortcode", shortcode)

	// Human-like think time before the first outbound call
	delay := o.randomDelay(o.cfg.MinDelay, o.cfg.MaxDelay)
	log.DebugWithFields("pacing before first request", map[string]interface{}{"delay": delay})
	if err := o.sleep(ctx, delay); err != nil {
		return "", err
	}

	for i, strategy := range o.strategies {
		if i > 0 {
			gap := o.randomDelay(o.cfg.MinStrategyGap, o.cfg.MaxStrategyGap)
			if err := o.sleep(ctx, gap); err != nil {
				return "", err
			}
		}

		result, err := o.attempt(ctx, strategy, target, ident)
		if err != nil {
			// Strategy failures are absorbed; the cascade proceeds
			log.WarnWithFields("strategy failed", map[string]interface{}{
				"strategy": strategy.Name(),
				"error":    err.Error(),
			})
			continue
		}
		if result.URL != "" {
			log.InfoWithFields("found video URL", map[string]interface{}{
				"strategy": strategy.Name(),
			})
			return result.URL, nil
		}
		log.DebugWithFields("strategy found nothing", map[string]interface{}{
			"strategy": strategy.Name(),
		})
	}

	log.Info("no video URL found with any strategy")
	return "", nil
}

// attempt runs one strategy and merges whatever cookies it observed into
// the identity's jar, so later strategies echo the upstream's anti-bot
// cookies even when this one missed or failed
func (o *Orchestrator) attempt(ctx context.Context, strategy Strategy, target Target, ident *identity.Identity) (Result, error) {
	result, err := strategy.Attempt(ctx, target, ident, o.pool.CookieHeader(ident.ID))
	if len(result.Cookies) > 0 {
		o.pool.RecordCookies(ident.ID, result.Cookies)
	}
	return result, err
}

// randomDelay samples uniformly from [min, max)
func (o *Orchestrator) randomDelay(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return min + time.Duration(o.rng.Int63n(int64(max-min)))
}
