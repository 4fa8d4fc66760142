package coach

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"networth-scenario-lab/internal/domain"
	"networth-scenario-lab/internal/observability"
)

// Defaults
const (
	DefaultTimeout     = 4 * time.Second
	DefaultCacheTTL    = 10 * time.Minute
	DefaultRatePerSec  = 2.0
	DefaultBurst       = 4
	replyTemperature   = 0.3
	replyMaxTokens     = 1024
	breakerName        = "narrative-coach"
	breakerMaxFailures = 3
)

// Status is the outcome class of a narration attempt.
type Status int

const (
	// StatusOK means the model produced a usable reply.
	StatusOK Status = iota
	// StatusUnavailable means the caller must use the fallback narrative.
	StatusUnavailable
)

// Unavailability reasons
const (
	ReasonDisabled    = "disabled"
	ReasonRateLimited = "rate_limited"
	ReasonBreakerOpen = "breaker_open"
	ReasonTimeout     = "timeout"
	ReasonError       = "error"
	ReasonMalformed   = "malformed"
)

// Result is the typed outcome of Narrate: Ok(Reply) or Unavailable(Reason).
type Result struct {
	Status Status
	Reply  *Reply // set when Status == StatusOK
	Reason string // set when Status == StatusUnavailable
	Cached bool
}

func ok(r *Reply, cached bool) Result {
	return Result{Status: StatusOK, Reply: r, Cached: cached}
}

func unavailable(reason string) Result {
	return Result{Status: StatusUnavailable, Reason: reason}
}

// Session is a caller-owned handle identifying one user's coach conversation.
// The coach keeps no session state of its own.
type Session struct {
	ID string
}

// Coach asks a remote model for a narrative, bounded by timeout, rate limit and breaker.
type Coach struct {
	completer Completer
	cache     Cache
	cacheTTL  time.Duration
	timeout   time.Duration
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker
	logger    zerolog.Logger
}

// Options contains configuration for creating a Coach.
type Options struct {
	// Completer is the remote model. Nil disables the remote coach.
	Completer  Completer
	Cache      Cache // optional
	CacheTTL   time.Duration
	Timeout    time.Duration
	RatePerSec float64
	Burst      int
	Logger     zerolog.Logger
}

// New creates a Coach.
func New(opts Options) *Coach {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = DefaultRatePerSec
	}
	if opts.Burst <= 0 {
		opts.Burst = DefaultBurst
	}

	logger := opts.Logger.With().Str("component", "coach").Logger()
	settings := gobreaker.Settings{
		Name:     breakerName,
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerMaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("breaker state change")
		},
	}

	return &Coach{
		completer: opts.Completer,
		cache:     opts.Cache,
		cacheTTL:  opts.CacheTTL,
		timeout:   opts.Timeout,
		limiter:   rate.NewLimiter(rate.Limit(opts.RatePerSec), opts.Burst),
		breaker:   gobreaker.NewCircuitBreaker(settings),
		logger:    logger,
	}
}

// Enabled reports whether a remote model is configured.
func (c *Coach) Enabled() bool {
	return c != nil && c.completer != nil
}

// Narrate asks the remote model for a narrative of m. It never returns an error:
// every failure becomes an Unavailable result within the coach timeout.
func (c *Coach) Narrate(ctx context.Context, sess *Session, m domain.NarrativeMetrics) Result {
	if !c.Enabled() {
		return unavailable(ReasonDisabled)
	}

	start := time.Now()
	res := c.narrate(ctx, sess, m)

	outcome := "ok"
	if res.Status == StatusUnavailable {
		outcome = res.Reason
		c.logger.Warn().Str("reason", res.Reason).Dur("elapsed", time.Since(start)).Msg("coach unavailable, using fallback")
	} else if res.Cached {
		outcome = "cache_hit"
	}
	observability.RecordCoach(outcome, time.Since(start).Seconds())
	return res
}

func (c *Coach) narrate(ctx context.Context, sess *Session, m domain.NarrativeMetrics) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	key := CacheKey(m)
	cached := c.cache != nil && key != ""
	if cached {
		r, hit := c.cache.Get(ctx, key)
		observability.RecordCacheLookup(hit)
		if hit {
			return ok(r, true)
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return unavailable(ReasonRateLimited)
	}

	messages, err := buildMessages(m)
	if err != nil {
		return unavailable(ReasonError)
	}
	req := CompletionRequest{
		Messages:    messages,
		Temperature: replyTemperature,
		MaxTokens:   replyMaxTokens,
	}
	if sess != nil {
		req.User = sess.ID
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.completer.Complete(ctx, req)
	})
	if err != nil {
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			return unavailable(ReasonBreakerOpen)
		case errors.Is(err, context.DeadlineExceeded):
			return unavailable(ReasonTimeout)
		default:
			c.logger.Debug().Err(err).Msg("completion failed")
			return unavailable(ReasonError)
		}
	}

	reply, err := parseReply(out.(string))
	if err != nil {
		return unavailable(ReasonMalformed)
	}

	if cached {
		if err := c.cache.Set(ctx, key, reply, c.cacheTTL); err != nil {
			c.logger.Debug().Err(err).Msg("cache write failed")
		}
	}
	return ok(reply, false)
}
