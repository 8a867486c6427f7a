package rerank

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"modmatch/internal/catalog"
	"modmatch/internal/logging"
	"modmatch/internal/matcher"
	"modmatch/internal/services"
)

// GuardOptions configures Guarded. Zero values disable the matching guard.
type GuardOptions struct {
	Timeout         time.Duration
	RatePerSecond   float64
	Burst           int
	BreakerFailures int
	BreakerCooldown time.Duration
	Logger          *slog.Logger
}

// Guarded wraps a provider with a timeout, a rate limit and a circuit
// breaker. Calls are never retried; a failed call leaves the result in review.
type Guarded struct {
	inner   matcher.Reranker
	timeout time.Duration
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[map[catalog.EntryID]float64]
	logger  *slog.Logger
}

// NewGuarded wraps inner.
func NewGuarded(inner matcher.Reranker, opts GuardOptions) *Guarded {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	g := &Guarded{
		inner:   inner,
		timeout: opts.Timeout,
		logger:  logging.NewComponentLogger(logger, "rerank"),
	}
	if opts.RatePerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}
	if opts.BreakerFailures > 0 {
		failures := uint32(opts.BreakerFailures)
		g.breaker = gobreaker.NewCircuitBreaker[map[catalog.EntryID]float64](gobreaker.Settings{
			Name:        inner.Name(),
			MaxRequests: 1,
			Timeout:     opts.BreakerCooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logging.WarnWithContext(g.logger, "re-rank circuit breaker changed state", "rerank_breaker_state",
					logging.String("provider", name),
					logging.String("from", from.String()),
					logging.String("to", to.String()),
				)
			},
		})
	}
	return g
}

// Name implements matcher.Reranker.
func (g *Guarded) Name() string { return g.inner.Name() }

// Rerank implements matcher.Reranker.
func (g *Guarded) Rerank(ctx context.Context, req matcher.RerankRequest) (map[catalog.EntryID]float64, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, services.Wrap(services.ErrTimeout, "rerank", g.inner.Name(), "rate limit wait", err)
		}
	}
	call := func() (map[catalog.EntryID]float64, error) {
		callCtx := ctx
		if g.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, g.timeout)
			defer cancel()
		}
		return g.inner.Rerank(callCtx, req)
	}
	if g.breaker == nil {
		return call()
	}
	scores, err := g.breaker.Execute(call)
	if IsCircuitOpen(err) {
		return nil, services.Wrap(services.ErrUnavailable, "rerank", g.inner.Name(), "circuit open", err)
	}
	return scores, err
}

// IsCircuitOpen reports whether err came from an open or saturated breaker.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
