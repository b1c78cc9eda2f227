package probe

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/NodePath81/httpbench/internal/util"
	"golang.org/x/time/rate"
)

// Observer is notified of every attempt outcome.
type Observer interface {
	Observe(host string, o Outcome)
}

// Prober runs sequential attempts against hosts.
type Prober struct {
	requester Requester
	limiter   *rate.Limiter
	observer  Observer
	logger    util.Logger
}

// Option configures a Prober.
type Option func(*Prober)

// WithRate paces attempts to at most perSecond. Zero or less disables pacing.
func WithRate(perSecond float64) Option {
	return func(p *Prober) {
		if perSecond > 0 {
			p.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithObserver registers an outcome observer.
func WithObserver(o Observer) Option {
	return func(p *Prober) {
		p.observer = o
	}
}

// WithLogger sets the logger used for per-attempt diagnostics.
func WithLogger(logger util.Logger) Option {
	return func(p *Prober) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New returns a Prober backed by requester.
func New(requester Requester, opts ...Option) *Prober {
	p := &Prober{
		requester: requester,
		logger:    util.NewLogger(os.Stderr, slog.LevelInfo),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe performs count attempts against host, one at a time. Failed attempts
// are logged and counted. The only error returned is a context error when
// ctx is cancelled, in which case the partial result is dropped.
func (p *Prober) Probe(ctx context.Context, host string, count int) (Result, error) {
	if count < 1 {
		return Result{}, fmt.Errorf("%w: %d", ErrInvalidCount, count)
	}
	acc := newAccumulator(host, count)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return Result{}, err
			}
		}
		out := p.requester.Do(ctx, host)
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		p.logOutcome(host, out)
		if p.observer != nil {
			p.observer.Observe(host, out)
		}
		acc.add(out)
	}
	return acc.finish(), nil
}

// ProbeAll probes hosts in order and returns one Result per host.
func (p *Prober) ProbeAll(ctx context.Context, hosts []string, count int) ([]Result, error) {
	results := make([]Result, 0, len(hosts))
	for _, host := range hosts {
		res, err := p.Probe(ctx, host, count)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (p *Prober) logOutcome(host string, out Outcome) {
	switch out.Kind {
	case KindResponse:
		p.logger.Debug("response", "host", host, "status", out.StatusCode, "elapsed", out.Elapsed)
	case KindTimeout:
		p.logger.Error("request timed out", "host", host)
	case KindConnectionFailure:
		p.logger.Error("connection failed", "host", host, "error", out.Err)
	default:
		p.logger.Error("request failed", "host", host, "error", out.Err)
	}
}
