package fetcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/iconsports/demandscope/engine/domain"
	"github.com/iconsports/demandscope/pkg/resilience"
)

// BreakingProvider stops calling a provider that keeps failing. Once open,
// remaining batches of a run fail fast with resilience.ErrOpen instead of
// each waiting out the pacing delay and a timeout.
type BreakingProvider struct {
	next    Provider
	breaker *resilience.Breaker
}

// NewBreakingProvider wraps next with a breaker that opens after threshold
// consecutive failures and allows a trial call after cooldown. Cancellation
// does not count as a failure.
func NewBreakingProvider(next Provider, threshold int, cooldown time.Duration, logger *slog.Logger) *BreakingProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &BreakingProvider{
		next: next,
		breaker: resilience.New(resilience.Opts{
			Threshold: threshold,
			Cooldown:  cooldown,
			Counts:    func(err error) bool { return !IsCancellation(err) },
			OnChange: func(from, to resilience.State) {
				logger.Warn("provider circuit changed", "from", from.String(), "to", to.String())
			},
		}),
	}
}

// State reports the breaker state.
func (p *BreakingProvider) State() resilience.State { return p.breaker.State() }

func (p *BreakingProvider) Fetch(ctx context.Context, req FetchRequest) ([]domain.KeywordRecord, error) {
	return resilience.Do(ctx, p.breaker, func(ctx context.Context) ([]domain.KeywordRecord, error) {
		return p.next.Fetch(ctx, req)
	})
}
