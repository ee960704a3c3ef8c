package fetcher

import (
	"context"
	"errors"
	"log/slog"

	"github.com/iconsports/demandscope/engine/domain"
	"github.com/iconsports/demandscope/pkg/fn"
)

// ErrPermanent marks provider failures that retrying cannot fix, such as
// rejected credentials or malformed requests.
var ErrPermanent = errors.New("permanent provider failure")

// RetryingProvider retries a wrapped provider with exponential backoff.
// Cancellation and permanent failures are returned immediately.
type RetryingProvider struct {
	Provider Provider
	Opts     fn.RetryOpts
	Logger   *slog.Logger
}

// Fetch calls the wrapped provider until it succeeds or attempts run out.
func (r *RetryingProvider) Fetch(ctx context.Context, req FetchRequest) ([]domain.KeywordRecord, error) {
	opts := r.Opts
	if opts.Retryable == nil {
		opts.Retryable = retryable
	}
	attempt := 0
	return fn.Retry(ctx, opts, func(ctx context.Context) ([]domain.KeywordRecord, error) {
		attempt++
		records, err := r.Provider.Fetch(ctx, req)
		if err != nil && attempt < opts.MaxAttempts && r.Logger != nil {
			r.Logger.Debug("provider call failed, retrying", "attempt", attempt, "location", req.LocationCode, "error", err)
		}
		return records, err
	})
}

func retryable(err error) bool {
	return !IsCancellation(err) && !errors.Is(err, ErrPermanent)
}
