// Package fetcher executes keyword batches against a volume provider one at
// a time, pacing calls and isolating per-batch failures.
package fetcher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/iconsports/demandscope/engine/domain"
	"github.com/iconsports/demandscope/pkg/fn"
	"github.com/iconsports/demandscope/pkg/metrics"
	"github.com/iconsports/demandscope/pkg/resilience"
)

// FetchRequest is one provider call.
type FetchRequest struct {
	Keywords     []string
	LocationCode int
	LanguageCode string
	DateFrom     string
	DateTo       string
}

// Provider returns search-volume records for up to one batch of keywords.
type Provider interface {
	Fetch(ctx context.Context, req FetchRequest) ([]domain.KeywordRecord, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, req FetchRequest) ([]domain.KeywordRecord, error)

func (f ProviderFunc) Fetch(ctx context.Context, req FetchRequest) ([]domain.KeywordRecord, error) {
	return f(ctx, req)
}

// Pacer blocks between consecutive batches.
type Pacer interface {
	Wait(ctx context.Context, d time.Duration) error
}

// PacerFunc adapts a function to Pacer.
type PacerFunc func(ctx context.Context, d time.Duration) error

func (f PacerFunc) Wait(ctx context.Context, d time.Duration) error { return f(ctx, d) }

// TimerPacer sleeps on a timer and returns early if ctx is done.
var TimerPacer Pacer = PacerFunc(fn.SleepContext)

// Config configures a Fetcher.
type Config struct {
	LanguageCode string
	DateRange    *domain.DateRange
	Pacer        Pacer
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
	Tracer       trace.Tracer
}

// Fetcher runs batch plans sequentially.
type Fetcher struct {
	lang    string
	dates   *domain.DateRange
	pacer   Pacer
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// New creates a Fetcher. Zero-valued fields fall back to English, a timer
// pacer, the default logger and the global tracer.
func New(cfg Config) *Fetcher {
	f := &Fetcher{
		lang:    cfg.LanguageCode,
		dates:   cfg.DateRange,
		pacer:   cfg.Pacer,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		tracer:  cfg.Tracer,
	}
	if f.lang == "" {
		f.lang = "en"
	}
	if f.pacer == nil {
		f.pacer = TimerPacer
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	if f.tracer == nil {
		f.tracer = otel.Tracer("github.com/iconsports/demandscope/engine/fetcher")
	}
	return f
}

// WithDateRange returns a copy of f that requests the given window.
func (f *Fetcher) WithDateRange(dr *domain.DateRange) *Fetcher {
	cp := *f
	cp.dates = dr
	return &cp
}

// Outcome is the result of FetchAll. Results has an entry for every market
// in the plan, possibly empty.
type Outcome struct {
	Results   map[string][]domain.KeywordRecord
	Failures  []domain.BatchFailure
	Requests  int
	Succeeded int
	// Cached counts batches answered from the keyword cache. They are not
	// included in Requests.
	Cached int
}

// FetchAll executes batches in order, waiting delay between consecutive
// provider calls. A failing batch is recorded and the run continues.
// Batches rejected by an open breaker or answered from the cache never reach
// the provider: they are not counted as requests and are not paced. If ctx
// is cancelled, the remaining batches are recorded as failures without being
// sent.
func (f *Fetcher) FetchAll(ctx context.Context, batches []domain.Batch, provider Provider, delay time.Duration) Outcome {
	out := Outcome{Results: make(map[string][]domain.KeywordRecord)}
	for _, b := range batches {
		if _, ok := out.Results[b.Market]; !ok {
			out.Results[b.Market] = []domain.KeywordRecord{}
		}
	}

	sent := false
	for i, b := range batches {
		if sent && delay > 0 {
			if err := f.pacer.Wait(ctx, delay); err != nil {
				f.abandon(&out, batches[i:], err)
				return out
			}
		}
		if err := ctx.Err(); err != nil {
			f.abandon(&out, batches[i:], err)
			return out
		}

		records, cached, err := f.fetchOne(ctx, b, provider)
		sent = !cached && !errors.Is(err, resilience.ErrOpen)
		switch {
		case sent:
			out.Requests++
		case cached:
			out.Cached++
		}
		if err != nil {
			perr := &domain.ProviderError{Market: b.Market, BatchIndex: b.BatchIndex, Err: err}
			f.logger.Warn("batch failed",
				"market", b.Market, "batch", b.BatchIndex, "keywords", len(b.Keywords), "error", err)
			out.Failures = append(out.Failures, failure(b, perr))
			continue
		}
		out.Succeeded++
		out.Results[b.Market] = append(out.Results[b.Market], records...)
		f.logger.Debug("batch ok", "market", b.Market, "batch", b.BatchIndex, "records", len(records))
	}
	return out
}

func (f *Fetcher) fetchOne(ctx context.Context, b domain.Batch, provider Provider) ([]domain.KeywordRecord, bool, error) {
	ctx, span := f.tracer.Start(ctx, "fetcher.batch", trace.WithAttributes(
		attribute.String("market", b.Market),
		attribute.Int("location_code", b.LocationCode),
		attribute.Int("batch_index", b.BatchIndex),
		attribute.Int("keywords", len(b.Keywords)),
	))
	defer span.End()

	req := FetchRequest{
		Keywords:     b.Keywords,
		LocationCode: b.LocationCode,
		LanguageCode: f.lang,
	}
	if f.dates != nil {
		req.DateFrom, req.DateTo = f.dates.From, f.dates.To
	}

	ctx, hit := withCacheHitRecorder(ctx)
	start := time.Now()
	records, err := provider.Fetch(ctx, req)
	f.metrics.ObserveBatch(b.Market, len(b.Keywords), err, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	span.SetAttributes(attribute.Int("records", len(records)), attribute.Bool("cached", *hit))
	return records, *hit, nil
}

type cacheHitKey struct{}

// withCacheHitRecorder returns a context through which a cache layer
// anywhere in the provider chain can report that it answered the call.
func withCacheHitRecorder(ctx context.Context) (context.Context, *bool) {
	hit := new(bool)
	return context.WithValue(ctx, cacheHitKey{}, hit), hit
}

func markCacheHit(ctx context.Context) {
	if hit, ok := ctx.Value(cacheHitKey{}).(*bool); ok {
		*hit = true
	}
}

func (f *Fetcher) abandon(out *Outcome, rest []domain.Batch, cause error) {
	f.logger.Warn("fetch interrupted", "remaining", len(rest), "error", cause)
	for _, b := range rest {
		out.Failures = append(out.Failures, failure(b, cause))
	}
}

func failure(b domain.Batch, err error) domain.BatchFailure {
	return domain.BatchFailure{
		Market:       b.Market,
		LocationCode: b.LocationCode,
		BatchIndex:   b.BatchIndex,
		KeywordCount: len(b.Keywords),
		Error:        err.Error(),
	}
}

// IsCancellation reports whether err came from context cancellation or deadline.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
