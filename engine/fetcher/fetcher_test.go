package fetcher

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/iconsports/demandscope/engine/domain"
	"github.com/iconsports/demandscope/pkg/metrics"
)

// spyProvider records every call and answers from a per-call script.
type spyProvider struct {
	calls []FetchRequest
	fail  map[int]error // 1-based call number -> error
}

func (s *spyProvider) Fetch(_ context.Context, req FetchRequest) ([]domain.KeywordRecord, error) {
	s.calls = append(s.calls, req)
	if err := s.fail[len(s.calls)]; err != nil {
		return nil, err
	}
	out := make([]domain.KeywordRecord, len(req.Keywords))
	for i, k := range req.Keywords {
		v := int64(100 + i)
		out[i] = domain.KeywordRecord{Keyword: k, SearchVolume: &v}
	}
	return out, nil
}

type recordingPacer struct {
	waits []time.Duration
	err   error
}

func (p *recordingPacer) Wait(_ context.Context, d time.Duration) error {
	p.waits = append(p.waits, d)
	return p.err
}

func threeBatches() []domain.Batch {
	return []domain.Batch{
		{Market: "US", LocationCode: 2840, Keywords: []string{"a x", "a y"}, BatchIndex: 1},
		{Market: "US", LocationCode: 2840, Keywords: []string{"b x"}, BatchIndex: 2},
		{Market: "US", LocationCode: 2840, Keywords: []string{"b y"}, BatchIndex: 3},
	}
}

func keywordsOf(recs []domain.KeywordRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Keyword
	}
	return out
}

func TestFetchAll_MiddleBatchFails(t *testing.T) {
	pacer := &recordingPacer{}
	prov := &spyProvider{fail: map[int]error{2: errors.New("503 from upstream")}}
	f := New(Config{Pacer: pacer})

	out := f.FetchAll(context.Background(), threeBatches(), prov, 5*time.Second)

	assert.Len(t, prov.calls, 3)
	assert.Equal(t, []string{"a x", "a y", "b y"}, keywordsOf(out.Results["US"]))
	require.Len(t, out.Failures, 1)
	assert.Equal(t, 2, out.Failures[0].BatchIndex)
	assert.Equal(t, 1, out.Failures[0].KeywordCount)
	assert.Contains(t, out.Failures[0].Error, "503 from upstream")
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, pacer.waits)
	assert.Equal(t, 3, out.Requests)
	assert.Equal(t, 2, out.Succeeded)
}

func TestFetchAll_NoDelayAfterLastOrSingleBatch(t *testing.T) {
	pacer := &recordingPacer{}
	f := New(Config{Pacer: pacer})
	f.FetchAll(context.Background(), threeBatches()[:1], &spyProvider{}, time.Second)
	assert.Empty(t, pacer.waits)

	f.FetchAll(context.Background(), threeBatches(), &spyProvider{}, 0)
	assert.Empty(t, pacer.waits, "zero delay never calls the pacer")
}

func TestFetchAll_EveryMarketHasEntry(t *testing.T) {
	batches := []domain.Batch{
		{Market: "US", LocationCode: 2840, Keywords: []string{"a x"}, BatchIndex: 1},
		{Market: "UK", LocationCode: 2826, Keywords: []string{"a x"}, BatchIndex: 1},
	}
	prov := &spyProvider{fail: map[int]error{2: errors.New("down")}}
	out := New(Config{Pacer: &recordingPacer{}}).FetchAll(context.Background(), batches, prov, time.Millisecond)

	require.Contains(t, out.Results, "UK")
	assert.Empty(t, out.Results["UK"])
	assert.Len(t, out.Results["US"], 1)
}

func TestFetchAll_RequestCarriesLanguageAndDates(t *testing.T) {
	prov := &spyProvider{}
	f := New(Config{LanguageCode: "es", DateRange: &domain.DateRange{From: "2025-01-01", To: "2025-06-30"}})
	f.FetchAll(context.Background(), threeBatches()[:1], prov, 0)

	require.Len(t, prov.calls, 1)
	assert.Equal(t, FetchRequest{
		Keywords:     []string{"a x", "a y"},
		LocationCode: 2840,
		LanguageCode: "es",
		DateFrom:     "2025-01-01",
		DateTo:       "2025-06-30",
	}, prov.calls[0])

	prov = &spyProvider{}
	f.WithDateRange(nil).FetchAll(context.Background(), threeBatches()[:1], prov, 0)
	assert.Empty(t, prov.calls[0].DateFrom)
}

func TestFetchAll_CancelledDuringPacing(t *testing.T) {
	pacer := &recordingPacer{err: context.Canceled}
	prov := &spyProvider{}
	out := New(Config{Pacer: pacer}).FetchAll(context.Background(), threeBatches(), prov, time.Second)

	assert.Len(t, prov.calls, 1)
	assert.Len(t, out.Results["US"], 2)
	require.Len(t, out.Failures, 2)
	assert.Equal(t, 2, out.Failures[0].BatchIndex)
	assert.Equal(t, 3, out.Failures[1].BatchIndex)
	assert.Equal(t, 1, out.Requests)
}

func TestFetchAll_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	prov := &spyProvider{}
	out := New(Config{}).FetchAll(ctx, threeBatches(), prov, time.Hour)

	assert.Empty(t, prov.calls)
	assert.Len(t, out.Failures, 3)
	assert.Contains(t, out.Results, "US")
}

func TestFetchAll_FailureWrapsProviderError(t *testing.T) {
	cause := errors.New("timeout")
	prov := ProviderFunc(func(context.Context, FetchRequest) ([]domain.KeywordRecord, error) {
		return nil, cause
	})
	out := New(Config{}).FetchAll(context.Background(), threeBatches()[:1], prov, 0)
	require.Len(t, out.Failures, 1)
	assert.Contains(t, out.Failures[0].Error, "provider: market US batch 1")
}

func TestFetchAll_SpansAndMetrics(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	m := metrics.New()

	prov := &spyProvider{fail: map[int]error{2: errors.New("boom")}}
	New(Config{Tracer: tp.Tracer("test"), Metrics: m, Pacer: &recordingPacer{}}).
		FetchAll(context.Background(), threeBatches(), prov, time.Millisecond)

	spans := rec.Ended()
	require.Len(t, spans, 3)
	for i, s := range spans {
		assert.Equal(t, "fetcher.batch", s.Name())
		if i == 1 {
			assert.Equal(t, codes.Error, s.Status().Code)
		} else {
			assert.NotEqual(t, codes.Error, s.Status().Code)
		}
	}
}

func TestTimerPacerHonoursContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	start := time.Now()
	err := TimerPacer.Wait(ctx, time.Minute)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestIsCancellation(t *testing.T) {
	assert.True(t, IsCancellation(fmt.Errorf("wrapped: %w", context.Canceled)))
	assert.True(t, IsCancellation(context.DeadlineExceeded))
	assert.False(t, IsCancellation(errors.New("other")))
}
