package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iconsports/demandscope/engine/domain"
	"github.com/iconsports/demandscope/pkg/dataforseo"
	"github.com/iconsports/demandscope/pkg/keycache"
)

func dataforseoServer(t *testing.T, body string) *dataforseo.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return dataforseo.New(dataforseo.Config{Sandbox: true, BaseURL: srv.URL, MinInterval: time.Millisecond})
}

func TestDataForSEO_ConvertsRecords(t *testing.T) {
	c := dataforseoServer(t, `{"status_code": 20000, "tasks": [{"status_code": 20000, "result": [
		{"keyword": "gavi jersey", "search_volume": 880, "competition": "LOW", "competition_index": 12, "cpc": 0.3,
		 "monthly_searches": [{"year": 2025, "month": 7, "search_volume": 900}, {"year": 2025, "month": 6, "search_volume": 750}]},
		{"keyword": "gavi coins", "search_volume": null}
	]}]}`)

	recs, err := DataForSEO{Client: c}.Fetch(context.Background(), FetchRequest{
		Keywords: []string{"gavi jersey", "gavi coins"}, LocationCode: 2724, LanguageCode: "en",
	})
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "gavi jersey", recs[0].Keyword)
	assert.EqualValues(t, 880, recs[0].Volume())
	assert.Equal(t, 2724, recs[0].LocationCode, "location falls back to the request")
	assert.Equal(t, "LOW", recs[0].Competition)
	assert.InDelta(t, 12, recs[0].CompetitionIndex, 1e-9)
	assert.Equal(t, []domain.MonthlySearch{{Year: 2025, Month: 7, Volume: 900}, {Year: 2025, Month: 6, Volume: 750}}, recs[0].MonthlySearches)

	assert.Nil(t, recs[1].SearchVolume)
	assert.Zero(t, recs[1].Volume())
}

func TestDataForSEO_PermanentErrorsMarked(t *testing.T) {
	c := dataforseoServer(t, `{"status_code": 40100, "status_message": "not authorized"}`)
	_, err := DataForSEO{Client: c}.Fetch(context.Background(), FetchRequest{Keywords: []string{"x"}, LocationCode: 2840})
	assert.ErrorIs(t, err, ErrPermanent)
}

func TestDataForSEO_TransientErrorsUnmarked(t *testing.T) {
	c := dataforseoServer(t, `{"status_code": 50000, "status_message": "internal error"}`)
	_, err := DataForSEO{Client: c}.Fetch(context.Background(), FetchRequest{Keywords: []string{"x"}, LocationCode: 2840})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPermanent)
}

type memBackend struct {
	mu      sync.Mutex
	data    map[string][]byte
	readErr error
}

func (m *memBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, keycache.ErrMiss
	}
	return v, nil
}

func (m *memBackend) Set(_ context.Context, key string, val []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = val
	return nil
}

func TestCached_HitSkipsProvider(t *testing.T) {
	prov := &spyProvider{}
	be := &memBackend{data: map[string][]byte{}}
	p := &Cached{Next: prov, Cache: keycache.New[[]domain.KeywordRecord](be, time.Hour)}
	req := FetchRequest{Keywords: []string{"a x", "a y"}, LocationCode: 2840, LanguageCode: "en"}

	first, err := p.Fetch(context.Background(), req)
	require.NoError(t, err)
	second, err := p.Fetch(context.Background(), req)
	require.NoError(t, err)

	assert.Len(t, prov.calls, 1)
	assert.Equal(t, first, second)
}

func TestCached_ReadErrorFallsThrough(t *testing.T) {
	prov := &spyProvider{}
	be := &memBackend{data: map[string][]byte{}, readErr: errors.New("redis down")}
	p := &Cached{Next: prov, Cache: keycache.New[[]domain.KeywordRecord](be, time.Hour)}

	recs, err := p.Fetch(context.Background(), FetchRequest{Keywords: []string{"a"}, LocationCode: 1})
	require.NoError(t, err)
	assert.Len(t, recs, 1)
	assert.Len(t, prov.calls, 1)
}

func TestCached_ProviderErrorNotCached(t *testing.T) {
	prov := &spyProvider{fail: map[int]error{1: errors.New("down")}}
	be := &memBackend{data: map[string][]byte{}}
	p := &Cached{Next: prov, Cache: keycache.New[[]domain.KeywordRecord](be, time.Hour)}

	_, err := p.Fetch(context.Background(), FetchRequest{Keywords: []string{"a"}, LocationCode: 1})
	require.Error(t, err)
	assert.Empty(t, be.data)
}

func TestCached_ModesDoNotShareEntries(t *testing.T) {
	prov := &spyProvider{}
	be := &memBackend{data: map[string][]byte{}}
	cache := keycache.New[[]domain.KeywordRecord](be, time.Hour)
	sandbox := &Cached{Next: prov, Mode: dataforseo.ModeSandbox, Cache: cache}
	live := &Cached{Next: prov, Mode: dataforseo.ModeLive, Cache: cache}
	req := FetchRequest{Keywords: []string{"a x"}, LocationCode: 2840, LanguageCode: "en"}

	_, err := sandbox.Fetch(context.Background(), req)
	require.NoError(t, err)
	_, err = live.Fetch(context.Background(), req)
	require.NoError(t, err)

	assert.Len(t, prov.calls, 2)
	assert.Len(t, be.data, 2)
}

func TestFetchAll_CacheHitsAreNotBilledOrPaced(t *testing.T) {
	prov := &spyProvider{}
	be := &memBackend{data: map[string][]byte{}}
	p := &Cached{Next: prov, Mode: dataforseo.ModeSandbox, Cache: keycache.New[[]domain.KeywordRecord](be, time.Hour)}

	warm := New(Config{Pacer: &recordingPacer{}})
	first := warm.FetchAll(context.Background(), threeBatches(), p, time.Second)
	require.Equal(t, 3, first.Requests)
	require.Zero(t, first.Cached)

	pacer := &recordingPacer{}
	f := New(Config{Pacer: pacer})
	out := f.FetchAll(context.Background(), threeBatches(), p, time.Second)

	assert.Len(t, prov.calls, 3)
	assert.Zero(t, out.Requests)
	assert.Equal(t, 3, out.Cached)
	assert.Equal(t, 3, out.Succeeded)
	assert.Empty(t, pacer.waits)
	assert.Equal(t, []string{"a x", "a y", "b x", "b y"}, keywordsOf(out.Results["US"]))
}

func TestFetchAll_MixedCacheHitsPaceOnlyRealCalls(t *testing.T) {
	prov := &spyProvider{}
	be := &memBackend{data: map[string][]byte{}}
	p := &Cached{Next: prov, Cache: keycache.New[[]domain.KeywordRecord](be, time.Hour)}
	batches := threeBatches()

	// Warm only the middle batch.
	_, err := p.Fetch(context.Background(), FetchRequest{Keywords: batches[1].Keywords, LocationCode: 2840, LanguageCode: "en"})
	require.NoError(t, err)

	pacer := &recordingPacer{}
	out := New(Config{Pacer: pacer}).FetchAll(context.Background(), batches, p, time.Second)

	assert.Equal(t, 2, out.Requests)
	assert.Equal(t, 1, out.Cached)
	// Paced before batch 2 (after real batch 1); batch 3 follows a cache hit.
	assert.Equal(t, []time.Duration{time.Second}, pacer.waits)
}
