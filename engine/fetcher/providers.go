package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iconsports/demandscope/engine/domain"
	"github.com/iconsports/demandscope/pkg/dataforseo"
	"github.com/iconsports/demandscope/pkg/keycache"
	"github.com/iconsports/demandscope/pkg/metrics"
)

// DataForSEO adapts a dataforseo client to Provider.
type DataForSEO struct {
	Client *dataforseo.Client
}

// Fetch calls the search-volume endpoint and converts the records.
func (p DataForSEO) Fetch(ctx context.Context, req FetchRequest) ([]domain.KeywordRecord, error) {
	recs, err := p.Client.SearchVolume(ctx, dataforseo.Task{
		Keywords:     req.Keywords,
		LocationCode: req.LocationCode,
		LanguageCode: req.LanguageCode,
		DateFrom:     req.DateFrom,
		DateTo:       req.DateTo,
	})
	if err != nil {
		var apiErr *dataforseo.APIError
		if (errors.As(err, &apiErr) && apiErr.Permanent()) || errors.Is(err, dataforseo.ErrTooManyKeywords) {
			return nil, fmt.Errorf("%w: %w", ErrPermanent, err)
		}
		return nil, err
	}
	out := make([]domain.KeywordRecord, 0, len(recs))
	for _, r := range recs {
		out = append(out, convert(r, req))
	}
	return out, nil
}

func convert(r dataforseo.Record, req FetchRequest) domain.KeywordRecord {
	rec := domain.KeywordRecord{
		Keyword:      r.Keyword,
		LocationCode: r.LocationCode,
		LanguageCode: r.LanguageCode,
		SearchVolume: r.SearchVolume,
		Competition:  string(r.Competition),
	}
	if rec.LocationCode == 0 {
		rec.LocationCode = req.LocationCode
	}
	if rec.LanguageCode == "" {
		rec.LanguageCode = req.LanguageCode
	}
	if r.CompetitionIndex != nil {
		rec.CompetitionIndex = *r.CompetitionIndex
	}
	if r.CPC != nil {
		rec.CPC = *r.CPC
	}
	for _, m := range r.MonthlySearches {
		rec.MonthlySearches = append(rec.MonthlySearches, domain.MonthlySearch{
			Year: m.Year, Month: m.Month, Volume: m.SearchVolume,
		})
	}
	return rec
}

// Cached serves repeated requests from a keycache and only calls Next on a
// miss. Cache failures are logged and fall through to Next. Mode (the
// provider's API mode) is part of every key so sandbox and live answers
// never mix.
type Cached struct {
	Next    Provider
	Mode    string
	Cache   *keycache.Cache[[]domain.KeywordRecord]
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Fetch returns cached records or fetches and stores them.
func (p *Cached) Fetch(ctx context.Context, req FetchRequest) ([]domain.KeywordRecord, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	key := keycache.Key(p.Mode, req.LocationCode, req.LanguageCode, req.DateFrom, req.DateTo, req.Keywords)

	recs, ok, err := p.Cache.Get(ctx, key)
	switch {
	case err != nil:
		p.Metrics.CacheLookup("error")
		logger.Warn("keyword cache read failed", "key", key, "error", err)
	case ok:
		p.Metrics.CacheLookup("hit")
		markCacheHit(ctx)
		return recs, nil
	default:
		p.Metrics.CacheLookup("miss")
	}

	recs, err = p.Next.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := p.Cache.Set(ctx, key, recs); err != nil {
		logger.Warn("keyword cache write failed", "key", key, "error", err)
	}
	return recs, nil
}
