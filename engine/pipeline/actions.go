package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/iconsports/demandscope/engine/aggregate"
	"github.com/iconsports/demandscope/engine/catalog"
	"github.com/iconsports/demandscope/engine/costguard"
	"github.com/iconsports/demandscope/engine/domain"
	"github.com/iconsports/demandscope/engine/fetcher"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ConnectionKeyword is the single keyword sent by TestConnection.
const ConnectionKeyword = "football"

// SearchVolume sends one provider request for keywords in one market. It is
// not persisted. A zero locationCode means the US market and an empty
// languageCode the service default.
func (s *Service) SearchVolume(ctx context.Context, keywords []string, locationCode int, languageCode string) ([]domain.KeywordRecord, error) {
	if err := domain.ValidateNames("keywords", keywords); err != nil {
		return nil, err
	}
	if len(keywords) > s.opts.MaxPerBatch {
		return nil, domain.NewConfigError("keywords",
			fmt.Sprintf("at most %d keywords per request, got %d", s.opts.MaxPerBatch, len(keywords)))
	}
	if locationCode == 0 {
		locationCode = catalog.LocationUS
	}
	if locationCode < 0 {
		return nil, domain.NewConfigError("locationCode", "must be positive")
	}
	if languageCode == "" {
		languageCode = s.opts.LanguageCode
	}
	if err := costguard.Authorize(s.opts.CostPerBatch, s.opts.Guard, s.opts.Live); err != nil {
		return nil, err
	}

	market := strconv.Itoa(locationCode)
	if m, ok := catalog.MarketByCode(locationCode); ok {
		market = m.Name
	}

	ctx, span := s.tracer.Start(ctx, "pipeline.search_volume", trace.WithAttributes(
		attribute.String("market", market),
		attribute.Int("keywords", len(keywords)),
	))
	defer span.End()

	start := time.Now()
	records, err := s.opts.Provider.Fetch(ctx, fetcher.FetchRequest{
		Keywords:     keywords,
		LocationCode: locationCode,
		LanguageCode: languageCode,
	})
	s.opts.Metrics.ObserveBatch(market, len(keywords), err, time.Since(start))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, &domain.ProviderError{Market: market, BatchIndex: 1, Err: err}
	}
	return records, nil
}

// TestConnection checks provider credentials with a single US keyword.
func (s *Service) TestConnection(ctx context.Context) ([]domain.KeywordRecord, error) {
	return s.SearchVolume(ctx, []string{ConnectionKeyword}, catalog.LocationUS, "")
}

// PlayerData runs an entity-scoped collection for one player using its
// curated keyword mapping, or a generated one when none exists. No
// location codes means the US market.
func (s *Service) PlayerData(ctx context.Context, player string, locationCodes []int, dateFrom, dateTo string) (*RunReport, error) {
	player = strings.TrimSpace(player)
	if player == "" {
		return nil, domain.NewConfigError("playerName", "is required")
	}
	mapping, ok := catalog.FindMapping(player)
	if !ok {
		if e, known := catalog.FindPlayer(player); known {
			player = e.Name
		}
		mapping = catalog.GeneratedMapping(player)
	}

	if len(locationCodes) == 0 {
		locationCodes = []int{catalog.LocationUS}
	}
	markets := make([]domain.Market, 0, len(locationCodes))
	for _, code := range locationCodes {
		m, ok := catalog.MarketByCode(code)
		if !ok {
			return nil, domain.NewConfigError("locationCodes", fmt.Sprintf("unknown location code %d", code))
		}
		markets = append(markets, m)
	}
	dates, err := domain.ValidateDateRange(dateFrom, dateTo)
	if err != nil {
		return nil, err
	}

	resolver := aggregate.NewExactMapResolver(nil, nil)
	resolver.Add(mapping.Name, mapping.Keywords...)
	agg := &aggregate.Aggregator{
		Resolver:              resolver,
		Classifier:            aggregate.NewTermClassifier(s.opts.Catalog.Indicators),
		PrimaryKeyword:        aggregate.PrimaryFromMap(map[string]string{mapping.Name: mapping.PrimaryKeyword}),
		SignificanceThreshold: s.opts.SignificanceThreshold,
	}
	p, err := s.buildPlan(domain.TestTypePlayerData, []string{mapping.Name}, len(mapping.Keywords), mapping.Keywords, markets, dates, agg)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, p)
}

// MicroTestRequest returns the request for a micro test: the first five
// players, every approved term and the first two priority markets.
func (s *Service) MicroTestRequest(dateFrom, dateTo string) RunRequest {
	c := s.opts.Catalog
	return RunRequest{
		TestType: domain.TestTypeMicro,
		Entities: head(c.Players, catalog.MicroTestPlayers),
		Terms:    c.Terms,
		Markets:  head(c.Markets, catalog.MicroTestMarkets),
		DateFrom: dateFrom,
		DateTo:   dateTo,
	}
}

// FullRequest returns the request covering every player, term and priority market.
func (s *Service) FullRequest(testType, dateFrom, dateTo string) RunRequest {
	c := s.opts.Catalog
	return RunRequest{
		TestType: testType,
		Entities: c.Players,
		Terms:    c.Terms,
		Markets:  c.Markets,
		DateFrom: dateFrom,
		DateTo:   dateTo,
	}
}

// RunMicroTest runs the small, cheap validation collection.
func (s *Service) RunMicroTest(ctx context.Context, dateFrom, dateTo string) (*RunReport, error) {
	return s.Execute(ctx, s.MicroTestRequest(dateFrom, dateTo))
}

// RunFullProductionTest runs every player × term × priority market.
func (s *Service) RunFullProductionTest(ctx context.Context, dateFrom, dateTo string) (*RunReport, error) {
	return s.Execute(ctx, s.FullRequest(domain.TestTypeFullProduction, dateFrom, dateTo))
}

// CollectAllData runs the full collection and records it as a collect run.
// The report carries the saved file path.
func (s *Service) CollectAllData(ctx context.Context, dateFrom, dateTo string) (*RunReport, error) {
	return s.Execute(ctx, s.FullRequest(domain.TestTypeCollect, dateFrom, dateTo))
}

func head[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[:n:n]
}
