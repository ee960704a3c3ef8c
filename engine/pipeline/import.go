package pipeline

import (
	"context"

	"github.com/iconsports/demandscope/engine/aggregate"
	"github.com/iconsports/demandscope/engine/catalog"
	"github.com/iconsports/demandscope/engine/domain"
	"github.com/iconsports/demandscope/engine/ingest"
	"github.com/iconsports/demandscope/pkg/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ImportSource is recorded on runs built from keyword research reports.
const ImportSource = "keyword_report"

// ModeOffline is the API mode of runs that never called the provider.
const ModeOffline = "offline"

// ImportReport turns rows from external keyword reports into a saved run.
// Rows without a country are assigned to fallback. Nothing is fetched, so
// the cost guard is not consulted and the run costs nothing.
func (s *Service) ImportReport(ctx context.Context, rows []ingest.Row, fallback domain.Market) (*RunReport, error) {
	if len(rows) == 0 {
		return nil, domain.NewConfigError("report", "no usable rows")
	}
	if err := domain.ValidateMarkets([]domain.Market{fallback}); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "pipeline.import", trace.WithAttributes(
		attribute.Int("rows", len(rows)),
		attribute.String("fallback_market", fallback.Name),
	))
	defer span.End()

	resolver, err := s.reportResolver()
	if err != nil {
		return nil, err
	}
	g := ingest.Group(rows, fallback)
	if len(g.Unknown) > 0 {
		s.logger.Warn("report countries not in market catalog", "countries", g.Unknown)
	}

	agg := &aggregate.Aggregator{
		Resolver:              resolver,
		Classifier:            aggregate.NewTermClassifier(s.opts.Catalog.Indicators),
		SignificanceThreshold: s.opts.SignificanceThreshold,
	}
	res := agg.Aggregate(g.Records, g.Markets)
	profiles := res.Ordered()
	ingest.ApplyTrends(profiles, g.Trends(resolver))
	scorer := s.opts.Scorer
	scorer.Apply(profiles)

	run := &domain.Run{
		TestType: domain.TestTypeImport,
		Source:   ImportSource,
		Metadata: domain.RunMetadata{
			Entities:     res.Order,
			Markets:      g.Markets,
			KeywordCount: len(rows) - g.Skipped,
			APIMode:      ModeOffline,
		},
		RawResults: g.Records,
		ProcessedResults: domain.ProcessedResults{
			Profiles:  profiles,
			Processed: res.Processed,
			Dropped:   res.Dropped,
		},
	}
	report := &RunReport{Run: run}
	s.persist(ctx, report)
	s.opts.Metrics.ObserveRun(domain.TestTypeImport, metrics.OutcomeOK, ModeOffline, 0)

	span.SetAttributes(
		attribute.Int("profiles", len(profiles)),
		attribute.Int("dropped", res.Dropped),
	)
	s.logger.Info("report imported",
		"id", run.ID,
		"rows", len(rows),
		"skipped", g.Skipped,
		"markets", len(g.Markets),
		"processed", res.Processed,
		"dropped", res.Dropped,
		"profiles", len(profiles))
	return report, nil
}

// reportResolver matches keywords the service did not generate: curated
// aliases and catalog keywords first, then a free-text name followed by a
// known suffix word.
func (s *Service) reportResolver() (aggregate.EntityResolver, error) {
	players := s.opts.Catalog.Players
	exact := aggregate.NewExactMapResolver(players, s.opts.Catalog.Terms)
	for _, p := range players {
		exact.Add(p, p)
	}
	pattern, err := aggregate.NewPatternResolver(catalog.SuffixVocabulary, players)
	if err != nil {
		return nil, err
	}
	for _, m := range catalog.PlayerMappings {
		exact.Add(m.Name, m.Keywords...)
		pattern.Alias(m.Name, m.Name, m.PrimaryKeyword)
		pattern.Alias(m.Name, m.Keywords...)
	}
	return aggregate.Chain{exact, pattern}, nil
}
