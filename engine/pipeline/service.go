// Package pipeline wires batching, cost guarding, fetching, aggregation,
// scoring and persistence into the run operations exposed by the dashboard
// and the CLI.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/iconsports/demandscope/engine/aggregate"
	"github.com/iconsports/demandscope/engine/batcher"
	"github.com/iconsports/demandscope/engine/catalog"
	"github.com/iconsports/demandscope/engine/costguard"
	"github.com/iconsports/demandscope/engine/domain"
	"github.com/iconsports/demandscope/engine/fetcher"
	"github.com/iconsports/demandscope/engine/scoring"
	"github.com/iconsports/demandscope/pkg/dataforseo"
	"github.com/iconsports/demandscope/pkg/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultCostPerBatch is the provider price of one search-volume task.
const DefaultCostPerBatch = 0.05

// Source is recorded on every run.
const Source = "dataforseo"

// RunStore persists runs.
type RunStore interface {
	Save(ctx context.Context, run *domain.Run) (string, error)
	Path(id string) string
}

// ProfileSink receives scored profiles after a run is saved.
type ProfileSink interface {
	WriteProfiles(ctx context.Context, runID string, profiles []domain.EntityProfile) error
}

// EventPublisher announces completed runs.
type EventPublisher interface {
	Publish(ctx context.Context, ev RunCompleted) error
}

// Catalog is the reference data runs are built from.
type Catalog struct {
	Players    []string
	Terms      []string
	Markets    []domain.Market
	Indicators []string
}

// DefaultCatalog returns the built-in players, approved terms and priority markets.
func DefaultCatalog() Catalog {
	return Catalog{
		Players:    catalog.PlayerNames(),
		Terms:      catalog.ApprovedMerchTerms,
		Markets:    catalog.PriorityMarkets,
		Indicators: catalog.MerchIndicators,
	}
}

// Options configures a Service. Provider is required.
type Options struct {
	Provider              fetcher.Provider
	Store                 RunStore
	Fetcher               *fetcher.Fetcher
	Scorer                scoring.Scorer
	Guard                 costguard.Config
	Live                  bool
	Catalog               Catalog
	Delay                 time.Duration
	MaxPerBatch           int
	CostPerBatch          float64
	SignificanceThreshold int64
	LanguageCode          string
	Publisher             EventPublisher
	Sink                  ProfileSink
	Logger                *slog.Logger
	Metrics               *metrics.Metrics
	Tracer                trace.Tracer
}

// Service runs demand collections.
type Service struct {
	opts   Options
	logger *slog.Logger
	tracer trace.Tracer
}

// New creates a Service, filling zero-valued options with defaults.
func New(opts Options) (*Service, error) {
	if opts.Provider == nil {
		return nil, domain.NewConfigError("provider", "is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer("github.com/iconsports/demandscope/engine/pipeline")
	}
	if opts.MaxPerBatch == 0 {
		opts.MaxPerBatch = batcher.MaxKeywordsPerRequest
	}
	if opts.CostPerBatch == 0 {
		opts.CostPerBatch = DefaultCostPerBatch
	}
	if opts.LanguageCode == "" {
		opts.LanguageCode = "en"
	}
	if opts.Catalog.Players == nil && opts.Catalog.Terms == nil && opts.Catalog.Markets == nil {
		opts.Catalog = DefaultCatalog()
	}
	if opts.Catalog.Indicators == nil {
		opts.Catalog.Indicators = catalog.MerchIndicators
	}
	if opts.Fetcher == nil {
		opts.Fetcher = fetcher.New(fetcher.Config{
			LanguageCode: opts.LanguageCode,
			Logger:       opts.Logger,
			Metrics:      opts.Metrics,
		})
	}
	return &Service{opts: opts, logger: opts.Logger, tracer: opts.Tracer}, nil
}

// APIMode reports "live" or "sandbox".
func (s *Service) APIMode() string {
	if s.opts.Live {
		return dataforseo.ModeLive
	}
	return dataforseo.ModeSandbox
}

// Catalog returns the reference data the service was built with.
func (s *Service) Catalog() Catalog { return s.opts.Catalog }

// RunRequest describes one entity × term × market collection.
type RunRequest struct {
	TestType string
	Entities []string
	Terms    []string
	Markets  []domain.Market
	DateFrom string
	DateTo   string
}

// RunReport is the outcome of Execute. The run is returned even when saving
// it failed, in which case SaveErr is set.
type RunReport struct {
	Run       *domain.Run     `json:"run"`
	Summary   batcher.Summary `json:"summary"`
	Requests  int             `json:"requests"`
	Succeeded int             `json:"succeeded"`
	FilePath  string          `json:"filePath,omitempty"`
	SaveError string          `json:"saveError,omitempty"`
	SaveErr   error           `json:"-"`
}

// plan is a fully prepared run.
type plan struct {
	testType string
	entities []string
	keywords []string
	markets  []domain.Market
	dates    *domain.DateRange
	summary  batcher.Summary
	batches  []domain.Batch
	agg      *aggregate.Aggregator
}

// Plan validates req and returns its batch summary and batches without
// fetching anything.
func (s *Service) Plan(req RunRequest) (batcher.Summary, []domain.Batch, error) {
	p, err := s.planRequest(req)
	if err != nil {
		return batcher.Summary{}, nil, err
	}
	return p.summary, p.batches, nil
}

func (s *Service) planRequest(req RunRequest) (*plan, error) {
	if req.TestType == "" {
		return nil, domain.NewConfigError("testType", "must not be empty")
	}
	if err := domain.ValidateNames("players", req.Entities); err != nil {
		return nil, err
	}
	if err := domain.ValidateNames("terms", req.Terms); err != nil {
		return nil, err
	}
	dates, err := domain.ValidateDateRange(req.DateFrom, req.DateTo)
	if err != nil {
		return nil, err
	}

	exact := aggregate.NewExactMapResolver(req.Entities, req.Terms)
	pattern, err := aggregate.NewPatternResolver(req.Terms, req.Entities)
	if err != nil {
		return nil, err
	}
	agg := &aggregate.Aggregator{
		Resolver:              aggregate.Chain{exact, pattern},
		Classifier:            aggregate.NewTermClassifier(s.opts.Catalog.Indicators),
		PrimaryKeyword:        aggregate.PrimaryFromTerm(req.Terms[0]),
		SignificanceThreshold: s.opts.SignificanceThreshold,
	}
	keywords := batcher.GenerateKeywords(req.Entities, req.Terms)
	return s.buildPlan(req.TestType, req.Entities, len(req.Terms), keywords, req.Markets, dates, agg)
}

func (s *Service) buildPlan(testType string, entities []string, termCount int, keywords []string, markets []domain.Market, dates *domain.DateRange, agg *aggregate.Aggregator) (*plan, error) {
	if err := domain.ValidateMarkets(markets); err != nil {
		return nil, err
	}
	if len(keywords) == 0 {
		return nil, domain.NewConfigError("keywords", "must not be empty")
	}
	batches, err := batcher.PlanBatches(keywords, markets, s.opts.MaxPerBatch)
	if err != nil {
		return nil, err
	}
	perMarket := len(batches) / len(markets)
	return &plan{
		testType: testType,
		entities: entities,
		keywords: keywords,
		markets:  markets,
		dates:    dates,
		batches:  batches,
		agg:      agg,
		summary: batcher.Summary{
			TotalEntities:     len(entities),
			TotalTerms:        termCount,
			TotalMarkets:      len(markets),
			TotalKeywords:     len(keywords),
			RequestsPerMarket: perMarket,
			TotalRequests:     len(batches),
			EstimatedCost:     batcher.EstimateCost(len(batches), s.opts.CostPerBatch),
		},
	}, nil
}

// Execute validates, plans, authorizes, fetches, aggregates, scores and
// saves one run. Batch failures do not fail the run; they are recorded in
// the run metadata.
func (s *Service) Execute(ctx context.Context, req RunRequest) (*RunReport, error) {
	p, err := s.planRequest(req)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, p)
}

func (s *Service) run(ctx context.Context, p *plan) (*RunReport, error) {
	ctx, span := s.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("test_type", p.testType),
		attribute.Int("keywords", len(p.keywords)),
		attribute.Int("batches", len(p.batches)),
		attribute.String("api_mode", s.APIMode()),
	))
	defer span.End()

	if err := costguard.Authorize(p.summary.EstimatedCost, s.opts.Guard, s.opts.Live); err != nil {
		s.logger.Warn("run rejected by cost guard",
			"test_type", p.testType, "estimated_cost", p.summary.EstimatedCost, "error", err)
		s.opts.Metrics.ObserveRun(p.testType, metrics.OutcomeRejected, s.APIMode(), 0)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.logger.Info("run started",
		"test_type", p.testType,
		"players", len(p.entities),
		"markets", len(p.markets),
		"keywords", len(p.keywords),
		"batches", len(p.batches),
		"estimated_cost", p.summary.EstimatedCost,
		"api_mode", s.APIMode())

	out := s.opts.Fetcher.WithDateRange(p.dates).FetchAll(ctx, p.batches, s.opts.Provider, s.opts.Delay)

	marketNames := make([]string, len(p.markets))
	for i, m := range p.markets {
		marketNames[i] = m.Name
	}
	agg := p.agg.Aggregate(out.Results, marketNames)
	profiles := agg.Ordered()
	scorer := s.opts.Scorer
	scorer.Apply(profiles)

	actual := batcher.EstimateCost(out.Requests, s.opts.CostPerBatch)
	run := &domain.Run{
		TestType: p.testType,
		Source:   Source,
		Metadata: domain.RunMetadata{
			Entities:      p.entities,
			Markets:       marketNames,
			KeywordCount:  len(p.keywords),
			TotalRequests: len(p.batches),
			EstimatedCost: p.summary.EstimatedCost,
			ActualCost:    actual,
			DateRange:     p.dates,
			APIMode:       s.APIMode(),
			Failures:      out.Failures,
		},
		RawResults: out.Results,
		ProcessedResults: domain.ProcessedResults{
			Profiles:  profiles,
			Processed: agg.Processed,
			Dropped:   agg.Dropped,
		},
	}

	report := &RunReport{
		Run:       run,
		Summary:   p.summary,
		Requests:  out.Requests,
		Succeeded: out.Succeeded,
	}
	s.persist(ctx, report)

	outcome := metrics.OutcomeOK
	switch {
	case len(out.Failures) > 0 && out.Succeeded == 0:
		outcome = metrics.OutcomeFailed
	case len(out.Failures) > 0:
		outcome = metrics.OutcomePartial
	}
	s.opts.Metrics.ObserveRun(p.testType, outcome, s.APIMode(), actual)
	span.SetAttributes(
		attribute.Int("failures", len(out.Failures)),
		attribute.Int("profiles", len(profiles)),
		attribute.String("outcome", outcome),
	)
	if outcome == metrics.OutcomeFailed {
		span.SetStatus(codes.Error, "every batch failed")
	}

	s.logger.Info("run finished",
		"id", run.ID,
		"test_type", p.testType,
		"requests", out.Requests,
		"cached", out.Cached,
		"failures", len(out.Failures),
		"profiles", len(profiles),
		"actual_cost", actual,
		"outcome", outcome)
	return report, nil
}

// persist saves the run, then notifies the sink and publisher. None of these
// failing fails the run.
func (s *Service) persist(ctx context.Context, report *RunReport) {
	run := report.Run
	if s.opts.Store != nil {
		id, err := s.opts.Store.Save(ctx, run)
		if err != nil {
			s.logger.Error("save run failed", "test_type", run.TestType, "error", err)
			report.SaveErr = err
			report.SaveError = err.Error()
			return
		}
		report.FilePath = s.opts.Store.Path(id)
	}
	if run.ID == "" {
		return
	}

	if s.opts.Sink != nil {
		if err := s.opts.Sink.WriteProfiles(ctx, run.ID, run.ProcessedResults.Profiles); err != nil {
			s.logger.Warn("graph sink failed", "id", run.ID, "error", err)
		}
	}
	if s.opts.Publisher != nil {
		if err := s.opts.Publisher.Publish(ctx, NewRunCompleted(run, TopProfilesCount)); err != nil {
			s.logger.Warn("publish run completed failed", "id", run.ID, "error", err)
		}
	}
}

// IsCostError reports whether err came from the cost guard.
func IsCostError(err error) bool {
	return errors.Is(err, domain.ErrRealMoneyDisabled) || errors.Is(err, domain.ErrCostLimitExceeded)
}
