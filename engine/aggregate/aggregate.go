// Package aggregate rolls raw keyword records up into per-entity,
// per-market demand profiles.
package aggregate

import (
	"sort"
	"strings"

	"github.com/iconsports/demandscope/engine/domain"
)

// Trend is the month-over-month change of the two most recent points, in
// percent. It is 0 with fewer than two points or a zero previous month.
func Trend(monthly []domain.MonthlySearch) float64 {
	if len(monthly) < 2 {
		return 0
	}
	cur, prev := monthly[0].Volume, monthly[1].Volume
	if prev <= 0 {
		return 0
	}
	return float64(cur-prev) / float64(prev) * 100
}

// Aggregator configures one aggregation pass.
type Aggregator struct {
	Resolver   EntityResolver
	Classifier Classifier
	// PrimaryKeyword names the keyword whose monthly series drives an
	// entity's trend. Nil disables trend computation.
	PrimaryKeyword func(entity string) string
	// SignificanceThreshold is the volume a market must exceed to count
	// toward MarketCount.
	SignificanceThreshold int64
}

// Result is the output of Aggregate. Processed + Dropped equals the number
// of input records.
type Result struct {
	Profiles  map[string]*domain.EntityProfile
	Order     []string
	Processed int
	Dropped   int
}

// Ordered returns profiles in first-seen order.
func (r Result) Ordered() []domain.EntityProfile {
	out := make([]domain.EntityProfile, 0, len(r.Order))
	for _, name := range r.Order {
		out = append(out, *r.Profiles[name])
	}
	return out
}

type acc struct {
	metrics map[string]*domain.MarketMetric
	order   []string
}

// Aggregate consumes records keyed by market. Markets are visited in
// marketOrder first, then any remaining markets sorted by name. Records
// whose entity cannot be resolved are dropped.
func (a *Aggregator) Aggregate(records map[string][]domain.KeywordRecord, marketOrder []string) Result {
	res := Result{Profiles: make(map[string]*domain.EntityProfile)}
	accs := make(map[string]*acc)

	for _, market := range visitOrder(records, marketOrder) {
		for _, rec := range records[market] {
			entity, ok := a.Resolver.Resolve(rec.Keyword)
			if !ok {
				res.Dropped++
				continue
			}
			res.Processed++

			ac, seen := accs[entity]
			if !seen {
				ac = &acc{metrics: make(map[string]*domain.MarketMetric)}
				accs[entity] = ac
				res.Order = append(res.Order, entity)
			}
			mm, ok := ac.metrics[market]
			if !ok {
				mm = &domain.MarketMetric{Market: market}
				ac.metrics[market] = mm
				ac.order = append(ac.order, market)
			}

			vol := rec.Volume()
			mm.Volume += vol
			if a.Classifier.Classify(rec.Keyword) == BucketMerch {
				mm.MerchVolume += vol
			} else {
				mm.EntityVolume += vol
			}

			if a.isPrimary(entity, rec.Keyword) {
				mm.TrendPercent += Trend(rec.MonthlySearches)
			}
		}
	}

	for i, name := range res.Order {
		res.Profiles[name] = a.finalize(i+1, name, accs[name])
	}
	return res
}

func (a *Aggregator) isPrimary(entity, keyword string) bool {
	if a.PrimaryKeyword == nil {
		return false
	}
	p := a.PrimaryKeyword(entity)
	return p != "" && normalize(p) == normalize(keyword)
}

func (a *Aggregator) finalize(id int, name string, ac *acc) *domain.EntityProfile {
	p := &domain.EntityProfile{
		ID:      id,
		Name:    name,
		Markets: make([]domain.MarketMetric, 0, len(ac.order)),
	}
	var trendSum float64
	var best int64 = -1
	for _, market := range ac.order {
		mm := *ac.metrics[market]
		p.Markets = append(p.Markets, mm)
		p.TotalVolume += mm.Volume
		p.EntityVolume += mm.EntityVolume
		p.MerchVolume += mm.MerchVolume
		trendSum += mm.TrendPercent
		if mm.Volume > a.SignificanceThreshold {
			p.MarketCount++
		}
		if mm.Volume > best {
			best = mm.Volume
			p.PrimaryMarket = market
		}
	}
	if len(p.Markets) > 0 {
		p.TrendPercent = trendSum / float64(len(p.Markets))
	}
	return p
}

func visitOrder(records map[string][]domain.KeywordRecord, preferred []string) []string {
	out := make([]string, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, m := range preferred {
		if _, ok := records[m]; ok && !seen[m] {
			out = append(out, m)
			seen[m] = true
		}
	}
	var rest []string
	for m := range records {
		if !seen[m] {
			rest = append(rest, m)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// PrimaryFromTerm returns a PrimaryKeyword func selecting "{entity} {term}".
func PrimaryFromTerm(term string) func(string) string {
	if strings.TrimSpace(term) == "" {
		return nil
	}
	return func(entity string) string { return domain.Keyword(entity, term) }
}

// PrimaryFromMap returns a PrimaryKeyword func backed by a lookup table.
func PrimaryFromMap(m map[string]string) func(string) string {
	return func(entity string) string { return m[entity] }
}
