// Package batcher turns entity and term lists into keyword batches that fit
// the provider's per-request limit, replicated across markets.
package batcher

import (
	"github.com/iconsports/demandscope/engine/domain"
	"github.com/iconsports/demandscope/pkg/fn"
)

// MaxKeywordsPerRequest is the provider's hard per-call keyword limit.
const MaxKeywordsPerRequest = 1000

func checkBatchSize(maxPerBatch int) error {
	switch {
	case maxPerBatch <= 0:
		return domain.NewConfigError("maxPerBatch", "must be positive")
	case maxPerBatch > MaxKeywordsPerRequest:
		return domain.NewConfigError("maxPerBatch", "exceeds provider limit of 1000")
	}
	return nil
}

// GenerateKeywords returns the cartesian product of entities and terms as
// "{entity} {term}", entities outer and terms inner.
func GenerateKeywords(entities, terms []string) []string {
	if len(entities) == 0 || len(terms) == 0 {
		return nil
	}
	out := make([]string, 0, len(entities)*len(terms))
	for _, e := range entities {
		for _, t := range terms {
			out = append(out, domain.Keyword(e, t))
		}
	}
	return out
}

// PlanBatches chunks keywords in order into groups of at most maxPerBatch and
// replicates the chunk list once per market. BatchIndex is 1-based within a
// market. Empty keywords yield no batches.
func PlanBatches(keywords []string, markets []domain.Market, maxPerBatch int) ([]domain.Batch, error) {
	if err := checkBatchSize(maxPerBatch); err != nil {
		return nil, err
	}
	chunks := fn.Chunk(keywords, maxPerBatch)
	if len(chunks) == 0 {
		return nil, nil
	}

	batches := make([]domain.Batch, 0, len(chunks)*len(markets))
	for _, m := range markets {
		for i, c := range chunks {
			kw := make([]string, len(c))
			copy(kw, c)
			batches = append(batches, domain.Batch{
				Market:       m.Name,
				LocationCode: m.LocationCode,
				Keywords:     kw,
				BatchIndex:   i + 1,
			})
		}
	}
	return batches, nil
}

// EstimateCost is batchCount * costPerBatch.
func EstimateCost(batchCount int, costPerBatch float64) float64 {
	return float64(batchCount) * costPerBatch
}

// Summary reports the size and price of a planned run.
type Summary struct {
	TotalEntities     int     `json:"totalPlayers"`
	TotalTerms        int     `json:"totalTerms"`
	TotalMarkets      int     `json:"totalMarkets"`
	TotalKeywords     int     `json:"totalKeywords"`
	RequestsPerMarket int     `json:"requestsPerMarket"`
	TotalRequests     int     `json:"totalRequests"`
	EstimatedCost     float64 `json:"estimatedCost"`
}

// Summarize computes the request and cost requirements of a run without
// building the batches themselves.
func Summarize(entities, terms []string, markets []domain.Market, maxPerBatch int, costPerBatch float64) (Summary, error) {
	if err := checkBatchSize(maxPerBatch); err != nil {
		return Summary{}, err
	}
	keywords := len(entities) * len(terms)
	perMarket := (keywords + maxPerBatch - 1) / maxPerBatch
	total := perMarket * len(markets)
	return Summary{
		TotalEntities:     len(entities),
		TotalTerms:        len(terms),
		TotalMarkets:      len(markets),
		TotalKeywords:     keywords,
		RequestsPerMarket: perMarket,
		TotalRequests:     total,
		EstimatedCost:     EstimateCost(total, costPerBatch),
	}, nil
}
