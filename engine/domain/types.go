// Package domain defines the core data model, sentinel errors and validation
// for the demandscope engine. It acts as the validation gate at pipeline entry
// points.
package domain

import (
	"fmt"
	"time"
)

// Entity is a tracked subject (a player). Metadata fields are opaque to the engine.
type Entity struct {
	Name        string `json:"name" yaml:"name"`
	Age         int    `json:"age,omitempty" yaml:"age"`
	Position    string `json:"position,omitempty" yaml:"position"`
	Team        string `json:"current_team,omitempty" yaml:"current_team"`
	Nationality string `json:"nationality,omitempty" yaml:"nationality"`
}

// Market is a geography mapped to a provider location code.
type Market struct {
	Name         string `json:"name" yaml:"name"`
	LocationCode int    `json:"location_code" yaml:"location_code"`
}

// Keyword builds the provider keyword for an entity and a term.
func Keyword(entity, term string) string {
	return fmt.Sprintf("%s %s", entity, term)
}

// MonthlySearch is one month of search volume. Providers return these
// most-recent-first.
type MonthlySearch struct {
	Year   int   `json:"year"`
	Month  int   `json:"month"`
	Volume int64 `json:"search_volume"`
}

// KeywordRecord is one raw provider result for one keyword in one market.
type KeywordRecord struct {
	Keyword          string          `json:"keyword"`
	LocationCode     int             `json:"location_code,omitempty"`
	LanguageCode     string          `json:"language_code,omitempty"`
	SearchVolume     *int64          `json:"search_volume,omitempty"`
	Competition      string          `json:"competition,omitempty"`
	CompetitionIndex float64         `json:"competition_index,omitempty"`
	CPC              float64         `json:"cpc,omitempty"`
	MonthlySearches  []MonthlySearch `json:"monthly_searches"`
}

// Volume returns the search volume, treating an absent value as zero.
func (r KeywordRecord) Volume() int64 {
	if r.SearchVolume == nil || *r.SearchVolume < 0 {
		return 0
	}
	return *r.SearchVolume
}

// MarketMetric is the per-entity, per-market rollup.
// Volume == EntityVolume + MerchVolume.
type MarketMetric struct {
	Market       string  `json:"market"`
	Volume       int64   `json:"volume"`
	EntityVolume int64   `json:"player_volume"`
	MerchVolume  int64   `json:"merch_volume"`
	TrendPercent float64 `json:"trend_percent"`
}

// EntityProfile is the aggregated view of one entity across markets.
type EntityProfile struct {
	ID               int            `json:"id"`
	Name             string         `json:"name"`
	TotalVolume      int64          `json:"total_volume"`
	EntityVolume     int64          `json:"player_volume"`
	MerchVolume      int64          `json:"merch_volume"`
	TrendPercent     float64        `json:"trend_percent"`
	OpportunityScore int            `json:"opportunity_score"`
	MarketCount      int            `json:"market_count"`
	PrimaryMarket    string         `json:"market"`
	Markets          []MarketMetric `json:"markets"`
}

// Batch is a bounded group of keywords submitted in one provider call for one market.
type Batch struct {
	Market       string   `json:"market"`
	LocationCode int      `json:"location_code"`
	Keywords     []string `json:"keywords"`
	BatchIndex   int      `json:"batch_index"`
}

// BatchFailure records a batch whose provider call failed.
type BatchFailure struct {
	Market       string `json:"market"`
	LocationCode int    `json:"location_code"`
	BatchIndex   int    `json:"batch_index"`
	KeywordCount int    `json:"keyword_count"`
	Error        string `json:"error"`
}

// Test types recorded on a Run.
const (
	TestTypeMicro          = "micro"
	TestTypeFullProduction = "full_production"
	TestTypeCollect        = "collect"
	TestTypePlayerData     = "player_data"
	TestTypeImport         = "import"
)

// DateRange bounds the historical window requested from the provider.
type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// RunMetadata summarises a run's inputs and cost.
type RunMetadata struct {
	Entities      []string       `json:"players"`
	Markets       []string       `json:"markets"`
	KeywordCount  int            `json:"keywordCount"`
	TotalRequests int            `json:"totalRequests"`
	EstimatedCost float64        `json:"estimatedCost"`
	ActualCost    float64        `json:"actualCost"`
	DateRange     *DateRange     `json:"dateRange,omitempty"`
	APIMode       string         `json:"apiMode"`
	Failures      []BatchFailure `json:"failures"`
}

// ProcessedResults is the derived analytics cached inside a Run.
type ProcessedResults struct {
	Profiles  []EntityProfile `json:"profiles"`
	Processed int             `json:"processed"`
	Dropped   int             `json:"dropped"`
}

// Run is one batch+fetch+aggregate execution. Immutable once persisted.
type Run struct {
	ID               string                     `json:"id"`
	Timestamp        time.Time                  `json:"timestamp"`
	TestType         string                     `json:"testType"`
	Source           string                     `json:"source"`
	Metadata         RunMetadata                `json:"metadata"`
	RawResults       map[string][]KeywordRecord `json:"rawResults"`
	ProcessedResults ProcessedResults           `json:"processedResults"`
}
