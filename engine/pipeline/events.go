package pipeline

import (
	"time"

	"github.com/iconsports/demandscope/engine/domain"
	"github.com/iconsports/demandscope/engine/scoring"
)

// EventSubject is the NATS subject RunCompleted events are published on.
const EventSubject = "demandscope.runs.completed"

// TopProfilesCount is how many ranked profiles a RunCompleted carries.
const TopProfilesCount = 10

// RunCompleted announces a saved run.
type RunCompleted struct {
	ID           string                 `json:"id"`
	TestType     string                 `json:"testType"`
	Timestamp    time.Time              `json:"timestamp"`
	Entities     []string               `json:"players"`
	Markets      []string               `json:"markets"`
	KeywordCount int                    `json:"keywordCount"`
	ActualCost   float64                `json:"actualCost"`
	APIMode      string                 `json:"apiMode"`
	Failures     int                    `json:"failures"`
	TopProfiles  []domain.EntityProfile `json:"topProfiles"`
}

// NewRunCompleted builds the event for run, keeping the top n profiles by score.
func NewRunCompleted(run *domain.Run, n int) RunCompleted {
	ranked := make([]domain.EntityProfile, len(run.ProcessedResults.Profiles))
	copy(ranked, run.ProcessedResults.Profiles)
	scoring.Rank(ranked)
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return RunCompleted{
		ID:           run.ID,
		TestType:     run.TestType,
		Timestamp:    run.Timestamp,
		Entities:     run.Metadata.Entities,
		Markets:      run.Metadata.Markets,
		KeywordCount: run.Metadata.KeywordCount,
		ActualCost:   run.Metadata.ActualCost,
		APIMode:      run.Metadata.APIMode,
		Failures:     len(run.Metadata.Failures),
		TopProfiles:  ranked,
	}
}
