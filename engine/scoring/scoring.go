// Package scoring computes the 0-100 opportunity score: 50% volume, 30%
// trend, 20% market reach.
package scoring

import (
	"math"
	"sort"

	"github.com/iconsports/demandscope/engine/domain"
	"github.com/iconsports/demandscope/pkg/fn"
)

// Weights of the three components.
const (
	VolumeWeight = 0.5
	TrendWeight  = 0.3
	MarketWeight = 0.2
)

// Defaults.
const (
	DefaultVolumeNorm = 10000
	DefaultMaxMarkets = 5
)

// Scorer holds the normalisation constants.
type Scorer struct {
	// VolumeNorm divides total volume before clamping to [0,100].
	VolumeNorm float64
	// MaxMarkets is the market count that earns a full reach score.
	MaxMarkets int
}

// Default returns a Scorer with the documented constants.
func Default() Scorer {
	return Scorer{VolumeNorm: DefaultVolumeNorm, MaxMarkets: DefaultMaxMarkets}
}

// Breakdown is a score with its components.
type Breakdown struct {
	VolumeScore float64 `json:"volumeScore"`
	TrendScore  float64 `json:"trendScore"`
	MarketScore float64 `json:"marketScore"`
	Raw         float64 `json:"raw"`
	Score       int     `json:"score"`
}

// Breakdown scores one profile.
func (s Scorer) Breakdown(p domain.EntityProfile) Breakdown {
	s = s.withDefaults()
	b := Breakdown{
		VolumeScore: fn.Clamp(float64(p.TotalVolume)/s.VolumeNorm, 0, 100),
		TrendScore:  fn.Clamp(p.TrendPercent, -50, 50) + 50,
		MarketScore: fn.Clamp(float64(p.MarketCount)/float64(s.MaxMarkets)*100, 0, 100),
	}
	b.Raw = b.VolumeScore*VolumeWeight + b.TrendScore*TrendWeight + b.MarketScore*MarketWeight
	b.Score = int(math.Round(fn.Clamp(b.Raw, 0, 100)))
	return b
}

// Score returns the rounded score for one profile.
func (s Scorer) Score(p domain.EntityProfile) int {
	return s.Breakdown(p).Score
}

// Apply fills OpportunityScore on every profile in place.
func (s Scorer) Apply(profiles []domain.EntityProfile) {
	for i := range profiles {
		profiles[i].OpportunityScore = s.Score(profiles[i])
	}
}

// Rank sorts profiles by score, then total volume, then name.
func Rank(profiles []domain.EntityProfile) {
	sort.SliceStable(profiles, func(i, j int) bool {
		a, b := profiles[i], profiles[j]
		if a.OpportunityScore != b.OpportunityScore {
			return a.OpportunityScore > b.OpportunityScore
		}
		if a.TotalVolume != b.TotalVolume {
			return a.TotalVolume > b.TotalVolume
		}
		return a.Name < b.Name
	})
}

func (s Scorer) withDefaults() Scorer {
	if s.VolumeNorm <= 0 {
		s.VolumeNorm = DefaultVolumeNorm
	}
	if s.MaxMarkets <= 0 {
		s.MaxMarkets = DefaultMaxMarkets
	}
	return s
}
