package batcher

import (
	"errors"
	"fmt"
	"testing"

	"github.com/iconsports/demandscope/engine/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var m1 = domain.Market{Name: "M1", LocationCode: 1}

func TestGenerateKeywords(t *testing.T) {
	got := GenerateKeywords([]string{"A", "B"}, []string{"x", "y"})
	assert.Equal(t, []string{"A x", "A y", "B x", "B y"}, got)
}

func TestGenerateKeywords_EmptyInputs(t *testing.T) {
	assert.Empty(t, GenerateKeywords(nil, []string{"x"}))
	assert.Empty(t, GenerateKeywords([]string{"A"}, nil))
}

func TestGenerateKeywords_CountAndUniqueness(t *testing.T) {
	for _, size := range [][2]int{{1, 1}, {3, 7}, {12, 30}} {
		var entities, terms []string
		for i := 0; i < size[0]; i++ {
			entities = append(entities, fmt.Sprintf("E%d", i))
		}
		for j := 0; j < size[1]; j++ {
			terms = append(terms, fmt.Sprintf("t%d", j))
		}
		kws := GenerateKeywords(entities, terms)
		require.Len(t, kws, size[0]*size[1])

		seen := map[string]bool{}
		for _, k := range kws {
			assert.False(t, seen[k], "duplicate keyword %q", k)
			seen[k] = true
		}
	}
}

func TestPlanBatches_Example(t *testing.T) {
	kws := GenerateKeywords([]string{"A", "B"}, []string{"x", "y"})
	batches, err := PlanBatches(kws, []domain.Market{m1}, 3)
	require.NoError(t, err)
	require.Len(t, batches, 2)

	assert.Equal(t, domain.Batch{Market: "M1", LocationCode: 1, Keywords: []string{"A x", "A y", "B x"}, BatchIndex: 1}, batches[0])
	assert.Equal(t, domain.Batch{Market: "M1", LocationCode: 1, Keywords: []string{"B y"}, BatchIndex: 2}, batches[1])
}

func TestPlanBatches_ReplicatedPerMarket(t *testing.T) {
	kws := make([]string, 25)
	for i := range kws {
		kws[i] = fmt.Sprintf("k%02d", i)
	}
	markets := []domain.Market{m1, {Name: "M2", LocationCode: 2}, {Name: "M3", LocationCode: 3}}
	batches, err := PlanBatches(kws, markets, 7)
	require.NoError(t, err)
	require.Len(t, batches, 4*len(markets))

	perMarket := map[string][]string{}
	for _, b := range batches {
		assert.NotEmpty(t, b.Keywords)
		assert.LessOrEqual(t, len(b.Keywords), 7)
		perMarket[b.Market] = append(perMarket[b.Market], b.Keywords...)
	}
	for _, m := range markets {
		assert.Equal(t, kws, perMarket[m.Name], "market %s must cover every keyword in order", m.Name)
	}
}

func TestPlanBatches_BatchesDoNotShareStorage(t *testing.T) {
	batches, err := PlanBatches([]string{"a", "b"}, []domain.Market{m1, {Name: "M2", LocationCode: 2}}, 2)
	require.NoError(t, err)
	batches[0].Keywords[0] = "mutated"
	assert.Equal(t, "a", batches[1].Keywords[0])
}

func TestPlanBatches_InvalidSize(t *testing.T) {
	for _, n := range []int{0, -1, MaxKeywordsPerRequest + 1} {
		_, err := PlanBatches([]string{"a"}, []domain.Market{m1}, n)
		assert.True(t, errors.Is(err, domain.ErrInvalidConfiguration), "size %d", n)
	}
}

func TestPlanBatches_NoKeywords(t *testing.T) {
	batches, err := PlanBatches(nil, []domain.Market{m1}, 10)
	require.NoError(t, err)
	assert.Empty(t, batches)
}

func TestEstimateCost(t *testing.T) {
	assert.InDelta(t, 0.5, EstimateCost(10, 0.05), 1e-9)
	assert.Zero(t, EstimateCost(0, 0.05))
}

func TestSummarize(t *testing.T) {
	entities := make([]string, 125)
	terms := make([]string, 30)
	markets := make([]domain.Market, 5)
	s, err := Summarize(entities, terms, markets, 1000, 0.05)
	require.NoError(t, err)
	assert.Equal(t, 3750, s.TotalKeywords)
	assert.Equal(t, 4, s.RequestsPerMarket)
	assert.Equal(t, 20, s.TotalRequests)
	assert.InDelta(t, 1.0, s.EstimatedCost, 1e-9)

	_, err = Summarize(entities, terms, markets, 0, 0.05)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestSummarize_SizeBoundMatchesPlanBatches(t *testing.T) {
	entities := []string{"Pedri"}
	terms := []string{"boots"}
	markets := []domain.Market{{Name: "Spain", LocationCode: 2724}}

	for _, size := range []int{-1, 0, MaxKeywordsPerRequest + 1} {
		_, planErr := PlanBatches(GenerateKeywords(entities, terms), markets, size)
		_, sumErr := Summarize(entities, terms, markets, size, 0.05)
		assert.ErrorIs(t, planErr, domain.ErrInvalidConfiguration, "size %d", size)
		assert.ErrorIs(t, sumErr, domain.ErrInvalidConfiguration, "size %d", size)
	}

	s, err := Summarize(entities, terms, markets, MaxKeywordsPerRequest, 0.05)
	require.NoError(t, err)
	assert.Equal(t, 1, s.TotalRequests)
}
