package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/iconsports/demandscope/engine/domain"
	"github.com/iconsports/demandscope/pkg/repo"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockResult struct{}

func (mockResult) Consume(context.Context) (neo4j.ResultSummary, error) { return nil, nil }

type call struct {
	cypher string
	params map[string]any
}

type mockRunner struct {
	calls  []call
	err    error
	closed int
}

func (m *mockRunner) Run(_ context.Context, cypher string, params map[string]any) (repo.Result, error) {
	m.calls = append(m.calls, call{cypher: cypher, params: params})
	if m.err != nil {
		return nil, m.err
	}
	return mockResult{}, nil
}

func (m *mockRunner) Close(context.Context) error {
	m.closed++
	return nil
}

func sinkWith(r *mockRunner) *Sink {
	return newSink(func(context.Context) repo.Runner { return r }, nil)
}

func sampleProfiles() []domain.EntityProfile {
	return []domain.EntityProfile{
		{
			Name: "Pedri", TotalVolume: 1500, TrendPercent: 12.5, OpportunityScore: 40,
			Markets: []domain.MarketMetric{
				{Market: "United States", Volume: 1000, EntityVolume: 600, MerchVolume: 400, TrendPercent: 10},
				{Market: "Mexico", Volume: 500, EntityVolume: 500, TrendPercent: 15},
			},
		},
		{Name: "Gavi", TotalVolume: 0, OpportunityScore: 15},
	}
}

func TestWriteProfiles(t *testing.T) {
	r := &mockRunner{}
	err := sinkWith(r).WriteProfiles(context.Background(), "micro_1_abc", sampleProfiles())
	require.NoError(t, err)
	require.Len(t, r.calls, 1)
	assert.Equal(t, 1, r.closed)

	c := r.calls[0]
	assert.Contains(t, c.cypher, "MERGE (p)-[d:DEMAND {run_id: $run_id}]->(mk)")
	assert.Equal(t, "micro_1_abc", c.params["run_id"])

	rows := c.params["rows"].([]map[string]any)
	require.Len(t, rows, 2)
	assert.Equal(t, "Pedri", rows[0]["name"])
	assert.Equal(t, int64(1500), rows[0]["total_volume"])
	assert.Equal(t, int64(40), rows[0]["score"])

	markets := rows[0]["markets"].([]map[string]any)
	require.Len(t, markets, 2)
	assert.Equal(t, "United States", markets[0]["market"])
	assert.Equal(t, int64(600), markets[0]["entity_volume"])
	assert.Equal(t, int64(400), markets[0]["merch_volume"])

	assert.Empty(t, rows[1]["markets"])
}

func TestWriteProfilesEmptyIsNoop(t *testing.T) {
	r := &mockRunner{}
	require.NoError(t, sinkWith(r).WriteProfiles(context.Background(), "x", nil))
	assert.Empty(t, r.calls)
	assert.Zero(t, r.closed)
}

func TestWriteProfilesRequiresRunID(t *testing.T) {
	r := &mockRunner{}
	err := sinkWith(r).WriteProfiles(context.Background(), "", sampleProfiles())
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
	assert.Empty(t, r.calls)
}

func TestWriteProfilesWrapsDriverError(t *testing.T) {
	boom := errors.New("connection refused")
	r := &mockRunner{err: boom}
	err := sinkWith(r).WriteProfiles(context.Background(), "run1", sampleProfiles())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "run1")
	assert.Equal(t, 1, r.closed)
}

func TestEnsureSchema(t *testing.T) {
	r := &mockRunner{}
	require.NoError(t, sinkWith(r).EnsureSchema(context.Background()))
	require.Len(t, r.calls, 2)
	assert.Contains(t, r.calls[0].cypher, "Player")
	assert.Contains(t, r.calls[1].cypher, "Market")
}
