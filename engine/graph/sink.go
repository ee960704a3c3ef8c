// Package graph mirrors scored runs into Neo4j as player→market demand edges.
package graph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iconsports/demandscope/engine/domain"
	"github.com/iconsports/demandscope/pkg/repo"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const schemaCypher = `CREATE CONSTRAINT player_name IF NOT EXISTS FOR (p:Player) REQUIRE p.name IS UNIQUE`

const marketSchemaCypher = `CREATE CONSTRAINT market_name IF NOT EXISTS FOR (m:Market) REQUIRE m.name IS UNIQUE`

const writeCypher = `UNWIND $rows AS row
MERGE (p:Player {name: row.name})
SET p.total_volume = row.total_volume,
    p.opportunity_score = row.score,
    p.trend_percent = row.trend,
    p.last_run = $run_id
WITH p, row
UNWIND row.markets AS m
MERGE (mk:Market {name: m.market})
MERGE (p)-[d:DEMAND {run_id: $run_id}]->(mk)
SET d.volume = m.volume,
    d.entity_volume = m.entity_volume,
    d.merch_volume = m.merch_volume,
    d.trend = m.trend`

// Sink writes profiles to Neo4j.
type Sink struct {
	sessions repo.SessionFactory
	logger   *slog.Logger
}

// NewSink creates a Sink backed by driver. database may be empty.
func NewSink(driver neo4j.DriverWithContext, database string, logger *slog.Logger) *Sink {
	return newSink(repo.DriverSessions(driver, database), logger)
}

func newSink(sessions repo.SessionFactory, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{sessions: sessions, logger: logger}
}

// Dial connects to Neo4j and verifies connectivity.
func Dial(ctx context.Context, url, user, pass string) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(url, neo4j.BasicAuth(user, pass, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("neo4j connectivity: %w", err)
	}
	return driver, nil
}

// EnsureSchema creates uniqueness constraints for players and markets.
func (s *Sink) EnsureSchema(ctx context.Context) error {
	return repo.Exec(ctx, s.sessions,
		repo.Statement{Cypher: schemaCypher},
		repo.Statement{Cypher: marketSchemaCypher},
	)
}

// WriteProfiles upserts every profile and its per-market demand for runID.
// Re-writing the same run replaces edge properties rather than duplicating edges.
func (s *Sink) WriteProfiles(ctx context.Context, runID string, profiles []domain.EntityProfile) error {
	if len(profiles) == 0 {
		return nil
	}
	if runID == "" {
		return domain.NewConfigError("run_id", "must not be empty")
	}
	err := repo.Exec(ctx, s.sessions, repo.Statement{
		Cypher: writeCypher,
		Params: map[string]any{
			"run_id": runID,
			"rows":   profileRows(profiles),
		},
	})
	if err != nil {
		return fmt.Errorf("graph: write run %s: %w", runID, err)
	}
	s.logger.Info("graph: profiles written", "run_id", runID, "players", len(profiles))
	return nil
}

// profileRows flattens profiles into driver-friendly maps.
func profileRows(profiles []domain.EntityProfile) []map[string]any {
	rows := make([]map[string]any, 0, len(profiles))
	for _, p := range profiles {
		markets := make([]map[string]any, 0, len(p.Markets))
		for _, m := range p.Markets {
			markets = append(markets, map[string]any{
				"market":        m.Market,
				"volume":        m.Volume,
				"entity_volume": m.EntityVolume,
				"merch_volume":  m.MerchVolume,
				"trend":         m.TrendPercent,
			})
		}
		rows = append(rows, map[string]any{
			"name":         p.Name,
			"total_volume": p.TotalVolume,
			"score":        int64(p.OpportunityScore),
			"trend":        p.TrendPercent,
			"markets":      markets,
		})
	}
	return rows
}
