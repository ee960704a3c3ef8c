// Package repo holds the Neo4j session plumbing shared by graph writers.
package repo

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Result is the minimal interface needed from a neo4j result.
type Result interface {
	Consume(ctx context.Context) (neo4j.ResultSummary, error)
}

// Runner is the minimal interface needed from a neo4j session.
type Runner interface {
	Run(ctx context.Context, cypher string, params map[string]any) (Result, error)
	Close(ctx context.Context) error
}

// SessionFactory opens a session. Tests substitute a fake.
type SessionFactory func(ctx context.Context) Runner

// Statement is one parameterised cypher statement.
type Statement struct {
	Cypher string
	Params map[string]any
}

// sessionAdapter adapts neo4j.SessionWithContext to Runner.
type sessionAdapter struct {
	sess neo4j.SessionWithContext
}

func (a *sessionAdapter) Run(ctx context.Context, cypher string, params map[string]any) (Result, error) {
	return a.sess.Run(ctx, cypher, params)
}

func (a *sessionAdapter) Close(ctx context.Context) error {
	return a.sess.Close(ctx)
}

// DriverSessions returns a factory opening write sessions on the given
// database ("" for the default).
func DriverSessions(driver neo4j.DriverWithContext, database string) SessionFactory {
	return func(ctx context.Context) Runner {
		return &sessionAdapter{sess: driver.NewSession(ctx, neo4j.SessionConfig{
			AccessMode:   neo4j.AccessModeWrite,
			DatabaseName: database,
		})}
	}
}

// Exec runs statements in order on one session and consumes each result so
// server-side failures surface. It stops at the first error.
func Exec(ctx context.Context, newSession SessionFactory, stmts ...Statement) error {
	sess := newSession(ctx)
	defer sess.Close(ctx)

	for i, st := range stmts {
		res, err := sess.Run(ctx, st.Cypher, st.Params)
		if err != nil {
			return fmt.Errorf("statement %d: %w", i+1, err)
		}
		if _, err := res.Consume(ctx); err != nil {
			return fmt.Errorf("statement %d: %w", i+1, err)
		}
	}
	return nil
}
