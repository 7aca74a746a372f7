// Package pgfacts implements engine.StorageProvider over a Postgres table,
// grounded on the teacher's own godb/godb.go (direct pgx usage: connect,
// SELECT, row scanning) and on original_source's
// storage/rocksdb_provider.h for the canHandle/getFacts contract shape
// (spec §6).
package pgfacts

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"logicdb/pkg/engine"
)

// Provider answers goals for exactly one predicate out of one table shaped
// "predicate(arg1, arg2, ..., argN)" — one column per argument, named
// arg1..argN, plus whatever ordering the table naturally has.
type Provider struct {
	pool      *pgxpool.Pool
	predicate string
	table     string
	arity     int
}

// Open connects to dsn and builds a Provider that answers predicate
// (with the given arity) from table.
func Open(ctx context.Context, dsn, predicate, table string, arity int) (*Provider, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgfacts: connect: %w", err)
	}
	return &Provider{pool: pool, predicate: predicate, table: table, arity: arity}, nil
}

// Close releases the underlying connection pool.
func (p *Provider) Close() { p.pool.Close() }

// Handles reports true only for this provider's configured predicate and
// arity, mirroring the original's one-table-per-provider shape.
func (p *Provider) Handles(goal engine.Fact) bool {
	return goal.Predicate == p.predicate && goal.Arity() == p.arity
}

// FactsFor runs a SELECT over the backing table and converts every row
// into an engine.Fact. It never inspects the caller's bindings or
// environment — only the goal's predicate and arity select the query, per
// spec §6's "a provider gets no information about substitutions already
// made by the caller."
func (p *Provider) FactsFor(ctx context.Context, goal engine.Fact) ([]engine.Fact, error) {
	cols := make([]string, p.arity)
	for i := range cols {
		cols[i] = fmt.Sprintf("arg%d", i+1)
	}
	query := fmt.Sprintf("SELECT %s FROM %s", joinCols(cols), p.table)

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgfacts: query %s: %w", p.table, err)
	}
	defer rows.Close()

	var facts []engine.Fact
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("pgfacts: scan row: %w", err)
		}
		args := make([]engine.Term, len(values))
		for i, v := range values {
			args[i] = termFromValue(v)
		}
		facts = append(facts, engine.Fact{Predicate: p.predicate, Args: args, Source: "pgfacts:" + p.table})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgfacts: %w", err)
	}
	return facts, nil
}

func termFromValue(v any) engine.Term {
	switch x := v.(type) {
	case int64:
		return engine.NewNumber(fmt.Sprintf("%d", x))
	case int32:
		return engine.NewNumber(fmt.Sprintf("%d", x))
	case float64:
		return engine.NewNumber(fmt.Sprintf("%g", x))
	case string:
		return engine.NewConstant(x)
	case nil:
		return engine.NewConstant("null")
	default:
		return engine.NewConstant(fmt.Sprintf("%v", x))
	}
}

func joinCols(cols []string) string {
	out := cols[0]
	for _, c := range cols[1:] {
		out += ", " + c
	}
	return out
}
