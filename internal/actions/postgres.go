package actions

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/katonium/testflow/internal/action"
	"github.com/katonium/testflow/internal/model"
)

// Postgres runs a single SQL query against a pool keyed by the step's
// resolved "dsn" param, returning every row, each as a field-name-keyed
// mapping, under the "rows" output key. Pools are cached per-DSN for the lifetime of the process so
// concurrent steps against the same database reuse a connection pool
// rather than opening one per step.
func Postgres() action.Action {
	pools := newPoolCache()

	return action.ActionFunc(func(ctx context.Context, step model.Step) (model.ActionResult, error) {
		dsn, _ := step.Params["dsn"].(string)
		if dsn == "" {
			return model.Failure("postgres action requires a \"dsn\" param", ""), nil
		}
		query, _ := step.Params["query"].(string)
		if query == "" {
			return model.Failure("postgres action requires a \"query\" param", ""), nil
		}

		pool, err := pools.get(ctx, dsn)
		if err != nil {
			return model.Failure(fmt.Sprintf("connect: %v", err), ""), nil
		}

		rows, err := pool.Query(ctx, query)
		if err != nil {
			return model.Failure(fmt.Sprintf("query: %v", err), ""), nil
		}
		defer rows.Close()

		var results []map[string]any
		fields := rows.FieldDescriptions()
		for rows.Next() {
			values, err := rows.Values()
			if err != nil {
				return model.Failure(fmt.Sprintf("scan row: %v", err), ""), nil
			}
			row := make(map[string]any, len(fields))
			for i, field := range fields {
				row[string(field.Name)] = values[i]
			}
			results = append(results, row)
		}
		if err := rows.Err(); err != nil {
			return model.Failure(fmt.Sprintf("iterate rows: %v", err), ""), nil
		}

		return model.ActionResult{Success: true, Output: map[string]any{"rows": results}}, nil
	})
}

// poolCache guards its map with a mutex since Actions may be invoked
// concurrently by the Scheduler's DAG Mode (spec.md §4.3).
type poolCache struct {
	mu    sync.Mutex
	pools map[string]*pgxpool.Pool
}

func newPoolCache() *poolCache {
	return &poolCache{pools: make(map[string]*pgxpool.Pool)}
}

func (c *poolCache) get(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if pool, ok := c.pools[dsn]; ok {
		return pool, nil
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	c.pools[dsn] = pool
	return pool, nil
}
