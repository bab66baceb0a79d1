// Package browser executes compiled cube queries against a relational
// store.
//
// The browser is the thin external-collaborator surface between the
// frozen model and a PostgreSQL-compatible database: it compiles an
// aggregation request, runs the statement through a minimal Querier
// interface, and scans the result. Everything model-related stays in the
// model and compiler packages; this package only moves rows.
//
// Querier is satisfied by *pgx.Conn and *pgxpool.Pool. Tests use a fake.
package browser

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cubist-dev/cubist/pkg/compiler"
	"github.com/cubist-dev/cubist/pkg/model"
)

// Querier is the minimal database interface the browser needs.
// Implemented by *pgx.Conn, *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// AggregationResult is the scanned output of one aggregation query.
// Columns lists drilldown columns first, then aggregate names, matching
// the order of values in each row.
type AggregationResult struct {
	Cube    string
	Columns []string
	Rows    [][]any
}

// Browser runs aggregation requests for cubes of a frozen model.
// It is safe for concurrent use when the underlying Querier is.
type Browser struct {
	db    Querier
	cache Cache
}

// Option configures a Browser.
type Option func(*Browser)

// WithCache attaches a result cache. Without one, every request hits the
// database.
func WithCache(c Cache) Option {
	return func(b *Browser) { b.cache = c }
}

// New creates a Browser over the given Querier.
func New(db Querier, opts ...Option) *Browser {
	b := &Browser{db: db}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Aggregate compiles and executes an aggregation request against the
// cube's fact set. Results may be served from the cache when one is
// configured; cache entries are keyed by the compiled statement, so two
// structurally identical requests share an entry.
func (b *Browser) Aggregate(ctx context.Context, cube *model.Cube, req compiler.Request) (*AggregationResult, error) {
	stmt, err := compiler.Compile(cube, req)
	if err != nil {
		return nil, err
	}

	key := cacheKey(cube.Name(), stmt)
	if b.cache != nil {
		if res, ok := b.cache.Get(key); ok {
			return res, nil
		}
	}

	rows, err := b.db.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("browser: querying cube %q: %w", cube.Name(), err)
	}
	defer rows.Close()

	res := &AggregationResult{
		Cube:    cube.Name(),
		Columns: resultColumns(cube, req),
	}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("browser: scanning cube %q: %w", cube.Name(), err)
		}
		res.Rows = append(res.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("browser: reading cube %q: %w", cube.Name(), err)
	}

	if b.cache != nil {
		b.cache.Set(key, res)
	}
	return res, nil
}

// resultColumns mirrors the compiled select list: group-by columns, then
// the requested (or full) aggregate plan.
func resultColumns(cube *model.Cube, req compiler.Request) []string {
	var cols []string
	for _, g := range req.GroupBy {
		cols = append(cols, g.Column)
	}
	if len(req.Aggregates) > 0 {
		cols = append(cols, req.Aggregates...)
		return cols
	}
	for _, agg := range cube.Aggregates() {
		cols = append(cols, agg.Name)
	}
	return cols
}

func cacheKey(cube string, stmt compiler.Statement) string {
	return fmt.Sprintf("%s|%s|%v", cube, stmt.SQL, stmt.Args)
}
