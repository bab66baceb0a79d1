// Package compiler turns a resolved cube and an aggregation request into
// a SQL SELECT statement.
//
// The compiler realizes the cardinality semantics of the cube's join
// plan: match joins render as INNER JOINs (unmatched fact rows are
// excluded), detail joins render as LEFT JOINs (every fact row is
// preserved, so a row-count aggregate equals the fact table's own count),
// and master joins render as INNER JOINs while remaining flagged on the
// plan for downstream composition.
//
// Compilation is pure text generation over the frozen model; executing
// the statement is the browser package's concern.
package compiler

import (
	"errors"
	"fmt"

	"github.com/cubist-dev/cubist/internal/sqlgen"
	"github.com/cubist-dev/cubist/pkg/model"
)

// ErrUnknownColumn is returned when a request references a table that is
// neither the cube's fact table nor an effective join name, or an
// aggregate the cube does not plan.
var ErrUnknownColumn = errors.New("cubist: unknown column reference")

// IsUnknownColumnErr returns true if err is or wraps ErrUnknownColumn.
func IsUnknownColumnErr(err error) bool {
	return errors.Is(err, ErrUnknownColumn)
}

// ColumnRef names a column through the table visible in the compiled
// query: the fact table or a join's effective detail name.
type ColumnRef struct {
	Table  string
	Column string
}

// Condition is an equality cut on a column. Values are always bound as
// placeholders, never inlined.
type Condition struct {
	Column ColumnRef
	Value  any
}

// Request selects what to aggregate and how to slice it.
type Request struct {
	// Aggregates are aggregate names from the cube's plan. Empty selects
	// the whole plan.
	Aggregates []string

	// GroupBy lists drilldown columns. The compiled statement selects,
	// groups and orders by them in the given order.
	GroupBy []ColumnRef

	// Cuts restrict the fact set before aggregation.
	Cuts []Condition
}

// Statement is a compiled SQL statement with positional arguments.
type Statement struct {
	SQL  string
	Args []any
}

// Compile builds the aggregation SELECT for a cube. The request is
// validated against the cube's join plan and aggregate plan; it fails
// with ErrUnknownColumn for references outside the plan and with the
// model package's sentinel errors for unknown aggregates.
func Compile(cube *model.Cube, req Request) (Statement, error) {
	aggs, err := selectAggregates(cube, req.Aggregates)
	if err != nil {
		return Statement{}, err
	}

	tables := visibleTables(cube)
	for _, col := range req.GroupBy {
		if !tables[col.Table] {
			return Statement{}, fmt.Errorf("%w: %s.%s in cube %q", ErrUnknownColumn, col.Table, col.Column, cube.Name())
		}
	}
	for _, cut := range req.Cuts {
		if !tables[cut.Column.Table] {
			return Statement{}, fmt.Errorf("%w: %s.%s in cube %q", ErrUnknownColumn, cut.Column.Table, cut.Column.Column, cube.Name())
		}
	}

	b := sqlgen.NewBuilder()

	sel := sqlgen.NewJoiner(", ")
	for _, col := range req.GroupBy {
		sel.Add(columnSQL(col))
	}
	for _, agg := range aggs {
		expr, err := aggregateSQL(cube, agg)
		if err != nil {
			return Statement{}, err
		}
		sel.Add(fmt.Sprintf("%s AS %s", expr, sqlgen.QuoteIdent(agg.Name)))
	}
	b.Line("SELECT %s", sel.String())
	b.Line("FROM %s", sqlgen.QuoteIdent(cube.FactTable()))

	for _, join := range cube.Joins() {
		b.Line("%s", joinSQL(join))
	}

	var args []any
	if len(req.Cuts) > 0 {
		where := sqlgen.NewJoiner(" AND ")
		for _, cut := range req.Cuts {
			args = append(args, cut.Value)
			where.Add(fmt.Sprintf("%s = $%d", columnSQL(cut.Column), len(args)))
		}
		b.Line("WHERE %s", where.String())
	}

	if len(req.GroupBy) > 0 {
		group := sqlgen.NewJoiner(", ")
		for _, col := range req.GroupBy {
			group.Add(columnSQL(col))
		}
		b.Line("GROUP BY %s", group.String())
		b.Line("ORDER BY %s", group.String())
	}

	return Statement{SQL: b.String(), Args: args}, nil
}

// selectAggregates resolves requested aggregate names against the cube's
// plan, defaulting to the whole plan.
func selectAggregates(cube *model.Cube, names []string) ([]model.Aggregate, error) {
	if len(names) == 0 {
		aggs := cube.Aggregates()
		if len(aggs) == 0 {
			return nil, fmt.Errorf("%w: cube %q plans no aggregates", ErrUnknownColumn, cube.Name())
		}
		return aggs, nil
	}
	aggs := make([]model.Aggregate, 0, len(names))
	for _, name := range names {
		agg, ok := cube.Aggregate(name)
		if !ok {
			return nil, fmt.Errorf("%w: aggregate %q in cube %q", ErrUnknownColumn, name, cube.Name())
		}
		aggs = append(aggs, agg)
	}
	return aggs, nil
}

// visibleTables collects the table names a request may reference: the
// fact table plus every join's effective name.
func visibleTables(cube *model.Cube) map[string]bool {
	tables := map[string]bool{cube.FactTable(): true}
	for _, j := range cube.Joins() {
		tables[j.Name] = true
	}
	return tables
}

func columnSQL(col ColumnRef) string {
	return sqlgen.QuoteIdent(col.Table) + "." + sqlgen.QuoteIdent(col.Column)
}

// aggregateSQL renders one aggregate expression against the fact table.
func aggregateSQL(cube *model.Cube, agg model.Aggregate) (string, error) {
	measure := ""
	if agg.Measure != "" {
		measure = sqlgen.QuoteIdent(cube.FactTable()) + "." + sqlgen.QuoteIdent(agg.Measure)
	}
	switch agg.Function {
	case model.FuncCount:
		if measure == "" {
			return "COUNT(*)", nil
		}
		return "COUNT(" + measure + ")", nil
	case model.FuncCountDistinct:
		return "COUNT(DISTINCT " + measure + ")", nil
	case model.FuncSum:
		return "SUM(" + measure + ")", nil
	case model.FuncMin:
		return "MIN(" + measure + ")", nil
	case model.FuncMax:
		return "MAX(" + measure + ")", nil
	case model.FuncAvg:
		return "AVG(" + measure + ")", nil
	default:
		return "", fmt.Errorf("%w: %q", model.ErrUnknownFunction, agg.Function)
	}
}

// joinSQL renders one join-plan entry. The method dictates the join kind:
// detail preserves unmatched fact rows, match and master do not. The
// detail table is aliased only when the effective name differs from it.
func joinSQL(join model.Join) string {
	kind := "INNER JOIN"
	if join.Method == model.JoinDetail {
		kind = "LEFT JOIN"
	}
	table := sqlgen.QuoteIdent(join.DetailTable)
	if join.Name != join.DetailTable {
		table += " AS " + sqlgen.QuoteIdent(join.Name)
	}
	return fmt.Sprintf("%s %s ON %s.%s = %s.%s",
		kind, table,
		sqlgen.QuoteIdent(join.MasterTable), sqlgen.QuoteIdent(join.MasterColumn),
		sqlgen.QuoteIdent(join.Name), sqlgen.QuoteIdent(join.DetailColumn))
}
