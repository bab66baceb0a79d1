package compiler_test

import (
	"strings"
	"testing"

	"github.com/cubist-dev/cubist/pkg/compiler"
	"github.com/cubist-dev/cubist/pkg/model"
)

func salesCube(t *testing.T) *model.Cube {
	t.Helper()
	m, err := model.BuildModel(model.Document{
		Dimensions: []model.DimensionSpec{
			{Name: "date", Levels: []model.LevelSpec{{Name: "year"}, {Name: "month"}}},
			{Name: "city", Levels: []model.LevelSpec{{Name: "city", Attributes: []string{"id", "name"}}}},
		},
		Cubes: []model.CubeSpec{{
			Name:     "sales",
			Measures: []model.MeasureSpec{{Name: "amount"}},
			Aggregates: []model.AggregateSpec{
				{Name: "record_count", Function: "count"},
				{Name: "amount_sum", Function: "sum", Measure: "amount"},
			},
			Joins: []model.JoinSpec{
				{Master: "sales.date_id", Detail: "dim_date.id"},
				{Master: "sales.city_id", Detail: "dim_city.id", Method: "detail"},
			},
		}},
	}, model.BuildOptions{})
	if err != nil {
		t.Fatalf("build model: %v", err)
	}
	c, err := m.Cube("sales")
	if err != nil {
		t.Fatalf("cube: %v", err)
	}
	return c
}

func TestCompile_FullStatement(t *testing.T) {
	cube := salesCube(t)
	stmt, err := compiler.Compile(cube, compiler.Request{
		Aggregates: []string{"amount_sum"},
		GroupBy:    []compiler.ColumnRef{{Table: "dim_date", Column: "year"}},
		Cuts: []compiler.Condition{
			{Column: compiler.ColumnRef{Table: "dim_city", Column: "name"}, Value: "Berlin"},
		},
	})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	want := `SELECT "dim_date"."year", SUM("sales"."amount") AS "amount_sum"
FROM "sales"
INNER JOIN "dim_date" ON "sales"."date_id" = "dim_date"."id"
LEFT JOIN "dim_city" ON "sales"."city_id" = "dim_city"."id"
WHERE "dim_city"."name" = $1
GROUP BY "dim_date"."year"
ORDER BY "dim_date"."year"`
	if stmt.SQL != want {
		t.Errorf("SQL mismatch:\ngot:\n%s\nwant:\n%s", stmt.SQL, want)
	}
	if len(stmt.Args) != 1 || stmt.Args[0] != "Berlin" {
		t.Errorf("args = %v, want [Berlin]", stmt.Args)
	}
}

func TestCompile_JoinKinds(t *testing.T) {
	cube := salesCube(t)
	stmt, err := compiler.Compile(cube, compiler.Request{Aggregates: []string{"record_count"}})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	// match joins exclude unmatched fact rows, detail joins keep them.
	if !strings.Contains(stmt.SQL, `INNER JOIN "dim_date"`) {
		t.Errorf("match join should render as INNER JOIN:\n%s", stmt.SQL)
	}
	if !strings.Contains(stmt.SQL, `LEFT JOIN "dim_city"`) {
		t.Errorf("detail join should render as LEFT JOIN:\n%s", stmt.SQL)
	}
}

func TestCompile_DefaultsToWholePlan(t *testing.T) {
	cube := salesCube(t)
	stmt, err := compiler.Compile(cube, compiler.Request{})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !strings.Contains(stmt.SQL, `COUNT(*) AS "record_count"`) {
		t.Errorf("missing record_count:\n%s", stmt.SQL)
	}
	if !strings.Contains(stmt.SQL, `SUM("sales"."amount") AS "amount_sum"`) {
		t.Errorf("missing amount_sum:\n%s", stmt.SQL)
	}
	if len(stmt.Args) != 0 {
		t.Errorf("args = %v, want none", stmt.Args)
	}
}

func TestCompile_AliasedJoins(t *testing.T) {
	m, err := model.BuildModel(model.Document{
		Dimensions: []model.DimensionSpec{
			{Name: "date", Levels: []model.LevelSpec{{Name: "year"}}},
		},
		Cubes: []model.CubeSpec{{
			Name: "orders",
			Aggregates: []model.AggregateSpec{
				{Name: "record_count", Function: "count"},
			},
			Joins: []model.JoinSpec{
				{Master: "orders.ordered_on", Detail: "dim_date.id", Alias: "order_date"},
				{Master: "orders.shipped_on", Detail: "dim_date.id", Alias: "ship_date", Method: "detail"},
			},
		}},
	}, model.BuildOptions{})
	if err != nil {
		t.Fatalf("build model: %v", err)
	}
	cube, _ := m.Cube("orders")

	stmt, err := compiler.Compile(cube, compiler.Request{
		GroupBy: []compiler.ColumnRef{{Table: "order_date", Column: "year"}},
	})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	if !strings.Contains(stmt.SQL, `INNER JOIN "dim_date" AS "order_date" ON "orders"."ordered_on" = "order_date"."id"`) {
		t.Errorf("aliased match join wrong:\n%s", stmt.SQL)
	}
	if !strings.Contains(stmt.SQL, `LEFT JOIN "dim_date" AS "ship_date" ON "orders"."shipped_on" = "ship_date"."id"`) {
		t.Errorf("aliased detail join wrong:\n%s", stmt.SQL)
	}
	if !strings.Contains(stmt.SQL, `GROUP BY "order_date"."year"`) {
		t.Errorf("group by should use the effective name:\n%s", stmt.SQL)
	}
}

func TestCompile_UnknownReferences(t *testing.T) {
	cube := salesCube(t)

	_, err := compiler.Compile(cube, compiler.Request{Aggregates: []string{"nope"}})
	if err == nil {
		t.Fatal("expected error for unknown aggregate")
	}
	if !compiler.IsUnknownColumnErr(err) {
		t.Errorf("expected IsUnknownColumnErr, got: %v", err)
	}

	_, err = compiler.Compile(cube, compiler.Request{
		GroupBy: []compiler.ColumnRef{{Table: "dim_region", Column: "name"}},
	})
	if err == nil {
		t.Fatal("expected error for group-by outside the plan")
	}
	if !compiler.IsUnknownColumnErr(err) {
		t.Errorf("expected IsUnknownColumnErr, got: %v", err)
	}

	// The underlying detail table is not addressable when the join is
	// aliased away from it; only effective names are visible.
	_, err = compiler.Compile(cube, compiler.Request{
		Cuts: []compiler.Condition{
			{Column: compiler.ColumnRef{Table: "city", Column: "name"}, Value: "Berlin"},
		},
	})
	if err == nil {
		t.Fatal("expected error for cut on non-visible table")
	}
}

func TestCompile_MultipleCutArgs(t *testing.T) {
	cube := salesCube(t)
	stmt, err := compiler.Compile(cube, compiler.Request{
		Aggregates: []string{"record_count"},
		Cuts: []compiler.Condition{
			{Column: compiler.ColumnRef{Table: "dim_date", Column: "year"}, Value: 2026},
			{Column: compiler.ColumnRef{Table: "dim_city", Column: "name"}, Value: "Berlin"},
		},
	})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !strings.Contains(stmt.SQL, `WHERE "dim_date"."year" = $1 AND "dim_city"."name" = $2`) {
		t.Errorf("where clause wrong:\n%s", stmt.SQL)
	}
	if len(stmt.Args) != 2 || stmt.Args[0] != 2026 || stmt.Args[1] != "Berlin" {
		t.Errorf("args = %v, want [2026 Berlin]", stmt.Args)
	}
}
