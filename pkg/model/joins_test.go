package model_test

import (
	"strings"
	"testing"

	"github.com/cubist-dev/cubist/pkg/model"
)

// joinTestRegistry registers the dimensions the join tests reference.
func joinTestRegistry(t *testing.T) *model.Registry {
	t.Helper()
	reg := model.NewRegistry()
	err := reg.RegisterAll([]model.DimensionSpec{
		{Name: "date", Levels: []model.LevelSpec{{Name: "year"}, {Name: "month"}}},
		{Name: "city", Levels: []model.LevelSpec{{Name: "city", Attributes: []string{"id", "name"}}}},
	})
	if err != nil {
		t.Fatalf("registering dimensions: %v", err)
	}
	return reg
}

func TestSplitRef(t *testing.T) {
	tests := []struct {
		ref        string
		table, col string
		wantErr    bool
	}{
		{ref: "facts.date_id", table: "facts", col: "date_id"},
		{ref: "analytics.facts.date_id", table: "analytics.facts", col: "date_id"},
		{ref: "facts", wantErr: true},
		{ref: "facts.", wantErr: true},
		{ref: ".date_id", wantErr: true},
		{ref: "", wantErr: true},
	}
	for _, tt := range tests {
		table, col, err := model.SplitRef(tt.ref)
		if tt.wantErr {
			if err == nil {
				t.Errorf("SplitRef(%q): expected error", tt.ref)
			}
			continue
		}
		if err != nil {
			t.Errorf("SplitRef(%q): %v", tt.ref, err)
			continue
		}
		if table != tt.table || col != tt.col {
			t.Errorf("SplitRef(%q) = (%q, %q), want (%q, %q)", tt.ref, table, col, tt.table, tt.col)
		}
	}
}

func TestJoins_DefaultMethodIsMatch(t *testing.T) {
	reg := joinTestRegistry(t)
	cube, err := model.BuildCube(model.CubeSpec{
		Name: "facts",
		Joins: []model.JoinSpec{
			{Master: "facts.date_id", Detail: "dim_date.id"},
		},
	}, reg, model.BuildOptions{})
	if err != nil {
		t.Fatalf("build cube: %v", err)
	}

	joins := cube.Joins()
	if len(joins) != 1 {
		t.Fatalf("expected 1 join, got %d", len(joins))
	}
	j := joins[0]
	if j.Method != model.JoinMatch {
		t.Errorf("method = %q, want %q", j.Method, model.JoinMatch)
	}
	if j.Name != "dim_date" {
		t.Errorf("effective name = %q, want detail table %q", j.Name, "dim_date")
	}
	if j.MasterTable != "facts" || j.MasterColumn != "date_id" {
		t.Errorf("master = %s.%s, want facts.date_id", j.MasterTable, j.MasterColumn)
	}
	if j.DetailTable != "dim_date" || j.DetailColumn != "id" {
		t.Errorf("detail = %s.%s, want dim_date.id", j.DetailTable, j.DetailColumn)
	}
}

func TestJoins_MethodsPreserved(t *testing.T) {
	reg := joinTestRegistry(t)
	cube, err := model.BuildCube(model.CubeSpec{
		Name: "facts",
		Joins: []model.JoinSpec{
			{Master: "facts.date_id", Detail: "dim_date.id", Method: "master"},
			{Master: "facts.city_id", Detail: "dim_city.id", Method: "detail"},
		},
	}, reg, model.BuildOptions{})
	if err != nil {
		t.Fatalf("build cube: %v", err)
	}

	if j, ok := cube.Join("dim_date"); !ok || j.Method != model.JoinMaster {
		t.Errorf("dim_date join method = %v, want master", j.Method)
	}
	if j, ok := cube.Join("dim_city"); !ok || j.Method != model.JoinDetail {
		t.Errorf("dim_city join method = %v, want detail", j.Method)
	}
}

func TestJoins_UnknownMethod(t *testing.T) {
	reg := joinTestRegistry(t)
	_, err := model.BuildCube(model.CubeSpec{
		Name: "facts",
		Joins: []model.JoinSpec{
			{Master: "facts.date_id", Detail: "dim_date.id", Method: "outer"},
		},
	}, reg, model.BuildOptions{})
	if err == nil {
		t.Fatal("expected error for unknown join method")
	}
	if !strings.Contains(err.Error(), "outer") {
		t.Errorf("error should name the bad method, got: %s", err.Error())
	}
}

func TestJoins_SameTableTwiceWithAliases(t *testing.T) {
	// Both dimensions joined twice under distinct roles; the plan keeps
	// all four entries with their own methods.
	reg := joinTestRegistry(t)
	cube, err := model.BuildCube(model.CubeSpec{
		Name: "masterdetail",
		Joins: []model.JoinSpec{
			{Master: "masterdetail.date_id", Detail: "dim_date.id", Alias: "date_match", Method: "match"},
			{Master: "masterdetail.date_id", Detail: "dim_date.id", Alias: "date_detail", Method: "detail"},
			{Master: "masterdetail.city_id", Detail: "dim_city.id", Alias: "city_match", Method: "match"},
			{Master: "masterdetail.city_id", Detail: "dim_city.id", Alias: "city_detail", Method: "detail"},
		},
	}, reg, model.BuildOptions{})
	if err != nil {
		t.Fatalf("build cube: %v", err)
	}

	joins := cube.Joins()
	if len(joins) != 4 {
		t.Fatalf("expected 4 join plan entries, got %d", len(joins))
	}

	byName := map[string]model.Join{}
	for _, j := range joins {
		byName[j.Name] = j
	}
	if j := byName["date_match"]; j.Method != model.JoinMatch || j.DetailTable != "dim_date" {
		t.Errorf("date_match = %+v", j)
	}
	if j := byName["date_detail"]; j.Method != model.JoinDetail || j.DetailTable != "dim_date" {
		t.Errorf("date_detail = %+v", j)
	}
	if j := byName["city_match"]; j.Method != model.JoinMatch || j.DetailTable != "dim_city" {
		t.Errorf("city_match = %+v", j)
	}
	if j := byName["city_detail"]; j.Method != model.JoinDetail || j.DetailTable != "dim_city" {
		t.Errorf("city_detail = %+v", j)
	}
}

func TestJoins_AmbiguousAlias(t *testing.T) {
	reg := joinTestRegistry(t)
	_, err := model.BuildCube(model.CubeSpec{
		Name: "facts",
		Joins: []model.JoinSpec{
			{Master: "facts.order_date", Detail: "dim_date.id"},
			{Master: "facts.ship_date", Detail: "dim_date.id"},
		},
	}, reg, model.BuildOptions{})
	if err == nil {
		t.Fatal("expected error for ambiguous effective name")
	}
	if !model.IsAmbiguousAliasErr(err) {
		t.Errorf("expected IsAmbiguousAliasErr to return true, got: %v", err)
	}
}

func TestJoins_AliasVsTableCollision(t *testing.T) {
	// An alias colliding with another join's bare table name is just as
	// ambiguous as two identical aliases.
	reg := joinTestRegistry(t)
	_, err := model.BuildCube(model.CubeSpec{
		Name: "facts",
		Joins: []model.JoinSpec{
			{Master: "facts.order_date", Detail: "dim_date.id"},
			{Master: "facts.city_id", Detail: "dim_city.id", Alias: "dim_date"},
		},
	}, reg, model.BuildOptions{})
	if err == nil {
		t.Fatal("expected error for alias colliding with table name")
	}
	if !model.IsAmbiguousAliasErr(err) {
		t.Errorf("expected IsAmbiguousAliasErr, got: %v", err)
	}
}

func TestJoins_MalformedReference(t *testing.T) {
	reg := joinTestRegistry(t)
	_, err := model.BuildCube(model.CubeSpec{
		Name: "facts",
		Joins: []model.JoinSpec{
			{Master: "facts", Detail: "dim_date.id"},
		},
	}, reg, model.BuildOptions{})
	if err == nil {
		t.Fatal("expected error for reference without a column part")
	}
}

func TestJoins_UnknownDimensionTable(t *testing.T) {
	reg := joinTestRegistry(t)
	_, err := model.BuildCube(model.CubeSpec{
		Name: "facts",
		Joins: []model.JoinSpec{
			{Master: "facts.region_id", Detail: "dim_region.id"},
		},
	}, reg, model.BuildOptions{})
	if err == nil {
		t.Fatal("expected error for join against unregistered dimension")
	}
	if !strings.Contains(err.Error(), "dim_region") {
		t.Errorf("error should name the table, got: %s", err.Error())
	}
}

func TestJoins_MappedDimensionTable(t *testing.T) {
	// Mappings bind a logical dimension to an arbitrary physical table;
	// the join resolver accepts the mapped table name.
	reg := joinTestRegistry(t)
	cube, err := model.BuildCube(model.CubeSpec{
		Name:       "facts",
		Dimensions: []string{"date"},
		Mappings:   map[string]string{"date": "warehouse_dates"},
		Joins: []model.JoinSpec{
			{Master: "facts.date_id", Detail: "warehouse_dates.id"},
		},
	}, reg, model.BuildOptions{})
	if err != nil {
		t.Fatalf("build cube: %v", err)
	}
	if cube.TableFor("date") != "warehouse_dates" {
		t.Errorf("TableFor(date) = %q, want warehouse_dates", cube.TableFor("date"))
	}
}
