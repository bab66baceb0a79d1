package parser

import (
	"testing"

	"github.com/cubist-dev/cubist/pkg/model"
)

func TestParse_InlineDocument(t *testing.T) {
	doc := `
name: test
dimensions:
  - name: date
    levels:
      - name: year
      - name: month
        attributes: [month, month_name]
cubes:
  - name: facts
    measures:
      - name: amount
    joins:
      - master: facts.date_id
        detail: dim_date.id
`

	parsed, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("failed to parse document: %v", err)
	}

	if parsed.Name != "test" {
		t.Errorf("expected model name %q, got %q", "test", parsed.Name)
	}
	if len(parsed.Dimensions) != 1 {
		t.Fatalf("expected 1 dimension, got %d", len(parsed.Dimensions))
	}

	dim := parsed.Dimensions[0]
	if dim.Name != "date" {
		t.Errorf("expected dimension name %q, got %q", "date", dim.Name)
	}
	if len(dim.Levels) != 2 {
		t.Fatalf("expected 2 levels, got %d", len(dim.Levels))
	}
	if got := dim.Levels[1].Attributes; len(got) != 2 || got[1] != "month_name" {
		t.Errorf("month level attributes = %v, want [month month_name]", got)
	}

	if len(parsed.Cubes) != 1 {
		t.Fatalf("expected 1 cube, got %d", len(parsed.Cubes))
	}
	cube := parsed.Cubes[0]
	if len(cube.Joins) != 1 {
		t.Fatalf("expected 1 join, got %d", len(cube.Joins))
	}
	if cube.Joins[0].Master != "facts.date_id" {
		t.Errorf("join master = %q, want %q", cube.Joins[0].Master, "facts.date_id")
	}
}

func TestParse_UnknownFieldsTolerated(t *testing.T) {
	// Documents written for newer versions may carry fields we do not
	// understand yet; parsing must not reject them.
	doc := `
dimensions:
  - name: city
    future_field: true
`

	parsed, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("failed to parse document with unknown field: %v", err)
	}
	if len(parsed.Dimensions) != 1 || parsed.Dimensions[0].Name != "city" {
		t.Errorf("unexpected dimensions: %+v", parsed.Dimensions)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("dimensions: [\n"))
	if err == nil {
		t.Fatal("expected error for invalid document")
	}
}

func TestParseFile_Testdata(t *testing.T) {
	parsed, err := ParseFile("testdata/model.yaml")
	if err != nil {
		t.Fatalf("failed to parse testdata model: %v", err)
	}

	if parsed.Name != "sales" {
		t.Errorf("expected model name %q, got %q", "sales", parsed.Name)
	}
	if len(parsed.Dimensions) != 3 {
		t.Errorf("expected 3 dimensions, got %d", len(parsed.Dimensions))
	}
	if len(parsed.Cubes) != 2 {
		t.Errorf("expected 2 cubes, got %d", len(parsed.Cubes))
	}

	// Template reference survives parsing for the registry to resolve.
	var shipping *model.DimensionSpec
	for i := range parsed.Dimensions {
		if parsed.Dimensions[i].Name == "shipping_date" {
			shipping = &parsed.Dimensions[i]
		}
	}
	if shipping == nil {
		t.Fatal("shipping_date dimension not found")
	}
	if shipping.Template != "date" {
		t.Errorf("shipping_date template = %q, want %q", shipping.Template, "date")
	}
}

func TestLoadModel_Testdata(t *testing.T) {
	m, err := LoadModel("testdata/model.yaml", model.BuildOptions{})
	if err != nil {
		t.Fatalf("failed to load model: %v", err)
	}

	c, err := m.Cube("sales")
	if err != nil {
		t.Fatalf("cube sales: %v", err)
	}
	if c.FactTable() != "sales" {
		t.Errorf("fact table = %q, want %q (defaults to cube name)", c.FactTable(), "sales")
	}

	// Template inheritance: shipping_date carries date's levels.
	d, err := m.Dimension("shipping_date")
	if err != nil {
		t.Fatalf("dimension shipping_date: %v", err)
	}
	want := []string{"year", "month", "day"}
	got := d.LevelNames()
	if len(got) != len(want) {
		t.Fatalf("shipping_date levels = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("level[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLoadModel_JoinScenarios(t *testing.T) {
	m, err := LoadModel("testdata/joins.yaml", model.BuildOptions{})
	if err != nil {
		t.Fatalf("failed to load model: %v", err)
	}

	facts, err := m.Cube("facts")
	if err != nil {
		t.Fatalf("cube facts: %v", err)
	}
	if facts.FactTable() != "facts" {
		t.Errorf("facts fact table = %q, want %q", facts.FactTable(), "facts")
	}
	for _, j := range facts.Joins() {
		if j.Method != model.JoinMatch {
			t.Errorf("facts join %q method = %q, want match", j.Name, j.Method)
		}
	}

	detail, err := m.Cube("facts_detail_city")
	if err != nil {
		t.Fatalf("cube facts_detail_city: %v", err)
	}
	if j, ok := detail.Join("dim_city"); !ok || j.Method != model.JoinDetail {
		t.Errorf("facts_detail_city dim_city join = %+v, want detail method", j)
	}
	if j, ok := detail.Join("dim_date"); !ok || j.Method != model.JoinMatch {
		t.Errorf("facts_detail_city dim_date join = %+v, want match method", j)
	}

	master, err := m.Cube("facts_master")
	if err != nil {
		t.Fatalf("cube facts_master: %v", err)
	}
	if j, ok := master.Join("dim_city"); !ok || j.Method != model.JoinMaster {
		t.Errorf("facts_master dim_city join = %+v, want master method", j)
	}

	// Two underlying tables joined twice each: four independent plan
	// entries, each keeping its own alias and method.
	md, err := m.Cube("masterdetail")
	if err != nil {
		t.Fatalf("cube masterdetail: %v", err)
	}
	plan := md.Joins()
	if len(plan) != 4 {
		t.Fatalf("masterdetail join plan has %d entries, want 4", len(plan))
	}
	want := map[string]model.JoinMethod{
		"dim_date_match":  model.JoinMatch,
		"dim_date_detail": model.JoinDetail,
		"dim_city_match":  model.JoinMatch,
		"dim_city_detail": model.JoinDetail,
	}
	for _, j := range plan {
		method, ok := want[j.Name]
		if !ok {
			t.Errorf("unexpected join entry %q", j.Name)
			continue
		}
		if j.Method != method {
			t.Errorf("join %q method = %q, want %q", j.Name, j.Method, method)
		}
	}
}

func TestLoadModel_MissingFile(t *testing.T) {
	_, err := LoadModel("testdata/does-not-exist.yaml", model.BuildOptions{})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
