// Package model provides the logical OLAP cube model for cubist.
//
// This package contains the core data structures and resolution logic for
// turning declarative cube and dimension specifications into a validated,
// frozen multidimensional model. It sits between the parser package (which
// reads YAML/JSON documents) and the compiler/browser layers (which turn
// resolved cubes into SQL and results).
//
// # Package Responsibilities
//
// The model package handles three transformations:
//
//  1. Dimension registration (Registry) - template inheritance and level
//     resolution
//  2. Cube building (BuildCube, BuildModel) - reference validation and
//     assembly of frozen Cube values
//  3. Planning (resolveJoins, planAggregates) - the join plan and aggregate
//     plan a query layer consumes
//
// # Key Types
//
// DimensionSpec and CubeSpec are the raw declarative inputs, usually
// produced by the parser package. Dimension, Cube and Model are the
// resolved, immutable outputs. A Model is safe for unsynchronized
// concurrent reads; schema reloads build a fresh Model and swap it in via
// Holder.
//
// # Validation
//
// All failures are synchronous validation errors classified by the
// sentinel errors in errors.go. The builder never returns a partially
// valid Cube or Dimension.
package model

// DimensionSpec is the declarative definition of a dimension as it appears
// in a model document. A spec with a Template inherits the template's
// levels unless it declares its own; declared levels entirely replace the
// inherited ones, there is no merge.
type DimensionSpec struct {
	Name     string `json:"name"`
	Template string `json:"template,omitempty"`

	Levels []LevelSpec `json:"levels,omitempty"`

	// Hierarchies are optional ordered subsets of levels. When absent, a
	// single "default" hierarchy over all levels in declaration order is
	// implied.
	Hierarchies      []HierarchySpec `json:"hierarchies,omitempty"`
	DefaultHierarchy string          `json:"default_hierarchy,omitempty"`

	Label       string         `json:"label,omitempty"`
	Description string         `json:"description,omitempty"`
	Info        map[string]any `json:"info,omitempty"`
}

// LevelSpec describes one level of a dimension hierarchy.
type LevelSpec struct {
	Name string `json:"name"`

	// Attributes defaults to a single attribute named after the level.
	Attributes []string `json:"attributes,omitempty"`

	// Key is the grouping attribute. Defaults to the first attribute.
	Key string `json:"key,omitempty"`

	// LabelAttribute is the display attribute. Defaults to the second
	// attribute, or the key when the level has only one.
	LabelAttribute string `json:"label_attribute,omitempty"`
}

// HierarchySpec names an ordered subset of a dimension's levels.
type HierarchySpec struct {
	Name   string   `json:"name"`
	Levels []string `json:"levels"`
}

// CubeSpec is the declarative definition of a cube.
type CubeSpec struct {
	Name string `json:"name"`

	// Fact is the fact table name. When empty the cube's own name is used
	// (self-fact convention for cubes acting as base fact tables).
	Fact string `json:"fact,omitempty"`

	// Dimensions are references into the dimension registry, in order.
	Dimensions []string `json:"dimensions,omitempty"`

	// Measures are fact table column references, opaque at this layer.
	Measures []MeasureSpec `json:"measures,omitempty"`

	Aggregates []AggregateSpec `json:"aggregates,omitempty"`
	Joins      []JoinSpec      `json:"joins,omitempty"`

	// Mappings map a logical dimension name to its physical table, for
	// schemas where the two differ (e.g. "date" -> "dim_date").
	Mappings map[string]string `json:"mappings,omitempty"`

	Label       string         `json:"label,omitempty"`
	Description string         `json:"description,omitempty"`
	Info        map[string]any `json:"info,omitempty"`
}

// MeasureSpec describes a numeric fact attribute. Aggregates, when set,
// lists the aggregate functions used to derive default aggregates for
// cubes that declare none explicitly.
type MeasureSpec struct {
	Name       string   `json:"name"`
	Label      string   `json:"label,omitempty"`
	Aggregates []string `json:"aggregates,omitempty"`
}

// JoinSpec connects fact rows to a dimension table. Master and Detail are
// table.column references.
type JoinSpec struct {
	Master string `json:"master"`
	Detail string `json:"detail"`

	// Method is one of "match", "master", "detail". Empty means "match".
	Method string `json:"method,omitempty"`

	// Alias renames the detail table within this join's scope. Required
	// when multiple joins target the same dimension table.
	Alias string `json:"alias,omitempty"`
}

// AggregateSpec declares an aggregate over a measure or a bare row count.
type AggregateSpec struct {
	Name     string `json:"name"`
	Function string `json:"function"`

	// Measure is absent for row-count style aggregates.
	Measure string `json:"measure,omitempty"`

	Label string `json:"label,omitempty"`
}

// Document is the top-level structure of a cubist model document: a list
// of cubes and a list of dimensions. Unknown fields in the source document
// are ignored for forward compatibility.
type Document struct {
	Name       string          `json:"name,omitempty"`
	Cubes      []CubeSpec      `json:"cubes,omitempty"`
	Dimensions []DimensionSpec `json:"dimensions,omitempty"`
}
