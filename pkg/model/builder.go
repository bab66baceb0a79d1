package model

import (
	"fmt"
	"maps"
	"slices"
)

// FactCatalog is the optional external collaborator that knows which fact
// tables exist in the physical store. When supplied, cube fact names are
// checked against it; when nil, fact names are accepted as opaque strings.
type FactCatalog interface {
	HasFact(name string) bool
}

// BuildOptions configures cube and model building.
type BuildOptions struct {
	// FactCatalog validates fact table names when non-nil.
	FactCatalog FactCatalog

	// Lenient makes BuildModel skip invalid cubes instead of failing the
	// whole build. Dimension failures always abort: cubes depend on the
	// complete dimension set.
	Lenient bool
}

// Measure is a resolved fact measure.
type Measure struct {
	Name  string
	Label string

	// Aggregates are the measure's preferred aggregate functions, used to
	// derive default aggregates when a cube declares none.
	Aggregates []string
}

// Cube is a resolved, immutable cube: fact table, dimension references,
// measures, join plan and aggregate plan. A Cube holds read-only views of
// registry dimensions bound at build time; later registry changes never
// mutate an already built cube.
type Cube struct {
	name string
	fact string

	dimensions []*Dimension
	measures   []Measure
	aggregates []Aggregate
	joins      []Join
	mappings   map[string]string

	label       string
	description string
}

// BuildCube validates and assembles a cube from its spec against the
// dimension registry. No partial cube is returned on failure.
func BuildCube(spec CubeSpec, reg *Registry, opts BuildOptions) (*Cube, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("%w: cube with empty name", ErrModelInconsistency)
	}

	// Self-fact convention: a cube without an explicit fact table is its
	// own fact table.
	fact := spec.Fact
	if fact == "" {
		fact = spec.Name
	}
	if opts.FactCatalog != nil && !opts.FactCatalog.HasFact(fact) {
		return nil, fmt.Errorf("%w: %q in cube %q", ErrUnknownFact, fact, spec.Name)
	}

	cube := &Cube{
		name:        spec.Name,
		fact:        fact,
		mappings:    maps.Clone(spec.Mappings),
		label:       spec.Label,
		description: spec.Description,
	}

	seenDims := make(map[string]bool, len(spec.Dimensions))
	for _, ref := range spec.Dimensions {
		if seenDims[ref] {
			return nil, fmt.Errorf("%w: dimension %q referenced twice by cube %q", ErrDuplicateName, ref, spec.Name)
		}
		seenDims[ref] = true
		dim, err := reg.Dimension(ref)
		if err != nil {
			return nil, fmt.Errorf("cube %q: %w", spec.Name, err)
		}
		cube.dimensions = append(cube.dimensions, dim)
	}

	measureSet := make(map[string]bool, len(spec.Measures))
	for _, ms := range spec.Measures {
		if ms.Name == "" {
			return nil, fmt.Errorf("%w: measure with empty name in cube %q", ErrInvalidMeasure, spec.Name)
		}
		if measureSet[ms.Name] {
			return nil, fmt.Errorf("%w: %q declared twice in cube %q", ErrInvalidMeasure, ms.Name, spec.Name)
		}
		measureSet[ms.Name] = true
		cube.measures = append(cube.measures, Measure{
			Name:       ms.Name,
			Label:      ms.Label,
			Aggregates: slices.Clone(ms.Aggregates),
		})
	}

	aggSpecs := spec.Aggregates
	if len(aggSpecs) == 0 {
		aggSpecs = defaultAggregates(spec.Measures)
	}
	aggregates, err := planAggregates(spec.Name, aggSpecs, measureSet)
	if err != nil {
		return nil, err
	}
	cube.aggregates = aggregates

	joins, err := resolveJoins(spec.Name, spec.Joins, reg, spec.Mappings)
	if err != nil {
		return nil, err
	}
	cube.joins = joins

	return cube, nil
}

// Name returns the cube's unique name.
func (c *Cube) Name() string { return c.name }

// FactTable returns the resolved fact table name.
func (c *Cube) FactTable() string { return c.fact }

// Label returns the human readable label, or the name when none was set.
func (c *Cube) Label() string {
	if c.label == "" {
		return c.name
	}
	return c.label
}

// Description returns the human readable description.
func (c *Cube) Description() string { return c.description }

// Dimensions returns the cube's resolved dimensions in declaration order.
func (c *Cube) Dimensions() []*Dimension {
	return slices.Clone(c.dimensions)
}

// Dimension returns the referenced dimension with the given name.
func (c *Cube) Dimension(name string) (*Dimension, error) {
	for _, d := range c.dimensions {
		if d.Name() == name {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %q in cube %q", ErrUnknownDimension, name, c.name)
}

// Measures returns the cube's measures in declaration order.
func (c *Cube) Measures() []Measure {
	return slices.Clone(c.measures)
}

// MeasureNames returns the measure names in declaration order.
func (c *Cube) MeasureNames() []string {
	names := make([]string, len(c.measures))
	for i, m := range c.measures {
		names[i] = m.Name
	}
	return names
}

// HasMeasure reports whether the cube declares the named measure.
func (c *Cube) HasMeasure(name string) bool {
	for _, m := range c.measures {
		if m.Name == name {
			return true
		}
	}
	return false
}

// Joins returns the cube's join plan in declaration order.
func (c *Cube) Joins() []Join {
	return slices.Clone(c.joins)
}

// Join returns the join-plan entry with the given effective name.
func (c *Cube) Join(name string) (Join, bool) {
	for _, j := range c.joins {
		if j.Name == name {
			return j, true
		}
	}
	return Join{}, false
}

// Aggregates returns the cube's aggregate plan in declaration order.
func (c *Cube) Aggregates() []Aggregate {
	return slices.Clone(c.aggregates)
}

// Aggregate returns the aggregate with the given name.
func (c *Cube) Aggregate(name string) (Aggregate, bool) {
	for _, a := range c.aggregates {
		if a.Name == name {
			return a, true
		}
	}
	return Aggregate{}, false
}

// TableFor returns the physical table for a logical dimension name,
// honoring the cube's mappings and falling back to the logical name.
func (c *Cube) TableFor(dimension string) string {
	if t, ok := c.mappings[dimension]; ok {
		return t
	}
	return dimension
}
