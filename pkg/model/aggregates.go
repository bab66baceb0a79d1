package model

import (
	"fmt"
	"strings"
)

// AggregateFunction identifies an aggregation function applied to a
// measure or to bare fact rows.
type AggregateFunction string

const (
	FuncCount         AggregateFunction = "count"
	FuncCountDistinct AggregateFunction = "count_distinct"
	FuncSum           AggregateFunction = "sum"
	FuncMin           AggregateFunction = "min"
	FuncMax           AggregateFunction = "max"
	FuncAvg           AggregateFunction = "avg"
)

// knownFunctions lists supported aggregate functions and whether each one
// requires a measure reference. count is the only measure-free function:
// it plans a row count over the cube's resolved fact set, respecting each
// join's cardinality (a detail join never inflates or deflates the count
// versus the fact table itself, a match join counts matched rows only).
var knownFunctions = map[AggregateFunction]bool{
	FuncCount:         false,
	FuncCountDistinct: true,
	FuncSum:           true,
	FuncMin:           true,
	FuncMax:           true,
	FuncAvg:           true,
}

// RequiresMeasure reports whether the function needs a measure reference.
func (f AggregateFunction) RequiresMeasure() bool {
	requires, ok := knownFunctions[f]
	return ok && requires
}

// Known reports whether the function is supported.
func (f AggregateFunction) Known() bool {
	_, ok := knownFunctions[f]
	return ok
}

// Aggregate is one resolved entry of a cube's aggregate plan: a function
// bound to a measure, or a bare row count when Measure is empty.
type Aggregate struct {
	Name     string
	Function AggregateFunction
	Measure  string
	Label    string
}

// planAggregates validates aggregate specs against the cube's measures.
// Aggregate names must be unique within the cube; the same name in a
// sibling cube is fine.
func planAggregates(cubeName string, specs []AggregateSpec, measures map[string]bool) ([]Aggregate, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	seen := make(map[string]bool, len(specs))
	plan := make([]Aggregate, 0, len(specs))
	for _, as := range specs {
		if as.Name == "" {
			return nil, fmt.Errorf("%w: aggregate with empty name in cube %q", ErrModelInconsistency, cubeName)
		}
		if seen[as.Name] {
			return nil, fmt.Errorf("%w: %q in cube %q", ErrDuplicateAggregate, as.Name, cubeName)
		}
		seen[as.Name] = true

		fn := AggregateFunction(as.Function)
		if !fn.Known() {
			return nil, fmt.Errorf("%w: %q in aggregate %q of cube %q", ErrUnknownFunction, as.Function, as.Name, cubeName)
		}
		if as.Measure == "" && fn.RequiresMeasure() {
			return nil, fmt.Errorf("%w: %q in aggregate %q of cube %q", ErrMeasureRequired, as.Function, as.Name, cubeName)
		}
		if as.Measure != "" && !measures[as.Measure] {
			return nil, fmt.Errorf("%w: %q in aggregate %q of cube %q", ErrUnknownMeasure, as.Measure, as.Name, cubeName)
		}

		plan = append(plan, Aggregate{
			Name:     as.Name,
			Function: fn,
			Measure:  as.Measure,
			Label:    as.Label,
		})
	}
	return plan, nil
}

// defaultAggregates derives aggregates for cubes that declare measures but
// no explicit aggregate list: one aggregate per measure and preferred
// function, named with AggregateRef. A measure with no preferred functions
// gets a sum.
func defaultAggregates(measures []MeasureSpec) []AggregateSpec {
	var specs []AggregateSpec
	for _, m := range measures {
		fns := m.Aggregates
		if len(fns) == 0 {
			fns = []string{string(FuncSum)}
		}
		for _, fn := range fns {
			specs = append(specs, AggregateSpec{
				Name:     AggregateRef(m.Name, fn),
				Function: fn,
				Measure:  m.Name,
			})
		}
	}
	return specs
}

// AggregateRef builds the conventional reference name for a measure
// aggregate: measure and function joined with an underscore.
func AggregateRef(measure, function string) string {
	return measure + "_" + function
}

// SplitAggregateRef splits a reference built by AggregateRef back into
// measure name and function name on the last underscore.
func SplitAggregateRef(ref string) (measure, function string, err error) {
	i := strings.LastIndexByte(ref, '_')
	if i <= 0 || i == len(ref)-1 {
		return "", "", fmt.Errorf("%w: invalid aggregate reference %q", ErrModelInconsistency, ref)
	}
	return ref[:i], ref[i+1:], nil
}
