package model

import (
	"fmt"
	"strings"
)

// JoinMethod describes the cardinality semantics of a join between the
// fact table and a dimension table.
type JoinMethod string

const (
	// JoinMatch is an inner-join-like pairing: only fact rows with a
	// matching detail row are eligible, exactly one detail row per fact
	// row. Used for plain dimension lookups.
	JoinMatch JoinMethod = "match"

	// JoinMaster marks this cube as reusable in the master (fact) role of
	// a larger downstream fact. It does not change the cardinality of the
	// cube's own queries; it is a composability flag carried on the plan
	// entry for downstream query engines.
	JoinMaster JoinMethod = "master"

	// JoinDetail is a left-outer-join-like pairing: fact rows are
	// preserved even when no matching detail row exists, detail attributes
	// become absent on non-match.
	JoinDetail JoinMethod = "detail"
)

// Join is one resolved entry of a cube's join plan. Name is the effective
// detail name (alias when declared, detail table otherwise) and is the key
// other components use to reference this join, e.g. a drilldown on
// "dim_date_match".
type Join struct {
	MasterTable  string
	MasterColumn string
	DetailTable  string
	DetailColumn string

	// Name is the effective detail name, unique within the cube's plan.
	Name string

	Method JoinMethod
}

// SplitRef splits a table.column reference on the last dot. The table
// part may itself be qualified ("schema.table.column" keeps
// "schema.table" together). Fails with ErrMalformedReference when the
// reference does not have exactly a table and a column part.
func SplitRef(ref string) (table, column string, err error) {
	i := strings.LastIndexByte(ref, '.')
	if i <= 0 || i == len(ref)-1 {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedReference, ref)
	}
	return ref[:i], ref[i+1:], nil
}

// resolveJoins produces the cube's join plan. Each entry keeps its own
// method; the same underlying dimension table may appear twice as long as
// the effective names differ.
func resolveJoins(cubeName string, specs []JoinSpec, reg *Registry, mappings map[string]string) ([]Join, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	joins := make([]Join, 0, len(specs))
	seen := make(map[string]bool, len(specs))
	for _, js := range specs {
		masterTable, masterCol, err := SplitRef(js.Master)
		if err != nil {
			return nil, fmt.Errorf("master of join in cube %q: %w", cubeName, err)
		}
		detailTable, detailCol, err := SplitRef(js.Detail)
		if err != nil {
			return nil, fmt.Errorf("detail of join in cube %q: %w", cubeName, err)
		}

		method := JoinMethod(js.Method)
		if method == "" {
			method = JoinMatch
		}
		switch method {
		case JoinMatch, JoinMaster, JoinDetail:
		default:
			return nil, fmt.Errorf("%w: %q in cube %q", ErrUnknownJoinMethod, js.Method, cubeName)
		}

		if !dimensionTableKnown(detailTable, reg, mappings) {
			return nil, fmt.Errorf("%w: %q in cube %q", ErrUnknownDimensionTable, detailTable, cubeName)
		}

		name := js.Alias
		if name == "" {
			name = detailTable
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: %q appears twice in cube %q (use distinct aliases to join the same table twice)",
				ErrAmbiguousAlias, name, cubeName)
		}
		seen[name] = true

		joins = append(joins, Join{
			MasterTable:  masterTable,
			MasterColumn: masterCol,
			DetailTable:  detailTable,
			DetailColumn: detailCol,
			Name:         name,
			Method:       method,
		})
	}
	return joins, nil
}

// dimensionTableKnown reports whether a join's detail table corresponds to
// a registered dimension: through the cube's explicit mappings, by the
// dimension's own name, or by the conventional dim_<name> table name.
func dimensionTableKnown(table string, reg *Registry, mappings map[string]string) bool {
	for _, physical := range mappings {
		if physical == table {
			return true
		}
	}
	if reg.Has(table) {
		return true
	}
	return strings.HasPrefix(table, "dim_") && reg.Has(strings.TrimPrefix(table, "dim_"))
}
