package model

import "errors"

// Sentinel errors for model build failures. All of them are deterministic
// validation errors detected synchronously during build: there is nothing to
// retry and no partial model is ever returned alongside one of these.
//
// Use the Is*Err helper functions (or errors.Is directly) to classify a
// build failure. The wrapped message always names the offending entity and
// field.
var (
	// ErrDuplicateName is returned when a name is already taken within its
	// scope: a dimension name in a registry, or a level name in a dimension.
	ErrDuplicateName = errors.New("cubist: duplicate name")

	// ErrUnknownTemplate is returned when a dimension references a template
	// that has not been registered yet. Templates resolve in declaration
	// order, so a forward reference is an error.
	ErrUnknownTemplate = errors.New("cubist: unknown dimension template")

	// ErrCyclicTemplate is returned when template references form a cycle
	// (self-referential or mutual).
	ErrCyclicTemplate = errors.New("cubist: cyclic dimension template")

	// ErrUnknownDimension is returned when a cube references a dimension
	// that is not in the registry.
	ErrUnknownDimension = errors.New("cubist: unknown dimension")

	// ErrUnknownFact is returned when a fact catalog is supplied and the
	// cube's fact table is not present in it.
	ErrUnknownFact = errors.New("cubist: unknown fact table")

	// ErrDuplicateAggregate is returned when two aggregates within one cube
	// share a name. The same name in two different cubes is fine.
	ErrDuplicateAggregate = errors.New("cubist: duplicate aggregate name")

	// ErrInvalidMeasure is returned when a measure list entry is malformed
	// (empty or repeated).
	ErrInvalidMeasure = errors.New("cubist: invalid measure")

	// ErrMalformedReference is returned when a join key reference does not
	// split into exactly table and column on the last dot.
	ErrMalformedReference = errors.New("cubist: malformed table.column reference")

	// ErrAmbiguousAlias is returned when two joins in one cube resolve to
	// the same effective detail name. Joining the same dimension table twice
	// requires distinguishing aliases.
	ErrAmbiguousAlias = errors.New("cubist: ambiguous join alias")

	// ErrUnknownDimensionTable is returned when a join's detail table cannot
	// be matched to any registered dimension, directly or through the cube's
	// mappings.
	ErrUnknownDimensionTable = errors.New("cubist: unknown dimension table")

	// ErrUnknownJoinMethod is returned for a join method outside
	// match/master/detail.
	ErrUnknownJoinMethod = errors.New("cubist: unknown join method")

	// ErrUnknownFunction is returned for an aggregate function outside the
	// supported set.
	ErrUnknownFunction = errors.New("cubist: unknown aggregate function")

	// ErrMeasureRequired is returned when a measure-bound function (sum,
	// min, max, avg, count_distinct) is declared without a measure.
	ErrMeasureRequired = errors.New("cubist: aggregate function requires a measure")

	// ErrUnknownMeasure is returned when an aggregate references a measure
	// that the cube does not declare.
	ErrUnknownMeasure = errors.New("cubist: unknown measure")

	// ErrModelInconsistency is returned for structural problems not covered
	// by a more specific kind: a dimension with no levels, a level key that
	// is not among the level's attributes.
	ErrModelInconsistency = errors.New("cubist: inconsistent model")

	// ErrUnknownHierarchy is returned when a dimension's default hierarchy
	// or a hierarchy level reference does not exist.
	ErrUnknownHierarchy = errors.New("cubist: unknown hierarchy")

	// ErrHierarchyDepth is returned when a hierarchy is asked for more
	// levels than it has.
	ErrHierarchyDepth = errors.New("cubist: depth exceeds hierarchy levels")
)

// IsDuplicateNameErr returns true if err is or wraps ErrDuplicateName.
func IsDuplicateNameErr(err error) bool {
	return errors.Is(err, ErrDuplicateName)
}

// IsUnknownTemplateErr returns true if err is or wraps ErrUnknownTemplate.
func IsUnknownTemplateErr(err error) bool {
	return errors.Is(err, ErrUnknownTemplate)
}

// IsCyclicTemplateErr returns true if err is or wraps ErrCyclicTemplate.
func IsCyclicTemplateErr(err error) bool {
	return errors.Is(err, ErrCyclicTemplate)
}

// IsUnknownDimensionErr returns true if err is or wraps ErrUnknownDimension.
func IsUnknownDimensionErr(err error) bool {
	return errors.Is(err, ErrUnknownDimension)
}

// IsAmbiguousAliasErr returns true if err is or wraps ErrAmbiguousAlias.
func IsAmbiguousAliasErr(err error) bool {
	return errors.Is(err, ErrAmbiguousAlias)
}

// IsMeasureRequiredErr returns true if err is or wraps ErrMeasureRequired.
func IsMeasureRequiredErr(err error) bool {
	return errors.Is(err, ErrMeasureRequired)
}
