package model

import (
	"fmt"
	"slices"
)

// Dimension is a resolved, immutable dimension: an ordered level hierarchy
// plus any named hierarchies declared over it. Dimensions are owned by the
// Registry that resolved them; cubes hold read-only references.
type Dimension struct {
	name             string
	levels           []Level
	hierarchies      []Hierarchy
	defaultHierarchy string

	label       string
	description string
}

// Name returns the dimension's unique name.
func (d *Dimension) Name() string { return d.name }

// Label returns the human readable label, or the name when none was set.
func (d *Dimension) Label() string {
	if d.label == "" {
		return d.name
	}
	return d.label
}

// Description returns the human readable description.
func (d *Dimension) Description() string { return d.description }

// Levels returns the dimension's levels in roll-up order. The returned
// slice is a copy; mutating it does not affect the dimension.
func (d *Dimension) Levels() []Level {
	return slices.Clone(d.levels)
}

// LevelNames returns the level names in roll-up order.
func (d *Dimension) LevelNames() []string {
	names := make([]string, len(d.levels))
	for i, l := range d.levels {
		names[i] = l.Name
	}
	return names
}

// Level returns the level with the given name.
func (d *Dimension) Level(name string) (Level, bool) {
	for _, l := range d.levels {
		if l.Name == name {
			return l, true
		}
	}
	return Level{}, false
}

// IsFlat is true when the dimension has exactly one level.
func (d *Dimension) IsFlat() bool { return len(d.levels) == 1 }

// HasDetails is true when any level carries more than one attribute.
func (d *Dimension) HasDetails() bool {
	for _, l := range d.levels {
		if len(l.Attributes) > 1 {
			return true
		}
	}
	return false
}

// Hierarchies returns the dimension's hierarchies. Every dimension has at
// least the implicit "default" hierarchy over all levels.
func (d *Dimension) Hierarchies() []Hierarchy {
	return slices.Clone(d.hierarchies)
}

// Hierarchy returns the named hierarchy, or the default hierarchy when
// name is empty.
func (d *Dimension) Hierarchy(name string) (Hierarchy, error) {
	if name == "" {
		name = d.defaultHierarchy
	}
	for _, h := range d.hierarchies {
		if h.Name == name {
			return h, nil
		}
	}
	return Hierarchy{}, fmt.Errorf("%w: %q in dimension %q", ErrUnknownHierarchy, name, d.name)
}

// Level holds a resolved hierarchy level. Key is the grouping attribute,
// LabelAttribute the display attribute; both are always set.
type Level struct {
	Name           string
	Attributes     []string
	Key            string
	LabelAttribute string
}

// HasDetails is true when the level has more than one attribute.
func (l Level) HasDetails() bool { return len(l.Attributes) > 1 }

// Hierarchy is an ordered subset of a dimension's levels. It provides the
// drill-down order for queries.
type Hierarchy struct {
	Name   string
	levels []Level
}

// Levels returns the hierarchy's levels in drill-down order.
func (h Hierarchy) Levels() []Level { return slices.Clone(h.levels) }

// Len returns the number of levels.
func (h Hierarchy) Len() int { return len(h.levels) }

// NextLevel returns the level after the named one. Passing an empty name
// returns the first level. Returns false when the named level is last or
// not part of the hierarchy.
func (h Hierarchy) NextLevel(name string) (Level, bool) {
	if name == "" {
		if len(h.levels) == 0 {
			return Level{}, false
		}
		return h.levels[0], true
	}
	for i, l := range h.levels {
		if l.Name == name && i+1 < len(h.levels) {
			return h.levels[i+1], true
		}
	}
	return Level{}, false
}

// PreviousLevel returns the level before the named one, or false when the
// named level is first or not part of the hierarchy.
func (h Hierarchy) PreviousLevel(name string) (Level, bool) {
	for i, l := range h.levels {
		if l.Name == name && i > 0 {
			return h.levels[i-1], true
		}
	}
	return Level{}, false
}

// LevelsForDepth returns the first depth levels, extended by one when
// drilldown is set. Asking past the hierarchy's depth is an error.
func (h Hierarchy) LevelsForDepth(depth int, drilldown bool) ([]Level, error) {
	extend := 0
	if drilldown {
		extend = 1
	}
	if depth+extend > len(h.levels) {
		return nil, fmt.Errorf("%w: depth %d of %d in hierarchy %q (drilldown: %v)",
			ErrHierarchyDepth, depth, len(h.levels), h.Name, drilldown)
	}
	return slices.Clone(h.levels[:depth+extend]), nil
}

// RollUp shortens a drill-down path by one element, or up to the named
// level when level is non-empty. Rolling up past the path is an error.
func (h Hierarchy) RollUp(path []string, level string) ([]string, error) {
	if level == "" {
		if len(path) == 0 {
			return nil, nil
		}
		return slices.Clone(path[:len(path)-1]), nil
	}
	for i, l := range h.levels {
		if l.Name == level {
			if i+1 > len(path) {
				return nil, fmt.Errorf("%w: level %q is deeper than path of length %d",
					ErrHierarchyDepth, level, len(path))
			}
			return slices.Clone(path[:i+1]), nil
		}
	}
	return nil, fmt.Errorf("%w: %q in hierarchy %q", ErrUnknownHierarchy, level, h.Name)
}

// IsBase reports whether path is a base path: no further drill-down is
// possible.
func (h Hierarchy) IsBase(path []string) bool {
	return len(path) == len(h.levels)
}
