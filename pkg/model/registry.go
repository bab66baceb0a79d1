package model

import (
	"fmt"
	"slices"
)

// Registry holds canonical dimension definitions for one model build. It
// is scoped to the build, not process-wide, so multiple schema versions
// can coexist during reloads.
//
// Registration is additive and ordered: a template must be registered
// before any dimension that inherits from it. The registry is not safe
// for concurrent mutation; model construction is a single-threaded
// pipeline. Once a Model has been built, only the frozen Model is shared.
type Registry struct {
	byName map[string]*Dimension
	names  []string
}

// NewRegistry creates an empty dimension registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Dimension)}
}

// Register resolves a dimension spec and adds it to the registry.
//
// Template resolution is a two-step process: the template's already
// resolved levels are taken as the base snapshot, then the spec's own
// levels, when declared, entirely replace them. Only the absence of a
// levels declaration triggers inheritance; there is no field merge.
//
// Fails with ErrDuplicateName, ErrUnknownTemplate or ErrCyclicTemplate.
func (r *Registry) Register(spec DimensionSpec) (*Dimension, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("%w: dimension with empty name", ErrModelInconsistency)
	}
	if _, ok := r.byName[spec.Name]; ok {
		return nil, fmt.Errorf("%w: dimension %q", ErrDuplicateName, spec.Name)
	}

	var tmpl *Dimension
	if spec.Template != "" {
		if spec.Template == spec.Name {
			return nil, fmt.Errorf("%w: dimension %q references itself", ErrCyclicTemplate, spec.Name)
		}
		var ok bool
		tmpl, ok = r.byName[spec.Template]
		if !ok {
			return nil, fmt.Errorf("%w: %q referenced by dimension %q (templates resolve in declaration order)",
				ErrUnknownTemplate, spec.Template, spec.Name)
		}
	}

	var resolved []Level
	if tmpl != nil && len(spec.Levels) == 0 {
		// Materialize the base snapshot from the resolved template. The
		// template's levels are already fully defaulted, so inherited
		// chains stay consistent.
		resolved = slices.Clone(tmpl.levels)
	} else {
		var err error
		resolved, err = resolveLevels(spec.Name, spec.Levels)
		if err != nil {
			return nil, err
		}
	}
	dim := &Dimension{
		name:        spec.Name,
		levels:      resolved,
		label:       spec.Label,
		description: spec.Description,
	}
	if err := r.resolveHierarchies(dim, spec); err != nil {
		return nil, err
	}
	r.add(dim)
	return dim, nil
}

// RegisterAll registers specs in declaration order. When a template
// reference points forward into the same batch, it distinguishes a true
// cycle (reported as ErrCyclicTemplate) from a plain forward reference
// (reported as ErrUnknownTemplate). The whole batch fails on the first
// error: cubes depend on the complete dimension set.
func (r *Registry) RegisterAll(specs []DimensionSpec) error {
	byName := make(map[string]DimensionSpec, len(specs))
	for _, s := range specs {
		byName[s.Name] = s
	}
	for _, s := range specs {
		if _, err := r.Register(s); err != nil {
			if IsUnknownTemplateErr(err) {
				if cycle := templateCycle(s, byName); cycle != nil {
					return fmt.Errorf("%w: %s", ErrCyclicTemplate, formatTemplateCycle(cycle))
				}
			}
			return err
		}
	}
	return nil
}

// Dimension returns the resolved dimension with the given name.
func (r *Registry) Dimension(name string) (*Dimension, error) {
	dim, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDimension, name)
	}
	return dim, nil
}

// Has reports whether a dimension with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Names returns registered dimension names in registration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

func (r *Registry) add(dim *Dimension) {
	r.byName[dim.name] = dim
	r.names = append(r.names, dim.name)
}

// resolveHierarchies attaches declared hierarchies plus the implicit
// "default" hierarchy over all levels, and validates the default
// hierarchy reference.
func (r *Registry) resolveHierarchies(dim *Dimension, spec DimensionSpec) error {
	declared := make([]Hierarchy, 0, len(spec.Hierarchies))
	explicitDefault := false
	for _, hs := range spec.Hierarchies {
		if hs.Name == "default" {
			explicitDefault = true
		}
		h := Hierarchy{Name: hs.Name}
		for _, ln := range hs.Levels {
			lvl, ok := dim.Level(ln)
			if !ok {
				return fmt.Errorf("%w: hierarchy %q of dimension %q references unknown level %q",
					ErrUnknownHierarchy, hs.Name, dim.name, ln)
			}
			h.levels = append(h.levels, lvl)
		}
		if len(h.levels) == 0 {
			return fmt.Errorf("%w: hierarchy %q of dimension %q has no levels",
				ErrUnknownHierarchy, hs.Name, dim.name)
		}
		declared = append(declared, h)
	}

	// An explicit "default" replaces the implicit one; declared
	// hierarchies are kept either way.
	dim.hierarchies = declared
	if !explicitDefault {
		implicit := Hierarchy{Name: "default", levels: slices.Clone(dim.levels)}
		dim.hierarchies = append([]Hierarchy{implicit}, declared...)
	}

	dim.defaultHierarchy = spec.DefaultHierarchy
	if dim.defaultHierarchy == "" {
		dim.defaultHierarchy = "default"
	}
	if _, err := dim.Hierarchy(dim.defaultHierarchy); err != nil {
		return fmt.Errorf("%w: default hierarchy %q of dimension %q",
			ErrUnknownHierarchy, dim.defaultHierarchy, dim.name)
	}
	return nil
}

// resolveLevels applies level defaults: a level with no attributes gets a
// single attribute named after itself, the key defaults to the first
// attribute and the label attribute to the second (or the key when the
// level is flat). Level names must be unique within the dimension.
func resolveLevels(dimName string, specs []LevelSpec) ([]Level, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: dimension %q declares no levels", ErrModelInconsistency, dimName)
	}
	seen := make(map[string]bool, len(specs))
	levels := make([]Level, 0, len(specs))
	for _, ls := range specs {
		if seen[ls.Name] {
			return nil, fmt.Errorf("%w: level %q in dimension %q", ErrDuplicateName, ls.Name, dimName)
		}
		seen[ls.Name] = true

		attrs := ls.Attributes
		if len(attrs) == 0 {
			attrs = []string{ls.Name}
		}
		key := ls.Key
		if key == "" {
			key = attrs[0]
		} else if !slices.Contains(attrs, key) {
			return nil, fmt.Errorf("%w: key %q of level %q in dimension %q is not a level attribute",
				ErrModelInconsistency, key, ls.Name, dimName)
		}
		labelAttr := ls.LabelAttribute
		if labelAttr == "" {
			if len(attrs) > 1 {
				labelAttr = attrs[1]
			} else {
				labelAttr = key
			}
		}
		levels = append(levels, Level{
			Name:           ls.Name,
			Attributes:     slices.Clone(attrs),
			Key:            key,
			LabelAttribute: labelAttr,
		})
	}
	return levels, nil
}

// templateCycle walks the template chain of start through the batch specs
// and returns the chain when it loops back on itself, nil otherwise.
func templateCycle(start DimensionSpec, specs map[string]DimensionSpec) []string {
	chain := []string{start.Name}
	onChain := map[string]bool{start.Name: true}
	cur := start
	for cur.Template != "" {
		next, ok := specs[cur.Template]
		if !ok {
			return nil // dangling reference, not a cycle
		}
		chain = append(chain, next.Name)
		if onChain[next.Name] {
			return chain
		}
		onChain[next.Name] = true
		cur = next
	}
	return nil
}

func formatTemplateCycle(chain []string) string {
	s := ""
	for i, n := range chain {
		if i > 0 {
			s += " -> "
		}
		s += n
	}
	return s
}
