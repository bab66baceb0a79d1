package model

import (
	"errors"
	"fmt"
	"slices"
	"sync/atomic"
)

// Model is a frozen multidimensional model: the complete dimension set
// plus all successfully built cubes. It is safe for unsynchronized
// concurrent reads; nothing is mutable after build.
type Model struct {
	name      string
	registry  *Registry
	cubes     map[string]*Cube
	cubeNames []string
}

// BuildModel runs the one-shot build pipeline over a document: all
// dimensions are registered first (any dimension failure aborts the whole
// build, since every cube depends on the full registry), then cubes are
// built in declaration order.
//
// By default any cube failure fails the build. With opts.Lenient, invalid
// cubes are skipped and their errors joined into the returned error while
// the valid siblings are kept: callers get both a usable Model and the
// reasons parts of the document were rejected.
func BuildModel(doc Document, opts BuildOptions) (*Model, error) {
	reg := NewRegistry()
	if err := reg.RegisterAll(doc.Dimensions); err != nil {
		return nil, err
	}

	m := &Model{
		name:     doc.Name,
		registry: reg,
		cubes:    make(map[string]*Cube, len(doc.Cubes)),
	}

	var cubeErrs []error
	for _, cs := range doc.Cubes {
		if _, ok := m.cubes[cs.Name]; ok {
			err := fmt.Errorf("%w: cube %q", ErrDuplicateName, cs.Name)
			if !opts.Lenient {
				return nil, err
			}
			cubeErrs = append(cubeErrs, err)
			continue
		}
		cube, err := BuildCube(cs, reg, opts)
		if err != nil {
			if !opts.Lenient {
				return nil, err
			}
			cubeErrs = append(cubeErrs, err)
			continue
		}
		m.cubes[cube.name] = cube
		m.cubeNames = append(m.cubeNames, cube.name)
	}

	if len(cubeErrs) > 0 {
		return m, errors.Join(cubeErrs...)
	}
	return m, nil
}

// Name returns the model's name, possibly empty.
func (m *Model) Name() string { return m.name }

// CubeNames returns the built cube names in declaration order.
func (m *Model) CubeNames() []string {
	return slices.Clone(m.cubeNames)
}

// Cube returns the built cube with the given name.
func (m *Model) Cube(name string) (*Cube, error) {
	c, ok := m.cubes[name]
	if !ok {
		return nil, fmt.Errorf("%w: no such cube %q", ErrModelInconsistency, name)
	}
	return c, nil
}

// DimensionNames returns the registered dimension names in declaration
// order.
func (m *Model) DimensionNames() []string {
	return m.registry.Names()
}

// Dimension returns the resolved dimension with the given name.
func (m *Model) Dimension(name string) (*Dimension, error) {
	return m.registry.Dimension(name)
}

// Holder publishes the active model to concurrent readers. Reloads build
// a fresh Model and Swap it in as a unit; readers never observe a
// half-updated model.
type Holder struct {
	p atomic.Pointer[Model]
}

// NewHolder creates a holder with an initial model, which may be nil.
func NewHolder(m *Model) *Holder {
	h := &Holder{}
	if m != nil {
		h.p.Store(m)
	}
	return h
}

// Current returns the active model, or nil when none has been published.
func (h *Holder) Current() *Model {
	return h.p.Load()
}

// Swap atomically replaces the active model and returns the previous one.
func (h *Holder) Swap(m *Model) *Model {
	return h.p.Swap(m)
}
