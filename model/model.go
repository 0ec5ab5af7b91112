// Package model defines rigid 3D mesh models and the registry that owns them
// together with their cached color lookup tables.
package model

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Model is a rigid object: an ordered vertex list and an ordered list of
// triangular faces indexing into it. Models are immutable once registered.
type Model struct {
	ID       int
	Name     string
	Vertices []r3.Vector
	Faces    [][3]int
}

// Validate checks that the model has geometry and that every face references
// valid vertices.
func (m *Model) Validate() error {
	if len(m.Vertices) == 0 {
		return errors.Errorf("model %q has no vertices", m.Name)
	}
	if len(m.Faces) == 0 {
		return errors.Errorf("model %q has no faces", m.Name)
	}
	for i, f := range m.Faces {
		for _, vi := range f {
			if vi < 0 || vi >= len(m.Vertices) {
				return errors.Errorf("model %q face %d references vertex %d, have %d vertices",
					m.Name, i, vi, len(m.Vertices))
			}
		}
	}
	return nil
}

// FaceMidpoints returns the midpoint of every face in model-local coordinates.
func (m *Model) FaceMidpoints() []r3.Vector {
	mids := make([]r3.Vector, len(m.Faces))
	for i, f := range m.Faces {
		sum := m.Vertices[f[0]].Add(m.Vertices[f[1]]).Add(m.Vertices[f[2]])
		mids[i] = sum.Mul(1. / 3.)
	}
	return mids
}
