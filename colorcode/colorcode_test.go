package colorcode

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
)

// ringVertices places n vertices on a circle of the given radius at the given
// height, axis along Y.
func ringVertices(n int, radius, y float64) []r3.Vector {
	out := make([]r3.Vector, 0, n)
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		out = append(out, r3.Vector{X: radius * math.Sin(theta), Y: y, Z: radius * math.Cos(theta)})
	}
	return out
}

func cylinderVertices(rings, perRing int, radius, height float64) []r3.Vector {
	var out []r3.Vector
	for j := 0; j < rings; j++ {
		y := -height/2 + height*float64(j)/float64(rings-1)
		out = append(out, ringVertices(perRing, radius, y)...)
	}
	return out
}

func TestNewEncoderDegenerate(t *testing.T) {
	_, err := NewEncoder(nil, 0)
	test.That(t, err, test.ShouldNotBeNil)

	// coplanar model with zero height extent
	flat := ringVertices(8, 1, 0.5)
	_, err = NewEncoder(flat, 0)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, ErrDegenerateModel), test.ShouldBeTrue)

	// vertices stacked on the vertical axis have no angular spread
	axis := []r3.Vector{{Y: 0}, {Y: 1}, {Y: 2}}
	_, err = NewEncoder(axis, 0)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, ErrDegenerateModel), test.ShouldBeTrue)
}

func TestEncodeRanges(t *testing.T) {
	verts := cylinderVertices(6, 12, 0.5, 2)
	enc, err := NewEncoder(verts, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, enc.Resolution(), test.ShouldEqual, DefaultResolution)

	for _, v := range verts {
		h, a := enc.Encode(v)
		test.That(t, h, test.ShouldBeGreaterThanOrEqualTo, 0)
		test.That(t, h, test.ShouldBeLessThan, DefaultResolution)
		test.That(t, a, test.ShouldBeGreaterThanOrEqualTo, 0)
		test.That(t, a, test.ShouldBeLessThan, DefaultResolution)
	}

	// the bottom of the model maps to height code 0, the top saturates at R-1
	h, _ := enc.Encode(r3.Vector{X: 0.5, Y: -1})
	test.That(t, h, test.ShouldEqual, 0)
	h, _ = enc.Encode(r3.Vector{X: 0.5, Y: 1})
	test.That(t, h, test.ShouldEqual, DefaultResolution-1)

	// angle 0 (+Z direction) sits mid-range, the wrap boundary at +pi
	// comes back around to code 0
	_, a := enc.Encode(r3.Vector{Z: 0.5, Y: 0})
	test.That(t, a, test.ShouldEqual, DefaultResolution/2)
	_, a = enc.Encode(r3.Vector{Z: -0.5, Y: 0})
	test.That(t, a, test.ShouldEqual, 0)
}

func TestBuildLookupRoundTrip(t *testing.T) {
	verts := cylinderVertices(8, 16, 0.5, 1)
	lookup, err := BuildLookup(verts, 0)
	test.That(t, err, test.ShouldBeNil)
	enc, err := NewEncoder(verts, 0)
	test.That(t, err, test.ShouldBeNil)

	for _, v := range verts {
		h, a := enc.Encode(v)
		got, ok := lookup.At(h, a)
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, got.Sub(v).Norm(), test.ShouldBeLessThan, 1e-6)
	}
}

func TestBuildLookupFullCoverage(t *testing.T) {
	// three samples triangulate a single sliver of code space; the rest of
	// the grid must still resolve through the nearest-sample fallback
	verts := []r3.Vector{
		{X: 0.5, Y: -1, Z: 0},
		{X: -0.3, Y: 0.2, Z: 0.4},
		{X: 0, Y: 1, Z: -0.5},
	}
	lookup, err := BuildLookup(verts, 64)
	test.That(t, err, test.ShouldBeNil)
	for h := 0; h < 64; h++ {
		for a := 0; a < 64; a++ {
			_, ok := lookup.At(h, a)
			test.That(t, ok, test.ShouldBeTrue)
		}
	}
}

func TestLookupAtBounds(t *testing.T) {
	verts := cylinderVertices(4, 8, 0.5, 1)
	lookup, err := BuildLookup(verts, 32)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, lookup.Resolution(), test.ShouldEqual, 32)

	for _, code := range [][2]int{{-1, 0}, {0, -1}, {32, 0}, {0, 32}} {
		_, ok := lookup.At(code[0], code[1])
		test.That(t, ok, test.ShouldBeFalse)
	}
}

func TestBuildLookupDegenerate(t *testing.T) {
	flat := ringVertices(8, 1, 0)
	_, err := BuildLookup(flat, 0)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, ErrDegenerateModel), test.ShouldBeTrue)
}

func TestBuildLookupInterpolates(t *testing.T) {
	// two stacked rings: a code between two ring samples at the same angle
	// should interpolate a point between the rings
	verts := cylinderVertices(2, 16, 0.5, 1)
	res := 64
	lookup, err := BuildLookup(verts, res)
	test.That(t, err, test.ShouldBeNil)

	enc, err := NewEncoder(verts, res)
	test.That(t, err, test.ShouldBeNil)
	hBot, a := enc.Encode(r3.Vector{Z: 0.5, Y: -0.5})
	hTop, aTop := enc.Encode(r3.Vector{Z: 0.5, Y: 0.5})
	test.That(t, a, test.ShouldEqual, aTop)

	mid, ok := lookup.At((hBot+hTop)/2, a)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, mid.Z, test.ShouldAlmostEqual, 0.5, 0.05)
	test.That(t, math.Abs(mid.Y), test.ShouldBeLessThan, 0.05)
}
