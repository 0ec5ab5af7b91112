package colorcode

import (
	"github.com/fogleman/delaunay"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// barycentricEps tolerates points sitting exactly on a triangle edge.
const barycentricEps = 1e-9

// Lookup is a dense resolution x resolution grid mapping a (height, angle)
// color code to the best 3D point estimate on the model surface. It is built
// once per model and never mutated afterwards.
type Lookup struct {
	resolution int
	points     []r3.Vector
	known      []bool
}

// Resolution returns the grid resolution per code channel.
func (l *Lookup) Resolution() int {
	return l.resolution
}

// At returns the 3D point estimate for the given (height, angle) code. The
// second return is false for out-of-range codes.
func (l *Lookup) At(height, angle int) (r3.Vector, bool) {
	if height < 0 || height >= l.resolution || angle < 0 || angle >= l.resolution {
		return r3.Vector{}, false
	}
	idx := height*l.resolution + angle
	if !l.known[idx] {
		return r3.Vector{}, false
	}
	return l.points[idx], true
}

// codeSample is one scattered interpolation sample: a code-space coordinate
// paired with the model-local 3D point that produced it.
type codeSample struct {
	height, angle int
	point         r3.Vector
}

// BuildLookup encodes every vertex and inverts the encoding over the full
// code grid: cells inside the convex hull of the vertex codes are filled by
// linear interpolation over a Delaunay triangulation of the samples, and
// every remaining cell falls back to its nearest sample. Vertices are sparse
// in code space, so the two passes together are what make the whole grid
// resolvable.
func BuildLookup(vertices []r3.Vector, resolution int) (*Lookup, error) {
	enc, err := NewEncoder(vertices, resolution)
	if err != nil {
		return nil, err
	}
	res := enc.Resolution()

	// several vertices can share a cell after discretization; the first
	// occurrence wins so rebuilds are deterministic
	samples := make([]codeSample, 0, len(vertices))
	seen := make(map[[2]int]bool, len(vertices))
	for _, v := range vertices {
		h, a := enc.Encode(v)
		if seen[[2]int{h, a}] {
			continue
		}
		seen[[2]int{h, a}] = true
		samples = append(samples, codeSample{height: h, angle: a, point: v})
	}

	lookup := &Lookup{
		resolution: res,
		points:     make([]r3.Vector, res*res),
		known:      make([]bool, res*res),
	}

	if len(samples) >= 3 {
		if err := fillLinear(lookup, samples); err != nil {
			return nil, err
		}
	}
	fillNearest(lookup, samples)

	for _, k := range lookup.known {
		if !k {
			return nil, errors.Wrapf(ErrUnresolvedColor,
				"lookup build left unresolved cells from %d samples", len(samples))
		}
	}
	return lookup, nil
}

// fillLinear rasterizes each Delaunay triangle of the sample codes over the
// grid, filling covered cells with the barycentric blend of the sample points.
func fillLinear(lookup *Lookup, samples []codeSample) error {
	pts := make([]delaunay.Point, len(samples))
	for i, s := range samples {
		pts[i] = delaunay.Point{X: float64(s.height), Y: float64(s.angle)}
	}
	tri, err := delaunay.Triangulate(pts)
	if err != nil {
		// collinear sample sets have no triangulation; the nearest pass
		// covers the whole grid instead
		return nil
	}

	res := lookup.resolution
	for t := 0; t < len(tri.Triangles); t += 3 {
		i0, i1, i2 := tri.Triangles[t], tri.Triangles[t+1], tri.Triangles[t+2]
		p0, p1, p2 := pts[i0], pts[i1], pts[i2]

		denom := (p1.Y-p2.Y)*(p0.X-p2.X) + (p2.X-p1.X)*(p0.Y-p2.Y)
		if denom == 0 {
			continue
		}

		minX := clampToGrid(int(min3(p0.X, p1.X, p2.X)), res)
		maxX := clampToGrid(int(max3(p0.X, p1.X, p2.X))+1, res)
		minY := clampToGrid(int(min3(p0.Y, p1.Y, p2.Y)), res)
		maxY := clampToGrid(int(max3(p0.Y, p1.Y, p2.Y))+1, res)

		for h := minX; h <= maxX; h++ {
			for a := minY; a <= maxY; a++ {
				x, y := float64(h), float64(a)
				w0 := ((p1.Y-p2.Y)*(x-p2.X) + (p2.X-p1.X)*(y-p2.Y)) / denom
				w1 := ((p2.Y-p0.Y)*(x-p2.X) + (p0.X-p2.X)*(y-p2.Y)) / denom
				w2 := 1 - w0 - w1
				if w0 < -barycentricEps || w1 < -barycentricEps || w2 < -barycentricEps {
					continue
				}
				idx := h*res + a
				if lookup.known[idx] {
					continue
				}
				v0, v1, v2 := samples[i0].point, samples[i1].point, samples[i2].point
				lookup.points[idx] = r3.Vector{
					X: w0*v0.X + w1*v1.X + w2*v2.X,
					Y: w0*v0.Y + w1*v1.Y + w2*v2.Y,
					Z: w0*v0.Z + w1*v1.Z + w2*v2.Z,
				}
				lookup.known[idx] = true
			}
		}
	}
	return nil
}

// fillNearest assigns every still-unknown cell the point of its closest
// sample in code space. Ties go to the earliest sample.
func fillNearest(lookup *Lookup, samples []codeSample) {
	res := lookup.resolution
	for h := 0; h < res; h++ {
		for a := 0; a < res; a++ {
			idx := h*res + a
			if lookup.known[idx] {
				continue
			}
			best := -1
			bestDist := 0
			for i, s := range samples {
				dh := s.height - h
				da := s.angle - a
				d := dh*dh + da*da
				if best == -1 || d < bestDist {
					best = i
					bestDist = d
				}
			}
			if best >= 0 {
				lookup.points[idx] = samples[best].point
				lookup.known[idx] = true
			}
		}
	}
}

func clampToGrid(x, res int) int {
	if x < 0 {
		return 0
	}
	if x > res-1 {
		return res - 1
	}
	return x
}

func min3(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func max3(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
