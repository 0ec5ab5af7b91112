// Package colorcode implements the correspondence color encoding that ties
// every point on a model surface to a discrete (height, angle) code, and the
// inverse lookup tables that map codes back to 3D point estimates.
package colorcode

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// DefaultResolution is the number of discrete values per code channel.
const DefaultResolution = 256

// minExtent is the smallest vertical extent considered non-degenerate.
const minExtent = 1e-12

// ErrDegenerateModel is returned when a model's geometry spans no vertical or
// angular range, making the color encoding non-invertible.
var ErrDegenerateModel = errors.New("model geometry is degenerate for color encoding")

// ErrUnresolvedColor is returned when a color code cell cannot be assigned a
// 3D point estimate by either interpolation pass.
var ErrUnresolvedColor = errors.New("color code has no 3D point estimate")

// Encoder maps model-local 3D points to discrete (height, angle) color codes.
// Height codes are relative to the model's own vertical extent; angle codes
// cover the full [-pi, pi] azimuthal range.
type Encoder struct {
	resolution int
	minHeight  float64
	maxHeight  float64
}

// NewEncoder builds an encoder for the given model vertices. A resolution of
// zero or less selects DefaultResolution. Models with no vertical extent or no
// angular spread are rejected with ErrDegenerateModel: encoding them would
// collapse every surface point onto a single code.
func NewEncoder(vertices []r3.Vector, resolution int) (*Encoder, error) {
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	if len(vertices) == 0 {
		return nil, errors.New("cannot build an encoder from zero vertices")
	}
	minH, maxH := vertices[0].Y, vertices[0].Y
	for _, v := range vertices[1:] {
		minH = math.Min(minH, v.Y)
		maxH = math.Max(maxH, v.Y)
	}
	if maxH-minH < minExtent {
		return nil, errors.Wrap(ErrDegenerateModel, "zero vertical extent")
	}
	enc := &Encoder{resolution: resolution, minHeight: minH, maxHeight: maxH}

	firstAngle := enc.angleCode(vertices[0])
	angularSpread := false
	for _, v := range vertices[1:] {
		if enc.angleCode(v) != firstAngle {
			angularSpread = true
			break
		}
	}
	if !angularSpread {
		return nil, errors.Wrap(ErrDegenerateModel, "zero angular extent")
	}
	return enc, nil
}

// Resolution returns the number of discrete values per code channel.
func (e *Encoder) Resolution() int {
	return e.resolution
}

// Encode returns the (height, angle) color code of a model-local point.
// Height saturates at the top of the model; the angle channel wraps, so the
// code at +pi is taken modulo the resolution back to 0.
func (e *Encoder) Encode(p r3.Vector) (int, int) {
	return e.heightCode(p), e.angleCode(p)
}

func (e *Encoder) heightCode(p r3.Vector) int {
	norm := (p.Y - e.minHeight) / (e.maxHeight - e.minHeight)
	code := int(norm * float64(e.resolution))
	if code < 0 {
		code = 0
	}
	if code >= e.resolution {
		code = e.resolution - 1
	}
	return code
}

func (e *Encoder) angleCode(p r3.Vector) int {
	norm := (math.Atan2(p.X, p.Z) + math.Pi) / (2 * math.Pi)
	code := int(norm*float64(e.resolution)) % e.resolution
	if code < 0 {
		code += e.resolution
	}
	return code
}
