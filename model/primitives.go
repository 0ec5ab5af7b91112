package model

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// NewCylinderModel builds an open cylinder mesh of the given radius and
// height, centered at the origin with its axis along Y. radialSegments is the
// number of vertices per ring, heightSegments the number of rings.
func NewCylinderModel(id int, name string, radius, height float64, radialSegments, heightSegments int) *Model {
	if name == "" {
		name = fmt.Sprintf("cylinder-%d", id)
	}
	vertices := make([]r3.Vector, 0, radialSegments*heightSegments)
	for j := 0; j < heightSegments; j++ {
		y := -height/2 + height*float64(j)/float64(heightSegments-1)
		for i := 0; i < radialSegments; i++ {
			theta := 2 * math.Pi * float64(i) / float64(radialSegments)
			vertices = append(vertices, r3.Vector{
				X: radius * math.Sin(theta),
				Y: y,
				Z: radius * math.Cos(theta),
			})
		}
	}
	faces := make([][3]int, 0, 2*radialSegments*(heightSegments-1))
	for j := 0; j < heightSegments-1; j++ {
		for i := 0; i < radialSegments; i++ {
			a := j*radialSegments + i
			b := j*radialSegments + (i+1)%radialSegments
			c := a + radialSegments
			d := b + radialSegments
			faces = append(faces, [3]int{a, b, c}, [3]int{b, d, c})
		}
	}
	return &Model{ID: id, Name: name, Vertices: vertices, Faces: faces}
}

// NewBoxModel builds a closed axis-aligned box mesh of the given dimensions,
// centered at the origin.
func NewBoxModel(id int, name string, dims r3.Vector) *Model {
	if name == "" {
		name = fmt.Sprintf("box-%d", id)
	}
	hx, hy, hz := dims.X/2, dims.Y/2, dims.Z/2
	vertices := []r3.Vector{
		{X: -hx, Y: -hy, Z: -hz},
		{X: hx, Y: -hy, Z: -hz},
		{X: hx, Y: hy, Z: -hz},
		{X: -hx, Y: hy, Z: -hz},
		{X: -hx, Y: -hy, Z: hz},
		{X: hx, Y: -hy, Z: hz},
		{X: hx, Y: hy, Z: hz},
		{X: -hx, Y: hy, Z: hz},
	}
	faces := [][3]int{
		{0, 1, 2}, {0, 2, 3}, // back
		{4, 6, 5}, {4, 7, 6}, // front
		{0, 4, 5}, {0, 5, 1}, // bottom
		{3, 2, 6}, {3, 6, 7}, // top
		{0, 3, 7}, {0, 7, 4}, // left
		{1, 5, 6}, {1, 6, 2}, // right
	}
	return &Model{ID: id, Name: name, Vertices: vertices, Faces: faces}
}
