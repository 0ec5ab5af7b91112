// Package render rasterizes color-coded model masks: per-pixel class IDs and
// correspondence color codes, drawn with approximate occlusion by painting
// faces back to front.
package render

// Background marks pixels not covered by any model.
const Background = -1

// CodeImage is a dense raster holding, per pixel, a class ID and the two
// correspondence code channels. Class defaults to Background.
type CodeImage struct {
	width   int
	height  int
	classes []int
	heights []int
	angles  []int
}

// NewCodeImage returns a raster of the given size with every pixel set to
// Background.
func NewCodeImage(width, height int) *CodeImage {
	classes := make([]int, width*height)
	for i := range classes {
		classes[i] = Background
	}
	return &CodeImage{
		width:   width,
		height:  height,
		classes: classes,
		heights: make([]int, width*height),
		angles:  make([]int, width*height),
	}
}

// Width returns the raster width in pixels.
func (ci *CodeImage) Width() int { return ci.width }

// Height returns the raster height in pixels.
func (ci *CodeImage) Height() int { return ci.height }

// In reports whether the pixel is inside the raster bounds.
func (ci *CodeImage) In(x, y int) bool {
	return x >= 0 && x < ci.width && y >= 0 && y < ci.height
}

// ClassAt returns the class ID at the pixel, Background if uncovered.
func (ci *CodeImage) ClassAt(x, y int) int {
	return ci.classes[y*ci.width+x]
}

// CodeAt returns the (height, angle) color code at the pixel.
func (ci *CodeImage) CodeAt(x, y int) (int, int) {
	idx := y*ci.width + x
	return ci.heights[idx], ci.angles[idx]
}

// Set paints the pixel with a class and color code. Out-of-bounds writes are
// dropped so face fills can be clipped by the raster edge.
func (ci *CodeImage) Set(x, y, class, height, angle int) {
	if !ci.In(x, y) {
		return
	}
	idx := y*ci.width + x
	ci.classes[idx] = class
	ci.heights[idx] = height
	ci.angles[idx] = angle
}

// ForegroundCount returns the number of pixels covered by any model.
func (ci *CodeImage) ForegroundCount() int {
	n := 0
	for _, c := range ci.classes {
		if c != Background {
			n++
		}
	}
	return n
}
