package render

import (
	"image"
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/poselab/densecorr/colorcode"
	"github.com/poselab/densecorr/model"
	"github.com/poselab/densecorr/spatialmath"
	"github.com/poselab/densecorr/transform"
	"github.com/poselab/densecorr/utils"
)

// faceColor is the fill assigned to one projected face.
type faceColor struct {
	class  int
	height int
	angle  int
}

// RenderColorMask rasterizes the posed model into the image as a
// correspondence mask: every covered pixel receives the model's class ID and
// the color code of the face it shows.
func RenderColorMask(
	img *CodeImage,
	m *model.Model,
	pose *spatialmath.Pose,
	enc *colorcode.Encoder,
	intrinsics *transform.PinholeCameraIntrinsics,
) error {
	if enc == nil {
		return errors.New("color mask rendering requires an encoder")
	}
	mids := m.FaceMidpoints()
	return renderFaces(img, m, pose, intrinsics, func(face int) faceColor {
		h, a := enc.Encode(mids[face])
		return faceColor{class: m.ID, height: h, angle: a}
	})
}

// RenderClassMask rasterizes the posed model into the image as a single
// channel class mask; the color code channels are left zeroed.
func RenderClassMask(
	img *CodeImage,
	m *model.Model,
	pose *spatialmath.Pose,
	intrinsics *transform.PinholeCameraIntrinsics,
) error {
	return renderFaces(img, m, pose, intrinsics, func(int) faceColor {
		return faceColor{class: m.ID}
	})
}

// Placement is one model instance in a scene.
type Placement struct {
	Model *model.Model
	Pose  *spatialmath.Pose
}

// RenderScene draws several model instances into one correspondence mask.
// Instances are drawn in decreasing camera-depth order so that, between
// objects, nearer ones overwrite farther ones; the per-object face ordering
// handles occlusion within each instance.
func RenderScene(
	img *CodeImage,
	placements []Placement,
	reg *model.Registry,
	intrinsics *transform.PinholeCameraIntrinsics,
) error {
	ordered := make([]Placement, len(placements))
	copy(ordered, placements)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Pose.Translation.Z > ordered[j].Pose.Translation.Z
	})
	for _, p := range ordered {
		enc, err := reg.Encoder(p.Model.ID)
		if err != nil {
			return err
		}
		if err := RenderColorMask(img, p.Model, p.Pose, enc, intrinsics); err != nil {
			return err
		}
	}
	return nil
}

// renderFaces transforms and projects the model, then paints its faces in
// decreasing camera-space depth order (farthest first) so nearer faces
// overwrite farther ones. This approximates occlusion without a depth buffer
// and holds for convex, non-self-occluding models.
func renderFaces(
	img *CodeImage,
	m *model.Model,
	pose *spatialmath.Pose,
	intrinsics *transform.PinholeCameraIntrinsics,
	colorFor func(face int) faceColor,
) error {
	if img == nil {
		return errors.New("cannot render into a nil image")
	}
	if err := m.Validate(); err != nil {
		return err
	}
	if err := intrinsics.CheckValid(); err != nil {
		return err
	}

	camVerts := pose.TransformPoints(m.Vertices)
	pixels := make([]image.Point, len(camVerts))
	for i, v := range camVerts {
		px, py := intrinsics.PointToPixel(v.X, v.Y, v.Z)
		pixels[i] = image.Point{X: int(px), Y: int(py)}
	}

	depths := make([]float64, len(m.Faces))
	for i, f := range m.Faces {
		depths[i] = (camVerts[f[0]].Z + camVerts[f[1]].Z + camVerts[f[2]].Z) / 3
	}
	order := make([]int, len(m.Faces))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return depths[order[i]] > depths[order[j]] })

	for _, fi := range order {
		f := m.Faces[fi]
		// faces reaching behind the camera have no meaningful projection
		if camVerts[f[0]].Z <= 0 || camVerts[f[1]].Z <= 0 || camVerts[f[2]].Z <= 0 {
			continue
		}
		c := colorFor(fi)
		fillTriangle(img, pixels[f[0]], pixels[f[1]], pixels[f[2]], c)
	}
	return nil
}

// fillTriangle paints every raster pixel covered by the triangle, edges
// included, clipped to the image bounds.
func fillTriangle(img *CodeImage, p0, p1, p2 image.Point, c faceColor) {
	area := (p1.X-p0.X)*(p2.Y-p0.Y) - (p1.Y-p0.Y)*(p2.X-p0.X)
	if area == 0 {
		// degenerate projection, covers at most a line of pixels
		drawSegment(img, p0, p1, c)
		drawSegment(img, p1, p2, c)
		return
	}
	sign := 1
	if area < 0 {
		sign = -1
	}

	minX := utils.MaxInt(utils.MinInt(p0.X, utils.MinInt(p1.X, p2.X)), 0)
	maxX := utils.MinInt(utils.MaxInt(p0.X, utils.MaxInt(p1.X, p2.X)), img.Width()-1)
	minY := utils.MaxInt(utils.MinInt(p0.Y, utils.MinInt(p1.Y, p2.Y)), 0)
	maxY := utils.MinInt(utils.MaxInt(p0.Y, utils.MaxInt(p1.Y, p2.Y)), img.Height()-1)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			w0 := sign * ((p1.X-p0.X)*(y-p0.Y) - (p1.Y-p0.Y)*(x-p0.X))
			w1 := sign * ((p2.X-p1.X)*(y-p1.Y) - (p2.Y-p1.Y)*(x-p1.X))
			w2 := sign * ((p0.X-p2.X)*(y-p2.Y) - (p0.Y-p2.Y)*(x-p2.X))
			if w0 >= 0 && w1 >= 0 && w2 >= 0 {
				img.Set(x, y, c.class, c.height, c.angle)
			}
		}
	}
}

// drawSegment paints the raster pixels along a line segment.
func drawSegment(img *CodeImage, p0, p1 image.Point, c faceColor) {
	steps := utils.MaxInt(utils.MaxInt(abs(p1.X-p0.X), abs(p1.Y-p0.Y)), 1)
	for s := 0; s <= steps; s++ {
		t := float64(s) / float64(steps)
		x := int(math.Round(float64(p0.X) + t*float64(p1.X-p0.X)))
		y := int(math.Round(float64(p0.Y) + t*float64(p1.Y-p0.Y)))
		img.Set(x, y, c.class, c.height, c.angle)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
