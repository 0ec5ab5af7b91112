package spatialmath

import (
	"github.com/golang/geo/r3"
)

// Pose represents the position of a rigid object in camera coordinates:
// a rotation followed by a translation.
type Pose struct {
	Rotation    *RotationMatrix
	Translation r3.Vector
}

// NewZeroPose returns a pose with no rotation and no translation.
func NewZeroPose() *Pose {
	return &Pose{Rotation: NewZeroRotation()}
}

// NewPose creates a pose from a rotation and a translation.
func NewPose(rotation *RotationMatrix, translation r3.Vector) *Pose {
	return &Pose{Rotation: rotation, Translation: translation}
}

// TransformPoint moves a point from the object frame into the camera frame.
func (p *Pose) TransformPoint(pt r3.Vector) r3.Vector {
	return p.Rotation.Apply(pt).Add(p.Translation)
}

// TransformPoints moves every point from the object frame into the camera frame.
func (p *Pose) TransformPoints(pts []r3.Vector) []r3.Vector {
	out := make([]r3.Vector, len(pts))
	for i, pt := range pts {
		out[i] = p.TransformPoint(pt)
	}
	return out
}

// PoseAlmostEqual will return a bool describing whether two poses are
// approximately the same: the angle between the rotations is below angTol
// radians and the translations are within transTol of each other.
func PoseAlmostEqual(a, b *Pose, angTol, transTol float64) bool {
	if a.Rotation.AngleBetween(b.Rotation) > angTol {
		return false
	}
	return a.Translation.Sub(b.Translation).Norm() <= transTol
}
