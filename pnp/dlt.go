package pnp

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/poselab/densecorr/spatialmath"
	"github.com/poselab/densecorr/transform"
)

// Correspondence pairs a model-local 3D point with the 2D pixel it was
// observed at.
type Correspondence struct {
	Point r3.Vector
	Pixel r2.Point
}

// minDLTPoints is the smallest correspondence set the direct linear transform
// can solve: twelve projection unknowns, two equations per point.
const minDLTPoints = 6

// estimatePoseDLT solves for the pose from 3D-2D correspondences with the
// direct linear transform: the null space of the 2n x 12 projection system
// gives the projection matrix, the known intrinsics are stripped off, and the
// rotation block is projected onto the closest proper rotation.
func estimatePoseDLT(
	corrs []Correspondence,
	intrinsics *transform.PinholeCameraIntrinsics,
) (*spatialmath.Pose, error) {
	if len(corrs) < minDLTPoints {
		return nil, errors.Errorf("pose estimation needs at least %d correspondences, got %d", minDLTPoints, len(corrs))
	}

	a := mat.NewDense(2*len(corrs), 12, nil)
	for i, c := range corrs {
		x, y, z := c.Point.X, c.Point.Y, c.Point.Z
		u, v := c.Pixel.X, c.Pixel.Y
		a.SetRow(2*i, []float64{
			x, y, z, 1,
			0, 0, 0, 0,
			-u * x, -u * y, -u * z, -u,
		})
		a.SetRow(2*i+1, []float64{
			0, 0, 0, 0,
			x, y, z, 1,
			-v * x, -v * y, -v * z, -v,
		})
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, errors.New("SVD factorization of the projection system failed")
	}
	var v mat.Dense
	svd.VTo(&v)
	_, cols := v.Dims()
	proj := mat.NewDense(3, 4, nil)
	for i := 0; i < 12; i++ {
		proj.Set(i/4, i%4, v.At(i, cols-1))
	}

	// strip the intrinsics: K^-1 * P = scale * [R | t]
	var m mat.Dense
	m.Mul(intrinsics.GetInverseCameraMatrix(), proj)
	rotBlock := mat.DenseCopyOf(m.Slice(0, 3, 0, 3))
	if mat.Det(rotBlock) < 0 {
		// the null vector is defined up to sign; only one sign admits a
		// proper rotation
		m.Scale(-1, &m)
		rotBlock.Scale(-1, rotBlock)
	}

	var rotSVD mat.SVD
	if ok := rotSVD.Factorize(rotBlock, mat.SVDFull); !ok {
		return nil, errors.New("SVD factorization of the rotation block failed")
	}
	singular := rotSVD.Values(nil)
	scale := (singular[0] + singular[1] + singular[2]) / 3
	if scale == 0 {
		return nil, errors.New("degenerate projection matrix with zero scale")
	}

	rotation, err := spatialmath.OrthonormalizeRotation(rotBlock)
	if err != nil {
		return nil, err
	}
	translation := r3.Vector{
		X: m.At(0, 3) / scale,
		Y: m.At(1, 3) / scale,
		Z: m.At(2, 3) / scale,
	}
	return spatialmath.NewPose(rotation, translation), nil
}

// reprojectionError returns the pixel distance between the observed pixel and
// the correspondence's 3D point reprojected under the pose. Points landing
// behind the camera get an infinite error.
func reprojectionError(
	pose *spatialmath.Pose,
	c Correspondence,
	intrinsics *transform.PinholeCameraIntrinsics,
) (float64, bool) {
	camPt := pose.TransformPoint(c.Point)
	if camPt.Z <= 0 {
		return 0, false
	}
	projected := intrinsics.ProjectPoint(camPt)
	return projected.Sub(c.Pixel).Norm(), true
}
