// Package spatialmath defines the rotation and pose primitives used for
// rigid object pose recovery.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// defaultOrthonormalityTol is the tolerance used when deciding whether a
// matrix is a proper rotation.
const defaultOrthonormalityTol = 1e-6

// RotationMatrix is a 3x3 matrix in row major order that represents a
// rotation in 3D Euclidean space.
type RotationMatrix struct {
	mat [9]float64
}

// NewRotationMatrix creates a rotation matrix from the given row major slice.
func NewRotationMatrix(m []float64) (*RotationMatrix, error) {
	if len(m) != 9 {
		return nil, errors.Errorf("input slice has %d elements, need exactly 9", len(m))
	}
	rmat := [9]float64{m[0], m[1], m[2], m[3], m[4], m[5], m[6], m[7], m[8]}
	return &RotationMatrix{rmat}, nil
}

// NewZeroRotation returns the identity rotation.
func NewZeroRotation() *RotationMatrix {
	return &RotationMatrix{[9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}}
}

// At returns the float corresponding to the element at the given row and column.
func (rm *RotationMatrix) At(row, col int) float64 {
	return rm.mat[3*row+col]
}

// Row returns the a vector representing the given row.
func (rm *RotationMatrix) Row(row int) r3.Vector {
	return r3.Vector{X: rm.mat[3*row], Y: rm.mat[3*row+1], Z: rm.mat[3*row+2]}
}

// Col returns the a vector representing the given column.
func (rm *RotationMatrix) Col(col int) r3.Vector {
	return r3.Vector{X: rm.mat[col], Y: rm.mat[3+col], Z: rm.mat[6+col]}
}

// Apply rotates the given vector.
func (rm *RotationMatrix) Apply(v r3.Vector) r3.Vector {
	return r3.Vector{
		X: rm.Row(0).Dot(v),
		Y: rm.Row(1).Dot(v),
		Z: rm.Row(2).Dot(v),
	}
}

// Transpose returns the transpose of the rotation matrix, which for a proper
// rotation is also its inverse.
func (rm *RotationMatrix) Transpose() *RotationMatrix {
	m := rm.mat
	return &RotationMatrix{[9]float64{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}}
}

// Det returns the determinant of the matrix.
func (rm *RotationMatrix) Det() float64 {
	m := rm.mat
	return m[0]*(m[4]*m[8]-m[5]*m[7]) -
		m[1]*(m[3]*m[8]-m[5]*m[6]) +
		m[2]*(m[3]*m[7]-m[4]*m[6])
}

// IsOrthonormal checks that the matrix is a proper rotation, i.e. its rows
// are orthonormal and its determinant is +1, within the given tolerance.
func (rm *RotationMatrix) IsOrthonormal(tol float64) bool {
	if tol <= 0 {
		tol = defaultOrthonormalityTol
	}
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			dot := rm.Row(i).Dot(rm.Row(j))
			want := 0.
			if i == j {
				want = 1.
			}
			if math.Abs(dot-want) > tol {
				return false
			}
		}
	}
	return math.Abs(rm.Det()-1) <= tol
}

// Quaternion returns the unit quaternion corresponding to the rotation.
func (rm *RotationMatrix) Quaternion() quat.Number {
	m := rm.mat
	var q quat.Number

	// Shepperd's method for the numerically stable branch selection
	tr := m[0] + m[4] + m[8]
	switch {
	case tr > 0:
		s := 0.5 / math.Sqrt(tr+1.0)
		q = quat.Number{Real: 0.25 / s, Imag: (m[7] - m[5]) * s, Jmag: (m[2] - m[6]) * s, Kmag: (m[3] - m[1]) * s}
	case m[0] > m[4] && m[0] > m[8]:
		s := 2.0 * math.Sqrt(1.0+m[0]-m[4]-m[8])
		q = quat.Number{Real: (m[7] - m[5]) / s, Imag: 0.25 * s, Jmag: (m[1] + m[3]) / s, Kmag: (m[2] + m[6]) / s}
	case m[4] > m[8]:
		s := 2.0 * math.Sqrt(1.0+m[4]-m[0]-m[8])
		q = quat.Number{Real: (m[2] - m[6]) / s, Imag: (m[1] + m[3]) / s, Jmag: 0.25 * s, Kmag: (m[5] + m[7]) / s}
	default:
		s := 2.0 * math.Sqrt(1.0+m[8]-m[0]-m[4])
		q = quat.Number{Real: (m[3] - m[1]) / s, Imag: (m[2] + m[6]) / s, Jmag: (m[5] + m[7]) / s, Kmag: 0.25 * s}
	}

	denom := math.Sqrt(q.Real*q.Real + q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	return quat.Number{Real: q.Real / denom, Imag: q.Imag / denom, Jmag: q.Jmag / denom, Kmag: q.Kmag / denom}
}

// AngleBetween returns the angle in radians of the rotation taking rm to other.
func (rm *RotationMatrix) AngleBetween(other *RotationMatrix) float64 {
	q1 := rm.Quaternion()
	q2 := other.Quaternion()
	dot := q1.Real*q2.Real + q1.Imag*q2.Imag + q1.Jmag*q2.Jmag + q1.Kmag*q2.Kmag
	dot = math.Abs(dot)
	if dot > 1 {
		dot = 1
	}
	return 2 * math.Acos(dot)
}

// NewRotationMatrixFromEuler builds a rotation matrix applying roll about Z,
// then pitch about X, then yaw about Y.
func NewRotationMatrixFromEuler(yaw, pitch, roll float64) *RotationMatrix {
	cy, sy := math.Cos(yaw), math.Sin(yaw)
	cp, sp := math.Cos(pitch), math.Sin(pitch)
	cr, sr := math.Cos(roll), math.Sin(roll)

	y := &RotationMatrix{[9]float64{cy, 0, sy, 0, 1, 0, -sy, 0, cy}}
	p := &RotationMatrix{[9]float64{1, 0, 0, 0, cp, -sp, 0, sp, cp}}
	r := &RotationMatrix{[9]float64{cr, -sr, 0, sr, cr, 0, 0, 0, 1}}
	return y.Mul(p.Mul(r))
}

// Mul returns the matrix product rm * other.
func (rm *RotationMatrix) Mul(other *RotationMatrix) *RotationMatrix {
	var out [9]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			sum := 0.
			for k := 0; k < 3; k++ {
				sum += rm.At(i, k) * other.At(k, j)
			}
			out[3*i+j] = sum
		}
	}
	return &RotationMatrix{out}
}

// OrthonormalizeRotation projects an arbitrary 3x3 matrix onto the closest
// proper rotation via SVD, enforcing a determinant of +1.
func OrthonormalizeRotation(m *mat.Dense) (*RotationMatrix, error) {
	r, c := m.Dims()
	if r != 3 || c != 3 {
		return nil, errors.Errorf("expected a 3x3 matrix, got %dx%d", r, c)
	}
	var svd mat.SVD
	if ok := svd.Factorize(m, mat.SVDFull); !ok {
		return nil, errors.New("SVD factorization of rotation candidate failed")
	}
	var u, v, rot mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	rot.Mul(&u, v.T())
	if mat.Det(&rot) < 0 {
		// flip the last column of U so the product is a proper rotation
		for i := 0; i < 3; i++ {
			u.Set(i, 2, -u.At(i, 2))
		}
		rot.Mul(&u, v.T())
	}
	return NewRotationMatrix(rot.RawMatrix().Data)
}
