package transform

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
)

var testIntrinsics = PinholeCameraIntrinsics{
	Width:  640,
	Height: 480,
	Fx:     572.4114,
	Fy:     573.57043,
	Ppx:    325.2611,
	Ppy:    242.04899,
}

func TestCheckValid(t *testing.T) {
	good := testIntrinsics
	test.That(t, good.CheckValid(), test.ShouldBeNil)

	var nilParams *PinholeCameraIntrinsics
	err := nilParams.CheckValid()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, ErrNoIntrinsics), test.ShouldBeTrue)

	bad := testIntrinsics
	bad.Fx = 0
	test.That(t, bad.CheckValid(), test.ShouldNotBeNil)

	bad = testIntrinsics
	bad.Width = 0
	test.That(t, bad.CheckValid(), test.ShouldNotBeNil)
}

func TestProjectPoint(t *testing.T) {
	// a point on the optical axis lands on the principal point
	pt := testIntrinsics.ProjectPoint(r3.Vector{X: 0, Y: 0, Z: 5})
	test.That(t, pt.X, test.ShouldAlmostEqual, testIntrinsics.Ppx)
	test.That(t, pt.Y, test.ShouldAlmostEqual, testIntrinsics.Ppy)

	// doubling depth halves the offset from the principal point
	near := testIntrinsics.ProjectPoint(r3.Vector{X: 0.1, Y: -0.2, Z: 1})
	far := testIntrinsics.ProjectPoint(r3.Vector{X: 0.1, Y: -0.2, Z: 2})
	test.That(t, far.X-testIntrinsics.Ppx, test.ShouldAlmostEqual, (near.X-testIntrinsics.Ppx)/2)
	test.That(t, far.Y-testIntrinsics.Ppy, test.ShouldAlmostEqual, (near.Y-testIntrinsics.Ppy)/2)

	// zero depth is pushed out of frame
	behind := testIntrinsics.ProjectPoint(r3.Vector{X: 1, Y: 1, Z: 0})
	test.That(t, behind.X, test.ShouldEqual, -1.0)
	test.That(t, behind.Y, test.ShouldEqual, -1.0)
}

func TestProjectionRoundTrip(t *testing.T) {
	pt := r3.Vector{X: 0.3, Y: -0.1, Z: 2.5}
	px := testIntrinsics.ProjectPoint(pt)
	x, y, z := testIntrinsics.PixelToPoint(px.X, px.Y, pt.Z)
	test.That(t, x, test.ShouldAlmostEqual, pt.X)
	test.That(t, y, test.ShouldAlmostEqual, pt.Y)
	test.That(t, z, test.ShouldAlmostEqual, pt.Z)
}

func TestCameraMatrix(t *testing.T) {
	k := testIntrinsics.GetCameraMatrix()
	kInv := testIntrinsics.GetInverseCameraMatrix()
	var prod [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			sum := 0.
			for l := 0; l < 3; l++ {
				sum += kInv.At(i, l) * k.At(l, j)
			}
			prod[i][j] = sum
		}
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.
			if i == j {
				want = 1.
			}
			test.That(t, prod[i][j], test.ShouldAlmostEqual, want)
		}
	}
}

func TestIntrinsicsFromJSONFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "intrinsics.json")
	b, err := json.Marshal(testIntrinsics)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, os.WriteFile(path, b, 0o640), test.ShouldBeNil)

	got, err := NewPinholeCameraIntrinsicsFromJSONFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, *got, test.ShouldResemble, testIntrinsics)

	_, err = NewPinholeCameraIntrinsicsFromJSONFile(filepath.Join(dir, "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)

	// intrinsics that parse but fail validation are rejected
	test.That(t, os.WriteFile(path, []byte(`{"width_px": 0}`), 0o640), test.ShouldBeNil)
	_, err = NewPinholeCameraIntrinsicsFromJSONFile(path)
	test.That(t, err, test.ShouldNotBeNil)
}
