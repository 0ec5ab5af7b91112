package pnp

import (
	"testing"

	"go.viam.com/test"
)

func TestNewScoreVolume(t *testing.T) {
	_, err := NewScoreVolume(0, 4, 4)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewScoreVolume(2, -1, 4)
	test.That(t, err, test.ShouldNotBeNil)

	sv, err := NewScoreVolume(3, 4, 5)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sv.Channels(), test.ShouldEqual, 3)
	test.That(t, sv.Height(), test.ShouldEqual, 4)
	test.That(t, sv.Width(), test.ShouldEqual, 5)
}

func TestScoreVolumeArgmax(t *testing.T) {
	sv, err := NewScoreVolume(4, 2, 2)
	test.That(t, err, test.ShouldBeNil)

	sv.Set(2, 1, 0, 0.9)
	sv.Set(3, 1, 0, 0.4)
	test.That(t, sv.At(2, 1, 0), test.ShouldEqual, 0.9)
	test.That(t, sv.ArgmaxAt(1, 0), test.ShouldEqual, 2)

	// ties resolve to the lowest channel
	sv.Set(1, 0, 1, 0.5)
	sv.Set(3, 0, 1, 0.5)
	test.That(t, sv.ArgmaxAt(0, 1), test.ShouldEqual, 1)

	// an untouched pixel argmaxes to channel zero
	test.That(t, sv.ArgmaxAt(0, 0), test.ShouldEqual, 0)
}
