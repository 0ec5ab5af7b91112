package utils

import (
	"math"
	"math/rand"
	"testing"

	"go.viam.com/test"
)

func TestAngleConversions(t *testing.T) {
	test.That(t, DegToRad(180), test.ShouldAlmostEqual, math.Pi)
	test.That(t, RadToDeg(math.Pi/2), test.ShouldAlmostEqual, 90)
	test.That(t, RadToDeg(DegToRad(37.5)), test.ShouldAlmostEqual, 37.5)
}

func TestSquare(t *testing.T) {
	test.That(t, Square(3), test.ShouldEqual, 9)
	test.That(t, Square(-0.5), test.ShouldEqual, 0.25)
}

func TestMinMaxClamp(t *testing.T) {
	test.That(t, MaxInt(2, 5), test.ShouldEqual, 5)
	test.That(t, MinInt(2, 5), test.ShouldEqual, 2)
	test.That(t, ClampInt(7, 0, 5), test.ShouldEqual, 5)
	test.That(t, ClampInt(-1, 0, 5), test.ShouldEqual, 0)
	test.That(t, ClampInt(3, 0, 5), test.ShouldEqual, 3)
}

func TestSampleRandomIntRange(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		n := SampleRandomIntRange(-5, 5, r)
		test.That(t, n, test.ShouldBeGreaterThanOrEqualTo, -5)
		test.That(t, n, test.ShouldBeLessThanOrEqualTo, 5)
	}
}

func TestSampleNDistinctInts(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	got := SampleNDistinctInts(6, 10, r)
	test.That(t, len(got), test.ShouldEqual, 6)
	seen := map[int]bool{}
	for _, k := range got {
		test.That(t, k, test.ShouldBeGreaterThanOrEqualTo, 0)
		test.That(t, k, test.ShouldBeLessThan, 10)
		test.That(t, seen[k], test.ShouldBeFalse)
		seen[k] = true
	}

	// sampling all of [0, n) returns a permutation
	all := SampleNDistinctInts(4, 4, r)
	test.That(t, len(all), test.ShouldEqual, 4)
}
