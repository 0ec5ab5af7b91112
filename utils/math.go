// Package utils contains small numeric helpers shared across the module.
package utils

import (
	"math"
	"math/rand"
)

func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// Math.pow( x, 2 ) is slow, this is faster
func Square(n float64) float64 {
	return n * n
}

func MaxInt(a, b int) int {
	if a < b {
		return b
	}
	return a
}

func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// ClampInt clamps x to the inclusive range [min, max].
func ClampInt(x, min, max int) int {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}

// SampleRandomIntRange samples a random integer within a range given by [min, max]
// using the given rand.Rand
func SampleRandomIntRange(min, max int, r *rand.Rand) int {
	return r.Intn(max-min+1) + min
}

// SampleNDistinctInts samples n distinct integers from [0, max) using the given
// rand.Rand. max must be at least n.
func SampleNDistinctInts(n, max int, r *rand.Rand) []int {
	picked := make(map[int]bool, n)
	out := make([]int, 0, n)
	for len(out) < n {
		k := r.Intn(max)
		if picked[k] {
			continue
		}
		picked[k] = true
		out = append(out, k)
	}
	return out
}
