// Package pnp recovers rigid object poses from dense 2D-3D color code
// correspondences: a RANSAC PnP solver for a single instance and an engine
// that peels instances off a full-image classification iteratively.
package pnp

import (
	"image"
	"math/rand"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"github.com/poselab/densecorr/colorcode"
	"github.com/poselab/densecorr/spatialmath"
	"github.com/poselab/densecorr/transform"
	"github.com/poselab/densecorr/utils"
)

// Observation is one pixel believed to belong to an object instance: its
// image position and the color code decoded there.
type Observation struct {
	X      int
	Y      int
	Height int
	Angle  int
}

// SolverConfig bounds the RANSAC search. The zero value selects defaults.
type SolverConfig struct {
	// Iterations is the number of random minimal-sample hypotheses to try.
	Iterations int
	// InlierThresholdPx is the maximum reprojection error in pixels for an
	// observation to support a hypothesis.
	InlierThresholdPx float64
	// MinInliers is the minimum supporting count for a hypothesis to count
	// as converged.
	MinInliers int
	// Seed seeds the sampler; equal seeds and inputs reproduce the solution.
	Seed int64
}

const (
	defaultIterations        = 300
	defaultInlierThresholdPx = 8.0
	defaultMinInliers        = 50
	// rotationTol is the orthonormality tolerance for accepting a solution
	rotationTol = 1e-6
)

// withDefaults fills unset fields with the documented defaults.
func (cfg SolverConfig) withDefaults() SolverConfig {
	if cfg.Iterations <= 0 {
		cfg.Iterations = defaultIterations
	}
	if cfg.InlierThresholdPx <= 0 {
		cfg.InlierThresholdPx = defaultInlierThresholdPx
	}
	if cfg.MinInliers <= 0 {
		cfg.MinInliers = defaultMinInliers
	}
	if cfg.MinInliers < minDLTPoints {
		cfg.MinInliers = minDLTPoints
	}
	return cfg
}

// Solution is the outcome of a single-instance solve. Converged reports
// whether enough observations supported the best pose; a false value is a
// normal outcome, not an error.
type Solution struct {
	Converged bool
	Pose      *spatialmath.Pose
	Inliers   []image.Point
}

// Solve recovers the pose of one object instance from pixel observations of
// its color codes. Observations are decoded into 3D-2D correspondences
// through the model's lookup table and fed to a RANSAC loop: minimal random
// subsets hypothesize poses via DLT, reprojection support picks the winner,
// and a final re-solve over all inliers refines it. The sampler is seeded
// from the config, so identical inputs yield identical solutions.
func Solve(
	obs []Observation,
	lookup *colorcode.Lookup,
	intrinsics *transform.PinholeCameraIntrinsics,
	cfg SolverConfig,
	logger golog.Logger,
) (*Solution, error) {
	if lookup == nil {
		return nil, errors.New("solve requires a color lookup table")
	}
	if err := intrinsics.CheckValid(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	corrs := make([]Correspondence, 0, len(obs))
	dropped := 0
	for _, o := range obs {
		pt, ok := lookup.At(o.Height, o.Angle)
		if !ok {
			// out-of-range code from a malformed decode
			dropped++
			continue
		}
		corrs = append(corrs, Correspondence{
			Point: pt,
			Pixel: r2.Point{X: float64(o.X), Y: float64(o.Y)},
		})
	}
	if dropped > 0 {
		logger.Debugw("dropped observations with unresolvable color codes", "count", dropped)
	}
	if len(corrs) < cfg.MinInliers {
		return &Solution{Converged: false}, nil
	}

	r := rand.New(rand.NewSource(cfg.Seed))
	var bestPose *spatialmath.Pose
	bestInliers := 0
	for i := 0; i < cfg.Iterations; i++ {
		sample := make([]Correspondence, minDLTPoints)
		for j, idx := range utils.SampleNDistinctInts(minDLTPoints, len(corrs), r) {
			sample[j] = corrs[idx]
		}
		pose, err := estimatePoseDLT(sample, intrinsics)
		if err != nil {
			continue
		}
		if n := countInliers(pose, corrs, intrinsics, cfg.InlierThresholdPx); n > bestInliers {
			bestPose = pose
			bestInliers = n
		}
	}
	if bestPose == nil || bestInliers < cfg.MinInliers {
		return &Solution{Converged: false}, nil
	}

	// refine over the full support of the winning hypothesis
	pose := bestPose
	if refined, err := estimatePoseDLT(collectInlierCorrs(pose, corrs, intrinsics, cfg.InlierThresholdPx), intrinsics); err == nil {
		if n := countInliers(refined, corrs, intrinsics, cfg.InlierThresholdPx); n >= bestInliers {
			pose = refined
			bestInliers = n
		}
	}

	if !pose.Rotation.IsOrthonormal(rotationTol) {
		// should not happen with SVD-projected rotations; reject rather
		// than surface an invalid pose
		logger.Warnw("rejecting pose with non-orthonormal rotation", "inliers", bestInliers)
		return &Solution{Converged: false}, nil
	}

	inliers := make([]image.Point, 0, bestInliers)
	for _, c := range corrs {
		if reprojErr, ok := reprojectionError(pose, c, intrinsics); ok && reprojErr < cfg.InlierThresholdPx {
			inliers = append(inliers, image.Point{X: int(c.Pixel.X), Y: int(c.Pixel.Y)})
		}
	}
	return &Solution{Converged: true, Pose: pose, Inliers: inliers}, nil
}

// countInliers scores a hypothesis by its reprojection support.
func countInliers(
	pose *spatialmath.Pose,
	corrs []Correspondence,
	intrinsics *transform.PinholeCameraIntrinsics,
	threshold float64,
) int {
	n := 0
	for _, c := range corrs {
		if reprojErr, ok := reprojectionError(pose, c, intrinsics); ok && reprojErr < threshold {
			n++
		}
	}
	return n
}

func collectInlierCorrs(
	pose *spatialmath.Pose,
	corrs []Correspondence,
	intrinsics *transform.PinholeCameraIntrinsics,
	threshold float64,
) []Correspondence {
	out := make([]Correspondence, 0, len(corrs))
	for _, c := range corrs {
		if reprojErr, ok := reprojectionError(pose, c, intrinsics); ok && reprojErr < threshold {
			out = append(out, c)
		}
	}
	return out
}
