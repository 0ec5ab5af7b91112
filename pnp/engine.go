package pnp

import (
	"image"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/poselab/densecorr/colorcode"
	"github.com/poselab/densecorr/model"
	"github.com/poselab/densecorr/spatialmath"
	"github.com/poselab/densecorr/transform"
)

// per-pixel ownership states; values >= 0 are instance indices.
const (
	pixelUnassigned = -1
	pixelBackground = -2
)

// Instance is one recovered object: the model it matched, its pose, and the
// pixels that support it.
type Instance struct {
	ModelID int
	Pose    *spatialmath.Pose
	Inliers []image.Point
}

// Engine recovers every object instance visible in a classification +
// correspondence image by repeatedly solving for the most prominent remaining
// class and consuming the explained pixels.
type Engine struct {
	registry   *model.Registry
	intrinsics *transform.PinholeCameraIntrinsics
	solverCfg  SolverConfig
	logger     golog.Logger
}

// NewEngine validates the collaborators and returns a ready engine.
func NewEngine(
	reg *model.Registry,
	intrinsics *transform.PinholeCameraIntrinsics,
	solverCfg SolverConfig,
	logger golog.Logger,
) (*Engine, error) {
	if reg == nil {
		return nil, errors.New("engine requires a model registry")
	}
	if err := intrinsics.CheckValid(); err != nil {
		return nil, err
	}
	return &Engine{
		registry:   reg,
		intrinsics: intrinsics,
		solverCfg:  solverCfg.withDefaults(),
		logger:     logger,
	}, nil
}

// Recover runs the multi-instance loop over the given score volumes. The
// class volume's channels are the model classes with background last; the
// height and angle volumes carry one channel per color code value. The input
// volumes are never mutated.
//
// Each round picks the most frequent argmax class among still-unassigned
// pixels (ties resolve to the lowest class ID), solves for that class's
// model, and on success claims the inlier pixels for the new instance. The
// first non-converged solve ends the loop; whatever was already recovered is
// returned. Every successful round consumes at least MinInliers pixels, and
// rounds are additionally capped by the initial unassigned count, so the
// loop always terminates.
func (e *Engine) Recover(classScores, heightScores, angleScores *ScoreVolume) ([]Instance, error) {
	if classScores == nil || heightScores == nil || angleScores == nil {
		return nil, errors.New("recover requires class, height and angle score volumes")
	}
	if !sameImageSize(classScores, heightScores) || !sameImageSize(classScores, angleScores) {
		return nil, errors.New("score volumes disagree on image size")
	}
	res := e.registry.Resolution()
	if heightScores.Channels() != res || angleScores.Channels() != res {
		return nil, errors.Errorf("correspondence volumes have %d/%d channels, registry resolution is %d",
			heightScores.Channels(), angleScores.Channels(), res)
	}

	h, w := classScores.Height(), classScores.Width()
	backgroundClass := classScores.Channels() - 1

	// decode the argmax class and color code of every pixel once up front
	classes := make([]int, h*w)
	heights := make([]int, h*w)
	angles := make([]int, h*w)
	ownership := make([]int, h*w)
	unassigned := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			classes[i] = classScores.ArgmaxAt(y, x)
			if classes[i] == backgroundClass {
				ownership[i] = pixelBackground
				continue
			}
			ownership[i] = pixelUnassigned
			heights[i] = heightScores.ArgmaxAt(y, x)
			angles[i] = angleScores.ArgmaxAt(y, x)
			unassigned++
		}
	}

	var instances []Instance
	for round := 0; round < unassigned; round++ {
		class, pixelCount := mostFrequentClass(classes, ownership, classScores.Channels())
		if pixelCount == 0 {
			break
		}

		lookup, err := e.lookupForClass(class)
		if err != nil {
			// fatal for this model only; consume its pixels and move on
			e.logger.Warnw("skipping unusable class", "class", class, "pixels", pixelCount, "error", err)
			consumeClass(classes, ownership, class, pixelBackground)
			continue
		}

		obs := make([]Observation, 0, pixelCount)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				i := y*w + x
				if ownership[i] == pixelUnassigned && classes[i] == class {
					obs = append(obs, Observation{X: x, Y: y, Height: heights[i], Angle: angles[i]})
				}
			}
		}

		cfg := e.solverCfg
		cfg.Seed += int64(round)
		solution, err := Solve(obs, lookup, e.intrinsics, cfg, e.logger)
		if err != nil {
			return nil, err
		}
		if !solution.Converged {
			// no more recoverable instances
			break
		}

		k := len(instances)
		for _, px := range solution.Inliers {
			ownership[px.Y*w+px.X] = k
		}
		instances = append(instances, Instance{
			ModelID: class,
			Pose:    solution.Pose,
			Inliers: solution.Inliers,
		})
		e.logger.Debugw("recovered instance", "instance", k, "class", class, "inliers", len(solution.Inliers))
	}
	return instances, nil
}

// lookupForClass maps a predicted class to its model's lookup table.
func (e *Engine) lookupForClass(class int) (*colorcode.Lookup, error) {
	if _, ok := e.registry.ModelByID(class); !ok {
		return nil, errors.Errorf("no registered model for class %d", class)
	}
	return e.registry.LookupTable(class)
}

// mostFrequentClass returns the modal class among unassigned pixels and its
// count. Ties resolve to the lowest class ID.
func mostFrequentClass(classes, ownership []int, numClasses int) (int, int) {
	counts := make([]int, numClasses)
	for i, c := range classes {
		if ownership[i] == pixelUnassigned {
			counts[c]++
		}
	}
	best, bestCount := 0, 0
	for c, n := range counts {
		if n > bestCount {
			best, bestCount = c, n
		}
	}
	return best, bestCount
}

// consumeClass reassigns every unassigned pixel of the class to the given
// terminal state.
func consumeClass(classes, ownership []int, class, state int) {
	for i, c := range classes {
		if ownership[i] == pixelUnassigned && c == class {
			ownership[i] = state
		}
	}
}
