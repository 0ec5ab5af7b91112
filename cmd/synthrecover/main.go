// synthrecover renders a known model at a known pose, feeds the rendered
// correspondence mask back through the pose solver, and reports how closely
// the recovered pose matches the ground truth.
package main

import (
	"flag"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"

	"github.com/poselab/densecorr/colorcode"
	"github.com/poselab/densecorr/model"
	"github.com/poselab/densecorr/pnp"
	"github.com/poselab/densecorr/render"
	"github.com/poselab/densecorr/spatialmath"
	"github.com/poselab/densecorr/transform"
	"github.com/poselab/densecorr/utils"
)

func main() {
	seed := flag.Int64("seed", 1, "RANSAC sampler seed")
	stride := flag.Int("stride", 4, "use every Nth foreground pixel as an observation")
	intrinsicsPath := flag.String("intrinsics", "", "optional JSON file with camera intrinsics")
	flag.Parse()

	logger := golog.NewDevelopmentLogger("synthrecover")
	if err := realMain(logger, *seed, *stride, *intrinsicsPath); err != nil {
		logger.Fatal(err)
	}
}

func realMain(logger golog.Logger, seed int64, stride int, intrinsicsPath string) error {
	intrinsics := &transform.PinholeCameraIntrinsics{
		Width:  640,
		Height: 480,
		Fx:     572.4114,
		Fy:     573.57043,
		Ppx:    325.2611,
		Ppy:    242.04899,
	}
	if intrinsicsPath != "" {
		loaded, err := transform.NewPinholeCameraIntrinsicsFromJSONFile(intrinsicsPath)
		if err != nil {
			return err
		}
		intrinsics = loaded
	}

	m := model.NewCylinderModel(1, "cup", 0.3, 0.6, 48, 16)
	enc, err := colorcode.NewEncoder(m.Vertices, 0)
	if err != nil {
		return err
	}
	lookup, err := colorcode.BuildLookup(m.Vertices, 0)
	if err != nil {
		return err
	}

	truth := spatialmath.NewPose(
		spatialmath.NewRotationMatrixFromEuler(0.4, 0.15, -0.2),
		r3.Vector{X: 0.1, Y: -0.05, Z: 3},
	)
	img := render.NewCodeImage(intrinsics.Width, intrinsics.Height)
	if err := render.RenderColorMask(img, m, truth, enc, intrinsics); err != nil {
		return err
	}
	logger.Infow("rendered synthetic view", "model", m.Name, "foreground_pixels", img.ForegroundCount())

	var obs []pnp.Observation
	n := 0
	for y := 0; y < img.Height(); y++ {
		for x := 0; x < img.Width(); x++ {
			if img.ClassAt(x, y) == render.Background {
				continue
			}
			if n%stride == 0 {
				h, a := img.CodeAt(x, y)
				obs = append(obs, pnp.Observation{X: x, Y: y, Height: h, Angle: a})
			}
			n++
		}
	}

	solution, err := pnp.Solve(obs, lookup, intrinsics, pnp.SolverConfig{Seed: seed}, logger)
	if err != nil {
		return err
	}
	if !solution.Converged {
		logger.Warn("solver did not converge")
		return nil
	}

	logger.Infow("ground truth", "translation", truth.Translation)
	logger.Infow("recovered", "translation", solution.Pose.Translation, "inliers", len(solution.Inliers))
	logger.Infow("errors",
		"rotation_deg", utils.RadToDeg(solution.Pose.Rotation.AngleBetween(truth.Rotation)),
		"translation", solution.Pose.Translation.Sub(truth.Translation).Norm(),
	)
	return nil
}
