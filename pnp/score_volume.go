package pnp

import (
	"github.com/pkg/errors"
)

// ScoreVolume is a dense (channels, height, width) stack of per-pixel scores,
// the in-process form of the inference collaborator's output tensors. The
// engine only ever reads it.
type ScoreVolume struct {
	channels int
	height   int
	width    int
	data     []float64
}

// NewScoreVolume allocates a zeroed volume of the given shape.
func NewScoreVolume(channels, height, width int) (*ScoreVolume, error) {
	if channels <= 0 || height <= 0 || width <= 0 {
		return nil, errors.Errorf("invalid score volume shape (%d, %d, %d)", channels, height, width)
	}
	return &ScoreVolume{
		channels: channels,
		height:   height,
		width:    width,
		data:     make([]float64, channels*height*width),
	}, nil
}

// Channels returns the number of score channels.
func (sv *ScoreVolume) Channels() int { return sv.channels }

// Height returns the pixel height.
func (sv *ScoreVolume) Height() int { return sv.height }

// Width returns the pixel width.
func (sv *ScoreVolume) Width() int { return sv.width }

// At returns the score of channel c at pixel (x, y).
func (sv *ScoreVolume) At(c, y, x int) float64 {
	return sv.data[(c*sv.height+y)*sv.width+x]
}

// Set writes the score of channel c at pixel (x, y).
func (sv *ScoreVolume) Set(c, y, x int, score float64) {
	sv.data[(c*sv.height+y)*sv.width+x] = score
}

// ArgmaxAt returns the channel with the highest score at pixel (x, y). Ties
// resolve to the lowest channel index, which keeps decoding deterministic.
func (sv *ScoreVolume) ArgmaxAt(y, x int) int {
	best := 0
	bestScore := sv.At(0, y, x)
	for c := 1; c < sv.channels; c++ {
		if s := sv.At(c, y, x); s > bestScore {
			best = c
			bestScore = s
		}
	}
	return best
}

// sameImageSize reports whether two volumes cover the same pixel grid.
func sameImageSize(a, b *ScoreVolume) bool {
	return a.height == b.height && a.width == b.width
}
