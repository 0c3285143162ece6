package segment

import (
	"gocv.io/x/gocv"

	"slick-mapper/internal/preprocess"
)

// adaptiveStrategy thresholds each pixel against its own neighborhood
// statistics instead of a single global cut, after sharpening and smoothing
// to stabilize region boundaries.
type adaptiveStrategy struct{}

func (adaptiveStrategy) Name() string { return "adaptive" }

func (adaptiveStrategy) Segment(scene gocv.Mat, p Params) (gocv.Mat, error) {
	despeckled, err := preprocess.Despeckle(scene, p.DespeckleWindow)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer despeckled.Close()

	enhanced, err := preprocess.Enhance(despeckled, p.SharpenAmount, p.BlurWindow)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer enhanced.Close()

	return adaptiveBinarize(enhanced, p.AdaptiveBlock, p.Sensitivity), nil
}
