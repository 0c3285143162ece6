package segment

import (
	"gocv.io/x/gocv"

	"slick-mapper/internal/preprocess"
	"slick-mapper/internal/superpixel"
)

// superpixelStrategy over-segments the scene, Otsu-thresholds the
// per-superpixel mean intensities, and keeps the dark superpixels. Distant
// speckle superpixels are removed later by the refinement distance filter.
type superpixelStrategy struct{}

func (superpixelStrategy) Name() string { return "superpixel" }

func (superpixelStrategy) Segment(scene gocv.Mat, p Params) (gocv.Mat, error) {
	despeckled, err := preprocess.Despeckle(scene, p.DespeckleWindow)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer despeckled.Close()

	seg, err := superpixel.Segment(despeckled, superpixel.Options{
		Count:       p.SuperpixelCount,
		Compactness: p.Compactness,
		Iterations:  superpixel.DefaultOptions().Iterations,
	})
	if err != nil {
		return gocv.NewMat(), err
	}

	means := seg.MeanIntensities(despeckled)
	cut := otsuThreshold(means)

	dark := make([]bool, seg.Count)
	for i, m := range means {
		dark[i] = m <= cut
	}

	mask := gocv.NewMatWithSize(seg.Height, seg.Width, gocv.MatTypeCV8U)
	for y := 0; y < seg.Height; y++ {
		for x := 0; x < seg.Width; x++ {
			if dark[seg.Labels[y*seg.Width+x]] {
				mask.SetUCharAt(y, x, 255)
			}
		}
	}
	return mask, nil
}
