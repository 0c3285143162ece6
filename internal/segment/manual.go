package segment

import (
	"gocv.io/x/gocv"

	"slick-mapper/internal/preprocess"
)

// manualStrategy thresholds at the histogram mode plus a user-supplied
// signed offset. The mode tracks the sea background after equalization, so
// the offset shifts how aggressively darker pixels are claimed as oil.
type manualStrategy struct{}

func (manualStrategy) Name() string { return "manual" }

func (manualStrategy) Segment(scene gocv.Mat, p Params) (gocv.Mat, error) {
	despeckled, err := preprocess.Despeckle(scene, p.DespeckleWindow)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer despeckled.Close()

	equalized, err := preprocess.Equalize(despeckled, preprocess.EqualizeBins)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer equalized.Close()

	counts := preprocess.Histogram(equalized, 256)
	cut := float64(modalBin(counts)) + p.Offset*255

	return darkBelow(equalized, cut), nil
}

// darkBelow binarizes with pixels strictly below the cut marked as oil.
// Thresholding keeps the bright (sea) side; inverting flips to the dark side.
func darkBelow(src gocv.Mat, cut float64) gocv.Mat {
	if cut < 0 {
		cut = 0
	}
	if cut > 255 {
		cut = 255
	}

	sea := gocv.NewMat()
	defer sea.Close()
	gocv.Threshold(src, &sea, float32(cut-1), 255, gocv.ThresholdBinary)

	oil := gocv.NewMat()
	gocv.BitwiseNot(sea, &oil)
	return oil
}
