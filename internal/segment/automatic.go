package segment

import (
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/floats"

	"slick-mapper/internal/preprocess"
)

// automaticStrategy picks its threshold from the equalized histogram. When
// the histogram has empty bins the modes are well separated and a single
// cut below the modal bin suffices; otherwise the intensity forms a
// continuum and the strategy falls back to local-adaptive binarization.
type automaticStrategy struct{}

func (automaticStrategy) Name() string { return "automatic" }

func (automaticStrategy) Segment(scene gocv.Mat, p Params) (gocv.Mat, error) {
	noExclude := gocv.NewMat()
	defer noExclude.Close()
	return segmentAutomatic(scene, p, noExclude)
}

// SegmentMasked runs automatic thresholding with the excluded pixels (e.g.
// a land mask) removed from the histogram and forced out of the result.
// An empty exclude Mat disables masking.
func SegmentMasked(scene gocv.Mat, p Params, exclude gocv.Mat) (gocv.Mat, error) {
	if err := p.Validate(Automatic); err != nil {
		return gocv.NewMat(), err
	}
	return segmentAutomatic(scene, p, exclude)
}

func segmentAutomatic(scene gocv.Mat, p Params, exclude gocv.Mat) (gocv.Mat, error) {
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

	counts := maskedHistogram(equalized, preprocess.EqualizeBins, exclude)

	var oil gocv.Mat
	minCount := floats.Min(counts)
	if minCount == 0 && !isDegenerate(counts) {
		// Well-separated modes: cut just below the modal (sea) bin.
		cut := float64(modalBin(counts)) * 256 / preprocess.EqualizeBins
		oil = darkBelow(equalized, cut)
	} else {
		oil = adaptiveBinarize(equalized, p.AdaptiveBlock, p.Sensitivity)
	}

	if !exclude.Empty() {
		masked := gocv.NewMat()
		notExcluded := gocv.NewMat()
		defer notExcluded.Close()
		gocv.BitwiseNot(exclude, &notExcluded)
		gocv.BitwiseAnd(oil, notExcluded, &masked)
		oil.Close()
		oil = masked
	}
	return oil, nil
}

// maskedHistogram counts intensities of pixels outside the exclude mask.
func maskedHistogram(src gocv.Mat, bins int, exclude gocv.Mat) []float64 {
	if exclude.Empty() {
		return preprocess.Histogram(src, bins)
	}

	counts := make([]float64, bins)
	rows, cols := src.Rows(), src.Cols()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if exclude.GetUCharAt(y, x) > 0 {
				continue
			}
			bin := int(src.GetUCharAt(y, x)) * bins / 256
			counts[bin]++
		}
	}
	return counts
}

// adaptiveBinarize applies mean-neighborhood adaptive thresholding and
// inverts so the dark side is kept. The constant subtracted from the local
// mean scales with sensitivity.
func adaptiveBinarize(src gocv.Mat, block int, sensitivity float64) gocv.Mat {
	c := float32((1 - sensitivity) * 10)

	sea := gocv.NewMat()
	defer sea.Close()
	gocv.AdaptiveThreshold(src, &sea, 255, gocv.AdaptiveThresholdMean, gocv.ThresholdBinary, block, c)

	oil := gocv.NewMat()
	gocv.BitwiseNot(sea, &oil)
	return oil
}
