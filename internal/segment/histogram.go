package segment

import (
	"gonum.org/v1/gonum/floats"
)

// degenerateFraction is the share of pixels in the modal bin beyond which a
// histogram carries no usable mode/minimum structure and strategies fall
// back to local-adaptive binarization.
const degenerateFraction = 0.99

// modalBin returns the index of the histogram bin with the highest count.
func modalBin(counts []float64) int {
	return floats.MaxIdx(counts)
}

// isDegenerate reports whether the histogram is so concentrated that
// mode-based thresholds are ill-defined.
func isDegenerate(counts []float64) bool {
	total := floats.Sum(counts)
	if total == 0 {
		return true
	}
	return counts[modalBin(counts)]/total >= degenerateFraction
}

// otsuThreshold computes the Otsu threshold over a set of intensity values
// in [0,255], maximizing between-class variance on a 256-bin histogram.
func otsuThreshold(values []float64) float64 {
	var histogram [256]int
	for _, v := range values {
		bin := int(v)
		if bin < 0 {
			bin = 0
		}
		if bin > 255 {
			bin = 255
		}
		histogram[bin]++
	}

	total := len(values)
	sum := 0.0
	for i, c := range histogram {
		sum += float64(i) * float64(c)
	}

	sumB := 0.0
	wB := 0
	maxVariance := 0.0
	threshold := 0.0

	for i, c := range histogram {
		wB += c
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}

		sumB += float64(i) * float64(c)
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)

		varBetween := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if varBetween > maxVariance {
			maxVariance = varBetween
			threshold = float64(i)
		}
	}

	return threshold
}
