// Package preprocess provides noise-reduction and enhancement filters shared
// by all segmentation strategies. Every transform is deterministic, leaves
// its input untouched, and returns a fresh Mat of identical shape.
package preprocess

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// checkWindow rejects filter windows that are even or too small. Windows are
// never silently adjusted.
func checkWindow(window int) error {
	if window < 3 || window%2 == 0 {
		return fmt.Errorf("filter window %d must be odd and >= 3", window)
	}
	return nil
}

// Despeckle removes impulsive speckle with a median filter. Unlike mean
// filtering it keeps region edges sharp.
func Despeckle(src gocv.Mat, window int) (gocv.Mat, error) {
	if src.Empty() {
		return gocv.NewMat(), fmt.Errorf("empty image")
	}
	if err := checkWindow(window); err != nil {
		return gocv.NewMat(), err
	}

	dst := gocv.NewMat()
	gocv.MedianBlur(src, &dst, window)
	return dst, nil
}

// Histogram counts pixel intensities into the given number of uniform bins
// over the 0-255 range. Counts are returned as float64 for downstream
// statistics.
func Histogram(src gocv.Mat, bins int) []float64 {
	counts := make([]float64, bins)
	rows, cols := src.Rows(), src.Cols()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			bin := int(src.GetUCharAt(y, x)) * bins / 256
			counts[bin]++
		}
	}
	return counts
}

// EqualizeBins is the number of histogram bins used for contrast
// equalization. Coarser than the full 8-bit range so that the bulk sea
// background collapses into few levels and dark candidate regions spread out.
const EqualizeBins = 50

// Equalize redistributes intensities by histogram equalization over a fixed
// number of bins.
func Equalize(src gocv.Mat, bins int) (gocv.Mat, error) {
	if src.Empty() {
		return gocv.NewMat(), fmt.Errorf("empty image")
	}
	if bins < 2 || bins > 256 {
		return gocv.NewMat(), fmt.Errorf("bin count %d outside [2,256]", bins)
	}

	counts := Histogram(src, bins)
	rows, cols := src.Rows(), src.Cols()
	total := float64(rows * cols)

	// Cumulative distribution per bin, mapped back onto 0-255.
	lut := make([]uint8, bins)
	cum := 0.0
	for i, c := range counts {
		cum += c
		lut[i] = uint8(cum/total*255 + 0.5)
	}

	dst := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8U)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			bin := int(src.GetUCharAt(y, x)) * bins / 256
			dst.SetUCharAt(y, x, lut[bin])
		}
	}
	return dst, nil
}

// Enhance sharpens with an unsharp mask and then smooths with a Gaussian,
// stabilizing land/sea boundaries before thresholding. Amount controls the
// sharpening strength.
func Enhance(src gocv.Mat, amount float64, window int) (gocv.Mat, error) {
	if src.Empty() {
		return gocv.NewMat(), fmt.Errorf("empty image")
	}
	if err := checkWindow(window); err != nil {
		return gocv.NewMat(), err
	}
	if amount <= 0 {
		return gocv.NewMat(), fmt.Errorf("sharpen amount %.3f must be positive", amount)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(src, &blurred, image.Point{X: window, Y: window}, 0, 0, gocv.BorderDefault)

	sharpened := gocv.NewMat()
	defer sharpened.Close()
	gocv.AddWeighted(src, 1+amount, blurred, -amount, 0, &sharpened)

	dst := gocv.NewMat()
	gocv.GaussianBlur(sharpened, &dst, image.Point{X: window, Y: window}, 0, 0, gocv.BorderDefault)
	return dst, nil
}
