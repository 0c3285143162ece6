package preprocess

import (
	"fmt"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"
)

// Wiener applies an adaptive Wiener denoise using local window statistics.
// The noise power is estimated as the mean of all local variances, giving a
// more isotropic response than the Lee filter.
func Wiener(src gocv.Mat, window int) (gocv.Mat, error) {
	if src.Empty() {
		return gocv.NewMat(), fmt.Errorf("empty image")
	}
	if err := checkWindow(window); err != nil {
		return gocv.NewMat(), err
	}

	rows, cols := src.Rows(), src.Cols()
	vals := matToFloats(src)
	half := window / 2

	means := make([]float64, rows*cols)
	vars := make([]float64, rows*cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			m, v := localStats(vals, cols, rows, x, y, half)
			means[y*cols+x] = m
			vars[y*cols+x] = v
		}
	}

	noise := stat.Mean(vars, nil)

	dst := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8U)
	for i, pix := range vals {
		m, v := means[i], vars[i]
		out := m
		if v > 0 {
			gain := (v - noise) / v
			if gain < 0 {
				gain = 0
			}
			out = m + gain*(pix-m)
		}
		dst.SetUCharAt(i/cols, i%cols, clampByte(out))
	}
	return dst, nil
}
