package preprocess

import (
	"fmt"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"
)

// Lee applies the Lee adaptive speckle filter. Each pixel is blended toward
// its local window mean in proportion to local signal variance versus the
// scene-wide speckle noise variance: homogeneous water smooths strongly,
// edges pass through nearly untouched.
func Lee(src gocv.Mat, window int) (gocv.Mat, error) {
	if src.Empty() {
		return gocv.NewMat(), fmt.Errorf("empty image")
	}
	if err := checkWindow(window); err != nil {
		return gocv.NewMat(), err
	}

	rows, cols := src.Rows(), src.Cols()
	vals := matToFloats(src)

	// Effective number of looks from global statistics; its inverse is the
	// squared speckle variation coefficient.
	mean, std := stat.MeanStdDev(vals, nil)
	if std == 0 || mean == 0 {
		// Uniform image, nothing to smooth.
		return src.Clone(), nil
	}
	enl := (mean / std) * (mean / std)
	cu2 := 1.0 / enl

	half := window / 2
	dst := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8U)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			m, v := localStats(vals, cols, rows, x, y, half)
			pix := vals[y*cols+x]
			if m == 0 {
				// Division singularity: leave the pixel unfiltered.
				dst.SetUCharAt(y, x, uint8(pix+0.5))
				continue
			}
			ci2 := v / (m * m)
			w := 0.0
			if ci2 > cu2 {
				w = 1.0 - cu2/ci2
			}
			out := m + w*(pix-m)
			dst.SetUCharAt(y, x, clampByte(out))
		}
	}
	return dst, nil
}

// localStats computes the mean and population variance of the window
// centered on (x, y), truncated at the image border.
func localStats(vals []float64, cols, rows, x, y, half int) (mean, variance float64) {
	var sum, sumSq float64
	var n int
	for dy := -half; dy <= half; dy++ {
		ny := y + dy
		if ny < 0 || ny >= rows {
			continue
		}
		for dx := -half; dx <= half; dx++ {
			nx := x + dx
			if nx < 0 || nx >= cols {
				continue
			}
			v := vals[ny*cols+nx]
			sum += v
			sumSq += v * v
			n++
		}
	}
	mean = sum / float64(n)
	variance = sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return mean, variance
}

func matToFloats(src gocv.Mat) []float64 {
	rows, cols := src.Rows(), src.Cols()
	vals := make([]float64, rows*cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			vals[y*cols+x] = float64(src.GetUCharAt(y, x))
		}
	}
	return vals
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
