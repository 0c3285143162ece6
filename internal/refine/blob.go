// Package refine provides the shared post-processing stage applied to every
// raw candidate mask: morphological cleanup, hole filling, and
// connected-component blob filtering.
package refine

import (
	"gocv.io/x/gocv"

	"slick-mapper/pkg/geometry"
)

// Blob is a maximal 8-connected set of true pixels in a binary mask. Blobs
// are recomputed per run and carry no identity across runs.
type Blob struct {
	Label    int              // Component label assigned during labeling
	Area     int              // Exact count of true pixels
	Centroid geometry.Point2D // Pixel-average position
	Bounds   geometry.RectInt
}

// Blobs labels the 8-connected components of a binary mask and returns one
// Blob per component, background excluded.
func Blobs(mask gocv.Mat) []Blob {
	labels := gocv.NewMat()
	defer labels.Close()
	stats := gocv.NewMat()
	defer stats.Close()
	centroids := gocv.NewMat()
	defer centroids.Close()

	count := gocv.ConnectedComponentsWithStats(mask, &labels, &stats, &centroids)

	blobs := make([]Blob, 0, count-1)
	for i := 1; i < count; i++ { // label 0 is background
		blobs = append(blobs, Blob{
			Label: i,
			Area:  int(stats.GetIntAt(i, 4)),
			Centroid: geometry.NewPoint2D(
				centroids.GetDoubleAt(i, 0),
				centroids.GetDoubleAt(i, 1),
			),
			Bounds: geometry.RectInt{
				X:      int(stats.GetIntAt(i, 0)),
				Y:      int(stats.GetIntAt(i, 1)),
				Width:  int(stats.GetIntAt(i, 2)),
				Height: int(stats.GetIntAt(i, 3)),
			},
		})
	}
	return blobs
}

// Largest returns the blob with the greatest area, or false when the mask
// has no foreground.
func Largest(blobs []Blob) (Blob, bool) {
	if len(blobs) == 0 {
		return Blob{}, false
	}
	best := blobs[0]
	for _, b := range blobs[1:] {
		if b.Area > best.Area {
			best = b
		}
	}
	return best, true
}

// filterBlobs labels the mask once and reconstructs it as the union of the
// components the keep predicate accepts.
func filterBlobs(mask gocv.Mat, keep func(Blob) bool) gocv.Mat {
	labels := gocv.NewMat()
	defer labels.Close()
	stats := gocv.NewMat()
	defer stats.Close()
	centroids := gocv.NewMat()
	defer centroids.Close()

	count := gocv.ConnectedComponentsWithStats(mask, &labels, &stats, &centroids)

	kept := make(map[int]bool, count)
	for i := 1; i < count; i++ {
		b := Blob{
			Label: i,
			Area:  int(stats.GetIntAt(i, 4)),
			Centroid: geometry.NewPoint2D(
				centroids.GetDoubleAt(i, 0),
				centroids.GetDoubleAt(i, 1),
			),
		}
		if keep(b) {
			kept[i] = true
		}
	}

	rows, cols := mask.Rows(), mask.Cols()
	out := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8U)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if kept[int(labels.GetIntAt(y, x))] {
				out.SetUCharAt(y, x, 255)
			}
		}
	}
	return out
}
