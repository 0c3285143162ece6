package refine

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Params configures the shared refinement stage.
type Params struct {
	OpenRadius int     // Radius of the opening structuring element
	MinArea    int     // Blobs must be strictly larger than this to survive
	MaxDist    float64 // Drop blobs farther than this from the largest blob's centroid; 0 disables
}

// DefaultParams returns refinement defaults suitable for medium-resolution
// SAR scenes.
func DefaultParams() Params {
	return Params{
		OpenRadius: 1,
		MinArea:    50,
	}
}

// Validate rejects out-of-range refinement knobs.
func (p Params) Validate() error {
	if p.OpenRadius < 1 {
		return fmt.Errorf("opening radius %d must be >= 1", p.OpenRadius)
	}
	if p.MinArea < 0 {
		return fmt.Errorf("minimum blob area %d must be >= 0", p.MinArea)
	}
	if p.MaxDist < 0 {
		return fmt.Errorf("maximum blob distance %.1f must be >= 0", p.MaxDist)
	}
	return nil
}

// Clean runs the fixed refinement sequence on a raw candidate mask:
// morphological opening, hole filling, then blob filtering. The distance
// filter, when enabled, runs before the area filter and measures from the
// centroid of the largest blob.
func Clean(mask gocv.Mat, p Params) (gocv.Mat, error) {
	if mask.Empty() {
		return gocv.NewMat(), fmt.Errorf("empty mask")
	}
	if err := p.Validate(); err != nil {
		return gocv.NewMat(), err
	}

	opened := Open(mask, p.OpenRadius)
	defer opened.Close()

	filled := FillHoles(opened)
	defer filled.Close()

	cur := filled.Clone()
	if p.MaxDist > 0 {
		distFiltered := FilterDistance(cur, p.MaxDist)
		cur.Close()
		cur = distFiltered
	}

	areaFiltered := FilterArea(cur, p.MinArea)
	cur.Close()
	return areaFiltered, nil
}

// Open erases isolated true pixels with a morphological opening using an
// elliptical structuring element of the given radius.
func Open(mask gocv.Mat, radius int) gocv.Mat {
	size := 2*radius + 1
	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{X: size, Y: size})
	defer kernel.Close()

	opened := gocv.NewMat()
	gocv.MorphologyEx(mask, &opened, gocv.MorphOpen, kernel)
	return opened
}

// FillHoles closes interior gaps by redrawing every external contour filled.
func FillHoles(mask gocv.Mat) gocv.Mat {
	filled := gocv.NewMatWithSize(mask.Rows(), mask.Cols(), gocv.MatTypeCV8U)
	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	for i := 0; i < contours.Size(); i++ {
		gocv.DrawContours(&filled, contours, i, color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)
	}
	return filled
}

// FilterArea keeps only blobs whose pixel count is strictly greater than
// minArea.
func FilterArea(mask gocv.Mat, minArea int) gocv.Mat {
	return filterBlobs(mask, func(b Blob) bool {
		return b.Area > minArea
	})
}

// FilterDistance drops blobs whose centroid is farther than maxDist pixels
// from the centroid of the largest blob. The largest blob itself always
// survives.
func FilterDistance(mask gocv.Mat, maxDist float64) gocv.Mat {
	largest, ok := Largest(Blobs(mask))
	if !ok {
		return mask.Clone()
	}
	return filterBlobs(mask, func(b Blob) bool {
		return b.Centroid.Distance(largest.Centroid) <= maxDist
	})
}
