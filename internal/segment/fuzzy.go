package segment

import (
	"image"

	"gocv.io/x/gocv"

	"slick-mapper/internal/preprocess"
	"slick-mapper/internal/refine"
)

// fuzzyStrategy classifies pixels by fuzzy inference over the Sobel gradient
// magnitude. Triangular low/medium/high memberships describe how edge-like a
// pixel is; pixels where the high membership dominates form slick boundaries,
// which a closing plus hole fill turns into solid regions.
type fuzzyStrategy struct{}

func (fuzzyStrategy) Name() string { return "fuzzy" }

func (fuzzyStrategy) Segment(scene gocv.Mat, p Params) (gocv.Mat, error) {
	filtered, err := preprocess.Lee(scene, p.DespeckleWindow)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer filtered.Close()

	magnitude := gradientMagnitude(filtered)
	defer magnitude.Close()

	rows, cols := magnitude.Rows(), magnitude.Cols()
	edges := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8U)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			g := float64(magnitude.GetUCharAt(y, x)) / 255.0
			low, med, high := memberships(g, p.LowGradient, p.HighGradient)
			if high > low && high >= med {
				edges.SetUCharAt(y, x, 255)
			}
		}
	}

	closed := closeMask(edges, p.OpenRadius)
	edges.Close()
	defer closed.Close()

	return refine.FillHoles(closed), nil
}

// gradientMagnitude combines absolute horizontal and vertical Sobel responses
// into a single byte image.
func gradientMagnitude(src gocv.Mat) gocv.Mat {
	gx := gocv.NewMat()
	defer gx.Close()
	gy := gocv.NewMat()
	defer gy.Close()
	gocv.Sobel(src, &gx, gocv.MatTypeCV16S, 1, 0, 3, 1, 0, gocv.BorderDefault)
	gocv.Sobel(src, &gy, gocv.MatTypeCV16S, 0, 1, 3, 1, 0, gocv.BorderDefault)

	absX := gocv.NewMat()
	defer absX.Close()
	absY := gocv.NewMat()
	defer absY.Close()
	gocv.ConvertScaleAbs(gx, &absX, 1, 0)
	gocv.ConvertScaleAbs(gy, &absY, 1, 0)

	magnitude := gocv.NewMat()
	gocv.AddWeighted(absX, 0.5, absY, 0.5, 0, &magnitude)
	return magnitude
}

// memberships evaluates the three membership functions at a normalized
// gradient g. Low is full below the low anchor, high is full above the high
// anchor, and medium peaks midway between the anchors.
func memberships(g, lo, hi float64) (low, med, high float64) {
	mid := (lo + hi) / 2
	low = fall(g, lo, mid)
	med = triangle(g, lo, mid, hi)
	high = rise(g, mid, hi)
	return low, med, high
}

// fall is 1 up to a, descends linearly, and reaches 0 at b.
func fall(g, a, b float64) float64 {
	switch {
	case g <= a:
		return 1
	case g >= b:
		return 0
	default:
		return (b - g) / (b - a)
	}
}

// rise is 0 up to a, climbs linearly, and reaches 1 at b.
func rise(g, a, b float64) float64 {
	switch {
	case g <= a:
		return 0
	case g >= b:
		return 1
	default:
		return (g - a) / (b - a)
	}
}

// triangle is 0 outside (a, c) and peaks at 1 over b.
func triangle(g, a, b, c float64) float64 {
	switch {
	case g <= a || g >= c:
		return 0
	case g <= b:
		return (g - a) / (b - a)
	default:
		return (c - g) / (c - b)
	}
}

// closeMask bridges small gaps in the edge mask so contours enclose their
// interior before hole filling.
func closeMask(mask gocv.Mat, radius int) gocv.Mat {
	size := 2*radius + 1
	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{X: size, Y: size})
	defer kernel.Close()

	closed := gocv.NewMat()
	gocv.MorphologyEx(mask, &closed, gocv.MorphClose, kernel)
	return closed
}
