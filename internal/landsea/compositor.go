// Package landsea segments coastal scenes where bright land return would
// otherwise poison the sea thresholding. Land is masked out first, oil is
// detected over the remaining sea pixels, and the two masks are composited.
package landsea

import (
	"fmt"

	"gocv.io/x/gocv"

	"slick-mapper/internal/preprocess"
	"slick-mapper/internal/refine"
	"slick-mapper/internal/segment"
)

// Params configures the coastal compositor.
type Params struct {
	LandCut float64        // Land brightness threshold as a fraction of full scale, exclusive (0, 1)
	Smooth  int            // Radius of the diamond kernel used to regularize the land mask
	Segment segment.Params // Oil detection parameters applied over sea pixels
}

// DefaultParams returns compositor defaults for medium-resolution coastal
// scenes.
func DefaultParams() Params {
	return Params{
		LandCut: 0.6,
		Smooth:  3,
		Segment: segment.DefaultParams(),
	}
}

// Validate rejects out-of-range compositor knobs.
func (p Params) Validate() error {
	if p.LandCut <= 0 || p.LandCut >= 1 {
		return fmt.Errorf("%w: land threshold %.2f must be in (0, 1)", segment.ErrInvalidParameter, p.LandCut)
	}
	if p.Smooth < 1 {
		return fmt.Errorf("%w: land smoothing radius %d must be >= 1", segment.ErrInvalidParameter, p.Smooth)
	}
	return p.Segment.Validate(segment.Automatic)
}

// Result carries the land mask, the oil mask over sea pixels, and their
// composite. The three masks are separately addressable; Close releases all
// of them.
type Result struct {
	Land     gocv.Mat
	Oil      gocv.Mat
	Combined gocv.Mat
}

// Close releases every mask in the result.
func (r *Result) Close() {
	r.Land.Close()
	r.Oil.Close()
	r.Combined.Close()
}

// Composite segments a coastal scene. The land mask keeps every connected
// bright region regardless of size, since islands and narrow spits are real
// land even when a same-sized dark blob would be speckle.
func Composite(scene gocv.Mat, p Params) (*Result, error) {
	if scene.Empty() {
		return nil, fmt.Errorf("empty scene")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	land, err := LandMask(scene, p)
	if err != nil {
		return nil, err
	}

	rawOil, err := segment.SegmentMasked(scene, p.Segment, land)
	if err != nil {
		land.Close()
		return nil, fmt.Errorf("sea segmentation failed: %w", err)
	}

	rp := refine.DefaultParams()
	rp.OpenRadius = p.Segment.OpenRadius
	rp.MinArea = p.Segment.MinArea
	oil, err := refine.Clean(rawOil, rp)
	rawOil.Close()
	if err != nil {
		land.Close()
		return nil, fmt.Errorf("refinement failed: %w", err)
	}

	combined := gocv.NewMat()
	gocv.BitwiseOr(land, oil, &combined)

	return &Result{Land: land, Oil: oil, Combined: combined}, nil
}

// LandMask thresholds sharpened bright return and regularizes the boundary
// with a closing followed by an opening. No blob-area filter runs here.
func LandMask(scene gocv.Mat, p Params) (gocv.Mat, error) {
	sharpened, err := preprocess.Enhance(scene, p.Segment.SharpenAmount, p.Segment.BlurWindow)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer sharpened.Close()

	land := gocv.NewMat()
	gocv.Threshold(sharpened, &land, float32(p.LandCut*255), 255, gocv.ThresholdBinary)

	kernel := diamondKernel(p.Smooth)
	defer kernel.Close()

	closed := gocv.NewMat()
	gocv.MorphologyEx(land, &closed, gocv.MorphClose, kernel)
	land.Close()

	opened := gocv.NewMat()
	gocv.MorphologyEx(closed, &opened, gocv.MorphOpen, kernel)
	closed.Close()

	return opened, nil
}

// diamondKernel builds a diamond structuring element: every pixel within the
// given Manhattan radius of the center. Coastline smoothing uses it instead
// of a box or ellipse to keep promontories angular rather than rounded.
func diamondKernel(radius int) gocv.Mat {
	size := 2*radius + 1
	k := gocv.NewMatWithSize(size, size, gocv.MatTypeCV8U)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := x-radius, y-radius
			if dx < 0 {
				dx = -dx
			}
			if dy < 0 {
				dy = -dy
			}
			if dx+dy <= radius {
				k.SetUCharAt(y, x, 1)
			}
		}
	}
	return k
}
