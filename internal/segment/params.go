package segment

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter marks parameter-set violations. Callers should
// re-prompt or fall back to defaults; values are never clamped.
var ErrInvalidParameter = errors.New("invalid parameter")

// Params is the full parameter set for the strategy family. Each strategy
// reads only its own knobs; Validate checks exactly the knobs the chosen
// strategy uses.
type Params struct {
	DespeckleWindow int // Median/Lee filter window, odd and >= 3

	// Manual
	Offset float64 // Signed offset from the histogram mode, in (-1,1)

	// Local adaptive
	SharpenAmount float64 // Unsharp mask strength, > 0
	BlurWindow    int     // Gaussian window, odd and >= 3
	AdaptiveBlock int     // Adaptive threshold neighborhood, odd and >= 3
	Sensitivity   float64 // Adaptive threshold sensitivity, in (0,1)

	// Superpixel + Otsu
	SuperpixelCount int     // Target superpixel count, >= 2
	Compactness     float64 // SLIC spatial weight, > 0
	MaxBlobDist     float64 // Max pixel distance from the primary dark region, > 0

	// Fuzzy edge
	LowGradient  float64 // Normalized gradient below which a pixel is flat, in (0,1)
	HighGradient float64 // Normalized gradient above which a pixel is edge, in (LowGradient,1)

	// K-means
	Clusters     int // Intensity cluster count, >= 2
	DarkClusters int // How many of the darkest clusters count as oil, >= 1 and < Clusters

	// Shared refinement
	OpenRadius int // Opening structuring element radius, >= 1
	MinArea    int // Blobs must be strictly larger than this, >= 0
}

// DefaultParams returns defaults tuned for medium-resolution SAR scenes.
func DefaultParams() Params {
	return Params{
		DespeckleWindow: 5,

		Offset: 0,

		SharpenAmount: 0.8,
		BlurWindow:    5,
		AdaptiveBlock: 25,
		Sensitivity:   0.5,

		SuperpixelCount: 200,
		Compactness:     10.0,
		MaxBlobDist:     150,

		LowGradient:  0.1,
		HighGradient: 0.3,

		Clusters:     3,
		DarkClusters: 1,

		OpenRadius: 1,
		MinArea:    50,
	}
}

// WithMinArea returns a copy with a different blob-area cutoff.
func (p Params) WithMinArea(minArea int) Params {
	p.MinArea = minArea
	return p
}

// WithOffset returns a copy with a different manual threshold offset.
func (p Params) WithOffset(offset float64) Params {
	p.Offset = offset
	return p
}

// Validate checks the knobs the given strategy will read. Violations wrap
// ErrInvalidParameter and abort before any computation.
func (p Params) Validate(id StrategyID) error {
	if err := checkOddWindow("despeckle window", p.DespeckleWindow); err != nil {
		return err
	}
	if p.OpenRadius < 1 {
		return fmt.Errorf("%w: opening radius %d must be >= 1", ErrInvalidParameter, p.OpenRadius)
	}
	if p.MinArea < 0 {
		return fmt.Errorf("%w: minimum blob area %d must be >= 0", ErrInvalidParameter, p.MinArea)
	}

	switch id {
	case Manual:
		if p.Offset <= -1 || p.Offset >= 1 {
			return fmt.Errorf("%w: threshold offset %.3f outside (-1,1)", ErrInvalidParameter, p.Offset)
		}
	case Automatic:
		if err := checkSensitivity(p.Sensitivity); err != nil {
			return err
		}
		if err := checkOddWindow("adaptive block", p.AdaptiveBlock); err != nil {
			return err
		}
	case LocalAdaptive:
		if p.SharpenAmount <= 0 {
			return fmt.Errorf("%w: sharpen amount %.3f must be positive", ErrInvalidParameter, p.SharpenAmount)
		}
		if err := checkOddWindow("blur window", p.BlurWindow); err != nil {
			return err
		}
		if err := checkOddWindow("adaptive block", p.AdaptiveBlock); err != nil {
			return err
		}
		if err := checkSensitivity(p.Sensitivity); err != nil {
			return err
		}
	case SuperpixelOtsu:
		if p.SuperpixelCount < 2 {
			return fmt.Errorf("%w: superpixel count %d must be >= 2", ErrInvalidParameter, p.SuperpixelCount)
		}
		if p.Compactness <= 0 {
			return fmt.Errorf("%w: compactness %.2f must be positive", ErrInvalidParameter, p.Compactness)
		}
		if p.MaxBlobDist <= 0 {
			return fmt.Errorf("%w: max blob distance %.1f must be positive", ErrInvalidParameter, p.MaxBlobDist)
		}
	case FuzzyEdge:
		if p.LowGradient <= 0 || p.LowGradient >= 1 {
			return fmt.Errorf("%w: low gradient %.3f outside (0,1)", ErrInvalidParameter, p.LowGradient)
		}
		if p.HighGradient <= p.LowGradient || p.HighGradient >= 1 {
			return fmt.Errorf("%w: high gradient %.3f outside (low,1)", ErrInvalidParameter, p.HighGradient)
		}
	case KMeans:
		if p.Clusters < 2 {
			return fmt.Errorf("%w: cluster count %d must be >= 2", ErrInvalidParameter, p.Clusters)
		}
		if p.DarkClusters < 1 || p.DarkClusters >= p.Clusters {
			return fmt.Errorf("%w: dark cluster count %d outside [1,%d)", ErrInvalidParameter, p.DarkClusters, p.Clusters)
		}
	}
	return nil
}

func checkOddWindow(name string, window int) error {
	if window < 3 || window%2 == 0 {
		return fmt.Errorf("%w: %s %d must be odd and >= 3", ErrInvalidParameter, name, window)
	}
	return nil
}

func checkSensitivity(s float64) error {
	if s <= 0 || s >= 1 {
		return fmt.Errorf("%w: sensitivity %.3f outside (0,1)", ErrInvalidParameter, s)
	}
	return nil
}
