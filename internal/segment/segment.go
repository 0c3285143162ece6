// Package segment implements the segmentation strategy family. Every
// strategy turns a grayscale scene into a raw candidate mask of dark
// regions; the shared refinement stage then cleans and filters it.
package segment

import (
	"fmt"
	"strings"

	"gocv.io/x/gocv"

	"slick-mapper/internal/refine"
)

// StrategyID identifies one of the six segmentation variants.
type StrategyID int

const (
	Manual StrategyID = iota
	Automatic
	LocalAdaptive
	SuperpixelOtsu
	FuzzyEdge
	KMeans
)

func (id StrategyID) String() string {
	switch id {
	case Manual:
		return "manual"
	case Automatic:
		return "automatic"
	case LocalAdaptive:
		return "adaptive"
	case SuperpixelOtsu:
		return "superpixel"
	case FuzzyEdge:
		return "fuzzy"
	case KMeans:
		return "kmeans"
	default:
		return "unknown"
	}
}

// ParseStrategy resolves a strategy name as used on the command line.
func ParseStrategy(name string) (StrategyID, error) {
	for _, id := range All() {
		if strings.EqualFold(name, id.String()) {
			return id, nil
		}
	}
	return 0, fmt.Errorf("unknown strategy %q", name)
}

// All returns every strategy id in declaration order.
func All() []StrategyID {
	return []StrategyID{Manual, Automatic, LocalAdaptive, SuperpixelOtsu, FuzzyEdge, KMeans}
}

// Strategy produces a raw candidate mask from a scene. Implementations must
// return a mask of identical shape with oil (dark) pixels set, and must not
// apply blob-area filtering themselves.
type Strategy interface {
	Name() string
	Segment(scene gocv.Mat, p Params) (gocv.Mat, error)
}

// ForID returns the strategy implementation for an id.
func ForID(id StrategyID) (Strategy, error) {
	switch id {
	case Manual:
		return manualStrategy{}, nil
	case Automatic:
		return automaticStrategy{}, nil
	case LocalAdaptive:
		return adaptiveStrategy{}, nil
	case SuperpixelOtsu:
		return superpixelStrategy{}, nil
	case FuzzyEdge:
		return fuzzyStrategy{}, nil
	case KMeans:
		return kmeansStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown strategy id %d", id)
	}
}

// Run executes the full pipeline for one strategy: parameter validation,
// candidate segmentation, then the shared refinement stage. The returned
// mask has the same dimensions as the scene.
func Run(id StrategyID, scene gocv.Mat, p Params) (gocv.Mat, error) {
	if scene.Empty() {
		return gocv.NewMat(), fmt.Errorf("empty scene")
	}
	if err := p.Validate(id); err != nil {
		return gocv.NewMat(), err
	}

	strategy, err := ForID(id)
	if err != nil {
		return gocv.NewMat(), err
	}

	raw, err := strategy.Segment(scene, p)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("%s segmentation failed: %w", strategy.Name(), err)
	}
	defer raw.Close()

	rp := refine.DefaultParams()
	rp.OpenRadius = p.OpenRadius
	rp.MinArea = p.MinArea
	if id == SuperpixelOtsu {
		// Scattered speckle superpixels far from the primary dark region
		// are dropped before area filtering.
		rp.MaxDist = p.MaxBlobDist
	}

	cleaned, err := refine.Clean(raw, rp)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("refinement failed: %w", err)
	}
	return cleaned, nil
}
