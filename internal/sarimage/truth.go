package sarimage

import (
	"fmt"

	"gocv.io/x/gocv"
)

// TruthParams controls how a labeled reference image is decoded into
// per-class binary masks. The reference annotations mark oil with a
// high-brightness label and land with a mid-brightness label.
type TruthParams struct {
	OilThreshold  float64 // Brightness cut for the oil class, in (0,1)
	LandThreshold float64 // Brightness cut for the land class, in (0,1)
	HasLand       bool    // Whether the scene contains a land class at all
}

// DefaultTruthParams returns decoding thresholds matching the reference
// annotation convention.
func DefaultTruthParams() TruthParams {
	return TruthParams{
		OilThreshold:  0.7,
		LandThreshold: 0.35,
	}
}

// GroundTruth holds the decoded reference masks for one scene. Land is an
// empty Mat for oil-only scenes. Combined is the union used for scoring.
type GroundTruth struct {
	Oil      gocv.Mat
	Land     gocv.Mat
	Combined gocv.Mat
}

// Close releases all masks.
func (t *GroundTruth) Close() {
	if t == nil {
		return
	}
	if !t.Oil.Empty() {
		t.Oil.Close()
	}
	if !t.Land.Empty() {
		t.Land.Close()
	}
	if !t.Combined.Empty() {
		t.Combined.Close()
	}
}

// DecodeTruth extracts class masks from a grayscale labeled reference image.
// Oil pixels are those at or above the oil brightness cut; land pixels sit
// between the land cut and the oil cut.
func DecodeTruth(labeled gocv.Mat, p TruthParams) (*GroundTruth, error) {
	if labeled.Empty() {
		return nil, fmt.Errorf("empty reference image")
	}
	if p.OilThreshold <= 0 || p.OilThreshold >= 1 {
		return nil, fmt.Errorf("oil threshold %.3f outside (0,1)", p.OilThreshold)
	}
	if p.HasLand && (p.LandThreshold <= 0 || p.LandThreshold >= p.OilThreshold) {
		return nil, fmt.Errorf("land threshold %.3f outside (0, oil threshold)", p.LandThreshold)
	}

	oilCut := float32(p.OilThreshold * 255)

	oil := gocv.NewMat()
	gocv.Threshold(labeled, &oil, oilCut, 255, gocv.ThresholdBinary)

	truth := &GroundTruth{Oil: oil}

	if p.HasLand {
		landCut := float32(p.LandThreshold * 255)

		above := gocv.NewMat()
		defer above.Close()
		gocv.Threshold(labeled, &above, landCut, 255, gocv.ThresholdBinary)

		// Land band: above the land cut but below the oil cut.
		land := gocv.NewMat()
		notOil := gocv.NewMat()
		defer notOil.Close()
		gocv.BitwiseNot(oil, &notOil)
		gocv.BitwiseAnd(above, notOil, &land)
		truth.Land = land

		combined := gocv.NewMat()
		gocv.BitwiseOr(oil, land, &combined)
		truth.Combined = combined
	} else {
		truth.Land = gocv.NewMat()
		truth.Combined = oil.Clone()
	}

	return truth, nil
}

// LoadTruth reads a labeled reference image from disk and decodes it.
func LoadTruth(path string, p TruthParams) (*GroundTruth, error) {
	scene, err := Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference: %w", err)
	}
	defer scene.Close()

	return DecodeTruth(scene.Gray, p)
}
