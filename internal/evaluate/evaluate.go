// Package evaluate scores a predicted mask against a ground-truth mask with
// region overlap and boundary agreement metrics.
package evaluate

import (
	"errors"
	"fmt"
	"math"

	"gocv.io/x/gocv"
)

// ErrShapeMismatch reports that a prediction and its ground truth disagree
// on image dimensions.
var ErrShapeMismatch = errors.New("mask shapes differ")

// Confusion class codes written into the per-pixel confusion mask.
const (
	ClassBackground uint8 = 0
	ClassTP         uint8 = 1
	ClassFP         uint8 = 2
	ClassFN         uint8 = 3
)

// boundaryTolerance is the matching radius for boundary agreement, as a
// fraction of the image diagonal.
const boundaryTolerance = 0.0075

// Result holds the scores and per-pixel classification for one comparison.
// Confusion is CV8U with the Class* codes; the caller owns it.
type Result struct {
	TruePositive  int
	FalsePositive int
	FalseNegative int
	TrueNegative  int

	Jaccard    float64
	Dice       float64
	BoundaryF1 float64

	Confusion gocv.Mat
}

// Close releases the confusion mask.
func (r *Result) Close() {
	r.Confusion.Close()
}

// Compare scores a predicted mask against ground truth. Both masks are CV8U
// with nonzero meaning positive. Two empty masks score perfect overlap;
// one-sided emptiness scores zero.
func Compare(pred, truth gocv.Mat) (*Result, error) {
	if pred.Empty() || truth.Empty() {
		return nil, fmt.Errorf("empty mask")
	}
	if pred.Rows() != truth.Rows() || pred.Cols() != truth.Cols() {
		return nil, fmt.Errorf("%w: %dx%d vs %dx%d",
			ErrShapeMismatch, pred.Cols(), pred.Rows(), truth.Cols(), truth.Rows())
	}

	rows, cols := pred.Rows(), pred.Cols()
	r := &Result{Confusion: gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8U)}

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			p := pred.GetUCharAt(y, x) != 0
			t := truth.GetUCharAt(y, x) != 0
			switch {
			case p && t:
				r.TruePositive++
				r.Confusion.SetUCharAt(y, x, ClassTP)
			case p && !t:
				r.FalsePositive++
				r.Confusion.SetUCharAt(y, x, ClassFP)
			case !p && t:
				r.FalseNegative++
				r.Confusion.SetUCharAt(y, x, ClassFN)
			default:
				r.TrueNegative++
			}
		}
	}

	r.Jaccard = overlapScore(r.TruePositive, r.TruePositive+r.FalsePositive+r.FalseNegative)
	r.Dice = overlapScore(2*r.TruePositive, 2*r.TruePositive+r.FalsePositive+r.FalseNegative)
	r.BoundaryF1 = boundaryF1(pred, truth)

	return r, nil
}

// overlapScore divides num by den with the empty-masks convention: when both
// masks are empty the denominator vanishes and agreement is perfect.
func overlapScore(num, den int) float64 {
	if den == 0 {
		return 1.0
	}
	return float64(num) / float64(den)
}

// boundaryF1 measures boundary agreement. Each boundary pixel of one mask
// matches when the other mask has a boundary pixel within the tolerance
// radius; precision and recall over those matches combine into F1.
func boundaryF1(pred, truth gocv.Mat) float64 {
	rows, cols := pred.Rows(), pred.Cols()
	tol := boundaryTolerance * math.Hypot(float64(cols), float64(rows))

	pb := boundaryPixels(pred)
	tb := boundaryPixels(truth)

	if len(pb) == 0 && len(tb) == 0 {
		return 1.0
	}
	if len(pb) == 0 || len(tb) == 0 {
		return 0.0
	}

	precision := matchedFraction(pb, tb, tol)
	recall := matchedFraction(tb, pb, tol)
	if precision+recall == 0 {
		return 0.0
	}
	return 2 * precision * recall / (precision + recall)
}

type pixel struct{ x, y int }

// boundaryPixels returns every positive pixel with at least one background
// neighbor in its 8-neighborhood. Image borders count as background.
func boundaryPixels(mask gocv.Mat) []pixel {
	rows, cols := mask.Rows(), mask.Cols()
	var out []pixel
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if mask.GetUCharAt(y, x) == 0 {
				continue
			}
			if hasBackgroundNeighbor(mask, x, y, cols, rows) {
				out = append(out, pixel{x: x, y: y})
			}
		}
	}
	return out
}

func hasBackgroundNeighbor(mask gocv.Mat, x, y, cols, rows int) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if nx < 0 || nx >= cols || ny < 0 || ny >= rows {
				return true
			}
			if mask.GetUCharAt(ny, nx) == 0 {
				return true
			}
		}
	}
	return false
}

// matchedFraction returns the fraction of from pixels with a to pixel within
// tol.
func matchedFraction(from, to []pixel, tol float64) float64 {
	tol2 := tol * tol
	matched := 0
	for _, f := range from {
		for _, t := range to {
			dx := float64(f.x - t.x)
			dy := float64(f.y - t.y)
			if dx*dx+dy*dy <= tol2 {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(from))
}
