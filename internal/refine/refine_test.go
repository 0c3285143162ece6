package refine

import (
	"testing"

	"gocv.io/x/gocv"
)

// blobMask builds a size x size mask with one filled square per rect, given
// as [x0, y0, x1, y1].
func blobMask(size int, rects ...[4]int) gocv.Mat {
	m := gocv.NewMatWithSize(size, size, gocv.MatTypeCV8U)
	for _, r := range rects {
		for y := r[1]; y < r[3]; y++ {
			for x := r[0]; x < r[2]; x++ {
				m.SetUCharAt(y, x, 255)
			}
		}
	}
	return m
}

func maskDiff(a, b gocv.Mat) int {
	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(a, b, &diff)
	return gocv.CountNonZero(diff)
}

func TestOpenIdempotent(t *testing.T) {
	mask := blobMask(60, [4]int{10, 10, 40, 40})
	defer mask.Close()

	once := Open(mask, 2)
	defer once.Close()
	twice := Open(once, 2)
	defer twice.Close()

	if n := maskDiff(once, twice); n != 0 {
		t.Errorf("Opening is not idempotent: %d pixels differ", n)
	}
}

func TestOpenRemovesSpeckle(t *testing.T) {
	// A large square plus a single isolated pixel.
	mask := blobMask(60, [4]int{10, 10, 40, 40})
	defer mask.Close()
	mask.SetUCharAt(50, 50, 255)

	opened := Open(mask, 1)
	defer opened.Close()

	if opened.GetUCharAt(50, 50) != 0 {
		t.Error("Expected isolated pixel to be erased by opening")
	}
	if opened.GetUCharAt(25, 25) == 0 {
		t.Error("Expected large region interior to survive opening")
	}
}

func TestFillHoles(t *testing.T) {
	mask := blobMask(60, [4]int{10, 10, 50, 50})
	defer mask.Close()
	// Punch an interior hole.
	for y := 25; y < 35; y++ {
		for x := 25; x < 35; x++ {
			mask.SetUCharAt(y, x, 0)
		}
	}

	filled := FillHoles(mask)
	defer filled.Close()

	if filled.GetUCharAt(30, 30) == 0 {
		t.Error("Expected interior hole to be filled")
	}
	if filled.GetUCharAt(5, 5) != 0 {
		t.Error("Expected exterior background to stay empty")
	}
}

func TestFilterAreaStrict(t *testing.T) {
	// Two squares: 5x5 = 25 pixels and 6x6 = 36 pixels.
	mask := blobMask(60, [4]int{5, 5, 10, 10}, [4]int{30, 30, 36, 36})
	defer mask.Close()

	// A blob of exactly the cutoff area must be dropped.
	exact := FilterArea(mask, 25)
	defer exact.Close()
	if exact.GetUCharAt(7, 7) != 0 {
		t.Error("Expected blob of exactly the cutoff area to be dropped")
	}
	if exact.GetUCharAt(32, 32) == 0 {
		t.Error("Expected larger blob to survive")
	}

	// One below the cutoff keeps it.
	below := FilterArea(mask, 24)
	defer below.Close()
	if below.GetUCharAt(7, 7) == 0 {
		t.Error("Expected blob one above the cutoff to survive")
	}
}

func TestFilterDistance(t *testing.T) {
	// A large anchor blob and two small blobs, one near and one far.
	mask := blobMask(200,
		[4]int{40, 40, 80, 80},
		[4]int{90, 60, 95, 65},
		[4]int{170, 170, 175, 175})
	defer mask.Close()

	filtered := FilterDistance(mask, 60)
	defer filtered.Close()

	if filtered.GetUCharAt(60, 60) == 0 {
		t.Error("Expected anchor blob to survive")
	}
	if filtered.GetUCharAt(62, 92) == 0 {
		t.Error("Expected nearby blob to survive")
	}
	if filtered.GetUCharAt(172, 172) != 0 {
		t.Error("Expected distant blob to be dropped")
	}
}

func TestBlobs(t *testing.T) {
	mask := blobMask(60, [4]int{5, 5, 15, 15}, [4]int{30, 30, 40, 45})
	defer mask.Close()

	blobs := Blobs(mask)
	if len(blobs) != 2 {
		t.Fatalf("Expected 2 blobs, got %d", len(blobs))
	}

	largest, ok := Largest(blobs)
	if !ok {
		t.Fatal("Expected a largest blob")
	}
	if largest.Area != 150 {
		t.Errorf("Expected largest blob area 150, got %d", largest.Area)
	}
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	if err := p.Validate(); err != nil {
		t.Errorf("Default parameters rejected: %v", err)
	}
	if p.MaxDist != 0 {
		t.Errorf("Expected distance filter disabled by default, got %f", p.MaxDist)
	}
}

func TestCleanValidatesParams(t *testing.T) {
	mask := blobMask(20, [4]int{5, 5, 15, 15})
	defer mask.Close()

	if _, err := Clean(mask, Params{OpenRadius: 0, MinArea: 10}); err == nil {
		t.Error("Expected error for zero opening radius")
	}
	if _, err := Clean(mask, Params{OpenRadius: 1, MinArea: -1}); err == nil {
		t.Error("Expected error for negative minimum area")
	}
}
