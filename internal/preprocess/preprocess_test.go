package preprocess

import (
	"testing"

	"gocv.io/x/gocv"
)

// uniformMat builds a size x size image filled with one value.
func uniformMat(size int, value uint8) gocv.Mat {
	m := gocv.NewMatWithSize(size, size, gocv.MatTypeCV8U)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			m.SetUCharAt(y, x, value)
		}
	}
	return m
}

// splitMat builds a size x size image with the left half dark and the right
// half bright.
func splitMat(size int, dark, bright uint8) gocv.Mat {
	m := gocv.NewMatWithSize(size, size, gocv.MatTypeCV8U)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if x < size/2 {
				m.SetUCharAt(y, x, dark)
			} else {
				m.SetUCharAt(y, x, bright)
			}
		}
	}
	return m
}

func TestWindowValidation(t *testing.T) {
	src := uniformMat(20, 128)
	defer src.Close()

	for _, window := range []int{0, 1, 2, 4, -3} {
		if _, err := Despeckle(src, window); err == nil {
			t.Errorf("Despeckle accepted window %d", window)
		}
		if _, err := Lee(src, window); err == nil {
			t.Errorf("Lee accepted window %d", window)
		}
		if _, err := Wiener(src, window); err == nil {
			t.Errorf("Wiener accepted window %d", window)
		}
	}
}

func TestDespeckleRemovesImpulse(t *testing.T) {
	src := uniformMat(20, 100)
	defer src.Close()
	src.SetUCharAt(10, 10, 255)

	dst, err := Despeckle(src, 3)
	if err != nil {
		t.Fatalf("Despeckle failed: %v", err)
	}
	defer dst.Close()

	if got := dst.GetUCharAt(10, 10); got != 100 {
		t.Errorf("Expected impulse replaced by median 100, got %d", got)
	}
}

func TestLeeUniformImage(t *testing.T) {
	src := uniformMat(30, 150)
	defer src.Close()

	dst, err := Lee(src, 5)
	if err != nil {
		t.Fatalf("Lee failed: %v", err)
	}
	defer dst.Close()

	for y := 0; y < 30; y++ {
		for x := 0; x < 30; x++ {
			if got := dst.GetUCharAt(y, x); got != 150 {
				t.Fatalf("Uniform image changed at (%d,%d): %d", x, y, got)
			}
		}
	}
}

func TestLeePreservesStrongEdge(t *testing.T) {
	src := splitMat(40, 30, 220)
	defer src.Close()

	dst, err := Lee(src, 5)
	if err != nil {
		t.Fatalf("Lee failed: %v", err)
	}
	defer dst.Close()

	// Pixels well inside each half keep their side's brightness level.
	if got := dst.GetUCharAt(20, 5); got > 80 {
		t.Errorf("Dark side brightened to %d", got)
	}
	if got := dst.GetUCharAt(20, 35); got < 170 {
		t.Errorf("Bright side darkened to %d", got)
	}
}

func TestWienerUniformImage(t *testing.T) {
	src := uniformMat(30, 90)
	defer src.Close()

	dst, err := Wiener(src, 3)
	if err != nil {
		t.Fatalf("Wiener failed: %v", err)
	}
	defer dst.Close()

	if got := dst.GetUCharAt(15, 15); got != 90 {
		t.Errorf("Uniform image changed: %d", got)
	}
}

func TestHistogram(t *testing.T) {
	src := splitMat(20, 10, 250)
	defer src.Close()

	counts := Histogram(src, EqualizeBins)
	if len(counts) != EqualizeBins {
		t.Fatalf("Expected %d bins, got %d", EqualizeBins, len(counts))
	}

	var total float64
	for _, c := range counts {
		total += c
	}
	if total != 400 {
		t.Errorf("Histogram counts sum to %f, want 400", total)
	}

	// Both populated bins hold exactly half the pixels.
	if counts[10*EqualizeBins/256] != 200 {
		t.Errorf("Dark bin count %f, want 200", counts[10*EqualizeBins/256])
	}
	if counts[250*EqualizeBins/256] != 200 {
		t.Errorf("Bright bin count %f, want 200", counts[250*EqualizeBins/256])
	}
}

func TestEqualizeSpreadsContrast(t *testing.T) {
	// A low-contrast split image should end up spanning most of the range.
	src := splitMat(40, 100, 130)
	defer src.Close()

	dst, err := Equalize(src, EqualizeBins)
	if err != nil {
		t.Fatalf("Equalize failed: %v", err)
	}
	defer dst.Close()

	dark := dst.GetUCharAt(20, 5)
	bright := dst.GetUCharAt(20, 35)
	if int(bright)-int(dark) < 100 {
		t.Errorf("Expected equalization to spread values, got %d and %d", dark, bright)
	}
	// Order must be preserved.
	if dark >= bright {
		t.Errorf("Equalization inverted ordering: %d >= %d", dark, bright)
	}
}

func TestEnhanceUniformImage(t *testing.T) {
	src := uniformMat(30, 120)
	defer src.Close()

	dst, err := Enhance(src, 0.8, 5)
	if err != nil {
		t.Fatalf("Enhance failed: %v", err)
	}
	defer dst.Close()

	// Unsharp masking of a flat image is a no-op.
	if got := dst.GetUCharAt(15, 15); got != 120 {
		t.Errorf("Uniform image changed: %d", got)
	}
}
