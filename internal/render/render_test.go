package render

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"

	"slick-mapper/internal/evaluate"
)

func grayMat(size int, value uint8) gocv.Mat {
	m := gocv.NewMatWithSize(size, size, gocv.MatTypeCV8U)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			m.SetUCharAt(y, x, value)
		}
	}
	return m
}

func TestConfusionOverlayClasses(t *testing.T) {
	scene := grayMat(10, 100)
	defer scene.Close()
	confusion := gocv.NewMatWithSize(10, 10, gocv.MatTypeCV8U)
	defer confusion.Close()
	confusion.SetUCharAt(1, 1, evaluate.ClassTP)
	confusion.SetUCharAt(2, 2, evaluate.ClassFP)
	confusion.SetUCharAt(3, 3, evaluate.ClassFN)

	img, err := ConfusionOverlay(scene, confusion, DefaultOptions())
	if err != nil {
		t.Fatalf("ConfusionOverlay failed: %v", err)
	}

	// Background pixels pass the scene gray through unchanged.
	bg := img.RGBAAt(5, 5)
	if bg.R != 100 || bg.G != 100 || bg.B != 100 {
		t.Errorf("Background pixel = %v, want gray 100", bg)
	}

	tp := img.RGBAAt(1, 1)
	if tp.G <= tp.R || tp.G <= tp.B {
		t.Errorf("Agreement pixel %v should be green dominated", tp)
	}
	fp := img.RGBAAt(2, 2)
	if fp.R <= fp.G || fp.R <= fp.B {
		t.Errorf("False alarm pixel %v should be red dominated", fp)
	}
	fn := img.RGBAAt(3, 3)
	if fn.B <= fn.R || fn.B <= fn.G {
		t.Errorf("Miss pixel %v should be blue dominated", fn)
	}
}

func TestConfusionOverlayShapeMismatch(t *testing.T) {
	scene := grayMat(10, 100)
	defer scene.Close()
	confusion := gocv.NewMatWithSize(10, 12, gocv.MatTypeCV8U)
	defer confusion.Close()

	if _, err := ConfusionOverlay(scene, confusion, DefaultOptions()); !errors.Is(err, evaluate.ErrShapeMismatch) {
		t.Errorf("Expected ErrShapeMismatch, got %v", err)
	}
}

func TestLandSeaOverlay(t *testing.T) {
	scene := grayMat(10, 100)
	defer scene.Close()
	land := gocv.NewMatWithSize(10, 10, gocv.MatTypeCV8U)
	defer land.Close()
	oil := gocv.NewMatWithSize(10, 10, gocv.MatTypeCV8U)
	defer oil.Close()
	land.SetUCharAt(2, 2, 255)
	oil.SetUCharAt(7, 7, 255)

	img, err := LandSeaOverlay(scene, land, oil, DefaultOptions())
	if err != nil {
		t.Fatalf("LandSeaOverlay failed: %v", err)
	}

	landPix := img.RGBAAt(2, 2)
	seaPix := img.RGBAAt(5, 5)
	oilPix := img.RGBAAt(7, 7)
	if landPix == seaPix {
		t.Error("Expected land pixel tinted relative to sea")
	}
	if oilPix == seaPix {
		t.Error("Expected oil pixel tinted relative to sea")
	}
	if seaPix.R != 100 || seaPix.G != 100 || seaPix.B != 100 {
		t.Errorf("Sea pixel = %v, want gray 100", seaPix)
	}
}
