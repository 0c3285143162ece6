package landsea

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"

	"slick-mapper/internal/segment"
)

// coastalScene builds a 100x100 scene with a bright land band on the left,
// mid-gray sea elsewhere, and a dark slick disk in open water.
func coastalScene() gocv.Mat {
	m := gocv.NewMatWithSize(100, 100, gocv.MatTypeCV8U)
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			switch {
			case x < 30:
				m.SetUCharAt(y, x, 220)
			default:
				m.SetUCharAt(y, x, 120)
			}
		}
	}
	for y := 0; y < 100; y++ {
		for x := 30; x < 100; x++ {
			dx, dy := x-65, y-50
			if dx*dx+dy*dy <= 10*10 {
				m.SetUCharAt(y, x, 30)
			}
		}
	}
	return m
}

func TestParamsValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Params)
	}{
		{"land cut at zero", func(p *Params) { p.LandCut = 0 }},
		{"land cut at one", func(p *Params) { p.LandCut = 1 }},
		{"zero smoothing", func(p *Params) { p.Smooth = 0 }},
		{"bad segment params", func(p *Params) { p.Segment.DespeckleWindow = 4 }},
	}
	for _, c := range cases {
		p := DefaultParams()
		c.mutate(&p)
		if err := p.Validate(); !errors.Is(err, segment.ErrInvalidParameter) {
			t.Errorf("%s: expected ErrInvalidParameter, got %v", c.name, err)
		}
	}
	if err := DefaultParams().Validate(); err != nil {
		t.Errorf("Default parameters rejected: %v", err)
	}
}

func TestCompositeSeparatesClasses(t *testing.T) {
	scene := coastalScene()
	defer scene.Close()

	result, err := Composite(scene, DefaultParams())
	if err != nil {
		t.Fatalf("Composite failed: %v", err)
	}
	defer result.Close()

	if result.Land.GetUCharAt(50, 10) == 0 {
		t.Error("Expected bright band inside the land mask")
	}
	if result.Land.GetUCharAt(50, 70) != 0 {
		t.Error("Expected open sea outside the land mask")
	}
	if result.Oil.GetUCharAt(50, 65) == 0 {
		t.Error("Expected slick disk inside the oil mask")
	}
	if result.Oil.GetUCharAt(50, 10) != 0 {
		t.Error("Expected land outside the oil mask")
	}
}

func TestCompositeMasksDisjoint(t *testing.T) {
	scene := coastalScene()
	defer scene.Close()

	result, err := Composite(scene, DefaultParams())
	if err != nil {
		t.Fatalf("Composite failed: %v", err)
	}
	defer result.Close()

	both := gocv.NewMat()
	defer both.Close()
	gocv.BitwiseAnd(result.Land, result.Oil, &both)
	if n := gocv.CountNonZero(both); n != 0 {
		t.Errorf("Expected disjoint land and oil masks, %d pixels overlap", n)
	}

	union := gocv.NewMat()
	defer union.Close()
	gocv.BitwiseOr(result.Land, result.Oil, &union)
	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(union, result.Combined, &diff)
	if n := gocv.CountNonZero(diff); n != 0 {
		t.Errorf("Expected combined mask to equal the union, %d pixels differ", n)
	}
}

func TestLandMaskKeepsSmallIsland(t *testing.T) {
	scene := gocv.NewMatWithSize(100, 100, gocv.MatTypeCV8U)
	defer scene.Close()
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			scene.SetUCharAt(y, x, 120)
		}
	}
	// A bright island far smaller than the blob-area cutoff.
	for y := 45; y < 55; y++ {
		for x := 45; x < 55; x++ {
			scene.SetUCharAt(y, x, 230)
		}
	}

	p := DefaultParams()
	p.Smooth = 1
	land, err := LandMask(scene, p)
	if err != nil {
		t.Fatalf("LandMask failed: %v", err)
	}
	defer land.Close()

	if land.GetUCharAt(50, 50) == 0 {
		t.Error("Expected small island to survive, land masks are not area filtered")
	}
}

func TestDiamondKernel(t *testing.T) {
	k := diamondKernel(3)
	defer k.Close()

	if k.Rows() != 7 || k.Cols() != 7 {
		t.Fatalf("Expected 7x7 kernel, got %dx%d", k.Cols(), k.Rows())
	}

	cases := []struct {
		x, y int
		want uint8
	}{
		{3, 3, 1}, // center
		{0, 3, 1}, // tip of the left vertex
		{2, 2, 1}, // interior of the diamond, outside a cross arm
		{1, 1, 0}, // outside the Manhattan radius
		{0, 0, 0}, // corner
	}
	for _, c := range cases {
		if got := k.GetUCharAt(c.y, c.x); got != c.want {
			t.Errorf("Kernel at (%d,%d) = %d, want %d", c.x, c.y, got, c.want)
		}
	}

	// Every row r holds 2*min(r, size-1-r)+1 pixels.
	counts := []int{1, 3, 5, 7, 5, 3, 1}
	for y, want := range counts {
		got := 0
		for x := 0; x < 7; x++ {
			if k.GetUCharAt(y, x) != 0 {
				got++
			}
		}
		if got != want {
			t.Errorf("Row %d has %d pixels, want %d", y, got, want)
		}
	}
}

func TestCompositeEmptyScene(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	if _, err := Composite(empty, DefaultParams()); err == nil {
		t.Error("Expected error for empty scene")
	}
}
