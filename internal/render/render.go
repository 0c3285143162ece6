// Package render produces RGBA overlay images for inspecting segmentation
// and evaluation output over the original scene.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"gocv.io/x/gocv"

	"slick-mapper/internal/evaluate"
	"slick-mapper/internal/sarimage"
)

// Overlay colors. Alpha weights how strongly the class color is blended over
// the scene backdrop.
var (
	colorTP   = color.RGBA{R: 0, G: 200, B: 0, A: 255}
	colorFP   = color.RGBA{R: 220, G: 0, B: 0, A: 255}
	colorFN   = color.RGBA{R: 0, G: 80, B: 255, A: 255}
	colorLand = color.RGBA{R: 180, G: 140, B: 60, A: 255}
	colorOil  = color.RGBA{R: 140, G: 0, B: 200, A: 255}
)

const blendWeight = 0.6

// Options configures overlay rendering.
type Options struct {
	BlendWeight float64 // Class color weight over the scene backdrop, in [0, 1]
}

// DefaultOptions returns overlay defaults.
func DefaultOptions() Options {
	return Options{BlendWeight: blendWeight}
}

// ConfusionOverlay blends the evaluation confusion classes over the
// grayscale scene: green where prediction and truth agree on oil, red for
// false alarms, blue for misses.
func ConfusionOverlay(scene, confusion gocv.Mat, opts Options) (*image.RGBA, error) {
	if scene.Rows() != confusion.Rows() || scene.Cols() != confusion.Cols() {
		return nil, fmt.Errorf("%w: %dx%d vs %dx%d", evaluate.ErrShapeMismatch,
			scene.Cols(), scene.Rows(), confusion.Cols(), confusion.Rows())
	}

	rows, cols := scene.Rows(), scene.Cols()
	backdrop := sarimage.ToGrayImage(scene)
	img := image.NewRGBA(image.Rect(0, 0, cols, rows))
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			g := backdrop.GrayAt(x, y).Y
			base := color.RGBA{R: g, G: g, B: g, A: 255}
			switch confusion.GetUCharAt(y, x) {
			case evaluate.ClassTP:
				img.SetRGBA(x, y, blend(base, colorTP, opts.BlendWeight))
			case evaluate.ClassFP:
				img.SetRGBA(x, y, blend(base, colorFP, opts.BlendWeight))
			case evaluate.ClassFN:
				img.SetRGBA(x, y, blend(base, colorFN, opts.BlendWeight))
			default:
				img.SetRGBA(x, y, base)
			}
		}
	}
	return img, nil
}

// LandSeaOverlay blends the compositor masks over the grayscale scene: tan
// for land, purple for oil.
func LandSeaOverlay(scene, land, oil gocv.Mat, opts Options) (*image.RGBA, error) {
	if scene.Rows() != land.Rows() || scene.Cols() != land.Cols() ||
		scene.Rows() != oil.Rows() || scene.Cols() != oil.Cols() {
		return nil, fmt.Errorf("%w: scene %dx%d", evaluate.ErrShapeMismatch,
			scene.Cols(), scene.Rows())
	}

	rows, cols := scene.Rows(), scene.Cols()
	backdrop := sarimage.ToGrayImage(scene)
	img := image.NewRGBA(image.Rect(0, 0, cols, rows))
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			g := backdrop.GrayAt(x, y).Y
			base := color.RGBA{R: g, G: g, B: g, A: 255}
			switch {
			case land.GetUCharAt(y, x) != 0:
				img.SetRGBA(x, y, blend(base, colorLand, opts.BlendWeight))
			case oil.GetUCharAt(y, x) != 0:
				img.SetRGBA(x, y, blend(base, colorOil, opts.BlendWeight))
			default:
				img.SetRGBA(x, y, base)
			}
		}
	}
	return img, nil
}

// WritePNG encodes an overlay to a PNG file.
func WritePNG(path string, img *image.RGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return nil
}

// blend mixes the class color over the base gray with weight w.
func blend(base, over color.RGBA, w float64) color.RGBA {
	mix := func(a, b uint8) uint8 {
		return uint8(float64(a)*(1-w) + float64(b)*w)
	}
	return color.RGBA{
		R: mix(base.R, over.R),
		G: mix(base.G, over.G),
		B: mix(base.B, over.B),
		A: 255,
	}
}
