// Package sarimage provides SAR scene loading, grayscale normalization,
// and ground-truth decoding.
package sarimage

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"

	_ "golang.org/x/image/tiff"
)

// Scene holds a single-channel radar intensity image ready for segmentation.
// Pixel values span the full 8-bit range; the [0,1] intensity contract of
// external callers is mapped onto 0-255 at ingest.
type Scene struct {
	Path   string   // Original file path, empty for in-memory scenes
	Gray   gocv.Mat // Single-channel CV8U intensity image
	Width  int
	Height int
}

// Load reads an image file (TIFF, PNG, or JPEG) and converts it to a
// grayscale scene.
func Load(path string) (*Scene, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	scene := FromImage(img)
	scene.Path = path
	return scene, nil
}

// FromImage converts a decoded image to a grayscale scene using the
// standard luma weights.
func FromImage(img image.Image) *Scene {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8U)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			mat.SetUCharAt(y, x, uint8((19595*r+38470*g+7471*b+1<<15)>>24))
		}
	}

	return &Scene{Gray: mat, Width: w, Height: h}
}

// FromFloats builds a scene from a row-major intensity array normalized to
// [0,1]. Values outside [0,1] are rejected rather than clamped.
func FromFloats(vals [][]float64) (*Scene, error) {
	h := len(vals)
	if h == 0 {
		return nil, fmt.Errorf("empty intensity array")
	}
	w := len(vals[0])
	if w == 0 {
		return nil, fmt.Errorf("empty intensity row")
	}

	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8U)
	for y, row := range vals {
		if len(row) != w {
			mat.Close()
			return nil, fmt.Errorf("ragged intensity array: row %d has %d columns, want %d", y, len(row), w)
		}
		for x, v := range row {
			if v < 0 || v > 1 {
				mat.Close()
				return nil, fmt.Errorf("intensity %.4f at (%d,%d) outside [0,1]", v, x, y)
			}
			mat.SetUCharAt(y, x, uint8(v*255+0.5))
		}
	}

	return &Scene{Gray: mat, Width: w, Height: h}, nil
}

// Close releases the underlying Mat.
func (s *Scene) Close() {
	if s != nil && !s.Gray.Empty() {
		s.Gray.Close()
	}
}

// ToGrayImage converts a single-channel Mat to an image.Gray.
func ToGrayImage(mat gocv.Mat) *image.Gray {
	rows, cols := mat.Rows(), mat.Cols()
	img := image.NewGray(image.Rect(0, 0, cols, rows))
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			img.SetGray(x, y, color.Gray{Y: mat.GetUCharAt(y, x)})
		}
	}
	return img
}

// SupportedFormats returns the list of supported image formats.
func SupportedFormats() []string {
	return []string{".tiff", ".tif", ".png", ".jpg", ".jpeg"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
