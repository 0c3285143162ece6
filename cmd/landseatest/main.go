// Command landseatest runs the coastal land/sea compositor over a SAR scene
// and reports mask coverage, optionally writing an overlay image.
package main

import (
	"flag"
	"fmt"
	"os"

	"gocv.io/x/gocv"

	"slick-mapper/internal/evaluate"
	"slick-mapper/internal/landsea"
	"slick-mapper/internal/render"
	"slick-mapper/internal/sarimage"
	"slick-mapper/internal/version"
)

func main() {
	imagePath := flag.String("image", "", "Path to SAR scene (TIFF, PNG, or JPEG)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	truthPath := flag.String("truth", "", "Optional ground-truth mask image with land labels")
	landCut := flag.Float64("landcut", landsea.DefaultParams().LandCut, "Land brightness threshold in (0, 1)")
	smooth := flag.Int("smooth", landsea.DefaultParams().Smooth, "Land mask smoothing radius")
	overlayPath := flag.String("overlay", "", "Write land/sea overlay PNG to this path")
	flag.Parse()

	if *showVersion {
		fmt.Printf("landseatest %s (commit %s, built %s)\n",
			version.Version, version.GitCommit, version.BuildTime)
		return
	}

	if *imagePath == "" {
		fmt.Println("Usage: landseatest -image <path> [-truth <path>] [-landcut 0.6] [-smooth 3] [-overlay out.png]")
		os.Exit(1)
	}

	scene, err := sarimage.Load(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load scene: %v\n", err)
		os.Exit(1)
	}
	defer scene.Close()
	fmt.Printf("Loaded scene: %dx%d pixels\n", scene.Width, scene.Height)

	params := landsea.DefaultParams()
	params.LandCut = *landCut
	params.Smooth = *smooth
	fmt.Printf("\nCompositor parameters:\n")
	fmt.Printf("  Land threshold: %.2f\n", params.LandCut)
	fmt.Printf("  Smoothing radius: %d\n", params.Smooth)
	fmt.Printf("  Min blob area: %d\n", params.Segment.MinArea)

	fmt.Printf("\nCompositing...\n")
	result, err := landsea.Composite(scene.Gray, params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Compositing failed: %v\n", err)
		os.Exit(1)
	}
	defer result.Close()

	total := scene.Width * scene.Height
	landPixels := gocv.CountNonZero(result.Land)
	oilPixels := gocv.CountNonZero(result.Oil)
	fmt.Printf("\nCoverage:\n")
	fmt.Printf("  %-8s %10d px  %6.2f%%\n", "Land", landPixels, 100*float64(landPixels)/float64(total))
	fmt.Printf("  %-8s %10d px  %6.2f%%\n", "Oil", oilPixels, 100*float64(oilPixels)/float64(total))

	if *truthPath != "" {
		tp := sarimage.DefaultTruthParams()
		tp.HasLand = true
		truth, err := sarimage.LoadTruth(*truthPath, tp)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load ground truth: %v\n", err)
			os.Exit(1)
		}
		defer truth.Close()

		oilScore, err := evaluate.Compare(result.Oil, truth.Oil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Oil evaluation failed: %v\n", err)
			os.Exit(1)
		}
		defer oilScore.Close()

		landScore, err := evaluate.Compare(result.Land, truth.Land)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Land evaluation failed: %v\n", err)
			os.Exit(1)
		}
		defer landScore.Close()

		fmt.Printf("\nScores:\n")
		fmt.Printf("  %-16s Jaccard %.4f  Dice %.4f  BF1 %.4f\n", "Oil",
			oilScore.Jaccard, oilScore.Dice, oilScore.BoundaryF1)
		fmt.Printf("  %-16s Jaccard %.4f  Dice %.4f  BF1 %.4f\n", "Land",
			landScore.Jaccard, landScore.Dice, landScore.BoundaryF1)
	}

	if *overlayPath != "" {
		img, err := render.LandSeaOverlay(scene.Gray, result.Land, result.Oil, render.DefaultOptions())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Overlay rendering failed: %v\n", err)
			os.Exit(1)
		}
		if err := render.WritePNG(*overlayPath, img); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nWrote overlay to %s\n", *overlayPath)
	}
}
