// Command segtest runs one segmentation strategy over a SAR scene, scores
// the result against a ground-truth mask, and optionally writes a confusion
// overlay image.
package main

import (
	"flag"
	"fmt"
	"os"

	"slick-mapper/internal/evaluate"
	"slick-mapper/internal/render"
	"slick-mapper/internal/sarimage"
	"slick-mapper/internal/segment"
	"slick-mapper/internal/version"
)

func main() {
	imagePath := flag.String("image", "", "Path to SAR scene (TIFF, PNG, or JPEG)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	truthPath := flag.String("truth", "", "Path to ground-truth mask image")
	strategyName := flag.String("strategy", "automatic", "Strategy: manual, automatic, adaptive, superpixel, fuzzy, or kmeans")
	offset := flag.Float64("offset", 0, "Manual threshold offset in [-1, 1]")
	minArea := flag.Int("minarea", segment.DefaultParams().MinArea, "Minimum blob area in pixels (strict)")
	overlayPath := flag.String("overlay", "", "Write confusion overlay PNG to this path")
	flag.Parse()

	if *showVersion {
		fmt.Printf("segtest %s (commit %s, built %s)\n",
			version.Version, version.GitCommit, version.BuildTime)
		return
	}

	if *imagePath == "" || *truthPath == "" {
		fmt.Println("Usage: segtest -image <path> -truth <path> [-strategy automatic] [-offset 0] [-minarea 50] [-overlay out.png]")
		os.Exit(1)
	}

	id, err := segment.ParseStrategy(*strategyName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	scene, err := sarimage.Load(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load scene: %v\n", err)
		os.Exit(1)
	}
	defer scene.Close()
	fmt.Printf("Loaded scene: %dx%d pixels\n", scene.Width, scene.Height)

	truth, err := sarimage.LoadTruth(*truthPath, sarimage.DefaultTruthParams())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load ground truth: %v\n", err)
		os.Exit(1)
	}
	defer truth.Close()

	params := segment.DefaultParams().WithOffset(*offset).WithMinArea(*minArea)
	fmt.Printf("Strategy: %s\n", id)
	fmt.Printf("\nSegmentation parameters:\n")
	fmt.Printf("  Despeckle window: %d\n", params.DespeckleWindow)
	fmt.Printf("  Threshold offset: %.2f\n", params.Offset)
	fmt.Printf("  Adaptive block: %d, sensitivity: %.2f\n", params.AdaptiveBlock, params.Sensitivity)
	fmt.Printf("  Superpixels: %d, compactness: %.1f\n", params.SuperpixelCount, params.Compactness)
	fmt.Printf("  Clusters: %d (dark %d)\n", params.Clusters, params.DarkClusters)
	fmt.Printf("  Opening radius: %d, min area: %d\n", params.OpenRadius, params.MinArea)

	fmt.Printf("\nSegmenting...\n")
	mask, err := segment.Run(id, scene.Gray, params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Segmentation failed: %v\n", err)
		os.Exit(1)
	}
	defer mask.Close()

	result, err := evaluate.Compare(mask, truth.Oil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Evaluation failed: %v\n", err)
		os.Exit(1)
	}
	defer result.Close()

	fmt.Printf("\nConfusion counts:\n")
	fmt.Printf("  %-16s %10d\n", "True positive", result.TruePositive)
	fmt.Printf("  %-16s %10d\n", "False positive", result.FalsePositive)
	fmt.Printf("  %-16s %10d\n", "False negative", result.FalseNegative)
	fmt.Printf("  %-16s %10d\n", "True negative", result.TrueNegative)

	fmt.Printf("\nScores:\n")
	fmt.Printf("  %-16s %10.4f\n", "Jaccard", result.Jaccard)
	fmt.Printf("  %-16s %10.4f\n", "Dice", result.Dice)
	fmt.Printf("  %-16s %10.4f\n", "Boundary F1", result.BoundaryF1)

	if *overlayPath != "" {
		img, err := render.ConfusionOverlay(scene.Gray, result.Confusion, render.DefaultOptions())
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
