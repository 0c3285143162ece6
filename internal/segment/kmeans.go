package segment

import (
	"fmt"
	"sort"

	"gocv.io/x/gocv"

	"slick-mapper/internal/preprocess"
)

// kmeansStrategy clusters pixel intensities with k-means and takes the
// darkest cluster(s) as slick candidates. Ties between equal centroids break
// toward the lower cluster index.
type kmeansStrategy struct{}

func (kmeansStrategy) Name() string { return "kmeans" }

func (kmeansStrategy) Segment(scene gocv.Mat, p Params) (gocv.Mat, error) {
	despeckled, err := preprocess.Despeckle(scene, p.DespeckleWindow)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer despeckled.Close()

	labels, centers, err := clusterIntensities(despeckled, p.Clusters)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer labels.Close()

	keep := darkestClusters(centers, p.DarkClusters)
	return selectClusters(labels, keep, despeckled.Rows(), despeckled.Cols()), nil
}

// KMeansLandMask clusters the scene's intensities and returns a mask of the
// brightest cluster, which over coastal scenes is dominated by land return.
func KMeansLandMask(scene gocv.Mat, p Params) (gocv.Mat, error) {
	if err := p.Validate(KMeans); err != nil {
		return gocv.NewMat(), err
	}

	despeckled, err := preprocess.Despeckle(scene, p.DespeckleWindow)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer despeckled.Close()

	labels, centers, err := clusterIntensities(despeckled, p.Clusters)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer labels.Close()

	brightest := 0
	for i, c := range centers {
		if c > centers[brightest] {
			brightest = i
		}
	}
	return selectClusters(labels, map[int]bool{brightest: true}, despeckled.Rows(), despeckled.Cols()), nil
}

// clusterIntensities runs k-means over the flattened pixel intensities and
// returns the per-pixel label column and the cluster centroid intensities.
func clusterIntensities(gray gocv.Mat, k int) (gocv.Mat, []float64, error) {
	rows, cols := gray.Rows(), gray.Cols()
	n := rows * cols
	if k > n {
		return gocv.NewMat(), nil, fmt.Errorf("cluster count %d exceeds pixel count %d", k, n)
	}

	pixels := gocv.NewMatWithSize(n, 1, gocv.MatTypeCV32F)
	defer pixels.Close()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			pixels.SetFloatAt(y*cols+x, 0, float32(gray.GetUCharAt(y, x)))
		}
	}

	labels := gocv.NewMat()
	centersMat := gocv.NewMat()
	defer centersMat.Close()

	criteria := gocv.NewTermCriteria(gocv.EPS+gocv.MaxIter, 100, 0.2)
	gocv.KMeans(pixels, k, &labels, criteria, 10, gocv.KMeansRandomCenters, &centersMat)

	centers := make([]float64, k)
	for i := 0; i < k; i++ {
		centers[i] = float64(centersMat.GetFloatAt(i, 0))
	}
	return labels, centers, nil
}

// darkestClusters returns the indexes of the count lowest centroids.
func darkestClusters(centers []float64, count int) map[int]bool {
	order := make([]int, len(centers))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return centers[order[a]] < centers[order[b]]
	})

	if count > len(order) {
		count = len(order)
	}
	keep := make(map[int]bool, count)
	for _, idx := range order[:count] {
		keep[idx] = true
	}
	return keep
}

// selectClusters rebuilds a binary mask from the cluster labels kept.
func selectClusters(labels gocv.Mat, keep map[int]bool, rows, cols int) gocv.Mat {
	mask := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8U)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if keep[int(labels.GetIntAt(y*cols+x, 0))] {
				mask.SetUCharAt(y, x, 255)
			}
		}
	}
	return mask
}
