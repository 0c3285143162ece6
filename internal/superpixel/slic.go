// Package superpixel over-segments a grayscale scene into compact clusters
// of similar intensity, used by the superpixel segmentation strategy.
package superpixel

import (
	"fmt"
	"math"

	"gocv.io/x/gocv"

	"slick-mapper/pkg/geometry"
)

// Options configures SLIC over-segmentation.
type Options struct {
	Count       int     // Target number of superpixels
	Compactness float64 // Spatial regularity weight; higher gives squarer clusters
	Iterations  int     // Assignment/update rounds
}

// DefaultOptions returns clustering defaults for medium-resolution scenes.
func DefaultOptions() Options {
	return Options{
		Count:       200,
		Compactness: 10.0,
		Iterations:  10,
	}
}

// Validate rejects out-of-range clustering knobs.
func (o Options) Validate() error {
	if o.Count < 2 {
		return fmt.Errorf("superpixel count %d must be >= 2", o.Count)
	}
	if o.Compactness <= 0 {
		return fmt.Errorf("compactness %.2f must be positive", o.Compactness)
	}
	if o.Iterations < 1 {
		return fmt.Errorf("iteration count %d must be >= 1", o.Iterations)
	}
	return nil
}

// Segmentation holds per-pixel superpixel labels for one scene.
type Segmentation struct {
	Labels []int // Row-major label per pixel
	Count  int   // Number of distinct labels
	Width  int
	Height int
}

type cluster struct {
	intensity float64
	x, y      float64
}

// Segment runs grid-seeded SLIC clustering over a single-channel image.
// Distance combines squared intensity difference with squared spatial
// distance scaled by the compactness weight.
func Segment(gray gocv.Mat, opts Options) (*Segmentation, error) {
	if gray.Empty() {
		return nil, fmt.Errorf("empty image")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	w, h := gray.Cols(), gray.Rows()
	sz := w * h
	if opts.Count > sz {
		return nil, fmt.Errorf("superpixel count %d exceeds pixel count %d", opts.Count, sz)
	}

	step := int(math.Sqrt(float64(sz)/float64(opts.Count)) + 0.5)
	if step < 2 {
		step = 2
	}

	vals := make([]float64, sz)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			vals[y*w+x] = float64(gray.GetUCharAt(y, x))
		}
	}

	clusters := seedClusters(vals, w, h, step)
	labels := make([]int, sz)
	dists := make([]float64, sz)
	invwt := 1.0 / ((float64(step) / opts.Compactness) * (float64(step) / opts.Compactness))

	for iter := 0; iter < opts.Iterations; iter++ {
		for i := range dists {
			dists[i] = math.MaxFloat64
			labels[i] = -1
		}
		for label, c := range clusters {
			assignWindow(vals, w, h, step, invwt, c, label, labels, dists)
		}
		recenterClusters(vals, w, h, labels, clusters)
	}

	// Pixels a window never reached fall back to the nearest seed grid cell.
	for i, l := range labels {
		if l < 0 {
			labels[i] = nearestCluster(clusters, float64(i%w), float64(i/w))
		}
	}

	count, merged := mergeFragments(labels, w, h, step)
	return &Segmentation{Labels: merged, Count: count, Width: w, Height: h}, nil
}

// seedClusters places initial cluster centers on a regular grid.
func seedClusters(vals []float64, w, h, step int) []*cluster {
	var clusters []*cluster
	for y := step / 2; y < h; y += step {
		for x := step / 2; x < w; x += step {
			clusters = append(clusters, &cluster{
				intensity: vals[y*w+x],
				x:         float64(x),
				y:         float64(y),
			})
		}
	}
	return clusters
}

// assignWindow labels pixels within one step of the cluster center when the
// combined intensity/spatial distance beats the current best.
func assignWindow(vals []float64, w, h, step int, invwt float64, c *cluster, label int, labels []int, dists []float64) {
	fstep := float64(step)
	y1 := int(math.Max(0, c.y-fstep))
	y2 := int(math.Min(float64(h), c.y+fstep))
	x1 := int(math.Max(0, c.x-fstep))
	x2 := int(math.Min(float64(w), c.x+fstep))

	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			i := y*w + x
			di := vals[i] - c.intensity
			dx := float64(x) - c.x
			dy := float64(y) - c.y
			dist := di*di + (dx*dx+dy*dy)*invwt
			if dist < dists[i] {
				dists[i] = dist
				labels[i] = label
			}
		}
	}
}

// recenterClusters moves each center to the mean position and intensity of
// its assigned pixels.
func recenterClusters(vals []float64, w, h int, labels []int, clusters []*cluster) {
	n := len(clusters)
	sumI := make([]float64, n)
	sumX := make([]float64, n)
	sumY := make([]float64, n)
	size := make([]float64, n)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			label := labels[i]
			if label < 0 {
				continue
			}
			sumI[label] += vals[i]
			sumX[label] += float64(x)
			sumY[label] += float64(y)
			size[label]++
		}
	}

	for j, c := range clusters {
		if size[j] == 0 {
			continue
		}
		c.intensity = sumI[j] / size[j]
		c.x = sumX[j] / size[j]
		c.y = sumY[j] / size[j]
	}
}

func nearestCluster(clusters []*cluster, x, y float64) int {
	best := 0
	bestDist := math.MaxFloat64
	for i, c := range clusters {
		dx := c.x - x
		dy := c.y - y
		d := dx*dx + dy*dy
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// mergeFragments relabels components in raster order and absorbs fragments
// smaller than a quarter of the expected superpixel size into an adjacent
// label, so every returned label is a single connected region.
func mergeFragments(labels []int, w, h, step int) (int, []int) {
	dx4 := [4]int{-1, 0, 1, 0}
	dy4 := [4]int{0, -1, 0, 1}

	sz := w * h
	minSize := (step * step) >> 2

	relabeled := make([]int, sz)
	for i := range relabeled {
		relabeled[i] = -1
	}

	xvec := make([]int, sz)
	yvec := make([]int, sz)
	label := 0
	adjacent := 0

	for j := 0; j < h; j++ {
		for k := 0; k < w; k++ {
			idx := j*w + k
			if relabeled[idx] >= 0 {
				continue
			}
			relabeled[idx] = label
			xvec[0], yvec[0] = k, j

			// Remember a neighboring finished label in case this segment
			// turns out to be a fragment.
			for n := 0; n < 4; n++ {
				x, y := k+dx4[n], j+dy4[n]
				if x >= 0 && x < w && y >= 0 && y < h && relabeled[y*w+x] >= 0 {
					adjacent = relabeled[y*w+x]
				}
			}

			count := 1
			for c := 0; c < count; c++ {
				for n := 0; n < 4; n++ {
					x, y := xvec[c]+dx4[n], yvec[c]+dy4[n]
					if x < 0 || x >= w || y < 0 || y >= h {
						continue
					}
					nidx := y*w + x
					if relabeled[nidx] < 0 && labels[idx] == labels[nidx] {
						xvec[count], yvec[count] = x, y
						relabeled[nidx] = label
						count++
					}
				}
			}

			if count <= minSize {
				for c := 0; c < count; c++ {
					relabeled[yvec[c]*w+xvec[c]] = adjacent
				}
				label--
			}
			label++
		}
	}

	return label, relabeled
}

// MeanIntensities returns the mean image intensity of every superpixel.
func (s *Segmentation) MeanIntensities(gray gocv.Mat) []float64 {
	sums := make([]float64, s.Count)
	sizes := make([]float64, s.Count)
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			label := s.Labels[y*s.Width+x]
			sums[label] += float64(gray.GetUCharAt(y, x))
			sizes[label]++
		}
	}
	means := make([]float64, s.Count)
	for i := range means {
		if sizes[i] > 0 {
			means[i] = sums[i] / sizes[i]
		}
	}
	return means
}

// Centroids returns the pixel-average position of every superpixel.
func (s *Segmentation) Centroids() []geometry.Point2D {
	sumX := make([]float64, s.Count)
	sumY := make([]float64, s.Count)
	sizes := make([]float64, s.Count)
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			label := s.Labels[y*s.Width+x]
			sumX[label] += float64(x)
			sumY[label] += float64(y)
			sizes[label]++
		}
	}
	pts := make([]geometry.Point2D, s.Count)
	for i := range pts {
		if sizes[i] > 0 {
			pts[i] = geometry.NewPoint2D(sumX[i]/sizes[i], sumY[i]/sizes[i])
		}
	}
	return pts
}
