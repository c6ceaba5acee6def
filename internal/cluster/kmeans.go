// Package cluster groups projected catalog entries of the same product name by
// physical size.
package cluster

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"catalogsize/internal/config"
)

// K-means errors.
var (
	ErrNoPoints  = errors.New("no points to cluster")
	ErrInvalidK  = errors.New("k must be positive")
	ErrNoCenters = errors.New("model has no centers")
)

// Point is one entry in size space: X is max_cm, Y is min_cm.
type Point struct {
	X, Y float64
}

func (p Point) dist2(q Point) float64 {
	dx, dy := p.X-q.X, p.Y-q.Y
	return dx*dx + dy*dy
}

// KMeans configures a k-means++ / Lloyd clustering.
type KMeans struct {
	K             int
	Runs          int
	MaxIterations int
	Tolerance     float64
	Seed          uint64
}

// NewKMeans creates a clustering with k clusters and the configured runs,
// iteration limit, tolerance and seed.
func NewKMeans(cfg config.ClusteringConfig, k int) KMeans {
	return KMeans{
		K:             k,
		Runs:          cfg.Runs,
		MaxIterations: cfg.MaxIterations,
		Tolerance:     cfg.Tolerance,
		Seed:          cfg.Seed,
	}
}

// Model is a fitted clustering.
type Model struct {
	Centers    []Point
	Labels     []int
	Inertia    float64
	Iterations int
}

// Predict returns the index of the center nearest to p.
func (m *Model) Predict(p Point) (int, error) {
	if len(m.Centers) == 0 {
		return 0, ErrNoCenters
	}

	return nearest(m.Centers, p), nil
}

// Fit clusters points and returns the run with the lowest inertia. K is
// clamped to the number of points. Equal seeds give equal models.
func (km KMeans) Fit(points []Point) (*Model, error) {
	if len(points) == 0 {
		return nil, ErrNoPoints
	}

	if km.K <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidK, km.K)
	}

	k := min(km.K, len(points))
	runs := max(km.Runs, 1)
	iterations := max(km.MaxIterations, 1)

	rng := rand.New(rand.NewPCG(km.Seed, km.Seed^0x9e3779b97f4a7c15))

	var best *Model

	for range runs {
		m := lloyd(points, seedCenters(points, k, rng), iterations, km.Tolerance)
		if best == nil || m.Inertia < best.Inertia {
			best = m
		}
	}

	return best, nil
}

// seedCenters picks k initial centers with k-means++ weighting.
func seedCenters(points []Point, k int, rng *rand.Rand) []Point {
	centers := make([]Point, 0, k)
	centers = append(centers, points[rng.IntN(len(points))])

	d2 := make([]float64, len(points))

	for len(centers) < k {
		total := 0.0

		for i, p := range points {
			d2[i] = p.dist2(centers[nearest(centers, p)])
			total += d2[i]
		}

		// Every point already sits on a center.
		if total == 0 {
			centers = append(centers, points[rng.IntN(len(points))])
			continue
		}

		target := rng.Float64() * total
		chosen := len(points) - 1

		for i, d := range d2 {
			target -= d
			if target < 0 {
				chosen = i
				break
			}
		}

		centers = append(centers, points[chosen])
	}

	return centers
}

func lloyd(points []Point, centers []Point, iterations int, tolerance float64) *Model {
	labels := make([]int, len(points))
	m := &Model{Centers: centers, Labels: labels}

	for m.Iterations < iterations {
		m.Iterations++

		for i, p := range points {
			labels[i] = nearest(centers, p)
		}

		sums := make([]Point, len(centers))
		counts := make([]int, len(centers))

		for i, p := range points {
			sums[labels[i]].X += p.X
			sums[labels[i]].Y += p.Y
			counts[labels[i]]++
		}

		shift := 0.0

		for c := range centers {
			// An empty cluster keeps its previous center.
			if counts[c] == 0 {
				continue
			}

			next := Point{X: sums[c].X / float64(counts[c]), Y: sums[c].Y / float64(counts[c])}
			shift += next.dist2(centers[c])
			centers[c] = next
		}

		if shift <= tolerance {
			break
		}
	}

	m.Inertia = 0

	for i, p := range points {
		labels[i] = nearest(centers, p)
		m.Inertia += p.dist2(centers[labels[i]])
	}

	return m
}

func nearest(centers []Point, p Point) int {
	best, bestD := 0, math.Inf(1)

	for i, c := range centers {
		if d := p.dist2(c); d < bestD {
			best, bestD = i, d
		}
	}

	return best
}
