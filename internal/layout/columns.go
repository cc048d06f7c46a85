package layout

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/sheet-grader/internal/detection"
)

// clusterRounds is the fixed number of two-means refinement rounds.
const clusterRounds = 8

// PartitionColumns splits x-centers into two clusters and reports, for each
// input, whether it belongs to the left (smaller mean) cluster.
//
// # Algorithm
//
// One-dimensional two-means: the centers start at the minimum and maximum
// value. Each round assigns every point to the first center when it is
// strictly nearer to it, then moves each center to the mean of its points.
// A center with no points keeps its position. After clusterRounds rounds the
// cluster with the smaller mean is labelled left; an empty cluster is
// compared by its center.
//
// With fewer than two points every point is left.
func PartitionColumns(centers []float64) []bool {
	left := make([]bool, len(centers))
	if len(centers) < 2 {
		for i := range left {
			left[i] = true
		}
		return left
	}

	c1, c2 := centers[0], centers[0]
	for _, x := range centers[1:] {
		c1 = math.Min(c1, x)
		c2 = math.Max(c2, x)
	}

	first := make([]bool, len(centers))
	for round := 0; round < clusterRounds; round++ {
		for i, x := range centers {
			first[i] = math.Abs(x-c1) < math.Abs(x-c2)
		}
		if m, ok := clusterMean(centers, first, true); ok {
			c1 = m
		}
		if m, ok := clusterMean(centers, first, false); ok {
			c2 = m
		}
	}

	mean1, ok := clusterMean(centers, first, true)
	if !ok {
		mean1 = c1
	}
	mean2, ok := clusterMean(centers, first, false)
	if !ok {
		mean2 = c2
	}

	for i := range left {
		if mean1 < mean2 {
			left[i] = first[i]
		} else {
			left[i] = !first[i]
		}
	}
	return left
}

// clusterMean returns the mean of the centers whose assignment equals want.
func clusterMean(centers []float64, assign []bool, want bool) (float64, bool) {
	members := make([]float64, 0, len(centers))
	for i, x := range centers {
		if assign[i] == want {
			members = append(members, x)
		}
	}
	if len(members) == 0 {
		return 0, false
	}
	return stat.Mean(members, nil), true
}

// SplitColumns partitions regions into the left and right columns and sorts
// each column by ascending vertical center. Regions with equal centers keep
// their detection order.
func SplitColumns(regions []detection.Region) (left, right []detection.Region) {
	centers := make([]float64, len(regions))
	for i, r := range regions {
		centers[i] = r.CX
	}
	mask := PartitionColumns(centers)

	left = make([]detection.Region, 0, len(regions))
	right = make([]detection.Region, 0, len(regions))
	for i, r := range regions {
		if mask[i] {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}

	sortByCY(left)
	sortByCY(right)
	return left, right
}

func sortByCY(regions []detection.Region) {
	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].CY < regions[j].CY
	})
}
