package layout

import (
	"math"
	"sort"

	"github.com/ironsheep/sheet-grader/internal/detection"
)

// MinVerticalTolerance is the floor for the row-matching tolerance in pixels.
const MinVerticalTolerance = 25

// Pair is one answered question: a number region and, when found, the option
// region on the same line.
type Pair struct {
	Number detection.Region  `json:"number"`
	Option *detection.Region `json:"option,omitempty"`

	// OptionIndex is the position of Option in the sorted right column,
	// or -1 when the pair has no option.
	OptionIndex int `json:"option_index"`
}

// HasOption reports whether an option region was matched.
func (p Pair) HasOption() bool {
	return p.Option != nil
}

// VerticalTolerance returns max(25, round(0.9 * median height)) over all
// regions. An empty set yields the floor.
func VerticalTolerance(regions []detection.Region) float64 {
	if len(regions) == 0 {
		return MinVerticalTolerance
	}
	heights := make([]float64, len(regions))
	for i, r := range regions {
		heights[i] = float64(r.H)
	}
	return math.Max(MinVerticalTolerance, math.Round(0.9*median(heights)))
}

// median returns the middle value, averaging the two middle values for an
// even count. values is reordered.
func median(values []float64) float64 {
	sort.Float64s(values)
	n := len(values)
	if n%2 == 1 {
		return values[n/2]
	}
	return (values[n/2-1] + values[n/2]) / 2
}

// MatchRows pairs left-column regions with right-column regions. Both slices
// must already be sorted by ascending vertical center.
//
// # Algorithm
//
// A pointer into right starts at 0. For each left region, right regions are
// scanned from the pointer and the first one whose vertical center lies
// strictly within tolerance is taken; the pointer then moves past it, so no
// right region is used twice and matches never cross. A left region with no
// match within the remaining right regions gets a pair with no option.
//
// Right regions the scan never reaches are not reported.
func MatchRows(left, right []detection.Region, tolerance float64) []Pair {
	pairs := make([]Pair, 0, len(left))
	next := 0

	for _, l := range left {
		pair := Pair{Number: l, OptionIndex: -1}
		for i := next; i < len(right); i++ {
			if math.Abs(l.CY-right[i].CY) < tolerance {
				option := right[i]
				pair.Option = &option
				pair.OptionIndex = i
				next = i + 1
				break
			}
		}
		pairs = append(pairs, pair)
	}

	return pairs
}

// Pairs runs the full layout stage: column split, tolerance, row matching.
func Pairs(regions []detection.Region) []Pair {
	left, right := SplitColumns(regions)
	return MatchRows(left, right, VerticalTolerance(regions))
}
