package glyph

import (
	"fmt"
	"image"
	"sort"

	"github.com/ironsheep/sheet-grader/internal/detection"
	"github.com/ironsheep/sheet-grader/internal/imaging"
)

// Minimum character box, exclusive: boxes must be taller than minCharHeight
// and wider than minCharWidth.
const (
	minCharHeight = 6
	minCharWidth  = 2
)

// Boxes returns the character boxes of a region crop in left-to-right order.
//
// The crop is binarized with an inverted Otsu threshold and every external
// component taller than 6 and wider than 2 pixels is a character. Boxes with
// the same left edge keep their detection order.
func Boxes(crop *image.Gray) ([]image.Rectangle, error) {
	mask, err := imaging.OtsuInv(crop)
	if err != nil {
		return nil, fmt.Errorf("failed to binarize region: %w", err)
	}

	all := detection.ExternalComponents(mask)
	boxes := make([]image.Rectangle, 0, len(all))
	for _, b := range all {
		if b.Dy() > minCharHeight && b.Dx() > minCharWidth {
			boxes = append(boxes, b)
		}
	}

	sort.SliceStable(boxes, func(i, j int) bool {
		return boxes[i].Min.X < boxes[j].Min.X
	})
	return boxes, nil
}

// Segment returns the grayscale sub-image of each character in crop, left to
// right. An empty result means nothing legible was found.
func Segment(crop *image.Gray) ([]*image.Gray, error) {
	boxes, err := Boxes(crop)
	if err != nil {
		return nil, err
	}

	origin := crop.Bounds().Min
	chars := make([]*image.Gray, 0, len(boxes))
	for _, b := range boxes {
		if sub := imaging.CropPadded(crop, b.Add(origin), 0); sub != nil {
			chars = append(chars, sub)
		}
	}
	return chars, nil
}
