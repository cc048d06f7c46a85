package detection

import "image"

// Region is a bounding box of handwritten ink on the page together with its
// center. Regions are immutable once detected.
type Region struct {
	X  int     `json:"x"`
	Y  int     `json:"y"`
	W  int     `json:"width"`
	H  int     `json:"height"`
	CX float64 `json:"center_x"`
	CY float64 `json:"center_y"`
}

// NewRegion builds a Region from a rectangle with an exclusive max corner.
func NewRegion(r image.Rectangle) Region {
	return Region{
		X:  r.Min.X,
		Y:  r.Min.Y,
		W:  r.Dx(),
		H:  r.Dy(),
		CX: float64(r.Min.X) + float64(r.Dx())/2,
		CY: float64(r.Min.Y) + float64(r.Dy())/2,
	}
}

// Rect returns the region as an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

// MinSize returns the smallest accepted region width and height for a page
// of the given size: max(8, W/150) and max(12, H/60), using integer division.
func MinSize(pageWidth, pageHeight int) (minW, minH int) {
	return max(8, pageWidth/150), max(12, pageHeight/60)
}

// FilterBySize converts boxes to regions, dropping those smaller than
// MinSize for the page. Box order is preserved.
func FilterBySize(boxes []image.Rectangle, pageWidth, pageHeight int) []Region {
	minW, minH := MinSize(pageWidth, pageHeight)
	regions := make([]Region, 0, len(boxes))
	for _, b := range boxes {
		if b.Dx() >= minW && b.Dy() >= minH {
			regions = append(regions, NewRegion(b))
		}
	}
	return regions
}
