package detection

import (
	"image"

	"github.com/ironsheep/sheet-grader/internal/imaging"
)

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// ExternalComponents returns the bounding box of every outermost connected
// ink component in m.
//
// Ink pixels are grouped with 8-connectivity. A component that lies entirely
// inside a hole of another component (a dot drawn inside a "0", for example)
// is not outermost and is omitted, so each returned box corresponds to one
// external contour of the mask.
//
// # Algorithm
//
//  1. Flood-fill the paper reachable from the page border using 4-connectivity
//     (the dual of 8-connected ink), marking it as exterior.
//  2. Flood-fill each ink component with 8-connectivity and record its box.
//  3. Keep a component when any of its pixels touches the page border or an
//     exterior paper pixel.
//
// Boxes are returned in raster order of each component's first pixel
// (top-to-bottom, then left-to-right).
func ExternalComponents(m *imaging.Mask) []image.Rectangle {
	width, height := m.Width, m.Height
	exterior := markExterior(m)
	visited := make([]bool, width*height)

	boxes := make([]image.Rectangle, 0)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			if !m.Bits[i] || visited[i] {
				continue
			}
			contour := make([]Point, 0)
			floodFill(m, visited, x, y, &contour)

			if !touchesExterior(contour, exterior, width, height) {
				continue
			}
			boxes = append(boxes, boundingBox(contour))
		}
	}

	return boxes
}

// floodFill performs iterative flood-fill of ink pixels from a starting point.
//
// Uses a stack-based approach (not recursive) to avoid stack overflow
// on large strokes. Marks visited pixels and appends them to the contour.
// Uses 8-connectivity (includes diagonal neighbors).
func floodFill(m *imaging.Mask, visited []bool, startX, startY int, contour *[]Point) {
	stack := []Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= m.Width || p.Y < 0 || p.Y >= m.Height {
			continue
		}
		i := p.Y*m.Width + p.X
		if visited[i] || !m.Bits[i] {
			continue
		}

		visited[i] = true
		*contour = append(*contour, p)

		// 8-connected neighbors
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}
}

// markExterior flags every paper pixel that is 4-connected to the page border.
func markExterior(m *imaging.Mask) []bool {
	width, height := m.Width, m.Height
	exterior := make([]bool, width*height)
	stack := make([]Point, 0)

	push := func(x, y int) {
		if x < 0 || y < 0 || x >= width || y >= height {
			return
		}
		i := y*width + x
		if exterior[i] || m.Bits[i] {
			return
		}
		exterior[i] = true
		stack = append(stack, Point{X: x, Y: y})
	}

	for x := 0; x < width; x++ {
		push(x, 0)
		push(x, height-1)
	}
	for y := 0; y < height; y++ {
		push(0, y)
		push(width-1, y)
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		push(p.X+1, p.Y)
		push(p.X-1, p.Y)
		push(p.X, p.Y+1)
		push(p.X, p.Y-1)
	}

	return exterior
}

func touchesExterior(contour []Point, exterior []bool, width, height int) bool {
	for _, p := range contour {
		if p.X == 0 || p.Y == 0 || p.X == width-1 || p.Y == height-1 {
			return true
		}
		if exterior[p.Y*width+p.X-1] || exterior[p.Y*width+p.X+1] ||
			exterior[(p.Y-1)*width+p.X] || exterior[(p.Y+1)*width+p.X] {
			return true
		}
	}
	return false
}

// boundingBox returns the smallest rectangle containing every contour point.
// The maximum edge is exclusive.
func boundingBox(contour []Point) image.Rectangle {
	minX, minY := contour[0].X, contour[0].Y
	maxX, maxY := minX, minY
	for _, p := range contour[1:] {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}
