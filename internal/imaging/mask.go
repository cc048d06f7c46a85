package imaging

import "image"

// Mask is a binary foreground map. A true bit marks ink.
//
// Pixels are stored row-major; (0,0) is the top-left corner.
type Mask struct {
	Width  int
	Height int
	Bits   []bool
}

// NewMask returns an empty (all background) mask of the given size.
func NewMask(width, height int) *Mask {
	return &Mask{
		Width:  width,
		Height: height,
		Bits:   make([]bool, width*height),
	}
}

// MaskFromGray marks every pixel of g whose value equals ink.
func MaskFromGray(g *image.Gray, ink uint8) *Mask {
	b := g.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		row := g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < b.Dx(); x++ {
			m.Bits[y*m.Width+x] = row[x] == ink
		}
	}
	return m
}

// At reports whether (x, y) is foreground. Out-of-range coordinates are background.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Bits[y*m.Width+x]
}

// Set marks (x, y) as foreground or background.
func (m *Mask) Set(x, y int, v bool) {
	m.Bits[y*m.Width+x] = v
}

// Count returns the number of foreground pixels.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// Gray renders the mask as a grayscale image with ink at 255.
func (m *Mask) Gray() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, b := range m.Bits {
		if b {
			g.Pix[i] = 255
		}
	}
	return g
}

// Close performs a morphological closing (dilate, then erode) with a 3x3
// rectangular structuring element. Pixels outside the mask never influence
// the result, matching the usual morphology border convention.
func (m *Mask) Close() *Mask {
	return m.dilate().erode()
}

func (m *Mask) dilate() *Mask {
	out := NewMask(m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			out.Bits[y*m.Width+x] = m.any3x3(x, y)
		}
	}
	return out
}

func (m *Mask) erode() *Mask {
	out := NewMask(m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			out.Bits[y*m.Width+x] = m.all3x3(x, y)
		}
	}
	return out
}

func (m *Mask) any3x3(x, y int) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if m.At(x+dx, y+dy) {
				return true
			}
		}
	}
	return false
}

func (m *Mask) all3x3(x, y int) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			px, py := x+dx, y+dy
			if px < 0 || py < 0 || px >= m.Width || py >= m.Height {
				continue
			}
			if !m.Bits[py*m.Width+px] {
				return false
			}
		}
	}
	return true
}
