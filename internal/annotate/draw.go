package annotate

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/sheet-grader/internal/grading"
)

// Drawing geometry.
const (
	BoxThickness = 2
	LabelOffset  = 12 // label baseline sits this far above the number box
)

// Palette maps each verdict to its outline colour.
type Palette map[grading.Verdict]colorful.Color

// DefaultPalette colours verdicts green, red, yellow and orange for Correct,
// Wrong, NotAttempted and NoKey.
func DefaultPalette() Palette {
	return Palette{
		grading.Correct:      mustHex("#00ff00"),
		grading.Wrong:        mustHex("#ff0000"),
		grading.NotAttempted: mustHex("#ffff00"),
		grading.NoKey:        mustHex("#ffa500"),
	}
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Color returns the RGBA colour for v; unknown verdicts draw in gray.
func (p Palette) Color(v grading.Verdict) color.RGBA {
	c, ok := p[v]
	if !ok {
		c = colorful.Color{R: 0.5, G: 0.5, B: 0.5}
	}
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// Draw returns a copy of page with every mark drawn on it. page is not
// modified.
func Draw(page image.Image, marks []grading.Mark, palette Palette) *image.NRGBA {
	out := imaging.Clone(page)
	for _, m := range marks {
		col := palette.Color(m.Verdict)
		drawLabel(out, m.Number.Min.X, m.Number.Min.Y-LabelOffset, m.Label, col)
		drawBox(out, m.Number, col)
		if m.Option != nil {
			drawBox(out, *m.Option, col)
		}
	}
	return out
}

// drawBox outlines r with a BoxThickness stroke straddling its edges.
func drawBox(img draw.Image, r image.Rectangle, col color.Color) {
	outer := image.Rect(r.Min.X-1, r.Min.Y-1, r.Max.X+1, r.Max.Y+1)
	inner := image.Rect(r.Min.X+1, r.Min.Y+1, r.Max.X-1, r.Max.Y-1)
	src := image.NewUniform(col)

	bands := []image.Rectangle{
		image.Rect(outer.Min.X, outer.Min.Y, outer.Max.X, inner.Min.Y), // top
		image.Rect(outer.Min.X, inner.Max.Y, outer.Max.X, outer.Max.Y), // bottom
		image.Rect(outer.Min.X, inner.Min.Y, inner.Min.X, inner.Max.Y), // left
		image.Rect(inner.Max.X, inner.Min.Y, outer.Max.X, inner.Max.Y), // right
	}
	for _, b := range bands {
		b = b.Intersect(img.Bounds())
		if !b.Empty() {
			draw.Draw(img, b, src, image.Point{}, draw.Src)
		}
	}
}

// drawLabel draws text with its baseline starting at (x, y)
func drawLabel(img draw.Image, x, y int, text string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}
