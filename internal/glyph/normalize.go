package glyph

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"

	imgutil "github.com/ironsheep/sheet-grader/internal/imaging"
)

// Canvas geometry.
const (
	Size      = 28 // canvas side in pixels
	GlyphSize = 20 // longer side of the scaled glyph
)

// Canvas is a normalized character ready for classification.
type Canvas struct {
	// Pixels holds Size*Size intensities in [0,1], row-major, with ink as the
	// bright value.
	Pixels []float32

	// Raw is the 8-bit canvas before intensity scaling and polarity
	// correction.
	Raw *image.Gray

	// Glyph is the area of Raw covered by the scaled character.
	Glyph image.Rectangle
}

// Normalize maps a character image onto a Size x Size canvas.
//
// # Algorithm
//
//  1. Convert to grayscale and binarize with an inverted Otsu threshold.
//  2. Scale uniformly so the longer side is GlyphSize pixels; the shorter side
//     is rounded half to even with a minimum of 1.
//  3. Center the scaled glyph on a zero canvas.
//  4. Scale intensities to [0,1] and invert when the mean exceeds 0.5, so ink
//     is always the bright minority.
func Normalize(img image.Image) (*Canvas, error) {
	gray := imgutil.ToGray(img)
	b := gray.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("cannot normalize empty image")
	}

	mask, err := imgutil.OtsuInv(gray)
	if err != nil {
		return nil, fmt.Errorf("failed to binarize glyph: %w", err)
	}
	bin := mask.Gray()

	w, h := b.Dx(), b.Dy()
	newW, newH := scaledSize(w, h)

	scaled := image.Image(bin)
	if newW != w || newH != h {
		scaled = imaging.Resize(bin, newW, newH, imaging.Box)
	}

	raw := image.NewGray(image.Rect(0, 0, Size, Size))
	offset := image.Pt((Size-newW)/2, (Size-newH)/2)
	rect := image.Rectangle{Min: offset, Max: offset.Add(image.Pt(newW, newH))}
	draw.Draw(raw, rect, scaled, scaled.Bounds().Min, draw.Src)

	return newCanvas(raw, rect), nil
}

// newCanvas scales raw to [0,1] and flips polarity when the bright value is
// the majority.
func newCanvas(raw *image.Gray, glyph image.Rectangle) *Canvas {
	c := &Canvas{
		Pixels: make([]float32, Size*Size),
		Raw:    raw,
		Glyph:  glyph,
	}
	for i, v := range raw.Pix {
		c.Pixels[i] = float32(v) / 255
	}
	if c.Mean() > 0.5 {
		for i := range c.Pixels {
			c.Pixels[i] = 1 - c.Pixels[i]
		}
	}
	return c
}

// scaledSize returns the glyph size after fitting the longer side to
// GlyphSize.
func scaledSize(w, h int) (int, int) {
	if h > w {
		return max(1, int(math.RoundToEven(float64(w)*GlyphSize/float64(h)))), GlyphSize
	}
	return GlyphSize, max(1, int(math.RoundToEven(float64(h)*GlyphSize/float64(w))))
}

// Visual returns the scaled glyph as dark ink on white paper, cropped to the
// glyph area. Normalizing the result of Visual reproduces the canvas for
// binary glyphs.
func (c *Canvas) Visual() *image.Gray {
	out := image.NewGray(image.Rect(0, 0, c.Glyph.Dx(), c.Glyph.Dy()))
	for y := 0; y < c.Glyph.Dy(); y++ {
		for x := 0; x < c.Glyph.Dx(); x++ {
			out.Pix[y*out.Stride+x] = 255 - c.Raw.GrayAt(c.Glyph.Min.X+x, c.Glyph.Min.Y+y).Y
		}
	}
	return out
}

// Image renders Pixels as an 8-bit image with ink bright.
func (c *Canvas) Image() *image.Gray {
	out := image.NewGray(image.Rect(0, 0, Size, Size))
	for i, v := range c.Pixels {
		out.Pix[i] = uint8(math.Round(float64(v) * 255))
	}
	return out
}

// Tensor returns Pixels shaped as height x width x 1 channel.
func (c *Canvas) Tensor() [][][]float32 {
	t := make([][][]float32, Size)
	for y := range t {
		t[y] = make([][]float32, Size)
		for x := range t[y] {
			t[y][x] = []float32{c.Pixels[y*Size+x]}
		}
	}
	return t
}

// Mean returns the mean intensity of Pixels.
func (c *Canvas) Mean() float64 {
	var sum float64
	for _, v := range c.Pixels {
		sum += float64(v)
	}
	return sum / float64(len(c.Pixels))
}
