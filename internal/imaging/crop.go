package imaging

import (
	"image"
	"image/draw"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// ToGray converts a page to a single-channel image with bounds at (0,0).
//
// Images that are already *image.Gray are rebased and returned as a copy so
// callers may mutate the result freely.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return Rebase(g)
	}
	return grayFromRGBA(effect.Grayscale(img))
}

// grayFromRGBA copies the red channel of a grey-valued RGBA image, as
// produced by bild, into a grayscale image rebased to (0,0).
func grayFromRGBA(img *image.RGBA) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < b.Dx(); x++ {
			dst[x] = src[x*4]
		}
	}
	return out
}

// Rebase copies g into a new grayscale image whose bounds start at (0,0).
func Rebase(g *image.Gray) *image.Gray {
	b := g.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		copy(out.Pix[y*out.Stride:y*out.Stride+b.Dx()], g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):])
	}
	return out
}

// PagePad returns the margin added around a region before it is classified:
// max(3, W/300) for a page of width W.
func PagePad(pageWidth int) int {
	if p := pageWidth / 300; p > 3 {
		return p
	}
	return 3
}

// CropPadded extracts r grown by pad pixels on every side, clipped to the
// bounds of gray. The result is rebased to (0,0).
//
// Returns nil when the clipped rectangle is empty.
func CropPadded(gray *image.Gray, r image.Rectangle, pad int) *image.Gray {
	rect := r.Inset(-pad).Intersect(gray.Bounds())
	if rect.Empty() {
		return nil
	}

	cropped := imaging.Crop(gray, rect)

	b := cropped.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), cropped, b.Min, draw.Src)
	return out
}
