//go:build tesseract

package classify

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"math"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/sheet-grader/internal/glyph"
)

// drawText draws text on an image using basicfont
func drawText(img *image.RGBA, x, y int, text string, col color.Color) {
	point := fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  point,
	}
	d.DrawString(text)
}

func TestTesseract_Classify(t *testing.T) {
	tess, err := NewTesseract(LetterLabels, "")
	if err != nil {
		t.Skipf("tesseract not available: %v", err)
	}
	defer tess.Close()

	img := image.NewRGBA(image.Rect(0, 0, 11, 17))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	drawText(img, 2, 13, "B", color.Black)

	canvas, err := glyph.Normalize(img)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	preds, err := tess.Classify(context.Background(), []*glyph.Canvas{canvas})
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if len(preds) != 1 {
		t.Fatalf("got %d predictions, want 1", len(preds))
	}

	var sum float64
	for _, p := range preds[0].Probabilities {
		sum += p
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("probabilities sum to %v", sum)
	}
	if preds[0].Label != LetterLabels[preds[0].Index] {
		t.Errorf("label %q does not match index %d", preds[0].Label, preds[0].Index)
	}
}
