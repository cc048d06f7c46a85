package imaging

import (
	"image"
	"math"
	"image/color"
	"image/draw"
	"testing"
)

// createStrokeImage draws a dark square outline with the given stroke width on white paper
func createStrokeImage(width, height int, r image.Rectangle, stroke int, ink uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Gray{Y: 255}), image.Point{}, draw.Src)
	c := image.NewUniform(color.Gray{Y: ink})
	draw.Draw(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+stroke), c, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(r.Min.X, r.Max.Y-stroke, r.Max.X, r.Max.Y), c, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+stroke, r.Max.Y), c, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(r.Max.X-stroke, r.Min.Y, r.Max.X, r.Max.Y), c, image.Point{}, draw.Src)
	return img
}

func TestOtsuInv(t *testing.T) {
	img := createStrokeImage(40, 40, image.Rect(10, 10, 30, 30), 3, 20)

	m, err := OtsuInv(img)
	if err != nil {
		t.Fatalf("OtsuInv failed: %v", err)
	}
	if !m.At(10, 10) || !m.At(29, 20) {
		t.Error("dark stroke pixels should be foreground")
	}
	if m.At(0, 0) || m.At(20, 20) {
		t.Error("paper pixels should be background")
	}
	if m.Count() != 20*20-14*14 {
		t.Errorf("foreground count: got %d, want %d", m.Count(), 20*20-14*14)
	}
}

func TestOtsuInv_Uniform(t *testing.T) {
	img := ToGray(createInMemoryImage(20, 20, color.White))

	m, err := OtsuInv(img)
	if err != nil {
		t.Fatalf("OtsuInv failed: %v", err)
	}
	if m.Count() != 0 {
		t.Errorf("uniform white image should have no ink, got %d pixels", m.Count())
	}
}

func TestAdaptiveGaussianInv_Strokes(t *testing.T) {
	img := createStrokeImage(80, 80, image.Rect(20, 20, 60, 60), 3, 0)

	m := AdaptiveGaussianInv(img, 11, 2)
	if !m.At(21, 40) || !m.At(40, 58) {
		t.Error("stroke pixels should be foreground")
	}
	if m.At(5, 5) || m.At(40, 40) {
		t.Error("paper pixels should be background")
	}
}

func TestAdaptiveGaussianInv_UnevenLighting(t *testing.T) {
	// Paper brightness falls from 250 on the left to 120 on the right.
	img := image.NewGray(image.Rect(0, 0, 120, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 120; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(250 - x)})
		}
	}

	m := AdaptiveGaussianInv(img, 11, 2)
	if m.Count() != 0 {
		t.Errorf("a smooth lighting gradient should not produce ink, got %d pixels", m.Count())
	}
}

func TestSauvolaInv(t *testing.T) {
	img := createStrokeImage(80, 80, image.Rect(20, 20, 60, 60), 3, 0)

	m := SauvolaInv(img, 0.3, 19)
	if !m.At(21, 40) {
		t.Error("stroke pixel should be foreground")
	}
	if m.At(5, 5) {
		t.Error("paper pixel should be background")
	}
}

func TestSmooth(t *testing.T) {
	img := ToGray(createInMemoryImage(30, 30, color.Gray{Y: 128}))

	out := Smooth(img)
	if out.Bounds() != img.Bounds() {
		t.Fatalf("bounds: got %v, want %v", out.Bounds(), img.Bounds())
	}
	if v := out.GrayAt(15, 15).Y; v < 126 || v > 130 {
		t.Errorf("uniform image should stay uniform after smoothing, got %d", v)
	}
}

func TestGaussianKernel(t *testing.T) {
	t.Run("fixed small kernel", func(t *testing.T) {
		k := GaussianKernel(3)
		want := []float64{0.25, 0.5, 0.25}
		for i, v := range want {
			if k.Matrix[i] != v {
				t.Errorf("weight %d: got %v, want %v", i, k.Matrix[i], v)
			}
		}
	})

	t.Run("block size 11 uses sigma 2", func(t *testing.T) {
		k := GaussianKernel(11)
		if len(k.Matrix) != 11 {
			t.Fatalf("length: got %d, want 11", len(k.Matrix))
		}
		sum := 0.0
		for i, v := range k.Matrix {
			sum += v
			if math.Abs(v-k.Matrix[10-i]) > 1e-12 {
				t.Errorf("kernel not symmetric at %d", i)
			}
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("sum: got %v, want 1", sum)
		}
		// exp(-x^2 / (2*sigma^2)) with sigma = 2
		if ratio := k.Matrix[6] / k.Matrix[5]; math.Abs(ratio-math.Exp(-1.0/8)) > 1e-9 {
			t.Errorf("neighbour/centre: got %v, want %v", ratio, math.Exp(-1.0/8))
		}
		if ratio := k.Matrix[10] / k.Matrix[5]; math.Abs(ratio-math.Exp(-25.0/8)) > 1e-9 {
			t.Errorf("edge/centre: got %v, want %v", ratio, math.Exp(-25.0/8))
		}
	})
}

func TestGaussianBlur(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 21, 21))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	img.SetGray(10, 10, color.Gray{Y: 0})

	out := GaussianBlur(img, 3)
	if out.Bounds() != img.Bounds() {
		t.Fatalf("bounds: got %v, want %v", out.Bounds(), img.Bounds())
	}
	// 3x3 weights are 0.25/0.5/0.25 per axis, so the centre keeps a quarter
	// of the dip and its edge neighbours an eighth.
	if v := out.GrayAt(10, 10).Y; v < 148 || v > 151 {
		t.Errorf("centre: got %d, want ~150", v)
	}
	if v := out.GrayAt(11, 10).Y; v < 173 || v > 176 {
		t.Errorf("neighbour: got %d, want ~175", v)
	}
	if v := out.GrayAt(13, 10).Y; v < 199 {
		t.Errorf("pixel outside the kernel changed: got %d", v)
	}
}
