package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/Ernyoke/Imger/threshold"
	"github.com/anthonynsimon/bild/convolution"
	"rescribe.xyz/preproc"
)

// smoothKernelSize is the noise blur applied before region thresholding.
const smoothKernelSize = 3

// Smooth applies a light 3x3 Gaussian blur used to suppress sensor noise
// before thresholding.
func Smooth(gray *image.Gray) *image.Gray {
	return GaussianBlur(gray, smoothKernelSize)
}

// GaussianBlur convolves gray with a ksize x ksize Gaussian whose sigma is
// derived from the size the way OpenCV does when no sigma is given:
// 0.3*((ksize-1)/2 - 1) + 0.8. Pixels beyond the border replicate the edge.
func GaussianBlur(gray *image.Gray, ksize int) *image.Gray {
	if ksize < 3 {
		return Rebase(gray)
	}
	k := GaussianKernel(ksize)
	opts := &convolution.Options{Wrap: false}
	blurred := convolution.Convolve(gray, k, opts)
	blurred = convolution.Convolve(blurred, k.Transposed(), opts)
	return grayFromRGBA(blurred)
}

// fixedGaussian holds the integer-rounded kernels used for small sizes.
var fixedGaussian = map[int][]float64{
	3: {0.25, 0.5, 0.25},
	5: {0.0625, 0.25, 0.375, 0.25, 0.0625},
	7: {0.03125, 0.109375, 0.21875, 0.28125, 0.21875, 0.109375, 0.03125},
}

// GaussianKernel returns the normalized 1-d Gaussian of odd length ksize as a
// row kernel.
func GaussianKernel(ksize int) *convolution.Kernel {
	k := convolution.NewKernel(ksize, 1)
	if fixed, ok := fixedGaussian[ksize]; ok {
		copy(k.Matrix, fixed)
		return k
	}

	sigma := 0.3*(float64(ksize-1)*0.5-1) + 0.8
	center := float64(ksize-1) / 2
	sum := 0.0
	for i := range k.Matrix {
		x := float64(i) - center
		k.Matrix[i] = math.Exp(-x * x / (2 * sigma * sigma))
		sum += k.Matrix[i]
	}
	for i := range k.Matrix {
		k.Matrix[i] /= sum
	}
	return k
}

// OtsuInv binarizes gray with an automatically chosen global threshold.
//
// The result is inverted: pixels at or below the Otsu threshold (dark ink on
// a light background) become foreground.
func OtsuInv(gray *image.Gray) (*Mask, error) {
	bin, err := threshold.OtsuThreshold(Rebase(gray), threshold.ThreshBinaryInv)
	if err != nil {
		return nil, fmt.Errorf("failed to compute otsu threshold: %w", err)
	}
	return MaskFromGray(bin, 255), nil
}

// AdaptiveGaussianInv binarizes gray against a Gaussian-weighted local mean.
//
// Parameters:
//   - gray: Source image, rebased to (0,0).
//   - blockSize: Odd neighbourhood size; the local mean is a blockSize x
//     blockSize Gaussian (sigma 2.0 for the typical 11). Typical value: 11.
//   - c: Constant subtracted from the local mean. Typical value: 2.
//
// # Algorithm
//
// A pixel is foreground when value <= localMean - c. Because the threshold
// follows the local mean, gradual lighting changes across a photographed page
// do not flip large areas to foreground; only strokes darker than their
// surroundings survive. Interiors of very large solid areas read as background.
func AdaptiveGaussianInv(gray *image.Gray, blockSize int, c float64) *Mask {
	local := GaussianBlur(gray, blockSize)

	b := gray.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		src := gray.Pix[gray.PixOffset(b.Min.X, b.Min.Y+y):]
		mean := local.Pix[y*local.Stride:]
		for x := 0; x < b.Dx(); x++ {
			if float64(src[x]) <= float64(mean[x])-c {
				m.Bits[y*m.Width+x] = true
			}
		}
	}
	return m
}

// SauvolaInv binarizes gray with Sauvola's local mean/deviation threshold.
//
// ksize weighs the local standard deviation (typical 0.3-0.5) and window is the
// neighbourhood size in pixels. Dark pixels below the local threshold become
// foreground.
func SauvolaInv(gray *image.Gray, ksize float64, window int) *Mask {
	bin := preproc.IntegralSauvola(Rebase(gray), ksize, window)
	return MaskFromGray(bin, 0)
}
