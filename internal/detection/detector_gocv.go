//go:build gocv

package detection

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/ironsheep/sheet-grader/internal/imaging"
)

// OpenCVBackend is the registry name of the OpenCV detector.
const OpenCVBackend = "opencv"

func init() {
	Register(OpenCVBackend, func(o Options) (Detector, error) { return NewOpenCVDetector(o) })
}

// OpenCVDetector runs the region pipeline through OpenCV.
// Only the gaussian binarizer is supported.
type OpenCVDetector struct {
	opts Options
}

// NewOpenCVDetector returns an OpenCV-backed detector.
func NewOpenCVDetector(opts Options) (*OpenCVDetector, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.Binarizer != BinarizerGaussian {
		return nil, fmt.Errorf("opencv detector supports only the %q binarizer", BinarizerGaussian)
	}
	return &OpenCVDetector{opts: opts}, nil
}

// Detect implements Detector.
func (d *OpenCVDetector) Detect(page image.Image) ([]Region, error) {
	gray := imaging.ToGray(page)
	w, h := gray.Bounds().Dx(), gray.Bounds().Dy()

	src, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC1, gray.Pix)
	if err != nil {
		return nil, fmt.Errorf("failed to convert page to mat: %w", err)
	}
	defer src.Close()

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(src, &blurred, image.Pt(3, 3), 0, 0, gocv.BorderDefault)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.AdaptiveThreshold(blurred, &thresh, 255, gocv.AdaptiveThresholdGaussian,
		gocv.ThresholdBinaryInv, d.opts.BlockSize, float32(d.opts.C))

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
	defer kernel.Close()

	closed := gocv.NewMat()
	defer closed.Close()
	gocv.MorphologyEx(thresh, &closed, gocv.MorphClose, kernel)

	contours := gocv.FindContours(closed, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	boxes := make([]image.Rectangle, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		boxes = append(boxes, gocv.BoundingRect(contours.At(i)))
	}

	regions := FilterBySize(boxes, w, h)
	if len(regions) == 0 {
		return nil, ErrNoRegions
	}
	return regions, nil
}
