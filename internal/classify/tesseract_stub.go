//go:build !tesseract

package classify

import (
	"context"
	"errors"

	"github.com/ironsheep/sheet-grader/internal/glyph"
)

// ErrTesseractUnavailable is returned by NewTesseract in builds without the
// "tesseract" tag.
var ErrTesseractUnavailable = errors.New("tesseract support not compiled in (build with -tags tesseract)")

// Tesseract is unavailable in this build.
type Tesseract struct {
	labels []string
}

// NewTesseract always fails in this build.
func NewTesseract(labels []string, tessdataPrefix string) (*Tesseract, error) {
	return nil, ErrTesseractUnavailable
}

// Labels implements Classifier.
func (t *Tesseract) Labels() []string {
	return t.labels
}

// Close is a no-op.
func (t *Tesseract) Close() error {
	return nil
}

// Classify implements Classifier.
func (t *Tesseract) Classify(ctx context.Context, glyphs []*glyph.Canvas) ([]Prediction, error) {
	return nil, ErrTesseractUnavailable
}
