//go:build tesseract

package classify

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/sheet-grader/internal/glyph"
)

// tesseractScale enlarges canvases before recognition; Tesseract reads
// 28-pixel glyphs poorly.
const tesseractScale = 4

// Tesseract classifies glyphs with single-character Tesseract recognition
// restricted to the label set.
type Tesseract struct {
	mu     sync.Mutex
	client *gosseract.Client
	labels []string
}

// NewTesseract configures a Tesseract client for labels. tessdataPrefix may
// be empty to use the system default.
func NewTesseract(labels []string, tessdataPrefix string) (*Tesseract, error) {
	client := gosseract.NewClient()

	if tessdataPrefix != "" {
		if err := client.SetTessdataPrefix(tessdataPrefix); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set tessdata prefix: %w", err)
		}
	}
	if err := client.SetLanguage("eng"); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_CHAR); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := client.SetWhitelist(strings.Join(labels, "")); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set whitelist: %w", err)
	}

	return &Tesseract{client: client, labels: labels}, nil
}

// Labels implements Classifier.
func (t *Tesseract) Labels() []string {
	return t.labels
}

// Close releases the Tesseract client.
func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client.Close()
}

// Classify implements Classifier.
//
// The recognized symbol gets its Tesseract confidence as probability and the
// rest is spread over the other labels. A glyph Tesseract cannot read gets a
// uniform distribution.
func (t *Tesseract) Classify(ctx context.Context, glyphs []*glyph.Canvas) ([]Prediction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	preds := make([]Prediction, 0, len(glyphs))
	for _, g := range glyphs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		scores, err := t.scores(g)
		if err != nil {
			return nil, err
		}
		p, err := NewPrediction(t.labels, scores)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	return preds, nil
}

func (t *Tesseract) scores(g *glyph.Canvas) ([]float64, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, renderForTesseract(g)); err != nil {
		return nil, fmt.Errorf("failed to encode glyph: %w", err)
	}
	if err := t.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := t.client.GetBoundingBoxes(gosseract.RIL_SYMBOL)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	n := len(t.labels)
	best, conf := -1, 0.0
	for _, box := range boxes {
		idx := indexOf(t.labels, strings.TrimSpace(box.Word))
		if idx >= 0 && box.Confidence > conf {
			best, conf = idx, box.Confidence
		}
	}

	scores := make([]float64, n)
	if best < 0 {
		for i := range scores {
			scores[i] = 1 / float64(n)
		}
		return scores, nil
	}

	p := min(conf/100, 1)
	for i := range scores {
		scores[i] = (1 - p) / float64(n-1)
	}
	scores[best] = p
	return scores, nil
}

// renderForTesseract draws the canvas as dark ink on white, enlarged.
func renderForTesseract(g *glyph.Canvas) image.Image {
	bright := g.Image()
	inverted := imaging.Invert(bright)
	return imaging.Resize(inverted, glyph.Size*tesseractScale, 0, imaging.NearestNeighbor)
}

func indexOf(labels []string, s string) int {
	for i, l := range labels {
		if l == s {
			return i
		}
	}
	return -1
}
