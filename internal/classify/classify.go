package classify

import (
	"context"
	"errors"
	"fmt"
	"image"

	"gonum.org/v1/gonum/floats"

	"github.com/ironsheep/sheet-grader/internal/glyph"
)

// UnreadableNumber is the question label used when no character could be
// segmented from a number region.
const UnreadableNumber = "?"

// Label sets of the two models, in output-vector order.
var (
	DigitLabels  = []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}
	LetterLabels = []string{"A", "B", "C", "D"}
)

// ErrBadScores is returned when a model produces a score vector that does not
// match its label set.
var ErrBadScores = errors.New("score vector does not match label set")

// Prediction is the classification of one glyph.
type Prediction struct {
	Label         string    `json:"label"`
	Index         int       `json:"index"`
	Probabilities []float64 `json:"probabilities"`
}

// Classifier labels normalized glyphs.
type Classifier interface {
	// Classify returns one prediction per glyph, in order.
	Classify(ctx context.Context, glyphs []*glyph.Canvas) ([]Prediction, error)

	// Labels returns the label set in score-vector order.
	Labels() []string
}

// NewPrediction selects the highest scoring label. Ties go to the earlier
// label.
func NewPrediction(labels []string, scores []float64) (Prediction, error) {
	if len(scores) == 0 || len(scores) != len(labels) {
		return Prediction{}, fmt.Errorf("%w: %d scores for %d labels", ErrBadScores, len(scores), len(labels))
	}
	idx := floats.MaxIdx(scores)
	return Prediction{
		Label:         labels[idx],
		Index:         idx,
		Probabilities: scores,
	}, nil
}

// ReadNumber segments a number region crop into characters, classifies each
// with c and concatenates the labels. A crop with no characters reads as
// UnreadableNumber.
func ReadNumber(ctx context.Context, c Classifier, crop *image.Gray) (string, error) {
	if crop == nil {
		return UnreadableNumber, nil
	}
	chars, err := glyph.Segment(crop)
	if err != nil {
		return "", err
	}
	if len(chars) == 0 {
		return UnreadableNumber, nil
	}

	canvases := make([]*glyph.Canvas, 0, len(chars))
	for _, ch := range chars {
		canvas, err := glyph.Normalize(ch)
		if err != nil {
			return "", err
		}
		canvases = append(canvases, canvas)
	}

	preds, err := c.Classify(ctx, canvases)
	if err != nil {
		return "", err
	}
	if len(preds) != len(canvases) {
		return "", fmt.Errorf("classifier returned %d predictions for %d glyphs", len(preds), len(canvases))
	}

	label := ""
	for _, p := range preds {
		label += p.Label
	}
	return label, nil
}

// ReadOption classifies a whole option region crop as one glyph. A nil crop
// (no option region) reads as "".
func ReadOption(ctx context.Context, c Classifier, crop *image.Gray) (string, error) {
	if crop == nil {
		return "", nil
	}
	canvas, err := glyph.Normalize(crop)
	if err != nil {
		return "", err
	}
	preds, err := c.Classify(ctx, []*glyph.Canvas{canvas})
	if err != nil {
		return "", err
	}
	if len(preds) != 1 {
		return "", fmt.Errorf("classifier returned %d predictions for 1 glyph", len(preds))
	}
	return preds[0].Label, nil
}
