package grading

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ironsheep/sheet-grader/internal/classify"
	"github.com/ironsheep/sheet-grader/internal/detection"
	"github.com/ironsheep/sheet-grader/internal/imaging"
	"github.com/ironsheep/sheet-grader/internal/layout"
	"github.com/ironsheep/sheet-grader/internal/logging"
)

// Mark is one pair as drawn on the annotated page.
type Mark struct {
	Number  image.Rectangle
	Option  *image.Rectangle
	Label   string
	Verdict Verdict
}

// Annotator writes an annotated copy of a graded page and returns a locator
// for it.
type Annotator interface {
	Annotate(ctx context.Context, page image.Image, name string, marks []Mark) (string, error)
}

// Reading is a pair together with the labels read from it.
type Reading struct {
	Pair     layout.Pair `json:"pair"`
	Question string      `json:"question_pred"`
	Option   string      `json:"option_pred"`
}

// Engine grades answer sheets. Construct it once and share it.
type Engine struct {
	detector  detection.Detector
	digits    classify.Classifier
	letters   classify.Classifier
	annotator Annotator
	logger    *logging.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithAnnotator enables the annotated-image side output.
func WithAnnotator(a Annotator) Option {
	return func(e *Engine) { e.annotator = a }
}

// WithLogger sets the engine logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an engine from a detector and the two classifiers.
func NewEngine(d detection.Detector, digits, letters classify.Classifier, opts ...Option) *Engine {
	e := &Engine{
		detector: d,
		digits:   digits,
		letters:  letters,
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Regions detects the regions of page and reports for each whether it lies
// in the left (question number) column.
func (e *Engine) Regions(page image.Image) ([]detection.Region, []bool, error) {
	regions, err := e.detect(page)
	if err != nil {
		return nil, nil, err
	}
	centers := make([]float64, len(regions))
	for i, r := range regions {
		centers[i] = r.CX
	}
	return regions, layout.PartitionColumns(centers), nil
}

// Read detects, pairs and classifies the answers on page without grading
// them.
func (e *Engine) Read(ctx context.Context, page image.Image) ([]Reading, error) {
	regions, err := e.detect(page)
	if err != nil {
		return nil, err
	}
	pairs := layout.Pairs(regions)
	e.logger.Debug("paired regions", "regions", len(regions), "pairs", len(pairs))

	gray := imaging.ToGray(page)
	pad := imaging.PagePad(gray.Bounds().Dx())

	readings := make([]Reading, 0, len(pairs))
	for _, p := range pairs {
		q, err := classify.ReadNumber(ctx, e.digits, imaging.CropPadded(gray, p.Number.Rect(), pad))
		if err != nil {
			return nil, inferenceFailure("digit", err)
		}

		o := ""
		if p.HasOption() {
			o, err = classify.ReadOption(ctx, e.letters, imaging.CropPadded(gray, p.Option.Rect(), pad))
			if err != nil {
				return nil, inferenceFailure("letter", err)
			}
		}

		readings = append(readings, Reading{Pair: p, Question: q, Option: o})
	}
	return readings, nil
}

// Grade grades page against key.
func (e *Engine) Grade(ctx context.Context, page image.Image, key AnswerKey) (*Report, error) {
	return e.GradeNamed(ctx, page, "", key)
}

// GradeNamed grades page against key. name identifies the page in the
// annotated output and may be empty.
func (e *Engine) GradeNamed(ctx context.Context, page image.Image, name string, key AnswerKey) (*Report, error) {
	start := time.Now()

	readings, err := e.Read(ctx, page)
	if err != nil {
		return nil, err
	}

	rows := make([]ReportRow, len(readings))
	marks := make([]Mark, len(readings))
	for i, rd := range readings {
		v := Judge(rd.Question, rd.Option, key)
		rows[i] = ReportRow{Question: rd.Question, Option: rd.Option, Verdict: v}
		marks[i] = newMark(rd, v, key)
	}

	report := Score(rows, key)
	report.AnnotatedImage = e.annotate(ctx, page, name, marks)

	e.logger.Debug("graded page",
		"name", name,
		"pairs", len(readings),
		"score", report.Score,
		"total", report.Total,
		"elapsed", time.Since(start))
	return report, nil
}

// GradeReader decodes a page from r and grades it.
func (e *Engine) GradeReader(ctx context.Context, r io.Reader, name string, key AnswerKey) (*Report, error) {
	page, err := DecodePage(r)
	if err != nil {
		return nil, err
	}
	return e.GradeNamed(ctx, page, name, key)
}

// GradeFile grades the page image stored at path.
func (e *Engine) GradeFile(ctx context.Context, path string, key AnswerKey) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, NewFailure(ImageDecodeFailure, fmt.Sprintf("image not found at %s", path), err)
	}
	defer f.Close()
	return e.GradeReader(ctx, f, filepath.Base(path), key)
}

// DecodePage decodes a page image, reporting corrupt input as an
// ImageDecodeFailure.
func DecodePage(r io.Reader) (image.Image, error) {
	page, err := imaging.DecodePage(r)
	if err != nil {
		return nil, NewFailure(ImageDecodeFailure, "page image is unreadable", err)
	}
	return page, nil
}

func (e *Engine) detect(page image.Image) ([]detection.Region, error) {
	regions, err := e.detector.Detect(page)
	if errors.Is(err, detection.ErrNoRegions) {
		return nil, NewFailure(NoRegionsFound, "no character candidates found", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to detect regions: %w", err)
	}
	e.logger.Debug("detected regions", "count", len(regions))
	return regions, nil
}

// annotate runs the annotator, if any. Failures are logged and yield an
// empty locator.
func (e *Engine) annotate(ctx context.Context, page image.Image, name string, marks []Mark) string {
	if e.annotator == nil {
		return ""
	}
	ref, err := e.annotator.Annotate(ctx, page, name, marks)
	if err != nil {
		e.logger.Warn("failed to write annotated image", "name", name, "err", err)
		return ""
	}
	return ref
}

func newMark(rd Reading, v Verdict, key AnswerKey) Mark {
	var label strings.Builder
	label.WriteString(rd.Question + ": " + rd.Option)
	if correct, ok := key[rd.Question]; ok {
		label.WriteString(" / " + correct)
	}

	m := Mark{
		Number:  rd.Pair.Number.Rect(),
		Label:   label.String(),
		Verdict: v,
	}
	if rd.Pair.HasOption() {
		r := rd.Pair.Option.Rect()
		m.Option = &r
	}
	return m
}

func inferenceFailure(model string, err error) error {
	return NewFailure(InferenceFailure, fmt.Sprintf("%s classification failed", model), err)
}
