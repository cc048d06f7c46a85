package config

import (
	"fmt"

	"github.com/ironsheep/sheet-grader/internal/annotate"
	"github.com/ironsheep/sheet-grader/internal/answerkey"
	"github.com/ironsheep/sheet-grader/internal/classify"
	"github.com/ironsheep/sheet-grader/internal/detection"
	"github.com/ironsheep/sheet-grader/internal/grading"
	"github.com/ironsheep/sheet-grader/internal/logging"
)

// DetectorOptions returns detection options for the configured binarizer.
func (c *Config) DetectorOptions() detection.Options {
	opts := detection.DefaultOptions()
	opts.Binarizer = c.Binarizer
	return opts
}

// NewDetector builds the configured region detector backend.
func (c *Config) NewDetector() (detection.Detector, error) {
	return detection.New(c.Detector, c.DetectorOptions())
}

// NewClassifiers returns the digit and letter classifiers. Tesseract models
// are loaded on first use.
func (c *Config) NewClassifiers() (digits, letters classify.Classifier) {
	switch c.Classifier {
	case ClassifierTesseract:
		digits = classify.NewLazy(classify.DigitLabels, func() (classify.Classifier, error) {
			return classify.NewTesseract(classify.DigitLabels, c.TessdataPrefix)
		})
		letters = classify.NewLazy(classify.LetterLabels, func() (classify.Classifier, error) {
			return classify.NewTesseract(classify.LetterLabels, c.TessdataPrefix)
		})
	default:
		digits = classify.NewRemote(c.DigitsModelURL, classify.DigitLabels, c.ModelTimeout)
		letters = classify.NewRemote(c.LettersModelURL, classify.LetterLabels, c.ModelTimeout)
	}
	return digits, letters
}

// NewSink returns the annotation sink, or nil when annotation is disabled.
func (c *Config) NewSink() (annotate.Sink, error) {
	switch c.AnnotationSink {
	case SinkDir:
		return annotate.DirSink{Dir: c.AnnotationDir, URLPrefix: c.AnnotationURLPrefix}, nil
	case SinkS3:
		return annotate.NewS3Sink(c.S3Region, c.S3Bucket, c.S3Prefix)
	case SinkNone:
		return nil, nil
	}
	return nil, fmt.Errorf("unknown annotation sink %q", c.AnnotationSink)
}

// AnswerKeys returns the answer key store.
func (c *Config) AnswerKeys() answerkey.FileStore {
	return answerkey.FileStore{Dir: c.AnswerKeyDir}
}

// NewEngine wires a grading engine from the configuration.
func (c *Config) NewEngine(logger *logging.Logger) (*grading.Engine, error) {
	detector, err := c.NewDetector()
	if err != nil {
		return nil, fmt.Errorf("failed to create detector: %w", err)
	}
	sink, err := c.NewSink()
	if err != nil {
		return nil, fmt.Errorf("failed to create annotation sink: %w", err)
	}
	digits, letters := c.NewClassifiers()

	opts := []grading.Option{grading.WithLogger(logger.With("engine"))}
	if sink != nil {
		opts = append(opts, grading.WithAnnotator(annotate.New(sink)))
	}

	logger.Debug("engine configured",
		"detector", c.Detector, "binarizer", c.Binarizer,
		"classifier", c.Classifier, "sink", c.AnnotationSink)
	return grading.NewEngine(detector, digits, letters, opts...), nil
}
