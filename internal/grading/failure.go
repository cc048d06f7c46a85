package grading

import (
	"errors"
	"fmt"
)

// Kind classifies a grading failure.
type Kind string

const (
	// ImageDecodeFailure means the page image is unreadable or corrupt.
	ImageDecodeFailure Kind = "ImageDecodeFailure"
	// NoRegionsFound means no handwriting-sized region was detected.
	NoRegionsFound Kind = "NoRegionsFound"
	// AnswerKeyMissing means no answer key exists for the requested exam.
	AnswerKeyMissing Kind = "AnswerKeyMissing"
	// InferenceFailure means a classifier could not be reached or answered
	// with malformed output.
	InferenceFailure Kind = "InferenceFailure"
)

// Failure is a fatal, structured grading error.
type Failure struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Failure) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Failure) Unwrap() error {
	return e.Cause
}

// NewFailure creates a Failure.
func NewFailure(kind Kind, message string, cause error) *Failure {
	return &Failure{Kind: kind, Message: message, Cause: cause}
}

// IsKind reports whether err is, or wraps, a Failure of the given kind.
func IsKind(err error, kind Kind) bool {
	var f *Failure
	return errors.As(err, &f) && f.Kind == kind
}

// KindOf returns the Kind of the Failure in err's chain, or "" if none.
func KindOf(err error) Kind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}
