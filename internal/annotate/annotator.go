package annotate

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/ironsheep/sheet-grader/internal/grading"
)

// Sink stores an annotated page under name and returns its locator.
type Sink interface {
	Store(ctx context.Context, name string, img image.Image) (string, error)
}

// Annotator draws marks and stores the result in a Sink. It implements
// grading.Annotator.
type Annotator struct {
	sink    Sink
	palette Palette
}

// New returns an annotator writing to sink with the default palette.
func New(sink Sink) *Annotator {
	return &Annotator{sink: sink, palette: DefaultPalette()}
}

// Annotate implements grading.Annotator.
func (a *Annotator) Annotate(ctx context.Context, page image.Image, name string, marks []grading.Mark) (string, error) {
	img := Draw(page, marks, a.palette)
	ref, err := a.sink.Store(ctx, FileName(name), img)
	if err != nil {
		return "", fmt.Errorf("failed to store annotated image: %w", err)
	}
	return ref, nil
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// FileName returns a unique PNG file name for the annotated copy of the page
// called name: annotated_<stem>_<uuid>.png.
func FileName(name string) string {
	base := filepath.Base(name)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.Trim(unsafeChars.ReplaceAllString(stem, "_"), "_")
	if stem == "" {
		stem = "page"
	}
	return fmt.Sprintf("annotated_%s_%s.png", stem, uuid.NewString())
}
