package classify

import (
	"context"
	"fmt"
	"sync"

	"github.com/ironsheep/sheet-grader/internal/glyph"
)

// Lazy builds its Classifier on first use. A successful build is kept for
// the life of the Lazy; a failed build is retried on the next call.
// Concurrent first calls build once.
type Lazy struct {
	labels []string
	build  func() (Classifier, error)

	mu sync.Mutex
	c  Classifier
}

// NewLazy returns a Classifier that calls build on first use.
func NewLazy(labels []string, build func() (Classifier, error)) *Lazy {
	return &Lazy{labels: labels, build: build}
}

func (l *Lazy) get() (Classifier, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.c != nil {
		return l.c, nil
	}

	c, err := l.build()
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}
	l.c = c
	return c, nil
}

// Classify implements Classifier.
func (l *Lazy) Classify(ctx context.Context, glyphs []*glyph.Canvas) ([]Prediction, error) {
	c, err := l.get()
	if err != nil {
		return nil, err
	}
	return c.Classify(ctx, glyphs)
}

// Labels implements Classifier.
func (l *Lazy) Labels() []string {
	return l.labels
}
