package classify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ironsheep/sheet-grader/internal/glyph"
)

// staticClassifier answers "A" for every glyph and holds no state.
type staticClassifier struct{}

func (staticClassifier) Classify(_ context.Context, glyphs []*glyph.Canvas) ([]Prediction, error) {
	preds := make([]Prediction, len(glyphs))
	for i := range preds {
		preds[i] = Prediction{Label: "A"}
	}
	return preds, nil
}

func (staticClassifier) Labels() []string { return LetterLabels }

func TestLazy_BuildsOnce(t *testing.T) {
	var builds atomic.Int32
	l := NewLazy(LetterLabels, func() (Classifier, error) {
		builds.Add(1)
		return staticClassifier{}, nil
	})

	if builds.Load() != 0 {
		t.Fatal("model built before first use")
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Classify(context.Background(), []*glyph.Canvas{}); err != nil {
				t.Errorf("Classify failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := builds.Load(); n != 1 {
		t.Errorf("model built %d times, want 1", n)
	}
	if len(l.Labels()) != 4 {
		t.Errorf("Labels() = %v", l.Labels())
	}
}

func TestLazy_RetriesFailedBuild(t *testing.T) {
	boom := errors.New("model file missing")
	calls := 0
	l := NewLazy(DigitLabels, func() (Classifier, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}
		return staticClassifier{}, nil
	})

	if _, err := l.Classify(context.Background(), nil); !errors.Is(err, boom) {
		t.Fatalf("first call: err = %v, want wrapped build error", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := l.Classify(context.Background(), nil); err != nil {
			t.Fatalf("call %d after failure: %v", i+2, err)
		}
	}
	if calls != 2 {
		t.Errorf("build attempted %d times, want 2 (one failure, one success)", calls)
	}
}
