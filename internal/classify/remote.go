package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ironsheep/sheet-grader/internal/glyph"
)

// Remote calls a model served over HTTP.
//
// The endpoint is a model URL such as
// http://localhost:8501/v1/models/digits. A GET on the endpoint is the
// readiness check; predictions are requested with a POST to
// endpoint + ":predict" carrying {"instances": [...]} where every instance is
// a 28x28x1 array. The response must be {"predictions": [[...], ...]} with one
// score vector per instance.
type Remote struct {
	endpoint string
	labels   []string
	client   *http.Client

	mu    sync.Mutex
	ready bool
}

// NewRemote returns a client for the model at endpoint. Requests time out
// after timeout; zero means no limit beyond the caller's context.
func NewRemote(endpoint string, labels []string, timeout time.Duration) *Remote {
	return &Remote{
		endpoint: strings.TrimRight(endpoint, "/"),
		labels:   labels,
		client:   &http.Client{Timeout: timeout},
	}
}

type predictRequest struct {
	Instances [][][][]float32 `json:"instances"`
}

type predictResponse struct {
	Predictions [][]float64 `json:"predictions"`
	Error       string      `json:"error,omitempty"`
}

// Labels implements Classifier.
func (r *Remote) Labels() []string {
	return r.labels
}

// CheckHealth reports whether the model endpoint is serving. Once a check
// succeeds the endpoint is considered ready for the life of the client; a
// failed check is repeated on the next call.
func (r *Remote) CheckHealth(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ready {
		return nil
	}

	if err := r.checkHealth(ctx); err != nil {
		return err
	}
	r.ready = true
	return nil
}

func (r *Remote) checkHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("model service unreachable: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model service unhealthy: %d", resp.StatusCode)
	}
	return nil
}

// Classify implements Classifier. All glyphs are sent in one request.
func (r *Remote) Classify(ctx context.Context, glyphs []*glyph.Canvas) ([]Prediction, error) {
	if len(glyphs) == 0 {
		return []Prediction{}, nil
	}
	if err := r.CheckHealth(ctx); err != nil {
		return nil, err
	}

	payload := predictRequest{Instances: make([][][][]float32, len(glyphs))}
	for i, g := range glyphs {
		payload.Instances[i] = g.Tensor()
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint+":predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	var result predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference failed with status %d: %s", resp.StatusCode, result.Error)
	}
	if len(result.Predictions) != len(glyphs) {
		return nil, fmt.Errorf("model returned %d predictions for %d glyphs", len(result.Predictions), len(glyphs))
	}

	preds := make([]Prediction, len(glyphs))
	for i, scores := range result.Predictions {
		p, err := NewPrediction(r.labels, scores)
		if err != nil {
			return nil, err
		}
		preds[i] = p
	}
	return preds, nil
}
