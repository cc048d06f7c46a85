package server

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ironsheep/sheet-grader/internal/answerkey"
	"github.com/ironsheep/sheet-grader/internal/classify"
	"github.com/ironsheep/sheet-grader/internal/detection"
	"github.com/ironsheep/sheet-grader/internal/glyph"
	"github.com/ironsheep/sheet-grader/internal/grading"
	"github.com/ironsheep/sheet-grader/internal/logging"
)

// cyclingClassifier answers glyphs with its labels in turn.
type cyclingClassifier struct {
	mu     sync.Mutex
	labels []string
	answer []string
	next   int
	err    error
}

func (c *cyclingClassifier) Classify(_ context.Context, glyphs []*glyph.Canvas) ([]classify.Prediction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	preds := make([]classify.Prediction, len(glyphs))
	for i := range glyphs {
		preds[i] = classify.Prediction{Label: c.answer[c.next%len(c.answer)]}
		c.next++
	}
	return preds, nil
}

func (c *cyclingClassifier) Labels() []string { return c.labels }

// newTestServer returns a server whose digit reader answers "1", "2", ...
// and whose letter reader answers "A", "C", ...
func newTestServer(t *testing.T, keys KeyStore) *Server {
	t.Helper()
	return newTestServerWith(t, keys,
		&cyclingClassifier{labels: classify.DigitLabels, answer: []string{"1", "2"}},
		&cyclingClassifier{labels: classify.LetterLabels, answer: []string{"A", "C"}})
}

func newTestServerWith(t *testing.T, keys KeyStore, digits, letters classify.Classifier) *Server {
	t.Helper()
	det, err := detection.NewPixelDetector(detection.DefaultOptions())
	if err != nil {
		t.Fatalf("NewPixelDetector failed: %v", err)
	}
	return New(grading.NewEngine(det, digits, letters), keys, logging.Discard())
}

// createSheetFile writes a 600x400 sheet with one number box and one option
// box per row.
func createSheetFile(t *testing.T, rows int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 600, 400))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	for row := 0; row < rows; row++ {
		y := 40 + row*100
		strokeBox(img, image.Rect(60, y, 80, y+30))
		strokeBox(img, image.Rect(300, y, 320, y+30))
	}
	return writePNG(t, img)
}

func strokeBox(img *image.RGBA, r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if x < r.Min.X+3 || x >= r.Max.X-3 || y < r.Min.Y+3 || y >= r.Max.Y-3 {
				img.Set(x, y, color.Black)
			}
		}
	}
}

func writePNG(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sheet.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// callTool issues tools/call and returns the response.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) *MCPResponse {
	t.Helper()
	params, _ := json.Marshal(map[string]interface{}{"name": name, "arguments": args})
	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  params,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// decodeResult unmarshals the text content of a successful tool response.
func decodeResult(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	result := resp.Result.(map[string]interface{})
	content := result["content"].([]map[string]interface{})
	if len(content) != 1 || content[0]["type"] != "text" {
		t.Fatalf("unexpected content: %v", content)
	}
	if err := json.Unmarshal([]byte(content[0]["text"].(string)), v); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
}

func errorKind(t *testing.T, resp *MCPResponse) grading.Kind {
	t.Helper()
	if resp.Error == nil {
		t.Fatalf("expected error, got result %v", resp.Result)
	}
	if resp.Error.Code != -32000 {
		t.Errorf("Error.Code: got %d, want -32000", resp.Error.Code)
	}
	data, ok := resp.Error.Data.(ToolErrorData)
	if !ok {
		t.Fatalf("Error.Data: got %T", resp.Error.Data)
	}
	return data.Kind
}

type reportJSON struct {
	Score      int     `json:"score"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
	Results    []struct {
		Question string `json:"question_pred"`
		Option   string `json:"option_pred"`
		Result   string `json:"result"`
	} `json:"results"`
	AnnotatedImage string `json:"annotated_image_url"`
}

func TestSheetGrade_InlineKey(t *testing.T) {
	s := newTestServer(t, nil)
	path := createSheetFile(t, 2)

	resp := callTool(t, s, "sheet_grade", map[string]interface{}{
		"path":       path,
		"answer_key": map[string]string{"1": "A", "2": "B"},
	})

	var report reportJSON
	decodeResult(t, resp, &report)

	if report.Score != 1 || report.Total != 2 || report.Percentage != 50 {
		t.Errorf("score = %d/%d (%v%%), want 1/2 (50%%)", report.Score, report.Total, report.Percentage)
	}
	if len(report.Results) != 2 {
		t.Fatalf("got %d rows, want 2", len(report.Results))
	}
	if report.Results[0].Question != "1" || report.Results[0].Option != "A" || report.Results[0].Result != "Correct" {
		t.Errorf("row 0 = %+v", report.Results[0])
	}
	if report.Results[1].Result != "Wrong" {
		t.Errorf("row 1 = %+v", report.Results[1])
	}
}

func TestSheetGrade_ExamCode(t *testing.T) {
	store := answerkey.FileStore{Dir: t.TempDir()}
	if err := store.Save("MATH101", grading.AnswerKey{"1": "A", "2": "C"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	s := newTestServer(t, store)

	resp := callTool(t, s, "sheet_grade", map[string]interface{}{
		"path":      createSheetFile(t, 2),
		"exam_code": "MATH101",
	})

	var report reportJSON
	decodeResult(t, resp, &report)
	if report.Score != 2 || report.Percentage != 100 {
		t.Errorf("score = %d (%v%%), want 2 (100%%)", report.Score, report.Percentage)
	}

	t.Run("unknown exam", func(t *testing.T) {
		resp := callTool(t, s, "sheet_grade", map[string]interface{}{
			"path":      createSheetFile(t, 2),
			"exam_code": "HIST200",
		})
		if kind := errorKind(t, resp); kind != grading.AnswerKeyMissing {
			t.Errorf("kind = %q, want AnswerKeyMissing", kind)
		}
	})
}

func TestSheetGrade_Failures(t *testing.T) {
	blank := image.NewGray(image.Rect(0, 0, 200, 100))
	for i := range blank.Pix {
		blank.Pix[i] = 255
	}
	corrupt := filepath.Join(t.TempDir(), "corrupt.png")
	if err := os.WriteFile(corrupt, []byte("not a png"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	key := map[string]string{"1": "A"}

	tests := []struct {
		name string
		args map[string]interface{}
		want grading.Kind
	}{
		{"no key", map[string]interface{}{"path": createSheetFile(t, 1)}, grading.AnswerKeyMissing},
		{"exam code without store", map[string]interface{}{"path": createSheetFile(t, 1), "exam_code": "X"}, grading.AnswerKeyMissing},
		{"missing file", map[string]interface{}{"path": "/nonexistent/sheet.png", "answer_key": key}, grading.ImageDecodeFailure},
		{"corrupt file", map[string]interface{}{"path": corrupt, "answer_key": key}, grading.ImageDecodeFailure},
		{"blank page", map[string]interface{}{"path": writePNG(t, blank), "answer_key": key}, grading.NoRegionsFound},
		{"invalid inline key", map[string]interface{}{"path": createSheetFile(t, 1), "answer_key": map[string]string{"1": "Z"}}, ""},
	}

	s := newTestServer(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, "sheet_grade", tt.args)
			if kind := errorKind(t, resp); kind != tt.want {
				t.Errorf("kind = %q, want %q (%+v)", kind, tt.want, resp.Error)
			}
		})
	}
}

func TestSheetGrade_InferenceFailure(t *testing.T) {
	s := newTestServerWith(t, nil,
		&cyclingClassifier{labels: classify.DigitLabels, err: errors.New("connection refused")},
		&cyclingClassifier{labels: classify.LetterLabels, answer: []string{"A"}})

	resp := callTool(t, s, "sheet_grade", map[string]interface{}{
		"path":       createSheetFile(t, 1),
		"answer_key": map[string]string{"1": "A"},
	})
	if kind := errorKind(t, resp); kind != grading.InferenceFailure {
		t.Errorf("kind = %q, want InferenceFailure", kind)
	}
}

func TestSheetRegions(t *testing.T) {
	s := newTestServer(t, nil)
	resp := callTool(t, s, "sheet_regions", map[string]interface{}{"path": createSheetFile(t, 3)})

	var result RegionsResult
	decodeResult(t, resp, &result)

	if result.Width != 600 || result.Height != 400 {
		t.Errorf("size = %dx%d, want 600x400", result.Width, result.Height)
	}
	if result.Count != 6 || len(result.Regions) != 6 {
		t.Fatalf("got %d regions, want 6", result.Count)
	}
	for _, r := range result.Regions {
		if wantLeft := r.CX < 200; r.Left != wantLeft {
			t.Errorf("region at x=%d: left = %v, want %v", r.X, r.Left, wantLeft)
		}
	}
}

func TestSheetPairs(t *testing.T) {
	s := newTestServer(t, nil)
	resp := callTool(t, s, "sheet_pairs", map[string]interface{}{"path": createSheetFile(t, 2)})

	var result PairsResult
	decodeResult(t, resp, &result)

	if result.Count != 2 {
		t.Fatalf("got %d pairs, want 2", result.Count)
	}
	first := result.Pairs[0]
	if first.Question != "1" || first.Option != "A" {
		t.Errorf("pair 0 = %s/%s, want 1/A", first.Question, first.Option)
	}
	if first.OptionAt == nil || first.OptionAt.X < 290 {
		t.Errorf("pair 0 option region = %+v", first.OptionAt)
	}
	if first.Number.X > 70 {
		t.Errorf("pair 0 number region = %+v", first.Number)
	}
}

func TestImageDimensions(t *testing.T) {
	s := newTestServer(t, nil)

	resp := callTool(t, s, "image_dimensions", map[string]interface{}{"path": createSheetFile(t, 1)})
	var dims struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	decodeResult(t, resp, &dims)
	if dims.Width != 600 || dims.Height != 400 {
		t.Errorf("dimensions = %dx%d, want 600x400", dims.Width, dims.Height)
	}

	resp = callTool(t, s, "image_dimensions", map[string]interface{}{"path": "/nonexistent.png"})
	if kind := errorKind(t, resp); kind != grading.ImageDecodeFailure {
		t.Errorf("kind = %q, want ImageDecodeFailure", kind)
	}
}

func TestHandleToolsCall_Errors(t *testing.T) {
	s := newTestServer(t, nil)

	t.Run("unknown tool", func(t *testing.T) {
		resp := callTool(t, s, "image_crop", map[string]interface{}{"path": "x"})
		if kind := errorKind(t, resp); kind != "" {
			t.Errorf("kind = %q, want none", kind)
		}
		if resp.Error.Message != "Tool execution failed" {
			t.Errorf("Message = %q", resp.Error.Message)
		}
	})

	t.Run("invalid params", func(t *testing.T) {
		resp := s.handleRequest(context.Background(), &MCPRequest{
			JSONRPC: "2.0",
			ID:      1,
			Method:  "tools/call",
			Params:  json.RawMessage(`"not an object"`),
		})
		if resp.Error == nil || resp.Error.Code != -32602 {
			t.Errorf("expected -32602, got %+v", resp.Error)
		}
	})

	t.Run("missing path", func(t *testing.T) {
		resp := callTool(t, s, "sheet_regions", map[string]interface{}{})
		errorKind(t, resp)
	})
}
