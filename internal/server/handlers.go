package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"path/filepath"

	"github.com/ironsheep/sheet-grader/internal/answerkey"
	"github.com/ironsheep/sheet-grader/internal/detection"
	"github.com/ironsheep/sheet-grader/internal/grading"
	"github.com/ironsheep/sheet-grader/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "sheet_grade").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// ToolErrorData is attached to failed tool calls. Kind is set when the
// failure is a grading failure.
type ToolErrorData struct {
	Kind  grading.Kind `json:"kind,omitempty"`
	Error string       `json:"error"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
// Grading failures use the failure message and carry its kind in the data.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "err", err)
		return s.toolError(req.ID, err)
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "sheet_grade":
		return s.handleSheetGrade(ctx, args)
	case "sheet_regions":
		return s.handleSheetRegions(args)
	case "sheet_pairs":
		return s.handleSheetPairs(ctx, args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

func (s *Server) toolError(id interface{}, err error) *MCPResponse {
	var f *grading.Failure
	if errors.As(err, &f) {
		return s.errorResponse(id, -32000, f.Message, ToolErrorData{Kind: f.Kind, Error: err.Error()})
	}
	return s.errorResponse(id, -32000, "Tool execution failed", ToolErrorData{Error: err.Error()})
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// loadPage fetches a page through the cache, reporting unreadable files as
// an ImageDecodeFailure.
func (s *Server) loadPage(path string) (image.Image, error) {
	if path == "" {
		return nil, errors.New("path is required")
	}
	page, err := s.cache.Load(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, grading.NewFailure(grading.ImageDecodeFailure, fmt.Sprintf("image not found at %s", path), err)
	case err != nil:
		return nil, grading.NewFailure(grading.ImageDecodeFailure, "page image is unreadable", err)
	}
	return page, nil
}

// === Grading ===

type sheetGradeArgs struct {
	Path      string            `json:"path"`
	AnswerKey grading.AnswerKey `json:"answer_key"`
	ExamCode  string            `json:"exam_code"`
}

func (s *Server) handleSheetGrade(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a sheetGradeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	key, err := s.resolveKey(a.AnswerKey, a.ExamCode)
	if err != nil {
		return nil, err
	}

	page, err := s.loadPage(a.Path)
	if err != nil {
		return nil, err
	}
	// Graded pages are rarely revisited and phone photos are large.
	defer s.cache.Evict(a.Path)

	return s.engine.GradeNamed(ctx, page, filepath.Base(a.Path), key)
}

// resolveKey prefers an inline key over a stored one.
func (s *Server) resolveKey(inline grading.AnswerKey, examCode string) (grading.AnswerKey, error) {
	if inline != nil {
		if err := answerkey.Validate(inline); err != nil {
			return nil, fmt.Errorf("invalid answer_key: %w", err)
		}
		return inline, nil
	}
	if examCode == "" {
		return nil, grading.NewFailure(grading.AnswerKeyMissing, "answer_key or exam_code is required", nil)
	}
	if s.keys == nil {
		return nil, grading.NewFailure(grading.AnswerKeyMissing,
			fmt.Sprintf("no answer key store configured for exam_code '%s'", examCode), nil)
	}
	return s.keys.Load(examCode)
}

// === Diagnostics ===

type pathArgs struct {
	Path string `json:"path"`
}

// RegionResult is one detected region with its column assignment.
type RegionResult struct {
	detection.Region
	Left bool `json:"left"`
}

// RegionsResult is the output of sheet_regions.
type RegionsResult struct {
	Width   int            `json:"width"`
	Height  int            `json:"height"`
	Count   int            `json:"count"`
	Regions []RegionResult `json:"regions"`
}

func (s *Server) handleSheetRegions(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	page, err := s.loadPage(a.Path)
	if err != nil {
		return nil, err
	}

	regions, left, err := s.engine.Regions(page)
	if err != nil {
		return nil, err
	}

	out := make([]RegionResult, len(regions))
	for i, r := range regions {
		out[i] = RegionResult{Region: r, Left: left[i]}
	}
	b := page.Bounds()
	return &RegionsResult{Width: b.Dx(), Height: b.Dy(), Count: len(out), Regions: out}, nil
}

// PairResult is one paired row with the labels read from it.
type PairResult struct {
	Question string            `json:"question_pred"`
	Option   string            `json:"option_pred"`
	Number   detection.Region  `json:"number_region"`
	OptionAt *detection.Region `json:"option_region,omitempty"`
}

// PairsResult is the output of sheet_pairs.
type PairsResult struct {
	Count int          `json:"count"`
	Pairs []PairResult `json:"pairs"`
}

func (s *Server) handleSheetPairs(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	page, err := s.loadPage(a.Path)
	if err != nil {
		return nil, err
	}

	readings, err := s.engine.Read(ctx, page)
	if err != nil {
		return nil, err
	}

	out := make([]PairResult, len(readings))
	for i, rd := range readings {
		out[i] = PairResult{
			Question: rd.Question,
			Option:   rd.Option,
			Number:   rd.Pair.Number,
			OptionAt: rd.Pair.Option,
		}
	}
	return &PairsResult{Count: len(out), Pairs: out}, nil
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if _, err := s.loadPage(a.Path); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}
