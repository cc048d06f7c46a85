package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the answer sheet image (PNG, JPEG or GIF)",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Grading
		{
			Name: "sheet_grade",
			Description: "Grade a photographed answer sheet. Detects handwritten question numbers and option letters, " +
				"pairs them by row, classifies them and compares against the answer key. Returns score, total, " +
				"percentage and one result row per detected question. Supply either answer_key or exam_code.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"answer_key": map[string]interface{}{
						"type":                 "object",
						"description":          "Inline answer key mapping question labels to options, e.g. {\"1\": \"A\", \"2\": \"C\"}",
						"additionalProperties": map[string]interface{}{"type": "string", "enum": []string{"A", "B", "C", "D"}},
					},
					"exam_code": map[string]interface{}{
						"type":        "string",
						"description": "Name of a stored answer key (letters, digits, '-' and '_')",
					},
				},
				"required": []string{"path"},
			},
		},

		// Diagnostics
		{
			Name:        "sheet_regions",
			Description: "Detect candidate handwriting regions on an answer sheet and report which column (numbers on the left, options on the right) each belongs to.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "sheet_pairs",
			Description: "Pair question numbers with option letters by row and return the predicted labels without grading.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
