// Package server implements the MCP (Model Context Protocol) server for
// answer-sheet grading.
//
// This package provides a JSON-RPC 2.0 server that exposes the grading
// pipeline as MCP tools, so an assistant or a thin web backend can grade
// photographed answer sheets without linking the pipeline itself.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Grading:
//   - sheet_grade: Grade a sheet against an inline answer_key or a stored exam_code
//
// Diagnostics:
//   - sheet_regions: Detected regions and their column
//   - sheet_pairs: Paired rows with predicted labels, ungraded
//   - image_dimensions: Get width and height
//
// # Image Caching
//
// Pages are loaded through an in-memory cache keyed by path, so diagnostics
// on the same sheet decode it once. sheet_grade evicts the page when done.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: the grading failure message, or "Tool execution failed"
//   - data: ToolErrorData with the failure kind (ImageDecodeFailure,
//     NoRegionsFound, AnswerKeyMissing, InferenceFailure) and error text
//
// # Usage
//
//	srv := server.New(engine, answerkey.FileStore{Dir: "answer_keys"}, logger)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
