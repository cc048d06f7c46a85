package server

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	s := newTestServer(t, nil)
	if s == nil {
		t.Fatal("New() returned nil")
	}
	if s.cache == nil {
		t.Fatal("New() did not initialize cache")
	}
}

func TestMCPRequest_Unmarshal(t *testing.T) {
	tests := []struct {
		name       string
		json       string
		wantID     interface{}
		wantMethod string
	}{
		{
			"string id",
			`{"jsonrpc":"2.0","id":"test-1","method":"tools/list"}`,
			"test-1",
			"tools/list",
		},
		{
			"number id",
			`{"jsonrpc":"2.0","id":42,"method":"ping"}`,
			float64(42), // JSON numbers decode as float64
			"ping",
		},
		{
			"null id",
			`{"jsonrpc":"2.0","id":null,"method":"initialize"}`,
			nil,
			"initialize",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req MCPRequest
			if err := json.Unmarshal([]byte(tt.json), &req); err != nil {
				t.Fatalf("Failed to unmarshal: %v", err)
			}

			if req.ID != tt.wantID {
				t.Errorf("ID: got %v (%T), want %v (%T)", req.ID, req.ID, tt.wantID, tt.wantID)
			}
			if req.Method != tt.wantMethod {
				t.Errorf("Method: got %s, want %s", req.Method, tt.wantMethod)
			}
		})
	}
}

func TestHandleRequest_Initialize(t *testing.T) {
	s := newTestServer(t, nil)
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "initialize"})

	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	if result["protocolVersion"] != "2024-11-05" {
		t.Errorf("protocolVersion: got %v", result["protocolVersion"])
	}
	info := result["serverInfo"].(map[string]interface{})
	if info["name"] != "sheet-grader" {
		t.Errorf("serverInfo.name: got %v", info["name"])
	}
}

func TestHandleRequest_Routing(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()

	t.Run("ping", func(t *testing.T) {
		resp := s.handleRequest(ctx, &MCPRequest{JSONRPC: "2.0", ID: "ping-1", Method: "ping"})
		if resp == nil || resp.Error != nil {
			t.Fatalf("resp = %+v", resp)
		}
		if resp.ID != "ping-1" {
			t.Errorf("ID: got %v, want ping-1", resp.ID)
		}
	})

	t.Run("initialized notification", func(t *testing.T) {
		if resp := s.handleRequest(ctx, &MCPRequest{JSONRPC: "2.0", Method: "notifications/initialized"}); resp != nil {
			t.Errorf("expected no response, got %+v", resp)
		}
	})

	t.Run("unknown method", func(t *testing.T) {
		resp := s.handleRequest(ctx, &MCPRequest{JSONRPC: "2.0", ID: 7, Method: "resources/list"})
		if resp == nil || resp.Error == nil {
			t.Fatalf("expected error response, got %+v", resp)
		}
		if resp.Error.Code != -32601 {
			t.Errorf("Error.Code: got %d, want -32601", resp.Error.Code)
		}
	})
}

func TestServe(t *testing.T) {
	s := newTestServer(t, nil)
	in := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`not json`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
	}, "\n")

	var out bytes.Buffer
	if err := s.Serve(context.Background(), strings.NewReader(in), &out); err != nil {
		t.Fatalf("Serve failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d responses, want 3:\n%s", len(lines), out.String())
	}

	var parseErr MCPResponse
	if err := json.Unmarshal([]byte(lines[1]), &parseErr); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if parseErr.Error == nil || parseErr.Error.Code != -32700 {
		t.Errorf("expected parse error, got %s", lines[1])
	}

	var list struct {
		ID     float64 `json:"id"`
		Result struct {
			Tools []Tool `json:"tools"`
		} `json:"result"`
	}
	if err := json.Unmarshal([]byte(lines[2]), &list); err != nil {
		t.Fatalf("failed to decode tools/list: %v", err)
	}
	if list.ID != 2 || len(list.Result.Tools) != len(GetToolDefinitions()) {
		t.Errorf("tools/list = %s", lines[2])
	}
}
