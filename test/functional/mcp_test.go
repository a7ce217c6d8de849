package functional_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opendaw/opendaw-mcp/internal/testserver"
)

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
	ID      any             `json:"id,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type toolResult struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	IsError bool `json:"isError"`
}

func rpcCall(t *testing.T, ts *testserver.TestServer, method string, params any) rpcResponse {
	t.Helper()

	payload := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"id":      1,
	}
	if params != nil {
		payload["params"] = params
	}

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(ts.Server.URL+"/mcp", "application/json", bytes.NewBuffer(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result rpcResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return result
}

// callTool makes a tools/call RPC call and unwraps the tool result text.
func callTool(t *testing.T, ts *testserver.TestServer, toolName string, args any) toolResult {
	t.Helper()

	params := map[string]any{"name": toolName}
	if args != nil {
		params["arguments"] = args
	}

	resp := rpcCall(t, ts, "tools/call", params)
	require.Nil(t, resp.Error, "RPC error: %v", resp.Error)

	var result toolResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	require.NotEmpty(t, result.Content)
	return result
}

var uuidPattern = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)

func TestFunctional_Initialize(t *testing.T) {
	ts := testserver.New(t)

	resp := rpcCall(t, ts, "initialize", map[string]any{
		"protocolVersion": "2024-11-05",
		"capabilities":    map[string]any{},
		"clientInfo":      map[string]any{"name": "test-client", "version": "1.0.0"},
	})
	require.Nil(t, resp.Error)

	var init struct {
		ProtocolVersion string `json:"protocolVersion"`
		ServerInfo      struct {
			Name string `json:"name"`
		} `json:"serverInfo"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &init))
	require.Equal(t, "2024-11-05", init.ProtocolVersion)
	require.Equal(t, "OpenDAW MCP Server", init.ServerInfo.Name)
}

func TestFunctional_ProjectLifecycle(t *testing.T) {
	ts := testserver.New(t)

	created := callTool(t, ts, "create_project", map[string]any{"name": "Demo"})
	require.False(t, created.IsError)
	projectID := uuidPattern.FindString(created.Content[0].Text)
	require.NotEmpty(t, projectID)

	added := callTool(t, ts, "add_track", map[string]any{
		"project_id": projectID,
		"name":       "Drums",
	})
	require.False(t, added.IsError)

	loaded := callTool(t, ts, "load_project", map[string]any{"project_id": projectID})
	require.False(t, loaded.IsError)
	require.Contains(t, loaded.Content[0].Text, "Drums")
	require.Contains(t, loaded.Content[0].Text, "Tracks: 1")

	listed := callTool(t, ts, "list_projects", nil)
	require.False(t, listed.IsError)
	require.Contains(t, listed.Content[0].Text, "Demo")

	exported := callTool(t, ts, "export_project", map[string]any{
		"project_id": projectID,
		"format":     "wav",
	})
	require.False(t, exported.IsError)

	deleted := callTool(t, ts, "delete_project", map[string]any{"project_id": projectID})
	require.False(t, deleted.IsError)

	gone := callTool(t, ts, "load_project", map[string]any{"project_id": projectID})
	require.False(t, gone.IsError)
	require.Contains(t, gone.Content[0].Text, "not found")
}

func TestFunctional_UnknownToolStaysDataShaped(t *testing.T) {
	ts := testserver.New(t)

	result := callTool(t, ts, "set_tempo", map[string]any{"tempo": 90})
	require.True(t, result.IsError)
	require.Contains(t, result.Content[0].Text, "set_tempo")
}

func TestFunctional_UnknownMethodIsProtocolError(t *testing.T) {
	ts := testserver.New(t)

	resp := rpcCall(t, ts, "sessions/open", nil)
	require.NotNil(t, resp.Error)
	require.Equal(t, -32601, resp.Error.Code)
}

func TestFunctional_HealthAndTools(t *testing.T) {
	ts := testserver.New(t)

	resp, err := http.Get(ts.Server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health struct {
		Status string `json:"status"`
		Tools  int    `json:"tools"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	require.Equal(t, "healthy", health.Status)
	require.Equal(t, 9, health.Tools)

	toolsResp, err := http.Get(ts.Server.URL + "/tools")
	require.NoError(t, err)
	defer toolsResp.Body.Close()

	var tools struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.NewDecoder(toolsResp.Body).Decode(&tools))
	require.Equal(t, 9, tools.Count)
}
