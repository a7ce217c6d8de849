package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type handlerStub struct {
	handleFn func(context.Context, string, json.RawMessage) (any, error)
}

func (h handlerStub) Handle(ctx context.Context, method string, params json.RawMessage) (any, error) {
	return h.handleFn(ctx, method, params)
}

type catalogStub struct {
	tools []ToolSummary
}

func (c catalogStub) ToolSummaries() []ToolSummary { return c.tools }
func (c catalogStub) Counts() (int, int, int)      { return len(c.tools), 1, 1 }

func newTestServer(handleFn func(context.Context, string, json.RawMessage) (any, error)) http.Handler {
	return NewServer(
		handlerStub{handleFn: handleFn},
		catalogStub{tools: []ToolSummary{
			{Name: "create_project", Description: "Create a new music project"},
			{Name: "list_projects", Description: "List all available projects"},
		}},
	)
}

func postMCP(t *testing.T, srv http.Handler, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return rec, payload
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "healthy", payload["status"])
	require.Equal(t, "OpenDAW MCP Server", payload["server"])
	require.Equal(t, float64(2), payload["tools"])
}

func TestToolsEndpoint(t *testing.T) {
	srv := newTestServer(nil)

	req := httptest.NewRequest(http.MethodGet, "/tools", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Tools []ToolSummary `json:"tools"`
		Count int           `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, 2, payload.Count)
	require.Equal(t, "create_project", payload.Tools[0].Name)
}

func TestMCPSuccessEnvelope(t *testing.T) {
	srv := newTestServer(func(_ context.Context, method string, _ json.RawMessage) (any, error) {
		require.Equal(t, "tools/list", method)
		return map[string]any{"tools": []any{}}, nil
	})

	rec, payload := postMCP(t, srv, `{"jsonrpc":"2.0","method":"tools/list","id":7}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "2.0", payload["jsonrpc"])
	require.Equal(t, float64(7), payload["id"])
	require.NotNil(t, payload["result"])
	require.Nil(t, payload["error"])
}

func TestMCPEchoesStringAndNullIDs(t *testing.T) {
	srv := newTestServer(func(context.Context, string, json.RawMessage) (any, error) {
		return map[string]any{}, nil
	})

	_, payload := postMCP(t, srv, `{"jsonrpc":"2.0","method":"initialize","id":"abc"}`)
	require.Equal(t, "abc", payload["id"])

	_, payload = postMCP(t, srv, `{"jsonrpc":"2.0","method":"initialize","id":null}`)
	id, present := payload["id"]
	require.True(t, present)
	require.Nil(t, id)
}

func TestMCPProtocolError(t *testing.T) {
	srv := newTestServer(func(_ context.Context, method string, _ json.RawMessage) (any, error) {
		return nil, MethodNotFound(method)
	})

	rec, payload := postMCP(t, srv, `{"jsonrpc":"2.0","method":"bogus","id":1}`)
	// JSON-RPC errors still ride a 200 at the HTTP layer.
	require.Equal(t, http.StatusOK, rec.Code)

	errObj, ok := payload["error"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, float64(ErrMethodNotFound), errObj["code"])
	require.Contains(t, errObj["message"], "bogus")
	require.Nil(t, payload["result"])
}

func TestMCPInternalError(t *testing.T) {
	srv := newTestServer(func(context.Context, string, json.RawMessage) (any, error) {
		return nil, context.DeadlineExceeded
	})

	_, payload := postMCP(t, srv, `{"jsonrpc":"2.0","method":"tools/list","id":2}`)
	errObj, ok := payload["error"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, float64(ErrInternal), errObj["code"])
}

func TestMCPMalformedBody(t *testing.T) {
	srv := newTestServer(nil)

	_, payload := postMCP(t, srv, `{not json`)
	errObj, ok := payload["error"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, float64(ErrInvalidReq), errObj["code"])
}

func TestMCPMissingMethod(t *testing.T) {
	srv := newTestServer(nil)

	_, payload := postMCP(t, srv, `{"jsonrpc":"2.0","id":3}`)
	require.NotNil(t, payload["error"])
}

func TestCORSHeaders(t *testing.T) {
	srv := newTestServer(nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	preflight := httptest.NewRequest(http.MethodOptions, "/mcp", nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, preflight)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}
