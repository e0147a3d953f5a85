package mcp

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHTTPServer(bearerToken string) *HTTPServer {
	registry := NewRegistry()
	registry.Register(&stubTool{name: "manage_task"})
	server := NewServer(registry, ServerInfo{Name: "taskvision-mcp", Version: "test"}, slog.Default())
	return NewHTTPServer(server, "*", bearerToken, slog.Default())
}

func TestHTTPServer_HealthDoesNotRequireAuth(t *testing.T) {
	h := newTestHTTPServer("secret")
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	h.Handler().ServeHTTP(w, req)
	assert.Equal(t, 200, w.Code)
}

func TestHTTPServer_RejectsMissingBearerTokenWhenConfigured(t *testing.T) {
	h := newTestHTTPServer("secret")
	req := httptest.NewRequest("POST", "/mcp", bytes.NewReader([]byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)))
	w := httptest.NewRecorder()
	h.Handler().ServeHTTP(w, req)
	assert.Equal(t, 401, w.Code)
}

func TestHTTPServer_AcceptsCorrectBearerToken(t *testing.T) {
	h := newTestHTTPServer("secret")
	req := httptest.NewRequest("POST", "/mcp", bytes.NewReader([]byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)))
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()
	h.Handler().ServeHTTP(w, req)
	assert.Equal(t, 200, w.Code)
}

func TestHTTPServer_NoTokenConfiguredAllowsAllRequests(t *testing.T) {
	h := newTestHTTPServer("")
	req := httptest.NewRequest("POST", "/mcp", bytes.NewReader([]byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)))
	w := httptest.NewRecorder()
	h.Handler().ServeHTTP(w, req)
	assert.Equal(t, 200, w.Code)
}

func TestHTTPServer_ToolsListReturnsRegisteredTools(t *testing.T) {
	h := newTestHTTPServer("")
	req := httptest.NewRequest("POST", "/mcp", bytes.NewReader([]byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)))
	w := httptest.NewRecorder()
	h.Handler().ServeHTTP(w, req)
	require.Equal(t, 200, w.Code)

	body, err := io.ReadAll(w.Result().Body)
	require.NoError(t, err)
	var decoded struct {
		Result ToolsListResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(body, &decoded))
	require.Len(t, decoded.Result.Tools, 1)
	assert.Equal(t, "manage_task", decoded.Result.Tools[0].Name)
}
