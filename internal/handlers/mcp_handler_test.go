package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/getmentor/mentor-finder/internal/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPHandler_SearchMentors(t *testing.T) {
	s := newTestServer(t)

	body := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"search_mentors","arguments":{"skill":"Go","page":2}}}`
	w := s.do(t, http.MethodPost, "/api/v1/mcp", body, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Result mcp.ToolCallResult `json:"result"`
		Error  *mcp.RPCError      `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Nil(t, resp.Error)
	require.Len(t, resp.Result.Content, 1)

	var out mcp.SearchMentorsResult
	require.NoError(t, json.Unmarshal([]byte(resp.Result.Content[0].Text), &out))
	assert.Equal(t, 2, out.Page)
	assert.Equal(t, 15, out.Total)
	assert.Len(t, out.Mentors, 5)
	skills := s.searcher.lastParams().Skills
	require.NotNil(t, skills)
	assert.Equal(t, "Go", *skills)
}

func TestMCPHandler_Errors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
		code   int
	}{
		{"not json", `{`, http.StatusBadRequest, mcp.ParseError},
		{"wrong version", `{"jsonrpc":"1.0","method":"initialize"}`, http.StatusBadRequest, mcp.InvalidRequest},
		{"unknown method", `{"jsonrpc":"2.0","method":"prompts/list"}`, http.StatusNotFound, mcp.MethodNotFound},
		{"bad date", `{"jsonrpc":"2.0","method":"tools/call","params":{"name":"search_mentors","arguments":{"from":"soon"}}}`, http.StatusBadRequest, mcp.InvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/v1/mcp", tt.body, nil)
			assert.Equal(t, tt.status, w.Code)

			var resp mcp.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}
