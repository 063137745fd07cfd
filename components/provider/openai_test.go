package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/careerchat/components"
	"github.com/bububa/careerchat/schema"
)

func startOpenAIServer(t *testing.T, handler func(t *testing.T, req map[string]any) string) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		req := make(map[string]any)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(handler(t, req)))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIChatWithTools(t *testing.T) {
	srv := startOpenAIServer(t, func(t *testing.T, req map[string]any) string {
		assert.Equal(t, "llama3-70b-8192", req["model"])
		tools, ok := req["tools"].([]any)
		require.True(t, ok)
		require.Len(t, tools, 1)
		msgs := req["messages"].([]any)
		require.Len(t, msgs, 2)
		assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
		assert.NotContains(t, msgs[1].(map[string]any), "name")
		assert.Equal(t, "user_proxy: review cv.txt", msgs[1].(map[string]any)["content"])
		return `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "llama3-70b-8192",
			"choices": [{
				"index": 0,
				"finish_reason": "tool_calls",
				"message": {
					"role": "assistant",
					"content": "",
					"tool_calls": [{"id": "call_1", "type": "function", "function": {"name": "read_file", "arguments": "{\"path\":\"cv.txt\"}"}}]
				}
			}],
			"usage": {"prompt_tokens": 42, "completion_tokens": 7, "total_tokens": 49}
		}`
	})
	clt, err := New(Groq, WithAPIKey("test-key"), WithBaseURL(srv.URL+"/v1"))
	require.NoError(t, err)
	assert.Equal(t, Groq, clt.Name())
	resp, err := clt.Chat(context.Background(), &Request{
		Model:        "llama3-70b-8192",
		SystemPrompt: "You analyse CVs.",
		Viewer:       "cv_analyst",
		Messages: []components.Message{
			*components.NewMessage(components.UserRole, schema.NewString("review cv.txt")).SetName("user_proxy"),
		},
		Tools: []components.ToolDefinition{{
			Name:        "read_file",
			Description: "read a file",
			Parameters:  json.RawMessage(`{"type":"object","properties":{"path":{"type":"string"}}}`),
		}},
	})
	require.NoError(t, err)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, components.ToolCall{ID: "call_1", Name: "read_file", Arguments: `{"path":"cv.txt"}`}, resp.ToolCalls[0])
	require.NotNil(t, resp.LLM.Usage)
	assert.Equal(t, int64(42), resp.LLM.Usage.InputTokens)
	assert.Equal(t, "chatcmpl-1", resp.LLM.ID)
}

func TestOpenAIChatKeepsNames(t *testing.T) {
	srv := startOpenAIServer(t, func(t *testing.T, req map[string]any) string {
		msgs := req["messages"].([]any)
		require.Len(t, msgs, 1)
		assert.Equal(t, "user_proxy", msgs[0].(map[string]any)["name"])
		assert.Equal(t, "review cv.txt", msgs[0].(map[string]any)["content"])
		return `{"id":"chatcmpl-3","object":"chat.completion","model":"gpt-4o-mini","choices":[{"index":0,"message":{"role":"assistant","content":"ok"}}]}`
	})
	clt, err := New(OpenAI, WithAPIKey("test-key"), WithBaseURL(srv.URL+"/v1"))
	require.NoError(t, err)
	resp, err := clt.Chat(context.Background(), &Request{
		Model:    "gpt-4o-mini",
		Viewer:   "cv_analyst",
		Messages: []components.Message{*components.NewMessage(components.UserRole, schema.NewString("review cv.txt")).SetName("user_proxy")},
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
}

func TestOpenAIEmptyChoices(t *testing.T) {
	srv := startOpenAIServer(t, func(t *testing.T, req map[string]any) string {
		return `{"id":"chatcmpl-2","object":"chat.completion","model":"gpt-4o-mini","choices":[]}`
	})
	clt, err := New(OpenAI, WithAPIKey("test-key"), WithBaseURL(srv.URL+"/v1"))
	require.NoError(t, err)
	_, err = clt.Chat(context.Background(), &Request{Model: "gpt-4o-mini"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New("bard")
	assert.Error(t, err)
}

func TestCohereRejectsTools(t *testing.T) {
	clt, err := New(Cohere, WithAPIKey("test-key"))
	require.NoError(t, err)
	_, err = clt.Chat(context.Background(), &Request{Tools: []components.ToolDefinition{{Name: "read_file"}}})
	assert.ErrorIs(t, err, ErrToolsUnsupported)
}
