package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, content string, check func(body map[string]any)) *Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]any
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if check != nil {
			check(body)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   body["model"],
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
			"usage": map[string]any{"prompt_tokens": 1, "completion_tokens": 1, "total_tokens": 2},
		})
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{APIKey: "sk-test", BaseURL: server.URL, Model: "test-model"})
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}

func TestClient_Complete(t *testing.T) {
	client := newTestServer(t, "  DeFi son finanzas descentralizadas.  ", func(body map[string]any) {
		assert.Equal(t, "test-model", body["model"])
		msgs := body["messages"].([]any)
		if !assert.Len(t, msgs, 2) {
			return
		}
		assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
		assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
		assert.Equal(t, "¿Qué es DeFi?", msgs[1].(map[string]any)["content"])
		assert.Nil(t, body["response_format"])
	})

	text, err := client.Complete(context.Background(), Completion{System: "persona", Prompt: "¿Qué es DeFi?"})
	require.NoError(t, err)
	assert.Equal(t, "DeFi son finanzas descentralizadas.", text)
}

func TestClient_CompleteJSON(t *testing.T) {
	client := newTestServer(t, `{"trends":[]}`, func(body map[string]any) {
		assert.Equal(t, "gpt-4", body["model"])
		rf := body["response_format"].(map[string]any)
		assert.Equal(t, "json_object", rf["type"])
		msgs := body["messages"].([]any)
		assert.Len(t, msgs, 1)
	})

	text, err := client.Complete(context.Background(), Completion{Prompt: "x", JSON: true, Model: "gpt-4"})
	require.NoError(t, err)
	assert.Equal(t, `{"trends":[]}`, text)
}

func TestClient_EmptyCompletion(t *testing.T) {
	client := newTestServer(t, "   ", nil)
	_, err := client.Complete(context.Background(), Completion{Prompt: "x"})
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}
