package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClaude(baseURL string) *ClaudeAdapter {
	return &ClaudeAdapter{
		BaseURL: baseURL,
		Model:   "claude-sonnet-4-5-20250929",
		Client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func TestClaudeAdapterInvoke(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-test", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var req claudeMessagesRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			return
		}
		if assert.Len(t, req.Messages, 1) {
			assert.Equal(t, "user", req.Messages[0].Role)
			assert.Equal(t, "roast me", req.Messages[0].Content)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(claudeMessagesResponse{
			Content: []claudeContentBlock{{Type: "text", Text: ` {"archetype":"x"} `}},
		})
	}))
	defer srv.Close()

	got, err := newClaude(srv.URL).Invoke(context.Background(), "roast me", "sk-test")
	require.NoError(t, err)
	assert.Equal(t, `{"archetype":"x"}`, got.Text)
	assert.Equal(t, "Claude (claude-sonnet-4-5-20250929)", got.Model)
}

func TestClaudeAdapterServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"type": "error",
			"error": map[string]any{
				"type":    "invalid_request_error",
				"message": "bad request",
			},
		})
	}))
	defer srv.Close()

	_, err := newClaude(srv.URL).Invoke(context.Background(), "hello", "sk-test")
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusBadRequest, perr.Status)
	assert.Equal(t, "claude", perr.Provider)
}

func TestClaudeAdapterEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(claudeMessagesResponse{Content: []claudeContentBlock{}})
	}))
	defer srv.Close()

	_, err := newClaude(srv.URL).Invoke(context.Background(), "hello", "sk-test")
	assert.Error(t, err, "empty content")
}

func TestClaudeAdapterMissingCredential(t *testing.T) {
	_, err := newClaude("http://unused").Invoke(context.Background(), "hello", "")
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestClaudeAdapterContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newClaude(srv.URL).Invoke(ctx, "hello", "sk-test")
	assert.Error(t, err, "cancelled context")
}

func TestClaudeAdapterNames(t *testing.T) {
	a := &ClaudeAdapter{Model: "claude-sonnet-4-5-20250929"}
	assert.Equal(t, "claude", a.Name())
	assert.Equal(t, "Claude (claude-sonnet-4-5-20250929)", a.DisplayName())
}
