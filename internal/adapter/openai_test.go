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

func TestOpenAIAdapterInvoke(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer ds-key", r.Header.Get("Authorization"))

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			return
		}
		assert.Equal(t, "deepseek-chat", req.Model)
		if assert.Len(t, req.Messages, 1) {
			assert.Equal(t, "user", req.Messages[0].Role)
			assert.Equal(t, "roast me", req.Messages[0].Content)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":" {\"ok\":true} "},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	a := NewDeepSeek(&http.Client{Timeout: 5 * time.Second})
	a.BaseURL = srv.URL + "/v1"

	got, err := a.Invoke(context.Background(), "roast me", "ds-key")
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, got.Text)
	assert.Equal(t, "DeepSeek V3", got.Model)
}

func TestOpenAIAdapterStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid key","type":"auth"}}`))
	}))
	defer srv.Close()

	a := NewQwen(&http.Client{Timeout: 5 * time.Second})
	a.BaseURL = srv.URL

	_, err := a.Invoke(context.Background(), "p", "bad")
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "qwen", perr.Provider)
	assert.Equal(t, http.StatusUnauthorized, perr.Status)
}

func TestOpenAIAdapterEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","choices":[]}`))
	}))
	defer srv.Close()

	a := NewZhipu(&http.Client{Timeout: 5 * time.Second})
	a.BaseURL = srv.URL

	_, err := a.Invoke(context.Background(), "p", "z-key")
	assert.Error(t, err, "empty choices")
}

func TestOpenAIPresets(t *testing.T) {
	client := &http.Client{}
	tests := []struct {
		adapter *OpenAIAdapter
		name    string
		display string
		model   string
	}{
		{NewDeepSeek(client), "deepseek", "DeepSeek V3", "deepseek-chat"},
		{NewQwen(client), "qwen", "Qwen Plus", "qwen-plus"},
		{NewDoubao(client, "ep-123"), "doubao", "Doubao", "ep-123"},
		{NewZhipu(client), "zhipu", "GLM-4 Plus", "glm-4-plus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.adapter.Name())
			assert.Equal(t, tt.display, tt.adapter.DisplayName())
			assert.Equal(t, tt.model, tt.adapter.Model)
		})
	}
}
