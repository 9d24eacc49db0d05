package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	geminiDefaultBaseURL = "https://generativelanguage.googleapis.com"
	geminiAPIVersion     = "v1beta"
)

// GeminiAdapter calls the Google Generative Language REST API.
type GeminiAdapter struct {
	BaseURL string
	Model   string
	Display string
	Client  *http.Client
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// GeminiDefaultModel is used when no model is configured.
const GeminiDefaultModel = "gemini-2.5-flash"

// NewGemini builds a Gemini adapter. An empty model selects GeminiDefaultModel.
func NewGemini(client *http.Client, model string) *GeminiAdapter {
	if model == "" || model == GeminiDefaultModel {
		return &GeminiAdapter{Model: GeminiDefaultModel, Display: "Gemini 2.5 Flash", Client: client}
	}
	return &GeminiAdapter{Model: model, Client: client}
}

func (g *GeminiAdapter) Name() string { return "gemini" }

func (g *GeminiAdapter) DisplayName() string {
	if g.Display != "" {
		return g.Display
	}
	return g.Model
}

func (g *GeminiAdapter) Invoke(ctx context.Context, prompt, credential string) (Outcome, error) {
	if credential == "" {
		return Outcome{}, &ProviderError{Provider: g.Name(), Err: ErrMissingCredential}
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return Outcome{}, providerErr(g.Name(), 0, "marshal request: %w", err)
	}

	baseURL := g.BaseURL
	if baseURL == "" {
		baseURL = geminiDefaultBaseURL
	}
	// The key travels in a header so it never ends up in a logged URL.
	url := fmt.Sprintf("%s/%s/models/%s:generateContent", strings.TrimRight(baseURL, "/"), geminiAPIVersion, g.Model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Outcome{}, providerErr(g.Name(), 0, "create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", credential)

	resp, err := g.Client.Do(req)
	if err != nil {
		return Outcome{}, providerErr(g.Name(), 0, "request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp geminiErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil || errResp.Error.Message == "" {
			return Outcome{}, &ProviderError{Provider: g.Name(), Status: resp.StatusCode}
		}
		return Outcome{}, &ProviderError{Provider: g.Name(), Status: resp.StatusCode, Err: errors.New(errResp.Error.Message)}
	}

	var genResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return Outcome{}, providerErr(g.Name(), 0, "decode response: %w", err)
	}
	if len(genResp.Candidates) == 0 {
		return Outcome{}, providerErr(g.Name(), 0, "empty response candidates")
	}

	var text strings.Builder
	for _, part := range genResp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	if text.Len() == 0 {
		return Outcome{}, providerErr(g.Name(), 0, "candidate has no text (finish reason %q)", genResp.Candidates[0].FinishReason)
	}

	return Outcome{Text: strings.TrimSpace(text.String()), Model: g.DisplayName()}, nil
}
