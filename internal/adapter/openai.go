package adapter

import (
	"context"
	"errors"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIAdapter talks to any vendor exposing an OpenAI-compatible
// /chat/completions endpoint under BaseURL.
type OpenAIAdapter struct {
	ID      string
	BaseURL string
	Model   string
	Display string
	Client  *http.Client
}

// Vendor presets for the OpenAI-compatible providers.
const (
	DeepSeekBaseURL = "https://api.deepseek.com"
	QwenBaseURL     = "https://dashscope.aliyuncs.com/compatible-mode/v1"
	DoubaoBaseURL   = "https://ark.cn-beijing.volces.com/api/v3"
	ZhipuBaseURL    = "https://open.bigmodel.cn/api/paas/v4"
)

func NewDeepSeek(client *http.Client) *OpenAIAdapter {
	return &OpenAIAdapter{ID: "deepseek", BaseURL: DeepSeekBaseURL, Model: "deepseek-chat", Display: "DeepSeek V3", Client: client}
}

func NewQwen(client *http.Client) *OpenAIAdapter {
	return &OpenAIAdapter{ID: "qwen", BaseURL: QwenBaseURL, Model: "qwen-plus", Display: "Qwen Plus", Client: client}
}

// NewDoubao needs the Ark endpoint id, which doubles as the model name.
func NewDoubao(client *http.Client, endpointID string) *OpenAIAdapter {
	return &OpenAIAdapter{ID: "doubao", BaseURL: DoubaoBaseURL, Model: endpointID, Display: "Doubao", Client: client}
}

func NewZhipu(client *http.Client) *OpenAIAdapter {
	return &OpenAIAdapter{ID: "zhipu", BaseURL: ZhipuBaseURL, Model: "glm-4-plus", Display: "GLM-4 Plus", Client: client}
}

func (o *OpenAIAdapter) Name() string { return o.ID }

func (o *OpenAIAdapter) DisplayName() string {
	if o.Display != "" {
		return o.Display
	}
	return o.Model
}

func (o *OpenAIAdapter) Invoke(ctx context.Context, prompt, credential string) (Outcome, error) {
	if credential == "" {
		return Outcome{}, &ProviderError{Provider: o.Name(), Err: ErrMissingCredential}
	}

	cfg := openai.DefaultConfig(credential)
	cfg.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.Client != nil {
		cfg.HTTPClient = o.Client
	}
	client := openai.NewClientWithConfig(cfg)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return Outcome{}, o.wrapError(err)
	}

	if len(resp.Choices) == 0 {
		return Outcome{}, providerErr(o.Name(), 0, "empty response choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return Outcome{}, providerErr(o.Name(), 0, "empty message content")
	}

	return Outcome{Text: text, Model: o.DisplayName()}, nil
}

func (o *OpenAIAdapter) wrapError(err error) *ProviderError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{Provider: o.Name(), Status: apiErr.HTTPStatusCode, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &ProviderError{Provider: o.Name(), Status: reqErr.HTTPStatusCode, Err: err}
	}
	return &ProviderError{Provider: o.Name(), Err: err}
}
