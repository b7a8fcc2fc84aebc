package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"ai-chat-assistant/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.AIServiceAdapter = (*OpenAIAdapter)(nil)

const ProviderOpenAI = "openai"

// OpenAIAdapter implements adapter.AIServiceAdapter using the Chat Completions API.
type OpenAIAdapter struct {
	client openai.Client
	model  string
}

func NewOpenAIAdapter(apiKey, model string, opts ...option.RequestOption) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	// retries are owned by the fallback chain
	base := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	return &OpenAIAdapter{
		client: openai.NewClient(append(base, opts...)...),
		model:  model,
	}, nil
}

func (o *OpenAIAdapter) Name() string { return ProviderOpenAI }

func (o *OpenAIAdapter) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &adapter.ProviderError{Provider: ProviderOpenAI, Kind: adapter.ProviderErrStatus, StatusCode: apiErr.StatusCode, Err: err}
		}
		return "", &adapter.ProviderError{Provider: ProviderOpenAI, Kind: adapter.ProviderErrTransport, Err: err}
	}
	for _, c := range resp.Choices {
		if s := strings.TrimSpace(c.Message.Content); s != "" {
			return s, nil
		}
	}
	return "", &adapter.ProviderError{Provider: ProviderOpenAI, Kind: adapter.ProviderErrMalformed, Err: errors.New("no choice content")}
}
