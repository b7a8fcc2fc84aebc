package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ai-chat-assistant/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.AIServiceAdapter = (*DeepAIAdapter)(nil)

const ProviderDeepAI = "deepai"

// DeepAIAdapter calls the DeepAI text-generator endpoint.
// Request: form field "text", header "api-key". Response: {"output": "..."}.
type DeepAIAdapter struct {
	apiKey string
	url    string
	client *http.Client
}

func NewDeepAIAdapter(apiKey, endpoint string, client *http.Client) (*DeepAIAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("deepai api key empty")
	}
	if endpoint == "" {
		endpoint = "https://api.deepai.org/api/text-generator"
	}
	if client == nil {
		// per-call deadlines come from ctx; this only guards a stuck connection
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &DeepAIAdapter{apiKey: apiKey, url: endpoint, client: client}, nil
}

func (d *DeepAIAdapter) Name() string { return ProviderDeepAI }

func (d *DeepAIAdapter) Generate(ctx context.Context, prompt string) (string, error) {
	form := url.Values{"text": {prompt}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, strings.NewReader(form.Encode()))
	if err != nil {
		return "", &adapter.ProviderError{Provider: ProviderDeepAI, Kind: adapter.ProviderErrTransport, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("api-key", d.apiKey)

	resp, err := d.client.Do(req)
	if err != nil {
		return "", &adapter.ProviderError{Provider: ProviderDeepAI, Kind: adapter.ProviderErrTransport, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", &adapter.ProviderError{Provider: ProviderDeepAI, Kind: adapter.ProviderErrStatus, StatusCode: resp.StatusCode}
	}

	var payload struct {
		Output *string `json:"output"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil {
		return "", &adapter.ProviderError{Provider: ProviderDeepAI, Kind: adapter.ProviderErrMalformed, Err: err}
	}
	if payload.Output == nil {
		return "", &adapter.ProviderError{Provider: ProviderDeepAI, Kind: adapter.ProviderErrMalformed, Err: errors.New("missing output field")}
	}
	out := strings.TrimSpace(*payload.Output)
	if out == "" {
		return "", &adapter.ProviderError{Provider: ProviderDeepAI, Kind: adapter.ProviderErrMalformed, Err: errors.New("empty output")}
	}
	return out, nil
}
