package provider

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/ZaguanLabs/xraytl"
)

const (
	// DefaultAnthropicModel is used when AnthropicConfig.Model is empty.
	DefaultAnthropicModel = "claude-3-5-haiku-latest"

	defaultAnthropicMaxTokens = 4096
)

// AnthropicProvider implements Backend using the Anthropic Messages API.
type AnthropicProvider struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
}

// AnthropicConfig holds configuration for the Anthropic provider.
type AnthropicConfig struct {
	APIKey    string
	Model     string
	MaxTokens int64
	BaseURL   string
}

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(cfg AnthropicConfig) *AnthropicProvider {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	c := anthropic.NewClient(opts...)

	model := cfg.Model
	if model == "" {
		model = DefaultAnthropicModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	return &AnthropicProvider{
		client:    &c,
		model:     model,
		maxTokens: maxTokens,
	}
}

// Model returns the configured model name.
func (p *AnthropicProvider) Model() string {
	return p.model
}

// Translate translates a batch of fragments using Claude.
func (p *AnthropicProvider) Translate(ctx context.Context, req BatchRequest) ([]string, error) {
	if len(req.Texts) == 0 {
		return []string{}, nil
	}

	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: p.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildUserMessage(req))),
		},
		System: []anthropic.TextBlockParam{
			{Text: buildSystemPrompt(req)},
		},
	})
	if err != nil {
		return nil, &xraytl.ProviderError{
			Message:   "Anthropic API call failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}

	var text string
	for i := range resp.Content {
		if resp.Content[i].Type == "text" {
			text = strings.TrimSpace(resp.Content[i].Text)
			break
		}
	}
	if text == "" {
		return nil, &xraytl.ProviderError{
			Message:   "no response from Anthropic",
			Retryable: true,
		}
	}

	return parseResponse(text, len(req.Texts), "Anthropic")
}

var _ Backend = (*AnthropicProvider)(nil)
