package extract

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

// OpenAIConfig configures an OpenAI-compatible chat completions client.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	// DisableThinking asks reasoning models served behind an
	// OpenAI-compatible gateway to skip their thinking phase.
	DisableThinking bool
}

// OpenAIClient calls chat completions through openai-go.
type OpenAIClient struct {
	client openai.Client
	model  string
	extra  []option.RequestOption
}

func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{}),
		// Retries are handled by the extractor.
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	c := &OpenAIClient{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}
	if cfg.DisableThinking {
		c.extra = append(c.extra, option.WithJSONSet("chat_template_kwargs", map[string]any{"thinking": false}))
	}
	return c
}

func (c *OpenAIClient) Model() string { return c.model }

func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	var msgs []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		msgs = append(msgs, openai.SystemMessage(req.System))
	}
	msgs = append(msgs, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    msgs,
		Temperature: openai.Float(req.Temperature),
	}
	if req.JSONObject {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params, c.extra...)
	if err != nil {
		return "", mapOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

func mapOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if retryableStatus(apiErr.StatusCode) {
			return &RetryableError{StatusCode: apiErr.StatusCode, Message: apiErr.Message}
		}
		return fmt.Errorf("openai status %d: %s", apiErr.StatusCode, apiErr.Message)
	}
	return fmt.Errorf("openai: %w", err)
}
