package extract

import (
	"context"
	"errors"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"
)

// CompatClient talks to self-hosted OpenAI-compatible servers (Ollama,
// vLLM, LM Studio) through go-openai.
type CompatClient struct {
	client *goopenai.Client
	model  string
}

func NewCompatClient(baseURL, apiKey, model string) *CompatClient {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &CompatClient{
		client: goopenai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (c *CompatClient) Model() string { return c.model }

func (c *CompatClient) Complete(ctx context.Context, req Request) (string, error) {
	var msgs []goopenai.ChatCompletionMessage
	if req.System != "" {
		msgs = append(msgs, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleSystem, Content: req.System})
	}
	msgs = append(msgs, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleUser, Content: req.Prompt})

	ccr := goopenai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: float32(req.Temperature),
	}
	if req.JSONObject {
		ccr.ResponseFormat = &goopenai.ChatCompletionResponseFormat{Type: goopenai.ChatCompletionResponseFormatTypeJSONObject}
	}

	resp, err := c.client.CreateChatCompletion(ctx, ccr)
	if err != nil {
		return "", mapCompatError(err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("compat: no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

func mapCompatError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		if retryableStatus(apiErr.HTTPStatusCode) {
			return &RetryableError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
		}
		return fmt.Errorf("compat status %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && retryableStatus(reqErr.HTTPStatusCode) {
		return &RetryableError{StatusCode: reqErr.HTTPStatusCode, Message: reqErr.Error()}
	}
	return fmt.Errorf("compat: %w", err)
}
