// Package llama is a client for the conversational AI proxy.
package llama

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/lmittmann/tint"
	"github.com/sashabaranov/go-openai"
)

const (
	// DefaultURL is the chat endpoint used when none is configured.
	DefaultURL = "https://llama-ai-khaki.vercel.app/api/llama/chat"

	// NoResponse is returned when the proxy answers without a completion.
	NoResponse = "Sorry, I could not generate a response."
	// RequestFailed is returned when the proxy cannot be reached or decoded.
	RequestFailed = "Error occurred while processing your request."
)

// Client calls the chat proxy. The proxy returns an OpenAI shaped chat
// completion.
type Client struct {
	httpClient *http.Client
	endpoint   string
}

// NewClient creates a Client for endpoint.
func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = DefaultURL
	}
	return &Client{
		httpClient: &http.Client{},
		endpoint:   endpoint,
	}
}

// Complete returns the completion for prompt. It never fails; upstream
// problems are logged and replaced with a fixed message.
func (c *Client) Complete(ctx context.Context, prompt string) string {
	resp, err := c.chat(ctx, prompt)
	if err != nil {
		slog.Error("error calling llama", "prompt", prompt, tint.Err(err))
		return RequestFailed
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		slog.Warn("llama returned no completion", "id", resp.ID)
		return NoResponse
	}
	return resp.Choices[0].Message.Content
}

func (c *Client) chat(ctx context.Context, prompt string) (*openai.ChatCompletionResponse, error) {
	reqURL := c.endpoint + "?prompt=" + url.QueryEscape(prompt)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read chat response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("chat request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var completion openai.ChatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return nil, fmt.Errorf("failed to decode chat response: %w", err)
	}
	return &completion, nil
}
