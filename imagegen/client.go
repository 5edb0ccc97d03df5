// Package imagegen is a client for the image generation proxy.
package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/brensch/llamabot/db"
	"github.com/lmittmann/tint"
)

const (
	// DefaultURL is the generation endpoint used when none is configured.
	DefaultURL   = "http://67.220.85.146:6207/image"
	apiKeyHeader = "x-api-key"
)

// ErrNoImage is returned when the proxy answers without an image URL.
var ErrNoImage = errors.New("response contained no image url")

// Text is an optional response field. The proxy is loose with types, so
// strings, numbers and booleans are all accepted; null and absent decode to
// the empty string.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	*t = Text(b)
	return nil
}

// Or returns t, or fallback when t is empty.
func (t Text) Or(fallback string) string {
	if t == "" {
		return fallback
	}
	return string(t)
}

// Image is a generation result.
type Image struct {
	URL      string `json:"image"`
	Prompt   Text   `json:"prompt"`
	ImageID  Text   `json:"imageId"`
	Status   Text   `json:"status"`
	Duration Text   `json:"duration"`
}

// Recorder stores a history row for each generation attempt.
type Recorder interface {
	RecordGeneration(ctx context.Context, g db.Generation) error
}

// Client calls the image generation proxy.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	history    Recorder
}

// NewClient creates a Client. history may be nil.
func NewClient(endpoint, apiKey string, history Recorder) *Client {
	if endpoint == "" {
		endpoint = DefaultURL
	}
	return &Client{
		// No timeout: generation is slow and the proxy enforces its own.
		httpClient: &http.Client{},
		endpoint:   endpoint,
		apiKey:     apiKey,
		history:    history,
	}
}

// Generate requests an image for prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (*Image, error) {
	started := time.Now()
	img, err := c.generate(ctx, prompt)
	c.record(ctx, prompt, img, err, time.Since(started))
	if err != nil {
		slog.Error("image generation failed", "prompt", prompt, tint.Err(err))
		return nil, err
	}
	return img, nil
}

func (c *Client) generate(ctx context.Context, prompt string) (*Image, error) {
	reqURL := c.endpoint + "?prompt=" + url.QueryEscape(prompt)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create image request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("image request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var img Image
	if err := json.Unmarshal(body, &img); err != nil {
		return nil, fmt.Errorf("failed to decode image response: %w", err)
	}
	if img.URL == "" {
		return nil, ErrNoImage
	}
	return &img, nil
}

func (c *Client) record(ctx context.Context, prompt string, img *Image, genErr error, elapsed time.Duration) {
	if c.history == nil {
		return
	}

	row := db.Generation{
		Prompt:    prompt,
		Elapsed:   elapsed,
		CreatedAt: time.Now().UTC(),
	}
	if img != nil {
		row.ImageURL = img.URL
		row.ImageID = string(img.ImageID)
		row.Status = string(img.Status)
	}
	if genErr != nil {
		row.Error = genErr.Error()
	}

	if err := c.history.RecordGeneration(ctx, row); err != nil {
		slog.Warn("failed to record generation", tint.Err(err))
	}
}
