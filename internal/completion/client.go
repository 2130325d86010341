// Package completion talks to an OpenAI-compatible chat completion endpoint.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// DefaultURL is the OpenAI chat completions endpoint.
const DefaultURL = "https://api.openai.com/v1/chat/completions"

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gpt-4o"

// replyPath locates the reply text in a response body.
const replyPath = "choices.0.message.content"

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 4 << 20

// ErrNoContent means the response carried no reply text at choices[0].message.content.
var ErrNoContent = errors.New("completion: response has no choices[0].message.content")

// Message is a role/content pair as sent on the wire.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the JSON body posted to the endpoint.
type Request struct {
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens,omitempty"`
}

// StatusError is returned for non-2xx responses that carry no reply.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("completion: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Completer turns a message history into a reply.
type Completer interface {
	Complete(ctx context.Context, messages []Message, maxTokens int) (string, error)
}

// Config configures the endpoint, credentials and HTTP behavior.
type Config struct {
	URL        string
	APIKey     string
	Model      string
	HTTPClient *http.Client
}

// Client is a Completer over HTTP.
type Client struct {
	cfg Config
}

// NewClient builds a Client, filling in the default URL, model and HTTP client.
func NewClient(cfg Config) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if strings.TrimSpace(cfg.URL) == "" {
		cfg.URL = DefaultURL
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel
	}
	return &Client{cfg: cfg}
}

// Complete posts the messages and returns choices[0].message.content.
// A well-formed response without that field yields ErrNoContent.
func (c *Client) Complete(ctx context.Context, messages []Message, maxTokens int) (string, error) {
	body, err := json.Marshal(Request{
		Model:     c.cfg.Model,
		Messages:  messages,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("completion: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("completion: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("completion: read response: %w", err)
	}

	reply, ok := extractReply(data)
	if ok {
		return reply, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(data), 200)}
	}
	if !gjson.ValidBytes(data) {
		return "", fmt.Errorf("completion: response is not valid JSON")
	}
	return "", ErrNoContent
}

// extractReply reads choices[0].message.content when it is a non-empty string.
func extractReply(data []byte) (string, bool) {
	if !gjson.ValidBytes(data) {
		return "", false
	}
	res := gjson.GetBytes(data, replyPath)
	if res.Type != gjson.String || res.Str == "" {
		return "", false
	}
	return res.Str, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
