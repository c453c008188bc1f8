// Package llm provides the text-generation backend used to resolve dynamic
// chain nodes, implemented against the OpenAI chat completions API.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/greg-randall/prmptr/internal/ctxlog"
)

// Default client configuration values.
const (
	DefaultModel        = "gpt-4o-mini"
	DefaultBaseURL      = "https://api.openai.com"
	DefaultTimeout      = 5 * time.Minute
	DefaultSystemPrompt = "You are a helpful assistant. Please follow the instructions exactly."
)

// GenerationError reports a failed generation call. StatusCode is zero when
// the request never produced an HTTP response.
type GenerationError struct {
	StatusCode int
	Err        error
}

// Error implements the error interface for GenerationError.
func (e *GenerationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("generation call failed (HTTP %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("generation call failed: %v", e.Err)
}

// Unwrap returns the underlying cause.
func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Client is an OpenAI chat completions client.
type Client struct {
	apiKey       string
	baseURL      string
	model        string
	systemPrompt string
	httpClient   *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithModel sets the model.
func WithModel(model string) Option {
	return func(c *Client) {
		c.model = model
	}
}

// WithBaseURL sets the API base URL.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithSystemPrompt sets the system prompt sent with every request.
func WithSystemPrompt(prompt string) Option {
	return func(c *Client) {
		c.systemPrompt = prompt
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// New creates a client. The API key defaults to the OPENAI_API_KEY
// environment variable.
func New(opts ...Option) *Client {
	c := &Client{
		apiKey:       os.Getenv("OPENAI_API_KEY"),
		baseURL:      DefaultBaseURL,
		model:        DefaultModel,
		systemPrompt: DefaultSystemPrompt,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasKey reports whether the client was configured with an API key.
func (c *Client) HasKey() bool {
	return c.apiKey != ""
}

// chatRequest is the API request format.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

// chatMessage is a single conversation message.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the API response format.
type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error"`
}

// apiError is the error payload the API returns on failed requests.
type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Generate sends the prompt to the model and returns the response text with
// surrounding whitespace trimmed. Every failure is reported as a
// *GenerationError.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	logger := ctxlog.FromContext(ctx)

	if c.apiKey == "" {
		return "", &GenerationError{Err: fmt.Errorf("no API key configured (set OPENAI_API_KEY)")}
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: c.systemPrompt},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", &GenerationError{Err: fmt.Errorf("encode request: %w", err)}
	}

	url := c.baseURL + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &GenerationError{Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &GenerationError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &GenerationError{StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", &GenerationError{StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", strings.TrimSpace(string(respBody)))}
		}
		return "", &GenerationError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(respBody))
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return "", &GenerationError{StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", msg)}
	}
	if len(parsed.Choices) == 0 {
		return "", &GenerationError{StatusCode: resp.StatusCode, Err: fmt.Errorf("response contains no choices")}
	}

	logger.Debug("Generation call completed.", "model", c.model, "duration", time.Since(start))
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
