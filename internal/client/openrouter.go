package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// ErrInvalidJSON marks a structured-response parse failure, as opposed to a
// transport or API failure.
var ErrInvalidJSON = errors.New("response is not valid JSON")

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options override stored defaults per call. Zero values mean "use default".
type Options struct {
	Model            string
	Temperature      *float64
	MaxTokens        int
	TopP             *float64
	FrequencyPenalty *float64
	PresencePenalty  *float64
}

// OpenRouterClient wraps the chat-completion API. It keeps a small state
// record (in-flight flag, last error) alongside the request defaults.
type OpenRouterClient struct {
	baseURL    string
	apiKey     string
	defaults   Options
	httpClient *http.Client

	mu      sync.Mutex
	loading bool
	lastErr error
}

func NewOpenRouterClient(baseURL, apiKey, defaultModel string) *OpenRouterClient {
	return &OpenRouterClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		defaults: Options{
			Model:     defaultModel,
			MaxTokens: 4096,
		},
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Loading reports whether a request is currently in flight.
func (c *OpenRouterClient) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// LastError returns the most recent request failure, nil after a success.
func (c *OpenRouterClient) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

type chatRequest struct {
	Model            string           `json:"model"`
	Messages         []Message        `json:"messages"`
	Temperature      *float64         `json:"temperature,omitempty"`
	MaxTokens        int              `json:"max_tokens,omitempty"`
	TopP             *float64         `json:"top_p,omitempty"`
	FrequencyPenalty *float64         `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64         `json:"presence_penalty,omitempty"`
	ResponseFormat   *responseFormat  `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type       string         `json:"type"`
	JSONSchema *jsonSchemaDef `json:"json_schema,omitempty"`
}

type jsonSchemaDef struct {
	Name   string          `json:"name"`
	Strict bool            `json:"strict"`
	Schema json.RawMessage `json:"schema"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func validRole(role string) bool {
	return role == "system" || role == "user" || role == "assistant"
}

func validateMessages(messages []Message) error {
	if len(messages) == 0 {
		return errors.New("messages must not be empty")
	}
	for i, m := range messages {
		if strings.TrimSpace(m.Content) == "" {
			return fmt.Errorf("messages[%d]: content must not be blank", i)
		}
		if !validRole(m.Role) {
			return fmt.Errorf("messages[%d]: invalid role %q", i, m.Role)
		}
	}
	return nil
}

// GenerateResponse performs one chat-completion call and returns the first
// choice's content. Message validation fails fast, before any network I/O.
func (c *OpenRouterClient) GenerateResponse(ctx context.Context, messages []Message, opts *Options) (string, error) {
	return c.complete(ctx, messages, opts, nil)
}

// GenerateStructuredResponse attaches a JSON-schema response format and
// unmarshals the content into out. Parse failures wrap ErrInvalidJSON.
func (c *OpenRouterClient) GenerateStructuredResponse(ctx context.Context, messages []Message, schemaName string, schema json.RawMessage, opts *Options, out interface{}) error {
	format := &responseFormat{
		Type: "json_schema",
		JSONSchema: &jsonSchemaDef{
			Name:   schemaName,
			Strict: true,
			Schema: schema,
		},
	}

	content, err := c.complete(ctx, messages, opts, format)
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(content), out); err != nil {
		parseErr := fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		c.recordError(parseErr)
		return parseErr
	}
	return nil
}

func (c *OpenRouterClient) complete(ctx context.Context, messages []Message, opts *Options, format *responseFormat) (string, error) {
	if err := validateMessages(messages); err != nil {
		return "", err
	}

	merged := c.mergeOptions(opts)
	reqBody := chatRequest{
		Model:            merged.Model,
		Messages:         messages,
		Temperature:      merged.Temperature,
		MaxTokens:        merged.MaxTokens,
		TopP:             merged.TopP,
		FrequencyPenalty: merged.FrequencyPenalty,
		PresencePenalty:  merged.PresencePenalty,
		ResponseFormat:   format,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.setLoading(true)
	defer c.setLoading(false)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		wrapped := fmt.Errorf("failed to send request: %w", err)
		c.recordError(wrapped)
		return "", wrapped
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		apiErr := fmt.Errorf("openrouter returned status %d: %s", resp.StatusCode, string(body))
		c.recordError(apiErr)
		return "", apiErr
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		wrapped := fmt.Errorf("failed to decode response: %w", err)
		c.recordError(wrapped)
		return "", wrapped
	}

	if len(chat.Choices) == 0 || chat.Choices[0].Message.Content == "" {
		emptyErr := errors.New("response contains no message content")
		c.recordError(emptyErr)
		return "", emptyErr
	}

	c.recordError(nil)
	return chat.Choices[0].Message.Content, nil
}

func (c *OpenRouterClient) mergeOptions(opts *Options) Options {
	merged := c.defaults
	if opts == nil {
		return merged
	}
	if opts.Model != "" {
		merged.Model = opts.Model
	}
	if opts.Temperature != nil {
		merged.Temperature = opts.Temperature
	}
	if opts.MaxTokens > 0 {
		merged.MaxTokens = opts.MaxTokens
	}
	if opts.TopP != nil {
		merged.TopP = opts.TopP
	}
	if opts.FrequencyPenalty != nil {
		merged.FrequencyPenalty = opts.FrequencyPenalty
	}
	if opts.PresencePenalty != nil {
		merged.PresencePenalty = opts.PresencePenalty
	}
	return merged
}

func (c *OpenRouterClient) setLoading(v bool) {
	c.mu.Lock()
	c.loading = v
	c.mu.Unlock()
}

func (c *OpenRouterClient) recordError(err error) {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
}
