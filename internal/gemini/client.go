// Package gemini provides a client for the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

var (
	// ErrNotConfigured is returned when the client has no generator.
	ErrNotConfigured = errors.New("gemini client not configured")

	// ErrTimeout indicates the Gemini API call exceeded its deadline.
	ErrTimeout = errors.New("gemini request timed out")
)

// ContentGenerator defines the interface for generating content via Gemini.
// This abstraction enables testing without making actual API calls.
type ContentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// modelsAdapter wraps *genai.Models to implement ContentGenerator.
type modelsAdapter struct {
	models *genai.Models
}

func (m *modelsAdapter) GenerateContent(
	ctx context.Context,
	model string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	resp, err := m.models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("genai.GenerateContent: %w", err)
	}
	return resp, nil
}

// Client wraps the Gemini API client.
type Client struct {
	generator ContentGenerator
	model     string
}

// NewClient creates a new Gemini client with the provided API key. An empty
// model selects DefaultModel.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := NewClientWithGenerator(&modelsAdapter{models: client.Models})
	if model != "" {
		c.model = model
	}
	return c, nil
}

// NewClientWithGenerator creates a Client with a custom ContentGenerator.
// This is primarily used for testing with mock generators.
func NewClientWithGenerator(generator ContentGenerator) *Client {
	return &Client{
		generator: generator,
		model:     DefaultModel,
	}
}

// Model returns the model name requests are sent to.
func (c *Client) Model() string {
	return c.model
}

// generate sends contents with a deadline and returns the concatenated text
// of the first candidate.
func (c *Client) generate(
	ctx context.Context,
	timeout time.Duration,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (string, error) {
	if c == nil || c.generator == nil {
		return "", ErrNotConfigured
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.generator.GenerateContent(timeoutCtx, c.model, contents, config)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("no response from Gemini")
	}
	return resp.Text(), nil
}
