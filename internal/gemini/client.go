package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	// DefaultModel matches the model the prompts were tuned against.
	DefaultModel = "gemini-1.5-flash"

	defaultTemperature = float32(0.7)
	defaultTopP        = float32(0.95)
)

// Generator is the low-level model contract. *Client is the production
// implementation; tests substitute a fake so no network is involved.
type Generator interface {
	GenerateText(ctx context.Context, system, prompt string, maxTokens int32) (string, error)
	GenerateObject(ctx context.Context, system, prompt string, schema *genai.Schema, maxTokens int32, out any) error
}

// Client wraps the Gemini SDK. One instance per process; safe for concurrent use.
type Client struct {
	genai *genai.Client
	model string
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Client{genai: c, model: model}, nil
}

func (c *Client) config(system string, maxTokens int32) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr(defaultTemperature),
		TopP:              genai.Ptr(defaultTopP),
		MaxOutputTokens:   maxTokens,
	}
}

// GenerateText runs a free-text generation. No retry: a transport failure is
// the caller's to surface.
func (c *Client) GenerateText(ctx context.Context, system, prompt string, maxTokens int32) (string, error) {
	resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(prompt), c.config(system, maxTokens))
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	return text, nil
}

// GenerateObject runs a schema-bound generation and decodes the JSON result
// into out. Schema conformance of the decoded value is still the caller's to
// check (see checkScore); the model is not trusted to respect numeric ranges.
func (c *Client) GenerateObject(ctx context.Context, system, prompt string, schema *genai.Schema, maxTokens int32, out any) error {
	cfg := c.config(system, maxTokens)
	cfg.ResponseMIMEType = "application/json"
	cfg.ResponseSchema = schema

	resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return fmt.Errorf("gemini generate failed: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("gemini returned an empty response")
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("gemini response is not valid JSON for the requested schema: %w", err)
	}
	return nil
}
