// README: Gemini-backed Completer/Extractor with bounded timeouts.
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"voyago/internal/config"
)

// GeminiClient implements Completer and Extractor against Google's
// Gemini models.
type GeminiClient struct {
	client *genai.Client
	cfg    config.LLMConfig
}

// NewGeminiClient initializes a Gemini client.
// apiKey should be provided from environment variables.
func NewGeminiClient(ctx context.Context, apiKey string, cfg config.LLMConfig) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	return &GeminiClient{client: client, cfg: cfg}, nil
}

// Close cleans up the Gemini client resources.
func (c *GeminiClient) Close() {
	c.client.Close()
}

// model returns a fresh per-call handle; SetTemperature mutates the
// handle, so sharing one across goroutines would race.
func (c *GeminiClient) model(temperature float32) *genai.GenerativeModel {
	m := c.client.GenerativeModel(c.cfg.Model)
	m.SetTemperature(temperature)
	return m
}

// Complete sends prompt and blocks until the full reply arrives or the
// read timeout expires.
func (c *GeminiClient) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ReadTimeout)
	defer cancel()

	resp, err := c.model(temperature).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generation error: %w", err)
	}
	text := joinParts(resp)
	if text == "" {
		return "", fmt.Errorf("no response candidates from Gemini")
	}
	return text, nil
}

// StreamComplete sends prompt and returns a channel of reply chunks.
// Upstream errors end the stream silently; the caller decides whether
// an empty stream warrants a blocking retry.
func (c *GeminiClient) StreamComplete(ctx context.Context, prompt string, temperature float32) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)

		ctx, cancel := context.WithTimeout(ctx, c.cfg.ReadTimeout)
		defer cancel()

		iter := c.model(temperature).GenerateContentStream(ctx, genai.Text(prompt))
		for {
			resp, err := iter.Next()
			if err == iterator.Done {
				return
			}
			if err != nil {
				return
			}
			if chunk := joinParts(resp); chunk != "" {
				select {
				case out <- chunk:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// ExtractJSON sends prompt to a JSON-mode model at low temperature and
// returns the raw text for the caller to parse.
func (c *GeminiClient) ExtractJSON(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ReadTimeout)
	defer cancel()

	m := c.model(0.1)
	// Force JSON output for structured parsing.
	m.ResponseMIMEType = "application/json"

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini extraction error: %w", err)
	}
	text := cleanJSONString(joinParts(resp))
	if text == "" {
		return "", fmt.Errorf("no response candidates from Gemini")
	}
	return text, nil
}

func joinParts(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String()
}

// cleanJSONString removes markdown code fences if present (e.g. ```json ... ```)
func cleanJSONString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
