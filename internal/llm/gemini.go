package llm

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/haricheung/bizflow/internal/config"
)

const defaultGeminiModel = "gemini-2.5-flash"

// Gemini generates text with Google's Gemini API.
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGemini creates a Gemini generator from cfg.
func NewGemini(cfg config.LLMConfig) (*Gemini, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: create gemini client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	return &Gemini{client: client, model: model, timeout: cfg.Timeout}, nil
}

// Generate sends prompt as a single user turn.
func (g *Gemini) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("llm: gemini generate: %w", err)
	}
	content := StripThinkBlocks(resp.Text())
	if content == "" {
		return "", fmt.Errorf("llm: gemini returned no text")
	}
	logResponse("GEMINI", maxTokens, content)
	return content, nil
}
