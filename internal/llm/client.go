package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/haricheung/bizflow/internal/config"
)

// Generator is the text generation service: prompt in, full text out.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Provider names accepted by LLM_PROVIDER.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// New builds the Generator selected by cfg.
//
// Expectations:
//   - Returns a *Fake when cfg.UseFake is true, regardless of provider
//   - Selects Gemini / OpenAI / Anthropic by case-insensitive provider name
//   - Returns an error for an unknown provider
//   - Returns an error when a real provider is selected without an API key
func New(cfg config.LLMConfig) (Generator, error) {
	if cfg.UseFake {
		log.Printf("[LLM] using fake generator")
		return NewFake(), nil
	}

	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	switch provider {
	case ProviderGemini, ProviderOpenAI, ProviderAnthropic:
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm: provider %s requires LLM_API_KEY (or set USE_FAKE_LLM=true)", provider)
	}

	log.Printf("[LLM] using provider=%s model=%s", provider, cfg.Model)
	switch provider {
	case ProviderGemini:
		return NewGemini(cfg)
	case ProviderOpenAI:
		return NewOpenAI(cfg), nil
	default:
		return NewAnthropic(cfg), nil
	}
}

// withTimeout bounds one generation call. A non-positive timeout leaves ctx unchanged.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// normalizeBaseURL strips trailing slashes and the "/chat/completions" suffix
// from a raw base URL value so the SDK never doubles the path.
//
// Expectations:
//   - Strips a trailing "/chat/completions" suffix
//   - Strips a trailing slash without "/chat/completions"
//   - Strips trailing slash AND "/chat/completions" when both are present
//   - Returns the URL unchanged when neither suffix is present
//   - Returns "" for empty input
func normalizeBaseURL(raw string) string {
	s := strings.TrimRight(raw, "/")
	return strings.TrimSuffix(s, "/chat/completions")
}

// StripThinkBlocks removes all <think>...</think> blocks from s.
// Reasoning models emit these before the answer; they are never part of
// the text shown to the user or scored.
//
// Expectations:
//   - Removes a single <think>...</think> block
//   - Removes multiple <think>...</think> blocks
//   - Strips an unclosed <think> block from its start to end of string
//   - Returns s trimmed but otherwise unchanged when no <think> tag is present
func StripThinkBlocks(s string) string {
	for {
		start := strings.Index(s, "<think>")
		if start == -1 {
			break
		}
		end := strings.Index(s[start:], "</think>")
		if end == -1 {
			s = s[:start]
			break
		}
		s = s[:start] + s[start+end+len("</think>"):]
	}
	return strings.TrimSpace(s)
}

func logResponse(label string, maxTokens int, content string) {
	log.Printf("[%s] ── RESPONSE (max_tokens=%d chars=%d) ──\n%s\n── END RESPONSE ────────────────────────────────",
		label, maxTokens, len(content), content)
}
