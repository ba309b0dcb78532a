// Package meeting summarizes a meeting transcript and extracts action items.
package meeting

import (
	"context"
	"fmt"
	"log"

	"github.com/haricheung/bizflow/internal/llm"
	"github.com/haricheung/bizflow/internal/prompts"
	"github.com/haricheung/bizflow/internal/tools"
)

const maxTokens = 512

// Agent summarizes meetings.
type Agent struct {
	llm llm.Generator
}

// New creates a meeting Agent.
func New(gen llm.Generator) *Agent {
	return &Agent{llm: gen}
}

// Summarize loads the transcript at path and returns the generated summary.
//
// Expectations:
//   - Missing transcript returns an error wrapping tools.ErrNotFound
//   - Whitespace-only transcript returns an error wrapping tools.ErrEmptyData
//   - Requests a 512-token budget with the transcript embedded in the prompt
func (a *Agent) Summarize(ctx context.Context, path string) (string, error) {
	log.Printf("[MEETING] loading transcript from %s", path)
	transcript, err := tools.ReadTranscript(path)
	if err != nil {
		return "", err
	}

	out, err := a.llm.Generate(ctx, prompts.BuildMeetingSummary(transcript), maxTokens)
	if err != nil {
		return "", fmt.Errorf("meeting: generate: %w", err)
	}
	return out, nil
}
