// Package email drafts business emails from a free-text request, signed with
// the user's stored signature preference.
package email

import (
	"context"
	"fmt"
	"log"

	"github.com/haricheung/bizflow/internal/llm"
	"github.com/haricheung/bizflow/internal/prompts"
	"github.com/haricheung/bizflow/internal/roles/memory"
)

// DefaultSignature is used when no email_signature preference is stored.
const DefaultSignature = "Best regards,\nAI Business Assistant"

// maxTokens is the generation budget for one draft.
const maxTokens = 512

// Agent drafts emails.
type Agent struct {
	memory *memory.Agent
	llm    llm.Generator
}

// New creates an email Agent.
func New(mem *memory.Agent, gen llm.Generator) *Agent {
	return &Agent{memory: mem, llm: gen}
}

// Draft builds the email prompt for request and returns the generated text.
//
// Expectations:
//   - Uses the stored email_signature, or DefaultSignature when none is stored
//   - Prompt embeds the literal request text and the signature
//   - Requests a 512-token budget
//   - Propagates preference-read and generation errors
func (a *Agent) Draft(ctx context.Context, request string) (string, error) {
	log.Printf("[EMAIL] drafting email for request: %s", request)

	signature, err := a.memory.GetPreference(memory.KeyEmailSignature, DefaultSignature)
	if err != nil {
		return "", fmt.Errorf("email: %w", err)
	}
	log.Printf("[EMAIL] using signature: %q", signature)

	out, err := a.llm.Generate(ctx, prompts.BuildEmail(request, signature), maxTokens)
	if err != nil {
		return "", fmt.Errorf("email: generate: %w", err)
	}
	return out, nil
}
