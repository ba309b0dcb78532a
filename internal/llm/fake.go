package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Fake is a deterministic offline Generator. It recognises the email and
// meeting prompt shapes and answers with well-formed canned text; any other
// prompt is echoed back in a short acknowledgement.
//
// Expectations:
//   - Records every prompt and token budget it receives, in call order
//   - Email prompts yield a "Subject:" line, a "Dear" greeting and the prompt's signature
//   - Meeting prompts yield "Meeting Summary" and "Action Items" sections with numbered items
//   - Never returns an error
type Fake struct {
	mu      sync.Mutex
	Prompts []string
	Budgets []int
}

// NewFake creates a Fake generator.
func NewFake() *Fake { return &Fake{} }

// Generate returns canned text shaped by the prompt.
func (f *Fake) Generate(_ context.Context, prompt string, maxTokens int) (string, error) {
	f.mu.Lock()
	f.Prompts = append(f.Prompts, prompt)
	f.Budgets = append(f.Budgets, maxTokens)
	f.mu.Unlock()

	var out string
	switch {
	case strings.Contains(prompt, "business email assistant"):
		out = fakeEmail(quoted(prompt, "User request:"), quoted(prompt, "Signature to use:"))
	case strings.Contains(prompt, "summarizes business meetings"):
		out = fakeMeeting(quoted(prompt, "Meeting transcript:"))
	default:
		out = fmt.Sprintf("[fake response] %s", firstLine(prompt))
	}
	logResponse("FAKE", maxTokens, out)
	return out, nil
}

// LastPrompt returns the most recent prompt, or "" when none was received.
func (f *Fake) LastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Prompts) == 0 {
		return ""
	}
	return f.Prompts[len(f.Prompts)-1]
}

func fakeEmail(request, signature string) string {
	if signature == "" {
		signature = "Best regards"
	}
	return fmt.Sprintf("Subject: Re: %s\n\nDear Client,\n\nThank you for your patience. "+
		"This message follows up on your request: %s\n\n"+
		"Please let us know if you have any questions.\n\n%s",
		firstLine(request), request, signature)
}

func fakeMeeting(transcript string) string {
	lines := 0
	for _, l := range strings.Split(transcript, "\n") {
		if strings.TrimSpace(l) != "" {
			lines++
		}
	}
	return fmt.Sprintf("=== Meeting Summary ===\n"+
		"The team reviewed the transcript (%d lines) and agreed on next steps.\n\n"+
		"=== Action Items ===\n"+
		"1. Circulate the meeting notes to all attendees.\n"+
		"2. Schedule a follow-up review next week.", lines)
}

// quoted extracts the triple-quoted block that follows label in prompt.
func quoted(prompt, label string) string {
	i := strings.Index(prompt, label)
	if i == -1 {
		return ""
	}
	rest := prompt[i+len(label):]
	start := strings.Index(rest, `"""`)
	if start == -1 {
		return ""
	}
	rest = rest[start+3:]
	end := strings.Index(rest, `"""`)
	if end == -1 {
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(rest[:end])
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i != -1 {
		return s[:i]
	}
	return s
}
