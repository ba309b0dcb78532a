// Package planner is the intent router: it classifies each utterance, hands it
// to the matching handler, scores the result and assembles the response.
package planner

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/haricheung/bizflow/internal/audit"
	"github.com/haricheung/bizflow/internal/roles/email"
	"github.com/haricheung/bizflow/internal/roles/evaluator"
	"github.com/haricheung/bizflow/internal/roles/meeting"
	"github.com/haricheung/bizflow/internal/roles/memory"
	"github.com/haricheung/bizflow/internal/roles/report"
	"github.com/haricheung/bizflow/internal/types"
)

// Separator joins handler output and the evaluation summary.
const Separator = "\n\n---\n"

// GeneralGuidance is returned for utterances no rule recognises.
const GeneralGuidance = "I didn't understand your request clearly.\n" +
	"Try including words like 'email', 'meeting', 'report', or 'sales'.\n" +
	"You can also set preferences, e.g.: set email signature to Thanks,\\nYour Name"

// Preference command replies.
const (
	signaturePrefix        = "set email signature to"
	msgSignatureParseError = "Couldn't parse the signature value."
	msgUnsupportedPref     = "Unsupported preference command.\n" +
		"Try: set email signature to Thanks,\\nYour Name"
)

// rule maps a predicate over lowercased, normalized text to an intent.
type rule struct {
	intent types.Intent
	match  func(text string) bool
}

// rules is evaluated in order; the first match wins.
var rules = []rule{
	{types.IntentPreference, func(t string) bool { return strings.HasPrefix(t, "set ") }},
	{types.IntentShowPrefs, containsAny("show preferences")},
	{types.IntentMeeting, containsAny("meeting", "minutes", "summarize")},
	{types.IntentEmail, containsAny("email", "mail")},
	{types.IntentReport, containsAny("report", "csv", "sales")},
}

// Normalize trims input and strips a leading case-insensitive "you:" prefix.
func Normalize(input string) string {
	text := strings.TrimSpace(input)
	if len(text) >= 4 && strings.EqualFold(text[:4], "you:") {
		text = strings.TrimSpace(text[4:])
	}
	return text
}

// Classify assigns exactly one intent to input.
//
// Expectations:
//   - Classification runs on the normalized, lowercased text
//   - Rules are checked in order: PREFERENCE, SHOW_PREFS, MEETING, EMAIL, REPORT
//   - Matching is plain substring containment (prefix for PREFERENCE)
//   - Falls back to GENERAL when no rule matches
func Classify(input string) types.Intent {
	text := strings.ToLower(Normalize(input))
	for _, r := range rules {
		if r.match(text) {
			return r.intent
		}
	}
	return types.IntentGeneral
}

// Inputs names the files the report and meeting handlers read.
type Inputs struct {
	SalesCSV   string
	Transcript string
}

// Deps wires the planner to its handlers and sinks. Audit may be nil.
type Deps struct {
	Memory    *memory.Agent
	Email     *email.Agent
	Report    *report.Agent
	Meeting   *meeting.Agent
	Evaluator *evaluator.Evaluator
	Audit     *audit.Recorder
	Inputs    Inputs
}

// Planner routes utterances to handlers.
type Planner struct {
	memory    *memory.Agent
	email     *email.Agent
	report    *report.Agent
	meeting   *meeting.Agent
	evaluator *evaluator.Evaluator
	audit     *audit.Recorder
	inputs    Inputs
}

// New creates a Planner.
func New(d Deps) *Planner {
	return &Planner{
		memory:    d.Memory,
		email:     d.Email,
		report:    d.Report,
		meeting:   d.Meeting,
		evaluator: d.Evaluator,
		audit:     d.Audit,
		inputs:    d.Inputs,
	}
}

// Handle runs one utterance through classify, dispatch, score and response assembly.
//
// Expectations:
//   - PREFERENCE commands return the reply text only; nothing is scored
//   - SHOW_PREFS output is scored under GENERAL
//   - Email, report and meeting handler failures become "Error ...: <err>" output and are still scored
//   - Every non-preference response is output + Separator + evaluation summary
//   - Only preference-store and metrics-log failures are returned as errors
//   - Exactly one audit event is recorded per call, including failed ones
func (p *Planner) Handle(ctx context.Context, input string) (string, error) {
	start := time.Now()
	intent := Classify(input)
	log.Printf("[PLANNER] detected intent=%s for input: %s", intent, Normalize(input))

	ev := types.AuditEvent{Source: types.RolePlanner, Intent: intent, Input: input}
	defer func() {
		ev.ElapsedMs = time.Since(start).Milliseconds()
		p.audit.Record(ev)
	}()

	if intent == types.IntentPreference {
		out, err := p.handlePreference(input)
		if err != nil {
			ev.Detail = detail(err)
			return "", err
		}
		return out, nil
	}

	taskType := intent
	var (
		out    string
		failed error
	)
	switch intent {
	case types.IntentShowPrefs:
		prefs, err := p.memory.ListPreferences()
		if err != nil {
			ev.Detail = detail(err)
			return "", fmt.Errorf("planner: list preferences: %w", err)
		}
		out, taskType = prefs, types.IntentGeneral

	case types.IntentEmail:
		log.Printf("[PLANNER] routing to %s", types.RoleEmail)
		out, failed = p.email.Draft(ctx, input)
		if failed != nil {
			out = fmt.Sprintf("Error drafting email: %v", failed)
		}

	case types.IntentReport:
		log.Printf("[PLANNER] routing to %s", types.RoleReport)
		out, failed = p.report.Generate(p.inputs.SalesCSV)
		if failed != nil {
			out = fmt.Sprintf("Error generating report: %v", failed)
		}

	case types.IntentMeeting:
		log.Printf("[PLANNER] routing to %s", types.RoleMeeting)
		out, failed = p.meeting.Summarize(ctx, p.inputs.Transcript)
		if failed != nil {
			out = fmt.Sprintf("Error summarizing meeting: %v", failed)
		}

	default:
		log.Printf("[PLANNER] falling back to GENERAL handler")
		out = GeneralGuidance
	}
	if failed != nil {
		log.Printf("[PLANNER] WARNING: %s handler failed, reporting as output: %v", intent, failed)
		ev.Detail = detail(failed)
	}

	rec, err := p.evaluator.Assess(string(taskType), input, out)
	if err != nil {
		ev.Detail = detail(err)
		return "", fmt.Errorf("planner: %w", err)
	}
	score := rec.Score
	ev.Evaluated, ev.Score = true, &score

	return out + Separator + evaluator.RenderSummary(rec), nil
}

// handlePreference applies a "set ..." command.
//
// Expectations:
//   - "set email signature to <value>" (prefix case-insensitive) stores <value> under email_signature
//   - The value is everything after the first literal lowercase "to", trimmed
//   - No lowercase "to" in the command yields the parse-error reply
//   - Any other "set ..." command yields the unsupported-command reply
func (p *Planner) handlePreference(input string) (string, error) {
	text := Normalize(input)
	log.Printf("[PLANNER] handling preference command: %s", text)

	if !strings.HasPrefix(strings.ToLower(text), signaturePrefix) {
		log.Printf("[PLANNER] WARNING: unsupported preference command: %s", text)
		return msgUnsupportedPref, nil
	}

	_, value, ok := strings.Cut(text, "to")
	if !ok {
		log.Printf("[PLANNER] WARNING: failed to parse email signature command")
		return msgSignatureParseError, nil
	}
	value = strings.TrimSpace(value)
	if err := p.memory.SetPreference(memory.KeyEmailSignature, value); err != nil {
		return "", fmt.Errorf("planner: save signature: %w", err)
	}
	log.Printf("[PLANNER] set %s preference", memory.KeyEmailSignature)
	return "Saved email signature as:\n" + value, nil
}

func containsAny(needles ...string) func(string) bool {
	return func(text string) bool {
		for _, n := range needles {
			if strings.Contains(text, n) {
				return true
			}
		}
		return false
	}
}

func detail(err error) *string {
	s := err.Error()
	return &s
}
