// Package evaluator is the output scorer. It grades handler output against a
// fixed structural rubric per task category, appends one record to the
// metrics log per call, and renders a human-readable summary.
package evaluator

import (
	"fmt"
	"log"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/haricheung/bizflow/internal/types"
)

const (
	baseScore = 0.5
	increment = 0.1
)

// signal is one rubric check. note is reported only when the check fails.
type signal struct {
	met  func(text string) bool
	note string
}

// strategy is the ordered rubric for one task category.
type strategy struct {
	signals []signal
}

var (
	emailStrategy = strategy{signals: []signal{
		{containsAny("subject:"), "Missing subject line"},
		{containsAny("dear "), "Missing greeting (e.g., 'Dear ...')"},
		{containsAny("regards", "thanks"), "Missing closing signature (e.g., 'Regards', 'Thanks')"},
		{trimmedLenAtLeast(50), "Email very short; may be low quality"},
	}}

	reportStrategy = strategy{signals: []signal{
		{containsAny("total revenue"), "Report missing 'Total revenue'"},
		{containsAny("total profit"), "Report missing 'Total profit'"},
		{nonBlankLinesAtLeast(5), "Report seems too short (few lines)"},
	}}

	meetingStrategy = strategy{signals: []signal{
		{containsAny("meeting summary"), "Missing 'Meeting Summary' section title"},
		{containsAny("action items"), "Missing 'Action Items' section title"},
		{hasNumberedItem, "No numbered action items found"},
	}}

	generalStrategy = strategy{signals: []signal{
		{trimmedLenAtLeast(31), "Output extremely short; may be low value"},
	}}
)

// strategyFor selects the rubric for an uppercased task type; unknown types use the general rubric.
func strategyFor(taskType string) strategy {
	switch taskType {
	case string(types.IntentEmail):
		return emailStrategy
	case string(types.IntentReport):
		return reportStrategy
	case string(types.IntentMeeting):
		return meetingStrategy
	default:
		return generalStrategy
	}
}

// Score grades output under taskType (case-insensitive) without side effects.
//
// Expectations:
//   - Starts at 0.5 and adds 0.1 per satisfied signal
//   - Returns one note per unmet signal, in rubric order
//   - Result is clamped to [0.0, 1.0] and rounded to 2 decimals
//   - Unknown task types use the GENERAL rubric
//   - Each signal counts at most once no matter how often it is satisfied in the text
func Score(taskType, output string) (float64, []string) {
	st := strategyFor(strings.ToUpper(taskType))
	met := 0
	var notes []string
	for _, s := range st.signals {
		if s.met(output) {
			met++
		} else {
			notes = append(notes, s.note)
		}
	}
	score := baseScore + increment*float64(met)
	score = math.Max(0.0, math.Min(1.0, score))
	return math.Round(score*100) / 100, notes
}

// Evaluator scores outputs and appends each result to the metrics log.
type Evaluator struct {
	log *MetricsLog
	now func() time.Time
}

// New creates an Evaluator writing to the metrics CSV at path, creating the
// file with its header row if absent.
func New(path string) (*Evaluator, error) {
	ml, err := OpenMetricsLog(path)
	if err != nil {
		return nil, err
	}
	return &Evaluator{log: ml, now: time.Now}, nil
}

// Evaluate scores output, appends exactly one record, and returns the rendered summary.
// input is accepted for parity with the handler contract; the rubric never reads it.
func (e *Evaluator) Evaluate(taskType, input, output string) (string, error) {
	rec, err := e.Assess(taskType, input, output)
	if err != nil {
		return "", err
	}
	return RenderSummary(rec), nil
}

// Assess scores output and appends the resulting record to the metrics log.
//
// Expectations:
//   - Task type is uppercased before scoring and logging
//   - Output length is the code-point count of the untrimmed output
//   - Appends exactly one metrics row per call
//   - Returns an error when the metrics row cannot be written
func (e *Evaluator) Assess(taskType, input, output string) (types.EvaluationRecord, error) {
	taskType = strings.ToUpper(taskType)
	log.Printf("[EVALUATOR] evaluating output for task_type=%s", taskType)

	score, notes := Score(taskType, output)
	rec := types.EvaluationRecord{
		Timestamp:    e.now().UTC().Format(time.RFC3339),
		TaskType:     taskType,
		OutputLength: utf8.RuneCountInString(output),
		Score:        score,
		Notes:        notes,
	}
	if err := e.log.Append(rec); err != nil {
		return types.EvaluationRecord{}, fmt.Errorf("evaluator: %w", err)
	}

	log.Printf("[EVALUATOR] evaluation done: task_type=%s length=%d score=%.2f notes=%s",
		rec.TaskType, rec.OutputLength, rec.Score, joinNotes(rec.Notes))
	return rec, nil
}

// Path returns the metrics log location.
func (e *Evaluator) Path() string { return e.log.Path() }

// RenderSummary formats rec as the fixed evaluation block.
func RenderSummary(rec types.EvaluationRecord) string {
	lines := []string{
		"=== Evaluation ===",
		fmt.Sprintf("Task type: %s", rec.TaskType),
		fmt.Sprintf("Output length: %d characters", rec.OutputLength),
		fmt.Sprintf("Score: %.2f", rec.Score),
	}
	if len(rec.Notes) == 0 {
		lines = append(lines, "Notes: OK")
	} else {
		lines = append(lines, "Notes:")
		for _, n := range rec.Notes {
			lines = append(lines, "- "+n)
		}
	}
	return strings.Join(lines, "\n")
}

func joinNotes(notes []string) string {
	if len(notes) == 0 {
		return "OK"
	}
	return strings.Join(notes, "; ")
}

// ── rubric checks ────────────────────────────────────────────────────────────

func containsAny(needles ...string) func(string) bool {
	return func(text string) bool {
		lower := strings.ToLower(text)
		for _, n := range needles {
			if strings.Contains(lower, n) {
				return true
			}
		}
		return false
	}
}

func trimmedLenAtLeast(n int) func(string) bool {
	return func(text string) bool {
		return utf8.RuneCountInString(strings.TrimSpace(text)) >= n
	}
}

func nonBlankLinesAtLeast(n int) func(string) bool {
	return func(text string) bool {
		count := 0
		for _, l := range splitLines(text) {
			if strings.TrimSpace(l) != "" {
				count++
			}
		}
		return count >= n
	}
}

// hasNumberedItem reports whether any line, after trimming, begins with "1." through "5.".
func hasNumberedItem(text string) bool {
	for _, l := range splitLines(text) {
		l = strings.TrimSpace(l)
		if len(l) >= 2 && l[0] >= '1' && l[0] <= '5' && l[1] == '.' {
			return true
		}
	}
	return false
}

// splitLines breaks text on every line boundary character, dropping empty lines.
func splitLines(text string) []string {
	return strings.FieldsFunc(text, isLineBreak)
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}
