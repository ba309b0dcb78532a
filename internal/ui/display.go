package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/haricheung/bizflow/internal/types"
)

// ANSI codes
const (
	ansiReset = "\033[0m"
	ansiDim   = "\033[2m"
	ansiCyan  = "\033[36m"
	ansiGreen = "\033[32m"
)

// Rule separates assistant responses in the session transcript.
var Rule = strings.Repeat("-", 40)

// Goodbye is printed when the session ends on "exit" or "quit".
const Goodbye = "Assistant: Goodbye! 👋"

var intentStatus = map[types.Intent]string{
	types.IntentEmail:      "✉️  drafting email",
	types.IntentReport:     "📊 building report",
	types.IntentMeeting:    "📝 summarizing meeting",
	types.IntentPreference: "💾 saving preference",
	types.IntentShowPrefs:  "💾 listing preferences",
	types.IntentGeneral:    "💬 thinking",
}

// statusCols bounds the spinner line so it never wraps on an 80-column terminal.
const statusCols = 72

// StatusFor returns the spinner label for a request of the given intent.
func StatusFor(intent types.Intent, input string) string {
	s, ok := intentStatus[intent]
	if !ok {
		s = intentStatus[types.IntentGeneral]
	}
	input = strings.Join(strings.Fields(input), " ")
	if input == "" {
		return s + "..."
	}
	return Clip(s+" · "+input, statusCols)
}

// Banner writes the session greeting.
func Banner(w io.Writer) {
	fmt.Fprintln(w, "=== AI Business Workflow Assistant (Demo) ===")
	fmt.Fprintln(w, "Type 'exit' to quit.")
	fmt.Fprintln(w)
}

// PrintResponse writes one assistant turn: a label line, the response, then Rule.
func PrintResponse(w io.Writer, response string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Assistant:")
	fmt.Fprintln(w, response)
	fmt.Fprintln(w, Rule)
}

// Clip truncates s to at most cols display columns, appending "…" if trimmed.
// Wide (CJK) runes count as two columns and are never split.
func Clip(s string, cols int) string {
	return runewidth.Truncate(s, cols, "…")
}

var spinRunes = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

// Spinner animates a single status line while one request is in flight.
// All writes to out happen on the spinner goroutine until Stop returns.
type Spinner struct {
	out     io.Writer
	status  string
	started time.Time
	done    chan struct{}
	wg      sync.WaitGroup
}

// StartSpinner begins animating status on out.
func StartSpinner(out io.Writer, status string) *Spinner {
	s := &Spinner{out: out, status: status, started: time.Now(), done: make(chan struct{})}
	s.wg.Add(1)
	go s.run()
	return s
}

func (s *Spinner) run() {
	defer s.wg.Done()
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()
	for i := 0; ; i++ {
		select {
		case <-s.done:
			fmt.Fprint(s.out, "\r\033[K")
			return
		case <-ticker.C:
			frame := spinRunes[i%len(spinRunes)]
			fmt.Fprintf(s.out, "\r%s%s%s %s", ansiCyan, string(frame), ansiReset, s.status)
		}
	}
}

// Stop clears the status line and writes a dim footer with the elapsed time.
// Safe to call once; later calls are no-ops.
func (s *Spinner) Stop(ok bool) {
	select {
	case <-s.done:
		return
	default:
		close(s.done)
	}
	s.wg.Wait()
	icon := ansiGreen + "✓" + ansiReset
	if !ok {
		icon = "✗"
	}
	elapsed := time.Since(s.started).Round(time.Millisecond)
	fmt.Fprintf(s.out, "%s└─ %s%s %v\n", ansiDim, ansiReset, icon, elapsed)
}
