package evaluator

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/haricheung/bizflow/internal/tools"
)

func newTestEvaluator(t *testing.T) (*Evaluator, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "metrics.csv")
	e, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e.now = func() time.Time { return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC) }
	return e, path
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open metrics: %v", err)
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	return rows
}

const goodEmail = "Subject: Re: Delay\n\nDear Client,\n\nThanks for your patience while we sort out the shipping delay.\n\nBest regards,\nAI Business Assistant"

func TestScore_EmailAllSignalsMet(t *testing.T) {
	score, notes := Score("EMAIL", goodEmail)
	if score != 0.9 {
		t.Errorf("score = %.2f, want 0.90", score)
	}
	if len(notes) != 0 {
		t.Errorf("expected no notes, got %v", notes)
	}
}

func TestScore_EmailMissingEverything(t *testing.T) {
	score, notes := Score("email", "hi")
	if score != 0.5 {
		t.Errorf("score = %.2f, want 0.50", score)
	}
	want := []string{
		"Missing subject line",
		"Missing greeting (e.g., 'Dear ...')",
		"Missing closing signature (e.g., 'Regards', 'Thanks')",
		"Email very short; may be low quality",
	}
	if diff := cmp.Diff(want, notes); diff != "" {
		t.Errorf("notes mismatch (-want +got):\n%s", diff)
	}
}

func TestScore_ReportRubric(t *testing.T) {
	report := "=== Business Report ===\nRows of data: 3\nTotal revenue: 300\nTotal expenses: 100\nTotal profit: 200"
	score, notes := Score("REPORT", report)
	if score != 0.8 || len(notes) != 0 {
		t.Errorf("got (%.2f, %v), want (0.80, none)", score, notes)
	}

	score, notes = Score("REPORT", "Total revenue: 10")
	if score != 0.6 {
		t.Errorf("score = %.2f, want 0.60", score)
	}
	want := []string{"Report missing 'Total profit'", "Report seems too short (few lines)"}
	if diff := cmp.Diff(want, notes); diff != "" {
		t.Errorf("notes mismatch (-want +got):\n%s", diff)
	}
}

func TestScore_MeetingRubric(t *testing.T) {
	out := "=== Meeting Summary ===\nWe agreed on dates.\n\n=== Action Items ===\n  1. Alice sends the deck"
	score, notes := Score("MEETING", out)
	if score != 0.8 || len(notes) != 0 {
		t.Errorf("got (%.2f, %v), want (0.80, none)", score, notes)
	}

	_, notes = Score("MEETING", "Meeting Summary\nAction Items\n6. too late in the list")
	if diff := cmp.Diff([]string{"No numbered action items found"}, notes); diff != "" {
		t.Errorf("notes mismatch (-want +got):\n%s", diff)
	}
}

func TestScore_GeneralBoundaryIsThirtyOneChars(t *testing.T) {
	if s, _ := Score("GENERAL", strings.Repeat("a", 30)); s != 0.5 {
		t.Errorf("30 chars: score = %.2f, want 0.50", s)
	}
	if s, _ := Score("GENERAL", "  "+strings.Repeat("a", 31)+"  "); s != 0.6 {
		t.Errorf("31 chars: score = %.2f, want 0.60", s)
	}
}

func TestScore_UnknownTaskTypeUsesGeneralRubric(t *testing.T) {
	_, notes := Score("SOMETHING_ELSE", "short")
	if diff := cmp.Diff([]string{"Output extremely short; may be low value"}, notes); diff != "" {
		t.Errorf("notes mismatch (-want +got):\n%s", diff)
	}
}

func TestScore_EmptyOutputStaysInRange(t *testing.T) {
	for _, task := range []string{"EMAIL", "REPORT", "MEETING", "GENERAL", "SHOW_PREFS"} {
		s, _ := Score(task, "")
		if s < 0 || s > 1 {
			t.Errorf("%s: score %.2f out of [0,1]", task, s)
		}
	}
}

func TestScore_AddingSignalNeverLowersScore(t *testing.T) {
	steps := []string{
		"hello",
		"Subject: hi",
		"Subject: hi\nDear Bob",
		"Subject: hi\nDear Bob\nRegards",
		goodEmail,
	}
	prev := -1.0
	for _, s := range steps {
		got, _ := Score("EMAIL", s)
		if got < prev {
			t.Errorf("score dropped from %.2f to %.2f at %q", prev, got, s)
		}
		prev = got
	}
}

func TestScore_RepeatedSignalCountsOnce(t *testing.T) {
	once, _ := Score("EMAIL", goodEmail)
	twice, _ := Score("EMAIL", goodEmail+"\nSubject: again\nDear Dear Dear\nThanks thanks")
	if once != twice {
		t.Errorf("repeated signals changed score: %.2f vs %.2f", once, twice)
	}
}

func TestNew_WritesHeaderOnce(t *testing.T) {
	_, path := newTestEvaluator(t)
	if _, err := New(path); err != nil {
		t.Fatalf("second New: %v", err)
	}
	rows := readRows(t, path)
	if diff := cmp.Diff([][]string{metricsHeader}, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestNew_EmptyFileGetsHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.csv")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(path); err != nil {
		t.Fatalf("New: %v", err)
	}
	if rows := readRows(t, path); len(rows) != 1 || rows[0][0] != "timestamp" {
		t.Errorf("expected header row, got %v", rows)
	}
}

func TestEvaluate_AppendsOneRowPerCall(t *testing.T) {
	e, path := newTestEvaluator(t)
	for i := 0; i < 3; i++ {
		if _, err := e.Evaluate("general", "in", "out"); err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
		if rows := readRows(t, path); len(rows) != i+2 {
			t.Fatalf("after %d calls: %d rows, want %d", i+1, len(rows), i+2)
		}
	}
}

func TestEvaluate_RowContents(t *testing.T) {
	e, path := newTestEvaluator(t)
	if _, err := e.Evaluate("email", "draft", "hi"); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	rows := readRows(t, path)
	want := []string{
		"2026-03-01T09:30:00Z",
		"EMAIL",
		"2",
		"0.50",
		"Missing subject line; Missing greeting (e.g., 'Dear ...'); Missing closing signature (e.g., 'Regards', 'Thanks'); Email very short; may be low quality",
	}
	if diff := cmp.Diff(want, rows[1]); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluate_SummaryFormat(t *testing.T) {
	e, _ := newTestEvaluator(t)
	got, err := e.Evaluate("EMAIL", "", goodEmail)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	want := "=== Evaluation ===\nTask type: EMAIL\nOutput length: " +
		strconv.Itoa(len([]rune(goodEmail))) + " characters\nScore: 0.90\nNotes: OK"
	if got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}

	got, _ = e.Evaluate("GENERAL", "", "tiny")
	if !strings.HasSuffix(got, "Notes:\n- Output extremely short; may be low value") {
		t.Errorf("notes block not rendered as bullets: %q", got)
	}
}

func TestAssess_LengthCountsCodePoints(t *testing.T) {
	e, _ := newTestEvaluator(t)
	rec, err := e.Assess("general", "", "héllo wörld")
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	if rec.OutputLength != 11 {
		t.Errorf("OutputLength = %d, want 11", rec.OutputLength)
	}
}

func TestAssess_AppendFailureIsReported(t *testing.T) {
	e, path := newTestEvaluator(t)
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Assess("general", "", "x"); err == nil {
		t.Error("expected error when metrics path is a directory")
	}
}

func TestSummarize_GroupsByTaskType(t *testing.T) {
	e, path := newTestEvaluator(t)
	_, _ = e.Evaluate("EMAIL", "", goodEmail) // 0.90
	_, _ = e.Evaluate("EMAIL", "", "hi")      // 0.50
	_, _ = e.Evaluate("GENERAL", "", "tiny")  // 0.50

	got, err := Summarize(path)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	want := []TaskStats{
		{TaskType: "EMAIL", Count: 2, Mean: 0.7, Min: 0.5, Max: 0.9},
		{TaskType: "GENERAL", Count: 1, Mean: 0.5, Min: 0.5, Max: 0.5},
	}
	approx := cmp.Comparer(func(a, b float64) bool { return a-b < 1e-9 && b-a < 1e-9 })
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
	if out := RenderStats(got); !strings.Contains(out, "EMAIL    count=2 mean=0.70 min=0.50 max=0.90") {
		t.Errorf("unexpected render: %q", out)
	}
}

func TestSummarize_MissingFile(t *testing.T) {
	_, err := Summarize(filepath.Join(t.TempDir(), "nope.csv"))
	if !errors.Is(err, tools.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRenderStats_Empty(t *testing.T) {
	if got := RenderStats(nil); got != "No evaluations recorded yet." {
		t.Errorf("got %q", got)
	}
}

func TestScore_EveryLineBreakSplitsLines(t *testing.T) {
	if s, notes := Score("MEETING", "Meeting Summary\rAction Items\r1. Ship it"); s != 0.8 || len(notes) != 0 {
		t.Errorf("got (%.2f, %v), want (0.80, none)", s, notes)
	}
	report := "=== Business Report ===\rRows of data: 3\u2028Total revenue: 300\vTotal expenses: 100\fTotal profit: 200"
	if s, notes := Score("REPORT", report); s != 0.8 || len(notes) != 0 {
		t.Errorf("got (%.2f, %v), want (0.80, none)", s, notes)
	}
}
