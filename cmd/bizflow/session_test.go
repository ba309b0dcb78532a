package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/chzyer/readline"
)

// scriptedReader replays lines, then returns end.
type scriptedReader struct {
	lines []string
	end   error
}

func (r *scriptedReader) Readline() (string, error) {
	if len(r.lines) == 0 {
		if r.end == nil {
			return "", io.EOF
		}
		return "", r.end
	}
	l := r.lines[0]
	r.lines = r.lines[1:]
	return l, nil
}

func newSession(lines []string, handle func(context.Context, string) (string, error)) (*session, *bytes.Buffer) {
	var out bytes.Buffer
	return &session{in: &scriptedReader{lines: lines}, out: &out, handle: handle}, &out
}

func echo(_ context.Context, in string) (string, error) { return "echo: " + in, nil }

func TestSession_ExitPrintsGoodbyeAndStops(t *testing.T) {
	var calls []string
	s, out := newSession([]string{"hello", "  QUIT ", "never"}, func(ctx context.Context, in string) (string, error) {
		calls = append(calls, in)
		return echo(ctx, in)
	})
	s.run(context.Background())

	if len(calls) != 1 || calls[0] != "hello" {
		t.Errorf("handled %q, want only hello", calls)
	}
	got := out.String()
	if !strings.Contains(got, "\nAssistant:\necho: hello\n"+strings.Repeat("-", 40)+"\n") {
		t.Errorf("response block missing:\n%s", got)
	}
	if !strings.HasSuffix(got, "Assistant: Goodbye! 👋\n") {
		t.Errorf("goodbye missing:\n%s", got)
	}
}

func TestSession_SkipsBlankLines(t *testing.T) {
	n := 0
	s, _ := newSession([]string{"", "   ", "exit"}, func(context.Context, string) (string, error) {
		n++
		return "", nil
	})
	s.run(context.Background())
	if n != 0 {
		t.Errorf("handler called %d times for blank input", n)
	}
}

func TestSession_HandlerErrorIsReportedAndLoopContinues(t *testing.T) {
	first := true
	s, out := newSession([]string{"a", "b", "exit"}, func(_ context.Context, in string) (string, error) {
		if first {
			first = false
			return "", errors.New("disk full")
		}
		return "ok " + in, nil
	})
	s.run(context.Background())
	got := out.String()
	if !strings.Contains(got, "An unexpected error occurred: disk full") {
		t.Errorf("error text missing:\n%s", got)
	}
	if !strings.Contains(got, "ok b") {
		t.Errorf("loop did not continue:\n%s", got)
	}
}

func TestSession_EOFEndsWithoutGoodbye(t *testing.T) {
	s, out := newSession([]string{"hi"}, echo)
	s.run(context.Background())
	if strings.Contains(out.String(), "Goodbye") {
		t.Errorf("unexpected goodbye on EOF:\n%s", out.String())
	}
}

func TestSession_InterruptEndsSession(t *testing.T) {
	var out bytes.Buffer
	s := &session{in: &scriptedReader{end: readline.ErrInterrupt}, out: &out, handle: echo}
	s.run(context.Background())
	if strings.Contains(out.String(), "Assistant:") {
		t.Errorf("unexpected response after interrupt:\n%s", out.String())
	}
}

func TestSession_CancelledContextStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n := 0
	s, _ := newSession([]string{"hello"}, func(context.Context, string) (string, error) {
		n++
		return "", nil
	})
	s.run(ctx)
	if n != 0 {
		t.Error("handled input after cancellation")
	}
}

func TestIsExit(t *testing.T) {
	for _, in := range []string{"exit", "EXIT", " quit ", "Quit"} {
		if !isExit(in) {
			t.Errorf("isExit(%q) = false", in)
		}
	}
	for _, in := range []string{"exiting", "quit now", ""} {
		if isExit(in) {
			t.Errorf("isExit(%q) = true", in)
		}
	}
}
