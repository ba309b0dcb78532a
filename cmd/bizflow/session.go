package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/chzyer/readline"

	"github.com/haricheung/bizflow/internal/roles/planner"
	"github.com/haricheung/bizflow/internal/ui"
)

// lineReader is the subset of *readline.Instance the session needs.
type lineReader interface {
	Readline() (string, error)
}

// session is the interactive request/response loop.
//
// Expectations:
//   - Blank lines are ignored
//   - "exit" / "quit" (any case, surrounding space) print the goodbye line and end the session
//   - EOF, interrupt and context cancellation end the session without the goodbye line
//   - A handler error is printed as "An unexpected error occurred: <err>" and the loop continues
//   - One request is fully handled before the next line is read
type session struct {
	in      lineReader
	out     io.Writer
	handle  func(ctx context.Context, input string) (string, error)
	spinner bool
}

func (s *session) run(ctx context.Context) {
	ui.Banner(s.out)
	for {
		if ctx.Err() != nil {
			return
		}
		line, err := s.in.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				slog.Info("[CLI] session ended", "reason", err)
				return
			}
			slog.Error("[CLI] read input", "error", err)
			return
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if isExit(line) {
			fmt.Fprintln(s.out, ui.Goodbye)
			slog.Info("[CLI] user exited the application")
			return
		}

		slog.Info("[CLI] received user input", "input", ui.Clip(line, 120))
		ui.PrintResponse(s.out, s.respond(ctx, line))
	}
}

// respond runs one request, converting an escaped error into the response text.
func (s *session) respond(ctx context.Context, line string) string {
	var sp *ui.Spinner
	if s.spinner {
		sp = ui.StartSpinner(s.out, ui.StatusFor(planner.Classify(line), line))
	}
	resp, err := s.handle(ctx, line)
	if sp != nil {
		sp.Stop(err == nil)
	}
	if err != nil {
		slog.Error("[CLI] error while handling request", "error", err)
		return fmt.Sprintf("An unexpected error occurred: %v", err)
	}
	slog.Info("[CLI] generated response successfully")
	return resp
}
