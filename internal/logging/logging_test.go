package logging

import (
	"bytes"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/haricheung/bizflow/internal/config"
)

func setupTemp(t *testing.T, consoleOn bool) (string, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	origConsole := console
	console = &buf
	t.Cleanup(func() {
		reset()
		console = origConsole
	})

	dir := filepath.Join(t.TempDir(), "logs")
	_, err := Setup(config.LoggingConfig{Dir: dir, Level: "info", Console: consoleOn, MaxSizeMB: 1, MaxBackups: 3})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	return dir, &buf
}

func readLog(t *testing.T, dir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	return string(data)
}

func TestSetup_WritesToFileAndConsole(t *testing.T) {
	dir, buf := setupTemp(t, true)
	slog.Info("[PLANNER] detected intent", "intent", "EMAIL")
	if !strings.Contains(readLog(t, dir), "intent=EMAIL") {
		t.Error("log file missing entry")
	}
	if !strings.Contains(buf.String(), "intent=EMAIL") {
		t.Error("console missing entry")
	}
}

func TestSetup_StdlibLogIsRouted(t *testing.T) {
	dir, _ := setupTemp(t, false)
	log.Printf("[REPORT] generating report")
	if !strings.Contains(readLog(t, dir), "[REPORT] generating report") {
		t.Error("log.Printf output not in log file")
	}
}

func TestSetup_StdlibLogHasNoDuplicateTimestamp(t *testing.T) {
	log.SetFlags(log.LstdFlags)
	dir, _ := setupTemp(t, false)
	if f := log.Flags(); f != 0 {
		t.Errorf("log.Flags() = %d, want 0", f)
	}
	log.Printf("[MEETING] summarizing")
	if !strings.Contains(readLog(t, dir), `msg="[MEETING] summarizing"`) {
		t.Errorf("unexpected log line: %q", readLog(t, dir))
	}
}

func TestSetup_ConsoleOff(t *testing.T) {
	_, buf := setupTemp(t, false)
	slog.Info("quiet")
	if buf.Len() != 0 {
		t.Errorf("console written with Console=false: %q", buf.String())
	}
}

func TestSetup_IsIdempotent(t *testing.T) {
	dir, buf := setupTemp(t, true)
	first := slog.Default()
	again, err := Setup(config.LoggingConfig{Dir: dir, Console: true})
	if err != nil {
		t.Fatalf("second Setup: %v", err)
	}
	if again != first {
		t.Error("second Setup installed a new logger")
	}
	slog.Info("once")
	if n := strings.Count(buf.String(), "msg=once"); n != 1 {
		t.Errorf("console line count = %d, want 1", n)
	}
	if n := strings.Count(readLog(t, dir), "msg=once"); n != 1 {
		t.Errorf("file line count = %d, want 1", n)
	}
}

func TestSetup_LevelFiltersDebug(t *testing.T) {
	dir, _ := setupTemp(t, false)
	slog.Debug("hidden")
	slog.Info("shown")
	got := readLog(t, dir)
	if strings.Contains(got, "hidden") || !strings.Contains(got, "shown") {
		t.Errorf("unexpected log content: %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug, "WARN": slog.LevelWarn, "warning": slog.LevelWarn,
		"error": slog.LevelError, "": slog.LevelInfo, "verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
