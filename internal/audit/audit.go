// Package audit keeps the append-only request journal: one JSONL line per
// handled request, recording intent, score, latency and any degrade detail.
//
// All Recorder methods are nil-safe so callers without a journal configured
// can record unconditionally.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/haricheung/bizflow/internal/tools"
	"github.com/haricheung/bizflow/internal/types"
)

// Recorder appends AuditEvents to a JSONL file.
//
// Expectations:
//   - All methods are nil-safe (no-op when called on nil *Recorder)
//   - Record fills EventID and Timestamp when they are empty
//   - Concurrent Records are safe (mutex-protected); each event is one line
type Recorder struct {
	path string
	mu   sync.Mutex
	f    *os.File
	now  func() time.Time
}

// Open creates the journal's parent directory and opens path for appending.
func Open(path string) (*Recorder, error) {
	if err := tools.EnsureParentDir(path); err != nil {
		return nil, fmt.Errorf("audit: create dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("audit: open %s: %w", path, err)
	}
	slog.Info("[AUDIT] journal ready", "path", path)
	return &Recorder{path: path, f: f, now: time.Now}, nil
}

// Record writes e as one JSON line. Write failures are logged, never returned:
// the journal must not break request handling.
func (r *Recorder) Record(e types.AuditEvent) {
	if r == nil {
		return
	}
	if e.EventID == "" {
		e.EventID = uuid.New().String()
	}
	if e.Timestamp == "" {
		e.Timestamp = r.now().UTC().Format(time.RFC3339)
	}
	if e.Source == "" {
		e.Source = types.RolePlanner
	}
	data, err := json.Marshal(e)
	if err != nil {
		slog.Error("[AUDIT] marshal event", "error", err)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.f == nil {
		return
	}
	if _, err := fmt.Fprintf(r.f, "%s\n", data); err != nil {
		slog.Error("[AUDIT] write event", "error", err)
	}
}

// Path returns the journal location, or "" for a nil Recorder.
func (r *Recorder) Path() string {
	if r == nil {
		return ""
	}
	return r.path
}

// Close closes the journal file. Records after Close are dropped.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f = nil
	return err
}

// ReadAll loads every event from the journal at path. Malformed lines are skipped.
func ReadAll(path string) ([]types.AuditEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audit: %w", err)
	}
	defer f.Close()

	var out []types.AuditEvent
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		var e types.AuditEvent
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			slog.Warn("[AUDIT] skipping malformed line", "error", err)
			continue
		}
		out = append(out, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("audit: read %s: %w", path, err)
	}
	return out, nil
}
