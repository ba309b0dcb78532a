package audit

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/haricheung/bizflow/internal/types"
)

func openTemp(t *testing.T) *Recorder {
	t.Helper()
	r, err := Open(filepath.Join(t.TempDir(), "data", "audit.jsonl"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRecorder_NilSafe(t *testing.T) {
	var r *Recorder
	r.Record(types.AuditEvent{Intent: types.IntentGeneral})
	if r.Path() != "" {
		t.Error("nil Path should be empty")
	}
	if err := r.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}
}

func TestRecord_FillsIDTimestampAndSource(t *testing.T) {
	r := openTemp(t)
	r.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600)) }
	score := 0.0
	r.Record(types.AuditEvent{Intent: types.IntentEmail, Input: "email bob", Evaluated: true, Score: &score})

	events, err := ReadAll(r.Path())
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	e := events[0]
	if e.EventID == "" {
		t.Error("EventID not filled")
	}
	if e.Timestamp != "2026-03-01T11:00:00Z" {
		t.Errorf("Timestamp = %q, want UTC", e.Timestamp)
	}
	if e.Source != types.RolePlanner {
		t.Errorf("Source = %q", e.Source)
	}
	if e.Score == nil || *e.Score != 0 {
		t.Error("zero score must be serialised")
	}
}

func TestRecord_KeepsCallerEventID(t *testing.T) {
	r := openTemp(t)
	r.Record(types.AuditEvent{EventID: "fixed-id", Intent: types.IntentReport})
	events, _ := ReadAll(r.Path())
	if events[0].EventID != "fixed-id" {
		t.Errorf("EventID = %q", events[0].EventID)
	}
}

func TestRecord_ConcurrentWritesAreWholeLines(t *testing.T) {
	r := openTemp(t)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Record(types.AuditEvent{Intent: types.IntentGeneral, Input: "hello"})
		}()
	}
	wg.Wait()
	events, err := ReadAll(r.Path())
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(events) != 20 {
		t.Errorf("got %d events, want 20", len(events))
	}
}

func TestRecord_AfterCloseIsDropped(t *testing.T) {
	r := openTemp(t)
	r.Record(types.AuditEvent{Intent: types.IntentGeneral})
	_ = r.Close()
	r.Record(types.AuditEvent{Intent: types.IntentGeneral})
	events, _ := ReadAll(r.Path())
	if len(events) != 1 {
		t.Errorf("got %d events, want 1", len(events))
	}
}

func TestOpen_AppendsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	for i := 0; i < 2; i++ {
		r, err := Open(path)
		if err != nil {
			t.Fatal(err)
		}
		r.Record(types.AuditEvent{Intent: types.IntentGeneral})
		r.Close()
	}
	events, _ := ReadAll(path)
	if len(events) != 2 {
		t.Errorf("got %d events, want 2", len(events))
	}
}
