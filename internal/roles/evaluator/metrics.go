package evaluator

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/haricheung/bizflow/internal/tools"
	"github.com/haricheung/bizflow/internal/types"
)

// metricsHeader is the fixed first row of the metrics CSV.
var metricsHeader = []string{"timestamp", "task_type", "output_length", "score", "notes"}

// MetricsLog is the append-only CSV of evaluation records.
//
// Expectations:
//   - The header row is written exactly once, when the file is absent or empty
//   - Each Append adds exactly one row; existing rows are never rewritten
//   - Concurrent Appends are safe (mutex-protected)
type MetricsLog struct {
	path string
	mu   sync.Mutex
}

// OpenMetricsLog prepares the metrics CSV at path, creating parent directories
// and the header row when needed.
func OpenMetricsLog(path string) (*MetricsLog, error) {
	if err := tools.EnsureParentDir(path); err != nil {
		return nil, fmt.Errorf("metrics: create dir: %w", err)
	}
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist), err == nil && info.Size() == 0:
		if err := writeRows(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, metricsHeader); err != nil {
			return nil, fmt.Errorf("metrics: write header: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("metrics: stat %s: %w", path, err)
	}
	return &MetricsLog{path: path}, nil
}

// Path returns the CSV location.
func (m *MetricsLog) Path() string { return m.path }

// Append writes rec as one CSV row.
func (m *MetricsLog) Append(rec types.EvaluationRecord) error {
	row := []string{
		rec.Timestamp,
		rec.TaskType,
		strconv.Itoa(rec.OutputLength),
		fmt.Sprintf("%.2f", rec.Score),
		joinNotes(rec.Notes),
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := writeRows(m.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, row); err != nil {
		return fmt.Errorf("metrics: append: %w", err)
	}
	return nil
}

func writeRows(path string, flag int, rows ...[]string) error {
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// TaskStats aggregates the metrics rows for one task type.
type TaskStats struct {
	TaskType string
	Count    int
	Mean     float64
	Min      float64
	Max      float64
}

// Summarize reads the metrics CSV at path and aggregates scores per task type,
// sorted by task type. Rows whose score cannot be parsed are skipped.
//
// Expectations:
//   - Missing file returns tools.ErrNotFound
//   - Header-only file returns an empty slice and no error
//   - Mean, Min and Max are computed over the parsed scores of each task type
func Summarize(path string) ([]TaskStats, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("metrics file %w: %s", tools.ErrNotFound, path)
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	scores := map[string][]float64{}
	first := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("metrics: read %s: %w", path, err)
		}
		if first {
			first = false
			if len(row) > 0 && row[0] == metricsHeader[0] {
				continue
			}
		}
		if len(row) < 4 {
			continue
		}
		s, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
		if err != nil {
			continue
		}
		scores[row[1]] = append(scores[row[1]], s)
	}

	out := make([]TaskStats, 0, len(scores))
	for task, xs := range scores {
		sorted := append([]float64(nil), xs...)
		sort.Float64s(sorted)
		out = append(out, TaskStats{
			TaskType: task,
			Count:    len(xs),
			Mean:     stat.Mean(xs, nil),
			Min:      sorted[0],
			Max:      sorted[len(sorted)-1],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TaskType < out[j].TaskType })
	return out, nil
}

// RenderStats formats the per-task aggregates as a plain-text table.
func RenderStats(stats []TaskStats) string {
	if len(stats) == 0 {
		return "No evaluations recorded yet."
	}
	lines := []string{"=== Evaluation Metrics ==="}
	for _, s := range stats {
		lines = append(lines, fmt.Sprintf("%-8s count=%d mean=%.2f min=%.2f max=%.2f",
			s.TaskType, s.Count, s.Mean, s.Min, s.Max))
	}
	return strings.Join(lines, "\n")
}
