package tools

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Table is a loaded CSV file: one header row plus data records.
type Table struct {
	Header  []string
	Records [][]string
	index   map[string]int
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Records) }

// Strings returns every value of the named column.
func (t *Table) Strings(column string) ([]string, error) {
	i, ok := t.index[strings.ToLower(column)]
	if !ok {
		return nil, fmt.Errorf("missing column %q", column)
	}
	out := make([]string, len(t.Records))
	for r, rec := range t.Records {
		if i < len(rec) {
			out[r] = strings.TrimSpace(rec[i])
		}
	}
	return out, nil
}

// Floats parses every value of the named column as a float64.
// Blank cells (and cells missing from short rows) are read as 0 so they drop
// out of sums; any other non-numeric text is an error.
func (t *Table) Floats(column string) ([]float64, error) {
	raw, err := t.Strings(column)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(raw))
	for r, s := range raw {
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("column %q row %d: invalid number %q", column, r+1, s)
		}
		out[r] = v
	}
	return out, nil
}

// ReadCSV loads a CSV file whose first row is the header.
// Column lookups are case-insensitive; blank lines are skipped.
//
// Expectations:
//   - Returns ErrNotFound (wrapped, message names the path) when the file is absent
//   - Returns ErrEmptyData when the file has a header but no data rows, or no content at all
//   - Returns a parse error for malformed CSV (ragged rows are allowed)
func ReadCSV(path string) (*Table, error) {
	slog.Info("[TOOLS] reading CSV file", "path", path)

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Error("[TOOLS] CSV file not found", "path", path)
			return nil, fmt.Errorf("file %w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		slog.Warn("[TOOLS] CSV file is empty", "path", path)
		return nil, fmt.Errorf("csv file is %w: %s", ErrEmptyData, path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse csv header: %w", err)
	}

	t := &Table{Header: header, index: make(map[string]int, len(header))}
	for i, h := range header {
		t.index[strings.ToLower(strings.TrimSpace(h))] = i
	}

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		t.Records = append(t.Records, rec)
	}

	if t.Len() == 0 {
		slog.Warn("[TOOLS] CSV file is empty", "path", path)
		return nil, fmt.Errorf("csv file is %w: %s", ErrEmptyData, path)
	}

	slog.Info("[TOOLS] CSV read successfully", "rows", t.Len(), "columns", len(header))
	return t, nil
}
