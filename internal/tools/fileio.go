package tools

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
)

var (
	// ErrNotFound reports a missing input file (transcript, tabular data).
	ErrNotFound = errors.New("not found")
	// ErrEmptyData reports an input file with no usable content.
	ErrEmptyData = errors.New("empty data")
)

// ReadFile reads the file at path and returns its contents as a string.
// A missing file is reported as ErrNotFound.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("file %w: %s", ErrNotFound, path)
		}
		return "", err
	}
	return string(data), nil
}

// ReadTranscript loads a meeting transcript.
//
// Expectations:
//   - Returns ErrNotFound (wrapped, message names the path) when the file is absent
//   - Returns ErrEmptyData when the file contains only whitespace
//   - Returns the raw text unchanged otherwise
func ReadTranscript(path string) (string, error) {
	slog.Info("[TOOLS] loading meeting transcript", "path", path)
	text, err := ReadFile(path)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			slog.Error("[TOOLS] transcript file not found", "path", path)
			return "", fmt.Errorf("transcript file %w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("read transcript: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		slog.Warn("[TOOLS] transcript file is empty", "path", path)
		return "", fmt.Errorf("transcript file is %w: %s", ErrEmptyData, path)
	}
	return text, nil
}
