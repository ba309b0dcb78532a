// Package memory is the preference agent: it owns reads and writes of user
// and business settings on top of the preference store.
package memory

import (
	"fmt"
	"log"
	"strings"

	"github.com/haricheung/bizflow/internal/store"
)

// KeyEmailSignature is the preference consulted when drafting emails.
const KeyEmailSignature = "email_signature"

// NoPreferencesMessage is rendered by ListPreferences when the store is empty.
const NoPreferencesMessage = "No preferences stored yet."

// Agent reads and writes preferences.
type Agent struct {
	store store.Store
}

// New creates an Agent over s.
func New(s store.Store) *Agent {
	return &Agent{store: s}
}

// SetPreference saves a preference, overwriting any existing value.
func (a *Agent) SetPreference(key, value string) error {
	if err := a.store.Set(key, value); err != nil {
		return fmt.Errorf("memory: %w", err)
	}
	return nil
}

// GetPreference returns the stored value for key, or def when it is absent.
//
// Expectations:
//   - Returns the stored value when present (even when it is the empty string)
//   - Returns def when the key is absent
//   - Propagates store read errors
func (a *Agent) GetPreference(key, def string) (string, error) {
	v, ok, err := a.store.Get(key)
	if err != nil {
		return "", fmt.Errorf("memory: %w", err)
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// ListPreferences renders every stored preference as "key: value" lines under
// a heading, or NoPreferencesMessage when nothing is stored.
func (a *Agent) ListPreferences() (string, error) {
	items, err := a.store.List()
	if err != nil {
		return "", fmt.Errorf("memory: %w", err)
	}
	log.Printf("[MEMORY] listing %d preference(s)", len(items))
	if len(items) == 0 {
		return NoPreferencesMessage, nil
	}

	lines := []string{"=== Stored Preferences ==="}
	for _, p := range items {
		lines = append(lines, fmt.Sprintf("%s: %s", p.Key, p.Value))
	}
	return strings.Join(lines, "\n"), nil
}
