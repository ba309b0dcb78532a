package types

// Role identifiers used as routing targets and audit sources
type Role string

const (
	RolePlanner Role = "PLANNER"
	RoleEmail   Role = "EMAIL"
	RoleReport  Role = "REPORT"
	RoleMeeting Role = "MEETING"
)

// Intent is the task category assigned to one utterance.
type Intent string

const (
	IntentPreference Intent = "PREFERENCE"
	IntentShowPrefs  Intent = "SHOW_PREFS"
	IntentMeeting    Intent = "MEETING"
	IntentEmail      Intent = "EMAIL"
	IntentReport     Intent = "REPORT"
	IntentGeneral    Intent = "GENERAL"
)

// Preference is one stored key/value setting.
type Preference struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// EvaluationRecord is one row of the metrics log.
// Notes lists unmet rubric checks in evaluation order; empty means "OK".
type EvaluationRecord struct {
	Timestamp    string   `json:"timestamp"`
	TaskType     string   `json:"task_type"`
	OutputLength int      `json:"output_length"`
	Score        float64  `json:"score"`
	Notes        []string `json:"notes"`
}

// AuditEvent is one JSONL line in the audit journal, written once per handled request.
type AuditEvent struct {
	EventID   string   `json:"event_id"`
	Timestamp string   `json:"timestamp"`
	Source    Role     `json:"source"`
	Intent    Intent   `json:"intent"`
	Input     string   `json:"input"`
	Evaluated bool     `json:"evaluated"`
	Score     *float64 `json:"score,omitempty"` // pointer: 0.0 must be serialised
	ElapsedMs int64    `json:"elapsed_ms"`
	Detail    *string  `json:"detail"`
}
