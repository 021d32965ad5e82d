// Package diagnostics is the unified diagnostic system shared by every
// compiler stage. Diagnostics are data, never errors: a stage with content
// problems keeps producing output and returns diagnostics alongside it.
package diagnostics

import (
	"encoding/json"
	"fmt"
)

// Level is the severity of a diagnostic.
type Level string

const (
	LevelError Level = "error"
	LevelWarn  Level = "warn"
	LevelInfo  Level = "info"
)

// Location pins a diagnostic to a place in source or on the canvas. Every
// field is optional; only the ones that apply are populated.
type Location struct {
	Line   *int    `json:"line,omitempty"`
	Column *int    `json:"column,omitempty"`
	Span   *int    `json:"span,omitempty"`
	NodeID string  `json:"node_id,omitempty"`
	Port   string  `json:"port,omitempty"`
}

// Diagnostic is a single structured message.
type Diagnostic struct {
	Code       string         `json:"code"`
	Level      Level          `json:"level"`
	Message    string         `json:"message"`
	Location   *Location      `json:"location,omitempty"`
	Suggestion string         `json:"suggestion,omitempty"`
	Autofix    map[string]any `json:"autofix,omitempty"`
}

func (d Diagnostic) String() string {
	loc := ""
	if d.Location != nil {
		if d.Location.Line != nil {
			loc = fmt.Sprintf(" (line %d)", *d.Location.Line)
		} else if d.Location.NodeID != "" {
			loc = fmt.Sprintf(" (node %s)", d.Location.NodeID)
		}
	}
	return fmt.Sprintf("[%s] %s%s: %s", d.Code, upper(string(d.Level)), loc, d.Message)
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 32
		}
	}
	return string(b)
}

// Option configures an optional Diagnostic field.
type Option func(*Diagnostic)

// WithNodeID attaches a node location.
func WithNodeID(id string) Option {
	return func(d *Diagnostic) {
		if id == "" {
			return
		}
		if d.Location == nil {
			d.Location = &Location{}
		}
		d.Location.NodeID = id
	}
}

// WithLine attaches a line location.
func WithLine(line int) Option {
	return func(d *Diagnostic) {
		if d.Location == nil {
			d.Location = &Location{}
		}
		l := line
		d.Location.Line = &l
	}
}

// WithSuggestion attaches a suggestion string.
func WithSuggestion(s string) Option {
	return func(d *Diagnostic) { d.Suggestion = s }
}

// MakeError builds an error-level diagnostic.
func MakeError(code, message string, opts ...Option) Diagnostic {
	return build(code, LevelError, message, opts)
}

// MakeWarning builds a warning-level diagnostic.
func MakeWarning(code, message string, opts ...Option) Diagnostic {
	return build(code, LevelWarn, message, opts)
}

// MakeInfo builds an info-level diagnostic.
func MakeInfo(code, message string, opts ...Option) Diagnostic {
	return build(code, LevelInfo, message, opts)
}

func build(code string, level Level, message string, opts []Option) Diagnostic {
	d := Diagnostic{Code: code, Level: level, Message: message}
	for _, o := range opts {
		o(&d)
	}
	return d
}

// HasError reports whether any diagnostic in the list is error-level.
func HasError(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Level == LevelError {
			return true
		}
	}
	return false
}

// MarshalList and UnmarshalList round-trip a diagnostic batch through JSON,
// for storage in a jsonb column or a file alongside generated code.
func MarshalList(diags []Diagnostic) ([]byte, error) {
	return json.Marshal(diags)
}

func UnmarshalList(data []byte) ([]Diagnostic, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var diags []Diagnostic
	if err := json.Unmarshal(data, &diags); err != nil {
		return nil, err
	}
	return diags, nil
}
