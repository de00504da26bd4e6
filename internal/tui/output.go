package tui

import (
	"encoding/json"
	"fmt"
	"io"

	signeterrors "github.com/mrz1836/signet/internal/errors"
)

// Output provides methods for structured output to a terminal.
type Output interface {
	// Success prints a success message.
	Success(msg string)
	// Error prints an error with its suggested action, if any.
	Error(err error)
	// Warning prints a warning message.
	Warning(msg string)
	// Info prints an informational message.
	Info(msg string)
	// Field prints one "key: value" line.
	Field(key, value string)
	// Table prints rows under headers.
	Table(headers []string, rows [][]string)
	// JSON outputs a value as formatted JSON.
	JSON(v any) error
}

// TTYOutput provides styled output for terminal displays.
type TTYOutput struct {
	w      io.Writer
	styles *OutputStyles
	table  *TableStyles
}

// NewTTYOutput creates a new TTYOutput. It honors NO_COLOR.
func NewTTYOutput(w io.Writer) *TTYOutput {
	CheckNoColor()

	return &TTYOutput{
		w:      w,
		styles: NewOutputStyles(),
		table:  NewTableStyles(),
	}
}

// Success prints a success message.
func (o *TTYOutput) Success(msg string) {
	_, _ = fmt.Fprintln(o.w, o.styles.Success.Render("✓ "+msg))
}

// Error prints the user-facing message for err and, on a second dim line,
// the suggested action.
func (o *TTYOutput) Error(err error) {
	msg, action := signeterrors.Actionable(err)
	_, _ = fmt.Fprintln(o.w, o.styles.Error.Render("✗ "+msg))
	if action != "" {
		_, _ = fmt.Fprintln(o.w, o.styles.Dim.Render("  ▸ Try: "+action))
	}
}

// Warning prints a warning message.
func (o *TTYOutput) Warning(msg string) {
	_, _ = fmt.Fprintln(o.w, o.styles.Warning.Render("⚠ "+msg))
}

// Info prints an informational message.
func (o *TTYOutput) Info(msg string) {
	_, _ = fmt.Fprintln(o.w, o.styles.Info.Render(msg))
}

// Field prints one "key: value" line with a styled key.
func (o *TTYOutput) Field(key, value string) {
	_, _ = fmt.Fprintf(o.w, "%s %s\n", o.styles.Key.Render(key+":"), value)
}

// Table prints aligned columns.
func (o *TTYOutput) Table(headers []string, rows [][]string) {
	writeTable(o.w, o.table, headers, rows)
}

// JSON outputs a value as formatted JSON.
func (o *TTYOutput) JSON(v any) error {
	return encodeJSON(o.w, v)
}

// JSONOutput emits every message as a JSON object.
type JSONOutput struct {
	w io.Writer
}

// NewJSONOutput creates a new JSONOutput.
func NewJSONOutput(w io.Writer) *JSONOutput {
	return &JSONOutput{w: w}
}

// jsonMessage is the structured format for Success/Warning/Info messages.
type jsonMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// jsonError is the structured format for Error messages.
type jsonError struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Success outputs {"type":"success","message":...}.
func (o *JSONOutput) Success(msg string) {
	o.encode(jsonMessage{Type: "success", Message: msg})
}

// Error outputs the user message, the raw error text, and the suggestion.
func (o *JSONOutput) Error(err error) {
	msg, action := signeterrors.Actionable(err)
	out := jsonError{Type: "error", Message: msg, Suggestion: action}
	if details := err.Error(); details != msg {
		out.Details = details
	}
	o.encode(out)
}

// Warning outputs {"type":"warning","message":...}.
func (o *JSONOutput) Warning(msg string) {
	o.encode(jsonMessage{Type: "warning", Message: msg})
}

// Info outputs {"type":"info","message":...}.
func (o *JSONOutput) Info(msg string) {
	o.encode(jsonMessage{Type: "info", Message: msg})
}

// Field is a no-op; JSON callers emit whole objects with JSON.
func (o *JSONOutput) Field(_, _ string) {}

// Table outputs rows as an array of objects keyed by header.
func (o *JSONOutput) Table(headers []string, rows [][]string) {
	result := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		obj := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(row) {
				obj[h] = row[i]
			} else {
				obj[h] = ""
			}
		}
		result = append(result, obj)
	}
	o.encode(result)
}

// JSON outputs a value as formatted JSON.
func (o *JSONOutput) JSON(v any) error {
	return encodeJSON(o.w, v)
}

func (o *JSONOutput) encode(v any) {
	//nolint:errchkjson // Method has no error return per interface contract
	_ = json.NewEncoder(o.w).Encode(v)
}

func encodeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// NewOutput creates the appropriate output based on format.
func NewOutput(w io.Writer, format string) Output {
	if format == "json" {
		return NewJSONOutput(w)
	}
	return NewTTYOutput(w)
}
