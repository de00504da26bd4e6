package logging

import "io"

// RedactingWriter passes every write through Redact before forwarding it.
// zerolog emits one JSON line per write, so members are never split.
type RedactingWriter struct {
	next io.Writer
}

// NewRedactingWriter wraps next.
func NewRedactingWriter(next io.Writer) *RedactingWriter {
	return &RedactingWriter{next: next}
}

// Write forwards the redacted form of p. It reports len(p) on success since
// redaction changes the byte count.
func (w *RedactingWriter) Write(p []byte) (int, error) {
	if _, err := io.WriteString(w.next, Redact(string(p))); err != nil {
		return 0, err
	}
	return len(p), nil
}
