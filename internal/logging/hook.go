package logging

import "github.com/rs/zerolog"

// SuspectField is added to events whose message appears to hold a secret.
const SuspectField = "secret_suspected"

// SuspectHook flags events whose message matches a secret rule. zerolog
// hooks cannot rewrite the message, so redaction itself happens in
// RedactingWriter.
type SuspectHook struct{}

// Run implements zerolog.Hook.
func (SuspectHook) Run(e *zerolog.Event, _ zerolog.Level, msg string) {
	if HasSecret(msg) {
		e.Bool(SuspectField, true)
	}
}
