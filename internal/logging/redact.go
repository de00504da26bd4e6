// Package logging keeps private keys and caller credentials out of signet's
// log output.
package logging

import (
	"regexp"
	"strings"
)

// Redacted is written in place of anything that looks like a secret.
const Redacted = "[REDACTED]"

// secretRules match secret values wherever they appear in a string.
var secretRules = []*regexp.Regexp{ //nolint:gochecknoglobals // compiled once
	// PEM private key blocks, including a truncated block with no footer.
	regexp.MustCompile(`-----BEGIN[A-Z ]*PRIVATE KEY-----(?s:.*?)(-----END[A-Z ]*PRIVATE KEY-----|$)`),
	// Bare base64 PKCS#8 RSA keys. SPKI public keys start differently.
	regexp.MustCompile(`MII[A-Za-z0-9+/]{3}IBADANBgkqhkiG9w0BAQEFAAS[A-Za-z0-9+/=]+`),
	regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._~+/=-]{20,}`),
	// name=value or name: value pairs in free text.
	regexp.MustCompile(`(?i)\b(password|passwd|pwd|secret|credential|authorization|token|private[_-]?key)\b"?\s*[:=]\s*["']?[^\s"',}\[]{8,}["']?`),
}

// jsonMember matches one "name":"string" member of a JSON log line.
var jsonMember = regexp.MustCompile(`"([^"\\]+)"\s*:\s*"(?:[^"\\]|\\.)*"`) //nolint:gochecknoglobals // compiled once

// secretNames are substrings of field names whose values are never logged.
var secretNames = []string{ //nolint:gochecknoglobals // read-only
	"password",
	"passwd",
	"secret",
	"credential",
	"privatekey",
	"accesstoken",
	"bearer",
	"authorization",
}

// secretName reports whether a log field called name should never carry
// its value. Separators and case are ignored, so private_key, PrivateKey
// and identity_private-key all match.
func secretName(name string) bool {
	folded := strings.NewReplacer("_", "", "-", "", ".", "").Replace(strings.ToLower(name))
	for _, s := range secretNames {
		if strings.Contains(folded, s) {
			return true
		}
	}
	return false
}

// HasSecret reports whether s would be changed by Redact.
func HasSecret(s string) bool {
	for _, re := range secretRules {
		if re.MatchString(s) {
			return true
		}
	}
	for _, m := range jsonMember.FindAllStringSubmatch(s, -1) {
		if secretName(m[1]) {
			return true
		}
	}
	return false
}

// Redact blanks every JSON member with a secret name, then every value
// matching a secret rule.
func Redact(s string) string {
	out := jsonMember.ReplaceAllStringFunc(s, func(member string) string {
		name := jsonMember.FindStringSubmatch(member)[1]
		if !secretName(name) {
			return member
		}
		return `"` + name + `":"` + Redacted + `"`
	})
	for _, re := range secretRules {
		out = re.ReplaceAllString(out, Redacted)
	}
	return out
}

// Field returns the loggable form of value for a field called name.
//
//	logger.Debug().Str("ref", logging.Field("ref", ref)).Msg("looking up identity")
func Field(name, value string) string {
	if secretName(name) {
		return Redacted
	}
	return Redact(value)
}
