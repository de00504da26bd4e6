package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries is the pre-built mapping of sentinel errors to their user-facing messages.
// Using a slice (not a map) because errors.Is() requires proper error chain traversal.
//
//nolint:gochecknoglobals // Pre-built mapping for efficiency
var errorInfoEntries = []errorEntry{
	// ===================
	// Signing core
	// ===================
	{
		err: ErrKeyGeneration,
		info: ErrorInfo{
			Message: "Could not generate a key pair for the identity.",
			Action:  "Check that the system entropy source is available and retry.",
		},
	},
	{
		err: ErrSigning,
		info: ErrorInfo{
			Message: "The text could not be signed. No signature was recorded.",
			Action:  "Check that the identity's key material is intact.",
		},
	},
	{
		err: ErrRecordNotFound,
		info: ErrorInfo{
			Message: "No signature record matches the given id or text and signature.",
			Action:  "Check the record id, or make sure the text is exactly what was signed.",
		},
	},
	{
		err: ErrRecordExists,
		info: ErrorInfo{
			Message: "A signature record with the same key already exists.",
		},
	},
	{
		err: ErrIdentityNotFound,
		info: ErrorInfo{
			Message: "Identity not found.",
			Action:  "Run 'signet identity list' to see available identities.",
		},
	},
	{
		err: ErrIdentityExists,
		info: ErrorInfo{
			Message: "An identity with that name already exists.",
			Action:  "Choose a different name or use the existing identity.",
		},
	},
	{
		err: ErrIdentityUnresolved,
		info: ErrorInfo{
			Message: "Could not resolve the signing identity.",
			Action:  "Pass an identity id or a unique identity name with --as.",
		},
	},
	{
		err: ErrEmptyText,
		info: ErrorInfo{
			Message: "There is no text to sign.",
			Action:  "Provide text as an argument, with --file, or interactively.",
		},
	},
	{
		err: ErrTextTooLarge,
		info: ErrorInfo{
			Message: "The text is larger than the configured limit.",
			Action:  "Raise signing.max_text_bytes in your config or sign a smaller text.",
		},
	},
	{
		err: ErrUnsupportedAlgorithm,
		info: ErrorInfo{
			Message: "The signature uses an unsupported algorithm.",
		},
	},
	{
		err: ErrInvalidKey,
		info: ErrorInfo{
			Message: "Stored key material is unreadable.",
		},
	},
	{
		err: ErrStoreCorrupted,
		info: ErrorInfo{
			Message: "The signet data directory contains a corrupted file.",
			Action:  "Restore the data directory from a backup.",
		},
	},
	{
		err: ErrLockTimedOut,
		info: ErrorInfo{
			Message: "Another signet process is holding the data lock.",
			Action:  "Wait for it to finish or raise storage.lock_timeout.",
		},
	},
	{
		err: ErrSignatureInvalid,
		info: ErrorInfo{
			Message: "The signature is INVALID for this record.",
		},
	},

	// ===================
	// Configuration
	// ===================
	{
		err: ErrConfigNil,
		info: ErrorInfo{
			Message: "Configuration is missing.",
		},
	},
	{
		err: ErrConfigInvalidKeys,
		info: ErrorInfo{
			Message: "Invalid keys configuration.",
			Action:  "keys.bits must be between 2048 and 8192.",
		},
	},
	{
		err: ErrConfigInvalidStorage,
		info: ErrorInfo{
			Message: "Invalid storage configuration.",
			Action:  "storage.backend must be 'file' or 'memory' and storage.lock_timeout must be positive.",
		},
	},
	{
		err: ErrConfigInvalidSigning,
		info: ErrorInfo{
			Message: "Invalid signing configuration.",
			Action:  "signing.max_text_bytes must be positive.",
		},
	},
	{
		err: ErrConfigInvalidVerify,
		info: ErrorInfo{
			Message: "Invalid verify configuration.",
			Action:  "verify.parallelism must be between 1 and 64.",
		},
	},
	{
		err: ErrConfigExists,
		info: ErrorInfo{
			Message: "A config file already exists.",
			Action:  "Use --force to overwrite it.",
		},
	},

	// ===================
	// CLI
	// ===================
	{
		err: ErrInvalidOutputFormat,
		info: ErrorInfo{
			Message: "Invalid output format.",
			Action:  "Use --output text or --output json.",
		},
	},
	{
		err: ErrConflictingFlags,
		info: ErrorInfo{
			Message: "Conflicting flags were specified.",
			Action:  "Check the command help for valid flag combinations.",
		},
	},
	{
		err: ErrInvalidArgument,
		info: ErrorInfo{
			Message: "An invalid argument was provided.",
			Action:  "Check the command help for valid arguments.",
		},
	},
	{
		err: ErrUserInputRequired,
		info: ErrorInfo{
			Message: "User input is required.",
			Action:  "Provide the missing value with a flag or argument.",
		},
	},
	{
		err: ErrNonInteractiveMode,
		info: ErrorInfo{
			Message: "Confirmation is required but the terminal is not interactive.",
			Action:  "Re-run with --force.",
		},
	},
	{
		err: ErrOperationCanceled,
		info: ErrorInfo{
			Message: "Operation canceled.",
		},
	},
}

// errorInfoMap provides O(1) lookup for direct sentinel error matches.
//
//nolint:gochecknoglobals // Pre-built mapping for O(1) lookup performance
var errorInfoMap = buildErrorInfoMap()

// buildErrorInfoMap creates a map from the errorInfoEntries slice.
func buildErrorInfoMap() map[error]ErrorInfo {
	m := make(map[error]ErrorInfo, len(errorInfoEntries))
	for _, entry := range errorInfoEntries {
		m[entry.err] = entry.info
	}
	return m
}

// getErrorInfo looks up the ErrorInfo for a given error.
// It first tries O(1) direct map lookup for unwrapped sentinel errors,
// then falls back to errors.Is() traversal for wrapped errors.
// Returns an ErrorInfo with the original error message if not found.
func getErrorInfo(err error) ErrorInfo {
	if info, ok := errorInfoMap[err]; ok {
		return info
	}

	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}

	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for common errors.
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly error message along with a suggested
// action the user can take to resolve or work around the issue.
//
// For errors that have no clear action, the action string will be empty.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}

// FormatUserError renders the message and, when present, the action on a
// second line prefixed with an arrow.
func FormatUserError(err error) string {
	msg, action := Actionable(err)
	if action == "" {
		return msg
	}
	return msg + "\n  → " + action
}
