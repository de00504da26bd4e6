package errors

import "fmt"

// Wrap adds context to errors at package boundaries.
// It returns nil if err is nil, allowing for safe inline usage.
//
// The wrapped error preserves the original error chain, enabling
// errors.Is() checks to continue working:
//
//	if err := store.InsertSignature(ctx, rec); err != nil {
//	    return errors.Wrap(err, "failed to persist signature")
//	}
//
// Callers can still check for sentinel errors:
//
//	if errors.Is(err, errors.ErrRecordNotFound) {
//	    // nothing to verify
//	}
//
// IMPORTANT: Only wrap errors at package boundaries to avoid
// overly nested error messages.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf adds formatted context to errors at package boundaries.
// It returns nil if err is nil, allowing for safe inline usage.
//
//	return errors.Wrapf(err, "failed to load record %s", id)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", msg, err)
}

// Mark attaches a sentinel to an underlying cause so that errors.Is matches
// both. The sentinel's text leads the message.
//
//	return errors.Mark(errors.ErrSigning, err)
func Mark(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}
