package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	signeterrors "github.com/mrz1836/signet/internal/errors"
)

// testError is a custom error type used to test default branches
// in UserMessage and Actionable without matching any sentinel.
type testError struct {
	msg string
}

func (e testError) Error() string {
	return e.msg
}

func TestSentinelErrors_Messages(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"ErrKeyGeneration", signeterrors.ErrKeyGeneration, "key generation failed"},
		{"ErrSigning", signeterrors.ErrSigning, "signing failed"},
		{"ErrRecordNotFound", signeterrors.ErrRecordNotFound, "signature record not found"},
		{"ErrIdentityUnresolved", signeterrors.ErrIdentityUnresolved, "identity could not be resolved"},
		{"ErrLockTimedOut", signeterrors.ErrLockTimedOut, "lock acquisition timed out"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.err.Error())
		})
	}
}

func TestWrap(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		require.NoError(t, signeterrors.Wrap(nil, "context"))
		require.NoError(t, signeterrors.Wrapf(nil, "context %d", 1))
	})

	t.Run("preserves sentinel chain", func(t *testing.T) {
		err := signeterrors.Wrap(signeterrors.ErrRecordNotFound, "failed to find record")
		require.ErrorIs(t, err, signeterrors.ErrRecordNotFound)
		assert.Equal(t, "failed to find record: signature record not found", err.Error())
	})

	t.Run("formats context", func(t *testing.T) {
		err := signeterrors.Wrapf(signeterrors.ErrIdentityNotFound, "lookup %s", "alice")
		require.ErrorIs(t, err, signeterrors.ErrIdentityNotFound)
		assert.Equal(t, "lookup alice: identity not found", err.Error())
	})
}

func TestMark(t *testing.T) {
	cause := testError{msg: "crypto/rsa: verification error"}

	err := signeterrors.Mark(signeterrors.ErrSigning, cause)
	require.ErrorIs(t, err, signeterrors.ErrSigning)
	require.ErrorIs(t, err, cause)
	assert.Equal(t, "signing failed: crypto/rsa: verification error", err.Error())

	assert.Equal(t, signeterrors.ErrSigning, signeterrors.Mark(signeterrors.ErrSigning, nil))
}

func TestUserMessage(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		assert.Empty(t, signeterrors.UserMessage(nil))
	})

	t.Run("wrapped sentinel maps to friendly text", func(t *testing.T) {
		err := fmt.Errorf("verify by id: %w", signeterrors.ErrRecordNotFound)
		assert.Equal(t,
			"No signature record matches the given id or text and signature.",
			signeterrors.UserMessage(err))
	})

	t.Run("unknown error falls back to its own message", func(t *testing.T) {
		assert.Equal(t, "boom", signeterrors.UserMessage(testError{msg: "boom"}))
	})
}

func TestActionable(t *testing.T) {
	msg, action := signeterrors.Actionable(signeterrors.ErrTextTooLarge)
	assert.Equal(t, "The text is larger than the configured limit.", msg)
	assert.Contains(t, action, "signing.max_text_bytes")

	msg, action = signeterrors.Actionable(signeterrors.ErrRecordExists)
	assert.NotEmpty(t, msg)
	assert.Empty(t, action)

	msg, action = signeterrors.Actionable(nil)
	assert.Empty(t, msg)
	assert.Empty(t, action)
}

func TestFormatUserError(t *testing.T) {
	out := signeterrors.FormatUserError(signeterrors.ErrIdentityNotFound)
	assert.Equal(t, "Identity not found.\n  → Run 'signet identity list' to see available identities.", out)

	assert.Equal(t, "plain", signeterrors.FormatUserError(testError{msg: "plain"}))
}

func TestExitCode2Error(t *testing.T) {
	base := signeterrors.ErrInvalidArgument
	wrapped := signeterrors.NewExitCode2Error(base)

	assert.Equal(t, base.Error(), wrapped.Error())
	require.ErrorIs(t, wrapped, base)
	assert.True(t, signeterrors.IsExitCode2Error(fmt.Errorf("outer: %w", wrapped)))
	assert.False(t, signeterrors.IsExitCode2Error(base))
}
