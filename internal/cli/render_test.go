package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/signet/internal/crypto"
	"github.com/mrz1836/signet/internal/domain"
	"github.com/mrz1836/signet/internal/tui"
)

func TestPluralize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1 time", pluralize(1, "time", "times"))
	assert.Equal(t, "0 times", pluralize(0, "time", "times"))
	assert.Equal(t, "12 times", pluralize(12, "time", "times"))
}

func TestFormatTime(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "-", formatTime(time.Time{}))
	assert.NotEqual(t, "-", formatTime(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))
}

func TestNewVerificationView(t *testing.T) {
	t.Parallel()

	rec := &domain.SignatureRecord{
		ID:         "rec-1",
		IdentityID: "id-1",
		Text:       "hello",
		Hash:       crypto.SHA256Hex([]byte("hello")),
		Signature:  "c2ln",
		Algorithm:  crypto.AlgorithmSHA256WithRSA,
	}
	view := newVerificationView(&domain.Verification{Record: rec, Signatory: "alice", Valid: false, Count: 4, AttemptID: "att-1"})

	assert.Equal(t, "rec-1", view.ID)
	assert.Equal(t, "invalid", view.Status)
	assert.False(t, view.Valid)
	assert.Equal(t, "SHA-256 with RSA", view.Algorithm)
	assert.Equal(t, 4, view.Count)
	assert.Equal(t, "att-1", view.AttemptID)
}

func TestRenderVerification_UnknownSignatory(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	rec := &domain.SignatureRecord{ID: "rec-1", IdentityID: "id-gone", Text: "line one\nline two", Algorithm: crypto.AlgorithmSHA256WithRSA}

	var buf bytes.Buffer
	out := tui.NewOutput(&buf, OutputText)
	renderVerification(&buf, out, &domain.Verification{Record: rec, Count: 1})

	got := buf.String()
	require.NotEmpty(t, got)
	assert.Contains(t, got, "Invalid")
	assert.Contains(t, got, "(unknown identity id-gone)")
	assert.Contains(t, got, "line one line two")
	assert.Contains(t, got, "1 time")
}

func TestAttemptRows(t *testing.T) {
	t.Parallel()

	rows := attemptRows([]domain.VerificationAttempt{
		{ID: "att-1", Valid: true},
		{ID: "att-2", Origin: "10.0.0.1", Agent: "curl"},
	})
	require.Len(t, rows, 2)
	assert.Equal(t, "-", rows[0][3])
	assert.Contains(t, rows[0][2], "Valid")
	assert.Contains(t, rows[1][2], "Invalid")
	assert.Equal(t, "curl", rows[1][4])
}
