package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/signet/internal/domain"
	"github.com/mrz1836/signet/internal/tui"
)

// displayTimeFormat is how timestamps appear in text output.
const displayTimeFormat = "2006-01-02 15:04:05 MST"

// Column widths for truncated table and field values.
const (
	textColumnWidth  = 48
	hashColumnWidth  = 16
	textFieldWidth   = 72
	originFieldWidth = 24
)

// newOutput returns the output for the command's stdout in the selected format.
func newOutput(cmd *cobra.Command, flags *GlobalFlags) tui.Output {
	return tui.NewOutput(cmd.OutOrStdout(), flags.Output)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(displayTimeFormat)
}

// verificationView is the JSON shape of a verification result. It carries
// the public parts of the record and never any key material.
type verificationView struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Valid     bool      `json:"valid"`
	Signatory string    `json:"signatory"`
	Algorithm string    `json:"algorithm"`
	Hash      string    `json:"hash"`
	Signature string    `json:"signature"`
	Text      string    `json:"text"`
	SignedAt  time.Time `json:"signed_at"`
	Count     int       `json:"count"`
	AttemptID string    `json:"attempt_id"`
}

func newVerificationView(v *domain.Verification) verificationView {
	rec := v.Record
	return verificationView{
		ID:        rec.ID,
		Status:    v.Status(),
		Valid:     v.Valid,
		Signatory: v.Signatory,
		Algorithm: rec.Algorithm.String(),
		Hash:      rec.Hash,
		Signature: rec.Signature,
		Text:      rec.Text,
		SignedAt:  rec.CreatedAt,
		Count:     v.Count,
		AttemptID: v.AttemptID,
	}
}

// renderVerification prints one verification in text form.
func renderVerification(w io.Writer, out tui.Output, v *domain.Verification) {
	_, _ = fmt.Fprintln(w, tui.RenderStatus(v.Status(), v.Valid))

	signatory := v.Signatory
	if signatory == "" {
		signatory = "(unknown identity " + v.Record.IdentityID + ")"
	}

	out.Field("Record", v.Record.ID)
	out.Field("Signatory", signatory)
	out.Field("Algorithm", v.Record.Algorithm.String())
	out.Field("Signed at", formatTime(v.Record.CreatedAt))
	out.Field("Text", tui.Truncate(tui.SingleLine(v.Record.Text), textFieldWidth))
	out.Field("Verified", pluralize(v.Count, "time", "times"))
}

// renderRecord prints a signature record in text form.
func renderRecord(out tui.Output, rec *domain.SignatureRecord, signer string) {
	out.Field("Record", rec.ID)
	out.Field("Signer", signer)
	out.Field("Algorithm", rec.Algorithm.String())
	out.Field("Hash", rec.Hash)
	out.Field("Signature", rec.Signature)
	out.Field("Signed at", formatTime(rec.CreatedAt))
}

func recordRows(recs []*domain.SignatureRecord) [][]string {
	rows := make([][]string, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, []string{
			rec.ID,
			formatTime(rec.CreatedAt),
			tui.Truncate(rec.Hash, hashColumnWidth),
			tui.Truncate(tui.SingleLine(rec.Text), textColumnWidth),
		})
	}
	return rows
}

func attemptRows(attempts []domain.VerificationAttempt) [][]string {
	rows := make([][]string, 0, len(attempts))
	for _, a := range attempts {
		status := domain.StatusInvalid
		if a.Valid {
			status = domain.StatusValid
		}
		rows = append(rows, []string{
			a.ID,
			formatTime(a.VerifiedAt),
			tui.StatusIcon(a.Valid) + " " + tui.StatusLabel(status),
			tui.Truncate(dash(a.Origin), originFieldWidth),
			dash(a.Agent),
		})
	}
	return rows
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return strconv.Itoa(n) + " " + many
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
