package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/signet/internal/domain"
	"github.com/mrz1836/signet/internal/errors"
	"github.com/mrz1836/signet/internal/notary"
)

// VerifyFlags holds flags specific to the verify command.
type VerifyFlags struct {
	// Text is the text to look up together with Signature.
	Text string
	// Signature is the base64 signature to look up together with Text.
	Signature string
	// Origin identifies where the verification request came from.
	Origin string
	// Agent describes the client performing the verification.
	Agent string
}

// AddVerifyCommand adds the verify command to the root command.
func AddVerifyCommand(root *cobra.Command, flags *GlobalFlags, info BuildInfo) {
	root.AddCommand(newVerifyCmd(flags, &VerifyFlags{}, info))
}

func newVerifyCmd(flags *GlobalFlags, verifyFlags *VerifyFlags, info BuildInfo) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [record-id...]",
		Short: "Verify signatures and record the attempt",
		Long: `Verify one or more signature records.

Look records up by id, or by the signed text together with its signature.
Every verification is recorded with its origin and agent, and the result
reports how many times the record has been verified so far.

The command exits 1 when any signature is invalid or any record is missing.`,
		Example: `  signet verify 0b5c7a1e-4a43-4c2b-9f33-5b1d8a3c2e10
  signet verify --text "hello world" --signature "MEUCIQ..."
  signet verify id1 id2 id3 --output json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, flags, verifyFlags, args)
		},
	}

	agent := "signet/" + withBuildDefaults(info).Version
	cmd.Flags().StringVar(&verifyFlags.Text, "text", "", "signed text to look up")
	cmd.Flags().StringVar(&verifyFlags.Signature, "signature", "", "base64 signature to look up")
	cmd.Flags().StringVar(&verifyFlags.Origin, "origin", defaultOrigin(), "origin recorded with the attempt")
	cmd.Flags().StringVar(&verifyFlags.Agent, "agent", agent, "agent recorded with the attempt")
	cmd.MarkFlagsRequiredTogether("text", "signature")

	return cmd
}

// defaultOrigin is the local hostname, or empty when it cannot be read.
func defaultOrigin() string {
	host, err := os.Hostname()
	if err != nil {
		return ""
	}
	return host
}

func runVerify(cmd *cobra.Command, flags *GlobalFlags, verifyFlags *VerifyFlags, args []string) error {
	ctx := cmd.Context()
	byText := cmd.Flags().Changed("text")

	switch {
	case byText && len(args) > 0:
		return fmt.Errorf("%w: give record ids or --text/--signature, not both", errors.ErrConflictingFlags)
	case !byText && len(args) == 0:
		return errors.NewExitCode2Error(
			fmt.Errorf("%w: pass a record id or --text with --signature", errors.ErrUserInputRequired))
	}

	svc, err := openServices(ctx)
	if err != nil {
		return err
	}

	origin := domain.Origin{Address: verifyFlags.Origin, Agent: verifyFlags.Agent}

	if byText || len(args) == 1 {
		var v *domain.Verification
		if byText {
			v, err = svc.notary.VerifyByText(ctx, verifyFlags.Text, verifyFlags.Signature, origin)
		} else {
			v, err = svc.notary.VerifyByID(ctx, args[0], origin)
		}
		if err != nil {
			return err
		}
		return reportVerification(cmd, flags, v)
	}

	results, err := svc.notary.VerifyMany(ctx, args, origin)
	if err != nil {
		return err
	}
	return reportBatch(cmd, flags, results)
}

func reportVerification(cmd *cobra.Command, flags *GlobalFlags, v *domain.Verification) error {
	out := newOutput(cmd, flags)
	if flags.Output == OutputJSON {
		if err := out.JSON(newVerificationView(v)); err != nil {
			return err
		}
	} else {
		renderVerification(cmd.OutOrStdout(), out, v)
	}

	if !v.Valid {
		return errors.ErrSignatureInvalid
	}
	return nil
}

// batchView is the JSON shape of one VerifyMany result.
type batchView struct {
	ID           string            `json:"id"`
	Verification *verificationView `json:"verification,omitempty"`
	Error        string            `json:"error,omitempty"`
}

func reportBatch(cmd *cobra.Command, flags *GlobalFlags, results []notary.BatchResult) error {
	out := newOutput(cmd, flags)
	failed := 0

	views := make([]batchView, 0, len(results))
	for i, res := range results {
		view := batchView{ID: res.ID}
		switch {
		case res.Err != nil:
			failed++
			view.Error = errors.UserMessage(res.Err)
		default:
			vv := newVerificationView(res.Verification)
			view.Verification = &vv
			if !res.Verification.Valid {
				failed++
			}
		}
		views = append(views, view)

		if flags.Output == OutputJSON {
			continue
		}
		if i > 0 {
			_, _ = fmt.Fprintln(cmd.OutOrStdout())
		}
		if res.Err != nil {
			out.Warning(res.ID + ": " + errors.UserMessage(res.Err))
			continue
		}
		renderVerification(cmd.OutOrStdout(), out, res.Verification)
	}

	if flags.Output == OutputJSON {
		if err := out.JSON(views); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d failed", errors.ErrSignatureInvalid, failed, len(results))
	}
	return nil
}
