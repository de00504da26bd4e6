package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/signet/internal/errors"
)

// SignFlags holds flags specific to the sign command.
type SignFlags struct {
	// As is the identity id or name to sign with.
	As string
	// File reads the text from a file, or stdin when "-".
	File string
}

// AddSignCommand adds the sign command to the root command.
func AddSignCommand(root *cobra.Command, flags *GlobalFlags) {
	root.AddCommand(newSignCmd(flags, &SignFlags{}))
}

func newSignCmd(flags *GlobalFlags, signFlags *SignFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign [text]",
		Short: "Sign text as an identity",
		Long: `Sign text on behalf of an identity and record the signature.

The text comes from the argument, from --file (use - for stdin), or, on an
interactive terminal, from a prompt. It is signed byte for byte; nothing is
trimmed or normalized.`,
		Example: `  signet sign --as alice "hello world"
  signet sign --as alice --file contract.txt
  echo -n "hello" | signet sign --as alice --file -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSign(cmd, flags, signFlags, args)
		},
	}

	cmd.Flags().StringVar(&signFlags.As, "as", "", "identity id or name to sign with")
	cmd.Flags().StringVarP(&signFlags.File, "file", "f", "", "read the text from a file (- for stdin)")
	_ = cmd.MarkFlagRequired("as")

	return cmd
}

func runSign(cmd *cobra.Command, flags *GlobalFlags, signFlags *SignFlags, args []string) error {
	ctx := cmd.Context()
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	text, err := readSignText(cmd.InOrStdin(), signFlags, args, cfg.Signing.MaxTextBytes)
	if err != nil {
		return err
	}

	svc, err := newServices(cfg, GetLogger())
	if err != nil {
		return err
	}

	rec, err := svc.notary.Sign(ctx, signFlags.As, text)
	if err != nil {
		return err
	}

	out := newOutput(cmd, flags)
	if flags.Output == OutputJSON {
		return out.JSON(rec)
	}

	signer := signFlags.As
	if ident, lookupErr := svc.notary.Identity(ctx, rec.IdentityID); lookupErr == nil {
		signer = ident.Name
	}
	out.Success("Signed " + pluralize(len(text), "byte", "bytes"))
	renderRecord(out, rec, signer)
	return nil
}

// readSignText picks the text source. An argument and --file together are
// a conflict; neither means prompting, which needs a terminal. Stdin and
// files are read at most limit+1 bytes deep.
func readSignText(stdin io.Reader, signFlags *SignFlags, args []string, limit int) (string, error) {
	switch {
	case len(args) == 1 && signFlags.File != "":
		return "", fmt.Errorf("%w: give the text as an argument or with --file, not both", errors.ErrConflictingFlags)
	case len(args) == 1:
		return args[0], nil
	case signFlags.File == "-":
		return readBounded(stdin, "stdin", limit)
	case signFlags.File != "":
		f, err := os.Open(signFlags.File)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", signFlags.File, err)
		}
		defer func() { _ = f.Close() }()
		return readBounded(f, signFlags.File, limit)
	case terminalCheck():
		return promptText("Text to sign")
	default:
		return "", errors.NewExitCode2Error(
			fmt.Errorf("%w: pass the text as an argument or with --file", errors.ErrUserInputRequired))
	}
}

// readBounded reads r fully, failing once more than limit bytes arrive.
func readBounded(r io.Reader, name string, limit int) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, int64(limit)+1))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	if len(data) > limit {
		return "", fmt.Errorf("%w: %s exceeds limit of %d bytes", errors.ErrTextTooLarge, name, limit)
	}
	return string(data), nil
}
