package cli

import (
	"github.com/spf13/cobra"
)

// AddHistoryCommand adds the history command to the root command.
func AddHistoryCommand(root *cobra.Command, flags *GlobalFlags) {
	var as string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the records an identity has signed",
		Long: `List the signature records created by an identity, newest first.`,
		Example: `  signet history --as alice
  signet history --as alice --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := openServices(cmd.Context())
			if err != nil {
				return err
			}

			recs, err := svc.notary.History(cmd.Context(), as)
			if err != nil {
				return err
			}

			out := newOutput(cmd, flags)
			if flags.Output == OutputJSON {
				return out.JSON(recs)
			}
			if len(recs) == 0 {
				out.Info("No signatures by " + as + " yet.")
				return nil
			}
			out.Table([]string{"RECORD", "SIGNED AT", "HASH", "TEXT"}, recordRows(recs))
			return nil
		},
	}

	cmd.Flags().StringVar(&as, "as", "", "identity id or name")
	_ = cmd.MarkFlagRequired("as")

	root.AddCommand(cmd)
}
