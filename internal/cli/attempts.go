package cli

import (
	"github.com/spf13/cobra"
)

// AddAttemptsCommand adds the attempts command to the root command.
func AddAttemptsCommand(root *cobra.Command, flags *GlobalFlags) {
	root.AddCommand(&cobra.Command{
		Use:   "attempts <record-id>",
		Short: "Show the verification audit trail for a record",
		Long: `Show every recorded verification attempt for a signature record,
newest first. Listing attempts does not count as a verification.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openServices(cmd.Context())
			if err != nil {
				return err
			}

			attempts, err := svc.notary.Attempts(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := newOutput(cmd, flags)
			if flags.Output == OutputJSON {
				return out.JSON(attempts)
			}
			if len(attempts) == 0 {
				out.Info("Record " + args[0] + " has never been verified.")
				return nil
			}
			out.Table([]string{"ATTEMPT", "VERIFIED AT", "RESULT", "ORIGIN", "AGENT"}, attemptRows(attempts))
			out.Info(pluralize(len(attempts), "attempt", "attempts"))
			return nil
		},
	})
}
