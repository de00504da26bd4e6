package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrz1836/signet/internal/domain"
	"github.com/mrz1836/signet/internal/tui"
)

// AddIdentityCommand adds the identity command group to the root command.
func AddIdentityCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:     "identity",
		Aliases: []string{"id"},
		Short:   "Manage signing identities",
		Long: `Create and inspect the identities that sign text.

Each identity owns an RSA key pair generated when it is created. The private
key never leaves the data directory; only the public key is ever printed.`,
	}

	cmd.AddCommand(
		newIdentityCreateCmd(flags),
		newIdentityListCmd(flags),
		newIdentityShowCmd(flags),
	)
	root.AddCommand(cmd)
}

func newIdentityCreateCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create an identity with a fresh key pair",
		Example: `  signet identity create alice
  signet identity create "Build Server" --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openServices(cmd.Context())
			if err != nil {
				return err
			}

			ident, err := svc.notary.CreateIdentity(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := newOutput(cmd, flags)
			if flags.Output == OutputJSON {
				return out.JSON(ident)
			}
			out.Success("Created identity " + ident.Name)
			renderIdentity(out, ident)
			return nil
		},
	}
}

func newIdentityListCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List identities",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := openServices(cmd.Context())
			if err != nil {
				return err
			}

			idents, err := svc.notary.Identities(cmd.Context())
			if err != nil {
				return err
			}

			out := newOutput(cmd, flags)
			if flags.Output == OutputJSON {
				return out.JSON(idents)
			}
			if len(idents) == 0 {
				out.Info("No identities yet. Create one with 'signet identity create <name>'.")
				return nil
			}

			rows := make([][]string, 0, len(idents))
			for _, ident := range idents {
				rows = append(rows, []string{ident.ID, ident.Name, formatTime(ident.CreatedAt)})
			}
			out.Table([]string{"ID", "NAME", "CREATED"}, rows)
			return nil
		},
	}
}

func newIdentityShowCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id|name>",
		Short: "Show an identity and its public key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openServices(cmd.Context())
			if err != nil {
				return err
			}

			ident, err := svc.notary.Identity(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := newOutput(cmd, flags)
			if flags.Output == OutputJSON {
				return out.JSON(ident)
			}
			renderIdentity(out, ident)
			return nil
		},
	}
}

func renderIdentity(out tui.Output, ident *domain.Identity) {
	out.Field("ID", ident.ID)
	out.Field("Name", ident.Name)
	out.Field("Algorithm", ident.Algorithm.String())
	out.Field("Created", formatTime(ident.CreatedAt))
	out.Field("Public key", string(ident.PublicKey))
}
