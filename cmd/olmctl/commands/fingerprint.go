package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func fingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "fingerprint",
		Short:   "Print the identity key fingerprint",
		PreRunE: requirePassphrase,
		RunE: func(cmd *cobra.Command, args []string) error {
			fp, err := appCtx.Accounts.Fingerprint(passphrase)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Fingerprint: %s\n", fp)
			return nil
		},
	}
}
