package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"olmcore/pkg/olm"
)

// startSessionCmd creates an outbound session from a peer's published keys.
func startSessionCmd() *cobra.Command {
	var v2 bool
	cmd := &cobra.Command{
		Use:     "start-session <identity-key> <one-time-key>",
		Short:   "Start an Olm session with a peer device",
		Args:    cobra.ExactArgs(2),
		PreRunE: requirePassphrase,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := olm.SessionConfigV1()
			if v2 {
				config = olm.SessionConfigV2()
			}
			rec, err := appCtx.Sessions.InitiateSession(passphrase, args[0], args[1], config)
			if err != nil {
				return fmt.Errorf("starting session with %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session %s created with %s\n", rec.ID, rec.Peer)
			return nil
		},
	}
	cmd.Flags().BoolVar(&v2, "v2", false, "use full-length MACs")
	return cmd
}
