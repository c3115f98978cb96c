package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"olmcore/pkg/olm"
)

// decryptCmd decrypts a message printed by encrypt on the peer's side.
func decryptCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "decrypt <peer-identity-key> <message-json>",
		Short:   "Decrypt a message from a peer device",
		Args:    cobra.ExactArgs(2),
		PreRunE: requirePassphrase,
		RunE: func(cmd *cobra.Command, args []string) error {
			var m wireMessage
			if err := json.Unmarshal([]byte(args[1]), &m); err != nil {
				return fmt.Errorf("message: %w", err)
			}
			plain, err := appCtx.Messages.DecryptMessage(passphrase, args[0], olm.OlmMessage{Type: m.Type, Ciphertext: m.Body})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(plain))
			return nil
		},
	}
}
