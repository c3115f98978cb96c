package commands

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"olmcore/pkg/olm"
)

// wireMessage is how olmctl prints and reads Olm messages.
type wireMessage struct {
	Type olm.MessageType `json:"type"`
	Body string          `json:"body"`
}

// encryptCmd encrypts a message to a peer with the latest session.
func encryptCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "encrypt <peer-identity-key> <message>",
		Short:   "Encrypt a message to a peer device",
		Args:    cobra.ExactArgs(2),
		PreRunE: requirePassphrase,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := appCtx.Messages.EncryptMessage(passphrase, args[0], []byte(args[1]))
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(wireMessage{Type: msg.Type, Body: msg.Ciphertext})
		},
	}
}
