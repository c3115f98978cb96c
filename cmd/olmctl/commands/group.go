package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"olmcore/pkg/megolm"
)

func groupCmd() *cobra.Command {
	var v2 bool
	config := func() megolm.SessionConfig {
		if v2 {
			return megolm.SessionConfigV2()
		}
		return megolm.SessionConfigV1()
	}

	cmd := &cobra.Command{
		Use:   "group",
		Short: "Create and use Megolm group sessions",
	}
	cmd.PersistentFlags().BoolVar(&v2, "v2", false, "use full-length MACs")

	create := &cobra.Command{
		Use:     "create",
		Short:   "Create an outbound group session and print its session key",
		PreRunE: requirePassphrase,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := appCtx.Groups.CreateSession(passphrase, config())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "session: %s\nkey:     %s\n", c.SessionID, c.SessionKey)
			return nil
		},
	}

	key := &cobra.Command{
		Use:     "key <session-id>",
		Short:   "Print the current session key of an outbound session",
		Args:    cobra.ExactArgs(1),
		PreRunE: requirePassphrase,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, index, err := appCtx.Groups.SessionKey(passphrase, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "index: %d\nkey:   %s\n", index, k)
			return nil
		},
	}

	encrypt := &cobra.Command{
		Use:     "encrypt <session-id> <message>",
		Short:   "Encrypt a message for the group",
		Args:    cobra.ExactArgs(2),
		PreRunE: requirePassphrase,
		RunE: func(cmd *cobra.Command, args []string) error {
			ct, err := appCtx.Groups.Encrypt(passphrase, args[0], []byte(args[1]))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ct)
			return nil
		},
	}

	var exported bool
	imp := &cobra.Command{
		Use:     "import <session-key>",
		Short:   "Import a session key received from the sender",
		Args:    cobra.ExactArgs(1),
		PreRunE: requirePassphrase,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := appCtx.Groups.ImportSessionKey(passphrase, args[0], exported, config())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "session: %s\n", id)
			return nil
		},
	}
	imp.Flags().BoolVar(&exported, "exported", false, "the key is an unsigned exported key")

	decrypt := &cobra.Command{
		Use:     "decrypt <session-id> <ciphertext>",
		Short:   "Decrypt a group message",
		Args:    cobra.ExactArgs(2),
		PreRunE: requirePassphrase,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := appCtx.Groups.Decrypt(passphrase, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[%d] %s\n", m.MessageIndex, m.Plaintext)
			return nil
		},
	}

	export := &cobra.Command{
		Use:     "export <session-id> <index>",
		Short:   "Export an inbound session from a message index on",
		Args:    cobra.ExactArgs(2),
		PreRunE: requirePassphrase,
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.ParseUint(args[1], 10, 32)
			if err != nil {
				return fmt.Errorf("index: %w", err)
			}
			k, err := appCtx.Groups.Export(passphrase, args[0], uint32(index))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), k)
			return nil
		},
	}

	cmd.AddCommand(create, key, encrypt, imp, decrypt, export)
	return cmd
}
