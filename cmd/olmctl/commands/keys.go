package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"olmcore/internal/domain"
)

func keysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Print the account's public identity keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := appCtx.Accounts.Profile()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "curve25519: %s\ned25519:    %s\n", profile.IdentityKey, profile.SigningKey)
			return nil
		},
	}
}

func printBundle(cmd *cobra.Command, b domain.KeyBundle) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(b)
}

func generateKeysCmd() *cobra.Command {
	var (
		count    int
		fallback bool
	)
	cmd := &cobra.Command{
		Use:     "generate-keys",
		Short:   "Generate one-time keys and optionally a new fallback key",
		PreRunE: requirePassphrase,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := appCtx.Prekeys.GenerateOneTimeKeys(passphrase, count, fallback)
			if err != nil {
				return err
			}
			return printBundle(cmd, b)
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 10, "number of one-time keys")
	cmd.Flags().BoolVar(&fallback, "fallback", false, "also rotate the fallback key")
	return cmd
}

func publishCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "publish",
		Short:   "Print the signed bundle of unpublished keys and mark them published",
		PreRunE: requirePassphrase,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := appCtx.Prekeys.Publish(passphrase)
			if err != nil {
				return err
			}
			return printBundle(cmd, b)
		},
	}
}

func signCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "sign <message>",
		Short:   "Sign a message with the account's Ed25519 key",
		Args:    cobra.ExactArgs(1),
		PreRunE: requirePassphrase,
		RunE: func(cmd *cobra.Command, args []string) error {
			sig, err := appCtx.Accounts.Sign(passphrase, []byte(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sig)
			return nil
		},
	}
}
