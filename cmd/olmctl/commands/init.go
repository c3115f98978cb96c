package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"olmcore/internal/domain"
)

func initCmd() *cobra.Command {
	var libolmFile, libolmKey string
	cmd := &cobra.Command{
		Use:     "init",
		Short:   "Create an account, or import one pickled by libolm",
		PreRunE: requirePassphrase,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				profile domain.Profile
				err     error
			)
			if libolmFile != "" {
				b, rerr := os.ReadFile(libolmFile)
				if rerr != nil {
					return rerr
				}
				profile, err = appCtx.Accounts.ImportLibolm(passphrase, strings.TrimSpace(string(b)), []byte(libolmKey))
			} else {
				profile, err = appCtx.Accounts.CreateAccount(passphrase)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account created.\nFingerprint: %s\n", profile.Fingerprint)
			return nil
		},
	}
	cmd.Flags().StringVar(&libolmFile, "import-libolm", "", "file holding a libolm account pickle")
	cmd.Flags().StringVar(&libolmKey, "libolm-key", "", "key the libolm pickle was made with")
	cmd.MarkFlagsRequiredTogether("import-libolm", "libolm-key")
	return cmd
}
