package commands

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"olmcore/internal/app"
)

var (
	home       string
	passphrase string
	verbose    bool
	appCtx     *app.Wire
)

var errNoPassphrase = errors.New("passphrase required (-p)")

// Execute runs the CLI with os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds the olmctl command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "olmctl",
		Short:        "Manage an Olm device: account, keys, sessions and group sessions",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".olmctl")
			}
			w, err := app.NewWire(app.Config{Home: home, Verbose: verbose})
			if err != nil {
				return err
			}
			appCtx = w
			return nil
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "state dir (default ~/.olmctl)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the pickles")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug events to stderr")

	root.AddCommand(
		initCmd(),
		keysCmd(),
		fingerprintCmd(),
		generateKeysCmd(),
		publishCmd(),
		signCmd(),
		startSessionCmd(),
		encryptCmd(),
		decryptCmd(),
		groupCmd(),
	)
	return root
}

// requirePassphrase is a PreRunE for commands that unlock pickles.
func requirePassphrase(*cobra.Command, []string) error {
	if passphrase == "" {
		return errNoPassphrase
	}
	return nil
}
