package cli

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/msomdec/inventory/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
		// The file named by --config need not exist yet.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, "")
		},
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file holding the current settings",
		Long: `Writes the effective settings to --config, or to the default location.
A random auth.jwt_secret is generated when none is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			path := a.cfgFile
			if path == "" {
				p, err := config.DefaultPath()
				if err != nil {
					return err
				}
				path = p
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("check %s: %w", path, err)
			}

			cfg := a.cfg
			if cfg.Auth.JWTSecret == "" {
				secret := make([]byte, 32)
				if _, err := rand.Read(secret); err != nil {
					return fmt.Errorf("generate jwt secret: %w", err)
				}
				cfg.Auth.JWTSecret = hex.EncodeToString(secret)
			}

			if err := config.Write(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote config to %s.\n", path)
			return nil
		},
	}
	initCmd.Flags().Bool("force", false, "overwrite an existing file")

	cmd.AddCommand(initCmd)
	return cmd
}
