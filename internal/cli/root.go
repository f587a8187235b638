// Package cli wires the inventory command-line interface.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/msomdec/inventory/internal/config"
	"github.com/msomdec/inventory/internal/database"
	"github.com/msomdec/inventory/internal/repository/sqlite"
	"github.com/msomdec/inventory/internal/service"
	"github.com/spf13/cobra"
)

// app holds the state shared by every command of one invocation.
type app struct {
	cfgFile string
	cfg     config.Config
}

// Execute runs the inventory command with args and closes the shared
// database handle before returning.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	defer func() {
		if err := database.CloseDefault(); err != nil {
			slog.Error("close database", "error", err)
		}
	}()

	root := NewRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "inventory",
		Short:        "Track items, prices and stock levels",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, a.cfgFile)
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is <user config dir>/inventory/inventory.yaml)")
	root.PersistentFlags().String("db", "", "path to the SQLite database file")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		newServeCmd(a),
		newAddCmd(a),
		newListCmd(a),
		newGetCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newSellCmd(a),
		newRestockCmd(a),
		newWatchCmd(a),
		newHashPasswordCmd(a),
		newConfigCmd(a),
	)
	return root
}

// setup loads the configuration and installs the default logger.
func (a *app) setup(cmd *cobra.Command, file string) error {
	cfg, err := config.Load(file, cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg = cfg

	logOpts := &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}
	if cmd.Name() == "serve" {
		slog.SetDefault(slog.New(slog.NewMultiHandler(
			slog.NewTextHandler(os.Stdout, logOpts),
			slog.NewJSONHandler(os.Stderr, logOpts),
		)))
		return nil
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), logOpts)))
	return nil
}

// database returns the process-wide handle, opening it on first use.
func (a *app) database(ctx context.Context) (*sqlite.DB, error) {
	return database.GetDatabase(ctx, a.cfg.Database)
}

func (a *app) inventory(ctx context.Context) (*service.InventoryService, error) {
	db, err := a.database(ctx)
	if err != nil {
		return nil, err
	}
	return service.NewInventoryService(db.Items()), nil
}
