package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/msomdec/inventory/internal/domain"
	"github.com/spf13/cobra"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [id]",
		Short: "Print the inventory, or one item, every time it changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			inv, err := a.inventory(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				q := inv.WatchAll(ctx)
				defer q.Close()
				for items := range q.C() {
					printItems(out, items)
				}
				return watchEnded(q.Err())
			}

			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			q := inv.Watch(ctx, id)
			defer q.Close()
			for item := range q.C() {
				if item == nil {
					fmt.Fprintf(out, "Item %d not found.\n", id)
					continue
				}
				printItems(out, []domain.Item{*item})
			}
			return watchEnded(q.Err())
		},
	}
}

// watchEnded treats an interrupt as a clean exit.
func watchEnded(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
