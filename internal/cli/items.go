package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/msomdec/inventory/internal/domain"
	"github.com/msomdec/inventory/internal/view"
	"github.com/spf13/cobra"
)

var summaryStyle = lipgloss.NewStyle().Bold(true)

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> <price> <quantity>",
		Short: "Add an item",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			price, quantity, err := parsePriceQuantity(args[1], args[2])
			if err != nil {
				return err
			}
			inv, err := a.inventory(cmd.Context())
			if err != nil {
				return err
			}
			item, err := inv.AddItem(cmd.Context(), args[0], price, quantity)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added item %d (%s).\n", item.ID, item.Name)
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List items ordered by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := a.inventory(cmd.Context())
			if err != nil {
				return err
			}
			items, err := inv.ListItems(cmd.Context())
			if err != nil {
				return err
			}
			printItems(cmd.OutOrStdout(), items)
			return nil
		},
	}
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			inv, err := a.inventory(cmd.Context())
			if err != nil {
				return err
			}
			item, err := inv.GetItem(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("item %d: %w", id, err)
			}
			printItems(cmd.OutOrStdout(), []domain.Item{*item})
			return nil
		},
	}
}

func newUpdateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "update <id> <name> <price> <quantity>",
		Short: "Replace an item's fields",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			price, quantity, err := parsePriceQuantity(args[2], args[3])
			if err != nil {
				return err
			}
			inv, err := a.inventory(cmd.Context())
			if err != nil {
				return err
			}
			item, err := inv.UpdateItem(cmd.Context(), id, args[1], price, quantity)
			if err != nil {
				return fmt.Errorf("item %d: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated item %d (%s).\n", item.ID, item.Name)
			return nil
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			inv, err := a.inventory(cmd.Context())
			if err != nil {
				return err
			}
			if err := inv.DeleteItem(cmd.Context(), id); err != nil {
				return fmt.Errorf("item %d: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted item %d.\n", id)
			return nil
		},
	}
}

func newSellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sell <id>",
		Short: "Take one unit out of stock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			inv, err := a.inventory(cmd.Context())
			if err != nil {
				return err
			}
			item, err := inv.Sell(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("item %d: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sold one %s, %d left.\n", item.Name, item.Quantity)
			return nil
		},
	}
}

func newRestockCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "restock <id> <count>",
		Short: "Add units to stock",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			count, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid count %q: %w", args[1], err)
			}
			inv, err := a.inventory(cmd.Context())
			if err != nil {
				return err
			}
			item, err := inv.Restock(cmd.Context(), id, count)
			if err != nil {
				return fmt.Errorf("item %d: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restocked %s, %d in stock.\n", item.Name, item.Quantity)
			return nil
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid item id %q", s)
	}
	return id, nil
}

func parsePriceQuantity(priceArg, quantityArg string) (float64, int, error) {
	price, err := strconv.ParseFloat(priceArg, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid price %q: %w", priceArg, err)
	}
	quantity, err := strconv.Atoi(quantityArg)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid quantity %q: %w", quantityArg, err)
	}
	return price, quantity, nil
}

// printItems writes items as a table followed by their totals.
func printItems(w io.Writer, items []domain.Item) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No items found.")
		return
	}

	rows := make([][]string, len(items))
	var units int
	var total float64
	for i, it := range items {
		rows[i] = []string{
			strconv.FormatInt(it.ID, 10),
			it.Name,
			view.FormatPrice(it.Price),
			strconv.Itoa(it.Quantity),
			view.FormatPrice(it.Value()),
		}
		units += it.Quantity
		total += it.Value()
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "PRICE", "QTY", "VALUE").
		Rows(rows...)
	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, summaryStyle.Render(fmt.Sprintf("%d items, %d units, %s", len(items), units, view.FormatPrice(total))))
}
