package cmd

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newProductsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "Prints the stored products as a table",
		RunE:  runProductsCommand,
	}
}

func runProductsCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	store := appInstance.Store()
	products, err := store.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("load products from %s: %w", store.Location(), err)
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"#", "Title", "Price", "Image"})
	for i, p := range products {
		t.AppendRow(table.Row{i + 1, p.Title, strconv.FormatFloat(p.Price, 'f', -1, 64), p.ImageURL})
	}
	t.AppendFooter(table.Row{"", "Total", len(products), ""})
	t.Render()
	return nil
}
