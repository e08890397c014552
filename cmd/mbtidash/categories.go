package main

import (
	"github.com/spf13/cobra"

	"mbtidash/internal/render"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the selectable options",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		vm, err := newViewModel()
		if err != nil {
			return err
		}
		return render.Categories(cmd.OutOrStdout(), vm.ListCategories())
	},
}
