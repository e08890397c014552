package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mbtidash/internal/core"
	"mbtidash/internal/render"
)

var showCmd = &cobra.Command{
	Use:   "show [TYPE|all]",
	Short: "Print the table and chart for a selection",
	Long: `Print the score table and a text chart for one personality type,
or for all sixteen when TYPE is omitted or "all". Type codes are
case-insensitive.`,
	Example: `  mbtidash show
  mbtidash show INFP
  mbtidash show estj --no-color`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	sel := core.AllCategories
	if len(args) == 1 {
		sel = core.ParseSelection(args[0])
	}

	vm, err := newViewModel()
	if err != nil {
		return err
	}

	res, err := vm.Resolve(sel)
	if err != nil {
		if errors.Is(err, core.ErrInvalidSelection) {
			return &exitCodeError{code: ExitInvalidSelection, err: err}
		}
		return fmt.Errorf("resolve %s: %w", sel, err)
	}
	logger.Debug("View resolved", "selection", sel.String(), "chart", string(res.Chart.Kind()), "rows", len(res.Rows))

	return render.Text(cmd.OutOrStdout(), res)
}

func newViewModel() (*core.ViewModel, error) {
	ds, err := core.NewDataset()
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return core.NewViewModel(ds), nil
}
