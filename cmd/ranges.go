package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var rangeSheet string

var rangeCmd = &cobra.Command{
	Use:   "range",
	Short: "Read and write rectangular cell ranges",
	Long: `Operate on ranges of the active workbook.

Set takes a JSON matrix (array of rows) anchored at the top-left of the
range. Get returns the values as a matrix.

Examples:
  calcctl range set A1:B2 '[[1,2],[3,4]]'
  calcctl range get A1:B2
  calcctl range get A1:C10 --sheet Data --json`,
}

var rangeGetCmd = &cobra.Command{
	Use:   "get <range>",
	Short: "Read a range of cells",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		c, err := newClient()
		if err != nil {
			return err
		}
		result, err := c.GetRange(args[0], rangeSheet)
		if err != nil {
			return err
		}
		return printStep(result)
	},
}

var rangeSetCmd = &cobra.Command{
	Use:   "set <range> <values-json>",
	Short: "Write a matrix of values into a range",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		var values [][]any
		if err := json.Unmarshal([]byte(args[1]), &values); err != nil {
			return fmt.Errorf("invalid values JSON: %w", err)
		}
		if len(values) == 0 {
			return fmt.Errorf("values matrix must not be empty")
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		result, err := c.SetRange(args[0], values, rangeSheet)
		if err != nil {
			return err
		}
		return printStep(result)
	},
}

func init() {
	rangeCmd.PersistentFlags().StringVar(&rangeSheet, "sheet", "", "Sheet name (default: current sheet)")
	rangeCmd.AddCommand(rangeGetCmd, rangeSetCmd)
	rootCmd.AddCommand(rangeCmd)
}
