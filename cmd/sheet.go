package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sheetCmd = &cobra.Command{
	Use:   "sheet",
	Short: "Manage worksheets",
	Long: `Add, remove, and rename worksheets in the active workbook.

Examples:
  calcctl sheet add Data
  calcctl sheet add            # auto-named SheetN
  calcctl sheet rename Data Results
  calcctl sheet rm Results`,
}

var sheetAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a worksheet and make it current",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		result, err := c.AddSheet(name)
		if err != nil {
			return err
		}
		return printStep(result)
	},
}

var sheetRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Delete a worksheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		c, err := newClient()
		if err != nil {
			return err
		}
		result, err := c.DeleteSheet(args[0])
		if err != nil {
			return err
		}
		return printStep(result)
	},
}

var sheetRenameCmd = &cobra.Command{
	Use:   "rename <old> <new>",
	Short: "Rename a worksheet",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		c, err := newClient()
		if err != nil {
			return err
		}
		result, err := c.RenameSheet(args[0], args[1])
		if err != nil {
			return err
		}
		return printStep(result)
	},
}

var sheetLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List worksheets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		c, err := newClient()
		if err != nil {
			return err
		}
		// Every observation carries the sheet list; a single-cell read is
		// the cheapest non-mutating way to obtain one.
		result, err := c.GetCell("A1", "")
		if err != nil {
			return err
		}
		obs := result.Observation
		if !obs.Success {
			return printStep(result)
		}
		if jsonOutput {
			return jsonPrint(map[string]any{
				"current_sheet": obs.CurrentSheet,
				"sheet_names":   obs.SheetNames,
			})
		}
		for _, name := range obs.SheetNames {
			marker := " "
			if name == obs.CurrentSheet {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, name)
		}
		return nil
	},
}

func init() {
	sheetCmd.AddCommand(sheetAddCmd, sheetRmCmd, sheetRenameCmd, sheetLsCmd)
	rootCmd.AddCommand(sheetCmd)
}
