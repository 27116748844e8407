package cmd

import (
	"github.com/spf13/cobra"

	"github.com/calcbridge/calcctl/env"
)

var cellSheet string

var cellCmd = &cobra.Command{
	Use:   "cell",
	Short: "Read, write, and format individual cells",
	Long: `Operate on single cells of the active workbook.

Values are typed: numbers and booleans are sent as such, "null" clears
the cell, anything else is a string.

Examples:
  calcctl cell set A1 42
  calcctl cell set B2 hello --sheet Data
  calcctl cell get A1
  calcctl cell format A1 --bold --color FF0000`,
}

var cellGetCmd = &cobra.Command{
	Use:   "get <cell>",
	Short: "Read a cell value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		c, err := newClient()
		if err != nil {
			return err
		}
		result, err := c.GetCell(args[0], cellSheet)
		if err != nil {
			return err
		}
		return printStep(result)
	},
}

var cellSetCmd = &cobra.Command{
	Use:   "set <cell> <value>",
	Short: "Write a cell value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		c, err := newClient()
		if err != nil {
			return err
		}
		result, err := c.SetCell(args[0], parseValue(args[1]), cellSheet)
		if err != nil {
			return err
		}
		return printStep(result)
	},
}

var (
	formatBold   bool
	formatItalic bool
	formatColor  string
)

var cellFormatCmd = &cobra.Command{
	Use:   "format <cell>",
	Short: "Apply formatting to a cell",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		c, err := newClient()
		if err != nil {
			return err
		}
		var options env.FormatOptions
		if cmd.Flags().Changed("bold") {
			options.Bold = &formatBold
		}
		if cmd.Flags().Changed("italic") {
			options.Italic = &formatItalic
		}
		options.Color = formatColor
		result, err := c.FormatCell(args[0], options, cellSheet)
		if err != nil {
			return err
		}
		return printStep(result)
	},
}

func init() {
	cellCmd.PersistentFlags().StringVar(&cellSheet, "sheet", "", "Sheet name (default: current sheet)")
	cellFormatCmd.Flags().BoolVar(&formatBold, "bold", false, "Bold text")
	cellFormatCmd.Flags().BoolVar(&formatItalic, "italic", false, "Italic text")
	cellFormatCmd.Flags().StringVar(&formatColor, "color", "", "Font color as RRGGBB hex")
	cellCmd.AddCommand(cellGetCmd, cellSetCmd, cellFormatCmd)
	rootCmd.AddCommand(cellCmd)
}
