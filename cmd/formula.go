package cmd

import (
	"github.com/spf13/cobra"
)

var formulaSheet string

var formulaCmd = &cobra.Command{
	Use:   "formula",
	Short: "Read and write cell formulas",
	Long: `Operate on formulas of the active workbook.

Set stores the formula; get returns it with a leading "=". Reading the
cell itself (calcctl cell get) returns the computed value instead.

Examples:
  calcctl formula set B1 "=A1*2"
  calcctl formula get B1`,
}

var formulaGetCmd = &cobra.Command{
	Use:   "get <cell>",
	Short: "Read a cell formula",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		c, err := newClient()
		if err != nil {
			return err
		}
		result, err := c.GetFormula(args[0], formulaSheet)
		if err != nil {
			return err
		}
		return printStep(result)
	},
}

var formulaSetCmd = &cobra.Command{
	Use:   "set <cell> <formula>",
	Short: "Write a cell formula",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		c, err := newClient()
		if err != nil {
			return err
		}
		result, err := c.SetFormula(args[0], args[1], formulaSheet)
		if err != nil {
			return err
		}
		return printStep(result)
	},
}

func init() {
	formulaCmd.PersistentFlags().StringVar(&formulaSheet, "sheet", "", "Sheet name (default: current sheet)")
	formulaCmd.AddCommand(formulaGetCmd, formulaSetCmd)
	rootCmd.AddCommand(formulaCmd)
}
