package cmd

import (
	"github.com/spf13/cobra"
)

var exportSheet string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the workbook to other formats",
	Long: `Export the active workbook.

PDF export renders the whole workbook; CSV export writes one sheet.
Paths are resolved on the server.

Examples:
  calcctl export pdf /data/report.pdf
  calcctl export csv /data/report.csv --sheet Data`,
}

var exportPDFCmd = &cobra.Command{
	Use:   "pdf <path>",
	Short: "Export the workbook as PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		c, err := newClient()
		if err != nil {
			return err
		}
		result, err := c.ExportPDF(args[0])
		if err != nil {
			return err
		}
		return printStep(result)
	},
}

var exportCSVCmd = &cobra.Command{
	Use:   "csv <path>",
	Short: "Export one sheet as CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		c, err := newClient()
		if err != nil {
			return err
		}
		result, err := c.ExportCSV(args[0], exportSheet)
		if err != nil {
			return err
		}
		return printStep(result)
	},
}

func init() {
	exportCSVCmd.Flags().StringVar(&exportSheet, "sheet", "", "Sheet name (default: current sheet)")
	exportCmd.AddCommand(exportPDFCmd, exportCSVCmd)
	rootCmd.AddCommand(exportCmd)
}
