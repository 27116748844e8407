package cmd

import (
	"github.com/spf13/cobra"
)

var fileCmd = &cobra.Command{
	Use:   "file",
	Short: "Open and save workbook files",
	Long: `Load a workbook into the environment or save the current one.

Paths are resolved on the server, not the machine running calcctl.

Examples:
  calcctl file open /data/report.xlsx
  calcctl file save /data/report.xlsx
  calcctl file new`,
}

var fileOpenCmd = &cobra.Command{
	Use:   "open <path>",
	Short: "Open a workbook file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		c, err := newClient()
		if err != nil {
			return err
		}
		result, err := c.OpenFile(args[0])
		if err != nil {
			return err
		}
		return printStep(result)
	},
}

var fileSaveCmd = &cobra.Command{
	Use:   "save <path>",
	Short: "Save the workbook to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		c, err := newClient()
		if err != nil {
			return err
		}
		result, err := c.SaveFile(args[0])
		if err != nil {
			return err
		}
		return printStep(result)
	},
}

var fileNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Replace the workbook with a blank one",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		c, err := newClient()
		if err != nil {
			return err
		}
		result, err := c.CreateSheet()
		if err != nil {
			return err
		}
		return printStep(result)
	},
}

func init() {
	fileCmd.AddCommand(fileOpenCmd, fileSaveCmd, fileNewCmd)
	rootCmd.AddCommand(fileCmd)
}
