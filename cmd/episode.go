package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/calcbridge/calcctl/client"
	"github.com/calcbridge/calcctl/env"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Start a fresh episode",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		c, err := newClient()
		if err != nil {
			return err
		}
		result, err := c.Reset()
		if err != nil {
			return err
		}
		if jsonOutput {
			return jsonPrint(result)
		}
		fmt.Println(result.Observation.Result)
		fmt.Printf("episode %s\n", result.State.EpisodeID)
		return nil
	},
}

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show the current episode and step count",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		c, err := newClient()
		if err != nil {
			return err
		}
		state, err := c.State()
		if err != nil {
			return err
		}
		if jsonOutput {
			return jsonPrint(state)
		}
		fmt.Printf("episode %s, %d step(s)\n", state.EpisodeID, state.StepCount)
		return nil
	},
}

var stepCmd = &cobra.Command{
	Use:   "step <command> [params-json]",
	Short: "Execute one raw action",
	Long: `Send an arbitrary action to the environment. The first argument is
the command name, the optional second argument is the JSON parameter
object.

Examples:
  calcctl step set_cell '{"cell":"A1","value":42}'
  calcctl step get_cell '{"cell":"A1"}'
  calcctl step add_sheet`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		action := env.Action{Command: args[0]}
		if len(args) == 2 {
			if !json.Valid([]byte(args[1])) {
				return fmt.Errorf("invalid params JSON")
			}
			action.Parameters = json.RawMessage(args[1])
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		result, err := c.Step(action)
		if err != nil {
			return err
		}
		return printStep(result)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream environment events until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		c, err := newClient()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		err = c.Watch(ctx, func(event client.Event) error {
			if jsonOutput {
				return jsonPrint(event)
			}
			switch event.Type {
			case "reset":
				fmt.Printf("reset  episode=%s\n", event.Metadata.EpisodeID)
			default:
				status := "ok"
				if !event.Observation.Success {
					status = "failed"
				}
				fmt.Printf("step %d  %s  %s: %s\n", event.Metadata.Step, event.Metadata.Command, status, event.Observation.Result)
			}
			return nil
		})
		if ctx.Err() != nil {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(resetCmd, stateCmd, stepCmd, watchCmd)
}
