package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/calcbridge/calcctl/client"
)

// ExitError signals a non-zero exit code without printing an error message.
type ExitError struct{ Code int }

func (e *ExitError) Error() string { return "" }

func jsonPrint(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printStep renders one step result. Failed observations exit with code 2
// so scripts can tell a rejected command from a transport error.
func printStep(result *client.StepResult) error {
	if jsonOutput {
		return jsonPrint(result)
	}

	obs := result.Observation
	if !obs.Success {
		fmt.Fprintln(os.Stderr, obs.Result)
		if obs.ErrorMessage != "" {
			fmt.Fprintf(os.Stderr, "  %s\n", obs.ErrorMessage)
		}
		return &ExitError{Code: 2}
	}

	fmt.Println(obs.Result)
	if obs.Data != nil {
		switch data := obs.Data.(type) {
		case string, float64, bool:
			fmt.Println(data)
		default:
			if err := jsonPrint(data); err != nil {
				return err
			}
		}
	}
	return nil
}
