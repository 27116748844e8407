package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/calcbridge/calcctl/client"
	"github.com/calcbridge/calcctl/config"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	serverURL  string
	token      string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:           "calcctl",
	Short:         "Remote-control a spreadsheet environment",
	Version:       Version,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server-url", "", "Environment server URL (env: CALCCTL_SERVER_URL)")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Bearer token for the server (env: CALCCTL_TOKEN)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output raw JSON instead of human-formatted summaries")
}

func resolveServerURL() string {
	if serverURL != "" {
		return serverURL
	}
	if v := os.Getenv("CALCCTL_SERVER_URL"); v != "" {
		return v
	}
	if cfg, err := config.Load(); err == nil && cfg.ServerURL != "" {
		return cfg.ServerURL
	}
	return "http://localhost:8000"
}

func resolveToken() (string, error) {
	if token != "" {
		return token, nil
	}
	if v := os.Getenv("CALCCTL_TOKEN"); v != "" {
		return v, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("loading config: %w", err)
	}
	return cfg.Token, nil
}

func newClient() (*client.Client, error) {
	tok, err := resolveToken()
	if err != nil {
		return nil, err
	}
	return client.New(resolveServerURL(), tok), nil
}

func Execute() error {
	return rootCmd.Execute()
}
