package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/calcbridge/calcctl/bridge/engine"
	"github.com/calcbridge/calcctl/env"
	"github.com/calcbridge/calcctl/server"
)

var (
	serveAddr      string
	serveTrace     string
	serveSoffice   string
	serveBaseFile  string
	serveGoalFile  string
	serveVerbose   bool
	servePDFWindow time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the environment server",
	Long: `Host a spreadsheet environment over HTTP.

The server owns one workbook at a time. Steps are executed in arrival
order; the event stream broadcasts every step and reset to connected
watchers.

Examples:
  calcctl serve
  calcctl serve --addr :9000 --trace /var/lib/calcctl/trace.db
  calcctl serve --base-file template.xlsx --goal-file out.xlsx`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8000", "Listen address")
	serveCmd.Flags().StringVar(&serveTrace, "trace", "", "Path to a SQLite trace journal (disabled when empty)")
	serveCmd.Flags().StringVar(&serveSoffice, "soffice", "", "Path to the soffice binary for PDF export (default: $PATH lookup)")
	serveCmd.Flags().StringVar(&serveBaseFile, "base-file", "", "Workbook loaded on every reset")
	serveCmd.Flags().StringVar(&serveGoalFile, "goal-file", "", "Workbook path saved on shutdown")
	serveCmd.Flags().BoolVar(&serveVerbose, "verbose", false, "Log at debug level")
	serveCmd.Flags().DurationVar(&servePDFWindow, "convert-timeout", 60*time.Second, "Timeout for PDF conversion")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	level := slog.LevelInfo
	if serveVerbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	engineOpts := []engine.Option{engine.WithConvertTimeout(servePDFWindow)}
	if serveSoffice != "" {
		engineOpts = append(engineOpts, engine.WithSofficePath(serveSoffice))
	}
	eng := engine.New(engineOpts...)

	envOpts := []env.Option{}
	if serveBaseFile != "" {
		envOpts = append(envOpts, env.WithBaseFile(serveBaseFile))
	}
	if serveGoalFile != "" {
		envOpts = append(envOpts, env.WithGoalFile(serveGoalFile))
	}
	environment := env.New(eng, envOpts...)

	serverOpts := []server.Option{server.WithLogger(logger)}
	tok, err := resolveToken()
	if err != nil {
		return err
	}
	if tok != "" {
		serverOpts = append(serverOpts, server.WithToken(tok))
	}
	if serveTrace != "" {
		trace, err := server.OpenTrace(serveTrace)
		if err != nil {
			return fmt.Errorf("opening trace journal: %w", err)
		}
		serverOpts = append(serverOpts, server.WithTrace(trace))
	}

	srv := server.New(environment, serverOpts...)
	defer srv.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.ListenAndServe(ctx, serveAddr); err != nil && err != http.ErrServerClosed {
		return err
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if obs := environment.Close(closeCtx); !obs.Success {
		logger.Error("closing environment", "error", obs.ErrorMessage)
	}
	return nil
}
