// Command predictcr is a command-line client for the predicTCR service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/predictcr/internal/config"
)

var (
	apiURLFlag string
	verbose    bool

	// app is built by rootCmd's PersistentPreRunE before any subcommand runs.
	app *App
)

var rootCmd = &cobra.Command{
	Use:   "predictcr",
	Short: "Command-line client for the predicTCR service",
	Long: `Command-line client for the predicTCR service.

Configuration is read from PREDICTCR_* environment variables. Set
PREDICTCR_SECRET_KEY (64 hex characters) to keep the login session between
runs.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if apiURLFlag != "" {
			cfg.APIURL = apiURLFlag
		}
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
		slog.SetDefault(logger)

		app, err = NewApp(cmd.Context(), cfg, logger)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "backend base URL (overrides PREDICTCR_API_URL)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every request")
}

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := execute(ctx, rootCmd)
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "interrupted")
		return nil
	}
	return err
}

// execute runs cmd and releases the app afterwards. Cobra skips post-run
// hooks when a command fails, so the close happens here.
func execute(ctx context.Context, cmd *cobra.Command) error {
	err := cmd.ExecuteContext(ctx)
	if app != nil {
		app.Close()
	}
	return err
}
