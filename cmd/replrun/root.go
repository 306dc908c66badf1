package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/anshulm/replrun/internal/config"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "replrun",
	Short: "Run a Replicate prediction and print its text",
	Long:  "replrun submits a prompt to a Replicate model version, polls the prediction until it finishes, and prints the extracted text.",
	// Default to `run` so `replrun --prompt ...` works without naming a
	// subcommand.
	RunE: runRun,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: REPLRUN_CONFIG env var or ./replrun.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	addRunFlags(rootCmd)
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > REPLRUN_CONFIG env var > "./replrun.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("REPLRUN_CONFIG"); env != "" {
			path = env
		} else {
			path = "replrun.yaml"
		}
	}
	return config.Load(path)
}

// setupLogger writes to stderr so the extracted text on stdout stays clean
// for piping.
func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}
