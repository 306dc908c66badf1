package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/anshulm/replrun/internal/config"
	"github.com/anshulm/replrun/internal/notifier"
	"github.com/anshulm/replrun/internal/replicate"
	"github.com/anshulm/replrun/internal/tui"
)

var (
	flagPrompt       string
	flagModelVersion string
	flagToken        string
	flagTimeout      string
	flagPollInterval string
	flagPlain        bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Submit a prompt and wait for the prediction result",
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addRunFlags(runCmd)
}

// addRunFlags registers the run flags on cmd. They are added to both the
// root command and `run` so the default invocation accepts them too; all
// registrations bind the same variables.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flagPrompt, "prompt", "p", "", "input prompt for the model")
	cmd.Flags().StringVarP(&flagModelVersion, "model-version", "m", "", "Replicate model version UUID")
	cmd.Flags().StringVar(&flagToken, "token", "", "Replicate API token (default: config, then "+config.TokenEnvVar+")")
	cmd.Flags().StringVar(&flagTimeout, "timeout", "", "overall wait budget in seconds (malformed values fall back to the default)")
	cmd.Flags().StringVar(&flagPollInterval, "poll-interval", "", "seconds between status polls (malformed values fall back to the default)")
	cmd.Flags().BoolVar(&flagPlain, "plain", false, "disable the live progress view")
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug).With("invocation", uuid.NewString())

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Flags override the config file; the token additionally falls back to
	// the environment.
	prompt := cfg.Prompt
	if cmd.Flags().Changed("prompt") {
		prompt = flagPrompt
	}
	version := cfg.ModelVersion
	if flagModelVersion != "" {
		version = flagModelVersion
	}
	token := flagToken
	if token == "" {
		token = cfg.API.Token
	}
	token = config.ResolveToken(token)

	timeout := cfg.Timeout
	if flagTimeout != "" {
		timeout = config.SecondsOrDefault(flagTimeout, cfg.Timeout)
	}
	pollInterval := cfg.PollInterval
	if flagPollInterval != "" {
		pollInterval = config.SecondsOrDefault(flagPollInterval, cfg.PollInterval)
	}

	logger.Debug("run configured",
		"base_url", cfg.API.BaseURL,
		"model_version", version,
		"timeout", timeout.String(),
		"poll_interval", pollInterval.String(),
	)

	httpClient := &http.Client{}
	client := replicate.New(cfg.API.BaseURL, token, cfg.RequestTimeout, httpClient, logger)
	job := replicate.Job{Version: version, Prompt: prompt}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var outcome replicate.Outcome
	if flagPlain {
		outcome = client.Run(ctx, job, timeout, pollInterval)
	} else {
		outcome, err = tui.Watch(ctx, func(ctx context.Context, onStatus func(string, time.Duration)) replicate.Outcome {
			client.OnStatus = onStatus
			return client.Run(ctx, job, timeout, pollInterval)
		})
		if err != nil {
			logger.Error("progress view failed, rerun with --plain", "error", err)
			os.Exit(1)
		}
	}

	notifyOutcome(cfg, httpClient, logger, outcome)

	fmt.Println(renderOutcome(outcome))
	if !outcome.OK() {
		os.Exit(1)
	}
	return nil
}

// notifyOutcome reports the finished run. Notification failures are logged,
// never fatal: the outcome on stdout is the source of truth.
func notifyOutcome(cfg *config.Config, httpClient *http.Client, logger *slog.Logger, outcome replicate.Outcome) {
	sinks := []notifier.Notifier{notifier.NewLogNotifier(logger)}
	if cfg.NotifyWebhook != "" {
		sinks = append(sinks, notifier.NewWebhookNotifier(cfg.NotifyWebhook, httpClient, logger))
	}
	for _, n := range sinks {
		if err := n.Notify(outcome); err != nil {
			logger.Warn("outcome notification failed", "error", err)
		}
	}
}
