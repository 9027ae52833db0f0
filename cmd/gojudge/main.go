package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/datar-psa/gojudge/config"
	"github.com/datar-psa/gojudge/judgment"
)

var (
	version = "dev"
	commit  = "none"
)

// Exit codes
const (
	exitError            = 1
	exitExtractionFailed = 2
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if errors.Is(err, judgment.ErrExtractionFailed) {
			os.Exit(exitExtractionFailed)
		}
		os.Exit(exitError)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gojudge",
		Short: "gojudge - LLM-as-a-judge assessment toolkit",
		Long: `gojudge asks a judge model Pass/Fail assessment questions about a
student response, extracts the verdict and confidence from whatever the model
answers, and maps them onto a configurable score table.

Run 'gojudge evaluate --help' to judge a response.
Run 'gojudge extract --help' to parse a saved judge answer offline.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file path")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error); overrides config")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text, json); overrides config")

	rootCmd.AddCommand(
		extractCmd(),
		evaluateCmd(),
		tableCmd(),
		versionCmd(),
	)

	return rootCmd
}

// loadConfig reads the --config file when one is given. requireJudge reports
// whether a missing judge name is fatal; offline commands only need scoring.
func loadConfig(cmd *cobra.Command, requireJudge bool) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" && !requireJudge {
		cfg := &config.Config{Log: config.LogConfig{Level: "info", Format: "text"}}
		return cfg, nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	level, format := cfg.Log.Level, cfg.Log.Format
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		level = v
	}
	if v, _ := cmd.Flags().GetString("log-format"); v != "" {
		format = v
	}
	return buildLogger(cmd.ErrOrStderr(), level, format)
}

func buildLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q (must be text or json)", format)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gojudge %s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", commit)
		},
	}
}
