// Command issvm trains and evaluates binary kernel SVM classifiers and
// produces sparse approximations of a pre-trained dense classifier.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/issvm/internal/config"
)

var (
	cfgFile   string
	activeCfg config.Config
)

// NewRootCmd builds the issvm command tree: one subcommand per verb,
// shared flags registered on the root and resolved through
// internal/config (flags > env > config file > defaults).
func NewRootCmd() *cobra.Command {
	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:           "issvm",
		Short:         "Sparse kernel support-vector classifier trainer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(config.LoadOptions{
				Flags:      cmd.Flags(),
				ConfigFile: cfgFile,
				Defaults:   defaults,
			})
			if err != nil {
				return err
			}
			activeCfg = loaded
			setupLogger(loaded.LogLevel)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Optional config file (yaml)")
	config.RegisterFlags(cmd.PersistentFlags(), defaults)

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newOptimizeCmd())
	cmd.AddCommand(newEvaluateCmd())
	cmd.AddCommand(newRecalculateCmd())
	cmd.AddCommand(newWriteSupportCmd())

	return cmd
}

// setupLogger configures the process-wide slog default logger.
func setupLogger(levelStr string) {
	var lvl slog.Level
	switch strings.ToLower(levelStr) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(h))
}

// openOut creates path (or returns stdout for "-").
func openOut(path string) (*os.File, func() error, error) {
	if path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, f.Close, nil
}
