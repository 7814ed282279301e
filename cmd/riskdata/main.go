// Package main provides the riskdata binary entry point.
// Riskdata extracts a risk-management taxonomy from spreadsheet sources
// and produces a normalized relational dataset.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/strataguard/riskdata/config"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "riskdata"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	dataDir    string
	logLevel   string
}

func rootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Risk taxonomy extraction pipeline",
		Long: `Riskdata ingests multi-sheet spreadsheet sources describing a
risk-management taxonomy (risks, controls, interview questions,
capabilities, term definitions) and produces a normalized relational
dataset with stable cross-entity identifiers and mapping tables.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "Data directory override")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(processCmd(flags))
	cmd.AddCommand(validateCmd(flags))
	cmd.AddCommand(inspectCmd(flags))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

// setup loads configuration and builds the logger every subcommand shares.
func setup(flags *rootFlags) (*config.Config, *slog.Logger, error) {
	cfg, err := config.NewLoader(nil).Load(flags.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if flags.dataDir != "" {
		cfg.DataDir = flags.dataDir
	}
	if flags.logLevel != "" {
		cfg.Extraction.LogLevel = flags.logLevel
	}

	level := slog.LevelInfo
	switch strings.ToLower(cfg.Extraction.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	return cfg, logger, nil
}
