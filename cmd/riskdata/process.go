package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/strataguard/riskdata/pipeline"
	"github.com/strataguard/riskdata/source/xlsx"
	"github.com/strataguard/riskdata/storage"
	"github.com/strataguard/riskdata/validate"
)

func processCmd(flags *rootFlags) *cobra.Command {
	var watch bool
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Run the full extraction pipeline and populate the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(flags)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			dbPath := filepath.Join(cfg.Output.Dir, cfg.Database.File)
			sink, err := storage.OpenSQLite(dbPath, logger)
			if err != nil {
				return err
			}
			defer sink.Close()

			orch := pipeline.NewOrchestrator(cfg, xlsx.NewReader(logger), sink, pipeline.NewMetrics(), logger)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runOnce := func(ctx context.Context) error {
				res, err := orch.Run(ctx)
				if err != nil {
					return err
				}
				if cfg.Output.PrintSummary {
					fmt.Println(validate.RenderReport(res.EntityReports))
					fmt.Printf("\nRun %s: %d records, %d mappings in %s\n",
						res.Metadata.RunID, res.Metadata.TotalRecords(),
						res.Metadata.TotalMappings(), res.Duration.Round(time.Millisecond))
				}
				return nil
			}

			if err := runOnce(ctx); err != nil {
				return err
			}

			if !watch {
				return nil
			}

			files := make([]string, 0, len(cfg.Sources))
			for _, spec := range cfg.Sources {
				files = append(files, spec.File)
			}
			watcher, err := pipeline.NewWatcher(cfg.DataDir, files, debounce, logger)
			if err != nil {
				return err
			}
			err = watcher.Run(ctx, func(ctx context.Context) {
				if err := runOnce(ctx); err != nil {
					logger.Error("rerun failed", "error", err)
				}
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Rerun when a source workbook changes")
	cmd.Flags().DurationVar(&debounce, "debounce", 0, "Watch debounce interval (default 500ms)")
	return cmd
}
