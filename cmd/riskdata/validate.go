package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/strataguard/riskdata/pipeline"
	"github.com/strataguard/riskdata/source/xlsx"
	"github.com/strataguard/riskdata/storage"
	"github.com/strataguard/riskdata/validate"
)

func validateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Run extraction and validation without writing to the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(flags)
			if err != nil {
				return err
			}

			orch := pipeline.NewOrchestrator(cfg, xlsx.NewReader(logger), storage.Discard, pipeline.NewMetrics(), logger)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			res, err := orch.Run(ctx)
			if err != nil {
				return err
			}

			fmt.Println(validate.RenderReport(res.EntityReports))
			for _, w := range res.Consistency.Warnings {
				fmt.Printf("warning: %s\n", w)
			}

			failed := 0
			for _, r := range res.EntityReports {
				if !r.Passed {
					failed++
				}
			}
			if failed > 0 {
				fmt.Printf("\n%d entity table(s) failed validation\n", failed)
			}
			return nil
		},
	}
}
