package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/strataguard/riskdata/detect"
	"github.com/strataguard/riskdata/metadata"
	"github.com/strataguard/riskdata/model"
	"github.com/strataguard/riskdata/source"
	"github.com/strataguard/riskdata/source/xlsx"
)

// sourceEntities maps a source name to the entity type whose detection
// patterns apply to it. Definitions and capabilities use fixed columns
// and have no pattern set.
var sourceEntities = map[string]model.EntityType{
	"risks":     model.EntityTypeRisk,
	"controls":  model.EntityTypeControl,
	"questions": model.EntityTypeQuestion,
}

func inspectCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <source>",
		Short: "Show detected field mappings and file metadata for one source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(flags)
			if err != nil {
				return err
			}
			name := args[0]
			spec, err := cfg.Source(name)
			if err != nil {
				return err
			}

			path, err := source.Locate(cfg.DataDir, spec.File)
			if err != nil {
				return fmt.Errorf("locating %s workbook: %w", name, err)
			}

			md := metadata.NewCollector(logger).CollectFileMetadata(path, name)
			fmt.Printf("Source:   %s\n", name)
			fmt.Printf("File:     %s\n", md.Filename)
			fmt.Printf("Version:  %s\n", md.Version)
			fmt.Printf("Size:     %d bytes\n", md.FileSize)
			fmt.Printf("Modified: %s\n\n", md.ModifiedTime.Format("2006-01-02 15:04:05"))

			wb, err := xlsx.NewReader(logger).Load(path)
			if err != nil {
				return err
			}

			entityType, hasPatterns := sourceEntities[name]
			detector := detect.NewDetector()

			for _, sheet := range wb.Sheets {
				fmt.Printf("Sheet %q: %d rows, %d columns\n", sheet.Name, len(sheet.Rows), len(sheet.Columns))
				if sheet.Empty() {
					continue
				}
				if !hasPatterns {
					fmt.Printf("  columns: %v\n", sheet.Columns)
					continue
				}
				fields := detector.DetectFields(sheet, entityType)
				names := make([]string, 0, len(fields))
				for f := range fields {
					names = append(names, f)
				}
				sort.Strings(names)
				stats := detector.FieldStatistics(sheet, entityType)
				for _, f := range names {
					s := stats[f]
					fmt.Printf("  %-16s -> %-28s %d/%d non-empty\n", f, fields[f], s.NonEmpty, s.Total)
				}
			}
			return nil
		},
	}
}
