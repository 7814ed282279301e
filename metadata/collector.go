// Package metadata records per-file provenance and per-run processing
// statistics.
package metadata

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/strataguard/riskdata/model"
)

// versionPatterns, in match order. The captured group is the numeric
// version with dots or underscores as separators.
var versionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)_v(\d+(?:[._]\d+)*)\.xlsx$`),
	regexp.MustCompile(`(?i)_version_(\d+(?:[._]\d+)*)\.xlsx$`),
	regexp.MustCompile(`(?i)v(\d+(?:[._]\d+)*)\.xlsx$`),
}

// Collector gathers file and run metadata.
type Collector struct {
	logger *slog.Logger
}

// NewCollector returns a metadata collector.
func NewCollector(logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{logger: logger}
}

// CollectFileMetadata records provenance for one source file. A missing
// file is not an error here: the record carries FileExists=false and the
// caller decides whether that is fatal.
func (c *Collector) CollectFileMetadata(path, dataType string) model.FileMetadata {
	md := model.FileMetadata{
		DataType: dataType,
		Filename: filepath.Base(path),
		Version:  "unknown",
	}
	if v, ok := VersionFromFilename(md.Filename); ok {
		md.Version = v
	}

	info, err := os.Stat(path)
	if err != nil {
		c.logger.Warn("source file not found for metadata", "path", path, "data_type", dataType)
		return md
	}
	md.FileExists = true
	md.FileSize = info.Size()
	md.ModifiedTime = info.ModTime()
	return md
}

// NewProcessingMetadata starts a run record with a fresh run ID. Counters
// are filled in by the orchestrator as steps complete.
func (c *Collector) NewProcessingMetadata(dataVersion string) model.ProcessingMetadata {
	return model.ProcessingMetadata{
		RunID:       uuid.NewString(),
		ProcessedAt: time.Now().UTC(),
		DataVersion: dataVersion,
		Status:      model.RunStatusCompleted,
	}
}

// VersionFromFilename parses a version string out of a workbook filename,
// e.g. "AI_Risk_Taxonomy_V6.1.xlsx" yields "v6.1". Underscore separators
// inside the version normalize to dots.
func VersionFromFilename(filename string) (string, bool) {
	for _, re := range versionPatterns {
		if m := re.FindStringSubmatch(filename); m != nil {
			return "v" + strings.ReplaceAll(m[1], "_", "."), true
		}
	}
	return "", false
}
