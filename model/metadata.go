package model

import "time"

// RunStatus is the terminal status of one processing run.
type RunStatus string

const (
	RunStatusCompleted RunStatus = "completed"
	RunStatusError     RunStatus = "error"
)

// FileMetadata records provenance for one source file in one run.
type FileMetadata struct {
	DataType     string
	Filename     string
	FileExists   bool
	FileSize     int64
	ModifiedTime time.Time
	Version      string
}

// ProcessingMetadata records per-run counters and the run outcome.
type ProcessingMetadata struct {
	RunID                     string
	ProcessedAt               time.Time
	DataVersion               string
	TotalRisks                int
	TotalControls             int
	TotalQuestions            int
	TotalDefinitions          int
	TotalCapabilities         int
	RiskControlMappings       int
	QuestionRiskMappings      int
	QuestionControlMappings   int
	CapabilityControlMappings int
	Status                    RunStatus
}

// TotalRecords is the sum of all entity counters.
func (p ProcessingMetadata) TotalRecords() int {
	return p.TotalRisks + p.TotalControls + p.TotalQuestions +
		p.TotalDefinitions + p.TotalCapabilities
}

// TotalMappings is the sum of all relationship counters.
func (p ProcessingMetadata) TotalMappings() int {
	return p.RiskControlMappings + p.QuestionRiskMappings +
		p.QuestionControlMappings + p.CapabilityControlMappings
}
