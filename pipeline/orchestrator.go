// Package pipeline sequences extraction, mapping, validation, and sink
// population for one processing run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/strataguard/riskdata/config"
	"github.com/strataguard/riskdata/extract"
	"github.com/strataguard/riskdata/metadata"
	"github.com/strataguard/riskdata/model"
	"github.com/strataguard/riskdata/normalize"
	"github.com/strataguard/riskdata/source"
	"github.com/strataguard/riskdata/storage"
	"github.com/strataguard/riskdata/validate"
)

// State is the orchestrator's position in a run. Transitions are strictly
// sequential; Error is terminal and reachable from any step.
type State string

const (
	StateIdle       State = "idle"
	StateExtracting State = "extracting"
	StateMapping    State = "mapping"
	StateValidating State = "validating"
	StatePopulating State = "populating"
	StateCompleted  State = "completed"
	StateError      State = "error"
)

// Result summarizes one completed run.
type Result struct {
	Metadata      model.ProcessingMetadata
	FileMetadata  []model.FileMetadata
	EntityReports []*validate.EntityReport
	Consistency   *validate.ConsistencyReport
	Duration      time.Duration
}

// Orchestrator owns the lifetime of all in-memory tables for one run.
// Extractors and the mapping extractor never write to the sink directly.
type Orchestrator struct {
	cfg       *config.Config
	src       source.Source
	sink      storage.Sink
	collector *metadata.Collector
	validator *validate.Validator
	metrics   *Metrics
	logger    *slog.Logger

	state State
}

// NewOrchestrator wires a pipeline against a source and sink.
func NewOrchestrator(cfg *config.Config, src source.Source, sink storage.Sink, metrics *Metrics, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Orchestrator{
		cfg:       cfg,
		src:       src,
		sink:      sink,
		collector: metadata.NewCollector(logger),
		validator: validate.NewValidator(logger),
		metrics:   metrics,
		logger:    logger,
		state:     StateIdle,
	}
}

// State returns the orchestrator's current state.
func (o *Orchestrator) State() State {
	return o.state
}

// Run executes one full pipeline pass: extract every configured source,
// derive mappings, validate, then replace the sink tables. A structural
// failure aborts the remaining steps and leaves the orchestrator in the
// error state; no partially-extracted table reaches the sink.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	res, err := o.run(ctx)
	duration := time.Since(start)
	o.metrics.runDuration.Observe(duration.Seconds())

	if err != nil {
		o.state = StateError
		o.metrics.runsTotal.WithLabelValues(string(model.RunStatusError)).Inc()
		o.logger.Error("pipeline run failed", "error", err, "duration", duration)
		return nil, err
	}

	o.state = StateCompleted
	o.metrics.runsTotal.WithLabelValues(string(model.RunStatusCompleted)).Inc()
	res.Duration = duration
	o.logger.Info("pipeline run completed",
		"run_id", res.Metadata.RunID,
		"records", res.Metadata.TotalRecords(),
		"mappings", res.Metadata.TotalMappings(),
		"duration", duration)
	return res, nil
}

func (o *Orchestrator) run(ctx context.Context) (*Result, error) {
	o.state = StateExtracting
	ext, err := o.extractAll(ctx)
	if err != nil {
		return nil, err
	}

	o.state = StateMapping
	maps := o.deriveMappings(ext)

	o.state = StateValidating
	res := o.validateAll(ext, maps)

	o.state = StatePopulating
	if err := o.populate(ctx, ext, maps, res); err != nil {
		return nil, err
	}

	return res, nil
}

// extracted holds the per-run entity universe, plus the questions workbook
// retained for mapping extraction.
type extracted struct {
	risks        []model.Risk
	controls     []model.Control
	questions    []model.Question
	definitions  []model.Definition
	capabilities []model.Capability

	questionsWB  *source.Workbook
	fileMetadata []model.FileMetadata
	dataVersion  string
}

// mappings holds the derived relationship tables.
type mappings struct {
	riskControl       []model.RiskControlMapping
	questionRisk      []model.QuestionRiskMapping
	questionControl   []model.QuestionControlMapping
	capabilityControl []model.CapabilityControlMapping
}

func (o *Orchestrator) extractAll(ctx context.Context) (*extracted, error) {
	ext := &extracted{}
	dedupe := o.cfg.Extraction.RemoveDuplicates

	if o.cfg.Extraction.ValidateFiles {
		for name, spec := range o.cfg.Sources {
			if _, err := source.Locate(o.cfg.DataDir, spec.File); err != nil {
				return nil, fmt.Errorf("validating source files: %s: %w", name, err)
			}
		}
	}

	load := func(name string) (*source.Workbook, config.SourceSpec, error) {
		if err := ctx.Err(); err != nil {
			return nil, config.SourceSpec{}, err
		}
		spec, err := o.cfg.Source(name)
		if err != nil {
			return nil, spec, err
		}
		path, err := source.Locate(o.cfg.DataDir, spec.File)
		if err != nil {
			return nil, spec, fmt.Errorf("locating %s workbook: %w", name, err)
		}
		md := o.collector.CollectFileMetadata(path, name)
		ext.fileMetadata = append(ext.fileMetadata, md)
		if name == "risks" && md.Version != "unknown" {
			ext.dataVersion = md.Version
		}
		wb, err := o.src.Load(path)
		if err != nil {
			return nil, spec, fmt.Errorf("loading %s workbook: %w", name, err)
		}
		return wb, spec, nil
	}

	wb, spec, err := load("risks")
	if err != nil {
		return nil, err
	}
	ext.risks, err = extract.NewRiskExtractor(spec, dedupe, o.logger).Extract(wb)
	if err != nil {
		return nil, fmt.Errorf("extracting risks: %w", err)
	}
	o.metrics.entitiesExtracted.WithLabelValues(string(model.EntityTypeRisk)).Add(float64(len(ext.risks)))

	wb, spec, err = load("controls")
	if err != nil {
		return nil, err
	}
	ext.controls, err = extract.NewControlExtractor(spec, dedupe, o.logger).Extract(wb)
	if err != nil {
		return nil, fmt.Errorf("extracting controls: %w", err)
	}
	o.metrics.entitiesExtracted.WithLabelValues(string(model.EntityTypeControl)).Add(float64(len(ext.controls)))

	wb, spec, err = load("questions")
	if err != nil {
		return nil, err
	}
	ext.questions, err = extract.NewQuestionExtractor(spec, normalize.DefaultAcronyms, dedupe, o.logger).Extract(wb)
	if err != nil {
		return nil, fmt.Errorf("extracting questions: %w", err)
	}
	ext.questionsWB = wb
	o.metrics.entitiesExtracted.WithLabelValues(string(model.EntityTypeQuestion)).Add(float64(len(ext.questions)))

	// Definitions and capabilities are optional sources.
	if _, err := o.cfg.Source("definitions"); err == nil {
		wb, spec, err := load("definitions")
		if err != nil {
			return nil, err
		}
		ext.definitions, err = extract.NewDefinitionExtractor(spec, dedupe, o.logger).Extract(wb)
		if err != nil {
			return nil, fmt.Errorf("extracting definitions: %w", err)
		}
		o.metrics.entitiesExtracted.WithLabelValues(string(model.EntityTypeDefinition)).Add(float64(len(ext.definitions)))
	}

	if _, err := o.cfg.Source("capabilities"); err == nil {
		wb, _, err := load("capabilities")
		if err != nil {
			return nil, err
		}
		ext.capabilities, err = extract.NewCapabilityExtractor(dedupe, o.logger).Extract(wb)
		if err != nil {
			return nil, fmt.Errorf("extracting capabilities: %w", err)
		}
		o.metrics.entitiesExtracted.WithLabelValues(string(model.EntityTypeCapability)).Add(float64(len(ext.capabilities)))
	}

	return ext, nil
}

func (o *Orchestrator) deriveMappings(ext *extracted) *mappings {
	spec, _ := o.cfg.Source("questions")
	// Mapping references are strict: a cell that is not a recognizable ID
	// is dropped with a warning, never repaired into one.
	normalizer := normalize.NewNormalizer(normalize.Strict, o.logger)
	me := extract.NewMappingExtractor(spec, normalizer, normalize.DefaultAcronyms, o.logger)

	maps := &mappings{}
	maps.questionRisk, maps.questionControl = me.ExtractQuestionMappings(ext.questionsWB, ext.risks, ext.controls)
	maps.riskControl = me.CreateRiskControlMappings(ext.risks, ext.controls)
	maps.capabilityControl = me.CreateCapabilityControlMappings(ext.capabilities, ext.controls)

	o.metrics.mappingsCreated.WithLabelValues(model.TableRiskControlMapping).Add(float64(len(maps.riskControl)))
	o.metrics.mappingsCreated.WithLabelValues(model.TableQuestionRiskMapping).Add(float64(len(maps.questionRisk)))
	o.metrics.mappingsCreated.WithLabelValues(model.TableQuestionControlMapping).Add(float64(len(maps.questionControl)))
	o.metrics.mappingsCreated.WithLabelValues(model.TableCapabilityControlMapping).Add(float64(len(maps.capabilityControl)))
	return maps
}

func (o *Orchestrator) validateAll(ext *extracted, maps *mappings) *Result {
	md := o.collector.NewProcessingMetadata(ext.dataVersion)
	md.TotalRisks = len(ext.risks)
	md.TotalControls = len(ext.controls)
	md.TotalQuestions = len(ext.questions)
	md.TotalDefinitions = len(ext.definitions)
	md.TotalCapabilities = len(ext.capabilities)
	md.RiskControlMappings = len(maps.riskControl)
	md.QuestionRiskMappings = len(maps.questionRisk)
	md.QuestionControlMappings = len(maps.questionControl)
	md.CapabilityControlMappings = len(maps.capabilityControl)

	risksTable := model.RisksTable(ext.risks)
	controlsTable := model.ControlsTable(ext.controls)
	questionsTable := model.QuestionsTable(ext.questions)

	var reports []*validate.EntityReport
	for _, check := range []struct {
		table      model.Table
		entityType model.EntityType
	}{
		{risksTable, model.EntityTypeRisk},
		{controlsTable, model.EntityTypeControl},
		{questionsTable, model.EntityTypeQuestion},
	} {
		report, err := o.validator.ValidateEntityTable(check.table, check.entityType)
		if err != nil {
			o.logger.Warn("entity validation unavailable", "entity_type", string(check.entityType), "error", err)
			continue
		}
		o.metrics.invalidRecords.WithLabelValues(string(check.entityType)).Add(float64(report.InvalidRecords))
		reports = append(reports, report)
	}

	consistency := o.validator.ValidateConsistency(
		risksTable, controlsTable, questionsTable,
		model.RiskControlTable(maps.riskControl))

	return &Result{
		Metadata:      md,
		FileMetadata:  ext.fileMetadata,
		EntityReports: reports,
		Consistency:   consistency,
	}
}

func (o *Orchestrator) populate(ctx context.Context, ext *extracted, maps *mappings, res *Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := o.sink.CreateSchema(); err != nil {
		return err
	}

	tables := []model.Table{
		model.RisksTable(ext.risks),
		model.ControlsTable(ext.controls),
		model.QuestionsTable(ext.questions),
		model.DefinitionsTable(ext.definitions),
		model.CapabilitiesTable(ext.capabilities),
		model.RiskControlTable(maps.riskControl),
		model.QuestionRiskTable(maps.questionRisk),
		model.QuestionControlTable(maps.questionControl),
		model.CapabilityControlTable(maps.capabilityControl),
	}
	for _, table := range tables {
		if err := o.sink.ReplaceTable(table); err != nil {
			return err
		}
	}

	if o.cfg.Output.CollectMetadata {
		for _, md := range res.FileMetadata {
			if err := o.sink.InsertFileMetadata(md); err != nil {
				return err
			}
		}
		if err := o.sink.InsertProcessingMetadata(res.Metadata); err != nil {
			return err
		}
	}
	return nil
}
