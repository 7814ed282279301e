// Package model defines the entity records, relationship mappings, and run
// metadata produced by the extraction pipeline.
package model

// EntityType identifies one of the extracted record kinds.
type EntityType string

const (
	EntityTypeRisk       EntityType = "risk"
	EntityTypeControl    EntityType = "control"
	EntityTypeQuestion   EntityType = "question"
	EntityTypeDefinition EntityType = "definition"
	EntityTypeCapability EntityType = "capability"
)

// ID prefixes applied during extraction. Definitions carry no prefix;
// capabilities use the CAP.TECH./CAP.NONTECH. ordinal scheme.
const (
	RiskIDPrefix     = "R."
	ControlIDPrefix  = "C."
	QuestionIDPrefix = "Q."
)

// CapabilityType distinguishes the two capability sheets.
type CapabilityType string

const (
	CapabilityTechnical    CapabilityType = "technical"
	CapabilityNonTechnical CapabilityType = "non-technical"
)

// Risk is one row of the risk taxonomy. ID carries the R. prefix over the
// raw sheet identifier (e.g. "R.AIR.001").
type Risk struct {
	ID          string
	Title       string
	Description string
}

// Control is one row of the control framework. ID carries the C. prefix
// over the raw control code (e.g. "C.AIIM.1"). MappedRisks holds the raw
// comma-separated risk reference cell; the mapping extractor parses it.
type Control struct {
	ID               string
	Title            string
	Description      string
	MappedRisks      string
	AssetType        string
	ControlType      string
	SecurityFunction string
	MaturityLevel    string
}

// Question is one interview question. ID is the composite
// Q.<ServiceAcronym>.<raw number> form; ManagingRole is the originating
// sheet name.
type Question struct {
	ID           string
	Text         string
	Category     string
	Topic        string
	ManagingRole string
}

// Definition is one term definition. ID is the slugified term.
type Definition struct {
	ID          string
	Term        string
	Title       string
	Description string
	Category    string
	Source      string
}

// Capability is one security capability. ID is ordinal per sheet
// (CAP.TECH.001, CAP.NONTECH.002, ...). Controls holds the raw
// comma-separated control reference cell.
type Capability struct {
	ID                string
	Name              string
	Type              CapabilityType
	Domain            string
	Definition        string
	Controls          string
	CandidateProducts string
	Notes             string
}

// RiskControlMapping links a risk to a control that mitigates it.
type RiskControlMapping struct {
	RiskID    string
	ControlID string
}

// QuestionRiskMapping links an interview question to the risk it probes.
type QuestionRiskMapping struct {
	QuestionID string
	RiskID     string
}

// QuestionControlMapping links an interview question to a control.
type QuestionControlMapping struct {
	QuestionID string
	ControlID  string
}

// CapabilityControlMapping links a capability to a control it implements.
type CapabilityControlMapping struct {
	CapabilityID string
	ControlID    string
}
