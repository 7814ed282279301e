// Package storage persists normalized tables and run metadata.
package storage

import (
	"errors"

	"github.com/strataguard/riskdata/model"
)

// ErrUnknownTable is returned when a caller names a table the schema does
// not define.
var ErrUnknownTable = errors.New("unknown table")

// Sink accepts normalized tables and run metadata. The pipeline never
// issues raw SQL; these verbs are its entire storage surface.
type Sink interface {
	// CreateSchema creates all tables if they do not exist.
	CreateSchema() error
	// ReplaceTable rewrites a table wholesale inside one transaction.
	ReplaceTable(table model.Table) error
	// InsertFileMetadata appends one file provenance record.
	InsertFileMetadata(md model.FileMetadata) error
	// InsertProcessingMetadata appends one run record.
	InsertProcessingMetadata(md model.ProcessingMetadata) error
	// TableCount returns the number of rows in a table.
	TableCount(name string) (int, error)
	// Close releases the underlying store.
	Close() error
}
