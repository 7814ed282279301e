package storage

import "github.com/strataguard/riskdata/model"

// Discard is a Sink that accepts and drops everything. Used by dry runs
// that want the full pipeline without touching a database.
var Discard Sink = discardSink{}

type discardSink struct{}

func (discardSink) CreateSchema() error { return nil }

func (discardSink) ReplaceTable(table model.Table) error { return nil }

func (discardSink) InsertFileMetadata(md model.FileMetadata) error { return nil }

func (discardSink) InsertProcessingMetadata(md model.ProcessingMetadata) error { return nil }

func (discardSink) TableCount(name string) (int, error) { return 0, nil }

func (discardSink) Close() error { return nil }
