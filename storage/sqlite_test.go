package storage

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strataguard/riskdata/model"
)

func openTestSink(t *testing.T) *SQLiteSink {
	t.Helper()
	sink, err := OpenSQLite(filepath.Join(t.TempDir(), "riskdata.db"),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { sink.Close() })
	require.NoError(t, sink.CreateSchema())
	return sink
}

func TestReplaceTable(t *testing.T) {
	sink := openTestSink(t)

	first := model.RisksTable([]model.Risk{
		{ID: "R.AIR.001", Title: "Model drift", Description: "drift"},
		{ID: "R.AIR.002", Title: "Poisoning", Description: ""},
	})
	require.NoError(t, sink.ReplaceTable(first))

	count, err := sink.TableCount(model.TableRisks)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// A second replace overwrites wholesale rather than appending.
	second := model.RisksTable([]model.Risk{
		{ID: "R.AIR.003", Title: "Prompt injection"},
	})
	require.NoError(t, sink.ReplaceTable(second))

	count, err = sink.TableCount(model.TableRisks)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestReplaceTableEmpty(t *testing.T) {
	sink := openTestSink(t)

	require.NoError(t, sink.ReplaceTable(model.RisksTable([]model.Risk{
		{ID: "R.AIR.001", Title: "Model drift"},
	})))
	require.NoError(t, sink.ReplaceTable(model.RisksTable(nil)))

	count, err := sink.TableCount(model.TableRisks)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestReplaceTableUnknownName(t *testing.T) {
	sink := openTestSink(t)

	err := sink.ReplaceTable(model.Table{Name: "users; DROP TABLE risks"})
	require.ErrorIs(t, err, ErrUnknownTable)

	_, err = sink.TableCount("users")
	require.ErrorIs(t, err, ErrUnknownTable)
}

func TestReplaceMappingTables(t *testing.T) {
	sink := openTestSink(t)

	require.NoError(t, sink.ReplaceTable(model.RiskControlTable([]model.RiskControlMapping{
		{RiskID: "R.AIR.001", ControlID: "C.AIIM.1"},
		{RiskID: "R.AIR.002", ControlID: "C.AIIM.1"},
	})))
	require.NoError(t, sink.ReplaceTable(model.CapabilityControlTable([]model.CapabilityControlMapping{
		{CapabilityID: "CAP.TECH.001", ControlID: "C.AIIM.1"},
	})))

	count, err := sink.TableCount(model.TableRiskControlMapping)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = sink.TableCount(model.TableCapabilityControlMapping)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestInsertMetadata(t *testing.T) {
	sink := openTestSink(t)

	require.NoError(t, sink.InsertFileMetadata(model.FileMetadata{
		DataType:     "risks",
		Filename:     "AI_Risk_Taxonomy_V6.1.xlsx",
		FileExists:   true,
		FileSize:     1024,
		ModifiedTime: time.Now().UTC(),
		Version:      "v6.1",
	}))

	require.NoError(t, sink.InsertProcessingMetadata(model.ProcessingMetadata{
		RunID:       "test-run",
		ProcessedAt: time.Now().UTC(),
		DataVersion: "v6.1",
		TotalRisks:  42,
		Status:      model.RunStatusCompleted,
	}))

	var fileRows int
	require.NoError(t, sink.db.QueryRow("SELECT COUNT(*) FROM file_metadata").Scan(&fileRows))
	assert.Equal(t, 1, fileRows)

	var runID string
	var totalRisks int
	require.NoError(t, sink.db.QueryRow(
		"SELECT run_id, total_risks FROM processing_metadata").Scan(&runID, &totalRisks))
	assert.Equal(t, "test-run", runID)
	assert.Equal(t, 42, totalRisks)
}

func TestDiscardSink(t *testing.T) {
	require.NoError(t, Discard.CreateSchema())
	require.NoError(t, Discard.ReplaceTable(model.RisksTable(nil)))
	require.NoError(t, Discard.InsertFileMetadata(model.FileMetadata{}))
	require.NoError(t, Discard.InsertProcessingMetadata(model.ProcessingMetadata{}))
	require.NoError(t, Discard.Close())

	count, err := Discard.TableCount(model.TableRisks)
	require.NoError(t, err)
	assert.Zero(t, count)
}
